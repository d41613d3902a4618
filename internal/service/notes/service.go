package notes

import (
	"context"
	"fmt"
	"github.com/google/uuid"
	"github.com/kotche/notebridge/internal/metrics"
	"github.com/kotche/notebridge/internal/model"
	"github.com/kotche/notebridge/internal/repository/notes"
	"github.com/kotche/notebridge/internal/service/kafka"
	"log"
	"time"
)

const (
	// SearchResultLimit caps how many search hits are handed back.
	SearchResultLimit = 5

	// publishTimeout bounds how long a reply can wait on the event broker.
	publishTimeout = 500 * time.Millisecond
)

type DefaultService struct {
	repo   notes.Repository
	events kafka.EventPublisher
}

// NewDefaultService wires the service. A nil publisher disables activity events.
func NewDefaultService(repo notes.Repository, events kafka.EventPublisher) *DefaultService {
	if events == nil {
		events = kafka.NopPublisher{}
	}
	return &DefaultService{repo: repo, events: events}
}

func (d *DefaultService) CreateNote(ctx context.Context, title, body string) (model.Confirmation, error) {
	started := time.Now()
	conf, err := d.repo.CreateNote(ctx, title, body)
	metrics.ObserveRequest("create", started, err)
	if err != nil {
		return model.Confirmation{}, fmt.Errorf("%w: %v", model.ErrRequestFailed, err)
	}

	d.publish(ctx, model.ActivityEvent{
		Kind:   model.EventNoteCreated,
		NoteID: conf.ID,
		Title:  title,
	})

	return conf, nil
}

func (d *DefaultService) SearchNotes(ctx context.Context, query string) ([]model.NoteSummary, error) {
	started := time.Now()
	found, err := d.repo.SearchNotes(ctx, query)
	metrics.ObserveRequest("search", started, err)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrNoResults, err)
	}
	if len(found) == 0 {
		return nil, model.ErrNoResults
	}
	if len(found) > SearchResultLimit {
		found = found[:SearchResultLimit]
	}

	d.publish(ctx, model.ActivityEvent{
		Kind:  model.EventNotesSearched,
		Query: query,
	})

	return found, nil
}

func (d *DefaultService) FetchNoteBody(ctx context.Context, noteID model.NoteID) (string, error) {
	started := time.Now()
	note, err := d.repo.GetNote(ctx, noteID)
	metrics.ObserveRequest("fetch", started, err)
	if err != nil {
		return "", fmt.Errorf("%w: %v", model.ErrNotFound, err)
	}
	if note == nil {
		return "", model.ErrNotFound
	}

	log.Printf("note '%s' found: '%s', content length: %d", noteID, note.Title, len(note.Body))

	d.publish(ctx, model.ActivityEvent{
		Kind:   model.EventNoteRead,
		NoteID: noteID,
		Title:  note.Title,
	})

	return note.Body, nil
}

// publish never fails the caller; the journal is best effort.
func (d *DefaultService) publish(ctx context.Context, event model.ActivityEvent) {
	event.ID = uuid.NewString()
	event.ChatID = model.ChatIDFrom(ctx)
	event.OccurredAt = time.Now().UTC()

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if err := d.events.Publish(ctx, event); err != nil {
		log.Printf("failed to publish %s event for chat '%d': %v", event.Kind, event.ChatID, err)
	}
}
