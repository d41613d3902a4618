package journal

import (
	"context"
	"errors"
	"github.com/kotche/notebridge/internal/metrics"
	"github.com/kotche/notebridge/internal/model"
	"github.com/kotche/notebridge/internal/repository/journal"
	"github.com/kotche/notebridge/internal/service/kafka"
	"log"
	"time"
)

const (
	saveTimeout = 2 * time.Second
	// retryBackoff paces retries against a broken broker or database.
	retryBackoff = time.Second
)

type Journal struct {
	broker  kafka.EventConsumer
	repo    journal.Repository
	backoff time.Duration
}

func New(broker kafka.EventConsumer, repo journal.Repository) *Journal {
	return &Journal{
		broker:  broker,
		repo:    repo,
		backoff: retryBackoff,
	}
}

// Run stores consumed activity events until ctx is cancelled. An event is
// committed only once it is stored, so a failing database stalls the journal
// instead of losing events.
func (j *Journal) Run(ctx context.Context) error {
	log.Println("Journal started...")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		delivery, err := j.broker.FetchEvent(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, kafka.ErrMalformedEvent) {
				log.Printf("skipping malformed event: %v", err)
				j.commit(ctx, delivery)
				continue
			}
			log.Printf("error reading event from kafka: %v", err)
			if !sleep(ctx, j.backoff) {
				return ctx.Err()
			}
			continue
		}

		if !j.store(ctx, delivery.Event) {
			return ctx.Err()
		}
		j.commit(ctx, delivery)
	}
}

// store retries event until it is saved or ctx is done.
func (j *Journal) store(ctx context.Context, event model.ActivityEvent) bool {
	for {
		saveCtx, cancel := context.WithTimeout(ctx, saveTimeout)
		stored, err := j.repo.SaveEvent(saveCtx, event)
		cancel()

		switch {
		case err == nil && stored:
			metrics.JournalEventsStored.WithLabelValues(string(event.Kind)).Inc()
			log.Printf("%s event '%s' for chat '%d' stored", event.Kind, event.ID, event.ChatID)
			return true
		case err == nil:
			log.Printf("event '%s' already stored", event.ID)
			return true
		}

		log.Printf("error saving event '%s', retrying: %v", event.ID, err)
		if !sleep(ctx, j.backoff) {
			return false
		}
	}
}

// commit failures only cause a redelivery, which the store ignores.
func (j *Journal) commit(ctx context.Context, delivery kafka.Delivery) {
	if err := j.broker.Commit(ctx, delivery); err != nil {
		log.Printf("error committing event '%s': %v", delivery.Event.ID, err)
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
