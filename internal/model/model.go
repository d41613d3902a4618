package model

import "time"

type (
	NoteID string

	ChatID int64

	Note struct {
		ID    NoteID
		Title string
		Body  string
	}

	NoteSummary struct {
		ID    NoteID
		Title string
	}

	// Confirmation is returned for a created note. ID is empty when the
	// note service did not echo the created entity back.
	Confirmation struct {
		ID NoteID
	}
)

type EventKind string

const (
	EventNoteCreated   EventKind = "note_created"
	EventNotesSearched EventKind = "notes_searched"
	EventNoteRead      EventKind = "note_read"
)

// ActivityEvent describes one successful interaction with the note service.
// Note bodies are never part of an event.
type ActivityEvent struct {
	ID         string    `json:"id"`
	Kind       EventKind `json:"kind"`
	ChatID     ChatID    `json:"chat_id"`
	NoteID     NoteID    `json:"note_id,omitempty"`
	Title      string    `json:"title,omitempty"`
	Query      string    `json:"query,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
