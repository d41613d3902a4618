package notes

import (
	"context"
	"github.com/kotche/notebridge/internal/model"
)

type (
	// Service is the note service as seen by the chat side. Every failure
	// matches one of model.ErrRequestFailed, model.ErrNoResults or
	// model.ErrNotFound.
	Service interface {
		CreateNote(ctx context.Context, title, body string) (model.Confirmation, error)
		SearchNotes(ctx context.Context, query string) ([]model.NoteSummary, error)
		FetchNoteBody(ctx context.Context, noteID model.NoteID) (string, error)
	}
)
