package notes

import (
	"context"
	"github.com/kotche/notebridge/internal/model"
)

type (
	Repository interface {
		CreateNote(ctx context.Context, title, body string) (model.Confirmation, error)
		SearchNotes(ctx context.Context, query string) ([]model.NoteSummary, error)
		GetNote(ctx context.Context, noteID model.NoteID) (*model.Note, error)
	}
)
