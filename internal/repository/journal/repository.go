package journal

import (
	"context"
	"database/sql"
	"fmt"
	"github.com/kotche/notebridge/infrastructure/tracing"
	"github.com/kotche/notebridge/internal/model"
	_ "github.com/lib/pq"

	"github.com/Masterminds/squirrel"
)

type DefaultRepository struct {
	db *sql.DB
}

func NewDefaultRepository(pg *sql.DB) *DefaultRepository {
	return &DefaultRepository{pg}
}

// SaveEvent stores event once. It reports false when an event with the same
// id is already stored, which happens on redelivery.
func (d *DefaultRepository) SaveEvent(ctx context.Context, event model.ActivityEvent) (_ bool, err error) {
	ctx, span := tracing.StartSpan(ctx, "SaveEvent_repo",
		tracing.AttrEventID.String(event.ID),
		tracing.AttrEventKind.String(string(event.Kind)),
	)
	defer func() { tracing.EndSpan(span, err) }()

	query, args, err := insertEventQuery(event)
	if err != nil {
		return false, fmt.Errorf("failed to build query: %w", err)
	}

	res, err := d.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to save event '%s': %w", event.ID, err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows for event '%s': %w", event.ID, err)
	}

	return rows > 0, nil
}

func insertEventQuery(event model.ActivityEvent) (string, []interface{}, error) {
	return squirrel.
		Insert("note_events").
		Columns("id", "kind", "chat_id", "note_id", "title", "query", "occurred_at").
		Values(
			event.ID,
			string(event.Kind),
			int64(event.ChatID),
			nullable(string(event.NoteID)),
			nullable(event.Title),
			nullable(event.Query),
			event.OccurredAt,
		).
		Suffix("ON CONFLICT (id) DO NOTHING").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
