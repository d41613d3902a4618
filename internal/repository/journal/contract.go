package journal

import (
	"context"
	"github.com/kotche/notebridge/internal/model"
)

type (
	Repository interface {
		SaveEvent(ctx context.Context, event model.ActivityEvent) (bool, error)
	}
)
