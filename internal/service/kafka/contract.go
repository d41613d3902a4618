package kafka

import (
	"context"
	"github.com/kotche/notebridge/internal/model"
)

type (
	EventPublisher interface {
		Publish(ctx context.Context, event model.ActivityEvent) error
		Close() error
	}

	// EventConsumer hands out events without acknowledging them. An event
	// is redelivered until Commit is called for its delivery.
	EventConsumer interface {
		FetchEvent(ctx context.Context) (Delivery, error)
		Commit(ctx context.Context, delivery Delivery) error
		Close() error
	}
)
