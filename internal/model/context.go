package model

import "context"

type chatIDKey struct{}

// WithChatID attaches the originating chat to ctx so activity events can be
// attributed without widening every note service call.
func WithChatID(ctx context.Context, id ChatID) context.Context {
	return context.WithValue(ctx, chatIDKey{}, id)
}

func ChatIDFrom(ctx context.Context) ChatID {
	id, _ := ctx.Value(chatIDKey{}).(ChatID)
	return id
}
