package middleware

import "context"

type contextKey string

const ctxActorPhone contextKey = "actor_phone"

func ActorPhoneFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxActorPhone).(string); ok {
		return v
	}
	return ""
}

// WithActorPhone injects the caller's phone number into the context.
func WithActorPhone(ctx context.Context, phone string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxActorPhone, phone)
}
