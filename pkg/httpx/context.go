package httpx

import "context"

type ctxKey string

const (
	CtxKeyActor    ctxKey = "actor"
	CtxKeyAuthType ctxKey = "auth_type"
)

// ActorFromContext returns the authenticated admin identity, if any.
func ActorFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(CtxKeyActor).(string); ok {
		return v
	}
	return ""
}

func withActor(ctx context.Context, actor, authType string) context.Context {
	ctx = context.WithValue(ctx, CtxKeyActor, actor)
	return context.WithValue(ctx, CtxKeyAuthType, authType)
}
