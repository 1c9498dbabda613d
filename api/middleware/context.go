package middleware

import (
	"context"

	pkgauth "github.com/adebayoakin/gearmart-backend/pkg/auth"
)

type contextKey string

const (
	ctxActor       contextKey = "actor"
	ctxCartSession contextKey = "cart_session"
)

// ActorFromContext returns the authenticated actor, or nil for guests.
func ActorFromContext(ctx context.Context) *pkgauth.AccessTokenPayload {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ctxActor).(*pkgauth.AccessTokenPayload); ok {
		return v
	}
	return nil
}

// CartSessionFromContext returns the cart session id seeded by CartSession.
func CartSessionFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxCartSession).(string); ok {
		return v
	}
	return ""
}

// WithActor injects an authenticated actor into the context.
func WithActor(ctx context.Context, actor *pkgauth.AccessTokenPayload) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxActor, actor)
}

// WithCartSession injects the cart session id into the context.
func WithCartSession(ctx context.Context, sessionID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxCartSession, sessionID)
}
