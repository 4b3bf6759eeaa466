// Package actor carries the identity of the authenticated user through a
// context.Context. Every core operation receives the actor explicitly;
// there is no process-wide "current user" singleton, so tests can inject
// arbitrary actors.
package actor

import "context"

// Actor is the authenticated identity performing an operation.
type Actor struct {
	UserID   uint
	Username string
	FullName string
	IP       string
	Machine  string
}

type ctxKey struct{}

// WithActor returns a child context carrying the actor.
func WithActor(ctx context.Context, a *Actor) context.Context {
	return context.WithValue(ctx, ctxKey{}, a)
}

// FromContext returns the actor carried by ctx, or nil when the context is
// unauthenticated (system jobs, migrations). Audit capture is skipped
// entirely for nil actors.
func FromContext(ctx context.Context) *Actor {
	if ctx == nil {
		return nil
	}
	a, _ := ctx.Value(ctxKey{}).(*Actor)
	return a
}
