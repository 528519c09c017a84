package session

import "context"

// Common context keys - use a struct to prevent conflicts
type contextKey struct {
	name string
}

var sessionKey = contextKey{"session"}

func ContextWithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(sessionKey).(*Session)
	return s, ok && s != nil
}
