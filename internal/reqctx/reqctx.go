package reqctx

import (
	"context"

	"github.com/baechuer/careportal/internal/domain"
)

type contextKey string

const (
	requestIDKey contextKey = "request_id"
	sessionKey   contextKey = "session"
)

// WithRequestID injects ID
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// GetRequestID extracts ID
func GetRequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// WithSession stores a copy of the session. Consumers read it, only session.Manager writes it.
func WithSession(ctx context.Context, s domain.Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// GetSession returns the session placed by the session middleware, if any.
func GetSession(ctx context.Context) (domain.Session, bool) {
	if ctx == nil {
		return domain.Session{}, false
	}
	s, ok := ctx.Value(sessionKey).(domain.Session)
	return s, ok && s.Token != ""
}

// GetToken returns the bearer token of the current session or "".
func GetToken(ctx context.Context) string {
	s, ok := GetSession(ctx)
	if !ok {
		return ""
	}
	return s.Token
}
