package session

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/sessionkit/pkg/logger"
)

// FromContext retrieves the request's session from the context
func FromContext(ctx context.Context) (*Session, bool) {
	st, ok := stateFromContext(ctx)
	if !ok || st.session == nil {
		return nil, false
	}
	return st.session, true
}

// MustFromContext retrieves a session from the context or panics
func MustFromContext(ctx context.Context) *Session {
	session, ok := FromContext(ctx)
	if !ok {
		panic("session: not found in context")
	}
	return session
}

// IDFromContext returns the current session id. It keeps answering after
// Unset, until the response is finished.
func IDFromContext(ctx context.Context) (string, bool) {
	st, ok := stateFromContext(ctx)
	if !ok || st.id == "" {
		return "", false
	}
	return st.id, true
}

// Unset drops the session from the request. With UnsetDestroy the stored
// session is destroyed when the response ends; with UnsetKeep it is left
// untouched. Reports whether there was a session to drop.
func Unset(ctx context.Context) bool {
	st, ok := stateFromContext(ctx)
	if !ok || st.session == nil {
		return false
	}
	st.session.state = nil
	st.session = nil
	return true
}

// LoggerExtractor returns a logger.ContextExtractor that tags records with the
// current session id.
func LoggerExtractor() logger.ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		id, ok := IDFromContext(ctx)
		if !ok {
			return slog.Attr{}, false
		}
		return logger.SessionID(id), true
	}
}
