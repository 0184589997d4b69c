package session

import (
	"net/http"
	"strings"

	"github.com/dmitrymomot/sessionkit/pkg/logger"
)

// Middleware loads the session before next runs and persists it before the
// response completes. Requests are passed through unchanged when a session
// is already attached, the store is unavailable, or the path lies outside
// the cookie path.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if _, ok := stateFromContext(ctx); ok {
			next.ServeHTTP(w, r)
			return
		}

		if !m.Ready() {
			m.logger.DebugContext(ctx, "session store unavailable", logger.Store(m.storeName))
			next.ServeHTTP(w, r)
			return
		}

		if !strings.HasPrefix(r.URL.Path, m.cookie.Path) {
			next.ServeHTTP(w, r)
			return
		}

		secrets := m.secretsFor(r)
		if len(secrets) == 0 {
			m.errorHandler(w, r, ErrNoSecret)
			return
		}

		st := &state{m: m, secrets: secrets}
		r = r.WithContext(withState(ctx, st))
		st.r = r
		st.loadTimeID = m.transport.Identifier(r, secrets)

		if err := st.load(r.Context()); err != nil {
			m.errorHandler(w, r, err)
			return
		}

		rw := &responseWriter{ResponseWriter: w, st: st}
		next.ServeHTTP(rw, r)
		rw.end(nil)
	})
}

// RequireValue rejects requests whose session lacks key with 401.
// It must run after Middleware.
func RequireValue(key string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, ok := FromContext(r.Context())
			if !ok {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			if _, ok := sess.Get(key); !ok {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
