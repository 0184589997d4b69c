// Package session provides signed-cookie session middleware for net/http.
//
// Every request that passes through Manager.Middleware gets a Session: the
// one whose signed id the client presented, or a freshly generated one. The
// session data lives in a pluggable Store; only the signed id travels to the
// client, by cookie, header or both.
//
// # Architecture
//
// A Manager owns the configuration, the Store and the Transport. For every
// request it verifies the presented token, loads the record and wraps the
// ResponseWriter. The wrapper emits the token right before the headers are
// written and persists the session before the last byte of the body leaves,
// so a client holding a complete response can rely on the store being up to
// date.
//
//	┌────────┐   token   ┌────────────┐
//	│ Client │ ────────► │  Transport │
//	└────────┘           └────────────┘
//	       ▲                   │
//	       │                   ▼
//	┌─────────────────────────────────┐
//	│            Manager              │
//	└─────────────────────────────────┘
//	       │   get / set / touch / destroy
//	       ▼
//	┌────────┐
//	│ Store  │ (memory, redis, …)
//	└────────┘
//
// Whether a response saves, touches or destroys the stored session and
// whether it carries a token is decided from a fingerprint of the session
// data taken at load time and after each save. Unmodified sessions are not
// rewritten unless Resave is on; new sessions are stored only if
// SaveUninitialized is on or they were modified.
//
// # Usage
//
//	import "github.com/dmitrymomot/sessionkit/pkg/session"
//
//	manager, err := session.New(
//	    session.WithSecrets("a-long-random-secret"),
//	    session.WithCookieOptions(cookie.WithMaxAge(3600)),
//	)
//	if err != nil {
//	    return err
//	}
//	defer manager.Close()
//
//	mux.Handle("/", manager.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
//	    sess := session.MustFromContext(r.Context())
//	    views, _ := sess.GetInt("views")
//	    sess.Set("views", views+1)
//	})))
//
// After a login the id should change:
//
//	if err := sess.Regenerate(r.Context()); err != nil { ... }
//	sess.Set("user_id", userID)
//
// Header transport:
//
//	manager, _ := session.New(
//	    session.WithSecrets(secret),
//	    session.WithTransport(session.NewHeaderTransport("X-Session-Token")),
//	)
//
// # Stores
//
// MemoryStore is a bounded LRU that keeps records serialized. Stores may
// implement Toucher, Lister, Counter and Clearer; Manager checks for them at
// runtime. Stores that embed Events announce availability changes, and the
// middleware passes requests through without a session while the store is
// down.
//
// # Configuration
//
// Most knobs are exposed via Option functions or by passing a Config to
// NewFromConfig. Twelve-factor applications can populate Config from
// SESSION_* environment variables.
//
// # Logging
//
// WithLogger routes the manager's own messages to a slog.Logger. To tag
// application log lines with the current session id, register
// LoggerExtractor with logger.WithContextExtractors.
//
// # Error Handling
//
// Load-time failures go to the ErrorHandler (500 by default). Failures while
// finishing a response go to the PersistErrorHandler and never block the
// response. Common error values:
//
//   - ErrNoSecret         – no signing secret configured
//   - ErrStoreFetch       – the store failed while loading
//   - ErrCorruptRecord    – a stored record has no cookie attributes
//   - ErrPersist          – save, touch or destroy failed at response end
//   - ErrNotAttached      – the handle was unset or destroyed
package session
