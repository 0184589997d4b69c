package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrymomot/sessionkit/pkg/async"
	"github.com/dmitrymomot/sessionkit/pkg/cookie"
	"github.com/dmitrymomot/sessionkit/pkg/logger"
)

// state is everything the middleware knows about one request's session.
// It is owned by the request goroutine.
type state struct {
	m       *Manager
	r       *http.Request
	secrets []string

	// loadTimeID is the id the client presented, "" when none verified.
	loadTimeID string
	// id is the current session id. It survives Unset so the stored
	// session can still be destroyed.
	id      string
	session *Session
	tracker tracker
	touched bool
}

type stateContextKey struct{}

func withState(ctx context.Context, st *state) context.Context {
	return context.WithValue(ctx, stateContextKey{}, st)
}

func stateFromContext(ctx context.Context) (*state, bool) {
	st, ok := ctx.Value(stateContextKey{}).(*state)
	return st, ok
}

// persistCtx detaches store calls from client cancellation.
func (st *state) persistCtx() context.Context {
	return context.WithoutCancel(st.r.Context())
}

// load resolves the session for the request: fetch the presented id or
// start a new session.
func (st *state) load(ctx context.Context) error {
	if st.loadTimeID == "" {
		return st.generate()
	}

	rec, err := st.m.fetch(ctx, st.loadTimeID).Await()
	switch {
	case errors.Is(err, ErrSessionNotFound):
		st.m.logger.DebugContext(ctx, "session not found", logger.SessionID(st.loadTimeID))
		return st.generate()
	case err != nil:
		return fmt.Errorf("%w: %w", ErrStoreFetch, err)
	case rec == nil:
		st.m.logger.DebugContext(ctx, "session not found", logger.SessionID(st.loadTimeID))
		return st.generate()
	}

	return st.inflate(rec)
}

// generate starts a new session. The new session is not considered saved.
func (st *state) generate() error {
	id, err := st.m.generate(st.r)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrTokenGeneration, err)
	}
	st.bind(id, NewValues(), st.m.newCookie(st.r))
	st.tracker.capture(id, st.session.values, false)
	st.m.logger.DebugContext(st.r.Context(), "session generated", logger.SessionID(id))
	return nil
}

// inflate binds a loaded record. Unless Resave is on it counts as saved.
func (st *state) inflate(rec *Record) error {
	if err := st.createSession(st.loadTimeID, rec); err != nil {
		return err
	}
	st.tracker.capture(st.id, st.session.values, !st.m.config.Resave)
	return nil
}

// createSession binds a stored record without touching the tracker.
func (st *state) createSession(id string, rec *Record) error {
	if rec == nil || rec.Cookie == nil {
		return ErrCorruptRecord
	}
	attrs := rec.Cookie.Clone()
	if st.m.cookie.Secure == cookie.SecureAuto {
		attrs.Secure = st.m.isSecure(st.r)
	}
	values := rec.Values
	if values == nil {
		values = NewValues()
	}
	st.bind(id, values, attrs)
	return nil
}

// bind points the request at id. An existing handle is reused so that
// references held by handlers stay valid across reload and regenerate.
func (st *state) bind(id string, values *Values, attrs *cookie.Attributes) {
	if st.session == nil {
		st.session = &Session{}
	}
	st.id = id
	st.session.id = id
	st.session.values = values
	st.session.cookie = attrs
	st.session.state = st
}

func (st *state) decision() decision {
	d := decision{
		id:         st.id,
		loadTimeID: st.loadTimeID,
		hasSession: st.session != nil,
		hasSaved:   st.tracker.hasSaved,
	}
	if st.session != nil {
		d.modified = st.tracker.isModified(st.id, st.session.values)
		d.saved = st.tracker.isSaved(st.id, st.session.values)
		d.hasExpiry = st.session.cookie.Expires != nil
	}
	return d
}

// touchOnce refreshes the cookie expiry at most once per request.
func (st *state) touchOnce() {
	if st.touched || st.session == nil {
		return
	}
	st.session.cookie.ResetMaxAge()
	st.touched = true
}

func (st *state) snapshot() *Record {
	return &Record{Cookie: st.session.cookie.Clone(), Values: st.session.values.Clone()}
}

// save starts writing the session. The saved fingerprint is taken before
// the store call so a later isSaved check reflects this write.
func (st *state) save(ctx context.Context) *async.Future[struct{}] {
	st.tracker.markSaved(st.session.values)
	return st.m.set(ctx, st.id, st.snapshot())
}

// onHeaders runs right before the response headers are written.
func (st *state) onHeaders(w http.ResponseWriter) {
	if st.session == nil {
		return
	}

	// The decision sees the expiry as the handler left it. Paths that return
	// early are touched when the response ends.
	if !st.m.policy.shouldSetCookie(st.decision()) {
		return
	}

	ctx := st.r.Context()
	if st.session.cookie.Secure && !st.m.isSecure(st.r) {
		st.m.logger.DebugContext(ctx, "not sending secure session cookie over insecure connection",
			logger.SessionID(st.id),
		)
		return
	}

	st.touchOnce()

	if len(st.secrets) == 0 {
		return
	}
	token := Sign(st.id, st.secrets[0])
	if err := st.m.transport.Emit(w, token, st.session.cookie); err != nil {
		st.m.logger.ErrorContext(ctx, "failed to emit session token",
			logger.SessionID(st.id),
			logger.Error(err),
		)
	}
}
