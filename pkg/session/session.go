package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrymomot/sessionkit/pkg/cookie"
)

// Session is the handle a request's session is accessed through. It is not
// safe for concurrent use; it belongs to the request goroutine.
type Session struct {
	id     string
	values *Values
	cookie *cookie.Attributes
	state  *state
}

// ID returns the session id
func (s *Session) ID() string {
	if s == nil {
		return ""
	}
	return s.id
}

// Values returns the session data
func (s *Session) Values() *Values {
	if s == nil {
		return nil
	}
	return s.values
}

// Cookie returns the cookie attributes. Changes are sent with the response
// and persisted with the session.
func (s *Session) Cookie() *cookie.Attributes {
	if s == nil {
		return nil
	}
	return s.cookie
}

// Get retrieves a value from session data
func (s *Session) Get(key string) (any, bool) {
	return s.Values().Get(key)
}

// GetString retrieves a string value from session data
func (s *Session) GetString(key string) (string, bool) {
	return s.Values().GetString(key)
}

// GetInt retrieves an int value from session data
func (s *Session) GetInt(key string) (int, bool) {
	return s.Values().GetInt(key)
}

// GetBool retrieves a bool value from session data
func (s *Session) GetBool(key string) (bool, bool) {
	return s.Values().GetBool(key)
}

// Set stores a value in session data
func (s *Session) Set(key string, value any) {
	s.Values().Set(key, value)
}

// Delete removes a value from session data
func (s *Session) Delete(key string) {
	s.Values().Delete(key)
}

// Clear removes all data from the session
func (s *Session) Clear() {
	s.Values().Clear()
}

// Touch resets the cookie expiry to its original max-age
func (s *Session) Touch() {
	if s == nil {
		return
	}
	s.cookie.ResetMaxAge()
}

// Save writes the session to the store now. The end-of-response save is
// skipped when nothing changed afterwards.
func (s *Session) Save(ctx context.Context) error {
	st, err := s.attached()
	if err != nil {
		return err
	}
	return st.m.await(st.save(context.WithoutCancel(ctx)))
}

// Reload replaces the data and cookie with the stored version.
func (s *Session) Reload(ctx context.Context) error {
	st, err := s.attached()
	if err != nil {
		return err
	}

	rec, err := st.m.fetch(ctx, s.id).Await()
	switch {
	case errors.Is(err, ErrSessionNotFound), err == nil && rec == nil:
		return ErrReloadFailed
	case err != nil:
		return fmt.Errorf("%w: %w", ErrReloadFailed, err)
	}
	return st.createSession(s.id, rec)
}

// Destroy removes the session from the store and detaches the handle from
// the request.
func (s *Session) Destroy(ctx context.Context) error {
	st, err := s.attached()
	if err != nil {
		return err
	}
	st.session = nil
	s.state = nil
	return st.m.await(st.m.destroy(context.WithoutCancel(ctx), s.id))
}

// Regenerate destroys the stored session and binds this handle to a fresh
// id with empty data. The handle stays usable even if the destroy failed.
func (s *Session) Regenerate(ctx context.Context) error {
	st, err := s.attached()
	if err != nil {
		return err
	}

	destroyErr := st.m.await(st.m.destroy(context.WithoutCancel(ctx), s.id))

	id, err := st.m.generate(st.r)
	if err != nil {
		return errors.Join(destroyErr, fmt.Errorf("%w: %w", ErrTokenGeneration, err))
	}
	st.bind(id, NewValues(), st.m.newCookie(st.r))
	return destroyErr
}

func (s *Session) attached() (*state, error) {
	if s == nil || s.state == nil || s.state.session != s {
		return nil, ErrNotAttached
	}
	return s.state, nil
}
