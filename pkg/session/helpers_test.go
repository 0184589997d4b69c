package session_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sessionkit/pkg/session"
)

// spyStore records store calls on top of a MemoryStore.
type spyStore struct {
	*session.MemoryStore
	session.Events

	mu       sync.Mutex
	calls    []string
	getErr   error
	setErr   error
	getValue *session.Record
	setGate  chan struct{}
	onSet    func()
}

func newSpyStore() *spyStore {
	return &spyStore{MemoryStore: session.NewMemoryStore()}
}

func (s *spyStore) record(call string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, call)
}

func (s *spyStore) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

func (s *spyStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = nil
}

func (s *spyStore) Get(ctx context.Context, id string) (*session.Record, error) {
	s.record("get")
	if s.getErr != nil {
		return nil, s.getErr
	}
	if s.getValue != nil {
		return s.getValue, nil
	}
	return s.MemoryStore.Get(ctx, id)
}

func (s *spyStore) Set(ctx context.Context, id string, rec *session.Record) error {
	s.record("set")
	if s.setGate != nil {
		<-s.setGate
	}
	if s.onSet != nil {
		s.onSet()
	}
	if s.setErr != nil {
		return s.setErr
	}
	return s.MemoryStore.Set(ctx, id, rec)
}

func (s *spyStore) Touch(ctx context.Context, id string, rec *session.Record) error {
	s.record("touch")
	return s.MemoryStore.Touch(ctx, id, rec)
}

func (s *spyStore) Destroy(ctx context.Context, id string) error {
	s.record("destroy")
	return s.MemoryStore.Destroy(ctx, id)
}

// client replays cookies between requests.
type client struct {
	t       *testing.T
	handler http.Handler
	cookies map[string]*http.Cookie
}

func newClient(t *testing.T, h http.Handler) *client {
	return &client{t: t, handler: h, cookies: map[string]*http.Cookie{}}
}

func (c *client) do(r *http.Request) *httptest.ResponseRecorder {
	for _, ck := range c.cookies {
		r.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	c.handler.ServeHTTP(w, r)
	for _, ck := range w.Result().Cookies() {
		c.cookies[ck.Name] = ck
	}
	return w
}

func (c *client) get(target string) *httptest.ResponseRecorder {
	return c.do(httptest.NewRequest(http.MethodGet, target, nil))
}

func newManager(t *testing.T, opts ...session.Option) *session.Manager {
	t.Helper()
	opts = append([]session.Option{session.WithSecrets(testSecret)}, opts...)
	m, err := session.New(opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })
	return m
}

// tokenID extracts the session id from the first Set-Cookie of w.
func tokenID(t *testing.T, w *httptest.ResponseRecorder, name string) string {
	t.Helper()
	for _, ck := range w.Result().Cookies() {
		if ck.Name == name {
			id, ok := session.Verify(ck.Value, []string{testSecret})
			require.True(t, ok)
			return id
		}
	}
	return ""
}
