package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/dmitrymomot/sessionkit/pkg/async"
	"github.com/dmitrymomot/sessionkit/pkg/broadcast"
	"github.com/dmitrymomot/sessionkit/pkg/cookie"
	"github.com/dmitrymomot/sessionkit/pkg/logger"
)

// ErrorHandler answers a request whose session could not be loaded.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// PersistErrorHandler receives store failures that happen while a response
// is being finished. The response itself is always completed.
type PersistErrorHandler func(r *http.Request, err error)

// Manager handles session operations
type Manager struct {
	config     Config
	store      Store
	toucher    Toucher
	storeName  string
	transport  Transport
	generate   Generator
	cookieOpts []cookie.Option
	cookie     cookie.Options
	policy     policy

	logger              *slog.Logger
	errorHandler        ErrorHandler
	persistErrorHandler PersistErrorHandler

	ready     atomic.Bool
	cancel    context.CancelFunc
	done      chan struct{}
	closeOnce sync.Once
}

// New creates a new session manager with the given options. Without
// WithStore a MemoryStore sized by Config.StoreCapacity is used; without
// WithTransport the session travels in a cookie named Config.Name.
func New(opts ...Option) (*Manager, error) {
	m := &Manager{
		config:   DefaultConfig(),
		generate: RandomGenerator,
	}

	for _, opt := range opts {
		opt(m)
	}

	if m.config.Unset == "" {
		m.config.Unset = UnsetKeep
	}
	if err := m.config.Validate(); err != nil {
		return nil, err
	}

	base, err := m.config.CookieOptions()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	m.cookie = cookie.ApplyOptions(base, m.cookieOpts...)
	if m.cookie.Path == "" {
		m.cookie.Path = "/"
	}

	if m.store == nil {
		m.store = NewMemoryStore(WithCapacity(m.config.StoreCapacity))
	}
	if t, ok := m.store.(Toucher); ok {
		m.toucher = t
	}
	m.storeName = fmt.Sprintf("%T", m.store)

	if m.transport == nil {
		m.transport = NewCookieTransport(m.config.Name)
	}
	if m.generate == nil {
		m.generate = RandomGenerator
	}

	if m.logger == nil {
		m.logger = logger.Discard()
	}
	m.logger = m.logger.With(logger.Component("session"))

	if m.errorHandler == nil {
		m.errorHandler = m.defaultErrorHandler
	}
	if m.persistErrorHandler == nil {
		m.persistErrorHandler = m.defaultPersistErrorHandler
	}

	m.policy = policy{
		rolling:           m.config.Rolling,
		saveUninitialized: m.config.SaveUninitialized,
		unsetDestroy:      m.config.Unset == UnsetDestroy,
	}

	m.ready.Store(true)
	if n, ok := m.store.(Notifier); ok {
		ctx, cancel := context.WithCancel(context.Background())
		m.cancel = cancel
		m.done = make(chan struct{})
		sub := n.Subscribe(ctx)
		m.ready.Store(n.Current() == Available)
		go m.watchAvailability(ctx, sub)
	}

	return m, nil
}

// Store returns the underlying store
func (m *Manager) Store() Store {
	return m.store
}

// Ready reports whether the store last announced itself available
func (m *Manager) Ready() bool {
	return m.ready.Load()
}

// Close stops listening for store availability events. The store itself is
// left open.
func (m *Manager) Close() error {
	m.closeOnce.Do(func() {
		if m.cancel != nil {
			m.cancel()
			<-m.done
		}
	})
	return nil
}

func (m *Manager) watchAvailability(ctx context.Context, sub broadcast.Subscriber[Availability]) {
	defer close(m.done)
	for msg := range sub.Receive(ctx) {
		m.setAvailability(msg.Data)
	}
}

func (m *Manager) setAvailability(a Availability) {
	prev := m.ready.Swap(a == Available)
	if prev != (a == Available) {
		m.logger.Info("session store availability changed",
			logger.Store(m.storeName),
			slog.String("state", a.String()),
		)
	}
}

// Len counts stored sessions when the store supports it
func (m *Manager) Len(ctx context.Context) (int, error) {
	c, ok := m.store.(Counter)
	if !ok {
		return 0, ErrNotSupported
	}
	return c.Len(ctx)
}

// All lists stored sessions when the store supports it
func (m *Manager) All(ctx context.Context) (map[string]*Record, error) {
	l, ok := m.store.(Lister)
	if !ok {
		return nil, ErrNotSupported
	}
	return l.All(ctx)
}

// Clear drops every stored session when the store supports it
func (m *Manager) Clear(ctx context.Context) error {
	c, ok := m.store.(Clearer)
	if !ok {
		return ErrNotSupported
	}
	return c.Clear(ctx)
}

// secretsFor prefers configured secrets and falls back to the ones a cookie
// parser middleware put on the request.
func (m *Manager) secretsFor(r *http.Request) []string {
	if len(m.config.Secrets) > 0 {
		return m.config.Secrets
	}
	return cookie.SecretsFromContext(r.Context())
}

// newCookie builds attributes for a freshly generated session.
func (m *Manager) newCookie(r *http.Request) *cookie.Attributes {
	attrs := cookie.NewAttributes(m.cookie)
	if m.cookie.Secure == cookie.SecureAuto {
		attrs.Secure = m.isSecure(r)
	}
	return attrs
}

// isSecure reports whether the request arrived over TLS. Behind a trusted
// proxy the first X-Forwarded-Proto value decides.
func (m *Manager) isSecure(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	if !m.config.TrustProxy {
		return false
	}
	proto, _, _ := strings.Cut(r.Header.Get("X-Forwarded-Proto"), ",")
	return strings.EqualFold(strings.TrimSpace(proto), "https")
}

func (m *Manager) fetch(ctx context.Context, id string) *async.Future[*Record] {
	return async.Async(ctx, id, m.store.Get)
}

func (m *Manager) exec(ctx context.Context, id string, fn func(context.Context, string) error) *async.Future[struct{}] {
	return async.Async(ctx, id, func(ctx context.Context, id string) (struct{}, error) {
		return struct{}{}, fn(ctx, id)
	})
}

func (m *Manager) set(ctx context.Context, id string, rec *Record) *async.Future[struct{}] {
	return m.exec(ctx, id, func(ctx context.Context, id string) error {
		return m.store.Set(ctx, id, rec)
	})
}

func (m *Manager) touch(ctx context.Context, id string, rec *Record) *async.Future[struct{}] {
	return m.exec(ctx, id, func(ctx context.Context, id string) error {
		return m.toucher.Touch(ctx, id, rec)
	})
}

func (m *Manager) destroy(ctx context.Context, id string) *async.Future[struct{}] {
	return m.exec(ctx, id, m.store.Destroy)
}

// await waits for a persistence call, bounded by PersistTimeout.
func (m *Manager) await(f *async.Future[struct{}]) error {
	_, err := f.AwaitWithTimeout(m.config.PersistTimeout)
	if errors.Is(err, async.ErrTimeout) {
		return ErrPersistTimeout
	}
	return err
}

func (m *Manager) defaultErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	m.logger.ErrorContext(r.Context(), "session middleware failed",
		logger.Error(err),
		logger.Path(r.URL.Path),
	)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func (m *Manager) defaultPersistErrorHandler(r *http.Request, err error) {
	m.logger.ErrorContext(r.Context(), "session persistence failed",
		logger.Error(err),
		logger.Store(m.storeName),
		logger.Path(r.URL.Path),
	)
}
