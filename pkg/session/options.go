package session

import (
	"log/slog"
	"slices"
	"time"

	"github.com/dmitrymomot/sessionkit/pkg/cookie"
)

// Option is a functional option for configuring the Manager
type Option func(*Manager)

// WithStore sets a custom session store
func WithStore(store Store) Option {
	return func(m *Manager) {
		m.store = store
	}
}

// WithTransport sets a custom session transport
func WithTransport(transport Transport) Option {
	return func(m *Manager) {
		m.transport = transport
	}
}

// WithConfig sets custom configuration
func WithConfig(config Config) Option {
	return func(m *Manager) {
		m.config = config
	}
}

// WithName sets the session cookie name
func WithName(name string) Option {
	return func(m *Manager) {
		m.config.Name = name
	}
}

// WithSecrets sets the signing secrets. The first one signs new tokens.
func WithSecrets(secrets ...string) Option {
	return func(m *Manager) {
		m.config.Secrets = slices.Clone(secrets)
	}
}

// WithCookieManager takes the signing secrets from a cookie manager
func WithCookieManager(cookieMgr *cookie.Manager) Option {
	return func(m *Manager) {
		m.config.Secrets = cookieMgr.Secrets()
	}
}

// WithRolling re-sends the session cookie on every response
func WithRolling(rolling bool) Option {
	return func(m *Manager) {
		m.config.Rolling = rolling
	}
}

// WithResave writes loaded sessions back even when they did not change
func WithResave(resave bool) Option {
	return func(m *Manager) {
		m.config.Resave = resave
	}
}

// WithSaveUninitialized controls whether new, unmodified sessions are stored
func WithSaveUninitialized(save bool) Option {
	return func(m *Manager) {
		m.config.SaveUninitialized = save
	}
}

// WithUnset sets what happens to the stored session after Unset
func WithUnset(mode UnsetMode) Option {
	return func(m *Manager) {
		m.config.Unset = mode
	}
}

// WithTrustProxy honors X-Forwarded-Proto for secure detection
func WithTrustProxy(trust bool) Option {
	return func(m *Manager) {
		m.config.TrustProxy = trust
	}
}

// WithGenerator sets the session id generator
func WithGenerator(gen Generator) Option {
	return func(m *Manager) {
		m.generate = gen
	}
}

// WithCookieOptions adjusts the cookie attributes given to new sessions.
// They are applied on top of the config.
func WithCookieOptions(opts ...cookie.Option) Option {
	return func(m *Manager) {
		m.cookieOpts = append(m.cookieOpts, opts...)
	}
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = l
	}
}

// WithErrorHandler replaces the handler for load-time failures
func WithErrorHandler(h ErrorHandler) Option {
	return func(m *Manager) {
		m.errorHandler = h
	}
}

// WithPersistErrorHandler replaces the handler for end-of-response store failures
func WithPersistErrorHandler(h PersistErrorHandler) Option {
	return func(m *Manager) {
		m.persistErrorHandler = h
	}
}

// WithPersistTimeout bounds how long a response waits for the store
func WithPersistTimeout(d time.Duration) Option {
	return func(m *Manager) {
		m.config.PersistTimeout = d
	}
}
