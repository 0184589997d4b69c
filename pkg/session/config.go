package session

import (
	"fmt"
	"time"

	"github.com/dmitrymomot/sessionkit/pkg/cookie"
)

// UnsetMode decides what happens to the stored session when a handler drops
// it from the request.
type UnsetMode string

const (
	UnsetKeep    UnsetMode = "keep"
	UnsetDestroy UnsetMode = "destroy"
)

// Config holds session configuration
type Config struct {
	// Name is the cookie name (default: "connect.sid")
	Name string `env:"SESSION_NAME" envDefault:"connect.sid"`

	// Secrets sign session ids. The first one signs, all of them verify.
	Secrets []string `env:"SESSION_SECRETS" envSeparator:","`

	// Rolling re-sends the cookie on every response
	Rolling bool `env:"SESSION_ROLLING" envDefault:"false"`

	// Resave writes loaded sessions back even when unmodified
	Resave bool `env:"SESSION_RESAVE" envDefault:"false"`

	// SaveUninitialized persists new sessions that were never modified
	SaveUninitialized bool `env:"SESSION_SAVE_UNINITIALIZED" envDefault:"true"`

	Unset UnsetMode `env:"SESSION_UNSET" envDefault:"keep"`

	// TrustProxy honors X-Forwarded-Proto when deciding whether a request is secure
	TrustProxy bool `env:"SESSION_TRUST_PROXY" envDefault:"false"`

	CookiePath        string        `env:"SESSION_COOKIE_PATH" envDefault:"/"`
	CookieDomain      string        `env:"SESSION_COOKIE_DOMAIN"`
	CookieMaxAge      time.Duration `env:"SESSION_COOKIE_MAX_AGE" envDefault:"0s"`
	CookieSecure      string        `env:"SESSION_COOKIE_SECURE" envDefault:"false"`
	CookieHTTPOnly    bool          `env:"SESSION_COOKIE_HTTP_ONLY" envDefault:"true"`
	CookieSameSite    string        `env:"SESSION_COOKIE_SAME_SITE" envDefault:"lax"`
	CookiePriority    string        `env:"SESSION_COOKIE_PRIORITY"`
	CookiePartitioned bool          `env:"SESSION_COOKIE_PARTITIONED" envDefault:"false"`

	// StoreCapacity bounds the default in-memory store
	StoreCapacity int `env:"SESSION_STORE_CAPACITY" envDefault:"1000"`

	// PersistTimeout bounds the end-of-response store call (0 waits forever)
	PersistTimeout time.Duration `env:"SESSION_PERSIST_TIMEOUT" envDefault:"0s"`
}

// DefaultConfig returns default session configuration
func DefaultConfig() Config {
	return Config{
		Name:              "connect.sid",
		SaveUninitialized: true,
		Unset:             UnsetKeep,
		CookiePath:        "/",
		CookieSecure:      "false",
		CookieHTTPOnly:    true,
		CookieSameSite:    "lax",
		StoreCapacity:     DefaultCapacity,
	}
}

// Validate reports unusable values
func (c Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("%w: empty cookie name", ErrInvalidConfig)
	}
	switch c.Unset {
	case "", UnsetKeep, UnsetDestroy:
	default:
		return fmt.Errorf("%w: unset must be %q or %q, got %q", ErrInvalidConfig, UnsetKeep, UnsetDestroy, c.Unset)
	}
	if _, err := cookie.ParseSecureMode(c.CookieSecure); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if c.CookieMaxAge < 0 {
		return fmt.Errorf("%w: negative cookie max age", ErrInvalidConfig)
	}
	return nil
}

// CookieOptions converts the cookie fields into cookie.Options
func (c Config) CookieOptions() (cookie.Options, error) {
	secure, err := cookie.ParseSecureMode(c.CookieSecure)
	if err != nil {
		return cookie.Options{}, err
	}
	opts := cookie.DefaultOptions()
	if c.CookiePath != "" {
		opts.Path = c.CookiePath
	}
	opts.Domain = c.CookieDomain
	opts.MaxAge = int(c.CookieMaxAge / time.Second)
	opts.Secure = secure
	opts.HttpOnly = c.CookieHTTPOnly
	opts.SameSite = cookie.ParseSameSite(c.CookieSameSite)
	opts.Priority = c.CookiePriority
	opts.Partitioned = c.CookiePartitioned
	return opts, nil
}

// NewFromConfig creates a new Manager from the provided Config.
// Options are applied after the config and win over it.
func NewFromConfig(cfg Config, opts ...Option) (*Manager, error) {
	configOpts := []Option{
		WithConfig(cfg),
	}

	configOpts = append(configOpts, opts...)

	return New(configOpts...)
}
