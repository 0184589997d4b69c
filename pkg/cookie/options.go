package cookie

import (
	"fmt"
	"net/http"
	"strings"
)

// SecureMode controls the Secure attribute. SecureAuto resolves per request
// from the transport security of that request.
type SecureMode string

const (
	SecureOff  SecureMode = "false"
	SecureOn   SecureMode = "true"
	SecureAuto SecureMode = "auto"
)

// ParseSecureMode accepts "true", "false" and "auto" (case-insensitive).
// An empty string means SecureOff.
func ParseSecureMode(s string) (SecureMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "false", "0", "off":
		return SecureOff, nil
	case "true", "1", "on":
		return SecureOn, nil
	case "auto":
		return SecureAuto, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidSecure, s)
	}
}

type Options struct {
	Path        string
	Domain      string
	MaxAge      int
	Secure      SecureMode
	HttpOnly    bool
	SameSite    http.SameSite
	Priority    string
	Partitioned bool
}

type Option func(*Options)

func WithPath(path string) Option {
	return func(o *Options) {
		o.Path = path
	}
}

func WithDomain(domain string) Option {
	return func(o *Options) {
		o.Domain = domain
	}
}

// WithMaxAge sets the max-age in seconds. Zero or a negative value produces
// a browser-session cookie.
func WithMaxAge(seconds int) Option {
	return func(o *Options) {
		o.MaxAge = seconds
	}
}

func WithSecure(secure bool) Option {
	return func(o *Options) {
		if secure {
			o.Secure = SecureOn
			return
		}
		o.Secure = SecureOff
	}
}

// WithSecureAuto marks the cookie secure only when the request that produced
// it arrived over a secure transport.
func WithSecureAuto() Option {
	return func(o *Options) {
		o.Secure = SecureAuto
	}
}

func WithHTTPOnly(httpOnly bool) Option {
	return func(o *Options) {
		o.HttpOnly = httpOnly
	}
}

func WithSameSite(sameSite http.SameSite) Option {
	return func(o *Options) {
		o.SameSite = sameSite
	}
}

// WithPriority sets the Priority attribute ("Low", "Medium" or "High").
func WithPriority(priority string) Option {
	return func(o *Options) {
		o.Priority = priority
	}
}

func WithPartitioned(partitioned bool) Option {
	return func(o *Options) {
		o.Partitioned = partitioned
	}
}

// DefaultOptions returns the attribute defaults used for new cookies.
func DefaultOptions() Options {
	return Options{
		Path:     "/",
		Secure:   SecureOff,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

// ApplyOptions returns a copy of base with opts applied. base is not modified.
func ApplyOptions(base Options, opts ...Option) Options {
	result := base
	for _, opt := range opts {
		if opt != nil {
			opt(&result)
		}
	}
	return result
}
