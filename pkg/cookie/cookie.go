package cookie

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"
)

const minSecretLength = 32

// Manager reads and writes plain and signed cookies and parses incoming
// cookies into the request context.
type Manager struct {
	secrets  []string
	defaults Options
}

func New(secrets []string, opts ...Option) (*Manager, error) {
	if len(secrets) == 0 {
		return nil, ErrNoSecret
	}

	secrets = slices.DeleteFunc(slices.Clone(secrets), func(s string) bool { return s == "" })
	if len(secrets) == 0 {
		return nil, ErrNoSecret
	}

	for i, s := range secrets {
		if len(s) < minSecretLength {
			return nil, fmt.Errorf("%w: secret %d has %d chars, need at least %d", ErrSecretTooShort, i, len(s), minSecretLength)
		}
	}

	return &Manager{
		secrets:  secrets,
		defaults: ApplyOptions(DefaultOptions(), opts...),
	}, nil
}

// Secrets returns a copy of the configured secrets, newest first.
func (m *Manager) Secrets() []string {
	return slices.Clone(m.secrets)
}

func (m *Manager) Set(w http.ResponseWriter, name, value string, opts ...Option) error {
	attrs := NewAttributes(ApplyOptions(m.defaults, opts...))
	header := attrs.Serialize(name, value)
	if header == "" {
		return fmt.Errorf("%w: cookie %q", ErrInvalidFormat, name)
	}
	w.Header().Add("Set-Cookie", header)
	return nil
}

func (m *Manager) Get(r *http.Request, name string) (string, error) {
	c, err := r.Cookie(name)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return "", ErrCookieNotFound
		}
		return "", err
	}
	return DecodeValue(c.Value), nil
}

func (m *Manager) Delete(w http.ResponseWriter, name string) {
	c := &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     m.defaults.Path,
		Domain:   m.defaults.Domain,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: m.defaults.HttpOnly,
		SameSite: m.defaults.SameSite,
		Secure:   m.defaults.Secure == SecureOn,
	}
	http.SetCookie(w, c)
}

// SetSigned writes "s:" + Sign(value) using the newest secret.
func (m *Manager) SetSigned(w http.ResponseWriter, name, value string, opts ...Option) error {
	return m.Set(w, name, SignedPrefix+Sign(value, m.secrets[0]), opts...)
}

func (m *Manager) GetSigned(r *http.Request, name string) (string, error) {
	raw, err := m.Get(r, name)
	if err != nil {
		return "", err
	}
	if !strings.HasPrefix(raw, SignedPrefix) {
		return "", ErrInvalidFormat
	}
	value, ok := Unsign(raw[len(SignedPrefix):], m.secrets)
	if !ok {
		return "", ErrInvalidSignature
	}
	return value, nil
}

// Parse splits the request cookies into the raw bag and the bag of values
// whose signature verified. The first occurrence of a name wins.
func (m *Manager) Parse(r *http.Request) (raw, signed Bag) {
	raw, signed = Bag{}, Bag{}
	for _, c := range r.Cookies() {
		if _, seen := raw[c.Name]; seen {
			continue
		}
		value := DecodeValue(c.Value)
		raw[c.Name] = value

		if strings.HasPrefix(value, SignedPrefix) {
			if v, ok := Unsign(value[len(SignedPrefix):], m.secrets); ok {
				signed[c.Name] = v
			}
		}
	}
	return raw, signed
}

// Middleware parses cookies once and exposes them through RawFromContext,
// SignedFromContext and SecretsFromContext.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := RawFromContext(r.Context()); ok {
			next.ServeHTTP(w, r)
			return
		}
		raw, signed := m.Parse(r)
		ctx := WithParsed(r.Context(), raw, signed, m.Secrets())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// DecodeValue undoes percent-encoding applied by clients that URI-encode
// cookie values. '+' is kept as-is because signatures use standard base64.
func DecodeValue(v string) string {
	if !strings.Contains(v, "%") {
		return v
	}
	if d, err := url.PathUnescape(v); err == nil {
		return d
	}
	return v
}
