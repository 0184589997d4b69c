package session

import (
	"fmt"
	"net/http"

	"github.com/dmitrymomot/sessionkit/pkg/cookie"
)

// CookieTransport implements Transport using cookies
type CookieTransport struct {
	name string
}

// NewCookieTransport creates a new cookie-based transport
func NewCookieTransport(name string) *CookieTransport {
	return &CookieTransport{name: name}
}

// Name returns the cookie name
func (t *CookieTransport) Name() string {
	return t.name
}

// Identifier looks at the request cookie first, then at the bags left by
// cookie.Manager.Middleware: already verified values are trusted, raw values
// are verified again.
func (t *CookieTransport) Identifier(r *http.Request, secrets []string) string {
	if c, err := r.Cookie(t.name); err == nil {
		if id, ok := Verify(cookie.DecodeValue(c.Value), secrets); ok {
			return id
		}
	}

	ctx := r.Context()
	if signed, ok := cookie.SignedFromContext(ctx); ok {
		if id := signed[t.name]; id != "" {
			return id
		}
	}
	if raw, ok := cookie.RawFromContext(ctx); ok {
		if id, ok := Verify(raw[t.name], secrets); ok {
			return id
		}
	}
	return ""
}

// Emit appends a Set-Cookie header carrying token
func (t *CookieTransport) Emit(w http.ResponseWriter, token string, attrs *cookie.Attributes) error {
	header := attrs.Serialize(t.name, token)
	if header == "" {
		return fmt.Errorf("%w: cookie name %q", ErrInvalidConfig, t.name)
	}
	w.Header().Add("Set-Cookie", header)
	return nil
}
