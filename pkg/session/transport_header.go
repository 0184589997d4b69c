package session

import (
	"net/http"
	"strings"
	"time"

	"github.com/dmitrymomot/sessionkit/pkg/cookie"
)

// DefaultHeader is the request and response header used by HeaderTransport
const DefaultHeader = "Authorization"

// HeaderTransport implements Transport using HTTP headers
type HeaderTransport struct {
	headerName string
	prefix     string
}

// NewHeaderTransport creates a new header-based transport. An empty
// headerName means DefaultHeader.
func NewHeaderTransport(headerName string, opts ...HeaderOption) *HeaderTransport {
	if headerName == "" {
		headerName = DefaultHeader
	}
	t := &HeaderTransport{
		headerName: headerName,
		prefix:     "Bearer ",
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// HeaderOption is a functional option for HeaderTransport
type HeaderOption func(*HeaderTransport)

// WithHeaderPrefix sets a custom prefix for the header value
func WithHeaderPrefix(prefix string) HeaderOption {
	return func(t *HeaderTransport) {
		t.prefix = prefix
	}
}

// Identifier extracts and verifies the token. The prefix is optional and
// matched case-insensitively.
func (t *HeaderTransport) Identifier(r *http.Request, secrets []string) string {
	value := strings.TrimSpace(r.Header.Get(t.headerName))
	if value == "" {
		return ""
	}

	if n := len(t.prefix); n > 0 && len(value) >= n && strings.EqualFold(value[:n], t.prefix) {
		value = strings.TrimSpace(value[n:])
	}

	id, _ := Verify(value, secrets)
	return id
}

// Emit sends the token in the response header, with its expiry in a
// companion "-Expires" header when the cookie has one.
func (t *HeaderTransport) Emit(w http.ResponseWriter, token string, attrs *cookie.Attributes) error {
	w.Header().Add(t.headerName, t.prefix+token)

	if attrs != nil && attrs.Expires != nil {
		w.Header().Set(t.headerName+"-Expires", attrs.Expires.UTC().Format(time.RFC3339))
	}

	return nil
}
