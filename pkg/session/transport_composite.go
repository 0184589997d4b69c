package session

import (
	"errors"
	"net/http"

	"github.com/dmitrymomot/sessionkit/pkg/cookie"
)

// CompositeTransport tries multiple transports in order
type CompositeTransport struct {
	transports []Transport
}

// NewCompositeTransport creates a transport that tries multiple methods
func NewCompositeTransport(transports ...Transport) *CompositeTransport {
	return &CompositeTransport{transports: transports}
}

// Identifier returns the first id any transport finds
func (c *CompositeTransport) Identifier(r *http.Request, secrets []string) string {
	for _, t := range c.transports {
		if id := t.Identifier(r, secrets); id != "" {
			return id
		}
	}
	return ""
}

// Emit sends the token through every transport
func (c *CompositeTransport) Emit(w http.ResponseWriter, token string, attrs *cookie.Attributes) error {
	var errs []error
	for _, t := range c.transports {
		if err := t.Emit(w, token, attrs); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
