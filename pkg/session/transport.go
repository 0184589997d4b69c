package session

import (
	"net/http"

	"github.com/dmitrymomot/sessionkit/pkg/cookie"
)

// Transport defines how signed session tokens travel between client and server
type Transport interface {
	// Identifier returns the verified session id carried by r, or "".
	Identifier(r *http.Request, secrets []string) string

	// Emit sends token to the client using the given cookie attributes.
	Emit(w http.ResponseWriter, token string, attrs *cookie.Attributes) error
}
