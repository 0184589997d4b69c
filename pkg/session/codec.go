package session

import (
	"crypto/rand"
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/dmitrymomot/sessionkit/pkg/cookie"
)

// Sign turns a session id into the token sent to clients.
func Sign(id, secret string) string {
	return cookie.SignedPrefix + cookie.Sign(id, secret)
}

// Verify extracts the session id from a token, trying each secret in order.
func Verify(token string, secrets []string) (string, bool) {
	if !strings.HasPrefix(token, cookie.SignedPrefix) {
		return "", false
	}
	id, ok := cookie.Unsign(token[len(cookie.SignedPrefix):], secrets)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

// Generator produces a new session id for a request.
type Generator func(r *http.Request) (string, error)

// RandomGenerator returns 24 random bytes, URL-safe base64 encoded (32 chars).
func RandomGenerator(*http.Request) (string, error) {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// UUIDGenerator returns a random UUID.
func UUIDGenerator(*http.Request) (string, error) {
	return uuid.NewString(), nil
}
