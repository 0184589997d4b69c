// Package cookie provides the cookie-level building blocks used by the session
// package: detached HMAC signatures with ordered secret rotation, a mutable
// cookie attribute set that remembers its original max-age, and a parser
// middleware that exposes raw and pre-verified signed cookie values to
// downstream handlers.
//
// # Signatures
//
// Sign appends a detached HMAC-SHA256 signature to a value:
//
//	signed := cookie.Sign("abc", secret) // "abc.<base64 signature>"
//	value, ok := cookie.Unsign(signed, []string{newSecret, oldSecret})
//
// Unsign tries the secrets in order, so rotating keys is a matter of putting the
// new secret first and keeping old ones after it until issued cookies expire.
// A bad signature is reported through the boolean result, never as an error.
//
// # Attributes
//
// Attributes mirrors the Set-Cookie attribute set (Path, Domain, Expires,
// Secure, HttpOnly, SameSite, Priority, Partitioned). OriginalMaxAge is recorded
// once from the initial max-age and survives later SetMaxAge calls, which makes
// ResetMaxAge possible for rolling expirations. Attributes serialise to JSON so
// they can be persisted along with session data.
//
// # Parser
//
// Manager.Middleware parses the Cookie header once per request and stores two
// bags in the request context: every raw value, and the values whose "s:"
// signature verified against the manager secrets. The secrets themselves are
// attached as well so other middleware can reuse them.
//
//	man, err := cookie.New([]string{os.Getenv("COOKIE_SECRET")})
//	if err != nil { log.Fatal(err) }
//	handler := man.Middleware(mux)
//
// # Configuration
//
// Config can be populated from environment variables with github.com/caarlos0/env
// and turned into a Manager with NewFromConfig.
//
// # Error Handling
//
// Sentinel errors such as ErrNoSecret, ErrCookieNotFound and ErrInvalidSignature
// can be matched with errors.Is.
package cookie
