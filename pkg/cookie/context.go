package cookie

import "context"

// Bag maps cookie names to values.
type Bag map[string]string

type parsedContextKey struct{}

type parsed struct {
	raw     Bag
	signed  Bag
	secrets []string
}

// WithParsed attaches parsed cookie bags and the secrets used to verify them.
func WithParsed(ctx context.Context, raw, signed Bag, secrets []string) context.Context {
	return context.WithValue(ctx, parsedContextKey{}, &parsed{raw: raw, signed: signed, secrets: secrets})
}

// RawFromContext returns every cookie value seen by the parser middleware.
func RawFromContext(ctx context.Context) (Bag, bool) {
	p, ok := ctx.Value(parsedContextKey{}).(*parsed)
	if !ok || p.raw == nil {
		return nil, false
	}
	return p.raw, true
}

// SignedFromContext returns the cookie values whose signature verified,
// with the signature already stripped.
func SignedFromContext(ctx context.Context) (Bag, bool) {
	p, ok := ctx.Value(parsedContextKey{}).(*parsed)
	if !ok || p.signed == nil {
		return nil, false
	}
	return p.signed, true
}

// SecretsFromContext returns the secrets the parser middleware was built with.
func SecretsFromContext(ctx context.Context) []string {
	p, ok := ctx.Value(parsedContextKey{}).(*parsed)
	if !ok {
		return nil
	}
	return p.secrets
}
