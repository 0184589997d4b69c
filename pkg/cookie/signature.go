package cookie

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"strings"
)

// SignedPrefix marks a cookie value that carries a detached signature.
const SignedPrefix = "s:"

// Sign returns value followed by a dot and the unpadded base64 HMAC-SHA256 of
// value keyed with secret.
func Sign(value, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(value))
	return value + "." + base64.RawStdEncoding.EncodeToString(mac.Sum(nil))
}

// Unsign verifies a value produced by Sign. Secrets are tried in order and the
// first match wins. Empty secrets are skipped.
func Unsign(signed string, secrets []string) (string, bool) {
	dot := strings.LastIndexByte(signed, '.')
	if dot < 0 {
		return "", false
	}
	value := signed[:dot]

	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		// Constant-time comparison keeps signature checks free of timing leaks
		expected := Sign(value, secret)
		if subtle.ConstantTimeCompare([]byte(signed), []byte(expected)) == 1 {
			return value, true
		}
	}

	return "", false
}
