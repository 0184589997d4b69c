package cookie

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"
)

// Attributes is the mutable attribute set of a cookie that is persisted along
// with the value it protects. A nil Expires means a browser-session cookie.
type Attributes struct {
	Expires        *time.Time
	OriginalMaxAge *time.Duration
	Path           string
	Domain         string
	Secure         bool
	HTTPOnly       bool
	SameSite       http.SameSite
	Priority       string
	Partitioned    bool
	Signed         bool
}

// NewAttributes builds attributes from opts. OriginalMaxAge is taken from the
// initial max-age. SecureAuto is left unresolved (Secure=false); callers that
// know the request resolve it.
func NewAttributes(opts Options) *Attributes {
	a := &Attributes{
		Path:        opts.Path,
		Domain:      opts.Domain,
		Secure:      opts.Secure == SecureOn,
		HTTPOnly:    opts.HttpOnly,
		SameSite:    opts.SameSite,
		Priority:    opts.Priority,
		Partitioned: opts.Partitioned,
		Signed:      true,
	}
	if a.Path == "" {
		a.Path = "/"
	}
	if opts.MaxAge > 0 {
		d := time.Duration(opts.MaxAge) * time.Second
		a.SetMaxAge(d)
		a.OriginalMaxAge = &d
	}
	return a
}

// MaxAge returns the time left until Expires. ok is false for session cookies.
func (a *Attributes) MaxAge() (d time.Duration, ok bool) {
	if a == nil || a.Expires == nil {
		return 0, false
	}
	return time.Until(*a.Expires), true
}

// SetMaxAge moves Expires to now+d. OriginalMaxAge is left untouched.
func (a *Attributes) SetMaxAge(d time.Duration) {
	exp := time.Now().Add(d)
	a.Expires = &exp
}

// SetExpires assigns Expires directly and recomputes OriginalMaxAge from it.
// A nil t turns the cookie into a browser-session cookie.
func (a *Attributes) SetExpires(t *time.Time) {
	if t == nil {
		a.Expires = nil
		a.OriginalMaxAge = nil
		return
	}
	exp := *t
	a.Expires = &exp
	d := time.Until(exp)
	a.OriginalMaxAge = &d
}

// ResetMaxAge restores the remaining lifetime to OriginalMaxAge.
func (a *Attributes) ResetMaxAge() {
	if a == nil {
		return
	}
	if a.OriginalMaxAge == nil {
		a.Expires = nil
		return
	}
	a.SetMaxAge(*a.OriginalMaxAge)
}

// Expired reports whether Expires lies in the past.
func (a *Attributes) Expired() bool {
	return a != nil && a.Expires != nil && !a.Expires.After(time.Now())
}

// Clone returns a deep copy.
func (a *Attributes) Clone() *Attributes {
	if a == nil {
		return nil
	}
	c := *a
	if a.Expires != nil {
		exp := *a.Expires
		c.Expires = &exp
	}
	if a.OriginalMaxAge != nil {
		d := *a.OriginalMaxAge
		c.OriginalMaxAge = &d
	}
	return &c
}

// Serialize renders a Set-Cookie header value for name=value.
func (a *Attributes) Serialize(name, value string) string {
	c := &http.Cookie{
		Name:        name,
		Value:       value,
		Path:        a.Path,
		Domain:      a.Domain,
		Secure:      a.Secure,
		HttpOnly:    a.HTTPOnly,
		SameSite:    a.SameSite,
		Partitioned: a.Partitioned,
	}
	if a.Expires != nil {
		c.Expires = *a.Expires
	}

	s := c.String()
	if s == "" {
		return ""
	}
	if p := canonicalPriority(a.Priority); p != "" {
		s += "; Priority=" + p
	}
	return s
}

func canonicalPriority(p string) string {
	switch strings.ToLower(p) {
	case "low":
		return "Low"
	case "medium":
		return "Medium"
	case "high":
		return "High"
	default:
		return ""
	}
}

type attributesJSON struct {
	OriginalMaxAge *int64     `json:"originalMaxAge"`
	Partitioned    bool       `json:"partitioned,omitempty"`
	Priority       string     `json:"priority,omitempty"`
	Expires        *time.Time `json:"expires"`
	Secure         bool       `json:"secure"`
	HTTPOnly       bool       `json:"httpOnly"`
	Domain         string     `json:"domain,omitempty"`
	Path           string     `json:"path"`
	SameSite       string     `json:"sameSite,omitempty"`
	Signed         bool       `json:"signed,omitempty"`
}

// MarshalJSON encodes OriginalMaxAge in milliseconds and SameSite by name.
func (a Attributes) MarshalJSON() ([]byte, error) {
	out := attributesJSON{
		Partitioned: a.Partitioned,
		Priority:    a.Priority,
		Expires:     a.Expires,
		Secure:      a.Secure,
		HTTPOnly:    a.HTTPOnly,
		Domain:      a.Domain,
		Path:        a.Path,
		SameSite:    sameSiteName(a.SameSite),
		Signed:      a.Signed,
	}
	if a.OriginalMaxAge != nil {
		ms := a.OriginalMaxAge.Milliseconds()
		out.OriginalMaxAge = &ms
	}
	return json.Marshal(out)
}

// UnmarshalJSON is the inverse of MarshalJSON. String-encoded expiry values
// are parsed back into time.Time.
func (a *Attributes) UnmarshalJSON(data []byte) error {
	var in attributesJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*a = Attributes{
		Expires:     in.Expires,
		Path:        in.Path,
		Domain:      in.Domain,
		Secure:      in.Secure,
		HTTPOnly:    in.HTTPOnly,
		SameSite:    parseSameSite(in.SameSite),
		Priority:    in.Priority,
		Partitioned: in.Partitioned,
		Signed:      in.Signed,
	}
	if in.OriginalMaxAge != nil {
		d := time.Duration(*in.OriginalMaxAge) * time.Millisecond
		a.OriginalMaxAge = &d
	}
	return nil
}

func sameSiteName(s http.SameSite) string {
	switch s {
	case http.SameSiteLaxMode:
		return "lax"
	case http.SameSiteStrictMode:
		return "strict"
	case http.SameSiteNoneMode:
		return "none"
	default:
		return ""
	}
}

// ParseSameSite maps "lax", "strict" and "none" to http.SameSite. "true" is
// shorthand for strict. Anything else, "false" included, yields
// http.SameSiteDefaultMode, which omits the attribute.
func ParseSameSite(s string) http.SameSite {
	return parseSameSite(s)
}

func parseSameSite(s string) http.SameSite {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "lax":
		return http.SameSiteLaxMode
	case "strict", "true":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteDefaultMode
	}
}
