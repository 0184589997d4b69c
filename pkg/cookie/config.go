package cookie

import (
	"strings"
)

// Config holds cookie manager configuration
type Config struct {
	Secrets     string `env:"COOKIE_SECRETS" envDefault:""`
	Path        string `env:"COOKIE_PATH" envDefault:"/"`
	Domain      string `env:"COOKIE_DOMAIN" envDefault:""`
	MaxAge      int    `env:"COOKIE_MAX_AGE" envDefault:"0"`
	Secure      string `env:"COOKIE_SECURE" envDefault:"false"`
	HttpOnly    bool   `env:"COOKIE_HTTP_ONLY" envDefault:"true"`
	SameSite    string `env:"COOKIE_SAME_SITE" envDefault:"lax"`
	Priority    string `env:"COOKIE_PRIORITY" envDefault:""`
	Partitioned bool   `env:"COOKIE_PARTITIONED" envDefault:"false"`
}

// DefaultConfig returns default cookie configuration
func DefaultConfig() Config {
	return Config{
		Path:     "/",
		Secure:   string(SecureOff),
		HttpOnly: true,
		SameSite: "lax",
	}
}

// SplitSecrets splits a comma-separated secret list, trimming blanks.
// Order is preserved: the first secret signs, all of them verify.
func SplitSecrets(s string) []string {
	if s == "" {
		return nil
	}

	parts := strings.Split(s, ",")
	secrets := make([]string, 0, len(parts))

	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			secrets = append(secrets, p)
		}
	}

	return secrets
}

// Options converts the config into cookie options. Only non-zero values are
// applied on top of the defaults.
func (c Config) Options() ([]Option, error) {
	opts := make([]Option, 0, 8)

	if c.Path != "" {
		opts = append(opts, WithPath(c.Path))
	}
	if c.Domain != "" {
		opts = append(opts, WithDomain(c.Domain))
	}
	if c.MaxAge != 0 {
		opts = append(opts, WithMaxAge(c.MaxAge))
	}

	mode, err := ParseSecureMode(c.Secure)
	if err != nil {
		return nil, err
	}
	opts = append(opts, func(o *Options) { o.Secure = mode })
	opts = append(opts, WithHTTPOnly(c.HttpOnly))

	if c.SameSite != "" {
		opts = append(opts, WithSameSite(ParseSameSite(c.SameSite)))
	}
	if c.Priority != "" {
		opts = append(opts, WithPriority(c.Priority))
	}
	if c.Partitioned {
		opts = append(opts, WithPartitioned(true))
	}

	return opts, nil
}

// NewFromConfig creates a new Manager from the provided Config.
func NewFromConfig(cfg Config, opts ...Option) (*Manager, error) {
	configOpts, err := cfg.Options()
	if err != nil {
		return nil, err
	}
	configOpts = append(configOpts, opts...)

	return New(SplitSecrets(cfg.Secrets), configOpts...)
}
