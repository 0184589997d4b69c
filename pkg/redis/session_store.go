package redis

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/sessionkit/pkg/logger"
	"github.com/dmitrymomot/sessionkit/pkg/session"
)

// SessionStore implements session.Store on top of Redis. Each session is a
// single key holding the JSON record, expiring together with its cookie.
// Availability changes detected by Check or Monitor are announced through
// the embedded session.Events.
type SessionStore struct {
	session.Events

	db            redis.UniversalClient
	prefix        string
	ttl           time.Duration
	scanBatchSize int64
	healthcheck   func(context.Context) error
	logger        *slog.Logger
	down          bool
}

// SessionStoreOption configures a SessionStore
type SessionStoreOption func(*SessionStore)

// WithPrefix sets the key prefix (default "sess:")
func WithPrefix(prefix string) SessionStoreOption {
	return func(s *SessionStore) {
		s.prefix = prefix
	}
}

// WithDefaultTTL sets the lifetime of sessions whose cookie has no expiry
func WithDefaultTTL(ttl time.Duration) SessionStoreOption {
	return func(s *SessionStore) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithScanBatchSize sets the SCAN COUNT hint
func WithScanBatchSize(n int) SessionStoreOption {
	return func(s *SessionStore) {
		if n > 0 {
			s.scanBatchSize = int64(n)
		}
	}
}

// WithLogger sets the logger used for availability changes
func WithLogger(l *slog.Logger) SessionStoreOption {
	return func(s *SessionStore) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewSessionStore wraps a connected client. The client stays owned by the
// caller.
func NewSessionStore(client redis.UniversalClient, opts ...SessionStoreOption) *SessionStore {
	s := &SessionStore{
		db:            client,
		prefix:        "sess:",
		ttl:           24 * time.Hour,
		scanBatchSize: 1000,
		healthcheck:   Healthcheck(client),
		logger:        logger.Discard(),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.logger = s.logger.With(logger.Component("redis"), logger.Store("redis"))
	return s
}

// NewSessionStoreFromConfig applies the session fields of cfg.
func NewSessionStoreFromConfig(client redis.UniversalClient, cfg Config, opts ...SessionStoreOption) *SessionStore {
	configOpts := []SessionStoreOption{
		WithPrefix(cfg.SessionPrefix),
		WithDefaultTTL(cfg.SessionTTL),
		WithScanBatchSize(cfg.ScanBatchSize),
	}
	return NewSessionStore(client, append(configOpts, opts...)...)
}

func (s *SessionStore) key(id string) string {
	return s.prefix + id
}

// ttlFor returns how long rec should live. Zero or less means it already
// expired.
func (s *SessionStore) ttlFor(rec *session.Record) time.Duration {
	if rec.Cookie != nil && rec.Cookie.Expires != nil {
		return time.Until(*rec.Cookie.Expires)
	}
	return s.ttl
}

// Get returns nil for missing sessions (redis.Nil becomes nil).
func (s *SessionStore) Get(ctx context.Context, id string) (*session.Record, error) {
	if id == "" {
		return nil, nil
	}
	val, err := s.db.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	rec, err := session.DecodeRecord(val)
	if err != nil {
		return nil, errors.Join(ErrCorruptSession, err)
	}
	return rec, nil
}

// Set stores rec with a TTL derived from its cookie. Records that already
// expired are deleted instead.
func (s *SessionStore) Set(ctx context.Context, id string, rec *session.Record) error {
	if id == "" || rec == nil {
		return session.ErrInvalidSession
	}
	ttl := s.ttlFor(rec)
	if ttl <= 0 {
		return s.Destroy(ctx, id)
	}
	payload, err := session.EncodeRecord(rec)
	if err != nil {
		return err
	}
	return s.db.Set(ctx, s.key(id), payload, ttl).Err()
}

// Touch rewrites the stored cookie and extends the TTL. The stored data is
// kept; missing sessions are ignored.
func (s *SessionStore) Touch(ctx context.Context, id string, rec *session.Record) error {
	if rec == nil {
		return session.ErrInvalidSession
	}
	stored, err := s.Get(ctx, id)
	if err != nil || stored == nil {
		return err
	}
	stored.Cookie = rec.Cookie.Clone()

	ttl := s.ttlFor(stored)
	if ttl <= 0 {
		return s.Destroy(ctx, id)
	}
	payload, err := session.EncodeRecord(stored)
	if err != nil {
		return err
	}
	err = s.db.SetArgs(ctx, s.key(id), payload, redis.SetArgs{Mode: "XX", TTL: ttl}).Err()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	return err
}

// Destroy removes a session. Missing sessions are ignored.
func (s *SessionStore) Destroy(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	return s.db.Del(ctx, s.key(id)).Err()
}

// keys returns all prefixed keys using SCAN to avoid blocking Redis.
func (s *SessionStore) keys(ctx context.Context) ([]string, error) {
	var (
		keys   []string
		cursor uint64
	)
	for {
		batch, next, err := s.db.Scan(ctx, cursor, s.prefix+"*", s.scanBatchSize).Result()
		if err != nil {
			return nil, err
		}
		keys = append(keys, batch...)
		if next == 0 {
			return keys, nil
		}
		cursor = next
	}
}

// All returns every stored session keyed by id.
func (s *SessionStore) All(ctx context.Context) (map[string]*session.Record, error) {
	keys, err := s.keys(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]*session.Record, len(keys))
	if len(keys) == 0 {
		return out, nil
	}

	vals, err := s.db.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}
	for i, v := range vals {
		str, ok := v.(string)
		if !ok {
			// expired between SCAN and MGET
			continue
		}
		rec, err := session.DecodeRecord([]byte(str))
		if err != nil {
			return nil, errors.Join(ErrCorruptSession, err)
		}
		out[strings.TrimPrefix(keys[i], s.prefix)] = rec
	}
	return out, nil
}

// Len counts stored sessions.
func (s *SessionStore) Len(ctx context.Context) (int, error) {
	keys, err := s.keys(ctx)
	if err != nil {
		return 0, err
	}
	return len(keys), nil
}

// Clear deletes every key under the prefix. Other keys are left alone.
func (s *SessionStore) Clear(ctx context.Context) error {
	keys, err := s.keys(ctx)
	if err != nil || len(keys) == 0 {
		return err
	}
	return s.db.Del(ctx, keys...).Err()
}

// Check pings Redis once and announces a change of availability. It is not
// safe to call concurrently; Monitor calls it from a single goroutine.
func (s *SessionStore) Check(ctx context.Context) error {
	err := s.healthcheck(ctx)
	switch {
	case err != nil && !s.down:
		s.down = true
		s.logger.WarnContext(ctx, "session store unavailable", logger.Error(err))
		_ = s.Unavailable(ctx)
	case err == nil && s.down:
		s.down = false
		s.logger.InfoContext(ctx, "session store available again")
		_ = s.Available(ctx)
	}
	return err
}

// Monitor runs Check every interval until ctx is done.
func (s *SessionStore) Monitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = s.Check(ctx)
		}
	}
}

// Close stops availability notifications. The Redis client is left open.
func (s *SessionStore) Close() error {
	return s.CloseEvents()
}
