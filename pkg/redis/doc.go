// Package redis provides helpers for connecting to a Redis server and a
// Redis-backed session store.
//
// The package wraps the go-redis client and adds:
//
//   - Robust `Connect` which retries the connection using the supplied
//     configuration.
//   - `SessionStore`, a session.Store that keeps one key per session and
//     lets Redis expire it together with the session cookie.
//   - Health-check helpers to integrate Redis into HTTP liveness / readiness
//     checks, and to drive the session store's availability events.
//
// Configuration is described by the `Config` struct whose fields can be
// populated from environment variables via github.com/caarlos0/env.
//
// # Usage
//
// Import the package:
//
//	import "github.com/dmitrymomot/sessionkit/pkg/redis"
//
// Create configuration (most projects rely on env parsing):
//
//	cfg := redis.Config{
//	    ConnectionURL:  "redis://localhost:6379/0",
//	    RetryAttempts:  3,
//	    RetryInterval:  5 * time.Second,
//	    ConnectTimeout: 30 * time.Second,
//	    SessionPrefix:  "sess:",
//	    SessionTTL:     24 * time.Hour,
//	}
//
// Connect with auto-retry:
//
//	ctx := context.Background()
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//	    // handle error, probably terminate the application
//	}
//	defer client.Close()
//
// Plug the store into a session manager and keep its availability current:
//
//	store := redis.NewSessionStoreFromConfig(client, cfg)
//	go store.Monitor(ctx, cfg.HealthcheckInterval)
//
//	manager, err := session.New(session.WithStore(store), session.WithSecrets(secret))
//
// While pings fail the store announces session.Unavailable and the session
// middleware lets requests through without a session.
//
// Register a health-check in your observability stack:
//
//	checker := redis.Healthcheck(client)
//	if err := checker(ctx); err != nil {
//	    // redis is not healthy
//	}
//
// # Errors
//
// The package defines several sentinel errors (e.g. ErrRedisNotReady) that wrap
// the underlying go-redis errors using errors.Join. This makes it easy to
// compare and unwrap.
//
// # See Also
//
//   - https://github.com/redis/go-redis – underlying driver
package redis
