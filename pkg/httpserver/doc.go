// Package httpserver provides a lightweight wrapper around net/http that adds
// graceful shutdown, configurable server timeouts, health-check handlers, and
// structured logging via slog.
//
// The core type is Server which embeds *http.Server behaviour and augments it
// with:
//
//   - Graceful Shutdown – Run blocks until the context is cancelled or an
//     interrupt/TERM signal is received and then shuts the server down using
//     http.Server.Shutdown with a configurable deadline.
//
//   - Functional Options – Construction is done through New or NewFromConfig
//     together with Option helpers such as WithAddr, WithReadTimeout and
//     WithLogger. This keeps the API stable while allowing incremental
//     features.
//
//   - Hooks – WithStartHook and WithStopHook let callers execute side-effects
//     around the server life-cycle.
//
//   - Health Checks – HealthCheckHandler returns an http.HandlerFunc that can
//     be mounted as both liveness and readiness checks. ReadyFunc adapts a
//     boolean check such as session.Manager.Ready into a readiness check.
//
// # Architecture
//
// A Server holds an internal immutable *config generated from the supplied
// Option values. Once Run is called the underlying *http.Server instance is
// initialised (or the one provided by WithServer is reused) and started in its
// own goroutine. A signal listener waits for os.Interrupt or syscall.SIGTERM
// and invokes graceful shutdown. All public errors are wrapped with ErrStart
// and ErrShutdown sentinel errors so they can be inspected with errors.Is.
//
// # Usage
//
//	import (
//		"context"
//		"log/slog"
//
//		"github.com/go-chi/chi/v5"
//		"github.com/dmitrymomot/sessionkit/pkg/httpserver"
//		"github.com/dmitrymomot/sessionkit/pkg/session"
//	)
//
//	func main() {
//		sessions, _ := session.New(session.WithSecrets("keyboard cat"))
//		defer sessions.Close()
//
//		r := chi.NewRouter()
//		r.Get("/livez", httpserver.HealthCheckHandler(slog.Default()))
//		r.Get("/readyz", httpserver.HealthCheckHandler(slog.Default(),
//			httpserver.ReadyFunc("sessions", sessions.Ready),
//		))
//		r.Group(func(r chi.Router) {
//			r.Use(sessions.Middleware)
//			// session-aware routes
//		})
//
//		srv := httpserver.New(
//			httpserver.WithAddr(":8080"),
//			httpserver.WithShutdownTimeout(10*time.Second),
//		)
//
//		if err := srv.Run(context.Background(), r); err != nil {
//			slog.Error("server stopped", "err", err)
//		}
//	}
//
// # Errors
//
// Run wraps all listen errors with ErrStart, while Shutdown wraps underlying
// shutdown errors with ErrShutdown. Use errors.Is to distinguish them.
// Readiness adapters built with ReadyFunc report ErrNotReady.
package httpserver
