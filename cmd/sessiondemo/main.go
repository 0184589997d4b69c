// Command sessiondemo serves a small chi application backed by session
// middleware. It reads its settings from the environment (optionally seeded
// from .env files) and keeps sessions in memory or in Redis.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/sessionkit/pkg/config"
	"github.com/dmitrymomot/sessionkit/pkg/cookie"
	"github.com/dmitrymomot/sessionkit/pkg/httpserver"
	"github.com/dmitrymomot/sessionkit/pkg/logger"
	"github.com/dmitrymomot/sessionkit/pkg/redis"
	"github.com/dmitrymomot/sessionkit/pkg/session"
)

type appConfig struct {
	Store string `env:"SESSION_STORE" envDefault:"memory"` // memory or redis
}

func main() {
	config.MustLoadEnv(existing(".env", ".env.local")...)

	var app appConfig
	config.MustLoad(&app)

	var logCfg logger.Config
	config.MustLoad(&logCfg)

	log, err := logger.NewFromConfig(logCfg,
		logger.WithContextExtractors(func(ctx context.Context) (slog.Attr, bool) {
			id := middleware.GetReqID(ctx)
			return logger.RequestID(id), id != ""
		}, session.LoggerExtractor()),
	)
	if err != nil {
		panic(err)
	}
	logger.SetAsDefault(log)

	if err := run(app, log); err != nil {
		log.Error("sessiondemo stopped", logger.Error(err))
		os.Exit(1)
	}
}

// existing filters out env files that are not present.
func existing(paths ...string) []string {
	var found []string
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			found = append(found, p)
		}
	}
	return found
}

func run(app appConfig, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		sessCfg   session.Config
		cookieCfg cookie.Config
		srvCfg    httpserver.Config
	)
	if err := config.Load(&sessCfg); err != nil {
		return err
	}
	if err := config.Load(&cookieCfg); err != nil {
		return err
	}
	if err := config.Load(&srvCfg); err != nil {
		return err
	}

	// Cookie secrets double as session secrets when SESSION_SECRETS is empty.
	cookies, err := cookie.NewFromConfig(cookieCfg)
	if err != nil && (!errors.Is(err, cookie.ErrNoSecret) || len(sessCfg.Secrets) == 0) {
		return err
	}

	opts := []session.Option{session.WithLogger(log)}
	var checks []func(context.Context) error

	switch app.Store {
	case "redis":
		var redisCfg redis.Config
		if err := config.Load(&redisCfg); err != nil {
			return err
		}
		client, err := redis.Connect(ctx, redisCfg)
		if err != nil {
			return err
		}
		defer client.Close()

		store := redis.NewSessionStoreFromConfig(client, redisCfg, redis.WithLogger(log))
		defer store.Close()
		go store.Monitor(ctx, redisCfg.HealthcheckInterval)

		opts = append(opts, session.WithStore(store))
		checks = append(checks, redis.Healthcheck(client))
	case "memory", "":
	default:
		return errors.New("unknown SESSION_STORE: " + app.Store)
	}

	sessions, err := session.NewFromConfig(sessCfg, opts...)
	if err != nil {
		return err
	}

	defer sessions.Close()

	checks = append(checks, httpserver.ReadyFunc("sessions", sessions.Ready))

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)
	r.Get("/livez", httpserver.HealthCheckHandler(log))
	r.Get("/readyz", httpserver.HealthCheckHandler(log, checks...))

	r.Group(func(r chi.Router) {
		if cookies != nil {
			r.Use(cookies.Middleware)
		}
		r.Use(sessions.Middleware)

		r.Get("/", views)
		r.Post("/login", login)
		r.Post("/logout", logout)
		r.Post("/forget", forget)
		r.With(session.RequireValue("user")).Get("/me", me)
	})

	srv := httpserver.NewFromConfig(srvCfg,
		httpserver.WithLogger(log),
		httpserver.WithServer(&http.Server{
			ErrorLog: slog.NewLogLogger(log.Handler(), slog.LevelWarn),
		}),
		httpserver.WithStartHook(func(l *slog.Logger) {
			l.Info("session store selected", slog.String("kind", app.Store), logger.Store(fmt.Sprintf("%T", sessions.Store())))
		}),
		httpserver.WithStopHook(func(l *slog.Logger) {
			n, err := sessions.Len(context.Background())
			if err != nil {
				l.Warn("session count unavailable", logger.Error(err))
				return
			}
			l.Info("http server drained", slog.Int("sessions", n))
		}),
	)
	return srv.Run(ctx, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func views(w http.ResponseWriter, r *http.Request) {
	sess := session.MustFromContext(r.Context())
	n, _ := sess.GetInt("views")
	n++
	sess.Set("views", n)
	writeJSON(w, http.StatusOK, map[string]any{"views": n})
}

func login(w http.ResponseWriter, r *http.Request) {
	user := r.FormValue("user")
	if user == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "user is required"})
		return
	}
	sess := session.MustFromContext(r.Context())
	if err := sess.Regenerate(r.Context()); err != nil {
		slog.WarnContext(r.Context(), "previous session not destroyed", logger.Error(err))
	}
	sess.Set("user", user)
	writeJSON(w, http.StatusOK, map[string]string{"user": user})
}

func logout(w http.ResponseWriter, r *http.Request) {
	if err := session.MustFromContext(r.Context()).Destroy(r.Context()); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// forget detaches the session from the request; SESSION_UNSET decides
// whether the stored record survives.
func forget(w http.ResponseWriter, r *http.Request) {
	session.Unset(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func me(w http.ResponseWriter, r *http.Request) {
	sess := session.MustFromContext(r.Context())
	user, _ := sess.GetString("user")
	writeJSON(w, http.StatusOK, map[string]any{"id": sess.ID(), "user": user})
}
