// Package logger builds the slog loggers used across sessionkit.
//
// New creates a *slog.Logger from Option values; NewFromConfig does the same
// from an env-tagged Config (APP_ENV, APP_SERVICE, LOG_LEVEL, LOG_FORMAT).
// Production and staging environments log JSON at info level, everything
// else logs text at debug level.
//
// # Architecture
//
// New picks slog.NewJSONHandler or slog.NewTextHandler and wraps it in a
// context handler that runs every registered ContextExtractor on each record.
// Extractors pull request-scoped values out of the context, for example the
// session id via session.LoggerExtractor or a router's request id.
//
// Discard returns a logger that drops everything; packages use it when the
// caller supplies no logger.
//
// Attribute helpers in attr.go (Error, SessionID, Store, Operation, Path,
// RequestID, Component) keep key names consistent.
//
// # Usage
//
//	var cfg logger.Config
//	config.MustLoad(&cfg)
//
//	log, err := logger.NewFromConfig(cfg,
//	    logger.WithContextExtractors(session.LoggerExtractor()),
//	)
//	if err != nil {
//	    panic(err)
//	}
//	logger.SetAsDefault(log)
//
//	log.InfoContext(r.Context(), "visit", logger.Path(r.URL.Path))
//
// # Error Handling
//
// Error returns an empty attribute for a nil error, so calls like
//
//	log.Info("operation finished", logger.Error(err))
//
// need no nil check. NewFromConfig rejects unknown levels and formats;
// WithFormat panics on an unknown format.
package logger
