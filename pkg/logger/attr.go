package logger

import "log/slog"

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// SessionID records a session identifier under the key "session_id".
// Only a short prefix is logged so identifiers cannot be replayed from logs.
// If id is empty, it returns an empty Attr.
func SessionID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	const visible = 6
	if len(id) > visible {
		id = id[:visible] + "…"
	}
	return slog.String("session_id", id)
}

// Store records the session store implementation under the key "store".
func Store(name string) slog.Attr {
	return slog.String("store", name)
}

// Operation records a store operation name under the key "op".
func Operation(op string) slog.Attr {
	return slog.String("op", op)
}

// Path records the request path under the key "path".
func Path(path string) slog.Attr {
	return slog.String("path", path)
}

// RequestID records the request identifier under the key "request_id".
// If id is empty, it returns an empty Attr.
func RequestID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("request_id", id)
}

// Component records the component name under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}
