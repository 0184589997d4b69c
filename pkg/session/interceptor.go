package session

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/dmitrymomot/sessionkit/pkg/async"
	"github.com/dmitrymomot/sessionkit/pkg/logger"
)

// responseWriter emits the session token just before the headers go out and
// finishes persistence before the last byte of the body does. A client that
// has the full response can rely on the store being up to date.
type responseWriter struct {
	http.ResponseWriter
	st *state

	wroteHeader bool
	ended       bool
	written     int64
	// pending holds body bytes withheld until the store call completes.
	pending []byte
}

func (w *responseWriter) WriteHeader(code int) {
	if w.wroteHeader {
		return
	}
	if code >= 100 && code < 200 && code != http.StatusSwitchingProtocols {
		w.ResponseWriter.WriteHeader(code)
		return
	}
	w.wroteHeader = true
	w.st.onHeaders(w.ResponseWriter)
	w.ResponseWriter.WriteHeader(code)
}

// Write passes body bytes through, except that the final byte of a body with
// a declared Content-Length is held back until the response ends.
func (w *responseWriter) Write(p []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	if w.ended || len(p) == 0 {
		return w.ResponseWriter.Write(p)
	}
	if len(w.pending) > 0 {
		w.pending = append(w.pending, p...)
		return len(p), nil
	}

	if cl := w.contentLength(); cl > 0 && w.written+int64(len(p)) == cl {
		n, err := w.ResponseWriter.Write(p[:len(p)-1])
		w.written += int64(n)
		if err != nil {
			return n, err
		}
		w.pending = append(w.pending, p[len(p)-1])
		return len(p), nil
	}

	n, err := w.ResponseWriter.Write(p)
	w.written += int64(n)
	return n, err
}

// Flush implements http.Flusher. Withheld bytes stay withheld.
func (w *responseWriter) Flush() {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap exposes the underlying writer to http.ResponseController.
func (w *responseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

func (w *responseWriter) contentLength() int64 {
	cl, err := strconv.ParseInt(w.Header().Get("Content-Length"), 10, 64)
	if err != nil {
		return -1
	}
	return cl
}

// end finishes the response: it picks the store operation, writes all but
// the last byte, waits for the store, then writes the rest. Only the first
// call does anything.
func (w *responseWriter) end(chunk []byte) bool {
	if w.ended {
		return false
	}
	w.ended = true

	st := w.st
	var (
		f  *async.Future[struct{}]
		op string
	)

	switch {
	case st.m.policy.shouldDestroy(st.decision()):
		op = "destroy"
		f = st.m.destroy(st.persistCtx(), st.id)
	case st.session == nil:
		w.writeAll(chunk)
		return true
	default:
		st.touchOnce()
		d := st.decision()
		switch {
		case st.m.policy.shouldSave(d):
			op = "save"
			f = st.save(st.persistCtx())
		case st.m.toucher != nil && st.m.policy.shouldTouch(d):
			op = "touch"
			f = st.m.touch(st.persistCtx(), st.id, st.snapshot())
		default:
			w.writeAll(chunk)
			return true
		}
	}

	w.writeTop(chunk)
	if err := st.m.await(f); err != nil {
		st.m.persistErrorHandler(st.r, fmt.Errorf("%w: %s %w", ErrPersist, op, err))
	} else {
		st.m.logger.DebugContext(st.r.Context(), "session persisted",
			logger.SessionID(st.id),
			logger.Operation(op),
		)
	}
	w.writeEnd()
	return true
}

func (w *responseWriter) writeTop(chunk []byte) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	if len(chunk) == 0 {
		return
	}
	if len(w.pending) > 0 {
		w.pending = append(w.pending, chunk...)
		return
	}
	if w.contentLength() > 0 {
		_, _ = w.ResponseWriter.Write(chunk[:len(chunk)-1])
		w.pending = append(w.pending, chunk[len(chunk)-1])
		return
	}
	_, _ = w.ResponseWriter.Write(chunk)
}

func (w *responseWriter) writeEnd() {
	if len(w.pending) == 0 {
		return
	}
	_, _ = w.ResponseWriter.Write(w.pending)
	w.pending = nil
}

func (w *responseWriter) writeAll(chunk []byte) {
	w.writeTop(chunk)
	w.writeEnd()
}

// End finishes the response early, writing chunk as the last part of the
// body after the session has been persisted. Later writes are passed
// through untouched. It returns false if the response was already ended.
// Outside the session middleware it just writes chunk.
func End(w http.ResponseWriter, chunk []byte) bool {
	for cur := w; cur != nil; {
		if rw, ok := cur.(*responseWriter); ok {
			return rw.end(chunk)
		}
		u, ok := cur.(interface{ Unwrap() http.ResponseWriter })
		if !ok {
			break
		}
		cur = u.Unwrap()
	}
	if len(chunk) > 0 {
		_, _ = w.Write(chunk)
	}
	return true
}
