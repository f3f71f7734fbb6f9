// Package trace tags every request with an ID, logs its completion and
// keeps coarse per-status-class counters.
package trace

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"
)

type ctxKey struct{}

// RequestID returns the ID assigned to the request, or "" outside of a
// traced request.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

// Tracer is the middleware state. Counters index status classes 0..5,
// so byClass[4] counts 4xx responses.
type Tracer struct {
	clientIP func(*http.Request) string
	requests atomic.Int64
	byClass  [6]atomic.Int64
}

func New(clientIP func(*http.Request) string) *Tracer {
	return &Tracer{clientIP: clientIP}
}

// Stats is a point-in-time counter snapshot.
type Stats struct {
	Requests    int64
	ClientError int64
	ServerError int64
}

func (t *Tracer) Snapshot() Stats {
	return Stats{
		Requests:    t.requests.Load(),
		ClientError: t.byClass[4].Load(),
		ServerError: t.byClass[5].Load(),
	}
}

// Wrap returns next with tracing applied. The request ID travels in the
// context and in the X-Request-Id response header.
func (t *Tracer) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		id := newID()

		ctx := context.WithValue(r.Context(), ctxKey{}, id)
		w.Header().Set("X-Request-Id", id)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(ctx))

		t.requests.Add(1)
		if class := rec.status / 100; class >= 1 && class <= 5 {
			t.byClass[class].Add(1)
		}

		level := slog.LevelInfo
		switch {
		case rec.status >= 500:
			level = slog.LevelError
		case rec.status >= 400:
			level = slog.LevelWarn
		}

		ip := ""
		if t.clientIP != nil {
			ip = t.clientIP(r)
		}
		slog.Log(ctx, level, "Request handled",
			"request_id", id,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"bytes", rec.written,
			"duration_ms", time.Since(start).Milliseconds(),
			"client_ip", ip)
	})
}

// statusRecorder captures what the handler chain wrote.
type statusRecorder struct {
	http.ResponseWriter
	status  int
	written int64
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(p []byte) (int, error) {
	n, err := r.ResponseWriter.Write(p)
	r.written += int64(n)
	return n, err
}

// newID returns a short random hex ID. The timestamp fallback keeps
// tracing alive even if the random source fails.
func newID() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "req_" + strconv.FormatInt(time.Now().UnixNano(), 36)
	}
	return "req_" + hex.EncodeToString(b[:])
}
