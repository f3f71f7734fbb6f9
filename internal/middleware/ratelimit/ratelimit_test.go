package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestLimiter(perMinute int) (*Limiter, *time.Time) {
	l := NewLimiter(perMinute)
	t := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return t }
	return l, &t
}

func TestLimiterWindow(t *testing.T) {
	l, now := newTestLimiter(3)
	defer l.Stop()

	for i := 0; i < 3; i++ {
		if !l.Allow("a") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if l.Allow("a") {
		t.Fatal("4th request in the window should be rejected")
	}

	// Another key has its own window.
	if !l.Allow("b") {
		t.Fatal("other key should be unaffected")
	}

	// A new window opens after a minute.
	*now = now.Add(time.Minute)
	if !l.Allow("a") {
		t.Fatal("request in the next window should be allowed")
	}
}

func TestLimiterRetry(t *testing.T) {
	l, now := newTestLimiter(1)
	defer l.Stop()

	l.Allow("a")
	*now = now.Add(40 * time.Second)
	if got := l.Retry("a"); got != 20*time.Second {
		t.Fatalf("Retry = %v, want 20s", got)
	}
	if got := l.Retry("unknown"); got != 0 {
		t.Fatalf("Retry for unknown key = %v, want 0", got)
	}
}

func TestLimiterSweep(t *testing.T) {
	l, now := newTestLimiter(10)
	defer l.Stop()

	l.Allow("a")
	l.Allow("b")
	*now = now.Add(11 * time.Minute)
	l.Allow("c")

	l.sweep()
	if got := l.TrackedClients(); got != 1 {
		t.Fatalf("TrackedClients = %d, want 1", got)
	}
}

func TestLimiterWrap(t *testing.T) {
	l, _ := newTestLimiter(1)
	defer l.Stop()

	handler := l.Wrap(func(r *http.Request) string { return "client" })(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/despesas", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("first request status = %d, want 200", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/despesas", nil))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second request status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Fatal("rejection should carry Retry-After")
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Fatalf("Content-Type = %q", ct)
	}
}
