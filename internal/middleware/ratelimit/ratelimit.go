// Package ratelimit caps request volume per client over fixed one-minute
// windows.
package ratelimit

import (
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// Limiter counts requests per key inside the window that started at
// windowStart; the count resets when a request arrives in a new window.
type Limiter struct {
	mu        sync.Mutex
	perMinute int
	now       func() time.Time
	windows   map[string]*window

	stopSweep chan struct{}
	stopOnce  sync.Once
}

type window struct {
	start time.Time
	count int
}

// NewLimiter creates a limiter allowing perMinute requests per key.
// Non-positive perMinute falls back to 120.
func NewLimiter(perMinute int) *Limiter {
	if perMinute <= 0 {
		perMinute = 120
	}
	l := &Limiter{
		perMinute: perMinute,
		now:       time.Now,
		windows:   make(map[string]*window),
		stopSweep: make(chan struct{}),
	}
	go l.sweepLoop(5 * time.Minute)
	return l
}

// Allow reports whether one more request from key fits in its current
// window.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.windows[key]
	if !ok || now.Sub(w.start) >= time.Minute {
		l.windows[key] = &window{start: now, count: 1}
		return true
	}
	w.count++
	return w.count <= l.perMinute
}

// Retry reports how long key must wait for a fresh window.
func (l *Limiter) Retry(key string) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	if w, ok := l.windows[key]; ok {
		if left := time.Minute - l.now().Sub(w.start); left > 0 {
			return left
		}
	}
	return 0
}

// TrackedClients reports how many keys currently hold a window.
func (l *Limiter) TrackedClients() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.windows)
}

// Stop ends the background sweep. Safe to call more than once.
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() { close(l.stopSweep) })
}

func (l *Limiter) sweepLoop(every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			l.sweep()
		case <-l.stopSweep:
			return
		}
	}
}

// sweep drops windows idle long enough that they cannot influence Allow.
func (l *Limiter) sweep() {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-10 * time.Minute)
	for key, w := range l.windows {
		if w.start.Before(cutoff) {
			delete(l.windows, key)
		}
	}
}

// Wrap returns middleware enforcing the limit, keyed by keyFor. Rejected
// requests get a 429 with the API's standard error body.
func (l *Limiter) Wrap(keyFor func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := keyFor(r)
			if !l.Allow(key) {
				retry := int(l.Retry(key).Seconds())
				if retry < 1 {
					retry = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(retry))
				w.Header().Set("Content-Type", "application/json; charset=utf-8")
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(map[string]any{
					"status":  http.StatusTooManyRequests,
					"error":   http.StatusText(http.StatusTooManyRequests),
					"message": "limite de requisições excedido",
					"path":    r.URL.Path,
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
