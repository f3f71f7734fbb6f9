// Package security sets the response headers a JSON-only API should
// always carry. There is no HTML surface, so no CSP.
package security

import "net/http"

// apiHeaders is applied to every response.
var apiHeaders = map[string]string{
	"X-Content-Type-Options": "nosniff",
	"X-Frame-Options":        "DENY",
	"Referrer-Policy":        "no-referrer",
	"Cache-Control":          "no-store",
}

// hsts is sent only on TLS connections.
const hsts = "max-age=31536000; includeSubDomains"

// Headers wraps next so every response carries the API header set.
func Headers(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		for name, value := range apiHeaders {
			h.Set(name, value)
		}
		if r.TLS != nil {
			h.Set("Strict-Transport-Security", hsts)
		}
		next.ServeHTTP(w, r)
	})
}
