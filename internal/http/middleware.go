package http

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"fintechapi/internal/auth"
	"fintechapi/internal/config"
	"fintechapi/internal/core"
)

type contextKey string

const principalKey contextKey = "principal"

func withPrincipal(ctx context.Context, sess auth.Session) context.Context {
	return context.WithValue(ctx, principalKey, sess)
}

// principalFrom returns the authenticated principal established by
// requireAuth. Handlers behind requireAuth can rely on it being present.
func principalFrom(ctx context.Context) (auth.Session, bool) {
	sess, ok := ctx.Value(principalKey).(auth.Session)
	return sess, ok
}

// requireAuth resolves the caller's identity according to the configured
// auth mode and threads it through the request context as an explicit
// principal. Token mode resolves an opaque bearer token against the session
// store; basic mode verifies credentials on every request.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := s.authenticate(r)
		if err != nil {
			if s.cfg.AuthMode == config.AuthModeBasic {
				w.Header().Set("WWW-Authenticate", `Basic realm="fintechapi"`)
			}
			writeError(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(withPrincipal(r.Context(), sess)))
	})
}

func (s *Server) authenticate(r *http.Request) (auth.Session, error) {
	if s.cfg.AuthMode == config.AuthModeBasic {
		email, password, ok := r.BasicAuth()
		if !ok {
			return auth.Session{}, fmt.Errorf("%w: credenciais ausentes", core.ErrInvalidCredentials)
		}
		user, err := s.users.Authenticate(r.Context(), email, password)
		if err != nil {
			return auth.Session{}, err
		}
		return auth.Session{UserID: user.ID, Email: user.Email, Kind: user.Kind}, nil
	}

	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok || strings.TrimSpace(token) == "" {
		return auth.Session{}, fmt.Errorf("%w: token ausente", core.ErrInvalidCredentials)
	}
	return s.sessions.Resolve(strings.TrimSpace(token))
}
