package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"fintechapi/internal/auth"
	"fintechapi/internal/config"
	"fintechapi/internal/middleware/ratelimit"
	"fintechapi/internal/middleware/security"
	"fintechapi/internal/middleware/trace"
	"fintechapi/internal/services"
)

// Server wires the JSON API on a stdlib ServeMux with the shared middleware
// chain (security headers, tracing, per-client rate limiting) applied to
// every route and authentication applied per route group.
type Server struct {
	http.Server

	cfg      *config.Config
	users    *services.UserService
	catalog  *services.CatalogService
	sessions *auth.SessionStore
	limiter  *ratelimit.Limiter

	shutdownOnce sync.Once
}

// NewServer configures all routes and returns a ready-to-run server.
func NewServer(
	cfg *config.Config,
	users *services.UserService,
	catalog *services.CatalogService,
	expenses *services.LedgerService,
	incomes *services.LedgerService,
	sessions *auth.SessionStore,
) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    ":" + cfg.Port,
			Handler: mux,
		},
		cfg:      cfg,
		users:    users,
		catalog:  catalog,
		sessions: sessions,
		limiter: ratelimit.NewLimiter(cfg.RateLimitPerMinute),
	}

	// Liveness and info, unauthenticated.
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /{$}", s.handleHome)

	// Registration and login, unauthenticated.
	mux.HandleFunc("POST /api/auth/registro", s.handleRegister)
	mux.HandleFunc("POST /api/auth/login", s.handleLogin)
	mux.HandleFunc("POST /api/auth/logout", s.handleLogout)

	// User management, authenticated.
	mux.Handle("GET /api/usuarios/me", s.requireAuth(http.HandlerFunc(s.handleCurrentUser)))
	mux.Handle("GET /api/usuarios", s.requireAuth(http.HandlerFunc(s.handleListUsers)))
	mux.Handle("GET /api/usuarios/{id}", s.requireAuth(http.HandlerFunc(s.handleGetUser)))
	mux.Handle("PUT /api/usuarios/{id}", s.requireAuth(http.HandlerFunc(s.handleUpdateUser)))
	mux.Handle("DELETE /api/usuarios/{id}", s.requireAuth(http.HandlerFunc(s.handleDeleteUser)))

	// Catalog reference data, unauthenticated.
	mux.HandleFunc("GET /api/categorias", s.handleListCategories)
	mux.HandleFunc("GET /api/categorias/{id}", s.handleGetCategory)
	mux.HandleFunc("POST /api/categorias", s.handleCreateCategory)
	mux.HandleFunc("PUT /api/categorias/{id}", s.handleUpdateCategory)
	mux.HandleFunc("DELETE /api/categorias/{id}", s.handleDeleteCategory)
	mux.HandleFunc("GET /api/subcategorias", s.handleListSubcategories)
	mux.HandleFunc("GET /api/subcategorias/{id}", s.handleGetSubcategory)
	mux.HandleFunc("GET /api/subcategorias/categoria/{id}", s.handleListSubcategoriesByCategory)
	mux.HandleFunc("POST /api/subcategorias", s.handleCreateSubcategory)
	mux.HandleFunc("PUT /api/subcategorias/{id}", s.handleUpdateSubcategory)
	mux.HandleFunc("DELETE /api/subcategorias/{id}", s.handleDeleteSubcategory)

	// The two ledgers share one handler set; only the record kind and the
	// per-kind wire field names differ.
	expenseRoutes := &ledgerHandler{
		ledger:    expenses,
		catalog:   catalog,
		idField:   "idDespesa",
		dateField: "dataVencimento",
	}
	incomeRoutes := &ledgerHandler{
		ledger:    incomes,
		catalog:   catalog,
		idField:   "idReceita",
		dateField: "dataEntrada",
	}
	s.mountLedger(mux, "/api/despesas", expenseRoutes)
	s.mountLedger(mux, "/api/receitas", incomeRoutes)

	tracer := trace.New(clientIP)
	limited := s.limiter.Wrap(clientIP)

	s.Handler = security.Headers(tracer.Wrap(limited(mux)))
	return s
}

func (s *Server) mountLedger(mux *http.ServeMux, base string, h *ledgerHandler) {
	mux.Handle("GET "+base, s.requireAuth(http.HandlerFunc(h.handleList)))
	mux.Handle("GET "+base+"/periodo", s.requireAuth(http.HandlerFunc(h.handleListByPeriod)))
	mux.Handle("GET "+base+"/pendentes", s.requireAuth(http.HandlerFunc(h.handleListPending)))
	mux.Handle("GET "+base+"/{id}", s.requireAuth(http.HandlerFunc(h.handleGet)))
	mux.Handle("POST "+base, s.requireAuth(http.HandlerFunc(h.handleCreate)))
	mux.Handle("PUT "+base+"/{id}", s.requireAuth(http.HandlerFunc(h.handleUpdate)))
	mux.Handle("DELETE "+base+"/{id}", s.requireAuth(http.HandlerFunc(h.handleDelete)))
}

// clientIP resolves the caller address, honoring proxy headers.
func clientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return ip
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	return r.RemoteAddr
}

// Shutdown stops the rate limiter cleanup goroutine and then the HTTP
// server itself.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

type healthResponse struct {
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
	Application string    `json:"application"`
	Message     string    `json:"message"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:      "OK",
		Timestamp:   time.Now(),
		Application: "Fintech API",
		Message:     "Sistema operacional",
	})
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message":     "Bem-vindo à Fintech API",
		"healthCheck": "/health",
	})
}
