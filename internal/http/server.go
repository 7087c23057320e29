package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/Clark-Hu/post-rating/internal/admin"
	"github.com/Clark-Hu/post-rating/internal/config"
	"github.com/Clark-Hu/post-rating/internal/domain"
	"github.com/Clark-Hu/post-rating/internal/host"
	"github.com/Clark-Hu/post-rating/internal/i18n"
	"github.com/Clark-Hu/post-rating/internal/plugin"
)

// HealthChecker reports whether the backing database is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// PostStore is the post persistence the host needs to serve and save posts.
type PostStore interface {
	GetByID(ctx context.Context, id int64) (domain.Post, error)
	UpdateTitle(ctx context.Context, id int64, title *string) (domain.Post, error)
	CreateRevision(ctx context.Context, postID int64) (domain.Post, error)
}

// OptionsWriter persists validated options records.
type OptionsWriter interface {
	Put(ctx context.Context, name string, value domain.Options) error
}

// Dependencies bundles what the server is built from.
type Dependencies struct {
	Health   HealthChecker
	Posts    PostStore
	Options  OptionsWriter
	Plugin   *plugin.Plugin
	Hooks    *host.Hooks
	Registry *host.Registry
	Catalog  *i18n.Catalog
}

// Server wires HTTP routing, middleware, and handlers.
type Server struct {
	cfg      config.Config
	health   HealthChecker
	posts    PostStore
	options  OptionsWriter
	plugin   *plugin.Plugin
	hooks    *host.Hooks
	registry *host.Registry
	catalog  *i18n.Catalog
	logger   *zap.Logger
	writes   map[string]*rate.Limiter
	router   chi.Router
	httpSrv  *http.Server
}

// New constructs the HTTP server with base middleware and routes.
func New(cfg config.Config, deps Dependencies, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	// One budget per signed-in role. A zero rate disables throttling.
	writes := make(map[string]*rate.Limiter)
	for _, role := range []host.Role{host.Administrator, host.Editor} {
		limiter := rate.NewLimiter(rate.Inf, 0)
		if cfg.AdminWriteRPS > 0 {
			limiter = rate.NewLimiter(rate.Limit(cfg.AdminWriteRPS), cfg.AdminWriteRPS)
		}
		writes[role.Name] = limiter
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)

	s := &Server{
		cfg:      cfg,
		health:   deps.Health,
		posts:    deps.Posts,
		options:  deps.Options,
		plugin:   deps.Plugin,
		hooks:    deps.Hooks,
		registry: deps.Registry,
		catalog:  deps.Catalog,
		logger:   logger,
		writes:   writes,
		router:   r,
	}
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	s.registerRoutes()
	s.httpSrv = &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.ReadTimeoutSecs) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeoutSecs) * time.Second,
		IdleTimeout:  time.Duration(cfg.IdleTimeoutSecs) * time.Second,
	}
	return s
}

func (s *Server) registerRoutes() {
	s.router.Use(s.withLocale)

	s.router.Get("/healthz", s.handleHealthz)
	s.router.Get(plugin.StylesheetPath, s.handleStylesheet)
	s.router.Route("/posts", func(r chi.Router) {
		r.Get("/top-rated", s.handleTopRated)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleShowPost)
			r.Get("/rating", s.handleRatingFragment)
		})
	})
	if !s.cfg.AdminEnabled {
		return
	}
	s.router.Route("/admin", func(r chi.Router) {
		r.Get("/options/{slug}", s.handleOptionsPage)
		r.With(s.throttleWrites).Post("/options", s.handleSaveOptions)
		r.Get("/posts/{id}/edit", s.handleEditPost)
		r.With(s.throttleWrites).Post("/posts/{id}", s.handleSavePost)
		r.Get("/plugins", s.handleListPlugins)
	})
}

// Handler exposes the router, mainly for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens until the server is shut down. Shutdown is owned by the
// caller; a clean Shutdown makes Start return nil.
func (s *Server) Start() error {
	if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if s.health == nil {
		http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		return
	}
	if err := s.health.HealthCheck(ctx); err != nil {
		s.logger.Warn("health check failed", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStylesheet(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	_, _ = w.Write(plugin.Stylesheet)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			s.logger.Error("failed to encode response", zap.Error(err))
		}
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, code, message string) {
	s.respondJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

func (s *Server) respondHTML(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// requestLogger logs one line per request once the response is written.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("route", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

// withLocale attaches the translator negotiated from Accept-Language.
func (s *Server) withLocale(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.catalog == nil {
			next.ServeHTTP(w, r)
			return
		}
		locale := s.catalog.Negotiate(r.Header.Get("Accept-Language"))
		w.Header().Set("Content-Language", locale)
		ctx := i18n.WithTranslator(r.Context(), s.catalog.Translator(locale))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// throttleWrites rejects admin writes above the configured rate. Requests
// from anonymous actors do not draw on any budget; the handlers reject them.
func (s *Server) throttleWrites(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		limiter, ok := s.writes[s.actorFor(r.Header.Get("Authorization")).Name]
		if ok && !limiter.Allow() {
			w.Header().Set("Retry-After", "1")
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// actorFor maps a bearer token onto a role. Unknown or missing tokens are anonymous.
func (s *Server) actorFor(header string) host.Role {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return host.Anonymous
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, prefix))
	switch {
	case token == "":
		return host.Anonymous
	case token == s.cfg.AuthToken:
		return host.Administrator
	case s.cfg.EditorToken != "" && token == s.cfg.EditorToken:
		return host.Editor
	default:
		return host.Anonymous
	}
}

func (s *Server) forbidden(w http.ResponseWriter, r *http.Request) {
	http.Error(w, i18n.T(r.Context(), admin.PermissionDeniedMessage), http.StatusForbidden)
}
