package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/dgallion1/foldline/internal/config"
	"github.com/dgallion1/foldline/internal/menu"
	"github.com/dgallion1/foldline/internal/outline"
	"github.com/dgallion1/foldline/internal/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// PageFetcher loads a page's lines from the outliner host.
type PageFetcher interface {
	FetchPage(ctx context.Context, project, title string) (*outline.Document, error)
}

// Server is the HTTP API server for foldline.
type Server struct {
	router  chi.Router
	manager *session.Manager
	menu    *menu.Registry
	host    PageFetcher
	log     *slog.Logger
	cfg     config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(mgr *session.Manager, reg *menu.Registry, host PageFetcher, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		manager: mgr,
		menu:    reg,
		host:    host,
		log:     log,
		cfg:     cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.FoldlineAPIKey, s.log))

		r.Post("/api/pages", s.handleCreatePage)
		r.Post("/api/pages/import", s.handleImportPage)
		r.Route("/api/pages/{pageID}", func(r chi.Router) {
			r.Get("/", s.handleGetPage)
			r.Delete("/", s.handleDeletePage)
			r.Get("/view", s.handleViewPage)
			r.Post("/collapse", s.handleCollapse)
			r.Post("/expand", s.handleExpand)
			r.Post("/lines/{lineID}/toggle", s.handleToggle)
			r.Post("/menu/{command}", s.handleMenuClick)
		})

		r.Get("/api/menu", s.handleListMenu)
		r.Get("/api/stats/fold", s.handleFoldStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
