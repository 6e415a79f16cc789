package api

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"workspace-planner/internal/service"
)

// Services are the operations exposed over HTTP.
type Services struct {
	Tasks       *service.TaskService
	Recurrences *service.RecurrenceService
	Workspaces  *service.WorkspaceService
}

// Server holds the HTTP server state.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	svc        Services
	authToken  string
	now        func() time.Time
}

// Option tunes optional server behaviour.
type Option func(*options)

type options struct {
	corsOrigins []string
}

// WithCORS answers browser preflight requests from the given origins.
func WithCORS(origins ...string) Option {
	return func(o *options) {
		o.corsOrigins = append(o.corsOrigins, origins...)
	}
}

// NewServer constructs the HTTP API server.
func NewServer(addr, authToken string, svc Services, opts ...Option) *Server {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	if len(o.corsOrigins) > 0 {
		router.Use(cors.New(cors.Options{
			AllowedOrigins: o.corsOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
			AllowedHeaders: []string{"Authorization", "Content-Type"},
			MaxAge:         300,
		}).Handler)
	}

	s := &Server{
		router:    router,
		svc:       svc,
		authToken: authToken,
		now:       time.Now,
	}
	s.registerRoutes()

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Start blocks serving HTTP requests until Shutdown is called.
func (s *Server) Start() error {
	log.Printf("[info] http api listening on %s", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) registerRoutes() {
	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	s.router.Route("/v1", func(r chi.Router) {
		if s.authToken != "" {
			r.Use(AuthMiddleware(s.authToken))
		}

		r.Route("/workspaces", func(r chi.Router) {
			r.Post("/", s.handleCreateWorkspace)
			r.Route("/{workspaceID}", func(r chi.Router) {
				r.Get("/", s.handleGetWorkspace)
				r.Post("/projects", s.handleCreateProject)
				r.Get("/tasks", s.handleListTasks)
				r.Get("/recurrences", s.handleListRecurrences)
			})
		})

		r.Route("/tasks", func(r chi.Router) {
			r.Post("/", s.handleCreateTask)
			r.Route("/{taskID}", func(r chi.Router) {
				r.Get("/", s.handleGetTask)
				r.Delete("/", s.handleDeleteTask)
				r.Post("/complete", s.handleCompleteTask)
			})
		})

		r.Route("/recurrences", func(r chi.Router) {
			r.Post("/preview", s.handlePreviewRecurrence)
			r.Route("/{recurrenceID}", func(r chi.Router) {
				r.Get("/", s.handleGetRecurrence)
				r.Delete("/", s.handleDeleteRecurrence)
			})
		})
	})
}
