package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dgallion1/wpmigrate/internal/config"
	"github.com/dgallion1/wpmigrate/internal/convert"
	"github.com/dgallion1/wpmigrate/internal/migrate"
	"github.com/dgallion1/wpmigrate/internal/source"
)

// Server exposes the converter, and optionally migration runs, over HTTP.
type Server struct {
	router  chi.Router
	conv    *convert.Converter
	runner  *migrate.Runner
	loaders source.LoaderOptions
	log     *slog.Logger
	cfg     config.Config
}

// NewServer creates and configures the HTTP server. A nil runner leaves the
// migration endpoint unregistered.
func NewServer(conv *convert.Converter, runner *migrate.Runner, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		conv:    conv,
		runner:  runner,
		loaders: source.LoaderOptions{PDFFallbackPdftotext: cfg.PDFFallbackPdftotext},
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

	r.Group(func(r chi.Router) {
		if s.cfg.ServerAPIKey != "" {
			r.Use(AuthMiddleware(s.cfg.ServerAPIKey, s.log))
		}

		r.Post("/api/convert", s.handleConvert)
		if s.runner != nil {
			r.Post("/api/migrate/{kind}", s.handleMigrate)
		}
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
