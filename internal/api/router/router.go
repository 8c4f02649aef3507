package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/hostwise-ai/hostwise/internal/http/handlers"
	httpmiddleware "github.com/hostwise-ai/hostwise/internal/http/middleware"
	"github.com/hostwise-ai/hostwise/pkg/logging"
)

// Config holds router configuration.
type Config struct {
	Logger             *logging.Logger
	ChatHandler        *handlers.ChatHandler
	ContactsHandler    *handlers.ContactsHandler
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string
}

// New creates the Chi router with all routes configured.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/api/health", cfg.ChatHandler.Health)
	r.Post("/api/chat", cfg.ChatHandler.Chat)
	r.Route("/api/threads", func(r chi.Router) {
		r.Get("/", cfg.ChatHandler.ListThreads)
		r.Delete("/", cfg.ChatHandler.DeleteAllThreads)
		r.Get("/{threadID}", cfg.ChatHandler.GetThread)
		r.Delete("/{threadID}", cfg.ChatHandler.DeleteThread)
	})
	r.Get("/api/stats", cfg.ChatHandler.Stats)
	if cfg.ContactsHandler != nil {
		r.Get("/api/contacts", cfg.ContactsHandler.List)
	}

	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	return r
}
