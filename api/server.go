/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. Logger:     Structured request logs (httplog, ECS schema)
  3. Recoverer:  Panic recovery (500 instead of crash)
  4. Heartbeat:  GET /health for load balancers
  5. CORS:       Cross-origin requests for HR frontends

ROUTE GROUPS:
  /api/payroll/*     Calculations and stored batches
  /api/companies/*   Company configurations
  /api/provisions/*  Statutory state

SECURITY NOTE:
  No authentication middleware. Deploy behind a gateway that handles it.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"io"
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
)

// RouterOptions configures the middleware stack.
type RouterOptions struct {
	AllowedOrigins []string
	LogLevel       slog.Level
}

// NewRouter creates a new router with all routes configured. Request logs go
// to the handler's logger.
func NewRouter(h *Handler, opts RouterOptions) *chi.Mux {
	r := chi.NewRouter()

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(httplog.RequestLogger(h.Logger, &httplog.Options{
		Level:  opts.LogLevel,
		Schema: httplog.SchemaECS,
	}))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/health"))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Route("/payroll", func(r chi.Router) {
			r.Post("/calculate", h.Calculate)
			r.Post("/batch", h.RunBatch)
			r.Get("/batch/{id}", h.GetBatch)
		})

		r.Route("/companies", func(r chi.Router) {
			r.Get("/", h.ListCompanies)
			r.Post("/", h.SaveCompany)
			r.Get("/{id}", h.GetCompany)
			r.Delete("/{id}", h.DeleteCompany)
		})

		r.Route("/provisions", func(r chi.Router) {
			r.Get("/state", h.GetState)
			r.Put("/state", h.ReplaceState)
		})
	})

	return r
}

// NewLogger builds the JSON logger used for request and application logs.
func NewLogger(w io.Writer, env string, level slog.Level) *slog.Logger {
	logFormat := httplog.SchemaECS.Concise(env != "production")
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "payroll-engine"),
		slog.String("env", env),
	)
}
