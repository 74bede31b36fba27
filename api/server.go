/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:     Unique ID per request for tracing
  2. CORS:          Cross-origin requests for the HR console
  3. RequestLogger: httplog structured request logs (ECS schema)
  4. Recoverer:     Panic recovery (500 instead of crash)

ROUTE GROUPS:
  /api/policies/*   Policy versions
  /api/holidays     Holiday calendar feed
  /api/employees/*  Employees and per-employee stats
  /api/approvals    Approval feed
  /api/punches      Punch feed
  /api/edits        Manual day edits
  /api/stats/*      Month-wide stats and snapshots
  /api/scenarios/*  Demo data

SECURITY NOTE:
  No authentication middleware. The service is meant to sit behind the HR
  system's gateway.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
)

// NewRouter creates a new router with all routes configured. Requests are
// logged through h.Logger.
func NewRouter(h *Handler, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(httplog.RequestLogger(h.Logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
	}))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/healthz"))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Policy routes
		r.Route("/policies", func(r chi.Router) {
			r.Get("/", h.ListPolicies)
			r.Post("/", h.CreatePolicy)
			r.Post("/validate", h.ValidatePolicy)
			r.Get("/active", h.GetActivePolicy)
			r.Get("/{id}", h.GetPolicy)
			r.Post("/{id}/activate", h.ActivatePolicy)
		})

		// Holiday routes
		r.Route("/holidays", func(r chi.Router) {
			r.Get("/", h.ListHolidays)
			r.Post("/", h.CreateHolidays)
		})

		// Employee routes
		r.Route("/employees", func(r chi.Router) {
			r.Get("/", h.ListEmployees)
			r.Post("/", h.CreateEmployee)
			r.Get("/{id}/stats", h.GetEmployeeStats)
		})

		// Feed routes
		r.Post("/approvals", h.CreateApprovals)
		r.Post("/punches", h.CreatePunches)
		r.Post("/edits", h.SubmitEdit)

		// Stats routes
		r.Route("/stats", func(r chi.Router) {
			r.Get("/", h.GetMonthStats)
			r.Get("/snapshots", h.GetSnapshots)
		})

		// Scenario routes
		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Get("/current", h.GetCurrentScenario)
			r.Post("/load", h.LoadScenario)
		})
	})

	return r
}
