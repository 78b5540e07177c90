/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

ROUTER: chi
  Chi was chosen for:
  - Lightweight and fast
  - Context-based
  - Middleware support
  - RESTful route patterns

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/users/*        Accounts and per-user payroll history
  /api/venues/*       Venue management
  /api/events/*       Recurring event templates
  /api/occurrences/*  Dated occurrences, completion, host handoff
  /api/stubs/*        Pay stubs and payout locking
  /api/payroll/*      Payable upserts
  /api/config         Operational constants

SECURITY NOTE:
  Identity is the X-User-ID header set by an upstream gateway. There is no
  authentication middleware here; do not expose this server directly.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-User-ID"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// User routes
		r.Route("/users", func(r chi.Router) {
			r.Get("/", h.ListUsers)
			r.Post("/", h.CreateUser)
			r.Get("/{id}", h.GetUser)
			r.Get("/{id}/stubs", h.ListPayStubs)
			r.Get("/{id}/salary-payments", h.ListSalaryPayments)
			r.Get("/{id}/occurrence-payments", h.ListOccurrencePayments)
			r.Get("/{id}/reimbursements", h.ListReimbursements)
		})

		// Venue routes
		r.Route("/venues", func(r chi.Router) {
			r.Post("/", h.CreateVenue)
		})

		// Event routes
		r.Route("/events", func(r chi.Router) {
			r.Get("/", h.ListEvents)
			r.Post("/", h.CreateEvent)
			r.Get("/{id}", h.GetEvent)
			r.Put("/{id}", h.UpdateEvent)
			r.Post("/{id}/generate", h.GenerateOccurrences)
		})

		// Occurrence routes
		r.Route("/occurrences", func(r chi.Router) {
			r.Get("/", h.ListOccurrences)
			r.Get("/{id}", h.GetOccurrence)
			r.Post("/{id}/complete", h.CompleteOccurrence)
			r.Post("/{id}/request-off", h.RequestOff)
			r.Post("/{id}/pick-up", h.PickUp)
		})

		// Pay stub routes
		r.Route("/stubs", func(r chi.Router) {
			r.Get("/{id}", h.GetPayStub)
			r.Post("/{id}/mark-paid", h.MarkStubPaid)
		})

		// Payable routes
		r.Route("/payroll", func(r chi.Router) {
			r.Post("/salary-payments", h.UpsertSalaryPayment)
			r.Post("/occurrence-payments", h.UpsertOccurrencePayment)
			r.Post("/reimbursements", h.UpsertReimbursement)
		})

		r.Get("/config", h.GetConfig)
	})

	return r
}
