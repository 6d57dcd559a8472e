/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for frontends

ROUTE GROUPS:
  /api/members/*     Member registry
  /api/payments/*    Payment ledger
  /api/billing/*     Billing cycle
  /api/config/*      Pricing and discount configuration
  /api/admin/*       Ownership, staff, enforcement
  /api/reports/*     Delinquency, revenue, activity eligibility
  /api/scenarios/*   Demo scenarios (dev only)

AUTHENTICATION:
  The caller's identity arrives in the X-Caller-ID header; the domain's
  authorization policy decides what that identity may do. Transport-level
  authentication (verifying the header is truthful) is outside this core.

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
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Caller-ID"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Member routes
		r.Route("/members", func(r chi.Router) {
			r.Get("/", h.ListMembers)
			r.Post("/", h.RegisterMember)
			r.Get("/{id}", h.GetMember)
			r.Get("/{id}/payments", h.GetMemberPayments)
		})

		// Payment routes
		r.Route("/payments", func(r chi.Router) {
			r.Get("/", h.ListPayments)
			r.Post("/settle", h.SettlePayment)
		})

		// Billing routes
		r.Route("/billing", func(r chi.Router) {
			r.Post("/run", h.RunBilling)
		})

		// Configuration routes
		r.Route("/config", func(r chi.Router) {
			r.Put("/prices/{category}", h.UpdateCategoryPrice)
			r.Put("/discount", h.UpdateDiscount)
			r.Put("/streak", h.UpdateStreak)
		})

		// Admin routes
		r.Route("/admin", func(r chi.Router) {
			r.Post("/owner", h.TransferOwnership)
			r.Post("/staff", h.AddStaff)
			r.Get("/staff", h.ListStaff)
			r.Delete("/staff/{id}", h.RemoveStaff)
			r.Post("/enforcement/toggle", h.ToggleEnforcement)
			r.Get("/enforcement", h.GetEnforcement)
		})

		// Report routes
		r.Route("/reports", func(r chi.Router) {
			r.Get("/delinquents", h.Delinquents)
			r.Get("/revenue", h.Revenue)
			r.Get("/activities/{code}/eligible", h.EligibleForActivity)
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
