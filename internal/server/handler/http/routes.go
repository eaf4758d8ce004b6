package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/keyharmony/keyharmony/internal/middleware"
)

// NewRouter constructs and returns an HTTP handler that serves the
// disclosure workflow API. Login and health are public; everything else
// sits behind bearer token authentication.
//
// Routes:
//
//	GET  /api/health                    → liveness probe
//	POST /api/login                     → authHandler.Login
//	GET  /api/me                        → authHandler.Me
//	POST /api/requests                  → requestHandler.Submit
//	GET  /api/requests                  → requestHandler.List
//	POST /api/requests/{id}/review      → requestHandler.Review
//	POST /api/requests/{id}/escalate    → requestHandler.Escalate
//	POST /api/requests/{id}/approve     → requestHandler.Approve
//	POST /api/requests/{id}/deny        → requestHandler.Deny
//	GET  /api/requests/{id}/secret      → requestHandler.ViewSecret
//	GET  /api/secrets                   → viewHandler.ListSecrets
//	GET  /api/audit                     → viewHandler.Audit
//	GET  /api/notifications             → viewHandler.Notifications
func NewRouter(
	authHandler *AuthHandler,
	requestHandler *RequestHandler,
	viewHandler *ViewHandler,
	resolver middleware.TokenResolver,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Only allow requests with Content-Type: application/json
	r.Use(chiMiddleware.AllowContentType("application/json"))

	// Log each request and its metadata
	r.Use(middleware.WithRequestLogging(logger))

	// Mount API routes
	r.Route("/api", func(r chi.Router) {
		// Public endpoints
		r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})
		r.Post("/login", authHandler.Login)

		// Protected group: requires a valid bearer token
		r.Group(func(r chi.Router) {
			r.Use(middleware.BearerAuth(resolver))

			r.Get("/me", authHandler.Me)

			r.Post("/requests", requestHandler.Submit)
			r.Get("/requests", requestHandler.List)
			r.Post("/requests/{id}/review", requestHandler.Review)
			r.Post("/requests/{id}/escalate", requestHandler.Escalate)
			r.Post("/requests/{id}/approve", requestHandler.Approve)
			r.Post("/requests/{id}/deny", requestHandler.Deny)
			r.Get("/requests/{id}/secret", requestHandler.ViewSecret)

			r.Get("/secrets", viewHandler.ListSecrets)
			r.Get("/audit", viewHandler.Audit)
			r.Get("/notifications", viewHandler.Notifications)
		})
	})

	return r
}
