package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/stjohnsmed/patientportal/internal/middleware"
)

// NewRouter constructs and returns an HTTP handler that serves
// the portal API.
//
// Routes:
//
//	GET    /healthz                        → liveness
//	GET    /api/auth/state                 → authHandler.State
//	POST   /api/login                      → authHandler.Login
//	POST   /api/logout                     → authHandler.Logout
//	GET    /api/signup                     → signupHandler.Get
//	PUT    /api/signup/steps/{step}        → signupHandler.SaveStep
//	POST   /api/signup/next                → signupHandler.Next
//	POST   /api/signup/back                → signupHandler.Back
//	POST   /api/signup/submit              → signupHandler.Submit
//	DELETE /api/signup/photo               → signupHandler.RemovePhoto
//	POST   /api/signup/password-strength   → signupHandler.Strength
//	GET    /api/portal/dashboard           → portalHandler.Dashboard
//	POST   /api/portal/keepalive           → portalHandler.KeepAlive
//
// Middleware chain (applied in order):
//  1. Recoverer: turns panics into 500s
//  2. AllowContentType("application/json"): rejects non-JSON request bodies
//  3. ClientIdentity: assigns the portal_client cookie
//  4. WithRequestLogging(logger): logs each request
func NewRouter(
	authHandler *AuthHandler,
	signupHandler *SignupHandler,
	portalHandler *PortalHandler,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.AllowContentType("application/json"))
	r.Use(middleware.ClientIdentity)
	r.Use(middleware.WithRequestLogging(logger))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/auth/state", authHandler.State)
		r.Post("/login", authHandler.Login)
		r.Post("/logout", authHandler.Logout)

		r.Route("/signup", func(r chi.Router) {
			r.Get("/", signupHandler.Get)
			r.Put("/steps/{step}", signupHandler.SaveStep)
			r.Post("/next", signupHandler.Next)
			r.Post("/back", signupHandler.Back)
			r.Post("/submit", signupHandler.Submit)
			r.Delete("/photo", signupHandler.RemovePhoto)
			r.Post("/password-strength", signupHandler.Strength)
		})

		r.Route("/portal", func(r chi.Router) {
			r.Get("/dashboard", portalHandler.Dashboard)
			r.Post("/keepalive", portalHandler.KeepAlive)
		})
	})

	return r
}
