package http

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/stjohnsmed/patientportal/internal/models"
	"github.com/stjohnsmed/patientportal/internal/service"
)

// DashboardService loads the protected dashboard.
type DashboardService interface {
	// Load returns the dashboard or service.ErrRedirectToLogin.
	Load(ctx context.Context, c *service.Client) (*models.Dashboard, error)
}

// PortalHandler serves the dashboard page.
type PortalHandler struct {
	Clients          ClientProvider
	DashboardService DashboardService
	SessionService   SessionService
	Log              *zap.Logger
}

func (h *PortalHandler) unauthorized(w http.ResponseWriter) {
	writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "session expired", Redirect: service.LoginPath})
}

// Dashboard returns the profile and portal collections, or 401 with a
// redirect to the login page.
func (h *PortalHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	c, ok := clientFor(w, r, h.Clients)
	if !ok {
		return
	}
	d, err := h.DashboardService.Load(r.Context(), c)
	if errors.Is(err, service.ErrRedirectToLogin) {
		h.unauthorized(w)
		return
	}
	if err != nil {
		internalError(w, h.Log, "dashboard", err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// KeepAlive extends the session ("stay signed in").
func (h *PortalHandler) KeepAlive(w http.ResponseWriter, r *http.Request) {
	c, ok := clientFor(w, r, h.Clients)
	if !ok {
		return
	}
	m, err := h.SessionService.KeepAlive(r.Context(), c)
	if errors.Is(err, service.ErrNoSession) {
		h.unauthorized(w)
		return
	}
	if err != nil {
		internalError(w, h.Log, "keepalive", err)
		return
	}
	writeJSON(w, http.StatusOK, SessionResponse{Authenticated: true, ExpiresAt: &m.ExpiresAt})
}
