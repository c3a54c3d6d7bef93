package http

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/stjohnsmed/patientportal/internal/middleware"
	"github.com/stjohnsmed/patientportal/internal/service"
)

// ClientProvider returns the per-browser client state for an id.
type ClientProvider interface {
	// Client returns the client for id, creating it on first use.
	Client(id string) *service.Client
}

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error    string `json:"error"`
	Redirect string `json:"redirect,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// internalError logs err and replies with a generic 500.
func internalError(w http.ResponseWriter, log *zap.Logger, op string, err error) {
	log.Error(op+" failed", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal error")
}

// decode reads a JSON body into v and replies 400 on failure.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return false
	}
	return true
}

// clientFor resolves the request's client, replying 400 when the identity
// middleware did not run.
func clientFor(w http.ResponseWriter, r *http.Request, clients ClientProvider) (*service.Client, bool) {
	id := middleware.GetClientIDFromContext(r.Context())
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing client id")
		return nil, false
	}
	return clients.Client(id), true
}
