package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/stjohnsmed/patientportal/internal/models"
	"github.com/stjohnsmed/patientportal/internal/service"
	"github.com/stjohnsmed/patientportal/internal/validation"
)

// SignupHandler drives the client's signup wizard.
type SignupHandler struct {
	Clients ClientProvider
	Log     *zap.Logger
}

// WizardResponse reports the wizard position, the draft without passwords
// and the field errors of the last validation.
type WizardResponse struct {
	Step   int               `json:"step"`
	Name   string            `json:"name"`
	Draft  *models.Draft     `json:"draft,omitempty"`
	Errors map[string]string `json:"errors,omitempty"`
}

// SignupResponse is returned after a successful submit.
type SignupResponse struct {
	PatientID string `json:"patientId"`
	Email     string `json:"email"`
	Redirect  string `json:"redirect"`
}

// StrengthRequest carries the password to score.
type StrengthRequest struct {
	Password string `json:"password"`
}

func wizardState(wz *service.Wizard, r validation.Result) WizardResponse {
	step := wz.Step()
	draft := wz.Draft().Redacted()
	return WizardResponse{Step: int(step), Name: step.String(), Draft: &draft, Errors: r.Errors}
}

// Get returns the current step and draft.
func (h *SignupHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, ok := clientFor(w, r, h.Clients)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, wizardState(c.Wizard, validation.Result{}))
}

// SaveStep stores the fields of the current step and returns its validation.
// Saving a step other than the current one is a conflict.
func (h *SignupHandler) SaveStep(w http.ResponseWriter, r *http.Request) {
	c, ok := clientFor(w, r, h.Clients)
	if !ok {
		return
	}
	wz := c.Wizard

	n, err := strconv.Atoi(chi.URLParam(r, "step"))
	if err != nil || service.Step(n) < service.FirstStep || service.Step(n) > service.LastStep {
		writeError(w, http.StatusNotFound, "unknown step")
		return
	}
	if service.Step(n) != wz.Step() {
		writeJSON(w, http.StatusConflict, wizardState(wz, validation.Result{}))
		return
	}

	switch service.Step(n) {
	case service.StepIdentity:
		var s models.IdentityStep
		if !decode(w, r, &s) {
			return
		}
		wz.SaveIdentity(s)
	case service.StepContact:
		var s models.ContactStep
		if !decode(w, r, &s) {
			return
		}
		wz.SaveContact(s)
	case service.StepPhoto:
		var s models.PhotoStep
		if !decode(w, r, &s) {
			return
		}
		wz.SavePhoto(s)
	case service.StepCredentials:
		var s models.CredentialsStep
		if !decode(w, r, &s) {
			return
		}
		wz.SaveCredentials(s)
	}

	res, err := wz.Validate(r.Context())
	if err != nil {
		internalError(w, h.Log, "validate step", err)
		return
	}
	writeJSON(w, http.StatusOK, wizardState(wz, res))
}

// Next advances the wizard when the current step is valid; otherwise it
// replies 422 with the field errors.
func (h *SignupHandler) Next(w http.ResponseWriter, r *http.Request) {
	c, ok := clientFor(w, r, h.Clients)
	if !ok {
		return
	}
	res, err := c.Wizard.Next(r.Context())
	switch {
	case errors.Is(err, service.ErrFinalStep):
		writeJSON(w, http.StatusConflict, wizardState(c.Wizard, res))
	case err != nil:
		internalError(w, h.Log, "signup next", err)
	case !res.Valid():
		writeJSON(w, http.StatusUnprocessableEntity, wizardState(c.Wizard, res))
	default:
		writeJSON(w, http.StatusOK, wizardState(c.Wizard, res))
	}
}

// Back moves one step back.
func (h *SignupHandler) Back(w http.ResponseWriter, r *http.Request) {
	c, ok := clientFor(w, r, h.Clients)
	if !ok {
		return
	}
	c.Wizard.Back()
	writeJSON(w, http.StatusOK, wizardState(c.Wizard, validation.Result{}))
}

// RemovePhoto clears the optional photo.
func (h *SignupHandler) RemovePhoto(w http.ResponseWriter, r *http.Request) {
	c, ok := clientFor(w, r, h.Clients)
	if !ok {
		return
	}
	c.Wizard.RemovePhoto()
	writeJSON(w, http.StatusOK, wizardState(c.Wizard, validation.Result{}))
}

// Submit creates the account. On success the client is sent to the login
// page; no session is opened.
func (h *SignupHandler) Submit(w http.ResponseWriter, r *http.Request) {
	c, ok := clientFor(w, r, h.Clients)
	if !ok {
		return
	}
	account, res, err := c.Wizard.Submit(r.Context())
	switch {
	case errors.Is(err, service.ErrNotFinalStep):
		writeJSON(w, http.StatusConflict, wizardState(c.Wizard, res))
	case err != nil:
		internalError(w, h.Log, "signup submit", err)
	case !res.Valid():
		writeJSON(w, http.StatusUnprocessableEntity, wizardState(c.Wizard, res))
	default:
		writeJSON(w, http.StatusCreated, SignupResponse{
			PatientID: account.PatientID,
			Email:     account.Email,
			Redirect:  service.LoginPath,
		})
	}
}

// Strength scores a password for the strength meter.
func (h *SignupHandler) Strength(w http.ResponseWriter, r *http.Request) {
	var req StrengthRequest
	if !decode(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, validation.PasswordStrength(req.Password))
}
