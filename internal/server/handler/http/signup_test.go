package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/stjohnsmed/patientportal/internal/service"
)

const (
	identityBody    = `{"firstName":"Jane","lastName":"Doe","email":"jane@example.com","phone":"(555) 123-4567","dob":"1990-05-01","gender":"female"}`
	contactBody     = `{"insurance":"Blue Cross","emergencyName":"John Doe","emergencyPhone":"555-987-6543","address":"1 Main St"}`
	credentialsBody = `{"password":"Summer2026!","confirmPassword":"Summer2026!","terms":true,"privacy":true}`
)

// signupRouter mounts the signup handler alone so URL params resolve.
func signupRouter(reg *fakeRegistrar) (http.Handler, *fakeClients) {
	clients := newFakeClients()
	clients.wizard = func() *service.Wizard { return service.NewWizard(reg, 0, nopLog()) }
	h := &SignupHandler{Clients: clients, Log: nopLog()}

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, withClient(r, "c1"))
		})
	})
	r.Get("/api/signup", h.Get)
	r.Put("/api/signup/steps/{step}", h.SaveStep)
	r.Post("/api/signup/next", h.Next)
	r.Post("/api/signup/back", h.Back)
	r.Post("/api/signup/submit", h.Submit)
	r.Delete("/api/signup/photo", h.RemovePhoto)
	r.Post("/api/signup/password-strength", h.Strength)
	return r, clients
}

func do(t *testing.T, h http.Handler, method, path, body string) (int, WizardResponse) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, bytes.NewBufferString(body)))
	var resp WizardResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	return rec.Code, resp
}

func TestSignupHandler_FullFlow(t *testing.T) {
	reg := &fakeRegistrar{}
	h, _ := signupRouter(reg)

	code, resp := do(t, h, "GET", "/api/signup", "")
	if code != http.StatusOK || resp.Step != 1 || resp.Name != "identity" {
		t.Fatalf("initial state = %d %+v", code, resp)
	}

	steps := []struct {
		step string
		body string
	}{
		{"1", identityBody},
		{"2", contactBody},
		{"3", `{}`},
	}
	for _, s := range steps {
		if code, resp := do(t, h, "PUT", "/api/signup/steps/"+s.step, s.body); code != http.StatusOK || len(resp.Errors) != 0 {
			t.Fatalf("save step %s = %d %+v", s.step, code, resp)
		}
		if code, _ := do(t, h, "POST", "/api/signup/next", ""); code != http.StatusOK {
			t.Fatalf("next from step %s = %d", s.step, code)
		}
	}

	code, resp = do(t, h, "PUT", "/api/signup/steps/4", credentialsBody)
	if code != http.StatusOK {
		t.Fatalf("save credentials = %d", code)
	}
	if resp.Draft.Credentials.Password != "" {
		t.Error("password must not be echoed back")
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("POST", "/api/signup/submit", nil))
	if rec.Code != http.StatusCreated {
		t.Fatalf("submit = %d %s", rec.Code, rec.Body.String())
	}
	var created SignupResponse
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.PatientID != "MR-482913" || created.Email != "jane@example.com" || created.Redirect != "/auth" {
		t.Errorf("unexpected response %+v", created)
	}
	if len(reg.registered) != 1 || reg.registered[0].FullName != "Jane Doe" {
		t.Errorf("unexpected registrations %+v", reg.registered)
	}
}

func TestSignupHandler_NextInvalid(t *testing.T) {
	h, _ := signupRouter(&fakeRegistrar{})

	code, resp := do(t, h, "POST", "/api/signup/next", "")
	if code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", code)
	}
	if resp.Errors["firstName"] != "First name is required" || resp.Step != 1 {
		t.Errorf("unexpected response %+v", resp)
	}
}

func TestSignupHandler_EmailTaken(t *testing.T) {
	h, _ := signupRouter(&fakeRegistrar{taken: true})

	code, resp := do(t, h, "PUT", "/api/signup/steps/1", identityBody)
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if resp.Errors["email"] != "An account with this email already exists" {
		t.Errorf("unexpected errors %+v", resp.Errors)
	}
}

func TestSignupHandler_SaveStepErrors(t *testing.T) {
	h, _ := signupRouter(&fakeRegistrar{})

	tests := []struct {
		name string
		path string
		body string
		code int
	}{
		{"not a number", "/api/signup/steps/x", `{}`, http.StatusNotFound},
		{"out of range", "/api/signup/steps/5", `{}`, http.StatusNotFound},
		{"not current step", "/api/signup/steps/2", contactBody, http.StatusConflict},
		{"bad json", "/api/signup/steps/1", `{`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if code, _ := do(t, h, "PUT", tt.path, tt.body); code != tt.code {
				t.Errorf("expected %d, got %d", tt.code, code)
			}
		})
	}
}

func TestSignupHandler_SubmitBeforeFinalStep(t *testing.T) {
	h, _ := signupRouter(&fakeRegistrar{})
	if code, _ := do(t, h, "POST", "/api/signup/submit", ""); code != http.StatusConflict {
		t.Errorf("expected 409, got %d", code)
	}
}

func TestSignupHandler_SubmitStoreError(t *testing.T) {
	h, clients := signupRouter(&fakeRegistrar{registerErr: errors.New("disk full")})
	do(t, h, "PUT", "/api/signup/steps/1", identityBody)
	do(t, h, "POST", "/api/signup/next", "")
	do(t, h, "PUT", "/api/signup/steps/2", contactBody)
	do(t, h, "POST", "/api/signup/next", "")
	do(t, h, "POST", "/api/signup/next", "")
	do(t, h, "PUT", "/api/signup/steps/4", credentialsBody)

	if code, _ := do(t, h, "POST", "/api/signup/submit", ""); code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", code)
	}
	if step := clients.Client("c1").Wizard.Step(); step != service.StepCredentials {
		t.Errorf("wizard moved to %v", step)
	}
}

func TestSignupHandler_BackAndPhoto(t *testing.T) {
	h, clients := signupRouter(&fakeRegistrar{})
	do(t, h, "PUT", "/api/signup/steps/1", identityBody)
	do(t, h, "POST", "/api/signup/next", "")
	do(t, h, "PUT", "/api/signup/steps/2", contactBody)
	do(t, h, "POST", "/api/signup/next", "")

	if code, resp := do(t, h, "PUT", "/api/signup/steps/3", `{"photo":"data:image/png;base64,AAAA"}`); code != http.StatusOK || resp.Draft.Photo.Photo == "" {
		t.Fatalf("save photo = %d %+v", code, resp)
	}
	if _, resp := do(t, h, "DELETE", "/api/signup/photo", ""); resp.Draft.Photo.Photo != "" {
		t.Error("expected photo to be removed")
	}

	code, resp := do(t, h, "POST", "/api/signup/back", "")
	if code != http.StatusOK || resp.Step != 2 {
		t.Errorf("back = %d step %d", code, resp.Step)
	}
	if clients.Client("c1").Wizard.Draft().Contact.Insurance != "Blue Cross" {
		t.Error("back must keep the draft")
	}
}

func TestSignupHandler_Strength(t *testing.T) {
	h, _ := signupRouter(&fakeRegistrar{})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("POST", "/api/signup/password-strength", bytes.NewBufferString(`{"password":"Summer2026!"}`)))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte(`"label":"Strong"`)) {
		t.Errorf("unexpected body %s", rec.Body.String())
	}
}
