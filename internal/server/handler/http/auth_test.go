package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stjohnsmed/patientportal/internal/models"
	"github.com/stjohnsmed/patientportal/internal/service"
)

func TestAuthHandler_Login(t *testing.T) {
	expires := time.Date(2026, 10, 17, 12, 15, 0, 0, time.UTC)
	tests := []struct {
		name           string
		body           string
		service        *fakeLoginService
		expectedCode   int
		expectedSubstr string
	}{
		{
			name:           "invalid JSON",
			body:           `not a json`,
			service:        &fakeLoginService{},
			expectedCode:   http.StatusBadRequest,
			expectedSubstr: "invalid request",
		},
		{
			name:           "missing credentials",
			body:           `{"identifier":"","password":""}`,
			service:        &fakeLoginService{err: service.ErrMissingCredentials},
			expectedCode:   http.StatusBadRequest,
			expectedSubstr: service.MsgMissingCredentials,
		},
		{
			name:           "invalid credentials",
			body:           `{"identifier":"MR-482913","password":"summer2026!"}`,
			service:        &fakeLoginService{err: service.ErrInvalidCredentials},
			expectedCode:   http.StatusUnauthorized,
			expectedSubstr: service.MsgInvalidCredentials,
		},
		{
			name:           "store failure",
			body:           `{"identifier":"MR-482913","password":"Summer2026!"}`,
			service:        &fakeLoginService{err: errors.New("disk gone")},
			expectedCode:   http.StatusInternalServerError,
			expectedSubstr: "internal error",
		},
		{
			name: "success",
			body: `{"identifier":"MR-482913","password":"Summer2026!"}`,
			service: &fakeLoginService{marker: &models.SessionMarker{
				Authenticated: true,
				ExpiresAt:     expires,
				Profile:       models.Profile{PatientID: "MR-482913", FullName: "Jane Doe"},
			}},
			expectedCode:   http.StatusOK,
			expectedSubstr: `"redirect":"/portal"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := withClient(httptest.NewRequest("POST", "/api/login", bytes.NewBufferString(tt.body)), "c1")
			h := &AuthHandler{Clients: newFakeClients(), LoginService: tt.service, SessionService: &fakeSessionService{}, Log: nopLog()}
			h.Login(rec, req)
			res := rec.Result()
			defer res.Body.Close()

			if res.StatusCode != tt.expectedCode {
				t.Fatalf("expected status %d, got %d", tt.expectedCode, res.StatusCode)
			}

			buf := new(bytes.Buffer)
			if _, err := buf.ReadFrom(res.Body); err != nil {
				t.Fatalf("failed to read body: %v", err)
			}
			if !bytes.Contains(buf.Bytes(), []byte(tt.expectedSubstr)) {
				t.Errorf("expected body to contain %q, got %q", tt.expectedSubstr, buf.String())
			}
		})
	}
}

func TestAuthHandler_LoginPassesClientAndInputs(t *testing.T) {
	svc := &fakeLoginService{err: service.ErrInvalidCredentials}
	h := &AuthHandler{Clients: newFakeClients(), LoginService: svc, SessionService: &fakeSessionService{}, Log: nopLog()}

	rec := httptest.NewRecorder()
	req := withClient(httptest.NewRequest("POST", "/api/login", bytes.NewBufferString(`{"identifier":"jane@example.com","password":"pw"}`)), "c7")
	h.Login(rec, req)

	want := []string{"c7", "jane@example.com", "pw"}
	for i := range want {
		if svc.got[i] != want[i] {
			t.Errorf("Login arg %d = %q; want %q", i, svc.got[i], want[i])
		}
	}
}

func TestAuthHandler_MissingClient(t *testing.T) {
	h := &AuthHandler{Clients: newFakeClients(), LoginService: &fakeLoginService{}, SessionService: &fakeSessionService{}, Log: nopLog()}
	rec := httptest.NewRecorder()
	h.State(rec, httptest.NewRequest("GET", "/api/auth/state", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestAuthHandler_State(t *testing.T) {
	tests := []struct {
		name         string
		sessions     *fakeSessionService
		expectedCode int
		expected     SessionResponse
	}{
		{"signed out", &fakeSessionService{}, http.StatusOK, SessionResponse{}},
		{"signed in", &fakeSessionService{redirect: service.DashboardPath}, http.StatusOK, SessionResponse{Authenticated: true, Redirect: "/portal"}},
		{"error", &fakeSessionService{redirectErr: errors.New("boom")}, http.StatusInternalServerError, SessionResponse{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &AuthHandler{Clients: newFakeClients(), SessionService: tt.sessions, Log: nopLog()}
			rec := httptest.NewRecorder()
			h.State(rec, withClient(httptest.NewRequest("GET", "/api/auth/state", nil), "c1"))

			if rec.Code != tt.expectedCode {
				t.Fatalf("expected status %d, got %d", tt.expectedCode, rec.Code)
			}
			if rec.Code != http.StatusOK {
				return
			}
			var got SessionResponse
			if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if got.Authenticated != tt.expected.Authenticated || got.Redirect != tt.expected.Redirect {
				t.Errorf("got %+v; want %+v", got, tt.expected)
			}
		})
	}
}

func TestAuthHandler_Logout(t *testing.T) {
	sessions := &fakeSessionService{}
	h := &AuthHandler{Clients: newFakeClients(), SessionService: sessions, Log: nopLog()}
	rec := httptest.NewRecorder()
	h.Logout(rec, withClient(httptest.NewRequest("POST", "/api/logout", nil), "c1"))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !sessions.loggedOut {
		t.Error("expected Logout to be called")
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte(`"redirect":"/auth"`)) {
		t.Errorf("expected redirect to /auth, got %s", rec.Body.String())
	}

	sessions.logoutErr = errors.New("fail")
	rec = httptest.NewRecorder()
	h.Logout(rec, withClient(httptest.NewRequest("POST", "/api/logout", nil), "c1"))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
}
