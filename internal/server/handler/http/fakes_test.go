package http

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/stjohnsmed/patientportal/internal/middleware"
	"github.com/stjohnsmed/patientportal/internal/models"
	"github.com/stjohnsmed/patientportal/internal/service"
)

// fakeClients hands out one client per id.
type fakeClients struct {
	clients map[string]*service.Client
	wizard  func() *service.Wizard
}

func newFakeClients() *fakeClients {
	return &fakeClients{clients: make(map[string]*service.Client)}
}

func (f *fakeClients) Client(id string) *service.Client {
	c, ok := f.clients[id]
	if !ok {
		c = &service.Client{ID: id}
		if f.wizard != nil {
			c.Wizard = f.wizard()
		}
		f.clients[id] = c
	}
	return c
}

// fakeRegistrar implements service.Registrar.
type fakeRegistrar struct {
	taken       bool
	registerErr error
	registered  []models.Account
}

func (f *fakeRegistrar) EmailTaken(ctx context.Context, email string) (bool, error) {
	return f.taken, nil
}

func (f *fakeRegistrar) Register(ctx context.Context, a models.Account) (models.Account, error) {
	if f.registerErr != nil {
		return models.Account{}, f.registerErr
	}
	a.PatientID = "MR-482913"
	f.registered = append(f.registered, a)
	return a, nil
}

type fakeLoginService struct {
	marker *models.SessionMarker
	err    error
	got    []string
}

func (f *fakeLoginService) Login(ctx context.Context, c *service.Client, identifier, password string) (*models.SessionMarker, error) {
	f.got = []string{c.ID, identifier, password}
	return f.marker, f.err
}

type fakeSessionService struct {
	redirect    string
	redirectErr error
	keepAlive   *models.SessionMarker
	keepErr     error
	logoutErr   error
	loggedOut   bool
}

func (f *fakeSessionService) AuthRedirect(ctx context.Context, c *service.Client) (string, error) {
	return f.redirect, f.redirectErr
}

func (f *fakeSessionService) KeepAlive(ctx context.Context, c *service.Client) (*models.SessionMarker, error) {
	return f.keepAlive, f.keepErr
}

func (f *fakeSessionService) Logout(ctx context.Context, c *service.Client) error {
	f.loggedOut = true
	return f.logoutErr
}

type fakeDashboardService struct {
	dashboard *models.Dashboard
	err       error
}

func (f *fakeDashboardService) Load(ctx context.Context, c *service.Client) (*models.Dashboard, error) {
	return f.dashboard, f.err
}

// withClient attaches a client id as the identity middleware would.
func withClient(r *http.Request, id string) *http.Request {
	return r.WithContext(middleware.WithClientID(r.Context(), id))
}

func nopLog() *zap.Logger { return zap.NewNop() }
