// Package cli implements the terminal client: an interactive shell that
// plays the auth page (login and signup) and the dashboard on one machine.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/stjohnsmed/patientportal/internal/models"
	"github.com/stjohnsmed/patientportal/internal/service"
	"github.com/stjohnsmed/patientportal/internal/validation"
)

// ExpiryNotice is printed when the session timer fires.
const ExpiryNotice = "Your session is about to expire. Type 'stay' to stay signed in or 'logout' to sign out."

// App is the terminal client's state and commands.
type App struct {
	client    *service.Client
	login     *service.LoginService
	sessions  *service.SessionManager
	dashboard *service.Dashboard
	prompt    *Prompter
	out       io.Writer
	log       *zap.Logger
}

// Deps are the services the App drives.
type Deps struct {
	Accounts       *service.CredentialStore
	Sessions       service.SessionStore
	SessionTimeout time.Duration
	LoginDelay     time.Duration
	SignupDelay    time.Duration
	Log            *zap.Logger
}

// NewApp builds the App for a single local client reading in and writing out.
func NewApp(d Deps, in io.Reader, out io.Writer) *App {
	w := &syncWriter{w: out}
	sessions := service.NewSessionManager(d.SessionTimeout, d.Log)

	a := &App{
		sessions:  sessions,
		login:     service.NewLoginService(d.Accounts, sessions, d.LoginDelay, d.Log),
		dashboard: service.NewDashboard(sessions, d.Log),
		prompt:    NewPrompter(in, w),
		out:       w,
		log:       d.Log,
	}
	a.client = &service.Client{
		ID:       "local",
		Sessions: d.Sessions,
		Wizard:   service.NewWizard(d.Accounts, d.SignupDelay, d.Log),
		Timer: service.NewSessionTimer(sessions.Timeout(), func() {
			fmt.Fprintln(w, "\n"+ExpiryNotice)
		}),
	}
	return a
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

func (a *App) printErrors(r validation.Result) {
	fields := make([]string, 0, len(r.Errors))
	for f := range r.Errors {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	for _, f := range fields {
		fmt.Fprintf(a.out, "  %s: %s\n", f, r.Errors[f])
	}
}

// isLoggedIn reports whether a valid session exists.
func (a *App) isLoggedIn(ctx context.Context) bool {
	_, err := a.sessions.Current(ctx, a.client)
	return err == nil
}

// Start runs the auth page load check: a valid stored session goes straight
// to the dashboard, an expired one is cleared.
func (a *App) Start(ctx context.Context) error {
	target, err := a.sessions.AuthRedirect(ctx, a.client)
	if err != nil {
		return err
	}
	if target == service.DashboardPath {
		return a.Dashboard(ctx)
	}
	a.println("Welcome to St. John's Medical Center patient portal. Type 'login' or 'signup'.")
	return nil
}

// Login prompts for credentials and opens a session.
func (a *App) Login(ctx context.Context) error {
	target, err := a.sessions.AuthRedirect(ctx, a.client)
	if err != nil {
		return err
	}
	if target == service.DashboardPath {
		a.println("Already signed in.")
		return a.Dashboard(ctx)
	}

	identifier, err := a.prompt.Line("Email or patient ID")
	if err != nil {
		return err
	}
	password, err := a.prompt.Password("Password")
	if err != nil {
		return err
	}

	a.println("Signing in...")
	_, err = a.login.Login(ctx, a.client, identifier, password)
	switch {
	case errors.Is(err, service.ErrMissingCredentials):
		a.println(service.MsgMissingCredentials)
		return nil
	case errors.Is(err, service.ErrInvalidCredentials):
		a.println(service.MsgInvalidCredentials)
		return nil
	case err != nil:
		return err
	}
	return a.Dashboard(ctx)
}

// Dashboard prints the dashboard, or sends the user back to login.
func (a *App) Dashboard(ctx context.Context) error {
	d, err := a.dashboard.Load(ctx, a.client)
	if errors.Is(err, service.ErrRedirectToLogin) {
		a.println("You are not signed in. Type 'login' to sign in.")
		return nil
	}
	if err != nil {
		return err
	}

	p := d.Profile
	fmt.Fprintf(a.out, "\nWelcome back, %s (%s)\n", p.FullName, p.PatientID)
	fmt.Fprintf(a.out, "Session expires at %s\n", d.SessionExpiry.Local().Format(time.Kitchen))
	fmt.Fprintf(a.out, "%d unread messages, %d new notifications\n", d.UnreadMessages, d.UnreadAlerts)

	a.println("\nUpcoming appointments:")
	for _, ap := range d.Data.Appointments {
		fmt.Fprintf(a.out, "  %s  %-20s %-14s %s\n", ap.ScheduleAt.Format("Jan 2 15:04"), ap.Doctor, ap.Specialty, ap.Status)
	}
	a.println("\nRecent lab results:")
	for _, l := range d.Data.LabResults {
		fmt.Fprintf(a.out, "  %-22s %-14s %s\n", l.Test, l.Value, l.Status)
	}
	a.println("\nActive prescriptions:")
	for _, rx := range d.Data.Prescriptions {
		if rx.Status == "active" {
			fmt.Fprintf(a.out, "  %s %s, %s (%d refills)\n", rx.Medication, rx.Dosage, rx.Frequency, rx.Refills)
		}
	}
	return nil
}

// Stay extends the session.
func (a *App) Stay(ctx context.Context) error {
	m, err := a.sessions.KeepAlive(ctx, a.client)
	if errors.Is(err, service.ErrNoSession) {
		a.println("Your session has expired. Type 'login' to sign in again.")
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Session extended until %s\n", m.ExpiresAt.Local().Format(time.Kitchen))
	return nil
}

// Logout ends the session.
func (a *App) Logout(ctx context.Context) error {
	if err := a.sessions.Logout(ctx, a.client); err != nil {
		return err
	}
	a.println("Signed out.")
	return nil
}

// WhoAmI prints the signed-in profile.
func (a *App) WhoAmI(ctx context.Context) error {
	m, err := a.sessions.Current(ctx, a.client)
	if errors.Is(err, service.ErrNoSession) {
		a.println("Not signed in.")
		return nil
	}
	if err != nil {
		return err
	}
	p := m.Profile
	fmt.Fprintf(a.out, "%s <%s> %s\n", p.FullName, p.Email, p.PatientID)
	return nil
}

// Strength scores a password without storing it.
func (a *App) Strength(_ context.Context) error {
	pw, err := a.prompt.Password("Password to check")
	if err != nil {
		return err
	}
	s := validation.PasswordStrength(pw)
	fmt.Fprintf(a.out, "Strength: %s (%d/100)\n", s.Label, s.Score)
	return nil
}

// Signup walks the wizard step by step until the account is created.
// A failed step is shown with its errors and asked again.
func (a *App) Signup(ctx context.Context) error {
	wz := a.client.Wizard
	for {
		step := wz.Step()
		fmt.Fprintf(a.out, "\nStep %d of %d: %s\n", int(step), int(service.LastStep), step)

		var err error
		switch step {
		case service.StepIdentity:
			err = a.askIdentity(wz)
		case service.StepContact:
			err = a.askContact(wz)
		case service.StepPhoto:
			err = a.askPhoto(wz)
		case service.StepCredentials:
			err = a.askCredentials(wz)
		}
		if err != nil {
			return err
		}

		if step == service.LastStep {
			a.println("Creating your account...")
			account, res, err := wz.Submit(ctx)
			if err != nil {
				return err
			}
			if !res.Valid() {
				a.printErrors(res)
				continue
			}
			fmt.Fprintf(a.out, "Account created. Your patient ID is %s. Type 'login' to sign in.\n", account.PatientID)
			return nil
		}

		res, err := wz.Next(ctx)
		if err != nil {
			return err
		}
		if !res.Valid() {
			a.printErrors(res)
		}
	}
}

// field is one text prompt and where its answer goes.
type field struct {
	label string
	dst   *string
}

func (a *App) ask(fields ...field) error {
	for _, f := range fields {
		v, err := a.prompt.Line(f.label)
		if err != nil {
			return err
		}
		*f.dst = v
	}
	return nil
}

func (a *App) askIdentity(wz *service.Wizard) error {
	var s models.IdentityStep
	err := a.ask(
		field{"First name", &s.FirstName},
		field{"Last name", &s.LastName},
		field{"Email", &s.Email},
		field{"Phone", &s.Phone},
		field{"Date of birth (YYYY-MM-DD)", &s.DOB},
		field{"Gender", &s.Gender},
	)
	if err != nil {
		return err
	}
	wz.SaveIdentity(s)
	return nil
}

func (a *App) askContact(wz *service.Wizard) error {
	var s models.ContactStep
	err := a.ask(
		field{"Insurance provider", &s.Insurance},
		field{"Emergency contact name", &s.EmergencyName},
		field{"Emergency contact phone", &s.EmergencyPhone},
		field{"Address", &s.Address},
	)
	if err != nil {
		return err
	}
	wz.SaveContact(s)
	return nil
}

func (a *App) askPhoto(wz *service.Wizard) error {
	photo, err := a.prompt.Line("Photo file (optional, Enter to skip)")
	if err != nil {
		return err
	}
	if photo == "" {
		wz.RemovePhoto()
		return nil
	}
	wz.SavePhoto(models.PhotoStep{Photo: photo})
	return nil
}

func (a *App) askCredentials(wz *service.Wizard) error {
	pw, err := a.prompt.Password("Password")
	if err != nil {
		return err
	}
	s := validation.PasswordStrength(pw)
	fmt.Fprintf(a.out, "Strength: %s\n", s.Label)

	confirm, err := a.prompt.Password("Confirm password")
	if err != nil {
		return err
	}
	terms, err := a.prompt.Confirm("Accept the terms of service?")
	if err != nil {
		return err
	}
	privacy, err := a.prompt.Confirm("Accept the privacy policy?")
	if err != nil {
		return err
	}
	wz.SaveCredentials(models.CredentialsStep{
		Password:        pw,
		ConfirmPassword: confirm,
		AcceptTerms:     terms,
		AcceptPrivacy:   privacy,
	})
	return nil
}

// Close cancels the session timer.
func (a *App) Close() {
	a.client.Timer.Cancel()
}

func (a *App) status(ctx context.Context) string {
	m, err := a.sessions.Current(ctx, a.client)
	if err != nil {
		return "signed out"
	}
	return m.Profile.PatientID
}
