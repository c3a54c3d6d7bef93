package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/stjohnsmed/patientportal/internal/models"
	"github.com/stjohnsmed/patientportal/internal/validation"
)

// Step is a signup wizard step.
type Step int

// Wizard steps in order.
const (
	StepIdentity Step = iota + 1
	StepContact
	StepPhoto
	StepCredentials
)

// FirstStep and LastStep bound the wizard.
const (
	FirstStep = StepIdentity
	LastStep  = StepCredentials
)

func (s Step) String() string {
	switch s {
	case StepIdentity:
		return "identity"
	case StepContact:
		return "contact"
	case StepPhoto:
		return "photo"
	case StepCredentials:
		return "credentials"
	default:
		return fmt.Sprintf("step(%d)", int(s))
	}
}

// Registrar is the part of the credential store the wizard needs.
type Registrar interface {
	// EmailTaken reports whether an account already uses email.
	EmailTaken(ctx context.Context, email string) (bool, error)
	// Register stores a new account and returns it with its assigned id.
	Register(ctx context.Context, account models.Account) (models.Account, error)
}

// Wizard is the four-step signup state machine. It moves one step at a time
// and only moves forward when the current step validates. The draft lives in
// memory until Submit hands the finished account to the Registrar.
type Wizard struct {
	mu       sync.Mutex
	accounts Registrar
	delay    time.Duration
	now      func() time.Time
	log      *zap.Logger

	step  Step
	draft models.Draft
}

// NewWizard returns a wizard on the first step with an empty draft. delay
// simulates request latency before the account is stored.
func NewWizard(accounts Registrar, delay time.Duration, log *zap.Logger) *Wizard {
	return &Wizard{
		accounts: accounts,
		delay:    delay,
		now:      time.Now,
		log:      log,
		step:     FirstStep,
	}
}

// Step returns the current step.
func (w *Wizard) Step() Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.step
}

// Draft returns a copy of the draft.
func (w *Wizard) Draft() models.Draft {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.draft
}

// SaveIdentity stores the first step's fields.
func (w *Wizard) SaveIdentity(s models.IdentityStep) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.draft.Identity = models.IdentityStep{
		FirstName: strings.TrimSpace(s.FirstName),
		LastName:  strings.TrimSpace(s.LastName),
		Email:     strings.TrimSpace(s.Email),
		Phone:     strings.TrimSpace(s.Phone),
		DOB:       strings.TrimSpace(s.DOB),
		Gender:    strings.TrimSpace(s.Gender),
	}
}

// SaveContact stores the second step's fields.
func (w *Wizard) SaveContact(s models.ContactStep) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.draft.Contact = models.ContactStep{
		Insurance:      strings.TrimSpace(s.Insurance),
		EmergencyName:  strings.TrimSpace(s.EmergencyName),
		EmergencyPhone: strings.TrimSpace(s.EmergencyPhone),
		Address:        strings.TrimSpace(s.Address),
	}
}

// SavePhoto stores the optional photo.
func (w *Wizard) SavePhoto(s models.PhotoStep) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.draft.Photo = s
}

// RemovePhoto clears the photo.
func (w *Wizard) RemovePhoto() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.draft.Photo = models.PhotoStep{}
}

// SaveCredentials stores the password and consents. Passwords are kept verbatim.
func (w *Wizard) SaveCredentials(s models.CredentialsStep) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.draft.Credentials = s
}

// Reset discards the draft and returns to the first step.
func (w *Wizard) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.resetLocked()
}

func (w *Wizard) resetLocked() {
	w.draft = models.Draft{}
	w.step = FirstStep
}

// Validate checks the current step.
func (w *Wizard) Validate(ctx context.Context) (validation.Result, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.validateLocked(ctx, w.step)
}

func (w *Wizard) validateLocked(ctx context.Context, step Step) (validation.Result, error) {
	switch step {
	case StepIdentity:
		s := w.draft.Identity
		taken := false
		if validation.IsEmail(s.Email) {
			var err error
			taken, err = w.accounts.EmailTaken(ctx, s.Email)
			if err != nil {
				return validation.Result{}, fmt.Errorf("check email: %w", err)
			}
		}
		return validation.Identity(s, w.now(), taken), nil
	case StepContact:
		return validation.Contact(w.draft.Contact), nil
	case StepPhoto:
		return validation.Photo(w.draft.Photo), nil
	case StepCredentials:
		return validation.Credentials(w.draft.Credentials), nil
	default:
		return validation.Result{}, fmt.Errorf("unknown wizard step %d", int(step))
	}
}

// Next validates the current step and advances one step if it passes. On
// failure the step is unchanged and the per-field result is returned.
func (w *Wizard) Next(ctx context.Context) (validation.Result, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	r, err := w.validateLocked(ctx, w.step)
	if err != nil || !r.Valid() {
		return r, err
	}
	if w.step == LastStep {
		return r, ErrFinalStep
	}
	w.step++
	return r, nil
}

// Back moves one step backwards; it does nothing on the first step.
func (w *Wizard) Back() Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.step > FirstStep {
		w.step--
	}
	return w.step
}

// Submit finishes the signup. Every step is re-validated; the wizard moves to
// the first failing step and returns its result. When all steps pass, the
// drafts are merged into a new account, registered with a fresh patient id,
// and the draft is reset.
func (w *Wizard) Submit(ctx context.Context) (models.Account, validation.Result, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.step != LastStep {
		return models.Account{}, validation.Result{}, ErrNotFinalStep
	}

	for step := FirstStep; step <= LastStep; step++ {
		r, err := w.validateLocked(ctx, step)
		if err != nil {
			return models.Account{}, validation.Result{}, err
		}
		if !r.Valid() {
			w.step = step
			w.log.Debug("signup rejected", zap.Stringer("step", step))
			return models.Account{}, r, nil
		}
	}

	if err := simulateLatency(ctx, w.delay); err != nil {
		return models.Account{}, validation.Result{}, err
	}

	hash, err := HashPassword(w.draft.Credentials.Password)
	if err != nil {
		return models.Account{}, validation.Result{}, fmt.Errorf("hash password: %w", err)
	}

	id, contact := w.draft.Identity, w.draft.Contact
	candidate := models.Account{
		FirstName:      id.FirstName,
		LastName:       id.LastName,
		FullName:       id.FirstName + " " + id.LastName,
		Email:          id.Email,
		Phone:          id.Phone,
		DOB:            id.DOB,
		Gender:         id.Gender,
		Insurance:      contact.Insurance,
		EmergencyName:  contact.EmergencyName,
		EmergencyPhone: contact.EmergencyPhone,
		Address:        contact.Address,
		Photo:          w.draft.Photo.Photo,
		PasswordHash:   hash,
	}

	account, err := w.accounts.Register(ctx, candidate)
	if errors.Is(err, ErrEmailTaken) {
		// registered by someone else since step 1 was validated
		w.step = StepIdentity
		return models.Account{}, validation.Identity(id, w.now(), true), nil
	}
	if err != nil {
		return models.Account{}, validation.Result{}, err
	}

	w.resetLocked()
	return account, validation.Result{}, nil
}
