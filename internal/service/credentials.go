package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/stjohnsmed/patientportal/internal/models"
	"github.com/stjohnsmed/patientportal/internal/repository"
)

// maxIDAttempts bounds the retries when a drawn patient id is already in use.
const maxIDAttempts = 64

// AccountRepository defines the persistence operations
// required by the credential store.
type AccountRepository interface {
	// Get returns the account with the given patient id or ErrNotFound.
	Get(ctx context.Context, patientID string) (*models.Account, error)
	// Put inserts or replaces an account keyed by patient id.
	Put(ctx context.Context, account models.Account) error
	// Create atomically inserts a new account, failing with
	// repository.ErrIDTaken or repository.ErrAlreadyExists on conflict.
	Create(ctx context.Context, account models.Account) error
	// ListAll returns every stored account.
	ListAll(ctx context.Context) ([]models.Account, error)
}

// CredentialStore owns the durable account collection: lookups by email or
// patient id, registration with unique ids, last-login bookkeeping.
type CredentialStore struct {
	repo  AccountRepository
	log   *zap.Logger
	now   func() time.Time
	newID func() string
}

// NewCredentialStore constructs a CredentialStore over repo.
func NewCredentialStore(repo AccountRepository, log *zap.Logger) *CredentialStore {
	return &CredentialStore{
		repo:  repo,
		log:   log,
		now:   time.Now,
		newID: generatePatientID,
	}
}

// generatePatientID draws an id of the form MR-NNNNNN.
func generatePatientID() string {
	return fmt.Sprintf("MR-%d", 100000+rand.IntN(900000))
}

// EmailTaken reports whether an account already uses email.
func (s *CredentialStore) EmailTaken(ctx context.Context, email string) (bool, error) {
	email = strings.TrimSpace(email)
	accounts, err := s.repo.ListAll(ctx)
	if err != nil {
		return false, err
	}
	for _, a := range accounts {
		if a.Email == email {
			return true, nil
		}
	}
	return false, nil
}

// FindByIdentifier returns the account whose email or patient id equals
// identifier, or ErrNotFound.
func (s *CredentialStore) FindByIdentifier(ctx context.Context, identifier string) (*models.Account, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, ErrNotFound
	}
	accounts, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	for i := range accounts {
		if accounts[i].Email == identifier || accounts[i].PatientID == identifier {
			return &accounts[i], nil
		}
	}
	return nil, ErrNotFound
}

// Register assigns a fresh patient id and creation time to account and
// appends it to the collection. The returned account is the stored one.
// Uniqueness of email and id is decided by the repository's Create; the scan
// below only avoids drawing ids that are already known to be taken.
func (s *CredentialStore) Register(ctx context.Context, account models.Account) (models.Account, error) {
	accounts, err := s.repo.ListAll(ctx)
	if err != nil {
		return models.Account{}, err
	}

	used := make(map[string]struct{}, len(accounts))
	for _, a := range accounts {
		if a.Email == account.Email {
			return models.Account{}, ErrEmailTaken
		}
		used[a.PatientID] = struct{}{}
	}

	account.CreatedAt = s.now().UTC()
	account.LastLogin = nil

	for range maxIDAttempts {
		candidate := s.newID()
		if _, taken := used[candidate]; taken {
			continue
		}
		account.PatientID = candidate

		err := s.repo.Create(ctx, account)
		switch {
		case err == nil:
			s.log.Info("patient registered",
				zap.String("patient_id", account.PatientID),
				zap.String("email", account.Email),
			)
			return account, nil
		case errors.Is(err, repository.ErrIDTaken):
			used[candidate] = struct{}{}
		case errors.Is(err, repository.ErrAlreadyExists):
			return models.Account{}, ErrEmailTaken
		default:
			return models.Account{}, err
		}
	}
	return models.Account{}, ErrIDSpaceExhausted
}

// TouchLastLogin stamps the account's last login with the current time and
// persists it.
func (s *CredentialStore) TouchLastLogin(ctx context.Context, account *models.Account) error {
	t := s.now().UTC()
	account.LastLogin = &t
	if err := s.repo.Put(ctx, *account); err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	return nil
}
