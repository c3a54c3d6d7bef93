package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/stjohnsmed/patientportal/internal/models"
	"github.com/stjohnsmed/patientportal/internal/storage"
)

// StorageAccountRepository keeps the whole account collection as one JSON
// array under storage.KeyUsers. Every read-modify-write of the array holds mu.
type StorageAccountRepository struct {
	mu    sync.Mutex
	store storage.Storage
	log   *zap.Logger
}

// NewStorageAccountRepository creates a repository over store.
func NewStorageAccountRepository(store storage.Storage, log *zap.Logger) *StorageAccountRepository {
	return &StorageAccountRepository{store: store, log: log}
}

// load reads the collection. A missing key initialises an empty array; data
// that cannot be decoded is treated as an empty collection.
func (r *StorageAccountRepository) load(ctx context.Context) ([]models.Account, error) {
	raw, ok, err := r.store.GetItem(ctx, storage.KeyUsers)
	if err != nil {
		return nil, fmt.Errorf("load accounts: %w", err)
	}
	if !ok {
		if err := r.store.SetItem(ctx, storage.KeyUsers, "[]"); err != nil {
			return nil, fmt.Errorf("init accounts: %w", err)
		}
		return []models.Account{}, nil
	}

	var accounts []models.Account
	if err := json.Unmarshal([]byte(raw), &accounts); err != nil {
		r.log.Warn("stored accounts are unreadable, using empty collection", zap.Error(err))
		return []models.Account{}, nil
	}
	if accounts == nil {
		accounts = []models.Account{}
	}
	return accounts, nil
}

func (r *StorageAccountRepository) save(ctx context.Context, accounts []models.Account) error {
	data, err := json.Marshal(accounts)
	if err != nil {
		return fmt.Errorf("encode accounts: %w", err)
	}
	if err := r.store.SetItem(ctx, storage.KeyUsers, string(data)); err != nil {
		return fmt.Errorf("save accounts: %w", err)
	}
	r.log.Debug("accounts saved", zap.Int("count", len(accounts)))
	return nil
}

// Get returns the account with the given patient id, or ErrNotFound.
func (r *StorageAccountRepository) Get(ctx context.Context, patientID string) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	accounts, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range accounts {
		if accounts[i].PatientID == patientID {
			return &accounts[i], nil
		}
	}
	return nil, ErrNotFound
}

// Put inserts the account or replaces the one with the same patient id.
// Another account already using the email yields ErrAlreadyExists.
func (r *StorageAccountRepository) Put(ctx context.Context, account models.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	accounts, err := r.load(ctx)
	if err != nil {
		return err
	}

	idx := -1
	for i, a := range accounts {
		if a.PatientID == account.PatientID {
			idx = i
			continue
		}
		if a.Email == account.Email {
			return fmt.Errorf("email %q: %w", account.Email, ErrAlreadyExists)
		}
	}
	if idx >= 0 {
		accounts[idx] = account
	} else {
		accounts = append(accounts, account)
	}
	return r.save(ctx, accounts)
}

// Create appends a new account. It fails with ErrIDTaken when the patient id
// is in use and with ErrAlreadyExists when the email is.
func (r *StorageAccountRepository) Create(ctx context.Context, account models.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	accounts, err := r.load(ctx)
	if err != nil {
		return err
	}
	for _, a := range accounts {
		if a.PatientID == account.PatientID {
			return fmt.Errorf("patient id %q: %w", account.PatientID, ErrIDTaken)
		}
		if a.Email == account.Email {
			return fmt.Errorf("email %q: %w", account.Email, ErrAlreadyExists)
		}
	}
	return r.save(ctx, append(accounts, account))
}

// ListAll returns every stored account in insertion order.
func (r *StorageAccountRepository) ListAll(ctx context.Context) ([]models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load(ctx)
}
