package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/stjohnsmed/patientportal/internal/models"
	"github.com/stjohnsmed/patientportal/internal/repository"
	"github.com/stjohnsmed/patientportal/internal/storage"
)

type mockAccountRepo struct {
	GetFunc     func(ctx context.Context, id string) (*models.Account, error)
	PutFunc     func(ctx context.Context, a models.Account) error
	CreateFunc  func(ctx context.Context, a models.Account) error
	ListAllFunc func(ctx context.Context) ([]models.Account, error)
}

func (m *mockAccountRepo) Get(ctx context.Context, id string) (*models.Account, error) {
	return m.GetFunc(ctx, id)
}

func (m *mockAccountRepo) Put(ctx context.Context, a models.Account) error {
	return m.PutFunc(ctx, a)
}

func (m *mockAccountRepo) Create(ctx context.Context, a models.Account) error {
	return m.CreateFunc(ctx, a)
}

func (m *mockAccountRepo) ListAll(ctx context.Context) ([]models.Account, error) {
	return m.ListAllFunc(ctx)
}

func TestGeneratePatientID_Format(t *testing.T) {
	re := regexp.MustCompile(`^MR-[1-9]\d{5}$`)
	for range 200 {
		assert.Regexp(t, re, generatePatientID())
	}
}

func TestCredentialStore_Register(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	a, err := f.accounts.Register(ctx, models.Account{Email: "jane@example.com", FullName: "Jane Doe"})
	require.NoError(t, err)
	assert.Regexp(t, `^MR-\d{6}$`, a.PatientID)
	assert.Equal(t, testNow, a.CreatedAt)
	assert.Nil(t, a.LastLogin)

	stored, err := f.repo.Get(ctx, a.PatientID)
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", stored.Email)
}

func TestCredentialStore_RegisterDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seed(t, "MR-482913", "jane@example.com", "Summer2026!")

	_, err := f.accounts.Register(ctx, models.Account{Email: "jane@example.com"})
	assert.ErrorIs(t, err, ErrEmailTaken)

	all, err := f.repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestCredentialStore_RegisterRetriesCollidingIDs(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seed(t, "MR-100000", "a@example.com", "Summer2026!")

	ids := []string{"MR-100000", "MR-100000", "MR-200000"}
	f.accounts.newID = func() string {
		id := ids[0]
		ids = ids[1:]
		return id
	}

	a, err := f.accounts.Register(ctx, models.Account{Email: "b@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "MR-200000", a.PatientID)
}

func TestCredentialStore_RegisterExhausted(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "MR-100000", "a@example.com", "Summer2026!")
	f.accounts.newID = func() string { return "MR-100000" }

	_, err := f.accounts.Register(context.Background(), models.Account{Email: "b@example.com"})
	assert.ErrorIs(t, err, ErrIDSpaceExhausted)
}

func TestCredentialStore_RegisterUniqueIDs(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	seen := make(map[string]bool)
	for i := range 50 {
		a, err := f.accounts.Register(ctx, models.Account{Email: fmt.Sprintf("patient%d@example.com", i)})
		require.NoError(t, err)
		assert.False(t, seen[a.PatientID], "duplicate id %s", a.PatientID)
		seen[a.PatientID] = true
	}
}

func TestCredentialStore_RegisterMapsRepoConflict(t *testing.T) {
	repo := &mockAccountRepo{
		ListAllFunc: func(ctx context.Context) ([]models.Account, error) { return nil, nil },
		CreateFunc: func(ctx context.Context, a models.Account) error {
			return errors.Join(errors.New("insert"), repository.ErrAlreadyExists)
		},
	}
	s := NewCredentialStore(repo, zap.NewNop())

	_, err := s.Register(context.Background(), models.Account{Email: "x@example.com"})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestCredentialStore_RegisterRetriesIDTakenOnCreate(t *testing.T) {
	var created []string
	repo := &mockAccountRepo{
		ListAllFunc: func(ctx context.Context) ([]models.Account, error) { return nil, nil },
		CreateFunc: func(ctx context.Context, a models.Account) error {
			created = append(created, a.PatientID)
			if a.PatientID == "MR-100000" {
				return repository.ErrIDTaken
			}
			return nil
		},
	}
	s := NewCredentialStore(repo, zap.NewNop())
	ids := []string{"MR-100000", "MR-100000", "MR-300000"}
	s.newID = func() string {
		id := ids[0]
		ids = ids[1:]
		return id
	}

	a, err := s.Register(context.Background(), models.Account{Email: "x@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "MR-300000", a.PatientID)
	assert.Equal(t, []string{"MR-100000", "MR-300000"}, created)
}

// slowStorage widens the window between reading and writing the collection.
type slowStorage struct {
	storage.Storage
}

func (s slowStorage) GetItem(ctx context.Context, key string) (string, bool, error) {
	time.Sleep(time.Millisecond)
	return s.Storage.GetItem(ctx, key)
}

func TestCredentialStore_RegisterConcurrent(t *testing.T) {
	ctx := context.Background()
	fs := storage.NewFileStorage(filepath.Join(t.TempDir(), "portal.json"))
	repo := repository.NewStorageAccountRepository(slowStorage{fs}, zap.NewNop())
	s := NewCredentialStore(repo, zap.NewNop())

	const n = 20
	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		ids = make(map[string]bool)
	)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a, err := s.Register(ctx, models.Account{Email: fmt.Sprintf("patient%d@example.com", i)})
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			ids[a.PatientID] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, n)
	assert.Len(t, ids, n)
	for _, a := range all {
		assert.True(t, ids[a.PatientID], "stored %s was not returned by Register", a.PatientID)
	}
}

func TestCredentialStore_RegisterConcurrentSameEmail(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewStorageAccountRepository(slowStorage{storage.NewMemoryStorage()}, zap.NewNop())
	s := NewCredentialStore(repo, zap.NewNop())

	const n = 10
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		success int
	)
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Register(ctx, models.Account{Email: "same@example.com"})
			if err == nil {
				mu.Lock()
				success++
				mu.Unlock()
				return
			}
			assert.ErrorIs(t, err, ErrEmailTaken)
		}()
	}
	wg.Wait()

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
	assert.Equal(t, 1, success)
}

func TestCredentialStore_FindByIdentifier(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seed(t, "MR-482913", "jane@example.com", "Summer2026!")

	byID, err := f.accounts.FindByIdentifier(ctx, "MR-482913")
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", byID.Email)

	byEmail, err := f.accounts.FindByIdentifier(ctx, "  jane@example.com ")
	require.NoError(t, err)
	assert.Equal(t, "MR-482913", byEmail.PatientID)

	_, err = f.accounts.FindByIdentifier(ctx, "JANE@example.com")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.accounts.FindByIdentifier(ctx, "  ")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCredentialStore_EmailTaken(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seed(t, "MR-482913", "jane@example.com", "Summer2026!")

	taken, err := f.accounts.EmailTaken(ctx, "jane@example.com")
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = f.accounts.EmailTaken(ctx, "other@example.com")
	require.NoError(t, err)
	assert.False(t, taken)
}

func TestCredentialStore_ListError(t *testing.T) {
	wantErr := errors.New("db down")
	repo := &mockAccountRepo{
		ListAllFunc: func(ctx context.Context) ([]models.Account, error) { return nil, wantErr },
	}
	s := NewCredentialStore(repo, zap.NewNop())

	_, err := s.EmailTaken(context.Background(), "a@example.com")
	assert.ErrorIs(t, err, wantErr)
	_, err = s.FindByIdentifier(context.Background(), "a@example.com")
	assert.ErrorIs(t, err, wantErr)
}

func TestCredentialStore_TouchLastLogin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.seed(t, "MR-482913", "jane@example.com", "Summer2026!")

	require.NoError(t, f.accounts.TouchLastLogin(ctx, &a))
	require.NotNil(t, a.LastLogin)
	assert.Equal(t, testNow, *a.LastLogin)

	stored, err := f.repo.Get(ctx, "MR-482913")
	require.NoError(t, err)
	require.NotNil(t, stored.LastLogin)
	assert.True(t, testNow.Equal(*stored.LastLogin))
}
