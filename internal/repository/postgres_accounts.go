package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/stjohnsmed/patientportal/internal/models"
)

// uniqueViolation is the Postgres SQLSTATE for unique_violation.
const uniqueViolation = "23505"

// accountsPKey is the default name of the accounts primary key constraint.
const accountsPKey = "accounts_pkey"

const accountColumns = `patient_id, first_name, last_name, full_name, email, phone, dob, gender,
	insurance, emergency_name, emergency_phone, address, photo, password_hash, created_at, last_login`

// PostgresAccountRepository stores accounts one row each in the accounts table.
type PostgresAccountRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresAccountRepository creates a PostgresAccountRepository.
// db must be a valid connection to a PostgreSQL instance.
func NewPostgresAccountRepository(db *sql.DB) *PostgresAccountRepository {
	return &PostgresAccountRepository{DB: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (models.Account, error) {
	var (
		a         models.Account
		lastLogin sql.NullTime
	)
	err := row.Scan(
		&a.PatientID, &a.FirstName, &a.LastName, &a.FullName, &a.Email, &a.Phone, &a.DOB, &a.Gender,
		&a.Insurance, &a.EmergencyName, &a.EmergencyPhone, &a.Address, &a.Photo, &a.PasswordHash,
		&a.CreatedAt, &lastLogin,
	)
	if err != nil {
		return models.Account{}, err
	}
	if lastLogin.Valid {
		t := lastLogin.Time
		a.LastLogin = &t
	}
	return a, nil
}

// Get fetches a single account by patient id.
//
//	ctx:       context for cancellation and deadlines
//	patientID: identifier of the account
//
// Returns ErrNotFound when no row matches.
func (r *PostgresAccountRepository) Get(ctx context.Context, patientID string) (*models.Account, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE patient_id = $1`, patientID)
	a, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}
	return &a, nil
}

// Create inserts a new account row. A taken patient id yields ErrIDTaken and a
// taken email ErrAlreadyExists; an existing row is never modified.
func (r *PostgresAccountRepository) Create(ctx context.Context, a models.Account) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO accounts (`+accountColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`,
		a.PatientID, a.FirstName, a.LastName, a.FullName, a.Email, a.Phone, a.DOB, a.Gender,
		a.Insurance, a.EmergencyName, a.EmergencyPhone, a.Address, a.Photo, a.PasswordHash,
		a.CreatedAt, nullTime(a.LastLogin),
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			if pqErr.Constraint == accountsPKey {
				return fmt.Errorf("patient id %q: %w", a.PatientID, ErrIDTaken)
			}
			return fmt.Errorf("email %q: %w", a.Email, ErrAlreadyExists)
		}
		return fmt.Errorf("create account: %w", err)
	}
	return nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

// Put inserts the account, or updates it on patient id conflict. It backs
// updates of existing accounts; new registrations go through Create.
// An email already used by another account yields ErrAlreadyExists.
func (r *PostgresAccountRepository) Put(ctx context.Context, a models.Account) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO accounts (`+accountColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		ON CONFLICT (patient_id) DO UPDATE SET
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			full_name = EXCLUDED.full_name,
			email = EXCLUDED.email,
			phone = EXCLUDED.phone,
			dob = EXCLUDED.dob,
			gender = EXCLUDED.gender,
			insurance = EXCLUDED.insurance,
			emergency_name = EXCLUDED.emergency_name,
			emergency_phone = EXCLUDED.emergency_phone,
			address = EXCLUDED.address,
			photo = EXCLUDED.photo,
			password_hash = EXCLUDED.password_hash,
			last_login = EXCLUDED.last_login
	`,
		a.PatientID, a.FirstName, a.LastName, a.FullName, a.Email, a.Phone, a.DOB, a.Gender,
		a.Insurance, a.EmergencyName, a.EmergencyPhone, a.Address, a.Photo, a.PasswordHash,
		a.CreatedAt, nullTime(a.LastLogin),
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return fmt.Errorf("email %q: %w", a.Email, ErrAlreadyExists)
		}
		return fmt.Errorf("put account: %w", err)
	}
	return nil
}

// ListAll returns every account ordered by registration time.
func (r *PostgresAccountRepository) ListAll(ctx context.Context) ([]models.Account, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+accountColumns+` FROM accounts ORDER BY created_at, patient_id`)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	accounts := []models.Account{}
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return accounts, nil
}
