package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/ecocycle/connect/types"
)

const uniqueViolation = "23505"

const accountColumns = `id, email, role, name, company_name, gst_number, location,
		is_verified, is_active, password_hash, created_at, updated_at`

// UserRepository handles persistence for accounts.
type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (types.Account, error) {
	var (
		account                types.Account
		company, gst, location sql.NullString
	)
	err := row.Scan(
		&account.ID,
		&account.Email,
		&account.Role,
		&account.Name,
		&company,
		&gst,
		&location,
		&account.IsVerified,
		&account.IsActive,
		&account.PasswordHash,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Account{}, ErrNotFound
		}
		return types.Account{}, err
	}
	account.CompanyName = company.String
	account.GSTNumber = gst.String
	account.Location = location.String
	return account, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (types.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM users WHERE id = $1`
	return scanAccount(r.db.QueryRowContext(ctx, query, id))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (types.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM users WHERE lower(email) = lower($1)`
	return scanAccount(r.db.QueryRowContext(ctx, query, strings.TrimSpace(email)))
}

func (r *UserRepository) Create(ctx context.Context, account types.Account) (types.Account, error) {
	now := time.Now().UTC()
	if account.ID == "" {
		account.ID = uuid.NewString()
	}
	account.CreatedAt = now
	account.UpdatedAt = now

	const query = `
		INSERT INTO users (id, email, role, name, company_name, gst_number, location,
			is_verified, is_active, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.db.ExecContext(
		ctx,
		query,
		account.ID,
		account.Email,
		account.Role,
		account.Name,
		nullString(account.CompanyName),
		nullString(account.GSTNumber),
		nullString(account.Location),
		account.IsVerified,
		account.IsActive,
		account.PasswordHash,
		account.CreatedAt,
		account.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return types.Account{}, ErrConflict
		}
		return types.Account{}, err
	}
	return account, nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	const query = `
		UPDATE users
		SET password_hash = $1,
			updated_at = $2
		WHERE id = $3`
	result, err := r.db.ExecContext(ctx, query, passwordHash, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// CountUsers counts accounts with role, or all accounts when role is empty.
func (r *UserRepository) CountUsers(ctx context.Context, role types.Role) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT count(*) FROM users WHERE ($1 = '' OR role = $1)`, string(role),
	).Scan(&count)
	return count, err
}

func (r *UserRepository) RecentUsers(ctx context.Context, limit int) ([]types.Identity, error) {
	query := `SELECT ` + accountColumns + ` FROM users ORDER BY created_at DESC LIMIT $1`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []types.Identity
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, account.Identity)
	}
	return users, rows.Err()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
