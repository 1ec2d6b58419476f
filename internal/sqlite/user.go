package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/wessam/partnerledger/internal/domain/user"
	"github.com/wessam/partnerledger/internal/repository"
)

// UserRepository implements repository.UserRepository for SQLite
type UserRepository struct {
	db *DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `
	id, display_name, email, phone, role, username, password,
	created_at, updated_at
`

func scanUser(scan func(dest ...any) error) (*user.User, error) {
	var (
		u     user.User
		email sql.NullString
		phone sql.NullString
	)

	err := scan(
		&u.ID,
		&u.DisplayName,
		&email,
		&phone,
		&u.Role,
		&u.Username,
		&u.Password,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	u.Email = email.String
	u.Phone = phone.String

	return &u, nil
}

// Create inserts a new user account
func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	query := `
		INSERT INTO user_profiles (` + userColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		u.ID,
		u.DisplayName,
		u.Email,
		u.Phone,
		u.Role,
		u.Username,
		u.Password,
		u.CreatedAt,
		u.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// Get retrieves a user by ID
func (r *UserRepository) Get(ctx context.Context, id string) (*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM user_profiles WHERE id = ?`

	row := r.db.QueryRowContext(ctx, query, id)
	u, err := scanUser(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

// GetByUsername retrieves a user by username
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM user_profiles WHERE username = ?`

	row := r.db.QueryRowContext(ctx, query, username)
	u, err := scanUser(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

// Update rewrites a user's mutable fields
func (r *UserRepository) Update(ctx context.Context, u *user.User) error {
	query := `
		UPDATE user_profiles
		SET display_name = ?, email = ?, phone = ?, role = ?,
		    password = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		u.DisplayName,
		u.Email,
		u.Phone,
		u.Role,
		u.Password,
		u.UpdatedAt,
		u.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// List returns all user accounts
func (r *UserRepository) List(ctx context.Context) ([]user.User, error) {
	query := `SELECT ` + userColumns + ` FROM user_profiles ORDER BY username ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []user.User
	for rows.Next() {
		u, err := scanUser(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, *u)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user rows: %w", err)
	}

	return users, nil
}

// TokenRepository implements repository.TokenRepository for SQLite.
// Only token hashes are stored.
type TokenRepository struct {
	db *DB
}

// NewTokenRepository creates a new TokenRepository
func NewTokenRepository(db *DB) *TokenRepository {
	return &TokenRepository{db: db}
}

// Insert stores a new token hash for a user
func (r *TokenRepository) Insert(ctx context.Context, tokenHash, userID string, createdAt time.Time) error {
	query := `
		INSERT INTO auth_tokens (token_hash, user_id, created_at)
		VALUES (?, ?, ?)
	`
	if _, err := r.db.ExecContext(ctx, query, tokenHash, userID, createdAt); err != nil {
		if isForeignKeyViolation(err) {
			return repository.ErrNotFound
		}
		return fmt.Errorf("failed to insert token: %w", err)
	}
	return nil
}

// Resolve returns the user ID owning a token hash
func (r *TokenRepository) Resolve(ctx context.Context, tokenHash string) (string, error) {
	var userID string
	err := r.db.QueryRowContext(ctx,
		`SELECT user_id FROM auth_tokens WHERE token_hash = ?`, tokenHash,
	).Scan(&userID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", repository.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to resolve token: %w", err)
	}
	return userID, nil
}

// Touch records when a token was last used
func (r *TokenRepository) Touch(ctx context.Context, tokenHash string, at time.Time) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE auth_tokens SET last_used = ? WHERE token_hash = ?`, at, tokenHash,
	); err != nil {
		return fmt.Errorf("failed to touch token: %w", err)
	}
	return nil
}

// Delete revokes a token
func (r *TokenRepository) Delete(ctx context.Context, tokenHash string) error {
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM auth_tokens WHERE token_hash = ?`, tokenHash,
	); err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return nil
}
