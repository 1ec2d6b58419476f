package user

import (
	"context"
	"time"

	"github.com/wessam/partnerledger/internal/domain/audit"
)

// Repository provides persistence for user accounts.
type Repository interface {
	Create(ctx context.Context, u *User) error
	Get(ctx context.Context, id string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	Update(ctx context.Context, u *User) error
	List(ctx context.Context) ([]User, error)
}

// TokenRepository persists hashed bearer tokens.
type TokenRepository interface {
	Insert(ctx context.Context, tokenHash, userID string, createdAt time.Time) error
	// Resolve returns the user ID owning a token hash.
	Resolve(ctx context.Context, tokenHash string) (string, error)
	Touch(ctx context.Context, tokenHash string, at time.Time) error
	Delete(ctx context.Context, tokenHash string) error
}

// Auditor receives login and logout events.
type Auditor interface {
	Append(ctx context.Context, event *audit.Event) error
}
