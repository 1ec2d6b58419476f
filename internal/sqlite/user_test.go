package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/wessam/partnerledger/internal/domain/user"
	"github.com/wessam/partnerledger/internal/repository"
)

func seedUser(t *testing.T, db *DB, username string) *user.User {
	t.Helper()
	now := time.Now()
	u := &user.User{
		ID:          uuid.NewString(),
		DisplayName: "Test User",
		Role:        user.RoleAdmin,
		Username:    username,
		Password:    "$2a$10$fakehash",
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	require.NoError(t, NewUserRepository(db).Create(context.Background(), u))
	return u
}

func TestUserRepository_UniqueUsername(t *testing.T) {
	db := NewTestDB(t)
	seedUser(t, db, "wessam")

	now := time.Now()
	dup := &user.User{
		ID:        uuid.NewString(),
		Role:      user.RoleTxOnly,
		Username:  "wessam",
		Password:  "x",
		CreatedAt: now,
		UpdatedAt: now,
	}
	err := NewUserRepository(db).Create(context.Background(), dup)
	require.ErrorIs(t, err, repository.ErrConflict)
}

func TestUserRepository_GetByUsername(t *testing.T) {
	db := NewTestDB(t)
	created := seedUser(t, db, "wessam")

	got, err := NewUserRepository(db).GetByUsername(context.Background(), "wessam")
	require.NoError(t, err)
	require.Equal(t, created.ID, got.ID)

	_, err = NewUserRepository(db).GetByUsername(context.Background(), "nobody")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestTokenRepository_Lifecycle(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	u := seedUser(t, db, "wessam")

	tokens := NewTokenRepository(db)
	require.NoError(t, tokens.Insert(ctx, "hash1", u.ID, time.Now()))

	userID, err := tokens.Resolve(ctx, "hash1")
	require.NoError(t, err)
	require.Equal(t, u.ID, userID)

	require.NoError(t, tokens.Touch(ctx, "hash1", time.Now()))
	require.NoError(t, tokens.Delete(ctx, "hash1"))

	_, err = tokens.Resolve(ctx, "hash1")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestTokenRepository_InsertUnknownUser(t *testing.T) {
	db := NewTestDB(t)

	err := NewTokenRepository(db).Insert(context.Background(), "hash1", "ghost", time.Now())
	require.ErrorIs(t, err, repository.ErrNotFound)
}
