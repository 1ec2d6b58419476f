package user_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/wessam/partnerledger/internal/domain/audit"
	"github.com/wessam/partnerledger/internal/domain/user"
	"github.com/wessam/partnerledger/internal/repository"
	"github.com/wessam/partnerledger/internal/repository/mocks"
)

func hashedUser(t *testing.T, password string) *user.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &user.User{
		ID:       "u1",
		Role:     user.RoleAdmin,
		Username: "wessam",
		Password: string(hash),
	}
}

func TestUserService_LoginIssuesToken(t *testing.T) {
	ctx := context.Background()
	u := hashedUser(t, "secret")

	users := &mocks.UserRepository{}
	users.On("GetByUsername", ctx, "wessam").Return(u, nil)

	tokens := &mocks.TokenRepository{}
	tokens.On("Insert", ctx, mock.Anything, "u1", mock.Anything).Return(nil)

	auditor := &mocks.AuditRepository{}
	auditor.On("Append", ctx, mock.MatchedBy(func(e *audit.Event) bool {
		return e.Type == audit.TypeUserLogin && *e.UserID == "u1"
	})).Return(nil).Once()

	svc := user.NewService(users, tokens, auditor, nil)
	got, token, err := svc.Login(ctx, "wessam", "secret")
	require.NoError(t, err)
	require.Equal(t, "u1", got.ID)
	require.Len(t, token, 64)
	auditor.AssertExpectations(t)
}

func TestUserService_LoginWrongPassword(t *testing.T) {
	ctx := context.Background()
	u := hashedUser(t, "secret")

	users := &mocks.UserRepository{}
	users.On("GetByUsername", ctx, "wessam").Return(u, nil)

	svc := user.NewService(users, &mocks.TokenRepository{}, nil, nil)
	_, _, err := svc.Login(ctx, "wessam", "wrong")
	require.ErrorIs(t, err, user.ErrInvalidCredentials)
}

func TestUserService_LoginUnknownUser(t *testing.T) {
	ctx := context.Background()

	users := &mocks.UserRepository{}
	users.On("GetByUsername", ctx, "ghost").Return((*user.User)(nil), repository.ErrNotFound)

	svc := user.NewService(users, &mocks.TokenRepository{}, nil, nil)
	_, _, err := svc.Login(ctx, "ghost", "whatever")
	require.ErrorIs(t, err, user.ErrInvalidCredentials)
}

func TestUserService_LoginUpgradesPlaintextPassword(t *testing.T) {
	ctx := context.Background()
	u := &user.User{
		ID:       "u1",
		Role:     user.RoleAdmin,
		Username: "wessam",
		Password: "legacy-plaintext",
	}

	users := &mocks.UserRepository{}
	users.On("GetByUsername", ctx, "wessam").Return(u, nil)
	users.On("Update", ctx, mock.MatchedBy(func(updated *user.User) bool {
		return updated.ID == "u1" &&
			bcrypt.CompareHashAndPassword([]byte(updated.Password), []byte("legacy-plaintext")) == nil
	})).Return(nil).Once()

	tokens := &mocks.TokenRepository{}
	tokens.On("Insert", ctx, mock.Anything, "u1", mock.Anything).Return(nil)

	svc := user.NewService(users, tokens, nil, nil)
	_, _, err := svc.Login(ctx, "wessam", "legacy-plaintext")
	require.NoError(t, err)
	users.AssertExpectations(t)
}

func TestUserService_ResolveToken(t *testing.T) {
	ctx := context.Background()
	u := hashedUser(t, "secret")

	users := &mocks.UserRepository{}
	users.On("GetByUsername", ctx, "wessam").Return(u, nil)
	users.On("Get", ctx, "u1").Return(u, nil)

	var insertedHash string
	tokens := &mocks.TokenRepository{}
	tokens.On("Insert", ctx, mock.Anything, "u1", mock.Anything).
		Run(func(args mock.Arguments) { insertedHash = args.String(1) }).
		Return(nil)

	svc := user.NewService(users, tokens, nil, nil)
	_, token, err := svc.Login(ctx, "wessam", "secret")
	require.NoError(t, err)

	tokens.On("Resolve", ctx, insertedHash).Return("u1", nil)
	tokens.On("Touch", ctx, insertedHash, mock.Anything).Return(nil)

	got, err := svc.Resolve(ctx, token)
	require.NoError(t, err)
	require.Equal(t, "u1", got.ID)
}

func TestUserService_ResolveUnknownToken(t *testing.T) {
	ctx := context.Background()

	tokens := &mocks.TokenRepository{}
	tokens.On("Resolve", ctx, mock.Anything).Return("", repository.ErrNotFound)

	svc := user.NewService(&mocks.UserRepository{}, tokens, nil, nil)
	_, err := svc.Resolve(ctx, "bogus")
	require.ErrorIs(t, err, user.ErrInvalidToken)
}

func TestUserService_CreateValidation(t *testing.T) {
	ctx := context.Background()
	svc := user.NewService(&mocks.UserRepository{}, &mocks.TokenRepository{}, nil, nil)

	_, err := svc.Create(ctx, user.CreateRequest{Username: "", Password: "x", Role: user.RoleAdmin})
	require.ErrorIs(t, err, user.ErrInvalidInput)

	_, err = svc.Create(ctx, user.CreateRequest{Username: "a", Password: "", Role: user.RoleAdmin})
	require.ErrorIs(t, err, user.ErrInvalidInput)

	_, err = svc.Create(ctx, user.CreateRequest{Username: "a", Password: "x", Role: "SUPERUSER"})
	require.ErrorIs(t, err, user.ErrInvalidInput)
}

func TestUserService_CreateHashesPassword(t *testing.T) {
	ctx := context.Background()

	users := &mocks.UserRepository{}
	users.On("Create", ctx, mock.MatchedBy(func(u *user.User) bool {
		return u.Username == "amr" &&
			u.Password != "secret" &&
			bcrypt.CompareHashAndPassword([]byte(u.Password), []byte("secret")) == nil
	})).Return(nil)

	svc := user.NewService(users, &mocks.TokenRepository{}, nil, nil)
	u, err := svc.Create(ctx, user.CreateRequest{
		DisplayName: "Amr",
		Username:    "amr",
		Password:    "secret",
		Role:        user.RoleTxOnly,
	})
	require.NoError(t, err)
	require.NotEmpty(t, u.ID)
	require.WithinDuration(t, time.Now(), u.CreatedAt, time.Minute)
}

func TestUserService_CreateDuplicateUsername(t *testing.T) {
	ctx := context.Background()

	users := &mocks.UserRepository{}
	users.On("Create", ctx, mock.Anything).Return(repository.ErrConflict)

	svc := user.NewService(users, &mocks.TokenRepository{}, nil, nil)
	_, err := svc.Create(ctx, user.CreateRequest{
		Username: "wessam",
		Password: "x",
		Role:     user.RoleAdmin,
	})
	require.ErrorIs(t, err, user.ErrInvalidInput)
}
