package user

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/wessam/partnerledger/internal/domain/audit"
	"github.com/wessam/partnerledger/internal/repository/repoerr"
)

// Service implements account management and token-based authentication.
type Service struct {
	users   Repository
	tokens  TokenRepository
	auditor Auditor
	logger  *slog.Logger
}

// NewService creates a user service.
func NewService(users Repository, tokens TokenRepository, auditor Auditor, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{users: users, tokens: tokens, auditor: auditor, logger: logger}
}

// CreateRequest carries the fields for a new account.
type CreateRequest struct {
	DisplayName string
	Email       string
	Phone       string
	Role        Role
	Username    string
	Password    string
}

// Create registers a new account with a bcrypt-hashed password.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*User, error) {
	if strings.TrimSpace(req.Username) == "" {
		return nil, fmt.Errorf("%w: username is required", ErrInvalidInput)
	}
	if req.Password == "" {
		return nil, fmt.Errorf("%w: password is required", ErrInvalidInput)
	}
	if req.Role != RoleAdmin && req.Role != RoleTxOnly {
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidInput, req.Role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	now := time.Now()
	u := &User{
		ID:          uuid.New().String(),
		DisplayName: req.DisplayName,
		Email:       req.Email,
		Phone:       req.Phone,
		Role:        req.Role,
		Username:    strings.TrimSpace(req.Username),
		Password:    string(hash),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, repoerr.ErrConflict) {
			return nil, fmt.Errorf("%w: username %q is taken", ErrInvalidInput, u.Username)
		}
		return nil, fmt.Errorf("creating user: %w", err)
	}
	return u, nil
}

// Login verifies credentials and issues a bearer token. Accounts whose
// stored password predates hashing are verified in constant time and
// upgraded to bcrypt on the spot.
func (s *Service) Login(ctx context.Context, username, password string) (*User, string, error) {
	u, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, repoerr.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("loading user: %w", err)
	}

	if strings.HasPrefix(u.Password, "$2") {
		if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) != nil {
			return nil, "", ErrInvalidCredentials
		}
	} else {
		if subtle.ConstantTimeCompare([]byte(u.Password), []byte(password)) != 1 {
			return nil, "", ErrInvalidCredentials
		}
		s.upgradePassword(ctx, u, password)
	}

	token, err := s.issueToken(ctx, u.ID)
	if err != nil {
		return nil, "", err
	}

	s.appendAudit(ctx, &audit.Event{
		Type:     audit.TypeUserLogin,
		UserID:   &u.ID,
		Message:  fmt.Sprintf("user %s logged in", u.Username),
		Metadata: fmt.Sprintf(`{"username":%q}`, u.Username),
	})
	return u, token, nil
}

// Logout revokes a bearer token.
func (s *Service) Logout(ctx context.Context, token string) error {
	userID, err := s.tokens.Resolve(ctx, hashToken(token))
	if err != nil {
		if errors.Is(err, repoerr.ErrNotFound) {
			return ErrInvalidToken
		}
		return fmt.Errorf("resolving token: %w", err)
	}
	if err := s.tokens.Delete(ctx, hashToken(token)); err != nil {
		return fmt.Errorf("deleting token: %w", err)
	}
	s.appendAudit(ctx, &audit.Event{
		Type:    audit.TypeUserLogout,
		UserID:  &userID,
		Message: "user logged out",
	})
	return nil
}

// Resolve maps a bearer token to its user.
func (s *Service) Resolve(ctx context.Context, token string) (*User, error) {
	hash := hashToken(token)
	userID, err := s.tokens.Resolve(ctx, hash)
	if err != nil {
		if errors.Is(err, repoerr.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("resolving token: %w", err)
	}
	u, err := s.users.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, repoerr.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("loading user: %w", err)
	}
	if err := s.tokens.Touch(ctx, hash, time.Now()); err != nil {
		s.logger.Warn("failed to touch token", "error", err)
	}
	return u, nil
}

// Get returns one user by ID.
func (s *Service) Get(ctx context.Context, id string) (*User, error) {
	u, err := s.users.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repoerr.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("loading user: %w", err)
	}
	return u, nil
}

// List returns all users.
func (s *Service) List(ctx context.Context) ([]User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	return users, nil
}

// UpdateRequest carries optional account changes. Nil fields are
// left unchanged.
type UpdateRequest struct {
	DisplayName *string
	Email       *string
	Phone       *string
	Role        *Role
	Password    *string
}

// Update applies partial changes to an account.
func (s *Service) Update(ctx context.Context, id string, req UpdateRequest) (*User, error) {
	u, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.DisplayName != nil {
		u.DisplayName = *req.DisplayName
	}
	if req.Email != nil {
		u.Email = *req.Email
	}
	if req.Phone != nil {
		u.Phone = *req.Phone
	}
	if req.Role != nil {
		if *req.Role != RoleAdmin && *req.Role != RoleTxOnly {
			return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidInput, *req.Role)
		}
		u.Role = *req.Role
	}
	if req.Password != nil {
		if *req.Password == "" {
			return nil, fmt.Errorf("%w: password cannot be empty", ErrInvalidInput)
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hashing password: %w", err)
		}
		u.Password = string(hash)
	}
	u.UpdatedAt = time.Now()

	if err := s.users.Update(ctx, u); err != nil {
		return nil, fmt.Errorf("updating user: %w", err)
	}
	return u, nil
}

func (s *Service) issueToken(ctx context.Context, userID string) (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("generating token: %w", err)
	}
	token := hex.EncodeToString(raw)
	if err := s.tokens.Insert(ctx, hashToken(token), userID, time.Now()); err != nil {
		return "", fmt.Errorf("storing token: %w", err)
	}
	return token, nil
}

func (s *Service) upgradePassword(ctx context.Context, u *User, password string) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Warn("failed to rehash password", "user_id", u.ID, "error", err)
		return
	}
	u.Password = string(hash)
	u.UpdatedAt = time.Now()
	if err := s.users.Update(ctx, u); err != nil {
		s.logger.Warn("failed to persist rehashed password", "user_id", u.ID, "error", err)
	}
}

func (s *Service) appendAudit(ctx context.Context, event *audit.Event) {
	if s.auditor == nil {
		return
	}
	if err := s.auditor.Append(ctx, event); err != nil {
		s.logger.Warn("failed to append audit event", "event_type", event.Type, "error", err)
	}
}

// hashToken derives the storage key for a bearer token. Only the hash
// is persisted, so a leaked database cannot replay sessions.
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
