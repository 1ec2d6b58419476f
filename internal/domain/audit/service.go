package audit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Service handles audit trail operations.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService creates a new audit service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Append records an audit event, filling in ID and timestamp if missing.
func (s *Service) Append(ctx context.Context, event *Event) error {
	if event == nil || event.Type == "" {
		return ErrInvalidInput
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	if err := s.repo.Append(ctx, event); err != nil {
		return fmt.Errorf("appending audit event: %w", err)
	}
	return nil
}

// List returns audit events with filtering.
func (s *Service) List(ctx context.Context, opts ListOptions) ([]Event, error) {
	return s.repo.List(ctx, opts)
}
