package transaction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wessam/partnerledger/internal/domain/audit"
	"github.com/wessam/partnerledger/internal/domain/partner"
	"github.com/wessam/partnerledger/internal/repository/repoerr"
)

// Service handles transaction business logic.
type Service struct {
	txs     Repository
	auditor Auditor
	queue   NotificationQueue
	logger  *slog.Logger
}

// NewService creates a new transaction service.
func NewService(txs Repository, auditor Auditor, queue NotificationQueue, logger *slog.Logger) *Service {
	return &Service{txs: txs, auditor: auditor, queue: queue, logger: logger}
}

// CreateRequest describes a transaction creation request.
type CreateRequest struct {
	PeriodID    string
	Type        Type
	Date        time.Time
	Description string
	Amount      decimal.Decimal
	PaidBy      *partner.ID
	FromPartner *partner.ID
	ToPartner   *partner.ID
	CreatedBy   *string
}

// UpdateRequest describes a partial transaction update.
type UpdateRequest struct {
	ID          string
	Type        *Type
	Date        *time.Time
	Description *string
	Amount      *decimal.Decimal
	PaidBy      *partner.ID
	FromPartner *partner.ID
	ToPartner   *partner.ID
}

// Create validates and records a transaction in its period, emits a
// TX_CREATED audit event and queues a pending notification.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Transaction, error) {
	if strings.TrimSpace(req.PeriodID) == "" {
		return nil, &ValidationError{Field: "period_id", Reason: "is required"}
	}

	now := time.Now()
	tx := &Transaction{
		ID:          uuid.NewString(),
		PeriodID:    req.PeriodID,
		Type:        req.Type,
		Date:        req.Date,
		Description: req.Description,
		Amount:      req.Amount,
		PaidBy:      req.PaidBy,
		FromPartner: req.FromPartner,
		ToPartner:   req.ToPartner,
		CreatedBy:   req.CreatedBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := Validate(tx); err != nil {
		return nil, err
	}

	if err := s.txs.Create(ctx, tx); err != nil {
		if errors.Is(err, repoerr.ErrNotFound) {
			return nil, &ValidationError{Field: "period_id", Reason: "names an unknown period"}
		}
		return nil, err
	}

	s.appendAudit(ctx, &audit.Event{
		ProjectID:     &tx.ProjectID,
		PeriodID:      &tx.PeriodID,
		TransactionID: &tx.ID,
		UserID:        tx.CreatedBy,
		Type:          audit.TypeTxCreated,
		Message:       fmt.Sprintf("transaction created: %s", tx.Description),
	})

	if s.queue != nil {
		if err := s.queue.Enqueue(ctx, tx.ID); err != nil && s.logger != nil {
			s.logger.Warn("queueing notification failed", "transaction", tx.ID, "error", err)
		}
	}

	return tx, nil
}

// Update applies a partial update to a transaction whose period is
// still ACTIVE.
func (s *Service) Update(ctx context.Context, req UpdateRequest) (*Transaction, error) {
	tx, err := s.Get(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	if req.Type != nil {
		tx.Type = *req.Type
	}
	if req.Date != nil {
		tx.Date = *req.Date
	}
	if req.Description != nil {
		tx.Description = *req.Description
	}
	if req.Amount != nil {
		tx.Amount = *req.Amount
	}
	if req.PaidBy != nil {
		tx.PaidBy = req.PaidBy
	}
	if req.FromPartner != nil {
		tx.FromPartner = req.FromPartner
	}
	if req.ToPartner != nil {
		tx.ToPartner = req.ToPartner
	}
	tx.UpdatedAt = time.Now()

	if err := Validate(tx); err != nil {
		return nil, err
	}
	if err := s.txs.Update(ctx, tx); err != nil {
		if errors.Is(err, repoerr.ErrNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}

	s.appendAudit(ctx, &audit.Event{
		ProjectID:     &tx.ProjectID,
		PeriodID:      &tx.PeriodID,
		TransactionID: &tx.ID,
		UserID:        tx.CreatedBy,
		Type:          audit.TypeTxUpdated,
		Message:       fmt.Sprintf("transaction updated: %s", tx.Description),
	})

	return tx, nil
}

// Delete removes a transaction whose period is still ACTIVE.
func (s *Service) Delete(ctx context.Context, id string) error {
	deleted, err := s.txs.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, repoerr.ErrNotFound) {
			return ErrTransactionNotFound
		}
		return err
	}

	s.appendAudit(ctx, &audit.Event{
		ProjectID:     &deleted.ProjectID,
		PeriodID:      &deleted.PeriodID,
		TransactionID: &deleted.ID,
		UserID:        deleted.CreatedBy,
		Type:          audit.TypeTxDeleted,
		Message:       fmt.Sprintf("transaction deleted: %s", deleted.Description),
	})

	return nil
}

// Get fetches a transaction by ID.
func (s *Service) Get(ctx context.Context, id string) (*Transaction, error) {
	tx, err := s.txs.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repoerr.ErrNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("getting transaction: %w", err)
	}
	return tx, nil
}

// ListForPeriod returns all transactions of a period in date order.
func (s *Service) ListForPeriod(ctx context.Context, periodID string) ([]Transaction, error) {
	return s.txs.ListForPeriod(ctx, periodID)
}

// ListForProject returns all transactions of a project in date order.
func (s *Service) ListForProject(ctx context.Context, projectID string) ([]Transaction, error) {
	return s.txs.ListForProject(ctx, projectID)
}

func (s *Service) appendAudit(ctx context.Context, event *audit.Event) {
	if s.auditor == nil {
		return
	}
	if err := s.auditor.Append(ctx, event); err != nil && s.logger != nil {
		s.logger.Warn("audit append failed", "type", event.Type, "error", err)
	}
}
