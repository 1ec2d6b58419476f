package notification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/wessam/partnerledger/internal/domain/audit"
	"github.com/wessam/partnerledger/internal/domain/transaction"
	"github.com/wessam/partnerledger/internal/repository/repoerr"
)

// Service queues and dispatches transaction notifications. Delivery is
// fire-and-forget from the caller's point of view: failures are
// recorded on the notification row and in the audit trail, never
// surfaced to the transaction flow.
type Service struct {
	repo     Repository
	txs      TransactionReader
	partners PartnerDirectory
	auditor  Auditor
	email    EmailSender
	whatsapp WhatsAppSender
	logger   *slog.Logger
}

// NewService creates a new notification service. Either sender may be
// nil, in which case that channel is skipped.
func NewService(
	repo Repository,
	txs TransactionReader,
	partners PartnerDirectory,
	auditor Auditor,
	email EmailSender,
	whatsapp WhatsAppSender,
	logger *slog.Logger,
) *Service {
	return &Service{
		repo:     repo,
		txs:      txs,
		partners: partners,
		auditor:  auditor,
		email:    email,
		whatsapp: whatsapp,
		logger:   logger,
	}
}

// Enqueue records a PENDING notification for a transaction.
func (s *Service) Enqueue(ctx context.Context, transactionID string) error {
	if strings.TrimSpace(transactionID) == "" {
		return ErrInvalidInput
	}
	now := time.Now()
	n := &Notification{
		ID:            uuid.NewString(),
		TransactionID: transactionID,
		Status:        StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return fmt.Errorf("creating notification: %w", err)
	}
	return nil
}

// Dispatch attempts delivery of one notification on every channel with
// a configured sender and a recipient address, then records the result.
func (s *Service) Dispatch(ctx context.Context, id string) (*Notification, error) {
	n, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	tx, err := s.txs.Get(ctx, n.TransactionID)
	if err != nil {
		return nil, fmt.Errorf("loading transaction: %w", err)
	}
	profiles, err := s.partners.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading partner profiles: %w", err)
	}

	body := composeMessage(tx)
	var sendErrs []string
	now := time.Now()

	if s.email != nil {
		sent := false
		for _, p := range profiles {
			if p.Email == "" {
				continue
			}
			if err := s.email.Send(ctx, p.Email, "New ledger transaction", body); err != nil {
				sendErrs = append(sendErrs, fmt.Sprintf("email %s: %v", p.Email, err))
				continue
			}
			sent = true
		}
		if sent {
			n.SentEmailAt = &now
		}
	}

	if s.whatsapp != nil {
		sent := false
		for _, p := range profiles {
			if p.Phone == "" {
				continue
			}
			if err := s.whatsapp.Send(ctx, p.Phone, body); err != nil {
				sendErrs = append(sendErrs, fmt.Sprintf("whatsapp %s: %v", p.Phone, err))
				continue
			}
			sent = true
		}
		if sent {
			n.SentWhatsappAt = &now
		}
	}

	delivered := n.SentEmailAt != nil || n.SentWhatsappAt != nil
	switch {
	case len(sendErrs) > 0:
		n.Status = StatusFailed
		msg := strings.Join(sendErrs, "; ")
		n.LastError = &msg
	case !delivered:
		n.Status = StatusFailed
		msg := ErrNoRecipients.Error()
		n.LastError = &msg
	default:
		n.Status = StatusSent
		n.LastError = nil
	}
	n.UpdatedAt = now

	if err := s.repo.Update(ctx, n); err != nil {
		return nil, fmt.Errorf("updating notification: %w", err)
	}

	eventType := audit.TypeNotifSent
	message := fmt.Sprintf("notification sent for transaction %s", n.TransactionID)
	if n.Status == StatusFailed {
		eventType = audit.TypeNotifFailed
		message = fmt.Sprintf("notification failed for transaction %s: %s", n.TransactionID, *n.LastError)
	}
	s.appendAudit(ctx, &audit.Event{
		ProjectID:     &tx.ProjectID,
		PeriodID:      &tx.PeriodID,
		TransactionID: &tx.ID,
		Type:          eventType,
		Message:       message,
	})

	return n, nil
}

// DispatchAsync dispatches in the background and only logs failures.
func (s *Service) DispatchAsync(id string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if _, err := s.Dispatch(ctx, id); err != nil && s.logger != nil {
			s.logger.Warn("notification dispatch failed", "notification", id, "error", err)
		}
	}()
}

// DispatchPendingForTransaction dispatches every PENDING notification
// of a transaction in the background.
func (s *Service) DispatchPendingForTransaction(ctx context.Context, transactionID string) error {
	list, err := s.repo.ListForTransaction(ctx, transactionID)
	if err != nil {
		return fmt.Errorf("listing notifications: %w", err)
	}
	for _, n := range list {
		if n.Status == StatusPending {
			s.DispatchAsync(n.ID)
		}
	}
	return nil
}

// Get fetches a notification by ID.
func (s *Service) Get(ctx context.Context, id string) (*Notification, error) {
	n, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repoerr.ErrNotFound) {
			return nil, ErrNotificationNotFound
		}
		return nil, fmt.Errorf("getting notification: %w", err)
	}
	return n, nil
}

// List returns all notifications, newest first.
func (s *Service) List(ctx context.Context) ([]Notification, error) {
	return s.repo.List(ctx)
}

func composeMessage(tx *transaction.Transaction) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", tx.Type, tx.Description)
	fmt.Fprintf(&b, "\nAmount: %s", tx.Amount.StringFixed(2))
	fmt.Fprintf(&b, "\nDate: %s", tx.Date.Format("2006-01-02"))
	switch {
	case tx.PaidBy != nil:
		fmt.Fprintf(&b, "\nPaid by: %s", *tx.PaidBy)
	case tx.FromPartner != nil && tx.ToPartner != nil:
		fmt.Fprintf(&b, "\nSettlement: %s -> %s", *tx.FromPartner, *tx.ToPartner)
	}
	return b.String()
}

func (s *Service) appendAudit(ctx context.Context, event *audit.Event) {
	if s.auditor == nil {
		return
	}
	if err := s.auditor.Append(ctx, event); err != nil && s.logger != nil {
		s.logger.Warn("audit append failed", "type", event.Type, "error", err)
	}
}
