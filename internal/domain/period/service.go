package period

import (
	"context"
	"encoding/json"
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

// openingPeriodName is the fixed name of a project's first period.
const openingPeriodName = "Opening Period"

// Service orchestrates period transitions: the atomic close-and-open
// sequence, naming of pending periods, first-use bootstrap, and the
// administrative reset.
type Service struct {
	periods Repository
	auditor Auditor
	logger  *slog.Logger
}

// NewService creates a new period service.
func NewService(periods Repository, auditor Auditor, logger *slog.Logger) *Service {
	return &Service{periods: periods, auditor: auditor, logger: logger}
}

// Get fetches a period by ID.
func (s *Service) Get(ctx context.Context, id string) (*Period, error) {
	p, err := s.periods.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repoerr.ErrNotFound) {
			return nil, ErrPeriodNotFound
		}
		return nil, fmt.Errorf("getting period: %w", err)
	}
	return p, nil
}

// ListForProject returns all periods of a project, newest first.
func (s *Service) ListForProject(ctx context.Context, projectID string) ([]Period, error) {
	return s.periods.ListForProject(ctx, projectID)
}

// OpenForProject returns the project's current ACTIVE or PENDING_NAME
// period.
func (s *Service) OpenForProject(ctx context.Context, projectID string) (*Period, error) {
	p, err := s.periods.OpenForProject(ctx, projectID)
	if err != nil {
		if errors.Is(err, repoerr.ErrNotFound) {
			return nil, ErrPeriodNotFound
		}
		return nil, fmt.Errorf("getting open period: %w", err)
	}
	return p, nil
}

// Close reconciles and closes an ACTIVE period, then opens its
// PENDING_NAME successor seeded with the computed ending balances.
// Aggregation, reconciliation and both writes happen inside one
// storage transaction; any failure leaves the prior state untouched.
func (s *Service) Close(ctx context.Context, periodID string) (*CloseResult, error) {
	res, err := s.periods.Close(ctx, periodID, s.computeClose)
	if err != nil {
		switch {
		case errors.Is(err, repoerr.ErrNotFound):
			return nil, ErrPeriodNotFound
		case errors.Is(err, repoerr.ErrConflict):
			return nil, ErrAlreadyClosed
		}
		return nil, err
	}

	meta, _ := json.Marshal(map[string]string{
		"p1_balance_end": res.Computation.EndBalances.P1.StringFixed(2),
		"p2_balance_end": res.Computation.EndBalances.P2.StringFixed(2),
	})
	s.appendAudit(ctx, &audit.Event{
		ProjectID: &res.Closed.ProjectID,
		PeriodID:  &res.Closed.ID,
		Type:      audit.TypePeriodClosed,
		Message:   fmt.Sprintf("period closed: %s", res.Closed.Name),
		Metadata:  string(meta),
	})
	s.appendAudit(ctx, &audit.Event{
		ProjectID: &res.Successor.ProjectID,
		PeriodID:  &res.Successor.ID,
		Type:      audit.TypePeriodOpened,
		Message:   "successor period opened, awaiting name",
	})

	return res, nil
}

func (s *Service) computeClose(p *Period, txs []transaction.Transaction) (*CloseResult, error) {
	if p.Status != StatusActive {
		return nil, &StatusError{PeriodID: p.ID, Expected: StatusActive, Actual: p.Status}
	}

	agg, err := Aggregate(txs)
	if err != nil {
		return nil, err
	}
	comp, err := Reconcile(agg, p.StartBalances)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	today := dateOnly(now)

	closed := *p
	closed.Status = StatusClosed
	closed.EndDate = &today
	end := comp.EndBalances
	closed.EndBalances = &end
	closed.ClosedAt = &now
	closed.UpdatedAt = now

	successor := &Period{
		ID:            uuid.NewString(),
		ProjectID:     p.ProjectID,
		Name:          "",
		StartDate:     today,
		Status:        StatusPendingName,
		StartBalances: comp.EndBalances,
		OpenedAt:      now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	return &CloseResult{Closed: &closed, Successor: successor, Computation: comp}, nil
}

// Name gives a PENDING_NAME period its name and activates it. This is
// the only way such a period becomes usable for transactions.
func (s *Service) Name(ctx context.Context, periodID, name string) (*Period, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}

	p, err := s.Get(ctx, periodID)
	if err != nil {
		return nil, err
	}
	if p.Status != StatusPendingName {
		return nil, &StatusError{PeriodID: p.ID, Expected: StatusPendingName, Actual: p.Status}
	}

	updated, err := s.periods.Name(ctx, periodID, name, time.Now())
	if err != nil {
		return nil, fmt.Errorf("naming period: %w", err)
	}

	s.appendAudit(ctx, &audit.Event{
		ProjectID: &updated.ProjectID,
		PeriodID:  &updated.ID,
		Type:      audit.TypePeriodOpened,
		Message:   fmt.Sprintf("period opened: %s", name),
	})

	return updated, nil
}

// Bootstrap creates a project's first period, ACTIVE with zero
// starting balances. A project that already has periods is left alone
// and its open period returned.
func (s *Service) Bootstrap(ctx context.Context, projectID string) (*Period, error) {
	count, err := s.periods.CountForProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("counting periods: %w", err)
	}
	if count > 0 {
		return s.OpenForProject(ctx, projectID)
	}

	now := time.Now()
	p := &Period{
		ID:            uuid.NewString(),
		ProjectID:     projectID,
		Name:          openingPeriodName,
		StartDate:     dateOnly(now),
		Status:        StatusActive,
		StartBalances: ZeroBalances(),
		OpenedAt:      now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.periods.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("creating opening period: %w", err)
	}

	s.appendAudit(ctx, &audit.Event{
		ProjectID: &p.ProjectID,
		PeriodID:  &p.ID,
		Type:      audit.TypePeriodOpened,
		Message:   fmt.Sprintf("period opened: %s", p.Name),
	})

	return p, nil
}

// Reset is the administrative escape hatch: it force-closes any ACTIVE
// period without reconciliation and opens a fresh ACTIVE period with
// zero balances. Balance carry-forward is bypassed on purpose; callers
// must be privileged.
func (s *Service) Reset(ctx context.Context, projectID string) (*Period, error) {
	now := time.Now()
	fresh := &Period{
		ID:            uuid.NewString(),
		ProjectID:     projectID,
		Name:          openingPeriodName,
		StartDate:     dateOnly(now),
		Status:        StatusActive,
		StartBalances: ZeroBalances(),
		OpenedAt:      now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.periods.Reset(ctx, projectID, now, fresh); err != nil {
		return nil, fmt.Errorf("resetting periods: %w", err)
	}

	s.appendAudit(ctx, &audit.Event{
		ProjectID: &fresh.ProjectID,
		PeriodID:  &fresh.ID,
		Type:      audit.TypePeriodOpened,
		Message:   "ledger reset: opening period recreated with zero balances",
	})

	return fresh, nil
}

func (s *Service) appendAudit(ctx context.Context, event *audit.Event) {
	if s.auditor == nil {
		return
	}
	if err := s.auditor.Append(ctx, event); err != nil && s.logger != nil {
		s.logger.Warn("audit append failed", "type", event.Type, "error", err)
	}
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
