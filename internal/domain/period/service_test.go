package period_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/wessam/partnerledger/internal/domain/audit"
	"github.com/wessam/partnerledger/internal/domain/period"
	"github.com/wessam/partnerledger/internal/repository"
	"github.com/wessam/partnerledger/internal/repository/mocks"
)

func activePeriod(id string) *period.Period {
	now := time.Now()
	return &period.Period{
		ID:            id,
		ProjectID:     "proj1",
		Name:          "Opening Period",
		StartDate:     now,
		Status:        period.StatusActive,
		StartBalances: period.ZeroBalances(),
		OpenedAt:      now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func TestPeriodService_CloseEmitsAuditEvents(t *testing.T) {
	ctx := context.Background()

	closed := activePeriod("p1")
	closed.Status = period.StatusClosed
	end := period.Balances{P1: dec("3600"), P2: dec("-3600")}
	closed.EndBalances = &end

	successor := activePeriod("p2")
	successor.Status = period.StatusPendingName
	successor.StartBalances = end

	res := &period.CloseResult{
		Closed:    closed,
		Successor: successor,
		Computation: period.CloseComputation{
			NetProfit:   dec("3800"),
			ProfitShare: dec("1900"),
			EndBalances: end,
		},
	}

	repo := &mocks.PeriodRepository{}
	repo.On("Close", ctx, "p1", mock.Anything).Return(res, nil)

	auditor := &mocks.AuditRepository{}
	auditor.On("Append", ctx, mock.MatchedBy(func(e *audit.Event) bool {
		return e.Type == audit.TypePeriodClosed && *e.PeriodID == "p1"
	})).Return(nil).Once()
	auditor.On("Append", ctx, mock.MatchedBy(func(e *audit.Event) bool {
		return e.Type == audit.TypePeriodOpened && *e.PeriodID == "p2"
	})).Return(nil).Once()

	svc := period.NewService(repo, auditor, nil)
	got, err := svc.Close(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, res, got)
	auditor.AssertExpectations(t)
}

func TestPeriodService_CloseAlreadyClosed(t *testing.T) {
	ctx := context.Background()

	repo := &mocks.PeriodRepository{}
	repo.On("Close", ctx, "p1", mock.Anything).Return((*period.CloseResult)(nil), repository.ErrConflict)

	svc := period.NewService(repo, nil, nil)
	_, err := svc.Close(ctx, "p1")
	require.ErrorIs(t, err, period.ErrAlreadyClosed)
}

func TestPeriodService_CloseUnknownPeriod(t *testing.T) {
	ctx := context.Background()

	repo := &mocks.PeriodRepository{}
	repo.On("Close", ctx, "nope", mock.Anything).Return((*period.CloseResult)(nil), repository.ErrNotFound)

	svc := period.NewService(repo, nil, nil)
	_, err := svc.Close(ctx, "nope")
	require.ErrorIs(t, err, period.ErrPeriodNotFound)
}

func TestPeriodService_NameRejectsEmpty(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.PeriodRepository{}

	svc := period.NewService(repo, nil, nil)
	for _, name := range []string{"", "   ", "\t\n"} {
		_, err := svc.Name(ctx, "p1", name)
		require.ErrorIs(t, err, period.ErrEmptyName)
	}
	repo.AssertNotCalled(t, "Name", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPeriodService_NameRequiresPendingStatus(t *testing.T) {
	ctx := context.Background()

	repo := &mocks.PeriodRepository{}
	repo.On("Get", ctx, "p1").Return(activePeriod("p1"), nil)

	svc := period.NewService(repo, nil, nil)
	_, err := svc.Name(ctx, "p1", "Q3 2025")

	var statusErr *period.StatusError
	require.ErrorAs(t, err, &statusErr)
	require.Equal(t, period.StatusPendingName, statusErr.Expected)
	require.Equal(t, period.StatusActive, statusErr.Actual)
	repo.AssertNotCalled(t, "Name", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPeriodService_NameActivatesPending(t *testing.T) {
	ctx := context.Background()

	pending := activePeriod("p2")
	pending.Status = period.StatusPendingName
	pending.Name = ""

	named := activePeriod("p2")
	named.Name = "Q3 2025"

	repo := &mocks.PeriodRepository{}
	repo.On("Get", ctx, "p2").Return(pending, nil)
	repo.On("Name", ctx, "p2", "Q3 2025", mock.Anything).Return(named, nil)

	auditor := &mocks.AuditRepository{}
	auditor.On("Append", ctx, mock.Anything).Return(nil)

	svc := period.NewService(repo, auditor, nil)
	got, err := svc.Name(ctx, "p2", "  Q3 2025  ")
	require.NoError(t, err)
	require.Equal(t, period.StatusActive, got.Status)
	require.Equal(t, "Q3 2025", got.Name)
}

func TestPeriodService_BootstrapCreatesFirstPeriod(t *testing.T) {
	ctx := context.Background()

	repo := &mocks.PeriodRepository{}
	repo.On("CountForProject", ctx, "proj1").Return(0, nil)
	repo.On("Create", ctx, mock.MatchedBy(func(p *period.Period) bool {
		return p.ProjectID == "proj1" &&
			p.Status == period.StatusActive &&
			p.StartBalances.P1.IsZero() &&
			p.StartBalances.P2.IsZero()
	})).Return(nil)

	auditor := &mocks.AuditRepository{}
	auditor.On("Append", ctx, mock.Anything).Return(nil)

	svc := period.NewService(repo, auditor, nil)
	p, err := svc.Bootstrap(ctx, "proj1")
	require.NoError(t, err)
	require.NotEmpty(t, p.ID)
	require.Equal(t, "Opening Period", p.Name)
}

func TestPeriodService_BootstrapIsIdempotent(t *testing.T) {
	ctx := context.Background()

	existing := activePeriod("p1")

	repo := &mocks.PeriodRepository{}
	repo.On("CountForProject", ctx, "proj1").Return(2, nil)
	repo.On("OpenForProject", ctx, "proj1").Return(existing, nil)

	svc := period.NewService(repo, nil, nil)
	p, err := svc.Bootstrap(ctx, "proj1")
	require.NoError(t, err)
	require.Equal(t, existing, p)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestPeriodService_ResetOpensFreshPeriod(t *testing.T) {
	ctx := context.Background()

	repo := &mocks.PeriodRepository{}
	repo.On("Reset", ctx, "proj1", mock.Anything, mock.MatchedBy(func(p *period.Period) bool {
		return p.Status == period.StatusActive &&
			p.StartBalances.P1.IsZero() &&
			p.StartBalances.P2.IsZero()
	})).Return(nil)

	auditor := &mocks.AuditRepository{}
	auditor.On("Append", ctx, mock.Anything).Return(nil)

	svc := period.NewService(repo, auditor, nil)
	p, err := svc.Reset(ctx, "proj1")
	require.NoError(t, err)
	require.Equal(t, period.StatusActive, p.Status)
}
