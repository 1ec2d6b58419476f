package transaction_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/wessam/partnerledger/internal/domain/audit"
	"github.com/wessam/partnerledger/internal/domain/partner"
	"github.com/wessam/partnerledger/internal/domain/transaction"
	"github.com/wessam/partnerledger/internal/repository"
	"github.com/wessam/partnerledger/internal/repository/mocks"
)

type queueRecorder struct {
	enqueued []string
}

func (q *queueRecorder) Enqueue(_ context.Context, transactionID string) error {
	q.enqueued = append(q.enqueued, transactionID)
	return nil
}

func createRequest() transaction.CreateRequest {
	return transaction.CreateRequest{
		PeriodID:    "p1",
		Type:        transaction.TypeExpense,
		Date:        time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
		Description: "materials",
		Amount:      decimal.RequireFromString("120.50"),
		PaidBy:      ptr(partner.P1),
	}
}

func TestTransactionService_CreateQueuesNotification(t *testing.T) {
	ctx := context.Background()

	repo := &mocks.TransactionRepository{}
	repo.On("Create", ctx, mock.MatchedBy(func(tx *transaction.Transaction) bool {
		return tx.PeriodID == "p1" && tx.ID != ""
	})).Return(nil)

	auditor := &mocks.AuditRepository{}
	auditor.On("Append", ctx, mock.MatchedBy(func(e *audit.Event) bool {
		return e.Type == audit.TypeTxCreated
	})).Return(nil).Once()

	queue := &queueRecorder{}
	svc := transaction.NewService(repo, auditor, queue, nil)

	tx, err := svc.Create(ctx, createRequest())
	require.NoError(t, err)
	require.Equal(t, []string{tx.ID}, queue.enqueued)
	auditor.AssertExpectations(t)
}

func TestTransactionService_CreateRejectsInvalid(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.TransactionRepository{}
	svc := transaction.NewService(repo, nil, nil, nil)

	req := createRequest()
	req.Amount = decimal.Zero
	_, err := svc.Create(ctx, req)
	require.ErrorIs(t, err, transaction.ErrInvalidInput)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestTransactionService_CreateUnknownPeriod(t *testing.T) {
	ctx := context.Background()

	repo := &mocks.TransactionRepository{}
	repo.On("Create", ctx, mock.Anything).Return(repository.ErrNotFound)

	svc := transaction.NewService(repo, nil, nil, nil)
	_, err := svc.Create(ctx, createRequest())
	require.ErrorIs(t, err, transaction.ErrInvalidInput)
}

func TestTransactionService_UpdateAppliesPartialChanges(t *testing.T) {
	ctx := context.Background()

	existing := &transaction.Transaction{
		ID:          "tx1",
		ProjectID:   "proj1",
		PeriodID:    "p1",
		Type:        transaction.TypeExpense,
		Date:        time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
		Description: "materials",
		Amount:      decimal.RequireFromString("120.50"),
		PaidBy:      ptr(partner.P1),
	}

	repo := &mocks.TransactionRepository{}
	repo.On("Get", ctx, "tx1").Return(existing, nil)
	repo.On("Update", ctx, mock.MatchedBy(func(tx *transaction.Transaction) bool {
		return tx.Description == "timber" && tx.Amount.Equal(decimal.RequireFromString("99"))
	})).Return(nil)

	auditor := &mocks.AuditRepository{}
	auditor.On("Append", ctx, mock.MatchedBy(func(e *audit.Event) bool {
		return e.Type == audit.TypeTxUpdated
	})).Return(nil).Once()

	svc := transaction.NewService(repo, auditor, nil, nil)

	desc := "timber"
	amount := decimal.RequireFromString("99")
	tx, err := svc.Update(ctx, transaction.UpdateRequest{
		ID:          "tx1",
		Description: &desc,
		Amount:      &amount,
	})
	require.NoError(t, err)
	require.Equal(t, "timber", tx.Description)
	require.Equal(t, transaction.TypeExpense, tx.Type)
	auditor.AssertExpectations(t)
}

func TestTransactionService_DeleteAuditsDeletedRow(t *testing.T) {
	ctx := context.Background()

	deleted := &transaction.Transaction{
		ID:          "tx1",
		ProjectID:   "proj1",
		PeriodID:    "p1",
		Type:        transaction.TypeExpense,
		Description: "materials",
		Amount:      decimal.RequireFromString("10"),
		PaidBy:      ptr(partner.P1),
	}

	repo := &mocks.TransactionRepository{}
	repo.On("Delete", ctx, "tx1").Return(deleted, nil)

	auditor := &mocks.AuditRepository{}
	auditor.On("Append", ctx, mock.MatchedBy(func(e *audit.Event) bool {
		return e.Type == audit.TypeTxDeleted &&
			*e.TransactionID == "tx1" &&
			*e.PeriodID == "p1"
	})).Return(nil).Once()

	svc := transaction.NewService(repo, auditor, nil, nil)
	require.NoError(t, svc.Delete(ctx, "tx1"))
	auditor.AssertExpectations(t)
}

func TestTransactionService_DeleteUnknown(t *testing.T) {
	ctx := context.Background()

	repo := &mocks.TransactionRepository{}
	repo.On("Delete", ctx, "nope").Return((*transaction.Transaction)(nil), repository.ErrNotFound)

	svc := transaction.NewService(repo, nil, nil, nil)
	require.ErrorIs(t, svc.Delete(ctx, "nope"), transaction.ErrTransactionNotFound)
}
