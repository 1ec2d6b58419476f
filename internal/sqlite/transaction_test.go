package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/wessam/partnerledger/internal/domain/partner"
	"github.com/wessam/partnerledger/internal/domain/period"
	"github.com/wessam/partnerledger/internal/domain/transaction"
	"github.com/wessam/partnerledger/internal/repository"
)

func TestTransactionRepository_CreateResolvesProject(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	projectID := seedProject(t, db)
	active := seedActivePeriod(t, db, projectID)

	now := time.Now()
	tx := &transaction.Transaction{
		ID:          uuid.NewString(),
		PeriodID:    active.ID,
		Type:        transaction.TypeExpense,
		Date:        now,
		Description: "materials",
		Amount:      dec("120.50"),
		PaidBy:      ptr(partner.P1),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	require.NoError(t, NewTransactionRepository(db).Create(ctx, tx))
	require.Equal(t, projectID, tx.ProjectID)

	got, err := NewTransactionRepository(db).Get(ctx, tx.ID)
	require.NoError(t, err)
	require.Equal(t, projectID, got.ProjectID)
	require.True(t, got.Amount.Equal(dec("120.50")))
	require.NotNil(t, got.PaidBy)
	require.Equal(t, partner.P1, *got.PaidBy)
	require.Nil(t, got.FromPartner)
}

func TestTransactionRepository_CreateUnknownPeriod(t *testing.T) {
	db := NewTestDB(t)

	now := time.Now()
	tx := &transaction.Transaction{
		ID:          uuid.NewString(),
		PeriodID:    "nope",
		Type:        transaction.TypeExpense,
		Date:        now,
		Description: "materials",
		Amount:      dec("10"),
		PaidBy:      ptr(partner.P1),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	err := NewTransactionRepository(db).Create(context.Background(), tx)
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestTransactionRepository_MutationsGatedOnActivePeriod(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	projectID := seedProject(t, db)
	active := seedActivePeriod(t, db, projectID)

	existing := &transaction.Transaction{
		PeriodID:    active.ID,
		Type:        transaction.TypeExpense,
		Description: "materials",
		Amount:      dec("10"),
		PaidBy:      ptr(partner.P1),
	}
	seedTransaction(t, db, existing)

	// Close the period out from under the transactions.
	svc := period.NewService(NewPeriodRepository(db), nil, nil)
	_, err := svc.Close(ctx, active.ID)
	require.NoError(t, err)

	repo := NewTransactionRepository(db)

	now := time.Now()
	late := &transaction.Transaction{
		ID:          uuid.NewString(),
		PeriodID:    active.ID,
		Type:        transaction.TypeExpense,
		Date:        now,
		Description: "too late",
		Amount:      dec("5"),
		PaidBy:      ptr(partner.P1),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	var statusErr *period.StatusError
	require.ErrorAs(t, repo.Create(ctx, late), &statusErr)
	require.Equal(t, period.StatusClosed, statusErr.Actual)

	existing.Description = "edited"
	require.ErrorAs(t, repo.Update(ctx, existing), &statusErr)

	_, err = repo.Delete(ctx, existing.ID)
	require.ErrorAs(t, err, &statusErr)

	// The row survives the rejected delete.
	got, err := repo.Get(ctx, existing.ID)
	require.NoError(t, err)
	require.Equal(t, "materials", got.Description)
}

func TestTransactionRepository_DeleteReturnsRow(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	projectID := seedProject(t, db)
	active := seedActivePeriod(t, db, projectID)

	tx := &transaction.Transaction{
		PeriodID:    active.ID,
		Type:        transaction.TypeSettlement,
		Description: "true-up",
		Amount:      dec("500"),
		FromPartner: ptr(partner.P1),
		ToPartner:   ptr(partner.P2),
	}
	seedTransaction(t, db, tx)

	repo := NewTransactionRepository(db)
	deleted, err := repo.Delete(ctx, tx.ID)
	require.NoError(t, err)
	require.Equal(t, tx.ID, deleted.ID)
	require.Equal(t, partner.P2, *deleted.ToPartner)

	_, err = repo.Get(ctx, tx.ID)
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestTransactionRepository_ListForPeriodOrdersByDate(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	projectID := seedProject(t, db)
	active := seedActivePeriod(t, db, projectID)

	later := &transaction.Transaction{
		PeriodID:    active.ID,
		Type:        transaction.TypeExpense,
		Date:        time.Date(2025, 7, 15, 0, 0, 0, 0, time.UTC),
		Description: "second",
		Amount:      dec("2"),
		PaidBy:      ptr(partner.P1),
	}
	earlier := &transaction.Transaction{
		PeriodID:    active.ID,
		Type:        transaction.TypeExpense,
		Date:        time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
		Description: "first",
		Amount:      dec("1"),
		PaidBy:      ptr(partner.P2),
	}
	seedTransaction(t, db, later)
	seedTransaction(t, db, earlier)

	txs, err := NewTransactionRepository(db).ListForPeriod(ctx, active.ID)
	require.NoError(t, err)
	require.Len(t, txs, 2)
	require.Equal(t, "first", txs[0].Description)
	require.Equal(t, "second", txs[1].Description)
}
