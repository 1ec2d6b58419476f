package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/wessam/partnerledger/internal/domain/period"
	"github.com/wessam/partnerledger/internal/domain/transaction"
	"github.com/wessam/partnerledger/internal/repository"
)

// TransactionRepository implements repository.TransactionRepository for
// SQLite. Mutations re-check the owning period's status inside the same
// database transaction as the write, so the ACTIVE-only gate cannot be
// raced by a concurrent close.
type TransactionRepository struct {
	db *DB
}

// NewTransactionRepository creates a new TransactionRepository
func NewTransactionRepository(db *DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

const transactionColumns = `
	id, project_id, period_id, type, date, description, amount,
	paid_by, from_partner, to_partner, created_by, created_at, updated_at
`

func scanTransaction(scan func(dest ...any) error) (*transaction.Transaction, error) {
	var (
		tx          transaction.Transaction
		date        string
		amount      string
		paidBy      sql.NullString
		fromPartner sql.NullString
		toPartner   sql.NullString
		createdBy   sql.NullString
	)

	err := scan(
		&tx.ID,
		&tx.ProjectID,
		&tx.PeriodID,
		&tx.Type,
		&date,
		&tx.Description,
		&amount,
		&paidBy,
		&fromPartner,
		&toPartner,
		&createdBy,
		&tx.CreatedAt,
		&tx.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if tx.Date, err = parseDate(date); err != nil {
		return nil, err
	}
	if tx.Amount, err = parseDecimal(amount); err != nil {
		return nil, err
	}
	tx.PaidBy = partnerFromNull(paidBy)
	tx.FromPartner = partnerFromNull(fromPartner)
	tx.ToPartner = partnerFromNull(toPartner)
	tx.CreatedBy = stringFromNull(createdBy)

	return &tx, nil
}

func listTransactionsForPeriod(ctx context.Context, q querier, periodID string) ([]transaction.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE period_id = ?
		ORDER BY date ASC, created_at ASC
	`

	rows, err := q.QueryContext(ctx, query, periodID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var txs []transaction.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txs = append(txs, *tx)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction rows: %w", err)
	}

	return txs, nil
}

// periodGate loads the owning period's project and status and rejects
// the mutation unless the period is ACTIVE.
func periodGate(ctx context.Context, q querier, periodID string) (projectID string, err error) {
	var status period.Status
	row := q.QueryRowContext(ctx,
		`SELECT project_id, status FROM periods WHERE id = ?`, periodID)
	if err := row.Scan(&projectID, &status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", repository.ErrNotFound
		}
		return "", fmt.Errorf("failed to check period status: %w", err)
	}
	if status != period.StatusActive {
		return "", &period.StatusError{PeriodID: periodID, Expected: period.StatusActive, Actual: status}
	}
	return projectID, nil
}

// Create inserts a transaction after resolving its project from the
// owning period and verifying the period is ACTIVE
func (r *TransactionRepository) Create(ctx context.Context, tx *transaction.Transaction) error {
	dbtx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer dbtx.Rollback()

	projectID, err := periodGate(ctx, dbtx, tx.PeriodID)
	if err != nil {
		return err
	}
	tx.ProjectID = projectID

	query := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = dbtx.ExecContext(ctx, query,
		tx.ID,
		tx.ProjectID,
		tx.PeriodID,
		tx.Type,
		formatDate(tx.Date),
		tx.Description,
		tx.Amount.String(),
		partnerArg(tx.PaidBy),
		partnerArg(tx.FromPartner),
		partnerArg(tx.ToPartner),
		stringArg(tx.CreatedBy),
		tx.CreatedAt,
		tx.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}

	if err = dbtx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Get retrieves a transaction by ID
func (r *TransactionRepository) Get(ctx context.Context, id string) (*transaction.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = ?`

	row := r.db.QueryRowContext(ctx, query, id)
	tx, err := scanTransaction(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return tx, nil
}

// Update rewrites a transaction's mutable fields, gated on the owning
// period being ACTIVE
func (r *TransactionRepository) Update(ctx context.Context, tx *transaction.Transaction) error {
	dbtx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer dbtx.Rollback()

	var periodID string
	row := dbtx.QueryRowContext(ctx,
		`SELECT period_id FROM transactions WHERE id = ?`, tx.ID)
	if err := row.Scan(&periodID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return repository.ErrNotFound
		}
		return fmt.Errorf("failed to load transaction: %w", err)
	}

	if _, err := periodGate(ctx, dbtx, periodID); err != nil {
		return err
	}

	query := `
		UPDATE transactions
		SET type = ?, date = ?, description = ?, amount = ?,
		    paid_by = ?, from_partner = ?, to_partner = ?, updated_at = ?
		WHERE id = ?
	`
	_, err = dbtx.ExecContext(ctx, query,
		tx.Type,
		formatDate(tx.Date),
		tx.Description,
		tx.Amount.String(),
		partnerArg(tx.PaidBy),
		partnerArg(tx.FromPartner),
		partnerArg(tx.ToPartner),
		tx.UpdatedAt,
		tx.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}

	if err = dbtx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Delete removes a transaction and returns the deleted row, gated on
// the owning period being ACTIVE
func (r *TransactionRepository) Delete(ctx context.Context, id string) (*transaction.Transaction, error) {
	dbtx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer dbtx.Rollback()

	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = ?`
	row := dbtx.QueryRowContext(ctx, query, id)
	tx, err := scanTransaction(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load transaction: %w", err)
	}

	if _, err := periodGate(ctx, dbtx, tx.PeriodID); err != nil {
		return nil, err
	}

	if _, err := dbtx.ExecContext(ctx,
		`DELETE FROM transactions WHERE id = ?`, id); err != nil {
		return nil, fmt.Errorf("failed to delete transaction: %w", err)
	}

	if err = dbtx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return tx, nil
}

// ListForPeriod returns all transactions of a period in date order
func (r *TransactionRepository) ListForPeriod(ctx context.Context, periodID string) ([]transaction.Transaction, error) {
	return listTransactionsForPeriod(ctx, r.db, periodID)
}

// ListForProject returns all transactions of a project in date order
func (r *TransactionRepository) ListForProject(ctx context.Context, projectID string) ([]transaction.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE project_id = ?
		ORDER BY date ASC, created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var txs []transaction.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txs = append(txs, *tx)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction rows: %w", err)
	}

	return txs, nil
}
