package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/wessam/partnerledger/internal/domain/period"
	"github.com/wessam/partnerledger/internal/repository"
)

// PeriodRepository implements repository.PeriodRepository for SQLite
type PeriodRepository struct {
	db *DB
}

// NewPeriodRepository creates a new PeriodRepository
func NewPeriodRepository(db *DB) *PeriodRepository {
	return &PeriodRepository{db: db}
}

const periodColumns = `
	id, project_id, name, start_date, end_date, status,
	p1_balance_start, p2_balance_start, p1_balance_end, p2_balance_end,
	opened_at, closed_at, created_at, updated_at
`

func scanPeriod(scan func(dest ...any) error) (*period.Period, error) {
	var (
		p         period.Period
		startDate string
		endDate   sql.NullString
		p1Start   string
		p2Start   string
		p1End     sql.NullString
		p2End     sql.NullString
		closedAt  sql.NullTime
	)

	err := scan(
		&p.ID,
		&p.ProjectID,
		&p.Name,
		&startDate,
		&endDate,
		&p.Status,
		&p1Start,
		&p2Start,
		&p1End,
		&p2End,
		&p.OpenedAt,
		&closedAt,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if p.StartDate, err = parseDate(startDate); err != nil {
		return nil, err
	}
	if endDate.Valid {
		d, err := parseDate(endDate.String)
		if err != nil {
			return nil, err
		}
		p.EndDate = &d
	}
	if p.StartBalances.P1, err = parseDecimal(p1Start); err != nil {
		return nil, err
	}
	if p.StartBalances.P2, err = parseDecimal(p2Start); err != nil {
		return nil, err
	}
	if p1End.Valid && p2End.Valid {
		var end period.Balances
		if end.P1, err = parseDecimal(p1End.String); err != nil {
			return nil, err
		}
		if end.P2, err = parseDecimal(p2End.String); err != nil {
			return nil, err
		}
		p.EndBalances = &end
	}
	p.ClosedAt = timeFromNull(closedAt)

	return &p, nil
}

func getPeriod(ctx context.Context, q querier, id string) (*period.Period, error) {
	query := `SELECT ` + periodColumns + ` FROM periods WHERE id = ?`
	row := q.QueryRowContext(ctx, query, id)
	p, err := scanPeriod(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get period: %w", err)
	}
	return p, nil
}

func insertPeriod(ctx context.Context, q querier, p *period.Period) error {
	query := `
		INSERT INTO periods (` + periodColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var endDate any
	if p.EndDate != nil {
		endDate = formatDate(*p.EndDate)
	}
	var p1End, p2End any
	if p.EndBalances != nil {
		p1End = p.EndBalances.P1.String()
		p2End = p.EndBalances.P2.String()
	}

	_, err := q.ExecContext(ctx, query,
		p.ID,
		p.ProjectID,
		p.Name,
		formatDate(p.StartDate),
		endDate,
		p.Status,
		p.StartBalances.P1.String(),
		p.StartBalances.P2.String(),
		p1End,
		p2End,
		p.OpenedAt,
		timeArg(p.ClosedAt),
		p.CreatedAt,
		p.UpdatedAt,
	)
	return err
}

// Create inserts a new period. The unique open-period index rejects a
// second ACTIVE or PENDING_NAME period for the same project.
func (r *PeriodRepository) Create(ctx context.Context, p *period.Period) error {
	if err := insertPeriod(ctx, r.db, p); err != nil {
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		if isForeignKeyViolation(err) {
			return repository.ErrForeignKeyViolation
		}
		return fmt.Errorf("failed to create period: %w", err)
	}
	return nil
}

// Get retrieves a period by ID
func (r *PeriodRepository) Get(ctx context.Context, id string) (*period.Period, error) {
	return getPeriod(ctx, r.db, id)
}

// ListForProject returns all periods of a project, newest first
func (r *PeriodRepository) ListForProject(ctx context.Context, projectID string) ([]period.Period, error) {
	query := `
		SELECT ` + periodColumns + `
		FROM periods
		WHERE project_id = ?
		ORDER BY start_date DESC, created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list periods: %w", err)
	}
	defer rows.Close()

	var periods []period.Period
	for rows.Next() {
		p, err := scanPeriod(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan period: %w", err)
		}
		periods = append(periods, *p)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating period rows: %w", err)
	}

	return periods, nil
}

// OpenForProject returns the project's single ACTIVE or PENDING_NAME
// period
func (r *PeriodRepository) OpenForProject(ctx context.Context, projectID string) (*period.Period, error) {
	query := `
		SELECT ` + periodColumns + `
		FROM periods
		WHERE project_id = ? AND status IN ('ACTIVE', 'PENDING_NAME')
	`

	row := r.db.QueryRowContext(ctx, query, projectID)
	p, err := scanPeriod(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get open period: %w", err)
	}
	return p, nil
}

// CountForProject returns the number of periods a project has
func (r *PeriodRepository) CountForProject(ctx context.Context, projectID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM periods WHERE project_id = ?`, projectID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count periods: %w", err)
	}
	return count, nil
}

// Close runs the full close sequence in one transaction: load the
// period and its transactions, invoke compute, persist the closed
// period guarded on its status, insert the successor. A compute error
// rolls everything back.
func (r *PeriodRepository) Close(ctx context.Context, id string, compute period.CloseFunc) (*period.CloseResult, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	p, err := getPeriod(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	txs, err := listTransactionsForPeriod(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	res, err := compute(p, txs)
	if err != nil {
		return nil, err
	}

	closed := res.Closed
	updateQuery := `
		UPDATE periods
		SET status = ?, end_date = ?, p1_balance_end = ?, p2_balance_end = ?,
		    closed_at = ?, updated_at = ?
		WHERE id = ? AND status = 'ACTIVE'
	`
	result, err := tx.ExecContext(ctx, updateQuery,
		closed.Status,
		formatDate(*closed.EndDate),
		closed.EndBalances.P1.String(),
		closed.EndBalances.P2.String(),
		timeArg(closed.ClosedAt),
		closed.UpdatedAt,
		closed.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to close period: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, repository.ErrConflict
	}

	if err := insertPeriod(ctx, tx, res.Successor); err != nil {
		if isUniqueViolation(err) {
			return nil, repository.ErrConflict
		}
		return nil, fmt.Errorf("failed to create successor period: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return res, nil
}

// Name sets the name and activates a PENDING_NAME period. The status
// guard makes concurrent naming attempts lose cleanly.
func (r *PeriodRepository) Name(ctx context.Context, id, name string, openedAt time.Time) (*period.Period, error) {
	query := `
		UPDATE periods
		SET name = ?, status = 'ACTIVE', opened_at = ?, updated_at = ?
		WHERE id = ? AND status = 'PENDING_NAME'
	`

	result, err := r.db.ExecContext(ctx, query, name, openedAt, openedAt, id)
	if err != nil {
		return nil, fmt.Errorf("failed to name period: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		if _, err := getPeriod(ctx, r.db, id); err != nil {
			return nil, err
		}
		return nil, repository.ErrConflict
	}

	return getPeriod(ctx, r.db, id)
}

// Reset force-closes any open period of the project and inserts fresh
// as the new opening period, in one transaction
func (r *PeriodRepository) Reset(ctx context.Context, projectID string, endDate time.Time, fresh *period.Period) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	closeQuery := `
		UPDATE periods
		SET status = 'CLOSED', end_date = ?, closed_at = ?, updated_at = ?
		WHERE project_id = ? AND status IN ('ACTIVE', 'PENDING_NAME')
	`
	if _, err := tx.ExecContext(ctx, closeQuery,
		formatDate(endDate), endDate, endDate, projectID,
	); err != nil {
		return fmt.Errorf("failed to force-close periods: %w", err)
	}

	if err := insertPeriod(ctx, tx, fresh); err != nil {
		return fmt.Errorf("failed to create fresh period: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
