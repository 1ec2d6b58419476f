package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/wessam/partnerledger/internal/domain/audit"
)

// AuditRepository implements repository.AuditRepository for SQLite.
// Events are append-only; there is no update or delete path.
type AuditRepository struct {
	db *DB
}

// NewAuditRepository creates a new AuditRepository
func NewAuditRepository(db *DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// Append inserts a new audit event
func (r *AuditRepository) Append(ctx context.Context, event *audit.Event) error {
	createdAt := event.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	query := `
		INSERT INTO event_logs (
			id, project_id, period_id, transaction_id, user_id,
			type, message, metadata, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		event.ID,
		stringArg(event.ProjectID),
		stringArg(event.PeriodID),
		stringArg(event.TransactionID),
		stringArg(event.UserID),
		event.Type,
		event.Message,
		event.Metadata,
		createdAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append audit event: %w", err)
	}

	event.CreatedAt = createdAt
	return nil
}

// List returns audit events matching the given filters, newest first
func (r *AuditRepository) List(ctx context.Context, opts audit.ListOptions) ([]audit.Event, error) {
	query := `
		SELECT
			id, project_id, period_id, transaction_id, user_id,
			type, message, metadata, created_at
		FROM event_logs
	`

	args := []any{}
	conditions := []string{}

	if opts.ProjectID != "" {
		conditions = append(conditions, "project_id = ?")
		args = append(args, opts.ProjectID)
	}
	if opts.PeriodID != nil {
		conditions = append(conditions, "period_id = ?")
		args = append(args, *opts.PeriodID)
	}
	if opts.TransactionID != nil {
		conditions = append(conditions, "transaction_id = ?")
		args = append(args, *opts.TransactionID)
	}
	if opts.Type != nil {
		conditions = append(conditions, "type = ?")
		args = append(args, *opts.Type)
	}

	if len(conditions) > 0 {
		query += " WHERE " + joinConditions(conditions)
	}

	query += " ORDER BY created_at DESC"

	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}
	if opts.Offset > 0 {
		query += " OFFSET ?"
		args = append(args, opts.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit events: %w", err)
	}
	defer rows.Close()

	var events []audit.Event
	for rows.Next() {
		var event audit.Event
		var projectID, periodID, transactionID, userID, metadata sql.NullString
		if err := rows.Scan(
			&event.ID,
			&projectID,
			&periodID,
			&transactionID,
			&userID,
			&event.Type,
			&event.Message,
			&metadata,
			&event.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan audit event: %w", err)
		}
		event.ProjectID = stringFromNull(projectID)
		event.PeriodID = stringFromNull(periodID)
		event.TransactionID = stringFromNull(transactionID)
		event.UserID = stringFromNull(userID)
		if metadata.Valid {
			event.Metadata = metadata.String
		}
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating audit rows: %w", err)
	}

	return events, nil
}

func joinConditions(conditions []string) string {
	if len(conditions) == 0 {
		return ""
	}
	joined := conditions[0]
	for i := 1; i < len(conditions); i++ {
		joined += " AND " + conditions[i]
	}
	return joined
}
