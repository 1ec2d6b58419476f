package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/wessam/partnerledger/internal/domain/notification"
	"github.com/wessam/partnerledger/internal/repository"
)

// NotificationRepository implements repository.NotificationRepository
// for SQLite
type NotificationRepository struct {
	db *DB
}

// NewNotificationRepository creates a new NotificationRepository
func NewNotificationRepository(db *DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

const notificationColumns = `
	id, transaction_id, status, last_error,
	sent_email_at, sent_whatsapp_at, created_at, updated_at
`

func scanNotification(scan func(dest ...any) error) (*notification.Notification, error) {
	var (
		n              notification.Notification
		lastError      sql.NullString
		sentEmailAt    sql.NullTime
		sentWhatsappAt sql.NullTime
	)

	err := scan(
		&n.ID,
		&n.TransactionID,
		&n.Status,
		&lastError,
		&sentEmailAt,
		&sentWhatsappAt,
		&n.CreatedAt,
		&n.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	n.LastError = stringFromNull(lastError)
	n.SentEmailAt = timeFromNull(sentEmailAt)
	n.SentWhatsappAt = timeFromNull(sentWhatsappAt)

	return &n, nil
}

// Create inserts a new notification
func (r *NotificationRepository) Create(ctx context.Context, n *notification.Notification) error {
	query := `
		INSERT INTO notifications (` + notificationColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		n.ID,
		n.TransactionID,
		n.Status,
		stringArg(n.LastError),
		timeArg(n.SentEmailAt),
		timeArg(n.SentWhatsappAt),
		n.CreatedAt,
		n.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return repository.ErrNotFound
		}
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

// Get retrieves a notification by ID
func (r *NotificationRepository) Get(ctx context.Context, id string) (*notification.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE id = ?`

	row := r.db.QueryRowContext(ctx, query, id)
	n, err := scanNotification(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get notification: %w", err)
	}
	return n, nil
}

// ListForTransaction returns the notifications of one transaction
func (r *NotificationRepository) ListForTransaction(ctx context.Context, transactionID string) ([]notification.Notification, error) {
	query := `
		SELECT ` + notificationColumns + `
		FROM notifications
		WHERE transaction_id = ?
		ORDER BY created_at ASC
	`
	return r.list(ctx, query, transactionID)
}

// List returns all notifications, newest first
func (r *NotificationRepository) List(ctx context.Context) ([]notification.Notification, error) {
	query := `
		SELECT ` + notificationColumns + `
		FROM notifications
		ORDER BY created_at DESC
	`
	return r.list(ctx, query)
}

func (r *NotificationRepository) list(ctx context.Context, query string, args ...any) ([]notification.Notification, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []notification.Notification
	for rows.Next() {
		n, err := scanNotification(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, *n)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notification rows: %w", err)
	}

	return notifications, nil
}

// Update rewrites a notification's delivery state
func (r *NotificationRepository) Update(ctx context.Context, n *notification.Notification) error {
	query := `
		UPDATE notifications
		SET status = ?, last_error = ?, sent_email_at = ?,
		    sent_whatsapp_at = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		n.Status,
		stringArg(n.LastError),
		timeArg(n.SentEmailAt),
		timeArg(n.SentWhatsappAt),
		n.UpdatedAt,
		n.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update notification: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}
