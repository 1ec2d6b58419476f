package repository

import (
	"context"
	"time"

	"github.com/wessam/partnerledger/internal/domain/audit"
	"github.com/wessam/partnerledger/internal/domain/notification"
	"github.com/wessam/partnerledger/internal/domain/partner"
	"github.com/wessam/partnerledger/internal/domain/period"
	"github.com/wessam/partnerledger/internal/domain/project"
	"github.com/wessam/partnerledger/internal/domain/transaction"
	"github.com/wessam/partnerledger/internal/domain/user"
)

// ProjectRepository manages project persistence
type ProjectRepository interface {
	Create(ctx context.Context, proj *project.Project) error
	Get(ctx context.Context, id string) (*project.Project, error)
	List(ctx context.Context) ([]project.Project, error)
}

// PeriodRepository manages period persistence, including the atomic
// close-and-open sequence
type PeriodRepository interface {
	Create(ctx context.Context, p *period.Period) error
	Get(ctx context.Context, id string) (*period.Period, error)
	ListForProject(ctx context.Context, projectID string) ([]period.Period, error)
	OpenForProject(ctx context.Context, projectID string) (*period.Period, error)
	CountForProject(ctx context.Context, projectID string) (int, error)
	Close(ctx context.Context, id string, compute period.CloseFunc) (*period.CloseResult, error)
	Name(ctx context.Context, id, name string, openedAt time.Time) (*period.Period, error)
	Reset(ctx context.Context, projectID string, endDate time.Time, fresh *period.Period) error
}

// TransactionRepository manages transaction persistence
type TransactionRepository interface {
	Create(ctx context.Context, tx *transaction.Transaction) error
	Get(ctx context.Context, id string) (*transaction.Transaction, error)
	Update(ctx context.Context, tx *transaction.Transaction) error
	Delete(ctx context.Context, id string) (*transaction.Transaction, error)
	ListForPeriod(ctx context.Context, periodID string) ([]transaction.Transaction, error)
	ListForProject(ctx context.Context, projectID string) ([]transaction.Transaction, error)
}

// AuditRepository manages the append-only audit trail
type AuditRepository interface {
	Append(ctx context.Context, event *audit.Event) error
	List(ctx context.Context, opts audit.ListOptions) ([]audit.Event, error)
}

// NotificationRepository manages notification persistence
type NotificationRepository interface {
	Create(ctx context.Context, n *notification.Notification) error
	Get(ctx context.Context, id string) (*notification.Notification, error)
	ListForTransaction(ctx context.Context, transactionID string) ([]notification.Notification, error)
	List(ctx context.Context) ([]notification.Notification, error)
	Update(ctx context.Context, n *notification.Notification) error
}

// UserRepository manages user account persistence
type UserRepository interface {
	Create(ctx context.Context, u *user.User) error
	Get(ctx context.Context, id string) (*user.User, error)
	GetByUsername(ctx context.Context, username string) (*user.User, error)
	Update(ctx context.Context, u *user.User) error
	List(ctx context.Context) ([]user.User, error)
}

// TokenRepository manages hashed bearer tokens
type TokenRepository interface {
	Insert(ctx context.Context, tokenHash, userID string, createdAt time.Time) error
	Resolve(ctx context.Context, tokenHash string) (string, error)
	Touch(ctx context.Context, tokenHash string, at time.Time) error
	Delete(ctx context.Context, tokenHash string) error
}

// PartnerRepository manages partner contact profiles
type PartnerRepository interface {
	Get(ctx context.Context, id partner.ID) (*partner.Profile, error)
	List(ctx context.Context) ([]partner.Profile, error)
	Update(ctx context.Context, p *partner.Profile) error
}
