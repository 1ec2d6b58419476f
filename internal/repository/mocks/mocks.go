package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/wessam/partnerledger/internal/domain/audit"
	"github.com/wessam/partnerledger/internal/domain/notification"
	"github.com/wessam/partnerledger/internal/domain/partner"
	"github.com/wessam/partnerledger/internal/domain/period"
	"github.com/wessam/partnerledger/internal/domain/project"
	"github.com/wessam/partnerledger/internal/domain/transaction"
	"github.com/wessam/partnerledger/internal/domain/user"
)

// ProjectRepository is a mock for repository.ProjectRepository.
type ProjectRepository struct {
	mock.Mock
}

func (m *ProjectRepository) Create(ctx context.Context, proj *project.Project) error {
	args := m.Called(ctx, proj)
	return args.Error(0)
}

func (m *ProjectRepository) Get(ctx context.Context, id string) (*project.Project, error) {
	args := m.Called(ctx, id)
	if proj, ok := args.Get(0).(*project.Project); ok {
		return proj, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ProjectRepository) List(ctx context.Context) ([]project.Project, error) {
	args := m.Called(ctx)
	if list, ok := args.Get(0).([]project.Project); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// PeriodRepository is a mock for repository.PeriodRepository.
type PeriodRepository struct {
	mock.Mock
}

func (m *PeriodRepository) Create(ctx context.Context, p *period.Period) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *PeriodRepository) Get(ctx context.Context, id string) (*period.Period, error) {
	args := m.Called(ctx, id)
	if p, ok := args.Get(0).(*period.Period); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *PeriodRepository) ListForProject(ctx context.Context, projectID string) ([]period.Period, error) {
	args := m.Called(ctx, projectID)
	if list, ok := args.Get(0).([]period.Period); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *PeriodRepository) OpenForProject(ctx context.Context, projectID string) (*period.Period, error) {
	args := m.Called(ctx, projectID)
	if p, ok := args.Get(0).(*period.Period); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *PeriodRepository) CountForProject(ctx context.Context, projectID string) (int, error) {
	args := m.Called(ctx, projectID)
	return args.Int(0), args.Error(1)
}

func (m *PeriodRepository) Close(ctx context.Context, id string, compute period.CloseFunc) (*period.CloseResult, error) {
	args := m.Called(ctx, id, compute)
	if res, ok := args.Get(0).(*period.CloseResult); ok {
		return res, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *PeriodRepository) Name(ctx context.Context, id, name string, openedAt time.Time) (*period.Period, error) {
	args := m.Called(ctx, id, name, openedAt)
	if p, ok := args.Get(0).(*period.Period); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *PeriodRepository) Reset(ctx context.Context, projectID string, endDate time.Time, fresh *period.Period) error {
	args := m.Called(ctx, projectID, endDate, fresh)
	return args.Error(0)
}

// TransactionRepository is a mock for repository.TransactionRepository.
type TransactionRepository struct {
	mock.Mock
}

func (m *TransactionRepository) Create(ctx context.Context, tx *transaction.Transaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *TransactionRepository) Get(ctx context.Context, id string) (*transaction.Transaction, error) {
	args := m.Called(ctx, id)
	if tx, ok := args.Get(0).(*transaction.Transaction); ok {
		return tx, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *TransactionRepository) Update(ctx context.Context, tx *transaction.Transaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *TransactionRepository) Delete(ctx context.Context, id string) (*transaction.Transaction, error) {
	args := m.Called(ctx, id)
	if tx, ok := args.Get(0).(*transaction.Transaction); ok {
		return tx, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *TransactionRepository) ListForPeriod(ctx context.Context, periodID string) ([]transaction.Transaction, error) {
	args := m.Called(ctx, periodID)
	if list, ok := args.Get(0).([]transaction.Transaction); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *TransactionRepository) ListForProject(ctx context.Context, projectID string) ([]transaction.Transaction, error) {
	args := m.Called(ctx, projectID)
	if list, ok := args.Get(0).([]transaction.Transaction); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// AuditRepository is a mock for repository.AuditRepository.
type AuditRepository struct {
	mock.Mock
}

func (m *AuditRepository) Append(ctx context.Context, event *audit.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *AuditRepository) List(ctx context.Context, opts audit.ListOptions) ([]audit.Event, error) {
	args := m.Called(ctx, opts)
	if list, ok := args.Get(0).([]audit.Event); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// NotificationRepository is a mock for repository.NotificationRepository.
type NotificationRepository struct {
	mock.Mock
}

func (m *NotificationRepository) Create(ctx context.Context, n *notification.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *NotificationRepository) Get(ctx context.Context, id string) (*notification.Notification, error) {
	args := m.Called(ctx, id)
	if n, ok := args.Get(0).(*notification.Notification); ok {
		return n, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *NotificationRepository) ListForTransaction(ctx context.Context, transactionID string) ([]notification.Notification, error) {
	args := m.Called(ctx, transactionID)
	if list, ok := args.Get(0).([]notification.Notification); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *NotificationRepository) List(ctx context.Context) ([]notification.Notification, error) {
	args := m.Called(ctx)
	if list, ok := args.Get(0).([]notification.Notification); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *NotificationRepository) Update(ctx context.Context, n *notification.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

// UserRepository is a mock for repository.UserRepository.
type UserRepository struct {
	mock.Mock
}

func (m *UserRepository) Create(ctx context.Context, u *user.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *UserRepository) Get(ctx context.Context, id string) (*user.User, error) {
	args := m.Called(ctx, id)
	if u, ok := args.Get(0).(*user.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *UserRepository) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	args := m.Called(ctx, username)
	if u, ok := args.Get(0).(*user.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *UserRepository) Update(ctx context.Context, u *user.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *UserRepository) List(ctx context.Context) ([]user.User, error) {
	args := m.Called(ctx)
	if list, ok := args.Get(0).([]user.User); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// TokenRepository is a mock for repository.TokenRepository.
type TokenRepository struct {
	mock.Mock
}

func (m *TokenRepository) Insert(ctx context.Context, tokenHash, userID string, createdAt time.Time) error {
	args := m.Called(ctx, tokenHash, userID, createdAt)
	return args.Error(0)
}

func (m *TokenRepository) Resolve(ctx context.Context, tokenHash string) (string, error) {
	args := m.Called(ctx, tokenHash)
	return args.String(0), args.Error(1)
}

func (m *TokenRepository) Touch(ctx context.Context, tokenHash string, at time.Time) error {
	args := m.Called(ctx, tokenHash, at)
	return args.Error(0)
}

func (m *TokenRepository) Delete(ctx context.Context, tokenHash string) error {
	args := m.Called(ctx, tokenHash)
	return args.Error(0)
}

// PartnerRepository is a mock for repository.PartnerRepository.
type PartnerRepository struct {
	mock.Mock
}

func (m *PartnerRepository) Get(ctx context.Context, id partner.ID) (*partner.Profile, error) {
	args := m.Called(ctx, id)
	if p, ok := args.Get(0).(*partner.Profile); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *PartnerRepository) List(ctx context.Context) ([]partner.Profile, error) {
	args := m.Called(ctx)
	if list, ok := args.Get(0).([]partner.Profile); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *PartnerRepository) Update(ctx context.Context, p *partner.Profile) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

// EmailSender is a mock for notification.EmailSender.
type EmailSender struct {
	mock.Mock
}

func (m *EmailSender) Send(ctx context.Context, to, subject, body string) error {
	args := m.Called(ctx, to, subject, body)
	return args.Error(0)
}

// WhatsAppSender is a mock for notification.WhatsAppSender.
type WhatsAppSender struct {
	mock.Mock
}

func (m *WhatsAppSender) Send(ctx context.Context, to, body string) error {
	args := m.Called(ctx, to, body)
	return args.Error(0)
}
