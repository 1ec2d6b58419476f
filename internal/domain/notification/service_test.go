package notification_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/wessam/partnerledger/internal/domain/audit"
	"github.com/wessam/partnerledger/internal/domain/notification"
	"github.com/wessam/partnerledger/internal/domain/partner"
	"github.com/wessam/partnerledger/internal/domain/transaction"
	"github.com/wessam/partnerledger/internal/repository/mocks"
)

func pendingNotification() *notification.Notification {
	now := time.Now()
	return &notification.Notification{
		ID:            "n1",
		TransactionID: "tx1",
		Status:        notification.StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func announcedTransaction() *transaction.Transaction {
	paidBy := partner.P1
	return &transaction.Transaction{
		ID:          "tx1",
		ProjectID:   "proj1",
		PeriodID:    "p1",
		Type:        transaction.TypeExpense,
		Date:        time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
		Description: "materials",
		Amount:      decimal.RequireFromString("120.50"),
		PaidBy:      &paidBy,
	}
}

func bothPartners() []partner.Profile {
	return []partner.Profile{
		{ID: partner.P1, DisplayName: "Partner 1", Phone: "+201000000001", Email: "p1@example.com"},
		{ID: partner.P2, DisplayName: "Partner 2", Phone: "+201000000002", Email: "p2@example.com"},
	}
}

func TestNotificationService_EnqueueCreatesPending(t *testing.T) {
	ctx := context.Background()

	repo := &mocks.NotificationRepository{}
	repo.On("Create", ctx, mock.MatchedBy(func(n *notification.Notification) bool {
		return n.TransactionID == "tx1" && n.Status == notification.StatusPending
	})).Return(nil)

	svc := notification.NewService(repo, nil, nil, nil, nil, nil, nil)
	require.NoError(t, svc.Enqueue(ctx, "tx1"))
	repo.AssertExpectations(t)
}

func TestNotificationService_DispatchAllChannels(t *testing.T) {
	ctx := context.Background()

	repo := &mocks.NotificationRepository{}
	repo.On("Get", ctx, "n1").Return(pendingNotification(), nil)
	repo.On("Update", ctx, mock.MatchedBy(func(n *notification.Notification) bool {
		return n.Status == notification.StatusSent &&
			n.SentEmailAt != nil &&
			n.SentWhatsappAt != nil &&
			n.LastError == nil
	})).Return(nil)

	txs := &mocks.TransactionRepository{}
	txs.On("Get", ctx, "tx1").Return(announcedTransaction(), nil)

	partners := &mocks.PartnerRepository{}
	partners.On("List", ctx).Return(bothPartners(), nil)

	email := &mocks.EmailSender{}
	email.On("Send", ctx, "p1@example.com", mock.Anything, mock.Anything).Return(nil)
	email.On("Send", ctx, "p2@example.com", mock.Anything, mock.Anything).Return(nil)

	whatsapp := &mocks.WhatsAppSender{}
	whatsapp.On("Send", ctx, "+201000000001", mock.Anything).Return(nil)
	whatsapp.On("Send", ctx, "+201000000002", mock.Anything).Return(nil)

	auditor := &mocks.AuditRepository{}
	auditor.On("Append", ctx, mock.MatchedBy(func(e *audit.Event) bool {
		return e.Type == audit.TypeNotifSent
	})).Return(nil).Once()

	svc := notification.NewService(repo, txs, partners, auditor, email, whatsapp, nil)
	n, err := svc.Dispatch(ctx, "n1")
	require.NoError(t, err)
	require.Equal(t, notification.StatusSent, n.Status)
	email.AssertExpectations(t)
	whatsapp.AssertExpectations(t)
	auditor.AssertExpectations(t)
}

func TestNotificationService_DispatchRecordsFailure(t *testing.T) {
	ctx := context.Background()

	repo := &mocks.NotificationRepository{}
	repo.On("Get", ctx, "n1").Return(pendingNotification(), nil)
	repo.On("Update", ctx, mock.MatchedBy(func(n *notification.Notification) bool {
		return n.Status == notification.StatusFailed && n.LastError != nil
	})).Return(nil)

	txs := &mocks.TransactionRepository{}
	txs.On("Get", ctx, "tx1").Return(announcedTransaction(), nil)

	partners := &mocks.PartnerRepository{}
	partners.On("List", ctx).Return(bothPartners(), nil)

	email := &mocks.EmailSender{}
	email.On("Send", ctx, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("relay down"))

	auditor := &mocks.AuditRepository{}
	auditor.On("Append", ctx, mock.MatchedBy(func(e *audit.Event) bool {
		return e.Type == audit.TypeNotifFailed
	})).Return(nil).Once()

	svc := notification.NewService(repo, txs, partners, auditor, email, nil, nil)
	n, err := svc.Dispatch(ctx, "n1")
	require.NoError(t, err)
	require.Equal(t, notification.StatusFailed, n.Status)
	require.Contains(t, *n.LastError, "relay down")
	auditor.AssertExpectations(t)
}

func TestNotificationService_DispatchNoRecipients(t *testing.T) {
	ctx := context.Background()

	repo := &mocks.NotificationRepository{}
	repo.On("Get", ctx, "n1").Return(pendingNotification(), nil)
	repo.On("Update", ctx, mock.MatchedBy(func(n *notification.Notification) bool {
		return n.Status == notification.StatusFailed
	})).Return(nil)

	txs := &mocks.TransactionRepository{}
	txs.On("Get", ctx, "tx1").Return(announcedTransaction(), nil)

	// Profiles without any contact details.
	partners := &mocks.PartnerRepository{}
	partners.On("List", ctx).Return([]partner.Profile{
		{ID: partner.P1, DisplayName: "Partner 1"},
		{ID: partner.P2, DisplayName: "Partner 2"},
	}, nil)

	auditor := &mocks.AuditRepository{}
	auditor.On("Append", ctx, mock.Anything).Return(nil)

	email := &mocks.EmailSender{}
	svc := notification.NewService(repo, txs, partners, auditor, email, nil, nil)
	n, err := svc.Dispatch(ctx, "n1")
	require.NoError(t, err)
	require.Equal(t, notification.StatusFailed, n.Status)
	require.Contains(t, *n.LastError, "no recipients")
	email.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestNotificationService_PartialFailureStillFails(t *testing.T) {
	ctx := context.Background()

	repo := &mocks.NotificationRepository{}
	repo.On("Get", ctx, "n1").Return(pendingNotification(), nil)
	repo.On("Update", ctx, mock.MatchedBy(func(n *notification.Notification) bool {
		// One email went out but the other failed: the timestamp is
		// set, the status is still FAILED.
		return n.Status == notification.StatusFailed && n.SentEmailAt != nil
	})).Return(nil)

	txs := &mocks.TransactionRepository{}
	txs.On("Get", ctx, "tx1").Return(announcedTransaction(), nil)

	partners := &mocks.PartnerRepository{}
	partners.On("List", ctx).Return(bothPartners(), nil)

	email := &mocks.EmailSender{}
	email.On("Send", ctx, "p1@example.com", mock.Anything, mock.Anything).Return(nil)
	email.On("Send", ctx, "p2@example.com", mock.Anything, mock.Anything).Return(errors.New("mailbox full"))

	auditor := &mocks.AuditRepository{}
	auditor.On("Append", ctx, mock.Anything).Return(nil)

	svc := notification.NewService(repo, txs, partners, auditor, email, nil, nil)
	n, err := svc.Dispatch(ctx, "n1")
	require.NoError(t, err)
	require.Equal(t, notification.StatusFailed, n.Status)
}
