package notification

import (
	"context"

	"github.com/wessam/partnerledger/internal/domain/audit"
	"github.com/wessam/partnerledger/internal/domain/partner"
	"github.com/wessam/partnerledger/internal/domain/transaction"
)

// Repository provides persistence for notifications.
type Repository interface {
	Create(ctx context.Context, n *Notification) error
	Get(ctx context.Context, id string) (*Notification, error)
	ListForTransaction(ctx context.Context, transactionID string) ([]Notification, error)
	List(ctx context.Context) ([]Notification, error)
	Update(ctx context.Context, n *Notification) error
}

// TransactionReader loads the transaction a notification announces.
type TransactionReader interface {
	Get(ctx context.Context, id string) (*transaction.Transaction, error)
}

// PartnerDirectory lists partner contact profiles.
type PartnerDirectory interface {
	List(ctx context.Context) ([]partner.Profile, error)
}

// Auditor receives notification delivery events.
type Auditor interface {
	Append(ctx context.Context, event *audit.Event) error
}

// EmailSender delivers one email message.
type EmailSender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// WhatsAppSender delivers one WhatsApp message.
type WhatsAppSender interface {
	Send(ctx context.Context, to, body string) error
}
