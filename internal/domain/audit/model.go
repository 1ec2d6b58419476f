package audit

import "time"

// EventType represents the category of an audit event
type EventType string

const (
	TypePeriodOpened EventType = "PERIOD_OPENED"
	TypePeriodClosed EventType = "PERIOD_CLOSED"
	TypeTxCreated    EventType = "TX_CREATED"
	TypeTxUpdated    EventType = "TX_UPDATED"
	TypeTxDeleted    EventType = "TX_DELETED"
	TypeNotifSent    EventType = "NOTIF_SENT"
	TypeNotifFailed  EventType = "NOTIF_FAILED"
	TypeAccessDenied EventType = "ACCESS_DENIED"
	TypeUserLogin    EventType = "USER_LOGIN"
	TypeUserLogout   EventType = "USER_LOGOUT"
)

// Event is one entry in the append-only audit trail. Events are never
// mutated or deleted.
type Event struct {
	ID            string    `json:"id"`
	ProjectID     *string   `json:"project_id,omitempty"`
	PeriodID      *string   `json:"period_id,omitempty"`
	TransactionID *string   `json:"transaction_id,omitempty"`
	UserID        *string   `json:"user_id,omitempty"`
	Type          EventType `json:"type"`
	Message       string    `json:"message"`
	Metadata      string    `json:"metadata,omitempty"` // JSON string
	CreatedAt     time.Time `json:"created_at"`
}
