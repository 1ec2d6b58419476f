package notification

import "time"

// Status represents the delivery status of a notification
type Status string

const (
	StatusPending Status = "PENDING"
	StatusSent    Status = "SENT"
	StatusFailed  Status = "FAILED"
)

// Notification tracks the delivery of one transaction announcement
// across the email and WhatsApp channels.
type Notification struct {
	ID             string     `json:"id"`
	TransactionID  string     `json:"transaction_id"`
	Status         Status     `json:"status"`
	LastError      *string    `json:"last_error,omitempty"`
	SentEmailAt    *time.Time `json:"sent_email_at,omitempty"`
	SentWhatsappAt *time.Time `json:"sent_whatsapp_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}
