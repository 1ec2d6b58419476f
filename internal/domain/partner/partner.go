package partner

import "time"

// ID identifies one of the two fixed business partners.
type ID string

const (
	P1 ID = "P1"
	P2 ID = "P2"
)

// All returns the complete partner set in stable order.
func All() []ID {
	return []ID{P1, P2}
}

// Valid reports whether id names a known partner.
func Valid(id ID) bool {
	return id == P1 || id == P2
}

// Other returns the counterparty of id.
func Other(id ID) ID {
	if id == P1 {
		return P2
	}
	return P1
}

// Profile holds contact details for a partner, used by the
// notification dispatcher and the profile endpoints.
type Profile struct {
	ID          ID        `json:"id"`
	DisplayName string    `json:"display_name"`
	Phone       string    `json:"phone"`
	Email       string    `json:"email,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
