package user

import "time"

// Role gates route access. ADMIN may close, name and reset periods and
// manage users and partners; TX_ONLY may only work with transactions.
type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RoleTxOnly Role = "TX_ONLY"
)

// User is an application account.
type User struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"display_name"`
	Email       string    `json:"email,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	Role        Role      `json:"role"`
	Username    string    `json:"username"`
	Password    string    `json:"-"` // bcrypt hash; never serialized
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
