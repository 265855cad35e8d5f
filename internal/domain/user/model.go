package user

import "time"

// Role determines which portal surfaces a user may act on.
type Role string

const (
	RoleAdmin  Role = "Admin"
	RoleWorker Role = "Worker"
	RoleClient Role = "Client"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleWorker, RoleClient:
		return true
	}
	return false
}

// User is a portal account. WeeklyCapacity is meaningful only for
// workers; it is the denominator of their utilization.
type User struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	Name           string    `json:"name"`
	Role           Role      `json:"role"`
	Company        string    `json:"company,omitempty"`
	Phone          string    `json:"phone,omitempty"`
	WeeklyCapacity float64   `json:"weekly_capacity,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}
