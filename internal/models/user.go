package models

import "time"

type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Role      string    `json:"role"` // customer, admin
	CreatedAt time.Time `json:"created_at"`
}

// Actor is the authenticated identity performing an operation. Authentication
// itself happens upstream; every core operation receives the actor explicitly
// instead of reading ambient session state.
type Actor struct {
	UserID int64
	Role   string
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}
