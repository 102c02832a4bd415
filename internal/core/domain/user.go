package domain

import "time"

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User is an account issued by the authentication collaborator. The rest of
// the core only ever sees its ID.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email,omitempty"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
