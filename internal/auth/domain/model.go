package domain

import "time"

// DefaultRole is assigned to every newly registered account.
const DefaultRole = "archivist"

// User represents an archive account.
type User struct {
	ID           string    `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	Email        string    `json:"email,omitempty" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         string    `json:"role" db:"role"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// Session is the outcome of a successful login.
type Session struct {
	Token     string    `json:"-"`
	User      *User     `json:"user"`
	ExpiresAt time.Time `json:"expires_at"`
	Offline   bool      `json:"offline,omitempty"`
}
