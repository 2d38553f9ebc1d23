package models

import (
	"time"
)

// User defines the user model based on the 'users' table
type User struct {
	ID           int64     `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

// Session is a signed-in identity. It is what the gate attaches to a request.
type Session struct {
	ID        string    `json:"id" db:"id"`
	UserID    int64     `json:"userId" db:"user_id"`
	Email     string    `json:"email" db:"email"`
	ExpiresAt time.Time `json:"expiresAt" db:"expires_at"`
	Revoked   bool      `json:"-" db:"revoked"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// Active reports whether the session may still be used at instant now
func (s *Session) Active(now time.Time) bool {
	return s != nil && !s.Revoked && now.Before(s.ExpiresAt)
}
