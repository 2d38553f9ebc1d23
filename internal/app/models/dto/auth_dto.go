package dto

import (
	"time"

	"github.com/yigit/studentdesk/internal/app/models"
)

// LoginRequest represents login credentials
type LoginRequest struct {
	Email    string `json:"email" form:"email" binding:"required,email"`
	Password string `json:"password" form:"password" binding:"required"`
}

// RegisterRequest represents account creation data
type RegisterRequest struct {
	Email    string `json:"email" form:"email" binding:"required,email"`
	Password string `json:"password" form:"password" binding:"required,min=8"`
}

// TokenResponse represents a signed session token
type TokenResponse struct {
	AccessToken string    `json:"accessToken"`
	TokenType   string    `json:"tokenType" example:"Bearer"`
	ExpiresIn   int64     `json:"expiresIn"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// SessionResponse describes the current identity
type SessionResponse struct {
	SessionID string    `json:"sessionId"`
	UserID    int64     `json:"userId"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// NewSessionResponse maps a session model onto its response
func NewSessionResponse(s *models.Session) SessionResponse {
	return SessionResponse{
		SessionID: s.ID,
		UserID:    s.UserID,
		Email:     s.Email,
		ExpiresAt: s.ExpiresAt,
	}
}
