package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/rs/zerolog"
	"github.com/yigit/studentdesk/internal/app/models"
	"github.com/yigit/studentdesk/internal/app/models/dto"
	"github.com/yigit/studentdesk/internal/app/repositories"
	"github.com/yigit/studentdesk/internal/pkg/apperrors"
	"github.com/yigit/studentdesk/internal/pkg/auth"
	"github.com/yigit/studentdesk/internal/pkg/validation"
)

// SessionEventKind tells a sign-in from a sign-out
type SessionEventKind string

const (
	SessionSignedIn  SessionEventKind = "signed_in"
	SessionSignedOut SessionEventKind = "signed_out"
)

// SessionEvent is published on every authentication transition
type SessionEvent struct {
	Kind    SessionEventKind
	Session models.Session
	At      time.Time
}

const subscriberBuffer = 16

// AuthService handles authentication operations
type AuthService struct {
	userRepo     repositories.IUserRepository
	sessionRepo  repositories.ISessionRepository
	jwtService   *auth.JWTService
	logger       zerolog.Logger
	hashPassword func(string) (string, error)
	now          func() time.Time

	mu          sync.RWMutex
	subscribers map[chan SessionEvent]struct{}
}

// NewAuthService creates a new AuthService
func NewAuthService(
	userRepo repositories.IUserRepository,
	sessionRepo repositories.ISessionRepository,
	jwtService *auth.JWTService,
	logger zerolog.Logger,
) *AuthService {
	return &AuthService{
		userRepo:     userRepo,
		sessionRepo:  sessionRepo,
		jwtService:   jwtService,
		logger:       logger,
		hashPassword: auth.HashPassword,
		now:          time.Now,
		subscribers:  make(map[chan SessionEvent]struct{}),
	}
}

// validateEmail validates an email address
func (s *AuthService) validateEmail(email string) error {
	if strings.TrimSpace(email) == "" {
		return fmt.Errorf("%w: email cannot be empty", apperrors.ErrInvalidEmail)
	}
	if !strings.Contains(email, "@") {
		return apperrors.ErrInvalidEmail
	}
	return nil
}

// validatePassword checks if password meets requirements
func (s *AuthService) validatePassword(password string) error {
	if len(password) < validation.PasswordMinLength {
		return fmt.Errorf("%w: password must be at least %d characters long", apperrors.ErrInvalidPassword, validation.PasswordMinLength)
	}

	hasLetter, hasDigit := false, false
	for _, char := range password {
		switch {
		case unicode.IsLetter(char):
			hasLetter = true
		case unicode.IsDigit(char):
			hasDigit = true
		}
	}
	if !hasLetter {
		return fmt.Errorf("%w: password must contain at least one letter", apperrors.ErrInvalidPassword)
	}
	if !hasDigit {
		return fmt.Errorf("%w: password must contain at least one digit", apperrors.ErrInvalidPassword)
	}

	return nil
}

// Register creates an account and signs it in
func (s *AuthService) Register(ctx context.Context, email, password string) (*dto.TokenResponse, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := s.validateEmail(email); err != nil {
		return nil, err
	}
	if err := s.validatePassword(password); err != nil {
		return nil, err
	}

	exists, err := s.userRepo.EmailExists(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("error checking if email exists: %w", err)
	}
	if exists {
		return nil, apperrors.ErrEmailAlreadyExists
	}

	hashed, err := s.hashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user, err := s.userRepo.Create(ctx, email, hashed)
	if err != nil {
		if errors.Is(err, apperrors.ErrEmailAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("user creation error: %w", err)
	}

	s.logger.Info().Int64("userID", user.ID).Msg("Account registered")
	return s.openSession(ctx, user)
}

// SignIn checks credentials and opens a session
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*dto.TokenResponse, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := s.validateEmail(email); err != nil {
		return nil, apperrors.ErrInvalidCredentials
	}
	if password == "" {
		return nil, apperrors.ErrInvalidCredentials
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("error retrieving user: %w", err)
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, apperrors.ErrInvalidCredentials
	}

	return s.openSession(ctx, user)
}

func (s *AuthService) openSession(ctx context.Context, user *models.User) (*dto.TokenResponse, error) {
	ttl := s.jwtService.SessionTTL()
	session, err := s.sessionRepo.Create(ctx, user.ID, s.now().Add(ttl))
	if err != nil {
		return nil, fmt.Errorf("session creation error: %w", err)
	}
	session.Email = user.Email

	token, err := s.jwtService.GenerateSessionToken(session.ID, user.ID, user.Email, session.ExpiresAt)
	if err != nil {
		return nil, fmt.Errorf("token generation error: %w", err)
	}

	s.publish(SessionSignedIn, *session)
	return &dto.TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(ttl.Seconds()),
		ExpiresAt:   session.ExpiresAt,
	}, nil
}

// CurrentSession resolves a token into a live session. Every failure mode
// (bad signature, expiry, revocation, unknown session) comes back as an error.
func (s *AuthService) CurrentSession(ctx context.Context, token string) (*models.Session, error) {
	claims, err := s.jwtService.ValidateToken(token)
	if err != nil {
		return nil, err
	}

	session, err := s.sessionRepo.GetByID(ctx, claims.SessionID())
	if err != nil {
		return nil, err
	}

	if session.UserID != claims.UserID {
		return nil, apperrors.ErrTokenInvalid
	}
	if session.Revoked {
		return nil, apperrors.ErrSessionRevoked
	}
	if !session.Active(s.now()) {
		return nil, apperrors.ErrTokenExpired
	}

	return session, nil
}

// SignOut revokes the session behind token. Signing out without a valid
// session is not an error.
func (s *AuthService) SignOut(ctx context.Context, token string) error {
	session, err := s.CurrentSession(ctx, token)
	if err != nil {
		s.logger.Debug().Err(err).Msg("Sign out without an active session")
		return nil
	}

	if err := s.sessionRepo.Revoke(ctx, session.ID); err != nil {
		if errors.Is(err, apperrors.ErrSessionNotFound) {
			return nil
		}
		return fmt.Errorf("error revoking session: %w", err)
	}

	session.Revoked = true
	s.publish(SessionSignedOut, *session)
	return nil
}

// Subscribe returns a stream of session events and a function that ends the
// subscription. Slow subscribers miss events rather than block sign-in.
func (s *AuthService) Subscribe() (<-chan SessionEvent, func()) {
	ch := make(chan SessionEvent, subscriberBuffer)

	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	s.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subscribers, ch)
			s.mu.Unlock()
			close(ch)
		})
	}
}

func (s *AuthService) publish(kind SessionEventKind, session models.Session) {
	event := SessionEvent{Kind: kind, Session: session, At: s.now()}

	s.mu.RLock()
	defer s.mu.RUnlock()
	for ch := range s.subscribers {
		select {
		case ch <- event:
		default:
			s.logger.Warn().Str("kind", string(kind)).Msg("Session event dropped, subscriber is full")
		}
	}
}

// CleanupSessions deletes expired and revoked sessions
func (s *AuthService) CleanupSessions(ctx context.Context) (int64, error) {
	return s.sessionRepo.CleanupExpired(ctx, s.now())
}

// EnsureUser creates the account when it does not exist yet. It is used to
// seed the initial administrator.
func (s *AuthService) EnsureUser(ctx context.Context, email, password string) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	exists, err := s.userRepo.EmailExists(ctx, email)
	if err != nil {
		return false, fmt.Errorf("error checking if email exists: %w", err)
	}
	if exists {
		return false, nil
	}

	if err := s.validatePassword(password); err != nil {
		return false, err
	}
	hashed, err := s.hashPassword(password)
	if err != nil {
		return false, fmt.Errorf("error hashing password: %w", err)
	}
	if _, err := s.userRepo.Create(ctx, email, hashed); err != nil {
		return false, err
	}
	return true, nil
}
