package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/studentdesk/internal/app/models"
	"github.com/yigit/studentdesk/internal/pkg/apperrors"
	"github.com/yigit/studentdesk/internal/pkg/dberrors"
	"github.com/yigit/studentdesk/internal/pkg/logger"
)

// ISessionRepository defines the operations on signed-in sessions
type ISessionRepository interface {
	Create(ctx context.Context, userID int64, expiresAt time.Time) (*models.Session, error)
	GetByID(ctx context.Context, id string) (*models.Session, error)
	Revoke(ctx context.Context, id string) error
	CleanupExpired(ctx context.Context, now time.Time) (int64, error)
}

// SessionRepository handles session database operations
type SessionRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewSessionRepository creates a new SessionRepository
func NewSessionRepository(db *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *SessionRepository) createQuery(userID int64, expiresAt time.Time) (string, []interface{}, error) {
	return r.sb.Insert("sessions").
		Columns("user_id", "expires_at").
		Values(userID, expiresAt).
		Suffix("RETURNING id::text, user_id, expires_at, revoked, created_at").
		ToSql()
}

func (r *SessionRepository) getQuery(id string) (string, []interface{}, error) {
	return r.sb.Select("s.id::text", "s.user_id", "u.email", "s.expires_at", "s.revoked", "s.created_at").
		From("sessions s").
		Join("users u ON u.id = s.user_id").
		Where(squirrel.Eq{"s.id": id}).
		Limit(1).
		ToSql()
}

func (r *SessionRepository) revokeQuery(id string) (string, []interface{}, error) {
	return r.sb.Update("sessions").
		Set("revoked", true).
		Where(squirrel.Eq{"id": id}).
		ToSql()
}

func (r *SessionRepository) cleanupQuery(now time.Time) (string, []interface{}, error) {
	return r.sb.Delete("sessions").
		Where(squirrel.Or{
			squirrel.Lt{"expires_at": now},
			squirrel.Eq{"revoked": true},
		}).
		ToSql()
}

// Create opens a session for the user
func (r *SessionRepository) Create(ctx context.Context, userID int64, expiresAt time.Time) (*models.Session, error) {
	sql, args, err := r.createQuery(userID, expiresAt)
	if err != nil {
		logger.Error().Err(err).Msg("Error building create session SQL")
		return nil, fmt.Errorf("failed to build create session query: %w", err)
	}

	session := &models.Session{}
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&session.ID, &session.UserID, &session.ExpiresAt, &session.Revoked, &session.CreatedAt)
	if err != nil {
		logger.Error().Err(err).Int64("userID", userID).Msg("Error executing create session query")
		return nil, fmt.Errorf("error creating session: %w", err)
	}

	return session, nil
}

// GetByID loads a session together with its owner's email. Expiry and
// revocation are left to the caller.
func (r *SessionRepository) GetByID(ctx context.Context, id string) (*models.Session, error) {
	sql, args, err := r.getQuery(id)
	if err != nil {
		logger.Error().Err(err).Msg("Error building get session SQL")
		return nil, fmt.Errorf("failed to build get session query: %w", err)
	}

	session := &models.Session{}
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&session.ID, &session.UserID, &session.Email, &session.ExpiresAt, &session.Revoked, &session.CreatedAt)
	if err != nil {
		if dberrors.IsNoRows(err) || dberrors.IsInvalidInput(err) {
			return nil, apperrors.ErrSessionNotFound
		}
		logger.Error().Err(err).Str("sessionID", id).Msg("Error scanning session row")
		return nil, fmt.Errorf("error retrieving session: %w", err)
	}

	return session, nil
}

// Revoke marks a session as signed out
func (r *SessionRepository) Revoke(ctx context.Context, id string) error {
	sql, args, err := r.revokeQuery(id)
	if err != nil {
		logger.Error().Err(err).Msg("Error building revoke session SQL")
		return fmt.Errorf("failed to build revoke session query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		if dberrors.IsInvalidInput(err) {
			return apperrors.ErrSessionNotFound
		}
		logger.Error().Err(err).Str("sessionID", id).Msg("Error executing revoke session query")
		return fmt.Errorf("error revoking session: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrSessionNotFound
	}

	return nil
}

// CleanupExpired removes expired and revoked sessions
func (r *SessionRepository) CleanupExpired(ctx context.Context, now time.Time) (int64, error) {
	sql, args, err := r.cleanupQuery(now)
	if err != nil {
		logger.Error().Err(err).Msg("Error building cleanup sessions SQL")
		return 0, fmt.Errorf("failed to build cleanup sessions query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing cleanup sessions query")
		return 0, fmt.Errorf("error cleaning up sessions: %w", err)
	}

	return cmdTag.RowsAffected(), nil
}
