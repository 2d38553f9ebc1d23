package server

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/studentdesk/internal/app/services"
)

// SessionCleaner deletes sessions that can no longer be used
type SessionCleaner interface {
	CleanupSessions(ctx context.Context) (int64, error)
}

// runSessionJanitor sweeps dead sessions every interval until ctx is done.
func runSessionJanitor(ctx context.Context, cleaner SessionCleaner, interval time.Duration, lgr zerolog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := cleaner.CleanupSessions(ctx)
			if err != nil {
				lgr.Error().Err(err).Msg("Session cleanup failed")
				continue
			}
			if removed > 0 {
				lgr.Info().Int64("removed", removed).Msg("Expired sessions cleaned up")
			}
		}
	}
}

// auditSessions logs every sign in and sign out until the stream closes.
func auditSessions(events <-chan services.SessionEvent, lgr zerolog.Logger) {
	for event := range events {
		lgr.Info().
			Str("event", string(event.Kind)).
			Int64("userId", event.Session.UserID).
			Str("email", event.Session.Email).
			Str("sessionId", event.Session.ID).
			Time("at", event.At).
			Msg("Session event")
	}
}
