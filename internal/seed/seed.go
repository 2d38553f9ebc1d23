package seed

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// UserEnsurer creates an account unless one already exists for the email
type UserEnsurer interface {
	EnsureUser(ctx context.Context, email, password string) (bool, error)
}

// CreateDefaultAdmin makes sure the configured operator account exists so a
// fresh install can be signed into. Empty credentials skip seeding.
func CreateDefaultAdmin(ctx context.Context, users UserEnsurer, email, password string, lgr zerolog.Logger) error {
	if email == "" || password == "" {
		lgr.Debug().Msg("No seed admin configured, skipping")
		return nil
	}

	lgr.Info().Str("email", email).Msg("Checking/Creating default admin account...")
	created, err := users.EnsureUser(ctx, email, password)
	if err != nil {
		lgr.Error().Err(err).Str("email", email).Msg("Error creating default admin")
		return fmt.Errorf("failed to seed admin %s: %w", email, err)
	}

	if created {
		lgr.Info().Str("email", email).Msg("Default admin account created")
	} else {
		lgr.Info().Str("email", email).Msg("Default admin account already exists")
	}
	return nil
}
