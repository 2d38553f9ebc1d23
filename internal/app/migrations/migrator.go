package migrations

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
	"github.com/yigit/studentdesk/internal/db"
)

const recordMigrationSQL = `INSERT INTO schema_migrations (version) VALUES ($1)`

// DB is the subset of *pgxpool.Pool the migrator needs
type DB interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Migration is one versioned SQL file
type Migration struct {
	Version string
	Name    string
}

// Migrator manages database migrations
type Migrator struct {
	db     DB
	logger zerolog.Logger
}

// NewMigrator creates a new migrator
func NewMigrator(pool DB, logger zerolog.Logger) *Migrator {
	return &Migrator{
		db:     pool,
		logger: logger.With().Str("component", "migrator").Logger(),
	}
}

// ensureMigrationTableExists creates the migration tracking table if it doesn't exist
func (m *Migrator) ensureMigrationTableExists(ctx context.Context) error {
	createTableSQL := `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		version VARCHAR(255) PRIMARY KEY,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`

	if _, err := m.db.Exec(ctx, createTableSQL); err != nil {
		return fmt.Errorf("failed to create migration tracking table: %w", err)
	}
	return nil
}

// isMigrationApplied checks if a specific migration has already been applied
func (m *Migrator) isMigrationApplied(ctx context.Context, version string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1);`
	if err := m.db.QueryRow(ctx, query, version).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check migration status: %w", err)
	}
	return exists, nil
}

// Apply runs one migration. The file and its schema_migrations row commit
// together, so a failed file leaves no trace.
func (m *Migrator) Apply(ctx context.Context, fsys fs.FS, mig Migration) error {
	applied, err := m.isMigrationApplied(ctx, mig.Version)
	if err != nil {
		return err
	}
	if applied {
		m.logger.Debug().Str("migration", mig.Name).Msg("Migration already applied, skipping")
		return nil
	}

	content, err := fs.ReadFile(fsys, mig.Name)
	if err != nil {
		return fmt.Errorf("failed to read migration file: %w", err)
	}

	err = db.WithTransaction(ctx, m.db, func(ctx context.Context, tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, string(content)); err != nil {
			return fmt.Errorf("migration %s failed: %w", mig.Name, err)
		}
		if _, err := tx.Exec(ctx, recordMigrationSQL, mig.Version); err != nil {
			return fmt.Errorf("failed to record migration: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	m.logger.Info().Str("migration", mig.Name).Msg("Migration applied")
	return nil
}

// MigrateFS applies every pending .sql file at the root of fsys in name order.
func (m *Migrator) MigrateFS(ctx context.Context, fsys fs.FS) error {
	if err := m.ensureMigrationTableExists(ctx); err != nil {
		return err
	}

	pending, err := Discover(fsys)
	if err != nil {
		return err
	}

	for _, mig := range pending {
		if err := m.Apply(ctx, fsys, mig); err != nil {
			return err
		}
	}
	return nil
}

// MigrateFromDirectory finds and executes all SQL files in a directory
func (m *Migrator) MigrateFromDirectory(ctx context.Context, dirPath string) error {
	return m.MigrateFS(ctx, os.DirFS(dirPath))
}

// Discover lists the migrations in fsys. The version is the file name up
// to the first underscore, so "001_init.sql" is version "001".
func Discover(fsys fs.FS) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to read migration directory: %w", err)
	}

	var out []Migration
	seen := make(map[string]string)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || path.Ext(name) != ".sql" {
			continue
		}
		version := strings.SplitN(name, "_", 2)[0]
		version = strings.TrimSuffix(version, ".sql")
		if prev, dup := seen[version]; dup {
			return nil, fmt.Errorf("migrations %s and %s share version %s", prev, name, version)
		}
		seen[version] = name
		out = append(out, Migration{Version: version, Name: name})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
