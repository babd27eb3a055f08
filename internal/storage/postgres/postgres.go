// Package postgres implements the storage.Backend interface using GORM/PostgreSQL.
// It wraps the GORM backend and owns the connection setup.
package postgres

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/sensorplan/engine/internal/config"
	"github.com/sensorplan/engine/internal/database"
	gormstorage "github.com/sensorplan/engine/internal/storage/gorm"

	"gorm.io/gorm"
)

// Dependencies holds all dependencies for the Postgres storage backend.
type Dependencies struct {
	// DB skips connecting when set.
	DB     *gorm.DB
	Config config.PostgresConfig
	Logger zerolog.Logger
}

// Backend implements storage.Backend on a Postgres database.
type Backend struct {
	*gormstorage.Backend
	deps Dependencies
	db   *gorm.DB
}

// New creates a new Postgres storage backend. No connection is made until Init.
func New(deps Dependencies) *Backend {
	b := &Backend{deps: deps}
	b.Backend = gormstorage.New(gormstorage.Dependencies{
		DB:      deps.DB,
		Connect: b.connect,
		Logger:  deps.Logger,
	})
	return b
}

// connect opens and validates the Postgres connection.
func (b *Backend) connect() (*gorm.DB, error) {
	b.deps.Logger.Debug().
		Str("host", b.deps.Config.Host).
		Str("port", b.deps.Config.Port).
		Str("database", b.deps.Config.Database).
		Msg("Connecting to Postgres DB")

	db, err := database.GetPostgresDB(b.deps.Config)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access sql interface: %w", err)
	}
	if err = sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to validate connection: %w", err)
	}
	sqlDB.SetMaxOpenConns(10)
	b.db = db

	b.deps.Logger.Info().Msg("Connected to database")
	return db, nil
}

// Close closes the embedded GORM backend and, when Init opened it, the
// connection pool.
func (b *Backend) Close() error {
	if err := b.Backend.Close(); err != nil {
		return err
	}
	if b.db == nil {
		return nil
	}
	sqlDB, err := b.db.DB()
	if err != nil {
		return fmt.Errorf("failed to access sql interface: %w", err)
	}
	return sqlDB.Close()
}
