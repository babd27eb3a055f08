// Package sqlitestorage implements the storage.Backend interface using a
// SQLite database file. It wraps the GORM backend via composition; the only
// SQLite-specific concerns are opening the file with its pragmas and closing
// the connection pool.
package sqlitestorage

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/sensorplan/engine/internal/config"
	"github.com/sensorplan/engine/internal/database"
	gormstorage "github.com/sensorplan/engine/internal/storage/gorm"

	"gorm.io/gorm"
)

// Backend wraps the GORM backend for SQLite-specific behavior.
type Backend struct {
	*gormstorage.Backend
	db  *gorm.DB
	cfg config.SQLiteConfig
	log zerolog.Logger
}

// New opens the SQLite database at cfg.Path. An empty path opens a private
// in-memory database.
func New(cfg config.SQLiteConfig, log zerolog.Logger) (*Backend, error) {
	db, err := database.GetSqliteDB(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite DB: %w", err)
	}

	gormBackend := gormstorage.New(gormstorage.Dependencies{
		DB:     db,
		Logger: log,
	})

	return &Backend{
		Backend: gormBackend,
		db:      db,
		cfg:     cfg,
		log:     log,
	}, nil
}

// Init migrates the schema.
func (b *Backend) Init() error {
	if err := b.Backend.Init(); err != nil {
		return err
	}
	if b.cfg.Path != "" {
		b.log.Info().Str("path", b.cfg.Path).Msg("Using local SQLite DB")
	}
	return nil
}

// Close closes the embedded GORM backend and the connection pool.
func (b *Backend) Close() error {
	if err := b.Backend.Close(); err != nil {
		return err
	}
	sqlDB, err := b.db.DB()
	if err != nil {
		return fmt.Errorf("failed to access sql interface: %w", err)
	}
	return sqlDB.Close()
}
