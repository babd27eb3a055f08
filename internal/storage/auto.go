package storage

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/sensorplan/engine/internal/config"
	"github.com/sensorplan/engine/internal/database"
	gormstorage "github.com/sensorplan/engine/internal/storage/gorm"

	"gorm.io/gorm"
)

// AutoBackend stores layouts in Postgres when the server answers at Init
// and in the local SQLite file otherwise.
type AutoBackend struct {
	*gormstorage.Backend
	manager *database.Manager
}

// NewAutoBackend creates the backend. No connection is made until Init.
func NewAutoBackend(cfg config.StorageConfig, log zerolog.Logger) *AutoBackend {
	m := database.NewManager(log)
	return &AutoBackend{
		manager: m,
		Backend: gormstorage.New(gormstorage.Dependencies{
			Connect: func() (*gorm.DB, error) {
				if err := m.Connect(cfg); err != nil {
					return nil, err
				}
				return m.DB, nil
			},
			Logger: log,
		}),
	}
}

// Dialect names the database chosen by Init, empty before.
func (b *AutoBackend) Dialect() string {
	return b.manager.Dialect()
}

// Fallback reports whether Init settled on SQLite.
func (b *AutoBackend) Fallback() bool {
	return b.manager.Fallback()
}

// Close closes the GORM backend and the connection pool.
func (b *AutoBackend) Close() error {
	if err := b.Backend.Close(); err != nil {
		return err
	}
	if err := b.manager.Close(); err != nil {
		return fmt.Errorf("failed to close %s connection: %w", b.manager.Dialect(), err)
	}
	return nil
}
