package storage

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/sensorplan/engine/internal/config"
	"github.com/sensorplan/engine/internal/storage/memory"
	"github.com/sensorplan/engine/internal/storage/postgres"
	sqlitestorage "github.com/sensorplan/engine/internal/storage/sqlite"
	"github.com/sensorplan/engine/pkg/core"
)

// SensorQuerier is implemented by backends that index sensor rows.
type SensorQuerier interface {
	LayoutsWithSensorType(t core.SensorType) ([]core.LayoutSummary, error)
	LayoutSensors(nameOrID string) ([]core.Sensor, error)
}

// NewBackend creates a storage backend based on configuration
func NewBackend(cfg config.StorageConfig, log zerolog.Logger) (Backend, error) {
	switch cfg.Type {
	case "postgres":
		return postgres.New(postgres.Dependencies{
			Config: cfg.Postgres,
			Logger: log,
		}), nil
	case "sqlite":
		return sqlitestorage.New(cfg.SQLite, log)
	case "auto":
		return NewAutoBackend(cfg, log), nil
	case "memory", "":
		return memory.New(cfg.Memory), nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}
