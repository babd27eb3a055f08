// Package gormstorage implements the storage.Backend interface on top of GORM.
// Each layout is one row holding the exported document plus one row per
// sensor for queries. The SQLite and Postgres backends wrap it.
package gormstorage

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/sensorplan/engine/internal/database"
	"github.com/sensorplan/engine/internal/model"
	"github.com/sensorplan/engine/internal/model/convert"
	"github.com/sensorplan/engine/pkg/core"

	"gorm.io/gorm"
)

// ErrNotInitialized is returned by operations called before Init.
var ErrNotInitialized = errors.New("storage backend not initialized")

// Dependencies holds all dependencies for the GORM storage backend.
type Dependencies struct {
	// DB is used as is when set. Otherwise Init calls Connect.
	DB      *gorm.DB
	Connect func() (*gorm.DB, error)
	Logger  zerolog.Logger
	Now     func() time.Time
}

// Backend implements storage.Backend using GORM.
type Backend struct {
	deps    Dependencies
	db      *gorm.DB
	dbReady bool
}

// New creates a new GORM storage backend.
func New(deps Dependencies) *Backend {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Backend{
		deps: deps,
	}
}

// Init connects if needed and runs schema migration.
func (b *Backend) Init() error {
	db := b.deps.DB
	if db == nil {
		if b.deps.Connect == nil {
			return fmt.Errorf("no database configured")
		}
		var err error
		if db, err = b.deps.Connect(); err != nil {
			return err
		}
	}

	b.deps.Logger.Info().Str("dialect", db.Dialector.Name()).Msg("Migrating schema")
	if err := database.Migrate(db); err != nil {
		return fmt.Errorf("failed to setup DB: %w", err)
	}
	b.db = db
	b.dbReady = true
	return nil
}

// Close marks the backend unusable. The connection is owned by the wrapper.
func (b *Backend) Close() error {
	b.dbReady = false
	return nil
}

// DB returns the underlying connection, nil before Init.
func (b *Backend) DB() *gorm.DB {
	return b.db
}

// find looks a layout up by name, then by layout ID.
func find(tx *gorm.DB, nameOrID string) (model.Layout, error) {
	var row model.Layout
	err := tx.Where("name = ?", nameOrID).First(&row).Error
	if err == nil {
		return row, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return row, err
	}
	if id, perr := uuid.Parse(nameOrID); perr == nil {
		err = tx.Where("layout_id = ?", id).First(&row).Error
		if err == nil || !errors.Is(err, gorm.ErrRecordNotFound) {
			return row, err
		}
	}
	return row, fmt.Errorf("%w: %s", core.ErrLayoutNotFound, nameOrID)
}

// SaveLayout inserts or replaces the layout named l.Name together with its
// sensor rows.
func (b *Backend) SaveLayout(l *core.Layout) error {
	if !b.dbReady {
		return ErrNotInitialized
	}
	if strings.TrimSpace(l.Name) == "" {
		return fmt.Errorf("layout name is required")
	}

	err := b.db.Transaction(func(tx *gorm.DB) error {
		var existing model.Layout
		err := tx.Where("name = ?", l.Name).First(&existing).Error
		found := err == nil
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		saved := *l
		if found {
			saved.ID = existing.LayoutID.String()
		} else if saved.ID == "" {
			saved.ID = uuid.NewString()
		}
		if saved.SavedAt.IsZero() {
			saved.SavedAt = b.deps.Now().UTC()
		}

		row, err := convert.CoreToLayout(saved)
		if err != nil {
			return err
		}
		sensors := row.Sensors
		row.Sensors = nil

		if found {
			row.ID = existing.ID
			row.CreatedAt = existing.CreatedAt
			if err := tx.Where("layout_id = ?", existing.ID).Delete(&model.LayoutSensor{}).Error; err != nil {
				return fmt.Errorf("failed to clear sensor rows: %w", err)
			}
		}
		if err := tx.Omit("Sensors").Save(&row).Error; err != nil {
			return fmt.Errorf("failed to save layout: %w", err)
		}

		for i := range sensors {
			sensors[i].LayoutID = row.ID
		}
		if len(sensors) > 0 {
			if err := tx.Create(&sensors).Error; err != nil {
				return fmt.Errorf("failed to insert sensor rows: %w", err)
			}
		}

		l.ID = saved.ID
		l.SavedAt = saved.SavedAt
		return nil
	})
	if err != nil {
		b.deps.Logger.Error().Err(err).Str("layout", l.Name).Msg("Failed to save layout")
		return err
	}

	b.deps.Logger.Debug().Str("layout", l.Name).Str("id", l.ID).Msg("Saved layout")
	return nil
}

// LoadLayout returns the layout with the given name or ID.
func (b *Backend) LoadLayout(nameOrID string) (core.Layout, error) {
	if !b.dbReady {
		return core.Layout{}, ErrNotInitialized
	}
	row, err := find(b.db, nameOrID)
	if err != nil {
		return core.Layout{}, err
	}
	return convert.LayoutToCore(row), nil
}

// ListLayouts returns every saved layout ordered by name.
func (b *Backend) ListLayouts() ([]core.LayoutSummary, error) {
	if !b.dbReady {
		return nil, ErrNotInitialized
	}
	var rows []model.Layout
	if err := b.db.Omit("document").Order("name").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list layouts: %w", err)
	}
	out := make([]core.LayoutSummary, len(rows))
	for i, r := range rows {
		out[i] = convert.LayoutToSummary(r)
	}
	return out, nil
}

// DeleteLayout removes a layout and its sensor rows.
func (b *Backend) DeleteLayout(nameOrID string) error {
	if !b.dbReady {
		return ErrNotInitialized
	}
	return b.db.Transaction(func(tx *gorm.DB) error {
		row, err := find(tx, nameOrID)
		if err != nil {
			return err
		}
		if err := tx.Where("layout_id = ?", row.ID).Delete(&model.LayoutSensor{}).Error; err != nil {
			return fmt.Errorf("failed to delete sensor rows: %w", err)
		}
		if err := tx.Unscoped().Delete(&model.Layout{}, row.ID).Error; err != nil {
			return fmt.Errorf("failed to delete layout: %w", err)
		}
		return nil
	})
}

// LayoutSensors returns the stored sensor rows of a layout in insertion order.
func (b *Backend) LayoutSensors(nameOrID string) ([]core.Sensor, error) {
	if !b.dbReady {
		return nil, ErrNotInitialized
	}
	row, err := find(b.db, nameOrID)
	if err != nil {
		return nil, err
	}
	var rows []model.LayoutSensor
	if err := b.db.Where("layout_id = ?", row.ID).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load sensor rows: %w", err)
	}
	out := make([]core.Sensor, len(rows))
	for i, r := range rows {
		out[i] = convert.LayoutSensorToCore(r)
	}
	return out, nil
}

// LayoutsWithSensorType lists the layouts that carry at least one enabled
// sensor of type t, ordered by name.
func (b *Backend) LayoutsWithSensorType(t core.SensorType) ([]core.LayoutSummary, error) {
	if !b.dbReady {
		return nil, ErrNotInitialized
	}
	var rows []model.Layout
	sub := b.db.Model(&model.LayoutSensor{}).
		Select("layout_id").
		Where("type = ? AND enabled = ?", string(t), true)
	if err := b.db.Omit("document").Where("id IN (?)", sub).Order("name").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query layouts: %w", err)
	}
	out := make([]core.LayoutSummary, len(rows))
	for i, r := range rows {
		out[i] = convert.LayoutToSummary(r)
	}
	return out, nil
}
