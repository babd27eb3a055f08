package database

import (
	"database/sql"
	"fmt"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/sensorplan/engine/internal/config"
	"github.com/sensorplan/engine/internal/model"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Dialects reported by Manager.Dialect.
const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"
)

// Manager opens the layout database for the "auto" storage type: Postgres
// when it answers, the local SQLite file otherwise.
type Manager struct {
	DB     *gorm.DB
	Logger zerolog.Logger

	sqlDB    *sql.DB
	fallback bool
}

// NewManager creates a new database manager.
func NewManager(log zerolog.Logger) *Manager {
	return &Manager{Logger: log}
}

// Connect establishes a Postgres connection, falling back to the SQLite
// file in cfg.SQLite when Postgres is unreachable.
func (m *Manager) Connect(cfg config.StorageConfig) error {
	m.Logger.Debug().
		Str("host", cfg.Postgres.Host).
		Str("port", cfg.Postgres.Port).
		Str("database", cfg.Postgres.Database).
		Msg("Connecting to Postgres DB")

	db, err := GetPostgresDB(cfg.Postgres)
	if err == nil {
		err = m.adopt(db)
		if err == nil {
			err = m.sqlDB.Ping()
		}
	}
	if err == nil {
		m.sqlDB.SetMaxOpenConns(10)
		m.fallback = false
		m.Logger.Info().Msg("Connected to Postgres DB")
		return nil
	}

	m.Logger.Warn().Err(err).Msg("Postgres unavailable, using local SQLite DB")
	if m.sqlDB != nil {
		m.sqlDB.Close()
	}
	db, err = GetSqliteDB(cfg.SQLite.Path)
	if err != nil {
		return fmt.Errorf("failed to open local SQLite DB: %w", err)
	}
	if err := m.adopt(db); err != nil {
		return err
	}
	m.fallback = true
	m.Logger.Info().Str("path", cfg.SQLite.Path).Msg("Using local SQLite DB")
	return nil
}

func (m *Manager) adopt(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to access sql interface: %w", err)
	}
	m.DB = db
	m.sqlDB = sqlDB
	return nil
}

// Dialect names the connected database, empty before Connect.
func (m *Manager) Dialect() string {
	if m.DB == nil {
		return ""
	}
	return m.DB.Dialector.Name()
}

// Fallback reports whether Connect had to use SQLite.
func (m *Manager) Fallback() bool {
	return m.fallback
}

// Close closes the underlying connection pool.
func (m *Manager) Close() error {
	if m.sqlDB == nil {
		return nil
	}
	err := m.sqlDB.Close()
	m.sqlDB = nil
	return err
}

// Migrate creates or updates every table in model.DatabaseModels.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(model.DatabaseModels...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// PostgresDSN builds the connection string for cfg.
func PostgresDSN(cfg config.PostgresConfig) string {
	return fmt.Sprintf(`host=%s port=%s user=%s password=%s dbname=%s sslmode=disable`,
		cfg.Host,
		cfg.Port,
		cfg.Username,
		cfg.Password,
		cfg.Database,
	)
}

// GetPostgresDB returns a connection to the Postgres database.
func GetPostgresDB(cfg config.PostgresConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  PostgresDSN(cfg),
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	return db, nil
}

// GetSqliteDB returns a connection to a SQLite database.
// If path is empty, uses a private in-memory database.
func GetSqliteDB(path string) (*gorm.DB, error) {
	dsn := path
	if dsn == "" {
		// named so that every pooled connection sees the same data
		dsn = "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		PrepareStmt:            true,
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	// set PRAGMAS
	pragmas := []string{
		"PRAGMA user_version = 1;",
		"PRAGMA journal_mode = WAL;",
		"PRAGMA synchronous = NORMAL;",
		"PRAGMA foreign_keys = ON;",
		"PRAGMA cache_size = -32000;",
		"PRAGMA temp_store = MEMORY;",
	}

	for _, pragma := range pragmas {
		if err := db.Exec(pragma).Error; err != nil {
			return nil, fmt.Errorf("error setting PRAGMA: %w", err)
		}
	}

	return db, nil
}
