package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// ConfigFileName is the file Load looks for in the config directory.
const ConfigFileName = "sensorplan.cfg.json"

// MemoryConfig holds in-memory/JSON storage backend settings
type MemoryConfig struct {
	OutputDir      string `json:"outputDir" mapstructure:"outputDir"`
	CompressOutput bool   `json:"compressOutput" mapstructure:"compressOutput"`
}

// SQLiteConfig holds settings for the SQLite backend
type SQLiteConfig struct {
	Path string `json:"path" mapstructure:"path"`
}

// PostgresConfig holds connection settings for the Postgres backend
type PostgresConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	Database string
}

// StorageConfig selects and configures the layout storage backend
type StorageConfig struct {
	Type     string
	Memory   MemoryConfig
	SQLite   SQLiteConfig
	Postgres PostgresConfig
}

// AnalysisConfig holds the analysis defaults applied to new layouts
type AnalysisConfig struct {
	CoverageSampleCount int
	PointCount          int
	PerformanceMode     bool
}

// GeoConfig places the vehicle origin for geo-referenced exports
type GeoConfig struct {
	Longitude  float64
	Latitude   float64
	HeadingDeg float64
}

// InfluxConfig holds the evaluation metrics sink settings
type InfluxConfig struct {
	Enabled    bool
	Host       string
	Port       string
	Protocol   string
	Token      string
	Org        string
	Bucket     string
	BackupPath string
}

// Load reads configuration from JSON file and sets default values.
// configDir is the directory containing the config file.
func Load(configDir string) error {
	// Set default values
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./sensorplan-logs")

	viper.SetDefault("analysis.coverageSampleCount", 2000)
	viper.SetDefault("analysis.pointCount", 5000)
	viper.SetDefault("analysis.performanceMode", false)

	viper.SetDefault("storage.type", "memory")
	viper.SetDefault("storage.memory.outputDir", "./layouts")
	viper.SetDefault("storage.memory.compressOutput", false)
	viper.SetDefault("storage.sqlite.path", "./sensorplan.db")

	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", "5432")
	viper.SetDefault("db.username", "postgres")
	viper.SetDefault("db.password", "postgres")
	viper.SetDefault("db.database", "sensorplan")

	viper.SetDefault("influx.enabled", false)
	viper.SetDefault("influx.host", "localhost")
	viper.SetDefault("influx.port", "8086")
	viper.SetDefault("influx.protocol", "http")
	viper.SetDefault("influx.token", "supersecrettoken")
	viper.SetDefault("influx.org", "sensorplan")
	viper.SetDefault("influx.bucket", "layout-evaluations")
	viper.SetDefault("influx.backupPath", "./influx-backup.lp.gz")

	viper.SetDefault("graylog.enabled", false)
	viper.SetDefault("graylog.address", "localhost:12201")

	viper.SetDefault("geo.anchorLongitude", 0.0)
	viper.SetDefault("geo.anchorLatitude", 0.0)
	viper.SetDefault("geo.anchorHeadingDeg", 0.0)

	viper.SetConfigName(ConfigFileName)
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	err := viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("error reading config file: %v", err)
	}

	return nil
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetStorageConfig returns the storage backend configuration.
func GetStorageConfig() StorageConfig {
	return StorageConfig{
		Type: viper.GetString("storage.type"),
		Memory: MemoryConfig{
			OutputDir:      viper.GetString("storage.memory.outputDir"),
			CompressOutput: viper.GetBool("storage.memory.compressOutput"),
		},
		SQLite: SQLiteConfig{
			Path: viper.GetString("storage.sqlite.path"),
		},
		Postgres: PostgresConfig{
			Host:     viper.GetString("db.host"),
			Port:     viper.GetString("db.port"),
			Username: viper.GetString("db.username"),
			Password: viper.GetString("db.password"),
			Database: viper.GetString("db.database"),
		},
	}
}

// GetAnalysisConfig returns the analysis defaults.
func GetAnalysisConfig() AnalysisConfig {
	return AnalysisConfig{
		CoverageSampleCount: viper.GetInt("analysis.coverageSampleCount"),
		PointCount:          viper.GetInt("analysis.pointCount"),
		PerformanceMode:     viper.GetBool("analysis.performanceMode"),
	}
}

// GetGeoConfig returns the geo-reference anchor.
func GetGeoConfig() GeoConfig {
	return GeoConfig{
		Longitude:  viper.GetFloat64("geo.anchorLongitude"),
		Latitude:   viper.GetFloat64("geo.anchorLatitude"),
		HeadingDeg: viper.GetFloat64("geo.anchorHeadingDeg"),
	}
}

// GetInfluxConfig returns the metrics sink configuration.
func GetInfluxConfig() InfluxConfig {
	return InfluxConfig{
		Enabled:    viper.GetBool("influx.enabled"),
		Host:       viper.GetString("influx.host"),
		Port:       viper.GetString("influx.port"),
		Protocol:   viper.GetString("influx.protocol"),
		Token:      viper.GetString("influx.token"),
		Org:        viper.GetString("influx.org"),
		Bucket:     viper.GetString("influx.bucket"),
		BackupPath: viper.GetString("influx.backupPath"),
	}
}
