package main

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/sensorplan/engine/internal/config"
	"github.com/sensorplan/engine/internal/storage"
)

func initStorage(log zerolog.Logger) (storage.Backend, error) {
	storageCfg := config.GetStorageConfig()
	Logger.Debug("Initializing storage", "type", storageCfg.Type)

	backend, err := storage.NewBackend(storageCfg, log)
	if err != nil {
		Logger.Error("Failed to create storage backend", "error", err)
		return nil, err
	}
	if err := backend.Init(); err != nil {
		Logger.Error("Failed to initialize storage backend", "error", err)
		return nil, fmt.Errorf("failed to initialize %s storage: %w", storageCfg.Type, err)
	}

	if auto, ok := backend.(*storage.AutoBackend); ok {
		Logger.Info("Database storage backend initialized", "dialect", auto.Dialect(), "fallback", auto.Fallback())
		return backend, nil
	}
	switch storageCfg.Type {
	case "postgres":
		Logger.Info("Postgres storage backend initialized")
	case "sqlite":
		Logger.Info("SQLite storage backend initialized", "path", storageCfg.SQLite.Path)
	default:
		Logger.Info("Memory storage backend initialized", "outputDir", storageCfg.Memory.OutputDir)
	}
	return backend, nil
}
