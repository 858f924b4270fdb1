// internal/storage/factory.go
package storage

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/geohunt/arcoin/internal/config"
	"github.com/geohunt/arcoin/internal/storage/memory"
	postgresstorage "github.com/geohunt/arcoin/internal/storage/postgres"
	sqlitestorage "github.com/geohunt/arcoin/internal/storage/sqlite"
	"github.com/geohunt/arcoin/internal/storage/websocket"
)

// NewBackend creates a storage backend based on configuration.
func NewBackend(cfg config.StorageConfig, logger *slog.Logger) (Backend, error) {
	switch cfg.Type {
	case "postgres":
		return postgresstorage.New(logger)
	case "sqlite":
		return sqlitestorage.New(sqlitestorage.Config{
			DumpPath:     cfg.Sqlite.DumpPath,
			DumpInterval: time.Duration(cfg.Sqlite.DumpIntervalSeconds) * time.Second,
		}, logger)
	case "stream":
		return websocket.New(websocket.Config{
			URL:    cfg.Stream.URL,
			Secret: cfg.Stream.Secret,
		}, logger), nil
	case "memory":
		return memory.New(cfg.Memory), nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}
