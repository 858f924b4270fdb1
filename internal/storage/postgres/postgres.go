// Package postgresstorage implements the storage.Backend interface on a
// PostgreSQL database. It wraps the GORM backend via composition; the only
// Postgres-specific concern is establishing the connection (the PostGIS
// extension is handled during schema setup).
package postgresstorage

import (
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/geohunt/arcoin/internal/database"
	gormstorage "github.com/geohunt/arcoin/internal/storage/gorm"
)

// Backend wraps the GORM backend for Postgres-specific behavior.
type Backend struct {
	*gormstorage.Backend
	db *gorm.DB
}

// New creates a new Postgres storage backend using the db.* connection
// settings from the loaded configuration.
func New(logger *slog.Logger) (*Backend, error) {
	db, err := database.OpenPostgres()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
	}

	if logger == nil {
		logger = slog.Default()
	}

	gormBackend := gormstorage.New(gormstorage.Dependencies{
		DB:     db,
		Logger: logger,
	})

	return &Backend{
		Backend: gormBackend,
		db:      db,
	}, nil
}
