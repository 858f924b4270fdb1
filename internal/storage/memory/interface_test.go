package memory_test

import (
	"github.com/geohunt/arcoin/internal/storage"
	"github.com/geohunt/arcoin/internal/storage/memory"
)

// Verify Backend implements storage.Backend interface
var _ storage.Backend = (*memory.Backend)(nil)

// Verify Backend implements storage.Uploadable interface
var _ storage.Uploadable = (*memory.Backend)(nil)
