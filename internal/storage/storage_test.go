// internal/storage/storage_test.go
package storage_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geohunt/arcoin/internal/config"
	"github.com/geohunt/arcoin/internal/storage"
	"github.com/geohunt/arcoin/internal/storage/memory"
)

func TestNewBackend_Memory(t *testing.T) {
	b, err := storage.NewBackend(config.StorageConfig{
		Type:   "memory",
		Memory: config.MemoryConfig{OutputDir: t.TempDir()},
	}, nil)
	require.NoError(t, err)
	require.NotNil(t, b)

	_, ok := b.(*memory.Backend)
	assert.True(t, ok, "expected memory backend")

	// The memory backend supports post-session upload.
	_, ok = b.(storage.Uploadable)
	assert.True(t, ok, "expected memory backend to be Uploadable")
}

func TestNewBackend_UnknownType(t *testing.T) {
	_, err := storage.NewBackend(config.StorageConfig{Type: "carrier_pigeon"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown storage type")
}
