package gormstorage_test

import (
	"github.com/geohunt/arcoin/internal/storage"
	gormstorage "github.com/geohunt/arcoin/internal/storage/gorm"
)

// Compile-time interface check
var _ storage.Backend = (*gormstorage.Backend)(nil)
