// Package database opens the GORM connections shared by the storage
// backends. Schema migration lives with the backends; this package only
// knows how to dial Postgres, open SQLite, and persist an in-memory
// SQLite database to disk.
package database

import (
	"fmt"
	"os"

	"github.com/glebarez/sqlite"
	"github.com/spf13/viper"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Session records arrive in bursts on every tick, so both dialects
// batch inserts and skip the per-statement transaction.
const (
	postgresBatchSize = 10000
	sqliteBatchSize   = 2000
)

// inMemoryDSN is shared-cache so every connection in the pool sees the
// same in-memory database.
const inMemoryDSN = "file::memory:?cache=shared"

// OpenPostgres connects to Postgres using the db.* viper settings.
func OpenPostgres() (*gorm.DB, error) {
	return gorm.Open(postgres.New(postgres.Config{
		DSN:                  postgresDSN(),
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		CreateBatchSize:        postgresBatchSize,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
}

func postgresDSN() string {
	return fmt.Sprintf(`host=%s port=%s user=%s password=%s dbname=%s sslmode=disable`,
		viper.GetString("db.host"),
		viper.GetString("db.port"),
		viper.GetString("db.username"),
		viper.GetString("db.password"),
		viper.GetString("db.database"),
	)
}

// OpenSqlite opens a SQLite database at path. An empty path opens an
// in-memory database, which callers periodically persist with
// SaveInMemoryTo.
func OpenSqlite(path string) (*gorm.DB, error) {
	dsn := path
	if dsn == "" {
		dsn = inMemoryDSN
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		PrepareStmt:            true,
		SkipDefaultTransaction: true,
		CreateBatchSize:        sqliteBatchSize,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	if err := applyPragmas(db); err != nil {
		return nil, err
	}
	return db, nil
}

// applyPragmas tunes SQLite for write throughput over durability. A
// crash loses the current session only, which the gzip export path
// already tolerates.
func applyPragmas(db *gorm.DB) error {
	pragmas := []string{
		"PRAGMA user_version = 1;",
		"PRAGMA journal_mode = MEMORY;",
		"PRAGMA synchronous = OFF;",
		"PRAGMA cache_size = -32000;",
		"PRAGMA temp_store = MEMORY;",
		"PRAGMA page_size = 32768;",
		"PRAGMA mmap_size = 30000000000;",
	}
	for _, pragma := range pragmas {
		if err := db.Exec(pragma).Error; err != nil {
			return fmt.Errorf("error setting PRAGMA: %s", err)
		}
	}
	return nil
}

// SaveInMemoryTo vacuums an in-memory database into a disk file,
// replacing any previous snapshot at that path.
func SaveInMemoryTo(db *gorm.DB, path string) error {
	if path == "" {
		return fmt.Errorf("sqlite file path not set")
	}

	if _, err := os.Stat(path); err == nil {
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("error removing existing DB file: %s", err)
		}
	}

	if err := db.Exec("VACUUM INTO 'file:" + path + "';").Error; err != nil {
		return fmt.Errorf("error dumping memory DB to disk: %s", err)
	}
	return nil
}
