package datastore

import (
	"os"
	"path/filepath"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// openSQLite opens (creating if needed) the SQLite database at path.
// ":memory:" opens a private in-memory database.
func openSQLite(path string, gormCfg *gorm.Config) (*gorm.DB, error) {
	if path == "" {
		return nil, validationError("sqlite path must not be empty", "database.sqlite.path", path)
	}

	dsn := path
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, connectionError(err, DialectSQLite, "create_directory")
			}
		}
		dsn = path + "?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000"
	}

	db, err := gorm.Open(sqlite.Open(dsn), gormCfg)
	if err != nil {
		return nil, connectionError(err, DialectSQLite, "open")
	}

	// SQLite serializes writers; a single connection also keeps ":memory:" shared.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, connectionError(err, DialectSQLite, "get_sql_db")
	}
	sqlDB.SetMaxOpenConns(1)

	return db, nil
}
