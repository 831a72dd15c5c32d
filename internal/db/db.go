package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goran-ethernal/HolderIndexor/pkg/config"
	_ "github.com/mattn/go-sqlite3"
)

// NewSQLiteDB creates a new SQLite DB
func NewSQLiteDB(dbPath string) (*sql.DB, error) {
	return sql.Open("sqlite3", fmt.Sprintf(
		"file:%s?_txlock=immediate&_foreign_keys=on&_journal_mode=WAL&_busy_timeout=30000",
		dbPath,
	))
}

// NewSQLiteDBFromConfig creates a new SQLite DB with the given configuration.
// The parent directory of the database file is created when missing.
func NewSQLiteDBFromConfig(cfg config.DatabaseConfig) (*sql.DB, error) {
	if dir := filepath.Dir(cfg.Path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil { //nolint:mnd
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	foreignKeys := "off"
	if cfg.EnableForeignKeys {
		foreignKeys = "on"
	}

	connStr := fmt.Sprintf(
		"file:%s?_txlock=immediate&_foreign_keys=%s&_journal_mode=%s&_busy_timeout=%d",
		cfg.Path,
		foreignKeys,
		cfg.JournalMode,
		cfg.BusyTimeout,
	)

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConnections)
	db.SetMaxIdleConns(cfg.MaxIdleConnections)

	pragmas := []string{
		fmt.Sprintf("PRAGMA synchronous = %s", cfg.Synchronous),
		fmt.Sprintf("PRAGMA cache_size = %d", cfg.CacheSize),
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	return db, nil
}

// FileSizes are the on-disk sizes of a store database and its WAL companions.
type FileSizes struct {
	Main int64
	WAL  int64
	SHM  int64
}

// Total is the combined size of all three files.
func (f FileSizes) Total() int64 {
	return f.Main + f.WAL + f.SHM
}

// DBFileSizes stats the database file and its -wal and -shm companions.
// Missing files count as zero.
func DBFileSizes(dbPath string) (FileSizes, error) {
	var sizes FileSizes
	for _, f := range []struct {
		path string
		dst  *int64
	}{
		{dbPath, &sizes.Main},
		{dbPath + "-wal", &sizes.WAL},
		{dbPath + "-shm", &sizes.SHM},
	} {
		info, err := os.Stat(f.path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return FileSizes{}, fmt.Errorf("failed to stat %s: %w", f.path, err)
		}
		*f.dst = info.Size()
	}
	return sizes, nil
}
