package migrations

import (
	"database/sql"
	_ "embed"

	"github.com/goran-ethernal/HolderIndexor/internal/db"
	"github.com/goran-ethernal/HolderIndexor/internal/logger"
	migrate "github.com/rubenv/sql-migrate"
)

//go:embed 001_store_cache_entries.sql
var mig001 string

//go:embed 002_store_leases.sql
var mig002 string

func all() []db.Migration {
	return []db.Migration{
		{ID: "001_store_cache_entries.sql", SQL: mig001},
		{ID: "002_store_leases.sql", SQL: mig002},
	}
}

// RunMigrationsDB brings the cache_entries and leases tables up to date.
func RunMigrationsDB(log *logger.Logger, sqlDB *sql.DB) error {
	_, err := db.Migrate(log, sqlDB, all(), migrate.Up, 0)
	return err
}
