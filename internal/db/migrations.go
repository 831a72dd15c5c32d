package db

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/goran-ethernal/HolderIndexor/internal/logger"
	_ "github.com/mattn/go-sqlite3"
	migrate "github.com/rubenv/sql-migrate"
)

// MigrationTable records the store schema migrations already applied.
const MigrationTable = "store_migrations"

// Migration is one embedded store schema file with "-- +migrate Up" and
// "-- +migrate Down" sections.
type Migration struct {
	ID  string
	SQL string
}

func migrationSource(migrations []Migration) (*migrate.MemoryMigrationSource, error) {
	src := &migrate.MemoryMigrationSource{}
	for _, m := range migrations {
		parsed, err := migrate.ParseMigration(m.ID, strings.NewReader(m.SQL))
		if err != nil {
			return nil, fmt.Errorf("invalid migration %s: %w", m.ID, err)
		}
		src.Migrations = append(src.Migrations, parsed)
	}
	return src, nil
}

func directionLabel(dir migrate.MigrationDirection) string {
	if dir == migrate.Down {
		return "down"
	}
	return "up"
}

// Migrate applies at most limit migrations in dir (0 means all of them) and
// returns how many ran.
func Migrate(
	log *logger.Logger,
	db *sql.DB,
	migrations []Migration,
	dir migrate.MigrationDirection,
	limit int,
) (int, error) {
	src, err := migrationSource(migrations)
	if err != nil {
		return 0, err
	}

	set := migrate.MigrationSet{TableName: MigrationTable}
	applied, err := set.ExecMax(db, "sqlite3", src, dir, limit)
	MigrationsAppliedAdd(directionLabel(dir), applied)
	if err != nil {
		return applied, fmt.Errorf("failed to migrate store schema %s after %d migrations: %w",
			directionLabel(dir), applied, err)
	}

	if applied > 0 {
		log.Infof("applied %d store migrations (%s)", applied, directionLabel(dir))
	} else {
		log.Debugf("store schema is up to date (%d migrations known)", len(migrations))
	}

	return applied, nil
}
