package db

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goran-ethernal/HolderIndexor/pkg/config"
	"github.com/stretchr/testify/require"
)

func TestNewSQLiteDBFromConfig(t *testing.T) {
	tests := []struct {
		name        string
		journal     string
		synchronous string
		wantJournal string
		wantSync    int // PRAGMA synchronous reports 0=OFF 1=NORMAL 2=FULL
	}{
		{name: "wal store", journal: "WAL", synchronous: "NORMAL", wantJournal: "wal", wantSync: 1},
		{name: "rollback journal", journal: "TRUNCATE", synchronous: "FULL", wantJournal: "truncate", wantSync: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// nested directory: the store creates it on first start
			cfg := config.DatabaseConfig{
				Path:        filepath.Join(t.TempDir(), "data", "holderindexor.sqlite"),
				JournalMode: tt.journal,
				Synchronous: tt.synchronous,
			}
			cfg.ApplyDefaults()

			sqlDB, err := NewSQLiteDBFromConfig(cfg)
			require.NoError(t, err)
			defer sqlDB.Close()

			var journal string
			require.NoError(t, sqlDB.QueryRow("PRAGMA journal_mode").Scan(&journal))
			require.Equal(t, tt.wantJournal, strings.ToLower(journal))

			var sync int
			require.NoError(t, sqlDB.QueryRow("PRAGMA synchronous").Scan(&sync))
			require.Equal(t, tt.wantSync, sync)

			require.FileExists(t, cfg.Path)
		})
	}
}

func TestNewSQLiteDBFromConfig_BadPragma(t *testing.T) {
	cfg := config.DatabaseConfig{Path: filepath.Join(t.TempDir(), "store.sqlite")}
	cfg.ApplyDefaults()
	cfg.Synchronous = "NORMAL EVENTUALLY"

	_, err := NewSQLiteDBFromConfig(cfg)
	require.ErrorContains(t, err, "failed to set pragma")
}

func TestDBFileSizes(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string // suffix -> content
		want  FileSizes
	}{
		{
			name:  "main only",
			files: map[string]string{"": "main-db-content"},
			want:  FileSizes{Main: 15},
		},
		{
			name:  "with wal and shm",
			files: map[string]string{"": "main-db", "-wal": "wal-content", "-shm": "shm"},
			want:  FileSizes{Main: 7, WAL: 11, SHM: 3},
		},
		{
			name: "store not created yet",
			want: FileSizes{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "store.sqlite")
			for suffix, content := range tt.files {
				require.NoError(t, os.WriteFile(path+suffix, []byte(content), 0o600))
			}

			sizes, err := DBFileSizes(path)
			require.NoError(t, err)
			require.Equal(t, tt.want, sizes)
			require.Equal(t, tt.want.Main+tt.want.WAL+tt.want.SHM, sizes.Total())
		})
	}
}
