package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/goran-ethernal/HolderIndexor/pkg/config"
	"github.com/stretchr/testify/require"
)

func TestLoadFromFile_AllFormats(t *testing.T) {
	for _, path := range []string{
		"../../config.example.yaml",
		"../../config.example.json",
		"../../config.example.toml",
	} {
		t.Run(filepath.Ext(path), func(t *testing.T) {
			cfg, err := LoadFromFile(path)
			require.NoError(t, err)
			validateConfig(t, cfg, "auto-detected "+filepath.Ext(path))
		})
	}
}

func TestLoadFromFile_UnsupportedFormat(t *testing.T) {
	_, err := LoadFromFile("config.txt")
	require.ErrorContains(t, err, "unsupported config file format")
}

func TestFormatFromPath(t *testing.T) {
	for path, want := range map[string]Format{
		"holderindexor.yaml": FormatYAML,
		"holderindexor.YML":  FormatYAML,
		"cfg/prod.json":      FormatJSON,
		"prod.toml":          FormatTOML,
	} {
		got, err := FormatFromPath(path)
		require.NoError(t, err, path)
		require.Equal(t, want, got, path)
	}

	_, err := FormatFromPath("holderindexor.ini")
	require.ErrorContains(t, err, ".ini")
}

func TestParse_UnknownKeysRejected(t *testing.T) {
	tests := []struct {
		format Format
		data   string
		key    string
	}{
		{
			format: FormatYAML,
			data:   "rpc:\n  url: \"https://rpc.example.org\"\ncollections:\n  - name: alpha\n    burn_adresses: [\"0x01\"]\n",
			key:    "burn_adresses",
		},
		{
			format: FormatJSON,
			data:   `{"rpc": {"url": "https://rpc.example.org"}, "sync": {"windowsize": 300}}`,
			key:    "windowsize",
		},
		{
			format: FormatTOML,
			data:   "[rpc]\nurl = \"https://rpc.example.org\"\n\n[population]\nlock_tll = \"5m\"\n",
			key:    "population.lock_tll",
		},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			_, err := Parse([]byte(tt.data), tt.format)
			require.ErrorContains(t, err, "failed to parse")
			require.ErrorContains(t, err, tt.key)
		})
	}
}

func TestParse_ComponentLevelsAreFree(t *testing.T) {
	data := "rpc:\n  url: \"https://rpc.example.org\"\n" +
		"collections:\n  - name: alpha\n" +
		"    address: \"0x1000000000000000000000000000000000000001\"\n" +
		"    vault_address: \"0x2000000000000000000000000000000000000002\"\n" +
		"    tiers:\n      - { id: 1, name: Common, multiplier: 10 }\n" +
		"logging:\n  component_levels:\n    chain-reader: debug\n"

	cfg, err := Parse([]byte(data), FormatYAML)
	require.NoError(t, err)
	require.Equal(t, "debug", cfg.Logging.GetComponentLevel("chain-reader"))
}

func TestParse_UnsupportedFormat(t *testing.T) {
	_, err := Parse([]byte("{}"), Format("ini"))
	require.ErrorContains(t, err, `unsupported config format "ini"`)
}

func TestLoadFromFile_InvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rpc:\n  url: \"\"\n"), 0o600))

	_, err := LoadFromFile(path)
	require.ErrorContains(t, err, "invalid configuration")
	require.ErrorContains(t, err, "rpc.url is required")
}

// validateConfig checks that the loaded config has expected values
func validateConfig(t *testing.T, cfg *config.Config, format string) {
	t.Helper()

	require.NotEmpty(t, cfg.RPC.URL, "[%s] rpc.url should not be empty", format)
	require.NotEmpty(t, cfg.RPC.Finality, "[%s] rpc.finality should have default value applied", format)
	require.NotNil(t, cfg.RPC.Retry, "[%s] rpc.retry should be set", format)
	require.Equal(t, 5, cfg.RPC.Retry.MaxAttempts, "[%s] rpc.retry.max_attempts", format)

	require.Equal(t, uint64(500), cfg.Sync.WindowSize, "[%s] sync.window_size", format)
	require.Equal(t, uint64(50000), cfg.Sync.MaxBlocksPerRun, "[%s] sync.max_blocks_per_run", format)
	require.Equal(t, config.FastForwardHeuristic, cfg.Sync.FastForward, "[%s] sync.fast_forward", format)
	require.Equal(t, 24*time.Hour, cfg.Sync.WindowCacheTTL.Duration, "[%s] sync.window_cache_ttl", format)

	require.Equal(t, 100, cfg.Population.BatchSize, "[%s] population.batch_size", format)
	require.Equal(t, 10*time.Minute, cfg.Population.RefreshInterval.Duration, "[%s] population.refresh_interval", format)

	require.Equal(t, config.StoreBackendSQLite, cfg.Store.Backend, "[%s] store.backend", format)
	require.NotEmpty(t, cfg.Store.DB.Path, "[%s] store.db.path should not be empty", format)
	require.Equal(t, "WAL", cfg.Store.DB.JournalMode, "[%s] store.db.journal_mode should have default value", format)

	require.Len(t, cfg.Collections, 3, "[%s] collections", format)
	for i, col := range cfg.Collections {
		require.NotEmpty(t, col.Name, "[%s] collections[%d].name should not be empty", format, i)
		require.NotEmpty(t, col.Tiers, "[%s] collections[%d] should have tiers", format, i)
		require.True(t, col.IsEnabled(), "[%s] collections[%d] should be enabled", format, i)
	}
	require.Equal(t, config.RewardStrategyPool, cfg.Collections[0].RewardStrategy)
	require.Equal(t, config.RewardStrategyShareVested, cfg.Collections[1].RewardStrategy)
	require.Equal(t, config.RewardStrategyCycle, cfg.Collections[2].RewardStrategy)

	require.NotNil(t, cfg.Logging, "[%s] logging", format)
	require.Equal(t, "debug", cfg.Logging.GetComponentLevel("event-sync"), "[%s] event-sync level", format)
	require.Equal(t, "info", cfg.Logging.GetComponentLevel("population"), "[%s] population level", format)

	require.NotNil(t, cfg.API, "[%s] api", format)
	require.Equal(t, ":8080", cfg.API.ListenAddress, "[%s] api.listen_address", format)
}

func validCollection() config.CollectionConfig {
	return config.CollectionConfig{
		Name:         "alpha",
		Address:      "0x1000000000000000000000000000000000000001",
		VaultAddress: "0x2000000000000000000000000000000000000002",
		Tiers: []config.TierConfig{
			{ID: 1, Name: "Common", Multiplier: 10},
		},
	}
}

func TestConfigDefaults(t *testing.T) {
	cfg := &config.Config{
		RPC: config.RPCConfig{URL: "https://test.com"},
		Store: config.StoreConfig{
			Backend: config.StoreBackendSQLite,
			DB:      config.DatabaseConfig{Path: "./test.db"},
		},
		Collections: []config.CollectionConfig{validCollection()},
		API:         &config.APIConfig{},
	}

	cfg.ApplyDefaults()

	require.Equal(t, "latest", cfg.RPC.Finality)
	require.Equal(t, 30*time.Second, cfg.RPC.CallTimeout.Duration)
	require.Equal(t, 2.0, cfg.RPC.Retry.RateLimitMultiplier)
	require.Equal(t, uint64(500), cfg.Sync.WindowSize)
	require.Equal(t, uint64(50_000), cfg.Sync.MaxBlocksPerRun)
	require.Equal(t, uint64(50_000), cfg.Sync.ProbeBlocks)
	require.Equal(t, 5, cfg.Sync.Concurrency)
	require.Equal(t, 100, cfg.Population.BatchSize)
	require.Equal(t, 5, cfg.Population.Concurrency)
	require.Equal(t, "WAL", cfg.Store.DB.JournalMode)
	require.Equal(t, "NORMAL", cfg.Store.DB.Synchronous)
	require.Equal(t, 5000, cfg.Store.DB.BusyTimeout)
	require.Equal(t, 25, cfg.Store.DB.MaxOpenConnections)
	require.Equal(t, config.RewardStrategyPool, cfg.Collections[0].RewardStrategy)
	require.Equal(t, ":8080", cfg.API.ListenAddress)
	require.NoError(t, cfg.Validate())
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(cfg *config.Config)
		wantErr string
	}{
		{
			name:   "valid config",
			mutate: func(cfg *config.Config) {},
		},
		{
			name:    "missing rpc url",
			mutate:  func(cfg *config.Config) { cfg.RPC.URL = "" },
			wantErr: "rpc.url is required",
		},
		{
			name:    "invalid finality",
			mutate:  func(cfg *config.Config) { cfg.RPC.Finality = "invalid" },
			wantErr: "rpc.finality",
		},
		{
			name:    "window too large",
			mutate:  func(cfg *config.Config) { cfg.Sync.WindowSize = 1000 },
			wantErr: "sync.window_size",
		},
		{
			name:    "blocks per run too large",
			mutate:  func(cfg *config.Config) { cfg.Sync.MaxBlocksPerRun = 60_000 },
			wantErr: "sync.max_blocks_per_run",
		},
		{
			name: "blocks per run off the window grid",
			mutate: func(cfg *config.Config) {
				cfg.Sync.WindowSize = 300
				cfg.Sync.MaxBlocksPerRun = 50_000
			},
			wantErr: "multiple of sync.window_size",
		},
		{
			name: "blocks per run on the window grid",
			mutate: func(cfg *config.Config) {
				cfg.Sync.WindowSize = 400
				cfg.Sync.MaxBlocksPerRun = 50_000
			},
		},
		{
			name:    "unknown fast forward policy",
			mutate:  func(cfg *config.Config) { cfg.Sync.FastForward = "always" },
			wantErr: "sync.fast_forward",
		},
		{
			name:    "unknown store backend",
			mutate:  func(cfg *config.Config) { cfg.Store.Backend = "mongo" },
			wantErr: "store.backend",
		},
		{
			name:    "redis without url",
			mutate:  func(cfg *config.Config) { cfg.Store.Backend = config.StoreBackendRedis },
			wantErr: "store.redis.url",
		},
		{
			name:    "no collections",
			mutate:  func(cfg *config.Config) { cfg.Collections = nil },
			wantErr: "at least one collection",
		},
		{
			name: "duplicate collection",
			mutate: func(cfg *config.Config) {
				cfg.Collections = append(cfg.Collections, validCollection())
			},
			wantErr: "duplicate collection name",
		},
		{
			name:    "missing tier table",
			mutate:  func(cfg *config.Config) { cfg.Collections[0].Tiers = nil },
			wantErr: "at least one tier",
		},
		{
			name: "duplicate tier id",
			mutate: func(cfg *config.Config) {
				cfg.Collections[0].Tiers = append(cfg.Collections[0].Tiers, config.TierConfig{ID: 1})
			},
			wantErr: "duplicate tier id",
		},
		{
			name:    "unknown reward strategy",
			mutate:  func(cfg *config.Config) { cfg.Collections[0].RewardStrategy = "lottery" },
			wantErr: "reward_strategy",
		},
		{
			name:    "missing vault",
			mutate:  func(cfg *config.Config) { cfg.Collections[0].VaultAddress = "" },
			wantErr: "vault_address is required",
		},
		{
			name:    "name with underscore",
			mutate:  func(cfg *config.Config) { cfg.Collections[0].Name = "a_b" },
			wantErr: "must not contain",
		},
		{
			name: "unknown logging component",
			mutate: func(cfg *config.Config) {
				cfg.Logging = &config.LoggingConfig{ComponentLevels: map[string]string{"downloader": "info"}}
			},
			wantErr: "unknown component",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{
				RPC:         config.RPCConfig{URL: "https://test.com"},
				Collections: []config.CollectionConfig{validCollection()},
			}
			tt.mutate(cfg)
			cfg.ApplyDefaults()

			err := cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestCollectionConfig_Helpers(t *testing.T) {
	col := validCollection()
	col.Tiers = append(col.Tiers, config.TierConfig{ID: 3, Name: "Rare", Multiplier: 25})
	col.BurnAddresses = []string{"0x000000000000000000000000000000000000dEaD"}

	idx, ok := col.TierIndex(3)
	require.True(t, ok)
	require.Equal(t, 1, idx)

	_, ok = col.TierIndex(2)
	require.False(t, ok)

	require.Equal(t, []uint64{10, 25}, col.Multipliers())
	require.Len(t, col.BurnAddressSet(), 2)
	require.Equal(t, col.ContractAddress(), col.TierContractAddress())

	disabled := false
	col.Enabled = &disabled
	require.False(t, col.IsEnabled())
}
