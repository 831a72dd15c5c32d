package config

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	internalcommon "github.com/goran-ethernal/HolderIndexor/internal/common"
	"github.com/goran-ethernal/HolderIndexor/internal/logger"
	"github.com/goran-ethernal/HolderIndexor/internal/types"
)

const (
	// MaxWindowSize is the provider imposed upper bound for one eth_getLogs range.
	MaxWindowSize = 500
	// MaxBlocksPerRun bounds how many blocks one Sync call scans.
	MaxBlocksPerRun = 50_000
)

// Config represents the complete configuration for the HolderIndexor.
type Config struct {
	// RPC contains the chain reader configuration
	RPC RPCConfig `yaml:"rpc" json:"rpc" toml:"rpc"`

	// Sync contains the event sync engine configuration
	Sync SyncConfig `yaml:"sync" json:"sync" toml:"sync"`

	// Population contains orchestrator, aggregator and scheduler configuration
	Population PopulationConfig `yaml:"population" json:"population" toml:"population"`

	// Store selects and configures the cache store backend
	Store StoreConfig `yaml:"store" json:"store" toml:"store"`

	// Collections lists the indexed NFT collections
	Collections []CollectionConfig `yaml:"collections" json:"collections" toml:"collections"`

	// Logging contains logging configuration
	Logging *LoggingConfig `yaml:"logging,omitempty" json:"logging,omitempty" toml:"logging,omitempty"`

	// Metrics contains Prometheus metrics configuration
	Metrics *MetricsConfig `yaml:"metrics,omitempty" json:"metrics,omitempty" toml:"metrics,omitempty"`

	// API contains REST API configuration
	API *APIConfig `yaml:"api,omitempty" json:"api,omitempty" toml:"api,omitempty"`
}

// RPCConfig configures the chain reader.
type RPCConfig struct {
	// URL is the JSON-RPC endpoint URL
	URL string `yaml:"url" json:"url" toml:"url"`

	// Finality specifies the head block mode: "finalized", "safe", or "latest"
	Finality string `yaml:"finality" json:"finality" toml:"finality"`

	// FinalizedLag is the number of blocks behind head to treat as final
	// Only used when Finality is set to "latest"
	FinalizedLag uint64 `yaml:"finalized_lag" json:"finalized_lag" toml:"finalized_lag"`

	// CallTimeout bounds a single upstream request
	CallTimeout internalcommon.Duration `yaml:"call_timeout" json:"call_timeout" toml:"call_timeout"`

	// RequestsPerSecond is the token bucket refill rate shared by all requests
	RequestsPerSecond float64 `yaml:"requests_per_second" json:"requests_per_second" toml:"requests_per_second"`

	// Burst is the token bucket size
	Burst int `yaml:"burst" json:"burst" toml:"burst"`

	// MaxBatchSize is the maximum number of calls sent in one JSON-RPC batch
	MaxBatchSize int `yaml:"max_batch_size" json:"max_batch_size" toml:"max_batch_size"`

	// Retry contains RPC retry configuration with exponential backoff
	Retry *RetryConfig `yaml:"retry,omitempty" json:"retry,omitempty" toml:"retry,omitempty"`
}

// ApplyDefaults sets default values for optional rpc configuration fields.
func (r *RPCConfig) ApplyDefaults() {
	if r.Finality == "" {
		r.Finality = string(types.FinalityLatest)
	}
	if r.CallTimeout.Duration == 0 {
		r.CallTimeout = internalcommon.NewDuration(30 * time.Second) //nolint:mnd
	}
	if r.RequestsPerSecond == 0 {
		r.RequestsPerSecond = 10
	}
	if r.Burst == 0 {
		r.Burst = 10
	}
	if r.MaxBatchSize == 0 {
		r.MaxBatchSize = 100
	}
	if r.Retry == nil {
		r.Retry = &RetryConfig{}
	}
	r.Retry.ApplyDefaults()
}

// Validate checks if the rpc configuration is valid.
func (r *RPCConfig) Validate() error {
	if r.URL == "" {
		return fmt.Errorf("rpc.url is required")
	}
	if _, err := types.ParseBlockFinality(r.Finality); err != nil {
		return fmt.Errorf("rpc.finality must be one of: 'finalized', 'safe', or 'latest'")
	}
	if r.RequestsPerSecond < 0 {
		return fmt.Errorf("rpc.requests_per_second must not be negative")
	}
	if r.Burst < 0 {
		return fmt.Errorf("rpc.burst must not be negative")
	}
	if r.Retry != nil {
		if err := r.Retry.Validate(); err != nil {
			return fmt.Errorf("rpc.retry: %w", err)
		}
	}
	return nil
}

// RetryConfig represents RPC retry configuration with exponential backoff.
type RetryConfig struct {
	// MaxAttempts is the maximum number of attempts (including initial request)
	MaxAttempts int `yaml:"max_attempts" json:"max_attempts" toml:"max_attempts"`

	// InitialBackoff is the initial backoff duration before first retry
	InitialBackoff internalcommon.Duration `yaml:"initial_backoff" json:"initial_backoff" toml:"initial_backoff"`

	// MaxBackoff is the maximum backoff duration
	MaxBackoff internalcommon.Duration `yaml:"max_backoff" json:"max_backoff" toml:"max_backoff"`

	// BackoffMultiplier is the multiplier for exponential backoff
	BackoffMultiplier float64 `yaml:"backoff_multiplier" json:"backoff_multiplier" toml:"backoff_multiplier"`

	// RateLimitMultiplier scales the backoff when the provider reports a rate limit
	RateLimitMultiplier float64 `yaml:"rate_limit_multiplier" json:"rate_limit_multiplier" toml:"rate_limit_multiplier"`
}

// ApplyDefaults sets default values for retry configuration.
func (r *RetryConfig) ApplyDefaults() {
	if r.MaxAttempts == 0 {
		r.MaxAttempts = 5
	}
	if r.InitialBackoff.Duration == 0 {
		r.InitialBackoff = internalcommon.NewDuration(1 * time.Second)
	}
	if r.MaxBackoff.Duration == 0 {
		r.MaxBackoff = internalcommon.NewDuration(30 * time.Second) //nolint:mnd
	}
	if r.BackoffMultiplier == 0 {
		r.BackoffMultiplier = 2.0
	}
	if r.RateLimitMultiplier == 0 {
		r.RateLimitMultiplier = 2.0
	}
}

// Validate checks if the retry configuration is valid.
func (r *RetryConfig) Validate() error {
	if r.MaxAttempts < 1 {
		return fmt.Errorf("max_attempts must be at least 1")
	}
	if r.BackoffMultiplier < 1 {
		return fmt.Errorf("backoff_multiplier must be at least 1")
	}
	if r.RateLimitMultiplier < 1 {
		return fmt.Errorf("rate_limit_multiplier must be at least 1")
	}
	if r.MaxBackoff.Duration < r.InitialBackoff.Duration {
		return fmt.Errorf("max_backoff must not be lower than initial_backoff")
	}
	return nil
}

// FastForward policies understood by the event sync engine.
const (
	FastForwardHeuristic = "heuristic"
	FastForwardNone      = "none"
)

// SyncConfig configures the event sync engine.
type SyncConfig struct {
	// WindowSize is the block range per eth_getLogs call (max 500)
	WindowSize uint64 `yaml:"window_size" json:"window_size" toml:"window_size"`

	// MaxBlocksPerRun caps the blocks scanned by one Sync call (max 50000)
	MaxBlocksPerRun uint64 `yaml:"max_blocks_per_run" json:"max_blocks_per_run" toml:"max_blocks_per_run"`

	// Concurrency is the number of windows fetched in parallel
	Concurrency int `yaml:"concurrency" json:"concurrency" toml:"concurrency"`

	// FastForward selects the empty range skip policy: "heuristic" or "none"
	FastForward string `yaml:"fast_forward" json:"fast_forward" toml:"fast_forward"`

	// ProbeBlocks is the size of the most recent range sampled by the fast forward probe
	ProbeBlocks uint64 `yaml:"probe_blocks" json:"probe_blocks" toml:"probe_blocks"`

	// WindowCacheTTL is how long decoded window results stay cached
	WindowCacheTTL internalcommon.Duration `yaml:"window_cache_ttl" json:"window_cache_ttl" toml:"window_cache_ttl"`
}

// ApplyDefaults sets default values for optional sync configuration fields.
func (s *SyncConfig) ApplyDefaults() {
	if s.WindowSize == 0 {
		s.WindowSize = MaxWindowSize
	}
	if s.MaxBlocksPerRun == 0 {
		s.MaxBlocksPerRun = MaxBlocksPerRun
	}
	if s.Concurrency == 0 {
		s.Concurrency = 5
	}
	if s.FastForward == "" {
		s.FastForward = FastForwardHeuristic
	}
	if s.ProbeBlocks == 0 {
		s.ProbeBlocks = MaxBlocksPerRun
	}
	if s.WindowCacheTTL.Duration == 0 {
		s.WindowCacheTTL = internalcommon.NewDuration(24 * time.Hour) //nolint:mnd
	}
}

// Validate checks if the sync configuration is valid.
func (s *SyncConfig) Validate() error {
	if s.WindowSize > MaxWindowSize {
		return fmt.Errorf("sync.window_size must not exceed %d", MaxWindowSize)
	}
	if s.MaxBlocksPerRun > MaxBlocksPerRun {
		return fmt.Errorf("sync.max_blocks_per_run must not exceed %d", MaxBlocksPerRun)
	}
	if s.MaxBlocksPerRun < s.WindowSize {
		return fmt.Errorf("sync.max_blocks_per_run must be at least sync.window_size")
	}
	if s.WindowSize > 0 && s.MaxBlocksPerRun%s.WindowSize != 0 {
		return fmt.Errorf("sync.max_blocks_per_run must be a multiple of sync.window_size")
	}
	if s.Concurrency < 1 {
		return fmt.Errorf("sync.concurrency must be at least 1")
	}
	if s.FastForward != FastForwardHeuristic && s.FastForward != FastForwardNone {
		return fmt.Errorf("sync.fast_forward must be one of: 'heuristic', 'none'")
	}
	return nil
}

// PopulationConfig configures the orchestrator, the aggregator and the scheduler.
type PopulationConfig struct {
	// BatchSize is the number of contract calls per batch chunk
	BatchSize int `yaml:"batch_size" json:"batch_size" toml:"batch_size"`

	// Concurrency is the number of batch chunks in flight
	Concurrency int `yaml:"concurrency" json:"concurrency" toml:"concurrency"`

	// RefreshInterval is how often the scheduler triggers every enabled collection
	RefreshInterval internalcommon.Duration `yaml:"refresh_interval" json:"refresh_interval" toml:"refresh_interval"`

	// PopulateOnStart triggers every enabled collection when the service starts
	PopulateOnStart bool `yaml:"populate_on_start" json:"populate_on_start" toml:"populate_on_start"`

	// LockTTL bounds how long a crashed run can keep a collection locked
	LockTTL internalcommon.Duration `yaml:"lock_ttl" json:"lock_ttl" toml:"lock_ttl"`

	// MaxErrorLogEntries caps the error log kept in the progress state
	MaxErrorLogEntries int `yaml:"max_error_log_entries" json:"max_error_log_entries" toml:"max_error_log_entries"`
}

// ApplyDefaults sets default values for optional population configuration fields.
func (p *PopulationConfig) ApplyDefaults() {
	if p.BatchSize == 0 {
		p.BatchSize = 100
	}
	if p.Concurrency == 0 {
		p.Concurrency = 5
	}
	if p.RefreshInterval.Duration == 0 {
		p.RefreshInterval = internalcommon.NewDuration(10 * time.Minute) //nolint:mnd
	}
	if p.LockTTL.Duration == 0 {
		p.LockTTL = internalcommon.NewDuration(30 * time.Minute) //nolint:mnd
	}
	if p.MaxErrorLogEntries == 0 {
		p.MaxErrorLogEntries = 500
	}
}

// Validate checks if the population configuration is valid.
func (p *PopulationConfig) Validate() error {
	if p.BatchSize < 1 {
		return fmt.Errorf("population.batch_size must be at least 1")
	}
	if p.Concurrency < 1 {
		return fmt.Errorf("population.concurrency must be at least 1")
	}
	return nil
}

// Store backends.
const (
	StoreBackendMemory = "memory"
	StoreBackendSQLite = "sqlite"
	StoreBackendPebble = "pebble"
	StoreBackendRedis  = "redis"
)

// StoreConfig selects the cache store backend.
type StoreConfig struct {
	// Backend is one of "memory", "sqlite", "pebble", "redis"
	Backend string `yaml:"backend" json:"backend" toml:"backend"`

	// DB configures the sqlite backend
	DB DatabaseConfig `yaml:"db" json:"db" toml:"db"`

	// Maintenance contains optional sqlite maintenance settings
	Maintenance *MaintenanceConfig `yaml:"maintenance,omitempty" json:"maintenance,omitempty" toml:"maintenance,omitempty"`

	// Pebble configures the pebble backend
	Pebble PebbleConfig `yaml:"pebble" json:"pebble" toml:"pebble"`

	// Redis configures the redis backend
	Redis RedisConfig `yaml:"redis" json:"redis" toml:"redis"`
}

// ApplyDefaults sets default values for optional store configuration fields.
func (s *StoreConfig) ApplyDefaults() {
	if s.Backend == "" {
		s.Backend = StoreBackendMemory
	}
	if s.Backend == StoreBackendSQLite {
		s.DB.ApplyDefaults()
		if s.Maintenance != nil {
			s.Maintenance.ApplyDefaults()
		}
	}
	if s.Redis.KeyPrefix == "" {
		s.Redis.KeyPrefix = "holderindexor:"
	}
}

// Validate checks if the store configuration is valid.
func (s *StoreConfig) Validate() error {
	switch s.Backend {
	case StoreBackendMemory:
	case StoreBackendSQLite:
		if s.DB.Path == "" {
			return fmt.Errorf("store.db.path is required for the sqlite backend")
		}
		if err := s.DB.Validate(); err != nil {
			return fmt.Errorf("store.db: %w", err)
		}
		if s.Maintenance != nil {
			if err := s.Maintenance.Validate(); err != nil {
				return fmt.Errorf("store.maintenance: %w", err)
			}
		}
	case StoreBackendPebble:
		if s.Pebble.Path == "" {
			return fmt.Errorf("store.pebble.path is required for the pebble backend")
		}
	case StoreBackendRedis:
		if s.Redis.URL == "" {
			return fmt.Errorf("store.redis.url is required for the redis backend")
		}
	default:
		return fmt.Errorf("store.backend must be one of: memory, sqlite, pebble, redis")
	}
	return nil
}

// PebbleConfig configures the pebble store backend.
type PebbleConfig struct {
	// Path is the directory holding the pebble database
	Path string `yaml:"path" json:"path" toml:"path"`
}

// RedisConfig configures the redis store backend.
type RedisConfig struct {
	// URL is a redis connection URL, e.g. redis://localhost:6379/0
	URL string `yaml:"url" json:"url" toml:"url"`

	// KeyPrefix is prepended to every key written by the indexer
	KeyPrefix string `yaml:"key_prefix" json:"key_prefix" toml:"key_prefix"`
}

// DatabaseConfig represents database configuration.
type DatabaseConfig struct {
	// Path is the file path to the SQLite database
	Path string `yaml:"path" json:"path" toml:"path"`

	// JournalMode sets the SQLite journal mode (e.g., "WAL", "DELETE")
	// WAL mode is recommended for better concurrency
	JournalMode string `yaml:"journal_mode" json:"journal_mode" toml:"journal_mode"`

	// Synchronous sets the synchronization level ("FULL", "NORMAL", "OFF")
	Synchronous string `yaml:"synchronous" json:"synchronous" toml:"synchronous"`

	// BusyTimeout is the time in milliseconds to wait when the database is locked
	BusyTimeout int `yaml:"busy_timeout" json:"busy_timeout" toml:"busy_timeout"`

	// CacheSize is the size of the page cache (negative = KB, positive = pages)
	CacheSize int `yaml:"cache_size" json:"cache_size" toml:"cache_size"`

	// MaxOpenConnections is the maximum number of open database connections
	MaxOpenConnections int `yaml:"max_open_connections" json:"max_open_connections" toml:"max_open_connections"`

	// MaxIdleConnections is the maximum number of idle connections in the pool
	MaxIdleConnections int `yaml:"max_idle_connections" json:"max_idle_connections" toml:"max_idle_connections"`

	// EnableForeignKeys enables foreign key constraint enforcement
	EnableForeignKeys bool `yaml:"enable_foreign_keys" json:"enable_foreign_keys" toml:"enable_foreign_keys"`
}

// ApplyDefaults sets default values for optional database configuration fields.
func (d *DatabaseConfig) ApplyDefaults() {
	if d.JournalMode == "" {
		d.JournalMode = "WAL"
	}
	if d.Synchronous == "" {
		d.Synchronous = "NORMAL"
	}
	if d.BusyTimeout == 0 {
		d.BusyTimeout = 5000
	}
	if d.CacheSize == 0 {
		d.CacheSize = 10000
	}
	if d.MaxOpenConnections == 0 {
		d.MaxOpenConnections = 25
	}
	if d.MaxIdleConnections == 0 {
		d.MaxIdleConnections = 5
	}
}

// Validate checks the sqlite pragmas.
func (d *DatabaseConfig) Validate() error {
	if d.JournalMode != "" &&
		!slices.Contains([]string{"WAL", "DELETE", "TRUNCATE", "PERSIST", "MEMORY"}, d.JournalMode) {
		return fmt.Errorf("journal_mode must be one of: WAL, DELETE, TRUNCATE, PERSIST, MEMORY")
	}
	if d.Synchronous != "" && !slices.Contains([]string{"FULL", "NORMAL", "OFF"}, d.Synchronous) {
		return fmt.Errorf("synchronous must be one of: FULL, NORMAL, OFF")
	}
	return nil
}

// MaintenanceConfig configures database maintenance behavior.
type MaintenanceConfig struct {
	// Enabled controls whether background maintenance runs
	Enabled bool `yaml:"enabled" json:"enabled" toml:"enabled"`

	// CheckInterval is how often to run maintenance (e.g., "30m", "1h")
	CheckInterval internalcommon.Duration `yaml:"check_interval" json:"check_interval" toml:"check_interval"`

	// VacuumOnStartup runs maintenance immediately on startup
	VacuumOnStartup bool `yaml:"vacuum_on_startup" json:"vacuum_on_startup" toml:"vacuum_on_startup"`

	// WALCheckpointMode controls the WAL checkpoint aggressiveness
	// Options: PASSIVE, FULL, RESTART, TRUNCATE
	WALCheckpointMode string `yaml:"wal_checkpoint_mode" json:"wal_checkpoint_mode" toml:"wal_checkpoint_mode"`
}

// ApplyDefaults sets default values for optional maintenance configuration fields.
func (m *MaintenanceConfig) ApplyDefaults() {
	if m.CheckInterval.Duration == 0 {
		m.CheckInterval = internalcommon.NewDuration(30 * time.Minute) //nolint:mnd
	}
	if m.WALCheckpointMode == "" {
		m.WALCheckpointMode = "TRUNCATE"
	}
}

// Validate checks if the maintenance configuration is valid.
func (m *MaintenanceConfig) Validate() error {
	if m.WALCheckpointMode != "" {
		validModes := []string{"PASSIVE", "FULL", "RESTART", "TRUNCATE"}
		if !slices.Contains(validModes, m.WALCheckpointMode) {
			return fmt.Errorf("wal_checkpoint_mode: must be one of: PASSIVE, FULL, RESTART, TRUNCATE")
		}
	}

	return nil
}

// Reward strategies.
const (
	RewardStrategyPool        = "pool"
	RewardStrategyShareVested = "share_vested"
	RewardStrategyCycle       = "cycle"
)

// TierConfig describes one tier of a collection.
type TierConfig struct {
	// ID is the value returned by the tier contract for tokens of this tier
	ID uint64 `yaml:"id" json:"id" toml:"id"`

	// Name is a display name, e.g. "Gold"
	Name string `yaml:"name" json:"name" toml:"name"`

	// Multiplier is the reward weight of one token of this tier
	Multiplier uint64 `yaml:"multiplier" json:"multiplier" toml:"multiplier"`
}

// CollectionConfig describes one indexed NFT collection.
type CollectionConfig struct {
	// Name is a unique identifier used in cache keys and API routes
	Name string `yaml:"name" json:"name" toml:"name"`

	// Address is the ERC-721 contract address
	Address string `yaml:"address" json:"address" toml:"address"`

	// TierAddress is the contract answering getTier(tokenId); defaults to Address
	TierAddress string `yaml:"tier_address,omitempty" json:"tier_address,omitempty" toml:"tier_address,omitempty"`

	// VaultAddress is the reward contract queried by the reward strategy
	VaultAddress string `yaml:"vault_address,omitempty" json:"vault_address,omitempty" toml:"vault_address,omitempty"`

	// DeploymentBlock is the first block replayed for this collection
	DeploymentBlock uint64 `yaml:"deployment_block" json:"deployment_block" toml:"deployment_block"`

	// Tiers is the tier table, in display order
	Tiers []TierConfig `yaml:"tiers" json:"tiers" toml:"tiers"`

	// RewardStrategy is one of "pool", "share_vested", "cycle"
	RewardStrategy string `yaml:"reward_strategy" json:"reward_strategy" toml:"reward_strategy"`

	// HasBurnCounter reads totalBurned() from the contract instead of counting replayed burns
	HasBurnCounter bool `yaml:"has_burn_counter" json:"has_burn_counter" toml:"has_burn_counter"`

	// Enabled controls whether the collection is indexed (default true)
	Enabled *bool `yaml:"enabled,omitempty" json:"enabled,omitempty" toml:"enabled,omitempty"`

	// BurnAddresses are extra recipients treated as burns; the zero address is always one
	BurnAddresses []string `yaml:"burn_addresses,omitempty" json:"burn_addresses,omitempty" toml:"burn_addresses,omitempty"`
}

// IsEnabled reports whether the collection should be indexed.
func (c *CollectionConfig) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

// ContractAddress returns the parsed ERC-721 address.
func (c *CollectionConfig) ContractAddress() common.Address {
	return common.HexToAddress(c.Address)
}

// TierContractAddress returns the contract answering getTier.
func (c *CollectionConfig) TierContractAddress() common.Address {
	if c.TierAddress == "" {
		return c.ContractAddress()
	}
	return common.HexToAddress(c.TierAddress)
}

// VaultContractAddress returns the reward contract address.
func (c *CollectionConfig) VaultContractAddress() common.Address {
	return common.HexToAddress(c.VaultAddress)
}

// BurnAddressSet returns the configured burn addresses plus the zero address.
func (c *CollectionConfig) BurnAddressSet() map[common.Address]struct{} {
	set := map[common.Address]struct{}{{}: {}}
	for _, a := range c.BurnAddresses {
		set[common.HexToAddress(a)] = struct{}{}
	}
	return set
}

// TierIndex returns the position of a tier id in the tier table.
func (c *CollectionConfig) TierIndex(id uint64) (int, bool) {
	for i, t := range c.Tiers {
		if t.ID == id {
			return i, true
		}
	}
	return 0, false
}

// Multipliers returns the tier multipliers in tier table order.
func (c *CollectionConfig) Multipliers() []uint64 {
	out := make([]uint64, len(c.Tiers))
	for i, t := range c.Tiers {
		out[i] = t.Multiplier
	}
	return out
}

// ApplyDefaults sets default values for optional collection fields.
func (c *CollectionConfig) ApplyDefaults() {
	if c.RewardStrategy == "" {
		c.RewardStrategy = RewardStrategyPool
	}
}

// Validate checks a single collection.
func (c *CollectionConfig) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("name is required")
	}
	if strings.ContainsAny(c.Name, " /_") {
		return fmt.Errorf("name must not contain spaces, slashes or underscores")
	}
	if !common.IsHexAddress(c.Address) {
		return fmt.Errorf("address must be a hex address")
	}
	if c.TierAddress != "" && !common.IsHexAddress(c.TierAddress) {
		return fmt.Errorf("tier_address must be a hex address")
	}
	if len(c.Tiers) == 0 {
		return fmt.Errorf("at least one tier must be configured")
	}
	seen := make(map[uint64]struct{}, len(c.Tiers))
	for i, t := range c.Tiers {
		if _, dup := seen[t.ID]; dup {
			return fmt.Errorf("tiers[%d]: duplicate tier id %d", i, t.ID)
		}
		seen[t.ID] = struct{}{}
	}
	switch c.RewardStrategy {
	case RewardStrategyPool, RewardStrategyShareVested, RewardStrategyCycle:
	default:
		return fmt.Errorf("reward_strategy must be one of: pool, share_vested, cycle")
	}
	if !common.IsHexAddress(c.VaultAddress) {
		return fmt.Errorf("vault_address is required for the %s reward strategy", c.RewardStrategy)
	}
	for i, a := range c.BurnAddresses {
		if !common.IsHexAddress(a) {
			return fmt.Errorf("burn_addresses[%d]: must be a hex address", i)
		}
	}
	return nil
}

// LoggingConfig configures logging behavior with per-component log levels.
type LoggingConfig struct {
	// DefaultLevel is the default log level for all components
	// Options: "debug", "info", "warn", "error"
	DefaultLevel string `yaml:"default_level" json:"default_level" toml:"default_level"`

	// Development enables development mode (stack traces, console encoder)
	Development bool `yaml:"development" json:"development" toml:"development"`

	// ComponentLevels sets log levels for specific components
	// Available components:
	//   - chain-reader: RPC access
	//   - event-sync: Transfer event replay
	//   - reconstructor: Holder state reconstruction
	//   - aggregator: Tier and reward aggregation
	//   - population: Population state machine
	//   - scheduler: Periodic refresh
	//   - store: Cache store backend
	//   - api: REST API
	//   - maintenance: Database maintenance
	ComponentLevels map[string]string `yaml:"component_levels,omitempty" json:"component_levels,omitempty" toml:"component_levels,omitempty"` //nolint:lll

	// File enables an additional rotated JSON log file
	File *LogFileConfig `yaml:"file,omitempty" json:"file,omitempty" toml:"file,omitempty"`
}

// LogFileConfig configures the rotated log file.
type LogFileConfig struct {
	Path       string `yaml:"path" json:"path" toml:"path"`
	MaxSizeMB  int    `yaml:"max_size_mb" json:"max_size_mb" toml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups" json:"max_backups" toml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days" json:"max_age_days" toml:"max_age_days"`
	Compress   bool   `yaml:"compress" json:"compress" toml:"compress"`
}

// ApplyDefaults sets default values for optional logging configuration fields.
func (l *LoggingConfig) ApplyDefaults() {
	if l.DefaultLevel == "" {
		l.DefaultLevel = "info"
	}
	if l.ComponentLevels == nil {
		l.ComponentLevels = make(map[string]string)
	}
	if l.File != nil {
		if l.File.MaxSizeMB == 0 {
			l.File.MaxSizeMB = 100
		}
		if l.File.MaxBackups == 0 {
			l.File.MaxBackups = 5
		}
		if l.File.MaxAgeDays == 0 {
			l.File.MaxAgeDays = 28
		}
	}
}

// Validate checks if the logging configuration is valid.
func (l *LoggingConfig) Validate() error {
	if l.DefaultLevel != "" {
		if _, valid := logger.ValidLogLevels[internalcommon.ToLowerWithTrim(l.DefaultLevel)]; !valid {
			return fmt.Errorf("logging.default_level: must be one of: debug, info, warn, error")
		}
	}

	for component, level := range l.ComponentLevels {
		if _, validComponent := internalcommon.AllComponents[internalcommon.ToLowerWithTrim(component)]; !validComponent {
			return fmt.Errorf("logging.component_levels: unknown component '%s'", component)
		}

		if _, valid := logger.ValidLogLevels[internalcommon.ToLowerWithTrim(level)]; !valid {
			return fmt.Errorf("logging.component_levels[%s]: must be one of: debug, info, warn, error", component)
		}
	}

	if l.File != nil && l.File.Path == "" {
		return fmt.Errorf("logging.file.path is required when file logging is configured")
	}

	return nil
}

// GetComponentLevel returns the log level for a specific component.
// Falls back to DefaultLevel if no component-specific level is set.
func (l *LoggingConfig) GetComponentLevel(component string) string {
	if level, ok := l.ComponentLevels[component]; ok {
		return internalcommon.ToLowerWithTrim(level)
	}
	return internalcommon.ToLowerWithTrim(l.DefaultLevel)
}

// GetDefaultLevel returns the default log level.
func (l *LoggingConfig) GetDefaultLevel() string {
	return internalcommon.ToLowerWithTrim(l.DefaultLevel)
}

// IsDevelopment returns whether development mode is enabled.
func (l *LoggingConfig) IsDevelopment() bool {
	return l.Development
}

// MetricsConfig configures Prometheus metrics exposition.
type MetricsConfig struct {
	// Enabled controls whether metrics collection and HTTP endpoint are active
	Enabled bool `yaml:"enabled" json:"enabled" toml:"enabled"`

	// ListenAddress is the address to bind the metrics HTTP server to
	// Format: "host:port" or ":port"
	ListenAddress string `yaml:"listen_address" json:"listen_address" toml:"listen_address"`

	// Path is the HTTP path where metrics are exposed
	Path string `yaml:"path" json:"path" toml:"path"`
}

// ApplyDefaults sets default values for optional metrics configuration fields.
func (m *MetricsConfig) ApplyDefaults() {
	if m.ListenAddress == "" {
		m.ListenAddress = ":9090"
	}
	if m.Path == "" {
		m.Path = "/metrics"
	}
}

// Validate checks if the metrics configuration is valid.
func (m *MetricsConfig) Validate() error {
	if m.Enabled {
		if m.ListenAddress == "" {
			return fmt.Errorf("listen_address is required when metrics are enabled")
		}
		if m.Path == "" {
			return fmt.Errorf("path is required when metrics are enabled")
		}
		if m.Path[0] != '/' {
			return fmt.Errorf("path must start with '/'")
		}
	}
	return nil
}

// APIConfig configures the REST API server.
type APIConfig struct {
	// Enabled controls whether the API server is started
	Enabled bool `yaml:"enabled" json:"enabled" toml:"enabled"`

	// ListenAddress is the address to bind the API server to
	ListenAddress string `yaml:"listen_address" json:"listen_address" toml:"listen_address"`

	ReadTimeout  internalcommon.Duration `yaml:"read_timeout" json:"read_timeout" toml:"read_timeout"`
	WriteTimeout internalcommon.Duration `yaml:"write_timeout" json:"write_timeout" toml:"write_timeout"`
	IdleTimeout  internalcommon.Duration `yaml:"idle_timeout" json:"idle_timeout" toml:"idle_timeout"`

	// CORS configures cross origin access
	CORS CORSConfig `yaml:"cors" json:"cors" toml:"cors"`
}

// CORSConfig configures CORS headers.
type CORSConfig struct {
	Enabled        bool     `yaml:"enabled" json:"enabled" toml:"enabled"`
	AllowedOrigins []string `yaml:"allowed_origins" json:"allowed_origins" toml:"allowed_origins"`
}

// ApplyDefaults sets default values for optional API configuration fields.
func (a *APIConfig) ApplyDefaults() {
	if a.ListenAddress == "" {
		a.ListenAddress = ":8080"
	}
	if a.ReadTimeout.Duration == 0 {
		a.ReadTimeout = internalcommon.NewDuration(15 * time.Second) //nolint:mnd
	}
	if a.WriteTimeout.Duration == 0 {
		a.WriteTimeout = internalcommon.NewDuration(15 * time.Second) //nolint:mnd
	}
	if a.IdleTimeout.Duration == 0 {
		a.IdleTimeout = internalcommon.NewDuration(60 * time.Second) //nolint:mnd
	}
	if a.CORS.Enabled && len(a.CORS.AllowedOrigins) == 0 {
		a.CORS.AllowedOrigins = []string{"*"}
	}
}

// Validate checks if the API configuration is valid.
func (a *APIConfig) Validate() error {
	if a.Enabled && a.ListenAddress == "" {
		return fmt.Errorf("listen_address is required when the API is enabled")
	}
	return nil
}

// ApplyDefaults sets default values for optional configuration fields.
func (c *Config) ApplyDefaults() {
	c.RPC.ApplyDefaults()
	c.Sync.ApplyDefaults()
	c.Population.ApplyDefaults()
	c.Store.ApplyDefaults()

	for i := range c.Collections {
		c.Collections[i].ApplyDefaults()
	}

	if c.Logging != nil {
		c.Logging.ApplyDefaults()
	}

	if c.Metrics != nil {
		c.Metrics.ApplyDefaults()
	}

	if c.API != nil {
		c.API.ApplyDefaults()
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if err := c.RPC.Validate(); err != nil {
		return err
	}

	if err := c.Sync.Validate(); err != nil {
		return err
	}

	if err := c.Population.Validate(); err != nil {
		return err
	}

	if err := c.Store.Validate(); err != nil {
		return err
	}

	if c.Logging != nil {
		if err := c.Logging.Validate(); err != nil {
			return err
		}
	}

	if c.Metrics != nil {
		if err := c.Metrics.Validate(); err != nil {
			return fmt.Errorf("metrics: %w", err)
		}
	}

	if c.API != nil {
		if err := c.API.Validate(); err != nil {
			return fmt.Errorf("api: %w", err)
		}
	}

	if len(c.Collections) == 0 {
		return fmt.Errorf("at least one collection must be configured")
	}

	names := make(map[string]bool)
	for i := range c.Collections {
		col := &c.Collections[i]
		if err := col.Validate(); err != nil {
			return fmt.Errorf("collections[%d] (%s): %w", i, col.Name, err)
		}
		if names[col.Name] {
			return fmt.Errorf("collections[%d]: duplicate collection name '%s'", i, col.Name)
		}
		names[col.Name] = true
	}

	return nil
}

// Collection returns the named collection or nil.
func (c *Config) Collection(name string) *CollectionConfig {
	for i := range c.Collections {
		if c.Collections[i].Name == name {
			return &c.Collections[i]
		}
	}
	return nil
}
