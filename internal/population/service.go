package population

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/goran-ethernal/HolderIndexor/internal/common"
	"github.com/goran-ethernal/HolderIndexor/internal/logger"
	"github.com/goran-ethernal/HolderIndexor/pkg/config"
	"github.com/goran-ethernal/HolderIndexor/pkg/holders"
	"github.com/jellydator/ttlcache/v3"
)

const (
	// DefaultPageSize is used when no page size is requested.
	DefaultPageSize = 50
	// MaxPageSize caps the requested page size.
	MaxPageSize = 1000

	snapshotCacheTTL = 30 * time.Second
)

// CollectionInfo describes a configured collection.
type CollectionInfo struct {
	Name           string              `json:"name"`
	Address        string              `json:"address"`
	VaultAddress   string              `json:"vaultAddress,omitempty"`
	RewardStrategy string              `json:"rewardStrategy"`
	Tiers          []config.TierConfig `json:"tiers"`
	Enabled        bool                `json:"enabled"`
}

// Service is the query surface over committed snapshots.
// Snapshots handed out are shared and must not be modified.
type Service struct {
	cfg          *config.Config
	orchestrator *Orchestrator
	log          *logger.Logger

	mu        sync.Mutex
	snapshots *ttlcache.Cache[string, *holders.Snapshot]
}

// NewService creates a new Service and subscribes it to committed snapshots.
func NewService(cfg *config.Config, orchestrator *Orchestrator, log *logger.Logger) *Service {
	s := &Service{
		cfg:          cfg,
		orchestrator: orchestrator,
		log:          log.WithComponent(common.ComponentPopulation),
		snapshots: ttlcache.New(
			ttlcache.WithTTL[string, *holders.Snapshot](snapshotCacheTTL),
			ttlcache.WithDisableTouchOnHit[string, *holders.Snapshot](),
		),
	}

	orchestrator.OnCommit(func(snapshot *holders.Snapshot) {
		s.snapshots.Set(snapshot.Collection, snapshot, ttlcache.DefaultTTL)
	})

	return s
}

// Collections lists every configured collection, disabled ones included.
func (s *Service) Collections() []CollectionInfo {
	out := make([]CollectionInfo, 0, len(s.cfg.Collections))
	for _, c := range s.cfg.Collections {
		out = append(out, CollectionInfo{
			Name:           c.Name,
			Address:        c.Address,
			VaultAddress:   c.VaultAddress,
			RewardStrategy: c.RewardStrategy,
			Tiers:          c.Tiers,
			Enabled:        c.IsEnabled(),
		})
	}
	return out
}

// ListHolders returns one page of the holders of a collection, ordered by rank.
// page is 1-based; a zero page or page size selects the default.
func (s *Service) ListHolders(ctx context.Context, collection string, page, pageSize int) (*holders.HolderPage, error) {
	if page < 0 || pageSize < 0 {
		return nil, fmt.Errorf("%w: page and pageSize must not be negative", ErrInvalidArgument)
	}
	if page == 0 {
		page = 1
	}
	if pageSize == 0 {
		pageSize = DefaultPageSize
	}
	pageSize = min(pageSize, MaxPageSize)

	snapshot, err := s.snapshot(ctx, collection)
	if err != nil {
		return nil, err
	}

	result := &holders.HolderPage{
		Holders:  []*holders.Holder{},
		Page:     page,
		PageSize: pageSize,
	}
	if snapshot == nil {
		return result, nil
	}

	total := len(snapshot.Holders)
	result.TotalPages = (total + pageSize - 1) / pageSize
	result.Summary = Summarize(snapshot)

	if page > result.TotalPages {
		return result, nil
	}
	start := (page - 1) * pageSize
	result.Holders = snapshot.Holders[start:min(start+pageSize, total)]

	return result, nil
}

// GetHolder looks a wallet up in the committed snapshot, case-insensitively.
func (s *Service) GetHolder(ctx context.Context, collection, wallet string) (*holders.Holder, bool, error) {
	wallet = strings.TrimSpace(wallet)
	if !ethcommon.IsHexAddress(wallet) {
		return nil, false, fmt.Errorf("%w: %q is not a wallet address", ErrInvalidArgument, wallet)
	}

	snapshot, err := s.snapshot(ctx, collection)
	if err != nil || snapshot == nil {
		return nil, false, err
	}

	h, found := snapshot.HolderByWallet(ethcommon.HexToAddress(wallet))
	return h, found, nil
}

// GetProgress returns the progress of the latest population of a collection.
func (s *Service) GetProgress(ctx context.Context, collection string) (*holders.ProgressState, error) {
	if _, err := s.orchestrator.Collection(collection); err != nil {
		return nil, err
	}
	return s.orchestrator.Progress(ctx, collection)
}

// TriggerPopulation starts a background population of a collection.
func (s *Service) TriggerPopulation(ctx context.Context, collection string, force bool) (holders.TriggerStatus, error) {
	return s.orchestrator.Trigger(ctx, collection, force)
}

// Close drops the cached snapshots.
func (s *Service) Close() {
	s.snapshots.DeleteAll()
}

// snapshot returns the committed snapshot of an enabled collection, nil when none was committed yet.
func (s *Service) snapshot(ctx context.Context, collection string) (*holders.Snapshot, error) {
	if _, err := s.orchestrator.Collection(collection); err != nil {
		return nil, err
	}

	// one loader at a time so a cold cache is filled once
	s.mu.Lock()
	defer s.mu.Unlock()

	if item := s.snapshots.Get(collection); item != nil {
		return item.Value(), nil
	}

	snapshot, found, err := s.orchestrator.Snapshot(ctx, collection)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}

	s.log.Debugf("loaded snapshot of %s with %d holders", collection, len(snapshot.Holders))

	s.snapshots.Set(collection, snapshot, ttlcache.DefaultTTL)
	return snapshot, nil
}

// Summarize describes a snapshot without its holders.
func Summarize(snapshot *holders.Snapshot) holders.Summary {
	return holders.Summary{
		HolderCount:        len(snapshot.Holders),
		TotalBurned:        snapshot.TotalBurned,
		TotalMinted:        snapshot.TotalMinted,
		LiveSupply:         snapshot.LiveSupply,
		MultiplierPool:     snapshot.MultiplierPool,
		TierDistribution:   snapshot.TierDistribution,
		Globals:            snapshot.Globals,
		LastProcessedBlock: snapshot.LastProcessedBlock,
		LastUpdated:        snapshot.Timestamp,
	}
}
