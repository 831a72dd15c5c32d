package rewards

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/goran-ethernal/HolderIndexor/internal/batch"
	"github.com/goran-ethernal/HolderIndexor/internal/logger"
	"github.com/goran-ethernal/HolderIndexor/pkg/config"
	"github.com/goran-ethernal/HolderIndexor/pkg/holders"
	"github.com/goran-ethernal/HolderIndexor/pkg/rpc"
)

// ErrUnknownStrategy is returned when no strategy is registered under a name.
var ErrUnknownStrategy = errors.New("unknown reward strategy")

// Strategy reads the collection specific reward figures.
//
// A strategy never fails a run: a failed call zeroes the figure and is
// reported as an error log entry.
type Strategy interface {
	// Globals reads the strategy wide figures.
	Globals(ctx context.Context, collection config.CollectionConfig) (map[string]holders.Amount, []holders.ErrorLogEntry)

	// CallsPerHolder is the number of contract calls HolderRewards makes per holder.
	CallsPerHolder() int

	// HolderRewards reads the per holder figures of hs into their Rewards.
	// progress counts calls, CallsPerHolder per holder.
	HolderRewards(
		ctx context.Context,
		collection config.CollectionConfig,
		hs []*holders.Holder,
		progress batch.Progress,
	) []holders.ErrorLogEntry

	// Derive computes the figures that depend on globals or the multiplier pool.
	// It runs for every holder, not only the ones read from chain.
	Derive(hs []*holders.Holder, globals map[string]holders.Amount, pool uint64)
}

// Factory creates a strategy bound to a chain reader.
type Factory func(reader rpc.ChainReader, caller *batch.Caller, log *logger.Logger) Strategy

var (
	registry = make(map[string]Factory)
	mu       sync.RWMutex
)

// Register registers a strategy factory. Names are case-insensitive.
func Register(name string, factory Factory) {
	mu.Lock()
	defer mu.Unlock()
	name = strings.ToLower(name)
	if _, exists := registry[name]; exists {
		logger.GetDefaultLogger().Infof("reward strategy %s already registered, it will be overwritten", name)
	}

	registry[name] = factory
}

// ListRegistered returns the registered strategy names, sorted.
func ListRegistered() []string {
	mu.RLock()
	defer mu.RUnlock()

	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// Create creates the strategy registered under name.
func Create(name string, reader rpc.ChainReader, caller *batch.Caller, log *logger.Logger) (Strategy, error) {
	mu.RLock()
	factory := registry[strings.ToLower(name)]
	mu.RUnlock()

	if factory == nil {
		return nil, fmt.Errorf("%w: %s (registered strategies: %v)", ErrUnknownStrategy, name, ListRegistered())
	}

	return factory(reader, caller, log), nil
}
