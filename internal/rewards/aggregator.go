// Package rewards computes tiers, multiplier sums, reward figures and ranks of holders.
package rewards

import (
	"bytes"
	"cmp"
	"context"
	"fmt"
	"math/big"
	"slices"

	"github.com/ethereum/go-ethereum/common"
	"github.com/goran-ethernal/HolderIndexor/internal/batch"
	icommon "github.com/goran-ethernal/HolderIndexor/internal/common"
	"github.com/goran-ethernal/HolderIndexor/internal/contracts"
	"github.com/goran-ethernal/HolderIndexor/internal/logger"
	"github.com/goran-ethernal/HolderIndexor/pkg/config"
	"github.com/goran-ethernal/HolderIndexor/pkg/holders"
	"github.com/goran-ethernal/HolderIndexor/pkg/rpc"
)

// Result is the aggregated holder set of a collection.
type Result struct {
	// Holders are ordered by rank
	Holders          []*holders.Holder
	Globals          map[string]holders.Amount
	ErrorLog         []holders.ErrorLogEntry
	TierDistribution []uint64
	MultiplierPool   uint64
}

// Aggregator reads tiers and rewards of holders and derives the pool figures.
type Aggregator struct {
	reader rpc.ChainReader
	caller *batch.Caller
	log    *logger.Logger
}

// NewAggregator creates a new Aggregator.
func NewAggregator(cfg config.PopulationConfig, reader rpc.ChainReader, log *logger.Logger) *Aggregator {
	return &Aggregator{
		reader: reader,
		caller: batch.NewCaller(reader, cfg.BatchSize, cfg.Concurrency),
		log:    log.WithComponent(icommon.ComponentAggregator),
	}
}

// Aggregate refreshes the touched holders from chain and recomputes the derived
// figures of all holders. Holders with tokens of unknown tier are refreshed too.
//
// Failed lookups are reported in the error log and never fail the call; an error
// is returned only for an unusable reward strategy or a cancelled context.
func (a *Aggregator) Aggregate(
	ctx context.Context,
	collection config.CollectionConfig,
	all map[common.Address]*holders.Holder,
	touched []common.Address,
	progress batch.Progress,
) (*Result, error) {
	strategy, err := Create(collection.RewardStrategy, a.reader, a.caller, a.log)
	if err != nil {
		return nil, err
	}

	refresh := refreshSet(all, touched)

	var tokenCount int
	for _, h := range refresh {
		tokenCount += len(h.TokenIDs)
	}
	total := tokenCount + strategy.CallsPerHolder()*len(refresh)

	a.log.Infow("aggregating holders",
		"collection", collection.Name,
		"strategy", collection.RewardStrategy,
		"holders", len(all),
		"refresh", len(refresh),
		"tierLookups", tokenCount,
	)

	errLog := a.fetchTiers(ctx, collection, refresh, offset(progress, 0, total))

	globals, globalErrs := strategy.Globals(ctx, collection)
	errLog = append(errLog, globalErrs...)

	if len(refresh) > 0 {
		errLog = append(errLog, strategy.HolderRewards(ctx, collection, refresh, offset(progress, tokenCount, total))...)
	}

	// cancelled lookups are not data errors, the run must not commit them
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("aggregation of %s interrupted: %w", collection.Name, err)
	}

	recordFailures(collection.Name, errLog)

	res := &Result{
		Holders:  make([]*holders.Holder, 0, len(all)),
		Globals:  globals,
		ErrorLog: errLog,
	}
	for _, h := range all {
		res.Holders = append(res.Holders, h)
	}

	res.MultiplierPool, res.TierDistribution = applyMultipliers(res.Holders, collection.Multipliers())
	applyPercentages(res.Holders, res.MultiplierPool)
	strategy.Derive(res.Holders, globals, res.MultiplierPool)
	Rank(res.Holders)

	a.log.Infow("aggregated holders",
		"collection", collection.Name,
		"holders", len(res.Holders),
		"multiplierPool", res.MultiplierPool,
		"errors", len(errLog),
	)

	return res, nil
}

func refreshSet(all map[common.Address]*holders.Holder, touched []common.Address) []*holders.Holder {
	seen := make(map[common.Address]struct{}, len(touched))
	var out []*holders.Holder

	for _, wallet := range touched {
		if h, ok := all[wallet]; ok {
			seen[wallet] = struct{}{}
			out = append(out, h)
		}
	}
	for wallet, h := range all {
		if _, ok := seen[wallet]; ok || len(h.UnknownTierTokens) == 0 {
			continue
		}
		out = append(out, h)
	}

	slices.SortFunc(out, func(x, y *holders.Holder) int {
		return bytes.Compare(x.Wallet.Bytes(), y.Wallet.Bytes())
	})
	return out
}

// fetchTiers recounts the tiers of hs from getTier lookups.
// Tokens whose lookup fails or returns an unknown tier id stay owned but are
// listed in UnknownTierTokens instead of being counted.
func (a *Aggregator) fetchTiers(
	ctx context.Context,
	collection config.CollectionConfig,
	hs []*holders.Holder,
	progress batch.Progress,
) []holders.ErrorLogEntry {
	tierContract := collection.TierContractAddress()

	type ref struct {
		holder  *holders.Holder
		tokenID uint64
	}

	var (
		refs  []ref
		calls []rpc.Call
	)
	for _, h := range hs {
		h.Tiers = make([]uint64, len(collection.Tiers))
		h.UnknownTierTokens = nil
		for _, id := range h.TokenIDs {
			refs = append(refs, ref{holder: h, tokenID: id})
			calls = append(calls, rpc.Call{
				To:     tierContract,
				ABI:    contracts.Tier,
				Method: contracts.MethodGetTier,
				Args:   []any{new(big.Int).SetUint64(id)},
			})
		}
	}
	if len(calls) == 0 {
		return nil
	}
	tierLookups.WithLabelValues(collection.Name).Add(float64(len(calls)))

	var errLog []holders.ErrorLogEntry
	for i, res := range a.caller.Call(ctx, calls, progress) {
		r := refs[i]

		idx, err := tierIndex(collection, res)
		if err != nil {
			a.log.Warnf("tier of token %d of %s unknown: %v", r.tokenID, collection.Name, err)
			r.holder.UnknownTierTokens = append(r.holder.UnknownTierTokens, r.tokenID)
			errLog = append(errLog, tokenEntry(holders.PhaseFetchTier, r.tokenID, err))
			continue
		}
		r.holder.Tiers[idx]++
	}

	return errLog
}

func tierIndex(collection config.CollectionConfig, res rpc.CallResult) (int, error) {
	if res.Err != nil {
		return 0, fmt.Errorf("getTier: %w", res.Err)
	}
	id, err := contracts.Uint64(res.Values)
	if err != nil {
		return 0, fmt.Errorf("malformed getTier: %w", err)
	}
	idx, ok := collection.TierIndex(id)
	if !ok {
		return 0, fmt.Errorf("unexpected tier id %d", id)
	}
	return idx, nil
}

// applyMultipliers recomputes every multiplierSum from tiers and returns the pool and the tier distribution.
func applyMultipliers(hs []*holders.Holder, multipliers []uint64) (uint64, []uint64) {
	distribution := make([]uint64, len(multipliers))
	var pool uint64

	for _, h := range hs {
		h.MultiplierSum = 0
		for i, count := range h.Tiers {
			if i >= len(multipliers) {
				break
			}
			h.MultiplierSum += count * multipliers[i]
			distribution[i] += count
		}
		pool += h.MultiplierSum
	}

	return pool, distribution
}

// applyPercentages sets each holder's share of the multiplier pool, all zero for an empty pool.
func applyPercentages(hs []*holders.Holder, pool uint64) {
	for _, h := range hs {
		if pool == 0 {
			h.PercentageOfPool = 0
			continue
		}
		h.PercentageOfPool = float64(h.MultiplierSum) * 100 / float64(pool)
	}
}

// Rank orders hs by multiplierSum descending, then token count descending,
// then wallet ascending, and assigns 1-based ranks.
func Rank(hs []*holders.Holder) {
	slices.SortFunc(hs, func(x, y *holders.Holder) int {
		if c := cmp.Compare(y.MultiplierSum, x.MultiplierSum); c != 0 {
			return c
		}
		if c := cmp.Compare(len(y.TokenIDs), len(x.TokenIDs)); c != 0 {
			return c
		}
		return bytes.Compare(x.Wallet.Bytes(), y.Wallet.Bytes())
	})

	for i, h := range hs {
		h.Rank = i + 1
	}
}
