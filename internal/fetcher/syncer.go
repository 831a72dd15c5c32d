package fetcher

import (
	"context"
	"fmt"
	"math/big"
	"slices"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/goran-ethernal/HolderIndexor/internal/common"
	"github.com/goran-ethernal/HolderIndexor/internal/contracts"
	"github.com/goran-ethernal/HolderIndexor/internal/logger"
	irpc "github.com/goran-ethernal/HolderIndexor/internal/rpc"
	"github.com/goran-ethernal/HolderIndexor/pkg/config"
	"github.com/goran-ethernal/HolderIndexor/pkg/holders"
	"github.com/goran-ethernal/HolderIndexor/pkg/rpc"
	"github.com/goran-ethernal/HolderIndexor/pkg/store"
	"golang.org/x/sync/errgroup"
)

// FastForwardPolicy selects whether presumably empty block ranges are skipped.
type FastForwardPolicy string

const (
	// FastForwardHeuristic samples the most recent blocks and skips everything before them when the sample is empty
	FastForwardHeuristic FastForwardPolicy = config.FastForwardHeuristic
	// FastForwardNone always scans every block
	FastForwardNone FastForwardPolicy = config.FastForwardNone
)

// Result is the outcome of one Sync call.
type Result struct {
	// Deltas are ordered by block and log index
	Deltas []holders.EventDelta

	// Checkpoint is the new frontier, to be committed together with the snapshot
	Checkpoint holders.Checkpoint

	// CaughtUp is true when Checkpoint reached the head block
	CaughtUp bool

	// BlocksScanned counts the blocks covered by fetched or cached windows
	BlocksScanned uint64

	// Skipped is the range jumped over by the fast forward probe, if any
	Skipped *holders.BlockRange
}

// Syncer replays Transfer events of a collection from its checkpoint towards the head block.
type Syncer struct {
	reader rpc.ChainReader
	store  store.Store
	cfg    config.SyncConfig
	policy FastForwardPolicy
	log    *logger.Logger
	now    func() time.Time
}

// NewSyncer creates a new Syncer. cfg must have defaults applied.
func NewSyncer(cfg config.SyncConfig, reader rpc.ChainReader, st store.Store, log *logger.Logger) *Syncer {
	return &Syncer{
		reader: reader,
		store:  st,
		cfg:    cfg,
		policy: FastForwardPolicy(cfg.FastForward),
		log:    log.WithComponent(common.ComponentEventSync),
		now:    time.Now,
	}
}

// Sync scans at most MaxBlocksPerRun blocks after the checkpoint and returns the decoded deltas.
// When the result is not CaughtUp the caller is expected to call Sync again with the new checkpoint.
// A window that fails after retries aborts the call; windows fetched so far stay cached.
func (s *Syncer) Sync(
	ctx context.Context,
	collection config.CollectionConfig,
	checkpoint holders.Checkpoint,
	head uint64,
) (*Result, error) {
	HeadBlockSet(head)

	result := &Result{Checkpoint: checkpoint}
	result.Checkpoint.SkippedRanges = slices.Clone(checkpoint.SkippedRanges)

	start := max(checkpoint.LastProcessedBlock+1, collection.DeploymentBlock)
	if start > head {
		result.CaughtUp = true
		return result, nil
	}

	burnSet := collection.BurnAddressSet()

	if s.policy == FastForwardHeuristic && head-start >= s.cfg.ProbeBlocks {
		// the probe grid is anchored at deployment so repeated probes hit the same cached windows
		probeFrom := max(AlignDown(head-s.cfg.ProbeBlocks+1, collection.DeploymentBlock, s.cfg.WindowSize), start)
		probeTo := s.runTarget(probeFrom, head)

		deltas, err := s.scan(ctx, collection, burnSet, probeFrom, probeTo)
		if err != nil {
			return nil, fmt.Errorf("fast forward probe of %s: %w", collection.Name, err)
		}

		if len(deltas) == 0 && probeFrom > start {
			skipped := holders.BlockRange{From: start, To: probeFrom - 1}
			result.Checkpoint.SkippedRanges = append(result.Checkpoint.SkippedRanges, skipped)
			result.Skipped = &skipped
			BlocksSkippedAdd(collection.Name, skipped.To-skipped.From+1)

			s.log.Infow("fast forward skipped empty range",
				"collection", collection.Name,
				"from", skipped.From,
				"to", skipped.To,
				"probeFrom", probeFrom,
				"probeTo", probeTo,
			)

			return s.finish(result, collection, nil, probeFrom, probeTo, head), nil
		}

		s.log.Debugf("fast forward probe of %s found %d events in [%d, %d], scanning from %d",
			collection.Name, len(deltas), probeFrom, probeTo, start)
	}

	target := s.runTarget(start, head)
	deltas, err := s.scan(ctx, collection, burnSet, start, target)
	if err != nil {
		return nil, err
	}

	return s.finish(result, collection, deltas, start, target, head), nil
}

// runTarget caps the scan started at from by MaxBlocksPerRun and by head.
func (s *Syncer) runTarget(from, head uint64) uint64 {
	if head-from >= s.cfg.MaxBlocksPerRun {
		return from + s.cfg.MaxBlocksPerRun - 1
	}
	return head
}

func (s *Syncer) finish(
	result *Result,
	collection config.CollectionConfig,
	deltas []holders.EventDelta,
	from, to, head uint64,
) *Result {
	result.Deltas = deltas
	result.BlocksScanned = to - from + 1
	result.Checkpoint.LastProcessedBlock = to
	result.Checkpoint.LastUpdated = s.now().UTC()
	result.CaughtUp = to >= head

	LastSyncedBlockSet(collection.Name, to)

	s.log.Infow("sync finished",
		"collection", collection.Name,
		"from", from,
		"to", to,
		"head", head,
		"deltas", len(deltas),
		"caughtUp", result.CaughtUp,
	)

	return result
}

// scan fetches every window of [from, to] with bounded concurrency and merges the deltas in chain order.
func (s *Syncer) scan(
	ctx context.Context,
	collection config.CollectionConfig,
	burnSet map[ethcommon.Address]struct{},
	from, to uint64,
) ([]holders.EventDelta, error) {
	windows := SplitWindows(from, to, s.cfg.WindowSize)
	results := make([][]holders.EventDelta, len(windows))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)

	for i, w := range windows {
		g.Go(func() error {
			deltas, err := s.fetchWindow(gctx, collection, burnSet, w)
			if err != nil {
				return fmt.Errorf("window [%d, %d] of %s: %w", w.FromBlock, w.ToBlock, collection.Name, err)
			}
			results[i] = deltas
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var total int
	for _, r := range results {
		total += len(r)
	}

	deltas := make([]holders.EventDelta, 0, total)
	for _, r := range results {
		deltas = append(deltas, r...)
	}
	holders.SortDeltas(deltas)

	BlocksScannedAdd(collection.Name, to-from+1)

	return deltas, nil
}

// fetchWindow returns the decoded deltas of one window, from cache when possible.
func (s *Syncer) fetchWindow(
	ctx context.Context,
	collection config.CollectionConfig,
	burnSet map[ethcommon.Address]struct{},
	w Window,
) ([]holders.EventDelta, error) {
	address := collection.ContractAddress()
	key := store.EventsRangeKey(collection.Name, strings.ToLower(address.Hex()), w.FromBlock, w.ToBlock)

	var cached []holders.EventDelta
	found, err := store.GetJSON(ctx, s.store, key, &cached)
	if err != nil {
		s.log.Warnf("failed to read cached window %s, refetching: %v", key, err)
	}
	if found {
		WindowFetchInc(collection.Name, "cache")
		return cached, nil
	}

	logs, err := s.fetchLogs(ctx, collection.Name, address, w)
	if err != nil {
		return nil, err
	}

	deltas := make([]holders.EventDelta, 0, len(logs))
	for _, l := range logs {
		if l.Removed {
			continue
		}

		delta, err := DecodeTransfer(l, burnSet)
		if err != nil {
			s.log.Warnf("skipping log of %s: %v", collection.Name, err)
			continue
		}
		deltas = append(deltas, delta)
	}

	WindowFetchInc(collection.Name, "rpc")
	s.log.Debugf("fetched window [%d, %d] of %s with %d events", w.FromBlock, w.ToBlock, collection.Name, len(deltas))

	if err := store.SetJSON(ctx, s.store, key, deltas, s.cfg.WindowCacheTTL.Duration); err != nil {
		s.log.Warnf("failed to cache window %s: %v", key, err)
	}

	return deltas, nil
}

// fetchLogs queries [w.FromBlock, w.ToBlock], narrowing the query whenever the provider
// reports too many results and then continuing after the narrowed range until the
// whole window is covered.
func (s *Syncer) fetchLogs(
	ctx context.Context,
	collectionName string,
	address ethcommon.Address,
	w Window,
) ([]types.Log, error) {
	var logs []types.Log

	from := w.FromBlock
	for from <= w.ToBlock {
		to := w.ToBlock

		for {
			query := ethereum.FilterQuery{
				FromBlock: new(big.Int).SetUint64(from),
				ToBlock:   new(big.Int).SetUint64(to),
				Addresses: []ethcommon.Address{address},
				Topics:    [][]ethcommon.Hash{{contracts.TransferEventSignature}},
			}

			got, err := s.reader.GetLogs(ctx, query)
			if err == nil {
				logs = append(logs, got...)
				break
			}

			ok, errData := irpc.IsTooManyResultsError(err)
			if !ok {
				return nil, err
			}

			WindowNarrowingInc(collectionName)

			if _, suggestedTo, ok := irpc.ParseSuggestedBlockRange(errData); ok && suggestedTo >= from && suggestedTo < to {
				s.log.Infof("too many logs in [%d, %d], retrying with suggested end %d", from, to, suggestedTo)
				to = suggestedTo
				continue
			}

			if to == from {
				return nil, fmt.Errorf("cannot split range further, single block %d has too many logs", from)
			}

			to = from + (to-from)/2 //nolint:mnd
			s.log.Infof("too many logs, retrying with smaller block range [%d, %d]", from, to)
		}

		if to == w.ToBlock {
			break
		}
		from = to + 1
	}

	return logs, nil
}
