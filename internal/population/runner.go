package population

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/goran-ethernal/HolderIndexor/internal/common"
	iholders "github.com/goran-ethernal/HolderIndexor/internal/holders"
	"github.com/goran-ethernal/HolderIndexor/internal/metrics"
	"github.com/goran-ethernal/HolderIndexor/internal/rewards"
	"github.com/goran-ethernal/HolderIndexor/pkg/config"
	"github.com/goran-ethernal/HolderIndexor/pkg/holders"
	"github.com/goran-ethernal/HolderIndexor/pkg/store"
)

// progressSaveInterval throttles progress writes made from batch callbacks.
const progressSaveInterval = time.Second

// runner is one population run of one collection.
type runner struct {
	o          *Orchestrator
	ctx        context.Context
	collection config.CollectionConfig
	startedAt  time.Time

	mu        sync.Mutex
	progress  holders.ProgressState
	lastSaved time.Time
	phase     string
	errLog    []holders.ErrorLogEntry
}

// transition moves the state machine to step and persists the progress before the step's work begins.
func (r *runner) transition(step holders.Step, total uint64) error {
	r.mu.Lock()
	r.progress.Step = step
	r.progress.ProcessedCount = 0
	r.progress.TotalCount = total
	r.progress.UpdatedAt = r.o.now().UTC()
	state := r.progress
	r.lastSaved = state.UpdatedAt
	r.mu.Unlock()

	stepSet(r.collection.Name, step)
	r.o.log.Infow("population step",
		"collection", r.collection.Name,
		"runId", state.RunID,
		"mode", state.Mode,
		"step", step,
		"total", total,
	)

	if err := r.save(r.ctx, state); err != nil {
		return fmt.Errorf("failed to persist progress of %s: %w", r.collection.Name, err)
	}
	return nil
}

// report records progress within a step. It is called concurrently by batch workers.
func (r *runner) report(done, total int) {
	r.mu.Lock()
	r.progress.ProcessedCount = uint64(done)
	r.progress.TotalCount = uint64(total)

	now := r.o.now().UTC()
	if now.Sub(r.lastSaved) < progressSaveInterval && done < total {
		r.mu.Unlock()
		return
	}
	r.progress.UpdatedAt = now
	r.lastSaved = now
	state := r.progress
	r.mu.Unlock()

	if err := r.save(r.ctx, state); err != nil {
		r.o.log.Warnf("failed to persist progress of %s: %v", r.collection.Name, err)
	}
}

func (r *runner) setPhase(phase string) {
	r.mu.Lock()
	r.phase = phase
	r.mu.Unlock()
}

func (r *runner) save(ctx context.Context, state holders.ProgressState) error {
	return store.SetJSON(ctx, r.o.store, store.Key(r.collection.Name, store.ArtifactState), state, 0)
}

// full rebuilds the holder set from live on-chain ownership. prior is the committed
// snapshot of a forced rebuild and nil otherwise.
func (r *runner) full(prior *holders.Snapshot) (*holders.Snapshot, holders.Checkpoint, error) {
	o := r.o

	r.setPhase(holders.PhaseFetchSupply)
	if err := r.transition(holders.StepFetchingSupply, 0); err != nil {
		return nil, holders.Checkpoint{}, err
	}
	head, err := o.reader.HeadBlock(r.ctx)
	if err != nil {
		return nil, holders.Checkpoint{}, fmt.Errorf("failed to read head block: %w", err)
	}
	supply, err := o.reconstructor.FetchSupply(r.ctx, r.collection)
	if err != nil {
		return nil, holders.Checkpoint{}, err
	}

	r.setPhase(holders.PhaseFetchOwner)
	if err := r.transition(holders.StepFetchingOwners, 2*supply.Live); err != nil {
		return nil, holders.Checkpoint{}, err
	}
	owners, err := o.reconstructor.FetchOwners(r.ctx, r.collection, supply.Live, r.report)
	if err != nil {
		return nil, holders.Checkpoint{}, err
	}

	if err := r.transition(holders.StepProcessingHolders, uint64(len(owners))); err != nil {
		return nil, holders.Checkpoint{}, err
	}
	state, heldByBurn := o.reconstructor.BuildFromOwners(owners, r.collection)

	r.setPhase(holders.PhaseFetchTier)
	res, err := o.aggregator.Aggregate(r.ctx, r.collection, state.Holders, state.TouchedWallets(), r.report)
	if err != nil {
		return nil, holders.Checkpoint{}, configurationError(err)
	}

	r.setPhase(holders.PhaseFinalize)
	if err := r.transition(holders.StepFinalizingCache, 0); err != nil {
		return nil, holders.Checkpoint{}, err
	}

	// burns to the zero address leave no owner to enumerate, so a rebuild never lowers a known total
	burned := heldByBurn
	if prior != nil {
		burned = max(burned, prior.TotalBurned)
	}
	burned, minted := iholders.Totals(state.TokenCount(), supply.Burned, 0, burned)
	cp := holders.Checkpoint{LastProcessedBlock: head, LastUpdated: o.now().UTC()}

	return r.snapshot(res, state, burned, minted, cp), cp, nil
}

// incremental replays the events after checkpoint onto prior.
func (r *runner) incremental(prior *holders.Snapshot, checkpoint holders.Checkpoint) (*holders.Snapshot, holders.Checkpoint, error) {
	o := r.o

	r.setPhase(holders.PhaseFetchSupply)
	if err := r.transition(holders.StepFetchingSupply, 0); err != nil {
		return nil, holders.Checkpoint{}, err
	}
	head, err := o.reader.HeadBlock(r.ctx)
	if err != nil {
		return nil, holders.Checkpoint{}, fmt.Errorf("failed to read head block: %w", err)
	}
	supply, err := o.reconstructor.FetchSupply(r.ctx, r.collection)
	if err != nil {
		return nil, holders.Checkpoint{}, err
	}

	r.setPhase(holders.PhaseSync)
	var pending uint64
	if head > checkpoint.LastProcessedBlock {
		pending = head - checkpoint.LastProcessedBlock
	}
	if err := r.transition(holders.StepFetchingEvents, pending); err != nil {
		return nil, holders.Checkpoint{}, err
	}
	deltas, cp, err := r.syncToHead(checkpoint, head, pending)
	if err != nil {
		return nil, holders.Checkpoint{}, err
	}

	r.setPhase(holders.PhaseBurn)
	if err := r.transition(holders.StepProcessingEvents, uint64(len(deltas))); err != nil {
		return nil, holders.Checkpoint{}, err
	}
	state := o.reconstructor.NewState(prior, r.collection)
	state.ApplyBurns(deltas)

	if err := r.transition(holders.StepProcessingTransfers, uint64(len(deltas))); err != nil {
		return nil, holders.Checkpoint{}, err
	}
	state.ApplyTransfers(deltas)

	r.setPhase(holders.PhaseFetchTier)
	res, err := o.aggregator.Aggregate(r.ctx, r.collection, state.Holders, state.TouchedWallets(), r.report)
	if err != nil {
		return nil, holders.Checkpoint{}, configurationError(err)
	}

	r.setPhase(holders.PhaseFinalize)
	if err := r.transition(holders.StepFinalizingCache, 0); err != nil {
		return nil, holders.Checkpoint{}, err
	}

	if state.TokenCount() > supply.Live {
		o.log.Warnw("replayed holders own more tokens than the live supply, a full rebuild may be needed",
			"collection", r.collection.Name,
			"owned", state.TokenCount(),
			"liveSupply", supply.Live,
		)
	}

	burned, minted := iholders.Totals(state.TokenCount(), supply.Burned, prior.TotalBurned, state.BurnsReplayed)

	return r.snapshot(res, state, burned, minted, cp), cp, nil
}

// syncToHead calls Sync until the checkpoint reaches head.
func (r *runner) syncToHead(
	checkpoint holders.Checkpoint,
	head, pending uint64,
) ([]holders.EventDelta, holders.Checkpoint, error) {
	var (
		deltas []holders.EventDelta
		done   uint64
	)

	for {
		res, err := r.o.syncer.Sync(r.ctx, r.collection, checkpoint, head)
		if err != nil {
			return nil, holders.Checkpoint{}, err
		}

		deltas = append(deltas, res.Deltas...)
		checkpoint = res.Checkpoint

		done += res.BlocksScanned
		if res.Skipped != nil {
			done += res.Skipped.To - res.Skipped.From + 1
		}
		r.report(int(min(done, pending)), int(pending))

		if res.CaughtUp {
			return deltas, checkpoint, nil
		}
	}
}

func (r *runner) snapshot(
	res *rewards.Result,
	state *iholders.State,
	burned, minted uint64,
	cp holders.Checkpoint,
) *holders.Snapshot {
	r.mu.Lock()
	r.errLog = append(r.errLog, res.ErrorLog...)
	r.mu.Unlock()

	return &holders.Snapshot{
		Collection:         r.collection.Name,
		Holders:            res.Holders,
		TotalBurned:        burned,
		TotalMinted:        minted,
		LiveSupply:         state.TokenCount(),
		TierDistribution:   res.TierDistribution,
		MultiplierPool:     res.MultiplierPool,
		Globals:            res.Globals,
		LastProcessedBlock: cp.LastProcessedBlock,
		Timestamp:          r.o.now().UTC(),
	}
}

// commit stores the snapshot, then the checkpoint, then marks the run completed.
func (r *runner) commit(snapshot *holders.Snapshot, cp holders.Checkpoint) error {
	o := r.o
	name := r.collection.Name

	if err := store.SetJSON(r.ctx, o.store, store.Key(name, store.ArtifactHolders), snapshot, 0); err != nil {
		return fmt.Errorf("failed to commit snapshot of %s: %w", name, err)
	}
	if err := store.SetJSON(r.ctx, o.store, store.Key(name, store.ArtifactCheckpoint), cp, 0); err != nil {
		return fmt.Errorf("failed to commit checkpoint of %s: %w", name, err)
	}

	r.mu.Lock()
	r.progress.Step = holders.StepCompleted
	r.progress.Error = ""
	r.progress.ErrorLog = r.cappedErrorLog()
	r.progress.ProcessedCount = r.progress.TotalCount
	r.progress.UpdatedAt = o.now().UTC()
	r.progress.LastUpdated = snapshot.Timestamp
	r.progress.LastProcessedBlock = cp.LastProcessedBlock
	state := r.progress
	r.mu.Unlock()

	if err := r.save(r.ctx, state); err != nil {
		return fmt.Errorf("failed to persist progress of %s: %w", name, err)
	}

	stepSet(name, holders.StepCompleted)
	metrics.PopulationRunInc(name, state.Mode, string(holders.StepCompleted))
	metrics.PopulationDurationLog(name, state.Mode, time.Since(r.startedAt))
	metrics.SnapshotCommitted(name, len(snapshot.Holders), snapshot.LiveSupply, snapshot.LastProcessedBlock)
	metrics.ErrorLogEntriesAdd(name, len(state.ErrorLog))

	o.log.Infow("population completed",
		"collection", name,
		"runId", state.RunID,
		"mode", state.Mode,
		"holders", len(snapshot.Holders),
		"liveSupply", snapshot.LiveSupply,
		"totalBurned", snapshot.TotalBurned,
		"lastProcessedBlock", snapshot.LastProcessedBlock,
		"recoveredErrors", len(state.ErrorLog),
		"duration", time.Since(r.startedAt),
	)

	o.notify(snapshot)

	return nil
}

// fail records err as the outcome of the run. The committed snapshot is left untouched.
func (r *runner) fail(err error) error {
	o := r.o

	r.mu.Lock()
	r.errLog = append(r.errLog, holders.ErrorLogEntry{
		Phase:     r.phase,
		Message:   err.Error(),
		Timestamp: o.now().UTC(),
	})
	r.progress.Step = holders.StepError
	r.progress.Error = err.Error()
	r.progress.ErrorLog = r.cappedErrorLog()
	r.progress.UpdatedAt = o.now().UTC()
	state := r.progress
	r.mu.Unlock()

	// the run context may be the reason of the failure
	if saveErr := r.save(context.WithoutCancel(r.ctx), state); saveErr != nil {
		o.log.Errorf("failed to persist failed progress of %s: %v", r.collection.Name, saveErr)
	}

	stepSet(r.collection.Name, holders.StepError)
	metrics.PopulationRunInc(r.collection.Name, state.Mode, string(holders.StepError))
	metrics.ErrorsInc(common.ComponentPopulation, "error")

	o.log.Errorw("population failed",
		"collection", r.collection.Name,
		"runId", state.RunID,
		"mode", state.Mode,
		"phase", r.phase,
		"error", err,
	)

	return err
}

// cappedErrorLog returns the run's error log, keeping the most recent entries. mu must be held.
func (r *runner) cappedErrorLog() []holders.ErrorLogEntry {
	limit := r.o.cfg.Population.MaxErrorLogEntries
	if limit <= 0 || len(r.errLog) <= limit {
		return append([]holders.ErrorLogEntry(nil), r.errLog...)
	}

	r.o.log.Warnf("error log of %s truncated from %d to %d entries", r.collection.Name, len(r.errLog), limit)
	return append([]holders.ErrorLogEntry(nil), r.errLog[len(r.errLog)-limit:]...)
}

