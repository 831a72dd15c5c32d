// Package population sequences event sync, holder reconstruction and aggregation
// into resumable per-collection population runs, and serves their results.
package population

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/goran-ethernal/HolderIndexor/internal/common"
	"github.com/goran-ethernal/HolderIndexor/internal/fetcher"
	iholders "github.com/goran-ethernal/HolderIndexor/internal/holders"
	"github.com/goran-ethernal/HolderIndexor/internal/logger"
	"github.com/goran-ethernal/HolderIndexor/internal/metrics"
	"github.com/goran-ethernal/HolderIndexor/internal/rewards"
	"github.com/goran-ethernal/HolderIndexor/pkg/config"
	"github.com/goran-ethernal/HolderIndexor/pkg/holders"
	"github.com/goran-ethernal/HolderIndexor/pkg/rpc"
	"github.com/goran-ethernal/HolderIndexor/pkg/store"
	"github.com/google/uuid"
)

const releaseTimeout = 10 * time.Second

// Orchestrator runs the population state machine of every configured collection.
// At most one run per collection is in flight, across processes when the locker is shared.
type Orchestrator struct {
	cfg           *config.Config
	reader        rpc.ChainReader
	store         store.Store
	locker        store.Locker
	syncer        *fetcher.Syncer
	reconstructor *iholders.Reconstructor
	aggregator    *rewards.Aggregator
	log           *logger.Logger
	now           func() time.Time

	// asynchronous runs outlive the trigger request and stop on Close
	runCtx    context.Context
	cancelRun context.CancelFunc
	wg        sync.WaitGroup

	mu       sync.Mutex
	closed   bool
	onCommit []func(*holders.Snapshot)
}

// NewOrchestrator creates a new Orchestrator. cfg must have defaults applied.
func NewOrchestrator(
	cfg *config.Config,
	reader rpc.ChainReader,
	st store.Store,
	locker store.Locker,
	log *logger.Logger,
) *Orchestrator {
	runCtx, cancel := context.WithCancel(context.Background())

	return &Orchestrator{
		cfg:           cfg,
		reader:        reader,
		store:         st,
		locker:        locker,
		syncer:        fetcher.NewSyncer(cfg.Sync, reader, st, log),
		reconstructor: iholders.NewReconstructor(cfg.Population, reader, log),
		aggregator:    rewards.NewAggregator(cfg.Population, reader, log),
		log:           log.WithComponent(common.ComponentPopulation),
		now:           time.Now,
		runCtx:        runCtx,
		cancelRun:     cancel,
	}
}

// Collection returns the configuration of an enabled collection.
func (o *Orchestrator) Collection(name string) (config.CollectionConfig, error) {
	c := o.cfg.Collection(name)
	if c == nil {
		return config.CollectionConfig{}, fmt.Errorf("%w: %s", ErrUnknownCollection, name)
	}
	if !c.IsEnabled() {
		return config.CollectionConfig{}, fmt.Errorf("%w: %s", ErrCollectionDisabled, name)
	}
	return *c, nil
}

// OnCommit registers fn to be called with every committed snapshot.
func (o *Orchestrator) OnCommit(fn func(*holders.Snapshot)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.onCommit = append(o.onCommit, fn)
}

// Trigger starts a population run in the background and returns immediately.
// It returns StatusInProgress, leaving the progress state untouched, when a run
// of the collection is already in flight.
func (o *Orchestrator) Trigger(ctx context.Context, name string, force bool) (holders.TriggerStatus, error) {
	collection, err := o.Collection(name)
	if err != nil {
		return "", err
	}

	lease, acquired, err := o.acquire(ctx, collection.Name)
	if err != nil {
		return "", err
	}
	if !acquired {
		return holders.StatusInProgress, nil
	}

	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		o.release(lease)
		return "", ErrShuttingDown
	}
	o.wg.Add(1)
	o.mu.Unlock()

	go func() {
		defer o.wg.Done()
		defer o.release(lease)

		// failures are persisted in the progress state
		_, _ = o.run(o.runCtx, collection, force)
	}()

	return holders.StatusStarted, nil
}

// Run executes a population run synchronously.
// On lock contention it returns StatusInProgress and no snapshot.
func (o *Orchestrator) Run(ctx context.Context, name string, force bool) (holders.TriggerStatus, *holders.Snapshot, error) {
	collection, err := o.Collection(name)
	if err != nil {
		return "", nil, err
	}

	lease, acquired, err := o.acquire(ctx, collection.Name)
	if err != nil {
		return "", nil, err
	}
	if !acquired {
		return holders.StatusInProgress, nil, nil
	}
	defer o.release(lease)

	snapshot, err := o.run(ctx, collection, force)
	return holders.StatusStarted, snapshot, err
}

// Wait blocks until every background run has finished.
func (o *Orchestrator) Wait() {
	o.wg.Wait()
}

// Close cancels background runs and waits for them to record their outcome.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	o.closed = true
	o.mu.Unlock()

	o.cancelRun()
	o.wg.Wait()
}

func (o *Orchestrator) acquire(ctx context.Context, collection string) (store.Lease, bool, error) {
	key := store.Key(collection, store.ArtifactLock)

	lease, acquired, err := o.locker.TryAcquire(ctx, key, o.cfg.Population.LockTTL.Duration)
	if err != nil {
		return store.Lease{}, false, fmt.Errorf("failed to acquire population lock of %s: %w", collection, err)
	}
	if !acquired {
		metrics.TriggerContentionInc(collection)
		o.log.Infof("population of %s already in progress", collection)
	}

	return lease, acquired, nil
}

func (o *Orchestrator) release(lease store.Lease) {
	ctx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
	defer cancel()

	if err := o.locker.Release(ctx, lease); err != nil {
		o.log.Errorf("failed to release population lock %s: %v", lease.Key, err)
	}
}

// Progress returns the persisted progress of a collection, idle when none was persisted.
func (o *Orchestrator) Progress(ctx context.Context, collection string) (*holders.ProgressState, error) {
	var state holders.ProgressState
	found, err := store.GetJSON(ctx, o.store, store.Key(collection, store.ArtifactState), &state)
	if err != nil {
		return nil, fmt.Errorf("failed to load progress of %s: %w", collection, err)
	}
	if !found {
		return &holders.ProgressState{Step: holders.StepIdle}, nil
	}
	return &state, nil
}

// Snapshot returns the committed snapshot of a collection.
func (o *Orchestrator) Snapshot(ctx context.Context, collection string) (*holders.Snapshot, bool, error) {
	var snapshot holders.Snapshot
	found, err := store.GetJSON(ctx, o.store, store.Key(collection, store.ArtifactHolders), &snapshot)
	if err != nil {
		return nil, false, fmt.Errorf("failed to load snapshot of %s: %w", collection, err)
	}
	if !found {
		return nil, false, nil
	}
	return &snapshot, true, nil
}

func (o *Orchestrator) checkpoint(ctx context.Context, collection string) (*holders.Checkpoint, error) {
	var cp holders.Checkpoint
	found, err := store.GetJSON(ctx, o.store, store.Key(collection, store.ArtifactCheckpoint), &cp)
	if err != nil {
		return nil, fmt.Errorf("failed to load checkpoint of %s: %w", collection, err)
	}
	if !found {
		return nil, nil
	}
	return &cp, nil
}

func (o *Orchestrator) run(ctx context.Context, collection config.CollectionConfig, force bool) (*holders.Snapshot, error) {
	r := &runner{
		o:          o,
		ctx:        ctx,
		collection: collection,
		startedAt:  o.now().UTC(),
		progress: holders.ProgressState{
			RunID: uuid.NewString(),
			Mode:  holders.ModeFull,
		},
		phase: holders.PhaseSync,
	}
	r.progress.StartedAt = r.startedAt

	previous, err := o.Progress(ctx, collection.Name)
	if err != nil {
		o.log.Warnf("ignoring unreadable progress of %s: %v", collection.Name, err)
		previous = &holders.ProgressState{Step: holders.StepIdle}
	}
	if !previous.Step.IsTerminal() {
		o.log.Warnw("resuming interrupted population",
			"collection", collection.Name,
			"interruptedRun", previous.RunID,
			"interruptedStep", previous.Step,
			"runId", r.progress.RunID,
		)
	}
	r.progress.LastUpdated = previous.LastUpdated
	r.progress.LastProcessedBlock = previous.LastProcessedBlock

	if err := r.transition(holders.StepStarting, 0); err != nil {
		return nil, r.fail(err)
	}

	prior, found, err := o.Snapshot(ctx, collection.Name)
	if err != nil {
		return nil, r.fail(err)
	}
	checkpoint, err := o.checkpoint(ctx, collection.Name)
	if err != nil {
		return nil, r.fail(err)
	}

	var (
		snapshot *holders.Snapshot
		cp       holders.Checkpoint
	)
	if force || !found || checkpoint == nil {
		snapshot, cp, err = r.full(prior)
	} else {
		// a snapshot committed without its checkpoint already contains the later blocks
		if prior.LastProcessedBlock > checkpoint.LastProcessedBlock {
			o.log.Warnf("checkpoint of %s at %d is behind its snapshot at %d, advancing",
				collection.Name, checkpoint.LastProcessedBlock, prior.LastProcessedBlock)
			checkpoint.LastProcessedBlock = prior.LastProcessedBlock
		}
		r.progress.Mode = holders.ModeIncremental
		snapshot, cp, err = r.incremental(prior, *checkpoint)
	}
	if err != nil {
		return nil, r.fail(err)
	}

	if err := r.commit(snapshot, cp); err != nil {
		return nil, r.fail(err)
	}

	return snapshot, nil
}

func (o *Orchestrator) notify(snapshot *holders.Snapshot) {
	o.mu.Lock()
	subscribers := append([]func(*holders.Snapshot){}, o.onCommit...)
	o.mu.Unlock()

	for _, fn := range subscribers {
		fn(snapshot)
	}
}

// configurationError marks err as fatal when it was caused by the collection configuration.
func configurationError(err error) error {
	if errors.Is(err, rewards.ErrUnknownStrategy) && !errors.Is(err, ErrConfiguration) {
		return fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	return err
}
