package population

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/goran-ethernal/HolderIndexor/internal/common"
	"github.com/goran-ethernal/HolderIndexor/internal/logger"
	"github.com/goran-ethernal/HolderIndexor/pkg/config"
	"github.com/goran-ethernal/HolderIndexor/pkg/holders"
)

// Triggerer starts background populations.
type Triggerer interface {
	Trigger(ctx context.Context, collection string, force bool) (holders.TriggerStatus, error)
}

// Scheduler periodically triggers a population of every enabled collection.
type Scheduler struct {
	cfg         config.PopulationConfig
	collections []string
	trigger     Triggerer
	log         *logger.Logger

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewScheduler creates a scheduler for the enabled collections of cfg.
func NewScheduler(cfg *config.Config, trigger Triggerer, log *logger.Logger) *Scheduler {
	var names []string
	for _, c := range cfg.Collections {
		if c.IsEnabled() {
			names = append(names, c.Name)
		}
	}

	return &Scheduler{
		cfg:         cfg.Population,
		collections: names,
		trigger:     trigger,
		log:         log.WithComponent(common.ComponentScheduler),
		stopCh:      make(chan struct{}),
	}
}

// Start runs the schedule until ctx is done or Stop is called.
func (s *Scheduler) Start(ctx context.Context) {
	interval := s.cfg.RefreshInterval.Duration

	s.log.Infof("scheduling %d collections every %s", len(s.collections), interval)

	s.wg.Go(func() {
		if s.cfg.PopulateOnStart {
			s.TriggerAll(ctx)
		}

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.TriggerAll(ctx)
			case <-ctx.Done():
				return
			case <-s.stopCh:
				return
			}
		}
	})
}

// Stop stops the schedule. Runs already started keep going.
func (s *Scheduler) Stop() {
	close(s.stopCh)
	s.wg.Wait()
}

// TriggerAll triggers every enabled collection. Collections with a run in flight are skipped.
func (s *Scheduler) TriggerAll(ctx context.Context) {
	for _, name := range s.collections {
		status, err := s.trigger.Trigger(ctx, name, false)
		switch {
		case errors.Is(err, ErrShuttingDown):
			return
		case err != nil:
			s.log.Errorf("failed to trigger population of %s: %v", name, err)
		case status == holders.StatusInProgress:
			s.log.Debugf("population of %s still in progress, skipping", name)
		default:
			s.log.Debugf("triggered population of %s", name)
		}
	}
}
