package population

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	internalcommon "github.com/goran-ethernal/HolderIndexor/internal/common"
	"github.com/goran-ethernal/HolderIndexor/internal/logger"
	"github.com/goran-ethernal/HolderIndexor/pkg/config"
	"github.com/goran-ethernal/HolderIndexor/pkg/holders"
	"github.com/stretchr/testify/require"
)

type recordingTriggerer struct {
	mu       sync.Mutex
	calls    []string
	statuses map[string]holders.TriggerStatus
	errs     map[string]error
}

func (r *recordingTriggerer) Trigger(_ context.Context, collection string, force bool) (holders.TriggerStatus, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.calls = append(r.calls, collection)
	if err := r.errs[collection]; err != nil {
		return "", err
	}
	if status, ok := r.statuses[collection]; ok {
		return status, nil
	}
	return holders.StatusStarted, nil
}

func (r *recordingTriggerer) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

func schedulerConfig(populateOnStart bool, interval time.Duration) *config.Config {
	disabled := false
	return &config.Config{
		Population: config.PopulationConfig{
			PopulateOnStart: populateOnStart,
			RefreshInterval: internalcommon.Duration{Duration: interval},
		},
		Collections: []config.CollectionConfig{
			{Name: "alpha"},
			{Name: "beta", Enabled: &disabled},
			{Name: "gamma"},
		},
	}
}

func TestScheduler_TriggerAll(t *testing.T) {
	trigger := &recordingTriggerer{
		statuses: map[string]holders.TriggerStatus{"alpha": holders.StatusInProgress},
	}
	s := NewScheduler(schedulerConfig(false, time.Hour), trigger, logger.NewNopLogger())

	s.TriggerAll(context.Background())

	require.Equal(t, []string{"alpha", "gamma"}, trigger.Calls())
}

func TestScheduler_TriggerAllStopsOnShutdown(t *testing.T) {
	trigger := &recordingTriggerer{
		errs: map[string]error{"alpha": ErrShuttingDown},
	}
	s := NewScheduler(schedulerConfig(false, time.Hour), trigger, logger.NewNopLogger())

	s.TriggerAll(context.Background())

	require.Equal(t, []string{"alpha"}, trigger.Calls())
}

func TestScheduler_TriggerAllContinuesOnError(t *testing.T) {
	trigger := &recordingTriggerer{
		errs: map[string]error{"alpha": errors.New("store unavailable")},
	}
	s := NewScheduler(schedulerConfig(false, time.Hour), trigger, logger.NewNopLogger())

	s.TriggerAll(context.Background())

	require.Equal(t, []string{"alpha", "gamma"}, trigger.Calls())
}

func TestScheduler_PopulateOnStart(t *testing.T) {
	trigger := &recordingTriggerer{}
	s := NewScheduler(schedulerConfig(true, time.Hour), trigger, logger.NewNopLogger())

	s.Start(context.Background())
	require.Eventually(t, func() bool {
		return len(trigger.Calls()) == 2
	}, time.Second, 10*time.Millisecond)
	s.Stop()

	require.Equal(t, []string{"alpha", "gamma"}, trigger.Calls())
}

func TestScheduler_Interval(t *testing.T) {
	trigger := &recordingTriggerer{}
	s := NewScheduler(schedulerConfig(false, 20*time.Millisecond), trigger, logger.NewNopLogger())

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)

	require.Eventually(t, func() bool {
		return len(trigger.Calls()) >= 4
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	s.wg.Wait()
}
