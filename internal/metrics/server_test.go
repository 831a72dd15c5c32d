package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goran-ethernal/HolderIndexor/internal/logger"
	"github.com/goran-ethernal/HolderIndexor/pkg/config"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestServerHandler(t *testing.T) {
	PopulationRunInc("alpha", "full", "completed")
	SnapshotCommitted("alpha", 3, 10, 1234)
	UpdateSystemMetrics()

	s := NewServer(&config.MetricsConfig{Enabled: true, Path: "/metrics"}, logger.NewNopLogger())
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), `holderindexor_population_runs_total{collection="alpha",mode="full",outcome="completed"}`)
	require.Contains(t, string(body), `holderindexor_last_processed_block{collection="alpha"} 1234`)
	require.Contains(t, string(body), "holderindexor_uptime_seconds")
}

func TestServerDisabled(t *testing.T) {
	s := NewServer(&config.MetricsConfig{Enabled: false}, logger.NewNopLogger())
	require.NoError(t, s.Start(context.Background()))
	require.NoError(t, s.Stop(context.Background()))
}

func TestPopulationStepSet(t *testing.T) {
	PopulationStepSet("beta", "fetching_supply", []string{"starting", "fetching_supply"})
	require.Equal(t, float64(1), testutil.ToFloat64(populationStep.WithLabelValues("beta", "fetching_supply")))

	PopulationStepSet("beta", "completed", []string{"starting", "fetching_supply", "completed"})
	require.Equal(t, float64(0), testutil.ToFloat64(populationStep.WithLabelValues("beta", "fetching_supply")))
	require.Equal(t, float64(1), testutil.ToFloat64(populationStep.WithLabelValues("beta", "completed")))
}
