package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/goran-ethernal/HolderIndexor/internal/common"
	"github.com/goran-ethernal/HolderIndexor/internal/logger"
	"github.com/goran-ethernal/HolderIndexor/internal/metrics"
	"github.com/goran-ethernal/HolderIndexor/internal/population"
	"github.com/goran-ethernal/HolderIndexor/pkg/api"
	"github.com/spf13/cobra"
)

const (
	version = "1.0.0"
	banner  = `
╔═══════════════════════════════════════════╗
║          HolderIndexor v%s             ║
║      NFT Holder and Reward Indexer        ║
╚═══════════════════════════════════════════╝
`
)

var (
	configPath string
	force      bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "holderindexor",
	Short: "HolderIndexor - NFT holder and reward indexer",
	Long: `HolderIndexor maintains per collection snapshots of NFT holders, their tiers,
multiplier sums and reward figures. Snapshots are rebuilt from live ownership
or updated incrementally from Transfer events, and served over a REST API.`,
	Version: version,
	RunE:    runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the scheduler, the REST API and the metrics server",
	RunE:  runServe,
}

var populateCmd = &cobra.Command{
	Use:   "populate [collection...]",
	Short: "Run one population of the given collections and exit",
	Long: `Run a population of every listed collection, or of every enabled collection
when none is listed. Runs are sequential and wait for completion.`,
	RunE: runPopulate,
}

var collectionsCmd = &cobra.Command{
	Use:   "collections",
	Short: "List configured collections",
	RunE:  runCollections,
}

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON schema of the configuration file",
	RunE:  runSchema,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "path to configuration file")
	populateCmd.Flags().BoolVarP(&force, "force", "f", false, "rebuild from live ownership instead of replaying events")

	rootCmd.AddCommand(serveCmd, populateCmd, collectionsCmd, schemaCmd)
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\n\nShutting down gracefully...")
		cancel()
	}()

	return ctx, cancel
}

func runServe(cmd *cobra.Command, args []string) error {
	fmt.Printf(banner, version)

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	log := a.log

	if cfg.Metrics != nil && cfg.Metrics.Enabled {
		metricsServer := metrics.NewServer(cfg.Metrics, log)
		if err := metricsServer.Start(ctx); err != nil {
			return fmt.Errorf("failed to start metrics server: %w", err)
		}
		defer func() {
			if err := metricsServer.Stop(context.WithoutCancel(ctx)); err != nil {
				log.Warnf("Failed to stop metrics server: %v", err)
			}
		}()
	}

	service := population.NewService(cfg, a.orchestrator, log)
	defer service.Close()

	if cfg.API != nil && cfg.API.Enabled {
		apiServer := api.NewServer(
			cfg.API,
			service,
			logger.NewComponentLoggerFromConfig(common.ComponentAPI, cfg.Logging),
		)
		go func() {
			if err := apiServer.Start(ctx); err != nil {
				log.Errorf("API server error: %v", err)
				cancel()
			}
		}()
	}

	scheduler := population.NewScheduler(
		cfg,
		a.orchestrator,
		logger.NewComponentLoggerFromConfig(common.ComponentScheduler, cfg.Logging),
	)
	scheduler.Start(ctx)

	log.Infof("HolderIndexor serving %d collection(s)", len(cfg.Collections))
	metrics.ComponentHealthSet(common.ComponentPopulation, true)

	<-ctx.Done()

	scheduler.Stop()
	a.orchestrator.Close()

	log.Info("HolderIndexor stopped successfully")
	return nil
}
