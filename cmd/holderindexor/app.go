package main

import (
	"context"
	"fmt"

	"github.com/goran-ethernal/HolderIndexor/internal/common"
	"github.com/goran-ethernal/HolderIndexor/internal/config"
	"github.com/goran-ethernal/HolderIndexor/internal/logger"
	"github.com/goran-ethernal/HolderIndexor/internal/population"
	"github.com/goran-ethernal/HolderIndexor/internal/rpc"
	istore "github.com/goran-ethernal/HolderIndexor/internal/store"
	pkgconfig "github.com/goran-ethernal/HolderIndexor/pkg/config"
	"github.com/goran-ethernal/HolderIndexor/pkg/store"
)

// app holds the components shared by the serve and populate commands.
type app struct {
	cfg          *pkgconfig.Config
	log          *logger.Logger
	reader       *rpc.Client
	store        store.Backend
	orchestrator *population.Orchestrator
}

func loadConfig(path string) (*pkgconfig.Config, error) {
	cfg, err := config.LoadFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if cfg.Logging == nil {
		cfg.Logging = &pkgconfig.LoggingConfig{}
		cfg.Logging.ApplyDefaults()
	}
	if f := cfg.Logging.File; f != nil {
		logger.SetFileSink(logger.FileSinkConfig{
			Path:       f.Path,
			MaxSizeMB:  f.MaxSizeMB,
			MaxBackups: f.MaxBackups,
			MaxAgeDays: f.MaxAgeDays,
			Compress:   f.Compress,
		})
	}

	return cfg, nil
}

func newApp(ctx context.Context, cfg *pkgconfig.Config) (*app, error) {
	log := logger.NewComponentLoggerFromConfig(common.ComponentPopulation, cfg.Logging)

	log.Info("Connecting to Ethereum node...")
	reader, err := rpc.NewClient(ctx, &cfg.RPC,
		logger.NewComponentLoggerFromConfig(common.ComponentChainReader, cfg.Logging))
	if err != nil {
		return nil, fmt.Errorf("failed to create RPC client: %w", err)
	}
	log.Infof("Connected to Ethereum node: %s", cfg.RPC.URL)

	backend, err := istore.New(ctx, cfg.Store,
		logger.NewComponentLoggerFromConfig(common.ComponentStore, cfg.Logging))
	if err != nil {
		reader.Close()
		return nil, fmt.Errorf("failed to create store: %w", err)
	}

	orchestrator := population.NewOrchestrator(cfg, reader, backend, backend, log)

	return &app{
		cfg:          cfg,
		log:          log,
		reader:       reader,
		store:        backend,
		orchestrator: orchestrator,
	}, nil
}

// Close stops background runs, then releases the store and the RPC connection.
func (a *app) Close() {
	a.orchestrator.Close()

	if err := a.store.Close(); err != nil {
		a.log.Warnf("Failed to close store: %v", err)
	}
	a.reader.Close()

	_ = a.log.Sync()
}
