package main

import (
	"context"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"MiniCatalog/internal/catalog"
	"MiniCatalog/internal/config"
	"MiniCatalog/pkg/kit"
)

const service = "catalog"

func main() {
	cfg, err := config.Load()
	if err != nil {
		kit.NewLogger(service, "info").Fatal("load config", zap.Error(err))
	}

	log := kit.NewLogger(service, cfg.LogLevel)
	defer func() { _ = log.Sync() }()

	if err := run(context.Background(), cfg, log); err != nil {
		log.Error("catalog stopped", zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *zap.Logger) error {
	store, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	renderer, err := catalog.NewTemplateRenderer()
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	s := &catalog.Server{
		Store:    catalog.NewInstrumentedStore(store, reg),
		Renderer: renderer,
		Log:      log,
	}

	h := catalog.NewHandler(s, catalog.HTTPDeps{
		Log:            log,
		Service:        service,
		Registry:       reg,
		MetricsEnabled: cfg.MetricsEnabled,
		MetricsToken:   cfg.MetricsToken,
		WriteRateLimit: cfg.WriteRateLimit,
	})

	return kit.RunHTTPServer(ctx, ":"+cfg.Port, h, log)
}

func openStore(ctx context.Context, cfg config.Config, log *zap.Logger) (catalog.Store, func(), error) {
	if cfg.Store == config.StoreMemory {
		log.Warn("using in-memory store; data is lost on restart")
		return catalog.NewMemStore(), func() {}, nil
	}

	pg, err := catalog.OpenPostgres(ctx, cfg.DatabaseURL, catalog.PostgresOptions{
		MaxOpenConns: cfg.DBMaxOpenConns,
		Log:          log,
	})
	if err != nil {
		return nil, nil, err
	}

	return pg, func() {
		if err := pg.Close(); err != nil {
			log.Warn("close store", zap.Error(err))
		}
	}, nil
}
