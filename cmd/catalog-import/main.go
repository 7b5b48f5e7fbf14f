package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"MiniCatalog/internal/catalog"
	"MiniCatalog/internal/config"
	"MiniCatalog/internal/importer"
	"MiniCatalog/pkg/kit"
)

const service = "catalog-import"

func main() {
	file := flag.String("file", "", "path to an .xlsx workbook with name, price, stock, image_url columns")
	dryRun := flag.Bool("dry-run", false, "parse the workbook without writing to the store")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		kit.NewLogger(service, "info").Fatal("load config", zap.Error(err))
	}

	log := kit.NewLogger(service, cfg.LogLevel)
	defer func() { _ = log.Sync() }()

	if *file == "" {
		log.Fatal("-file is required")
	}

	if err := run(context.Background(), cfg, log, *file, *dryRun); err != nil {
		log.Fatal("import failed", zap.Error(err), zap.String("file", *file))
	}
}

func run(ctx context.Context, cfg config.Config, log *zap.Logger, path string, dryRun bool) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	products, err := importer.ParseProducts(f)
	if err != nil {
		return err
	}
	log.Info("workbook parsed", zap.Int("products", len(products)))

	if dryRun {
		return nil
	}
	if cfg.Store != config.StorePostgres {
		return fmt.Errorf("import needs STORE=%s, got %q", config.StorePostgres, cfg.Store)
	}

	store, err := catalog.OpenPostgres(ctx, cfg.DatabaseURL, catalog.PostgresOptions{
		MaxOpenConns: cfg.DBMaxOpenConns,
		Log:          log,
	})
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	for i, in := range products {
		p, err := store.Create(ctx, in)
		if err != nil {
			return fmt.Errorf("product %d (%s): %w", i+1, in.Name, err)
		}
		log.Debug("product imported", zap.Int64("id", p.ID), zap.String("name", p.Name))
	}

	log.Info("import done", zap.Int("created", len(products)))
	return nil
}
