package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"BloomStore/internal/catalog"
	"BloomStore/internal/config"
	"BloomStore/pkg/kit"
)

func main() {
	service := config.ServiceCatalog

	cfg, err := config.Load(service)
	if err != nil {
		boot := kit.NewLogger(service)
		boot.Fatal("load config failed", zap.Error(err))
	}

	log := kit.NewLoggerAt(service, cfg.LogLevel)
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, cleanup, err := openStore(ctx, cfg, log)
	if err != nil {
		log.Fatal("open catalog failed", zap.Error(err))
	}
	defer cleanup()

	reg := prometheus.NewRegistry()
	h := catalog.NewHandler(&catalog.Server{
		Store:       store,
		Log:         log,
		CacheMaxAge: cfg.Catalog.CacheMaxAge,
	}, catalog.HTTPDeps{
		Log:            log,
		Service:        service,
		Registry:       reg,
		MetricsEnabled: true,
		MetricsToken:   cfg.MetricsToken,
	})

	if err := kit.ServeUntil(ctx, ":"+cfg.Port(), h, log); err != nil {
		log.Error("http server stopped", zap.Error(err))
	}
}

func openStore(ctx context.Context, cfg config.Config, log *zap.Logger) (catalog.Store, func(), error) {
	switch cfg.Catalog.Source {
	case "file":
		fs := catalog.OpenFile(cfg.Catalog.File, log)

		w, err := catalog.NewWatcher(fs, log)
		if err != nil {
			return nil, nil, err
		}
		w.SetDebounce(cfg.Catalog.Debounce)
		if err := w.Start(ctx); err != nil {
			return nil, nil, err
		}
		return fs, func() { _ = w.Stop() }, nil

	case "postgres":
		pg, err := catalog.OpenPostgres(ctx, cfg.Catalog.DSN)
		if err != nil {
			return nil, nil, err
		}
		return pg, func() { _ = pg.Close() }, nil
	}

	log.Info("using built-in catalog")
	return catalog.NewSeededStore(), func() {}, nil
}
