package main

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"BloomStore/internal/cart"
	"BloomStore/internal/checkout"
	"BloomStore/internal/config"
	"BloomStore/internal/shop"
	"BloomStore/internal/storage"
	"BloomStore/pkg/kit"
)

func main() {
	service := config.ServiceCart

	cfg, err := config.Load(service)
	if err != nil {
		boot := kit.NewLogger(service)
		boot.Fatal("load config failed", zap.Error(err))
	}

	log := kit.NewLoggerAt(service, cfg.LogLevel)
	defer func() { _ = log.Sync() }()

	octx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	kv, err := storage.Open(octx, cfg.Storage.Driver, cfg.Storage.DSN)
	cancel()
	if err != nil {
		log.Fatal("open storage failed", zap.Error(err), zap.String("driver", cfg.Storage.Driver))
	}
	defer func() { _ = kv.Close() }()

	carts := cart.NewStore(kv, log)

	svc := checkout.NewService(carts, kv, log)
	svc.Delay = cfg.Cart.CheckoutDelay
	svc.SuccessPath = cfg.Cart.SuccessPath
	svc.Fail = checkout.RandomFailure(cfg.Cart.FailRate)

	reg := prometheus.NewRegistry()
	h := shop.NewHandler(shop.Deps{
		KV:       kv,
		Cart:     carts,
		Checkout: svc,
		Catalog:  cart.NewCatalogClient(cfg.Cart.CatalogURL),
	}, shop.HTTPDeps{
		Log:            log,
		Service:        service,
		Registry:       reg,
		MetricsEnabled: true,
		MetricsToken:   cfg.MetricsToken,
	})

	if err := kit.RunHTTPServer(":"+cfg.Port(), h, log); err != nil {
		log.Error("http server stopped", zap.Error(err))
	}
}
