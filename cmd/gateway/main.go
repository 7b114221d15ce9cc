package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"BloomStore/internal/config"
	"BloomStore/internal/gateway"
	"BloomStore/pkg/kit"
)

func main() {
	service := config.ServiceGateway

	cfg, err := config.Load(service)
	if err != nil {
		boot := kit.NewLogger(service)
		boot.Fatal("load config failed", zap.Error(err))
	}

	log := kit.NewLoggerAt(service, cfg.LogLevel)
	defer func() { _ = log.Sync() }()

	g := cfg.Gateway
	reg := prometheus.NewRegistry()
	h, err := gateway.NewHandler(gateway.Deps{
		CatalogURL:     g.CatalogURL,
		CartURL:        g.CartURL,
		SessionSecret:  g.SessionSecret,
		SessionTTL:     g.SessionTTL,
		CookieSecure:   g.CookieSecure,
		CheckoutLimit:  g.CheckoutLimit,
		CheckoutWindow: g.CheckoutWindow,
	}, gateway.HTTPDeps{
		Log:            log,
		Service:        service,
		Registry:       reg,
		MetricsEnabled: true,
		MetricsToken:   cfg.MetricsToken,
	})
	if err != nil {
		log.Fatal("init gateway handler failed", zap.Error(err))
	}

	if err := kit.RunHTTPServer(":"+cfg.Port(), h, log); err != nil {
		log.Error("http server stopped", zap.Error(err))
	}
}
