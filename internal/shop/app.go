// Package shop assembles the cart service: cart, checkout and the custom
// bouquet endpoint, all scoped to the session the gateway injects.
package shop

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"BloomStore/internal/bouquet"
	"BloomStore/internal/cart"
	"BloomStore/internal/checkout"
	"BloomStore/internal/session"
	"BloomStore/internal/storage"
	"BloomStore/pkg/kit"
)

type HTTPDeps struct {
	Log      *zap.Logger
	Service  string
	Registry *prometheus.Registry

	MetricsEnabled bool
	MetricsToken   string
}

type Deps struct {
	KV       storage.Store
	Cart     *cart.Store
	Checkout *checkout.Service
	Catalog  cart.ProductLookup
}

func NewHandler(d Deps, deps HTTPDeps) http.Handler {
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}

	r := chi.NewRouter()
	r.Use(kit.Common(log)...)
	setupMetrics(r, d, deps)

	d.Cart.Subscribe(func(e cart.Event) {
		log.Debug("cart changed",
			zap.String("session", e.Session),
			zap.String("op", string(e.Op)),
			zap.Int("count", e.Count),
		)
	})

	cartSrv := &cart.Server{Store: d.Cart, Catalog: d.Catalog, Log: log}
	checkoutSrv := &checkout.Server{Service: d.Checkout, Log: log}

	r.Get("/healthz", kit.Healthz)
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 1*time.Second)
		defer cancel()

		if err := d.KV.Ping(ctx); err != nil {
			log.Warn("readyz failed", zap.Error(err))
			kit.WriteError(w, r, http.StatusServiceUnavailable, "not ready", nil)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	r.Group(func(pr chi.Router) {
		pr.Use(session.RequireHeader)
		pr.Mount("/cart", cartSrv.Routes())
		pr.Post("/checkout", checkoutSrv.SubmitHandler())
		pr.Get("/success", checkoutSrv.SuccessHandler())
		pr.Method(http.MethodPost, "/bouquet", &bouquet.Handler{Cart: d.Cart, Log: log})
	})

	return r
}

func setupMetrics(r *chi.Mux, d Deps, deps HTTPDeps) {
	if deps.Registry == nil {
		return
	}

	metrics := kit.NewMetrics(deps.Registry)
	r.Use(metrics.Middleware(deps.Service, kit.ChiRoutePatternOrPath))

	cm := cart.NewMetrics(deps.Registry)
	d.Cart.Subscribe(cm.Observe)
	if d.Checkout.Metrics == nil {
		d.Checkout.Metrics = checkout.NewMetrics(deps.Registry)
	}

	if !deps.MetricsEnabled {
		return
	}

	r.With(kit.MetricsAuth(deps.MetricsToken)).
		Handle("/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
}
