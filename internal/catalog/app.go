package catalog

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"BloomStore/pkg/kit"
)

const gaugeTimeout = 500 * time.Millisecond

type HTTPDeps struct {
	Log      *zap.Logger
	Service  string
	Registry *prometheus.Registry

	MetricsEnabled bool
	MetricsToken   string
}

func NewHandler(s *Server, deps HTTPDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(kit.Common(deps.Log)...)
	setupMetrics(r, s, deps)

	r.Mount("/", s.Routes())
	return r
}

// cacheFor lets browsers keep responses for d. Zero adds no header.
func cacheFor(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if d <= 0 {
			return next
		}
		value := fmt.Sprintf("public, max-age=%d", int(d.Seconds()))
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", value)
			next.ServeHTTP(w, r)
		})
	}
}

func setupMetrics(r *chi.Mux, s *Server, deps HTTPDeps) {
	if deps.Registry == nil {
		return
	}

	metrics := kit.NewMetrics(deps.Registry)
	r.Use(metrics.Middleware(deps.Service, kit.ChiRoutePatternOrPath))

	deps.Registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: "bloomstore",
			Name:      "catalog_products",
			Help:      "Products the catalog currently serves",
		},
		func() float64 { return float64(productCount(s.Store)) },
	))

	if !deps.MetricsEnabled {
		return
	}

	r.With(kit.MetricsAuth(deps.MetricsToken)).
		Handle("/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
}

func productCount(store Store) int {
	ctx, cancel := context.WithTimeout(context.Background(), gaugeTimeout)
	defer cancel()

	ps, err := store.List(ctx)
	if err != nil {
		return 0
	}
	return len(ps)
}
