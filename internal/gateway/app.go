// Package gateway is the public entrypoint. It owns the visitor session
// cookie and forwards requests to the catalog and cart services.
package gateway

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"BloomStore/internal/session"
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
	CatalogURL string
	CartURL    string

	SessionSecret string
	SessionTTL    time.Duration
	CookieSecure  bool

	CheckoutLimit  int
	CheckoutWindow time.Duration
}

const (
	readyTimeout      = 2 * time.Second
	readyProbeTimeout = 700 * time.Millisecond
)

var readyClient = &http.Client{
	Transport: &http.Transport{
		MaxIdleConns:        50,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     30 * time.Second,
	},
}

func NewHandler(deps Deps, httpDeps HTTPDeps) (http.Handler, error) {
	catalogProxy, cartProxy, err := buildProxies(deps, httpDeps.Log)
	if err != nil {
		return nil, err
	}

	issuer := &session.Issuer{
		Tokens: session.NewTokenMaker(deps.SessionSecret),
		TTL:    deps.SessionTTL,
		Secure: deps.CookieSecure,
		Log:    httpDeps.Log,
	}
	limiter := kit.NewIPRateLimiter(deps.CheckoutLimit, deps.CheckoutWindow)

	r := chi.NewRouter()
	r.Use(kit.Common(httpDeps.Log)...)
	setupMetrics(r, httpDeps)

	r.Get("/healthz", kit.Healthz)
	r.Get("/readyz", readyz(deps, httpDeps.Log))

	r.Group(func(pr chi.Router) {
		pr.Use(session.StripHeader)
		pr.Handle("/products", catalogProxy)
		pr.Handle("/products/*", catalogProxy)
		pr.Handle("/cards", catalogProxy)
		pr.Handle("/upsell", catalogProxy)
	})

	r.Group(func(pr chi.Router) {
		pr.Use(session.StripHeader)
		pr.Use(issuer.Middleware)

		pr.Handle("/cart", cartProxy)
		pr.Handle("/cart/*", cartProxy)
		pr.Handle("/success", cartProxy)
		pr.Handle("/bouquet", cartProxy)
		pr.With(limiter.Middleware).Handle("/checkout", cartProxy)
	})

	return r, nil
}

func buildProxies(deps Deps, log *zap.Logger) (catalogProxy, cartProxy http.Handler, err error) {
	cp, err := NewReverseProxy(deps.CatalogURL, log)
	if err != nil {
		return nil, nil, fmt.Errorf("catalog proxy: %w", err)
	}

	sp, err := NewReverseProxy(deps.CartURL, log)
	if err != nil {
		return nil, nil, fmt.Errorf("cart proxy: %w", err)
	}

	return cp, sp, nil
}

func setupMetrics(r *chi.Mux, deps HTTPDeps) {
	if deps.Registry == nil {
		return
	}

	metrics := kit.NewMetrics(deps.Registry)
	r.Use(metrics.Middleware(deps.Service, kit.ChiRoutePatternOrPath))

	if !deps.MetricsEnabled {
		return
	}

	r.With(kit.MetricsAuth(deps.MetricsToken)).
		Handle("/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
}

// readyz probes every upstream at once and reports the first that fails.
func readyz(deps Deps, log *zap.Logger) http.HandlerFunc {
	upstreams := []struct{ name, url string }{
		{"catalog", deps.CatalogURL + "/readyz"},
		{"cart", deps.CartURL + "/readyz"},
	}

	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()

		g, gctx := errgroup.WithContext(ctx)
		for _, u := range upstreams {
			g.Go(func() error {
				if err := checkReady(gctx, u.url); err != nil {
					return fmt.Errorf("%s: %w", u.name, err)
				}
				return nil
			})
		}

		if err := g.Wait(); err != nil {
			if log != nil {
				log.Warn("readyz failed", zap.Error(err))
			}
			kit.WriteError(w, r, http.StatusServiceUnavailable, "not ready", map[string]any{"cause": err.Error()})
			return
		}

		w.WriteHeader(http.StatusOK)
	}
}

func checkReady(ctx context.Context, url string) error {
	cctx, cancel := context.WithTimeout(ctx, readyProbeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(cctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := readyClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status=%d", resp.StatusCode)
	}

	return nil
}
