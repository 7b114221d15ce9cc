// Package config loads service settings from defaults, an optional YAML
// file named by CONFIG_FILE and the environment, in that order. A .env file
// in the working directory is loaded into the environment first.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	ServiceGateway = "gateway"
	ServiceCatalog = "catalog"
	ServiceCart    = "cart"
)

const minSecretLen = 32

var ErrInvalid = errors.New("invalid config")

type Storage struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

type Catalog struct {
	Port string `yaml:"port"`
	// Source is memory, file or postgres.
	Source   string        `yaml:"source"`
	File     string        `yaml:"file"`
	DSN      string        `yaml:"dsn"`
	Debounce time.Duration `yaml:"debounce"`
	// CacheMaxAge is the browser cache lifetime of catalog reads.
	CacheMaxAge time.Duration `yaml:"cache_max_age"`
}

type Cart struct {
	Port          string        `yaml:"port"`
	CatalogURL    string        `yaml:"catalog_url"`
	CheckoutDelay time.Duration `yaml:"checkout_delay"`
	SuccessPath   string        `yaml:"success_path"`
	// FailRate in [0,1] makes that share of checkouts fail on purpose.
	FailRate float64 `yaml:"fail_rate"`
}

type Gateway struct {
	Port           string        `yaml:"port"`
	CatalogURL     string        `yaml:"catalog_url"`
	CartURL        string        `yaml:"cart_url"`
	SessionSecret  string        `yaml:"session_secret"`
	SessionTTL     time.Duration `yaml:"session_ttl"`
	CookieSecure   bool          `yaml:"cookie_secure"`
	CheckoutLimit  int           `yaml:"checkout_limit"`
	CheckoutWindow time.Duration `yaml:"checkout_window"`
}

type Config struct {
	Service      string  `yaml:"-"`
	LogLevel     string  `yaml:"log_level"`
	MetricsToken string  `yaml:"metrics_token"`
	Storage      Storage `yaml:"storage"`
	Catalog      Catalog `yaml:"catalog"`
	Cart         Cart    `yaml:"cart"`
	Gateway      Gateway `yaml:"gateway"`
}

func Defaults(service string) Config {
	return Config{
		Service:  service,
		LogLevel: "info",
		Storage:  Storage{Driver: "memory"},
		Catalog: Catalog{
			Port:        "8082",
			Source:      "memory",
			Debounce:    250 * time.Millisecond,
			CacheMaxAge: time.Minute,
		},
		Cart: Cart{
			Port:          "8083",
			CatalogURL:    "http://localhost:8082",
			CheckoutDelay: 1200 * time.Millisecond,
			SuccessPath:   "/success.html",
		},
		Gateway: Gateway{
			Port:           "8080",
			CatalogURL:     "http://localhost:8082",
			CartURL:        "http://localhost:8083",
			SessionTTL:     30 * 24 * time.Hour,
			CheckoutLimit:  5,
			CheckoutWindow: time.Minute,
		},
	}
}

// Load builds the configuration for one service.
func Load(service string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Defaults(service)

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := cfg.mergeYAML(raw); err != nil {
			return Config{}, err
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) mergeYAML(raw []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil {
		return fmt.Errorf("%w: yaml: %v", ErrInvalid, err)
	}
	return nil
}

type lookupFunc func(string) (string, bool)

func (c *Config) applyEnv(lookup lookupFunc) error {
	e := envReader{lookup: lookup}

	e.str("LOG_LEVEL", &c.LogLevel)
	e.str("METRICS_TOKEN", &c.MetricsToken)
	e.str("STORAGE_DRIVER", &c.Storage.Driver)
	e.str("STORAGE_DSN", &c.Storage.DSN)

	e.str("CATALOG_SOURCE", &c.Catalog.Source)
	e.str("CATALOG_FILE", &c.Catalog.File)
	e.str("CATALOG_DSN", &c.Catalog.DSN)
	e.dur("CATALOG_DEBOUNCE", &c.Catalog.Debounce)
	e.dur("CATALOG_CACHE_MAX_AGE", &c.Catalog.CacheMaxAge)

	e.str("CATALOG_URL", &c.Cart.CatalogURL)
	e.str("CATALOG_URL", &c.Gateway.CatalogURL)
	e.str("CART_URL", &c.Gateway.CartURL)

	e.dur("CHECKOUT_DELAY", &c.Cart.CheckoutDelay)
	e.str("CHECKOUT_SUCCESS_PATH", &c.Cart.SuccessPath)
	e.float("CHECKOUT_FAIL_RATE", &c.Cart.FailRate)

	e.str("SESSION_SECRET", &c.Gateway.SessionSecret)
	e.dur("SESSION_TTL", &c.Gateway.SessionTTL)
	e.boolean("COOKIE_SECURE", &c.Gateway.CookieSecure)
	e.integer("CHECKOUT_RATE_LIMIT", &c.Gateway.CheckoutLimit)
	e.dur("CHECKOUT_RATE_WINDOW", &c.Gateway.CheckoutWindow)

	if port, ok := lookup("PORT"); ok && port != "" {
		c.setPort(port)
	}
	return e.err
}

// Port is the listen port of the configured service.
func (c Config) Port() string {
	switch c.Service {
	case ServiceGateway:
		return c.Gateway.Port
	case ServiceCatalog:
		return c.Catalog.Port
	case ServiceCart:
		return c.Cart.Port
	}
	return ""
}

func (c *Config) setPort(p string) {
	switch c.Service {
	case ServiceGateway:
		c.Gateway.Port = p
	case ServiceCatalog:
		c.Catalog.Port = p
	case ServiceCart:
		c.Cart.Port = p
	}
}

func (c Config) Validate() error {
	var errs []error

	if c.Port() == "" {
		errs = append(errs, fmt.Errorf("%w: no port for service %q", ErrInvalid, c.Service))
	}

	switch c.Service {
	case ServiceGateway:
		if len(c.Gateway.SessionSecret) < minSecretLen {
			errs = append(errs, fmt.Errorf("%w: SESSION_SECRET must be at least %d chars", ErrInvalid, minSecretLen))
		}
		if c.Gateway.CheckoutLimit <= 0 || c.Gateway.CheckoutWindow <= 0 {
			errs = append(errs, fmt.Errorf("%w: checkout rate limit must be positive", ErrInvalid))
		}
	case ServiceCatalog:
		switch c.Catalog.Source {
		case "memory":
		case "file":
			if c.Catalog.File == "" {
				errs = append(errs, fmt.Errorf("%w: CATALOG_FILE required for file source", ErrInvalid))
			}
		case "postgres":
			if c.Catalog.DSN == "" {
				errs = append(errs, fmt.Errorf("%w: CATALOG_DSN required for postgres source", ErrInvalid))
			}
		default:
			errs = append(errs, fmt.Errorf("%w: unknown catalog source %q", ErrInvalid, c.Catalog.Source))
		}
	case ServiceCart:
		if c.Cart.FailRate < 0 || c.Cart.FailRate > 1 {
			errs = append(errs, fmt.Errorf("%w: CHECKOUT_FAIL_RATE must be within [0,1]", ErrInvalid))
		}
	}

	return errors.Join(errs...)
}

type envReader struct {
	lookup lookupFunc
	err    error
}

func (e *envReader) get(key string) (string, bool) {
	v, ok := e.lookup(key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func (e *envReader) fail(key string, err error) {
	e.err = errors.Join(e.err, fmt.Errorf("%w: %s: %v", ErrInvalid, key, err))
}

func (e *envReader) str(key string, dst *string) {
	if v, ok := e.get(key); ok {
		*dst = v
	}
}

func (e *envReader) dur(key string, dst *time.Duration) {
	v, ok := e.get(key)
	if !ok {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		e.fail(key, err)
		return
	}
	*dst = d
}

func (e *envReader) integer(key string, dst *int) {
	v, ok := e.get(key)
	if !ok {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		e.fail(key, err)
		return
	}
	*dst = n
}

func (e *envReader) float(key string, dst *float64) {
	v, ok := e.get(key)
	if !ok {
		return
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		e.fail(key, err)
		return
	}
	*dst = f
}

func (e *envReader) boolean(key string, dst *bool) {
	v, ok := e.get(key)
	if !ok {
		return
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		e.fail(key, err)
		return
	}
	*dst = b
}
