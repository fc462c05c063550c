// Package provider fetches live data for generated dashboards.
// It caches results per source so the preview server and the CLI can share
// one set of upstream requests. Every source degrades to demo data on
// failure; callers always get a usable data object.
package provider

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Defaults for Config.
const (
	DefaultTimeout = 10 * time.Second
	DefaultTTL     = time.Minute
)

// Source is one upstream API.
type Source interface {
	// Name is the top-level data key the source fills.
	Name() string
	// Fetch queries the upstream API.
	Fetch(ctx context.Context) (any, error)
	// Demo returns deterministic fallback data.
	Demo() any
}

// Config configures the built-in sources.
type Config struct {
	Timeout     time.Duration
	TTL         time.Duration
	Coins       []string
	Cities      []string
	Language    string
	GitHubToken string

	// Base URLs; empty means the public API.
	CryptoURL  string
	WeatherURL string
	GitHubURL  string

	// Offline skips the network and serves demo data.
	Offline bool

	Client *http.Client
	Logger *slog.Logger
}

// Result is the outcome of fetching one source.
type Result struct {
	Source    string    `json:"source"`
	Value     any       `json:"value"`
	Live      bool      `json:"live"`
	Error     string    `json:"error,omitempty"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Provider manages sources and caches their results.
type Provider struct {
	sources map[string]Source
	order   []string

	cache   map[string]*Result
	cacheMu sync.RWMutex
	fetchMu map[string]*sync.Mutex

	timeout time.Duration
	ttl     time.Duration
	offline bool
	logger  *slog.Logger
	now     func() time.Time
}

// New creates a Provider with the crypto, weather and GitHub sources.
func New(cfg Config) *Provider {
	client := cfg.Client
	if client == nil {
		client = &http.Client{}
	}
	return NewWithSources(cfg,
		&CryptoProvider{BaseURL: orDefault(cfg.CryptoURL, DefaultCryptoURL), Coins: cfg.Coins, Client: client},
		&WeatherProvider{BaseURL: orDefault(cfg.WeatherURL, DefaultWeatherURL), Cities: cfg.Cities, Client: client},
		&GitHubProvider{BaseURL: orDefault(cfg.GitHubURL, DefaultGitHubURL), Language: cfg.Language, Token: cfg.GitHubToken, Client: client},
	)
}

// NewWithSources creates a Provider over the given sources. Later sources
// replace earlier ones with the same name.
func NewWithSources(cfg Config, sources ...Source) *Provider {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ttl := cfg.TTL
	if ttl == 0 {
		ttl = DefaultTTL
	}

	p := &Provider{
		sources: make(map[string]Source, len(sources)),
		cache:   make(map[string]*Result),
		fetchMu: make(map[string]*sync.Mutex, len(sources)),
		timeout: timeout,
		ttl:     ttl,
		offline: cfg.Offline,
		logger:  logger,
		now:     time.Now,
	}
	for _, s := range sources {
		if _, dup := p.sources[s.Name()]; !dup {
			p.order = append(p.order, s.Name())
		}
		p.sources[s.Name()] = s
		p.fetchMu[s.Name()] = &sync.Mutex{}
	}
	return p
}

// Sources returns the source names in registration order.
func (p *Provider) Sources() []string {
	return append([]string(nil), p.order...)
}

// Get returns a cached result without fetching. Returns nil if not cached.
func (p *Provider) Get(name string) *Result {
	p.cacheMu.RLock()
	defer p.cacheMu.RUnlock()
	return p.cache[name]
}

// GetOrFetch returns a fresh cached result or fetches the source.
// Thread-safe for concurrent access.
func (p *Provider) GetOrFetch(ctx context.Context, name string) (*Result, error) {
	src, ok := p.sources[name]
	if !ok {
		return nil, fmt.Errorf("unknown data source: %s", name)
	}

	p.cacheMu.RLock()
	res, exists := p.cache[name]
	if exists && p.fresh(res) {
		p.cacheMu.RUnlock()
		return res, nil
	}
	p.cacheMu.RUnlock()

	// One fetch per source at a time; other sources proceed.
	mu := p.fetchMu[name]
	mu.Lock()
	defer mu.Unlock()

	// Double-check after acquiring the fetch lock
	if res := p.Get(name); res != nil && p.fresh(res) {
		return res, nil
	}

	res = p.fetch(ctx, src)
	p.cacheMu.Lock()
	p.cache[name] = res
	p.cacheMu.Unlock()
	return res, nil
}

func (p *Provider) fresh(res *Result) bool {
	return p.ttl > 0 && p.now().Sub(res.FetchedAt) < p.ttl
}

// fetch runs one source, falling back to its demo data.
func (p *Provider) fetch(ctx context.Context, src Source) *Result {
	res := &Result{Source: src.Name(), FetchedAt: p.now()}
	if p.offline {
		res.Value = src.Demo()
		return res
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	start := time.Now()
	value, err := src.Fetch(ctx)
	if err != nil {
		p.logger.Warn("data source failed, using demo data",
			slog.String("source", src.Name()),
			slog.String("error", err.Error()))
		res.Value = src.Demo()
		res.Error = err.Error()
		return res
	}

	p.logger.Debug("fetched data source",
		slog.String("source", src.Name()),
		slog.Duration("elapsed", time.Since(start)))
	res.Value = value
	res.Live = true
	return res
}

// Invalidate removes a source's cached result.
func (p *Provider) Invalidate(name string) {
	p.cacheMu.Lock()
	defer p.cacheMu.Unlock()
	delete(p.cache, name)
}

// InvalidateAll clears the cache.
func (p *Provider) InvalidateAll() {
	p.cacheMu.Lock()
	defer p.cacheMu.Unlock()
	p.cache = make(map[string]*Result)
}

// Collect fetches every source concurrently and assembles the data object,
// keyed by source name. Results are returned in registration order.
func (p *Provider) Collect(ctx context.Context) (map[string]any, []*Result) {
	results := make([]*Result, len(p.order))

	g, gctx := errgroup.WithContext(ctx)
	for i, name := range p.order {
		g.Go(func() error {
			res, err := p.GetOrFetch(gctx, name)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	// Names come from p.order, so GetOrFetch cannot fail here.
	_ = g.Wait()

	data := make(map[string]any, len(results))
	for _, res := range results {
		if res != nil {
			data[res.Source] = res.Value
		}
	}
	return data, results
}

// Collect fetches all built-in sources once with cfg.
func Collect(ctx context.Context, cfg Config) map[string]any {
	data, _ := New(cfg).Collect(ctx)
	return data
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
