package app

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/jcaMx/company-extractor-web/internal/cache"
	"github.com/jcaMx/company-extractor-web/internal/discover"
	"github.com/jcaMx/company-extractor-web/internal/extract"
	"github.com/jcaMx/company-extractor-web/internal/fetch"
	"github.com/jcaMx/company-extractor-web/internal/llm"
	"github.com/jcaMx/company-extractor-web/internal/model"
	"github.com/jcaMx/company-extractor-web/internal/robots"
	"github.com/jcaMx/company-extractor-web/internal/store"
	"github.com/jcaMx/company-extractor-web/internal/summarize"
)

// ErrInvalidURL is returned when the company URL is not an absolute http(s) URL.
var ErrInvalidURL = errors.New("invalid URL")

// App runs the discover, scrape and summarise pipeline for one company URL
// at a time. It is safe for concurrent use.
type App struct {
	cfg        Config
	fetcher    *fetch.Client
	extractor  extract.Extractor
	robots     *robots.Manager
	summarizer *summarize.Summarizer
	store      *store.Store
}

// New builds an App backed by an OpenAI-compatible endpoint and checks that
// the endpoint answers.
func New(ctx context.Context, cfg Config) (*App, error) {
	provider := llm.NewOpenAI(llm.Options{
		BaseURL:    cfg.LLMBaseURL,
		APIKey:     cfg.LLMAPIKey,
		HTTPClient: llmHTTPClient(cfg),
	})
	a, err := NewWithClient(cfg, provider)
	if err != nil {
		return nil, err
	}
	Preflight(ctx, provider)
	return a, nil
}

// NewWithClient builds an App around an existing chat client.
func NewWithClient(cfg Config, client llm.Client) (*App, error) {
	ex, err := extract.ForMode(cfg.ExtractMode)
	if err != nil {
		return nil, err
	}

	var httpCache *cache.HTTPCache
	var llmCache *cache.LLMCache
	if cfg.CacheDir != "" {
		if cfg.CacheClear {
			if err := cache.ClearDir(cfg.CacheDir); err != nil {
				log.Warn().Err(err).Str("dir", cfg.CacheDir).Msg("clear cache")
			}
		}
		if cfg.CacheMaxAge > 0 {
			if n, err := cache.PurgeByAge(cfg.CacheDir, cfg.CacheMaxAge); err != nil {
				log.Warn().Err(err).Msg("purge cache")
			} else if n > 0 {
				log.Info().Int("removed", n).Msg("purged stale cache entries")
			}
		}
		httpCache, llmCache = cache.Open(cfg.CacheDir, cfg.CacheStrictPerms)
	}

	httpClient := pageHTTPClient(cfg)
	a := &App{
		cfg:       cfg,
		extractor: ex,
		fetcher: &fetch.Client{
			HTTPClient:        httpClient,
			UserAgent:         cfg.UserAgent,
			MaxAttempts:       cfg.FetchAttempts,
			PerRequestTimeout: cfg.FetchTimeout,
			Cache:             httpCache,
			BypassCache:       cfg.CacheClear,
			RedirectMaxHops:   5,
			MaxConcurrent:     cfg.MaxConcurrent,
		},
		summarizer: &summarize.Summarizer{
			Client:       client,
			Model:        cfg.LLMModel,
			Cache:        llmCache,
			MaxChars:     cfg.MaxChars,
			SystemPrompt: cfg.SystemPrompt,
			CacheOnly:    cfg.LLMCacheOnly,
		},
	}
	if cfg.RespectRobots {
		a.robots = &robots.Manager{HTTPClient: httpClient, UserAgent: a.userAgent()}
	}
	if cfg.StorePath != "" {
		st, err := store.Open(cfg.StorePath)
		if err != nil {
			return nil, fmt.Errorf("open store: %w", err)
		}
		a.store = st
	}
	return a, nil
}

// Preflight lists models to surface connectivity problems early. It only
// warns; summarisation reports real failures per section.
func Preflight(ctx context.Context, client llm.Client) {
	lister, ok := client.(llm.ModelLister)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	models, err := lister.ListModels(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("LLM model list failed; continuing")
		return
	}
	if len(models.Models) == 0 {
		log.Warn().Msg("LLM returned zero models")
		return
	}
	log.Info().Int("count", len(models.Models)).Msg("LLM models available")
}

// Store returns the archive, or nil when none is configured.
func (a *App) Store() *store.Store { return a.store }

func (a *App) Close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			log.Warn().Err(err).Msg("close store")
		}
	}
}

func (a *App) userAgent() string {
	if a.cfg.UserAgent != "" {
		return a.cfg.UserAgent
	}
	return fetch.DefaultUserAgent
}

// ValidateURL checks that raw is an absolute http(s) URL with a host.
func ValidateURL(raw string) error {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	scheme := strings.ToLower(u.Scheme)
	if (scheme != "http" && scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidURL, raw)
	}
	return nil
}

// Extract discovers the company's key pages and summarises each one.
// Sections whose scrape or summary fails are left out. A successful result
// is archived when a store is configured.
func (a *App) Extract(ctx context.Context, companyURL string) (*model.ExtractionResult, error) {
	companyURL = strings.TrimSpace(companyURL)
	if err := ValidateURL(companyURL); err != nil {
		return nil, err
	}

	opts := discover.Options{Keywords: a.cfg.Keywords}
	if a.robots != nil {
		opts.Allow = a.robots.Allowed
	}
	d, err := discover.Discover(ctx, a.fetcher, companyURL, opts)
	if err != nil {
		return nil, err
	}

	sections := make([]*model.Section, len(d.Pages))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency())
	for i, p := range d.Pages {
		g.Go(func() error {
			sections[i] = a.summarizePage(gctx, p)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := &model.ExtractionResult{Company: d.Company}
	for i, p := range d.Pages {
		if sections[i] != nil {
			res.Summaries.Set(p.Section, *sections[i])
		}
	}
	log.Info().Str("company", res.Company).Int("sections", res.Summaries.Len()).Msg("extraction complete")

	if a.store != nil {
		if _, err := a.store.Save(ctx, companyURL, res); err != nil {
			log.Warn().Err(err).Str("url", companyURL).Msg("archive extraction")
		}
	}
	return res, nil
}

func (a *App) summarizePage(ctx context.Context, p discover.Page) *model.Section {
	logger := log.With().Str("section", p.Section).Str("url", p.URL).Logger()
	logger.Info().Msg("summarizing page")

	text := a.scrape(ctx, p.URL)
	if text == "" {
		return nil
	}
	summary, err := a.summarizer.Summarize(ctx, text)
	if err != nil {
		logger.Error().Err(err).Msg("summarize failed; skipping section")
		return nil
	}
	return &model.Section{URL: p.URL, Summary: summary}
}

// scrape returns the readable text of pageURL, or "" when it cannot be read.
func (a *App) scrape(ctx context.Context, pageURL string) string {
	body, _, err := a.fetcher.Get(ctx, pageURL)
	if err != nil {
		log.Error().Err(err).Str("url", pageURL).Msg("scrape failed")
		return ""
	}
	doc := a.extractor.Extract(pageURL, body)
	return strings.TrimSpace(doc.Text)
}

func (a *App) concurrency() int {
	if a.cfg.Concurrency > 0 {
		return a.cfg.Concurrency
	}
	return DefaultConcurrency
}
