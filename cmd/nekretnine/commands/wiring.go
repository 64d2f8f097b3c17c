package commands

import (
	"fmt"

	"github.com/nyka2002/nekretnine-search/internal/chat"
	"github.com/nyka2002/nekretnine-search/internal/config"
	"github.com/nyka2002/nekretnine-search/internal/embedding"
	"github.com/nyka2002/nekretnine-search/internal/filters"
	"github.com/nyka2002/nekretnine-search/internal/llm"
	"github.com/nyka2002/nekretnine-search/internal/logger"
	"github.com/nyka2002/nekretnine-search/internal/matcher"
	"github.com/nyka2002/nekretnine-search/internal/models"
	"github.com/nyka2002/nekretnine-search/internal/pool"
	"github.com/nyka2002/nekretnine-search/internal/queue"
	"github.com/nyka2002/nekretnine-search/internal/ranking"
	"github.com/nyka2002/nekretnine-search/internal/ratelimit"
	"github.com/nyka2002/nekretnine-search/internal/search"
	"github.com/nyka2002/nekretnine-search/internal/sources"
	"github.com/nyka2002/nekretnine-search/internal/store"
	"github.com/nyka2002/nekretnine-search/pkg/fetcher"
)

// app bundles the wired components shared by serve/worker/scrape.
type app struct {
	Store       store.Store
	Search      *search.Service
	ChatManager *chat.Manager
	Extractor   *filters.Extractor
	Queue       *queue.Queue
	Worker      *queue.Worker
	Pool        *pool.Pool
}

// build wires the application's components from cfg, constructed once at
// startup and shared by the serve/worker/scrape commands.
func build(cfg config.Config) (*app, error) {
	st := store.NewMemoryStore()

	providerName, apiKey, baseURL, model := cfg.ResolveProvider()
	provCfg := llm.DefaultProviderConfig()
	provCfg.APIKey = apiKey
	provCfg.BaseURL = baseURL
	if model != "" {
		provCfg.Model = model
	} else {
		provCfg.Model = llm.GetDefaultModel(providerName)
	}
	provider, err := llm.NewProvider(providerName, provCfg)
	if err != nil {
		return nil, fmt.Errorf("build: llm provider: %w", err)
	}

	embedder := embedding.NewOpenAIEmbedder(apiKey, "", cfg.EmbeddingModel)
	embedSvc := embedding.New(embedder, embedding.NewCache())

	m := matcher.New(matcher.DefaultWeights())
	rankSvc := ranking.New(ranking.DefaultWeights(), m)
	searchSvc := search.New(embedSvc, st, m, rankSvc, nil)

	extractor := filters.New(provider, filters.DefaultConfig())
	chatManager := chat.New(chat.NewMemoryStore(), nil)

	q := queue.New()
	if err := queue.RegisterDefaultSchedule(q); err != nil {
		return nil, fmt.Errorf("build: register schedule: %w", err)
	}
	if err := queue.RegisterStalenessSweep(q, st, cfg.StalenessDays); err != nil {
		return nil, fmt.Errorf("build: register staleness sweep: %w", err)
	}

	p := pool.New(pool.Config{
		MaxSessions:    cfg.Pool.MaxSessions,
		IdleTimeout:    cfg.Pool.IdleTimeout,
		AcquireWait:    cfg.Pool.AcquireWait,
		AcquireTimeout: cfg.Pool.AcquireTimeout,
		SweepInterval:  cfg.Pool.SweepInterval,
	}, fetcherFactory(cfg.Fetcher))

	worker := queue.NewWorker(q, buildScrapers(cfg, st), p)

	return &app{
		Store: st, Search: searchSvc, ChatManager: chatManager,
		Extractor: extractor, Queue: q, Worker: worker, Pool: p,
	}, nil
}

// fetcherFactory returns the pool's session factory for the configured
// fetch mode: a plain HTML fetcher by default, a headless-browser one for
// every session when the fetcher mode is "dynamic".
func fetcherFactory(fc config.FetcherConfig) pool.Factory {
	if fc.Mode == "dynamic" {
		return func() (fetcher.Fetcher, error) {
			return fetcher.NewDynamic(fetcher.DynamicConfig{
				UserAgent:      fc.UserAgent,
				ViewportWidth:  fc.ViewportWidth,
				ViewportHeight: fc.ViewportHeight,
				Locale:         fc.Locale,
			})
		}
	}
	return func() (fetcher.Fetcher, error) {
		cfg := fetcher.DefaultStaticConfig()
		if fc.UserAgent != "" {
			cfg.UserAgent = fc.UserAgent
		}
		return fetcher.NewStatic(cfg), nil
	}
}

// buildScrapers wires one Runner (and thus one isolated rate limiter) per
// registered source/listing-type pair, so one slow site never throttles the
// others.
func buildScrapers(cfg config.Config, st store.Store) []queue.SourceScraper {
	rl := cfg.RateLimit
	newRunner := func() *sources.Runner {
		return &sources.Runner{
			Limiter: ratelimit.New(ratelimit.Config{
				RequestsPerMinute:    rl.RequestsPerMinute,
				DelayBetweenRequests: rl.DelayBetweenRequests,
				DelayVariance:        rl.DelayVariance,
				DetailDelay:          rl.DetailDelay,
			}),
			Store:    st,
			MaxPages: 50,
		}
	}

	scrapers := []queue.SourceScraper{
		{
			Scraper: sources.NewNjuskaloScraper(models.ListingTypeRent),
			Source:  "njuskalo",
			Runner:  newRunner(),
		},
		{
			Scraper: sources.NewNjuskaloScraper(models.ListingTypeSale),
			Source:  "njuskalo",
			Runner:  newRunner(),
		},
	}

	// Sources beyond the hand-written ones are declared as YAML selector
	// configs; each gets its own rent and sale scraper instances.
	configs, err := sources.LoadSelectorConfigs()
	if err != nil {
		logger.Warn("skipping selector-config sources", "error", err)
		return scrapers
	}
	for _, sc := range configs {
		for _, lt := range []models.ListingType{models.ListingTypeRent, models.ListingTypeSale} {
			scrapers = append(scrapers, queue.SourceScraper{
				Scraper: sources.NewConfigScraper(sc, lt),
				Source:  sc.Source,
				Runner:  newRunner(),
			})
		}
	}
	return scrapers
}
