package queue

import (
	"context"
	"testing"
	"time"

	"github.com/nyka2002/nekretnine-search/internal/models"
	"github.com/nyka2002/nekretnine-search/internal/pool"
	"github.com/nyka2002/nekretnine-search/internal/ratelimit"
	"github.com/nyka2002/nekretnine-search/internal/sources"
	"github.com/nyka2002/nekretnine-search/internal/store"
	"github.com/nyka2002/nekretnine-search/pkg/fetcher"
	"golang.org/x/time/rate"
)

type fakeFetcher struct{}

func (fakeFetcher) Fetch(ctx context.Context, url string, opts fetcher.Options) (fetcher.Content, error) {
	return fetcher.Content{URL: url, HTML: "<html></html>"}, nil
}
func (fakeFetcher) Close() error { return nil }
func (fakeFetcher) Type() string { return "fake" }

type fakeScraper struct {
	source      string
	listingType models.ListingType
}

func (s fakeScraper) Source() string { return s.source }
func (s fakeScraper) PageURL(n int) string { return "https://example.test/page/" + string(rune('0'+n)) }
func (s fakeScraper) ListingType() models.ListingType { return s.listingType }

func (s fakeScraper) ParseList(ctx context.Context, html, pageURL string) (sources.ParsedPage, error) {
	return sources.ParsedPage{
		Listings: []sources.RawListingData{
			{ExternalID: "1", URL: pageURL, Title: "Test listing", PriceText: "500"},
		},
		Pagination: sources.PaginationInfo{HasNext: false},
	}, nil
}

func (s fakeScraper) ParseDetail(ctx context.Context, html string, raw sources.RawListingData) (sources.RawListingData, error) {
	return raw, nil
}

func newTestWorker(t *testing.T) (*Worker, *Queue) {
	t.Helper()
	q := New()
	st := store.NewMemoryStore()
	scraper := fakeScraper{source: "njuskalo", listingType: models.ListingTypeRent}
	runner := &sources.Runner{
		Limiter: ratelimit.New(ratelimit.Config{RequestsPerMinute: 1000}),
		Store:   st,
		MaxPages: 1,
	}
	p := pool.New(pool.Config{MaxSessions: 1, IdleTimeout: time.Minute, AcquireWait: 10 * time.Millisecond, AcquireTimeout: time.Second, SweepInterval: time.Hour},
		func() (fetcher.Fetcher, error) { return fakeFetcher{}, nil })

	w := NewWorker(q, []SourceScraper{{Scraper: scraper, Source: "njuskalo", Runner: runner}}, p)
	w.Limiter = rate.NewLimiter(rate.Inf, 1)
	return w, q
}

func TestWorkerProcessesJobAndPublishesProgress(t *testing.T) {
	w, q := newTestWorker(t)
	defer q.Stop()

	var progressCount int
	w.OnProgress = func(p models.JobProgress) { progressCount++ }

	q.Add(models.ScrapeJob{Type: models.ScrapeJobFullScrape}, DefaultAddOptions())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	entry := q.Pop(ctx)
	if entry == nil {
		t.Fatalf("expected a popped job")
	}
	w.runJob(ctx, entry)

	if entry.State != models.JobStateCompleted {
		t.Fatalf("expected job completed, got %v", entry.State)
	}
	if entry.Result == nil || len(entry.Result.Sources) != 1 {
		t.Fatalf("expected 1 source result")
	}
	if entry.Result.Sources[0].ListingsScraped != 1 {
		t.Fatalf("expected 1 listing scraped, got %d", entry.Result.Sources[0].ListingsScraped)
	}
	if progressCount == 0 {
		t.Fatalf("expected progress callbacks to fire")
	}
}

func TestWorkerDispatchBySource(t *testing.T) {
	w, _ := newTestWorker(t)
	targets := w.selectScrapers(models.ScrapeJob{Type: models.ScrapeJobSingleSource, Source: "njuskalo"})
	if len(targets) != 1 {
		t.Fatalf("expected 1 target for matching source, got %d", len(targets))
	}

	targets2 := w.selectScrapers(models.ScrapeJob{Type: models.ScrapeJobSingleSource, Source: "nonexistent"})
	if len(targets2) != 0 {
		t.Fatalf("expected 0 targets for non-matching source, got %d", len(targets2))
	}
}
