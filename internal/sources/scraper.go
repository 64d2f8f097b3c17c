// Package sources implements the per-site scrapers and their shared
// template runner: a polite, resumable crawler that fetches paginated
// listing pages, parses heterogeneous HTML into raw records, and
// normalizes them into canonical listings. Per-site parsing attempts each
// field against a fallback chain of candidate CSS selectors.
package sources

import (
	"context"
	"fmt"
	"hash/fnv"
	"regexp"
	"time"

	"github.com/nyka2002/nekretnine-search/internal/crawler"
	"github.com/nyka2002/nekretnine-search/internal/logger"
	"github.com/nyka2002/nekretnine-search/internal/models"
	"github.com/nyka2002/nekretnine-search/internal/normalize"
	"github.com/nyka2002/nekretnine-search/internal/ratelimit"
	"github.com/nyka2002/nekretnine-search/internal/retry"
	"github.com/nyka2002/nekretnine-search/pkg/fetcher"
)

// RawListingData is what a per-site parser must produce for one listing.
type RawListingData struct {
	ExternalID     string
	URL            string
	Title          string
	Description    string
	PriceText      string
	LocationText   string
	Rooms          *int
	Bedrooms       *int
	Bathrooms      *int
	SurfaceText    string
	Images         []string
	RawAmenities   []string
	AdditionalData map[string]string
}

// PaginationInfo reports the list page's pagination state.
type PaginationInfo struct {
	Current int
	Total   *int
	HasNext bool
	NextURL string
}

// ParsedPage is what a list-page parse callback returns.
type ParsedPage struct {
	Listings   []RawListingData
	Pagination PaginationInfo
}

// Scraper is the per-site contract a source implements; the shared Runner
// drives the traversal so a source only supplies URL computation and
// parsing.
type Scraper interface {
	// Source is the stable source identifier, e.g. "njuskalo".
	Source() string
	// PageURL computes the list page URL for page n (1-indexed).
	PageURL(n int) string
	// ParseList parses a fetched list page into raw listings + pagination.
	ParseList(ctx context.Context, html, pageURL string) (ParsedPage, error)
	// ParseDetail optionally enriches a raw listing from its detail page.
	// A scraper that doesn't need detail fetches may return raw unchanged.
	ParseDetail(ctx context.Context, html string, raw RawListingData) (RawListingData, error)
	// ListingType is rent or sale for this scraper instance (a single site
	// may register separate Scraper instances per listing type).
	ListingType() models.ListingType
}

// Store is the subset of the listing store the runner needs.
type Store interface {
	Insert(ctx context.Context, l *models.Listing) (inserted bool, err error)
}

// Runner drives one Scraper through its page loop.
type Runner struct {
	Fetcher    fetcher.Fetcher
	Limiter    *ratelimit.Limiter
	Store      Store
	MaxPages   int
	FetchDelay time.Duration
}

var externalIDPattern = regexp.MustCompile(`oglas[/-](\d+)`)
var trailingNumeric = regexp.MustCompile(`(\d+)(?:/?$|\.html?$)`)

// ExternalID extracts a raw listing's external id from its URL: the
// oglas/<id> pattern first, then the trailing numeric segment, then a
// 32-bit hash of the URL as a last resort.
func ExternalID(url string) string {
	if m := externalIDPattern.FindStringSubmatch(url); len(m) == 2 {
		return m[1]
	}
	if m := trailingNumeric.FindStringSubmatch(url); len(m) == 2 {
		return m[1]
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(url))
	return fmt.Sprintf("%d", h.Sum32())
}

// Run executes the per-site template: acquire happens at the caller (the
// pool hands the Runner an already-acquired Fetcher); Run walks pages 1..N,
// normalizes and upserts each listing, and returns the aggregated result.
func (r *Runner) Run(ctx context.Context, s Scraper) models.SourceResult {
	start := time.Now()
	result := models.SourceResult{Source: s.Source()}

	maxPages := r.MaxPages
	if maxPages <= 0 {
		maxPages = 50
	}

	for page := 1; page <= maxPages; page++ {
		if err := ctx.Err(); err != nil {
			break // cooperative cancellation checked before each page
		}

		if err := r.Limiter.Throttle(ctx); err != nil {
			result.Errors = append(result.Errors, err.Error())
			break
		}

		pageURL := s.PageURL(page)

		var parsed ParsedPage
		err := retry.Do(ctx, retry.DefaultBackoff(), func(ctx context.Context) error {
			content, ferr := r.Fetcher.Fetch(ctx, pageURL, fetcher.Options{})
			if ferr != nil {
				return ferr
			}
			p, perr := s.ParseList(ctx, content.HTML, pageURL)
			if perr != nil {
				return perr
			}
			parsed = p
			return nil
		})
		if err != nil {
			logger.Warn("source scraper page failed", "source", s.Source(), "page", page, "error", err)
			result.Errors = append(result.Errors, fmt.Sprintf("page %d: %v", page, err))
			continue // a failed page is a source-level error; the loop continues
		}

		for _, raw := range parsed.Listings {
			result.ListingsScraped++

			listing, nerr := normalizeListing(s.Source(), s.ListingType(), raw)
			if nerr != nil {
				result.Errors = append(result.Errors, nerr.Error())
				continue // per-listing errors are counted, loop continues
			}

			inserted, ierr := r.Store.Insert(ctx, listing)
			if ierr != nil {
				result.Errors = append(result.Errors, ierr.Error())
				continue
			}
			if inserted {
				result.ListingsSaved++
			} else {
				result.ListingsDuplicate++ // duplicate insertions are silent, just counted
			}
		}

		if !parsed.Pagination.HasNext {
			break
		}
	}

	result.Duration = time.Since(start)
	return result
}

func normalizeListing(source string, listingType models.ListingType, raw RawListingData) (*models.Listing, error) {
	if raw.ExternalID == "" {
		raw.ExternalID = ExternalID(raw.URL)
	}

	priceResult := normalize.Price(raw.PriceText, string(listingType))
	locationResult := normalize.Location(raw.LocationText)
	amenityResult := normalize.Amenities(raw.RawAmenities, raw.Description)

	additional := map[string]bool{}
	for k, v := range amenityResult.Additional {
		additional[k] = v
	}

	var surface *float64
	if raw.SurfaceText != "" {
		if v, ok := parseSurfaceArea(raw.SurfaceText); ok {
			surface = &v
		}
	}

	now := time.Now()
	l := &models.Listing{
		Source:              source,
		ExternalID:          raw.ExternalID,
		URL:                 raw.URL,
		Title:               raw.Title,
		Description:         raw.Description,
		Images:              raw.Images,
		Price:               priceResult.PriceEUR,
		Currency:            priceResult.Currency,
		ListingType:         listingType,
		City:                locationResult.City,
		Address:             locationResult.Address,
		Rooms:               raw.Rooms,
		Bedrooms:            raw.Bedrooms,
		Bathrooms:           raw.Bathrooms,
		SurfaceAreaM2:       surface,
		HasParking:          amenityResult.HasParking,
		HasBalcony:          amenityResult.HasBalcony,
		HasGarage:           amenityResult.HasGarage,
		IsFurnished:         amenityResult.IsFurnished,
		AdditionalAmenities: additional,
		ScrapedAt:           now,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	return l, nil
}

var surfacePattern = regexp.MustCompile(`[\d.,]+`)

func parseSurfaceArea(raw string) (float64, bool) {
	tok := surfacePattern.FindString(raw)
	if tok == "" {
		return 0, false
	}
	result := normalize.Price(tok, "sale") // reuse numeric-token disambiguation
	return float64(result.PriceEUR), true
}

// labelPatterns maps Croatian property-info labels to the struct field
// they populate.
var labelPatterns = map[string]string{
	"broj soba":      "rooms",
	"sobe":           "rooms",
	"spavaće sobe":   "bedrooms",
	"spavace sobe":   "bedrooms",
	"kupaonice":      "bathrooms",
	"kupaonica":      "bathrooms",
	"broj kupaonica": "bathrooms",
}

// ParseLabelMap extracts rooms/bedrooms/bathrooms integers from a label->value
// map using the Croatian label patterns above.
func ParseLabelMap(labels map[string]string) (rooms, bedrooms, bathrooms *int) {
	for label, value := range labels {
		field, ok := labelPatterns[label]
		if !ok {
			continue
		}
		n, ok := parseLeadingInt(value)
		if !ok {
			continue
		}
		switch field {
		case "rooms":
			rooms = &n
		case "bedrooms":
			bedrooms = &n
		case "bathrooms":
			bathrooms = &n
		}
	}
	return
}

var leadingInt = regexp.MustCompile(`^\D*(\d+)`)

func parseLeadingInt(s string) (int, bool) {
	m := leadingInt.FindStringSubmatch(s)
	if len(m) != 2 {
		return 0, false
	}
	var n int
	if _, err := fmt.Sscanf(m[1], "%d", &n); err != nil {
		return 0, false
	}
	return n, true
}

// FindNextPage runs the CSS-selector pagination detector for scrapers
// that expose a "next" link in their markup rather than an explicit
// has_next flag.
func FindNextPage(nextSelector, html, baseURL string) (string, bool) {
	return crawler.NewPaginationSelector(nextSelector).FindNextPage(html, baseURL)
}
