package httpapi

import (
	"time"

	"github.com/nyka2002/nekretnine-search/internal/models"
	"github.com/nyka2002/nekretnine-search/internal/ranking"
)

// listingDTO is the wire shape returned for a listing.
type listingDTO struct {
	ID            string              `json:"id"`
	Source        string              `json:"source"`
	URL           string              `json:"url"`
	Title         string              `json:"title"`
	Description   string              `json:"description,omitempty"`
	Price         int                 `json:"price"`
	Currency      string              `json:"currency"`
	ListingType   models.ListingType  `json:"listing_type"`
	PropertyType  models.PropertyType `json:"property_type"`
	City          string              `json:"city"`
	Address       string              `json:"address,omitempty"`
	Rooms         *int                `json:"rooms,omitempty"`
	SurfaceAreaM2 *float64            `json:"surface_area_m2,omitempty"`
	HasParking    bool                `json:"has_parking"`
	HasBalcony    bool                `json:"has_balcony"`
	IsFurnished   bool                `json:"is_furnished"`
	ScrapedAt     time.Time           `json:"scraped_at"`
	Score         *scoreDTO           `json:"score,omitempty"`
}

type scoreDTO struct {
	Combined    float64 `json:"combined"`
	Semantic    float64 `json:"semantic"`
	FilterMatch float64 `json:"filter_match"`
	Recency     float64 `json:"recency"`
	Freshness   float64 `json:"freshness"`
}

func toListingDTO(l *models.Listing) listingDTO {
	return listingDTO{
		ID: l.ID, Source: l.Source, URL: l.URL, Title: l.Title, Description: l.Description,
		Price: l.Price, Currency: l.Currency, ListingType: l.ListingType, PropertyType: l.PropertyType,
		City: l.City, Address: l.Address, Rooms: l.Rooms, SurfaceAreaM2: l.SurfaceAreaM2,
		HasParking: l.HasParking, HasBalcony: l.HasBalcony, IsFurnished: l.IsFurnished,
		ScrapedAt: l.ScrapedAt,
	}
}

func toRankedDTO(r ranking.Result) listingDTO {
	d := toListingDTO(r.Listing)
	d.Score = &scoreDTO{
		Combined: r.Scores.Combined, Semantic: r.Scores.Semantic,
		FilterMatch: r.Scores.FilterMatch, Recency: r.Scores.Recency, Freshness: r.Scores.Freshness,
	}
	return d
}

// filtersDTO mirrors models.ExtractedFilters for JSON output.
type filtersDTO struct {
	ListingType    *models.ListingType  `json:"listing_type,omitempty"`
	PropertyType   *models.PropertyType `json:"property_type,omitempty"`
	PriceMin       *int                 `json:"price_min,omitempty"`
	PriceMax       *int                 `json:"price_max,omitempty"`
	Location       *string              `json:"location,omitempty"`
	RoomsMin       *int                 `json:"rooms_min,omitempty"`
	RoomsMax       *int                 `json:"rooms_max,omitempty"`
	SurfaceAreaMin *float64             `json:"surface_area_min,omitempty"`
	SurfaceAreaMax *float64             `json:"surface_area_max,omitempty"`
	HasParking     *bool                `json:"has_parking,omitempty"`
	HasBalcony     *bool                `json:"has_balcony,omitempty"`
	HasGarage      *bool                `json:"has_garage,omitempty"`
	IsFurnished    *bool                `json:"is_furnished,omitempty"`
	Amenities      []string             `json:"amenities,omitempty"`
}

func toFiltersDTO(f models.ExtractedFilters) filtersDTO {
	return filtersDTO{
		ListingType: f.ListingType, PropertyType: f.PropertyType,
		PriceMin: f.PriceMin, PriceMax: f.PriceMax, Location: f.Location,
		RoomsMin: f.RoomsMin, RoomsMax: f.RoomsMax,
		SurfaceAreaMin: f.SurfaceAreaMin, SurfaceAreaMax: f.SurfaceAreaMax,
		HasParking: f.HasParking, HasBalcony: f.HasBalcony, HasGarage: f.HasGarage,
		IsFurnished: f.IsFurnished, Amenities: f.Amenities,
	}
}

// chatRequest is the POST /chat request body.
type chatRequest struct {
	Query     string `json:"query"`
	SessionID string `json:"session_id,omitempty"`
}

// chatResponse is the POST /chat response body. Cached reports whether the
// turn's query embedding was served from the cache.
type chatResponse struct {
	SessionID         string       `json:"session_id"`
	Message           string       `json:"message"`
	ExtractedFilters  filtersDTO   `json:"extracted_filters"`
	Listings          []listingDTO `json:"listings,omitempty"`
	FollowUpQuestions []string     `json:"follow_up_questions,omitempty"`
	TotalMatches      int          `json:"total_matches"`
	Cached            bool         `json:"cached"`
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

type listListingsResponse struct {
	Listings []listingDTO `json:"listings"`
	Total    int          `json:"total"`
}

type listingDetailResponse struct {
	Listing listingDTO   `json:"listing"`
	Similar []listingDTO `json:"similar,omitempty"`
}

type triggerScrapingRequest struct {
	Source      string `json:"source,omitempty"`
	ListingType string `json:"listing_type,omitempty"`
}

type triggerScrapingResponse struct {
	JobID string `json:"job_id"`
}

type scrapingStatusResponse struct {
	Waiting   int            `json:"waiting"`
	Active    int            `json:"active"`
	Completed int            `json:"completed"`
	Failed    int            `json:"failed"`
	Delayed   int            `json:"delayed"`
	Recent    []recentJobDTO `json:"recent"`
}

type recentJobDTO struct {
	JobID      string    `json:"job_id"`
	Type       string    `json:"type"`
	State      string    `json:"state"`
	EnqueuedAt time.Time `json:"enqueued_at"`
	Error      string    `json:"error,omitempty"`
}
