// Package filters implements the natural-language filter extractor: a
// single language-model call with a JSON-mode instruction encoding the
// filter schema, a fixed Croatian/English vocabulary table, and three
// few-shot examples, followed by a strict validation pass with enumerated
// allowed values and drop-unknown-fields semantics.
package filters

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/nyka2002/nekretnine-search/internal/errkind"
	"github.com/nyka2002/nekretnine-search/internal/llm"
	"github.com/nyka2002/nekretnine-search/internal/logger"
	"github.com/nyka2002/nekretnine-search/internal/models"
	"github.com/nyka2002/nekretnine-search/internal/normalize"
)

// Config controls the single extraction call.
type Config struct {
	Temperature float64
	MaxTokens   int
}

// DefaultConfig returns the fixed extraction options: temperature=0.1, max_tokens=800.
func DefaultConfig() Config {
	return Config{Temperature: 0.1, MaxTokens: 800}
}

// Extractor converts free-text queries into ExtractedFilters via a single
// LLM call.
type Extractor struct {
	provider llm.Provider
	config   Config
}

// New creates an Extractor.
func New(provider llm.Provider, cfg Config) *Extractor {
	return &Extractor{provider: provider, config: cfg}
}

// rawExtraction is the shape the LLM is instructed to return. String fields
// because the LLM may emit an unknown token that must be dropped, not
// rejected outright.
type rawExtraction struct {
	ListingType    string   `json:"listing_type,omitempty" description:"rent or sale" examples:"rent,sale"`
	PropertyType   string   `json:"property_type,omitempty" description:"apartment, house, office, land, or other" examples:"apartment,house,office,land,other"`
	PriceMin       *float64 `json:"price_min,omitempty" description:"minimum price in the query's stated currency/unit"`
	PriceMax       *float64 `json:"price_max,omitempty" description:"maximum price in the query's stated currency/unit"`
	Location       string   `json:"location,omitempty" description:"city or neighborhood named in the query"`
	RoomsMin       *float64 `json:"rooms_min,omitempty"`
	RoomsMax       *float64 `json:"rooms_max,omitempty"`
	SurfaceAreaMin *float64 `json:"surface_area_min,omitempty" description:"minimum surface area in square meters"`
	SurfaceAreaMax *float64 `json:"surface_area_max,omitempty" description:"maximum surface area in square meters"`
	HasParking     *bool    `json:"has_parking,omitempty" description:"true only if parking is explicitly requested"`
	HasBalcony     *bool    `json:"has_balcony,omitempty" description:"true only if a balcony is explicitly requested"`
	HasGarage      *bool    `json:"has_garage,omitempty" description:"true only if a garage is explicitly requested"`
	IsFurnished    *bool    `json:"is_furnished,omitempty" description:"true only if furnished is explicitly requested"`
	Amenities      []string `json:"amenities,omitempty" description:"free-text amenity phrases not covered by the boolean fields above"`

	Confidence         float64            `json:"confidence" description:"overall extraction confidence in [0,1]"`
	PerFieldConfidence map[string]float64 `json:"per_field_confidence,omitempty" description:"per-field confidence in [0,1], keyed by field name"`
	AmbiguousFields    []string           `json:"ambiguous_fields" description:"names of fields the query left genuinely ambiguous"`
}

// Extract converts a free-text query into filters + confidence. Empty
// input returns empty filters with confidence 0 and ambiguous_fields=[all]
// without calling the provider.
func (e *Extractor) Extract(ctx context.Context, query string) (models.ExtractedFilters, models.ExtractionConfidence, error) {
	if strings.TrimSpace(query) == "" {
		return models.ExtractedFilters{}, models.ExtractionConfidence{
			Overall:         0,
			AmbiguousFields: []string{"all"},
		}, nil
	}

	resp, err := e.provider.Complete(ctx, llm.CompletionRequest{
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: SystemPrompt()},
			{Role: llm.RoleUser, Content: BuildPrompt(query)},
		},
		MaxTokens:   e.config.MaxTokens,
		Temperature: e.config.Temperature,
		JSONSchema:  JSONSchema(),
	})
	if err != nil {
		return models.ExtractedFilters{}, models.ExtractionConfidence{}, wrapProviderError(err)
	}

	var raw rawExtraction
	if uerr := json.Unmarshal([]byte(resp.Content), &raw); uerr != nil {
		logger.Warn("filters: invalid LLM response", "error", uerr, "response", resp.Content)
		return models.ExtractedFilters{}, models.ExtractionConfidence{}, errkind.Wrap(errkind.InvalidResponse, "filter extraction: non-JSON response", uerr)
	}

	f := validate(raw)
	conf := models.ExtractionConfidence{
		Overall:         raw.Confidence,
		PerField:        raw.PerFieldConfidence,
		AmbiguousFields: raw.AmbiguousFields,
		Language:        string(DetectLanguage(query)),
	}
	conf.Clamp()
	return f, conf, nil
}

// wrapProviderError tags a provider-layer error with an extraction error
// kind.
func wrapProviderError(err error) *errkind.Error {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "rate limit") || strings.Contains(msg, "429"):
		return errkind.Wrap(errkind.RateLimited, "filter extraction", err)
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline"):
		return errkind.Wrap(errkind.Timeout, "filter extraction", err)
	default:
		return errkind.Wrap(errkind.APIError, "filter extraction", err)
	}
}

// validate applies the output validation pass: enumerated values only,
// positive-integer-only numerics, explicit-true-only booleans, and location
// canonicalization through the same city table the location normalizer
// uses. Language detection is a separate, orthogonal pass (Extract attaches
// it to the confidence result); it does not change how a field validates.
func validate(raw rawExtraction) models.ExtractedFilters {
	var f models.ExtractedFilters

	if lt, ok := normalizeListingType(raw.ListingType); ok {
		f.ListingType = &lt
	}
	if pt, ok := normalizePropertyType(raw.PropertyType); ok {
		f.PropertyType = &pt
	}

	f.PriceMin = positiveInt(raw.PriceMin)
	f.PriceMax = positiveInt(raw.PriceMax)
	f.RoomsMin = positiveInt(raw.RoomsMin)
	f.RoomsMax = positiveInt(raw.RoomsMax)
	f.SurfaceAreaMin = positiveFloat(raw.SurfaceAreaMin)
	f.SurfaceAreaMax = positiveFloat(raw.SurfaceAreaMax)

	f.HasParking = explicitTrueOnly(raw.HasParking)
	f.HasBalcony = explicitTrueOnly(raw.HasBalcony)
	f.HasGarage = explicitTrueOnly(raw.HasGarage)
	f.IsFurnished = explicitTrueOnly(raw.IsFurnished)

	if len(raw.Amenities) > 0 {
		f.Amenities = raw.Amenities
	}

	if strings.TrimSpace(raw.Location) != "" {
		loc := normalize.Location(raw.Location)
		if loc.City != "" {
			f.Location = &loc.City
		} else {
			l := raw.Location
			f.Location = &l
		}
	}

	return f
}

func normalizeListingType(s string) (models.ListingType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "rent":
		return models.ListingTypeRent, true
	case "sale":
		return models.ListingTypeSale, true
	default:
		return "", false
	}
}

func normalizePropertyType(s string) (models.PropertyType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "apartment":
		return models.PropertyTypeApartment, true
	case "house":
		return models.PropertyTypeHouse, true
	case "office":
		return models.PropertyTypeOffice, true
	case "land":
		return models.PropertyTypeLand, true
	case "other":
		return models.PropertyTypeOther, true
	default:
		return "", false
	}
}

// positiveInt returns nil unless v is present and > 0; non-positive
// values are dropped, not clamped.
func positiveInt(v *float64) *int {
	if v == nil || *v <= 0 {
		return nil
	}
	n := int(*v)
	return &n
}

func positiveFloat(v *float64) *float64 {
	if v == nil || *v <= 0 {
		return nil
	}
	return v
}

// explicitTrueOnly keeps a boolean filter only when the LLM explicitly
// returned true; false and absent are both treated as unconstrained.
func explicitTrueOnly(v *bool) *bool {
	if v == nil || !*v {
		return nil
	}
	return v
}
