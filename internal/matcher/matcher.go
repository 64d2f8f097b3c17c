// Package matcher scores a listing against a partial filter set with
// per-field weights and partial-match tolerances, and provides the
// hard-filter gate that excludes candidates outright regardless of
// semantic similarity.
package matcher

import (
	"strconv"
	"strings"

	"github.com/nyka2002/nekretnine-search/internal/models"
)

// PriceOverageTolerance is where the matcher's partial price credit
// reaches zero. Deliberately distinct from the hard filter's wider
// HardPriceTolerance: a listing 12% over budget stays admissible but earns
// zero price credit.
const PriceOverageTolerance = 0.10

// HardPriceTolerance is the hard-filter gate's wider cutoff: a listing up to
// 15% over price_max is still hard-admissible even though it earns zero
// matcher price credit past 10%.
const HardPriceTolerance = 0.15

const surfaceAreaTolerance = 0.15

// Weights are the per-field weights combined into the match score's
// denominator. All are overridable.
type Weights struct {
	Price        float64
	Location     float64
	Rooms        float64
	ListingType  float64
	PropertyType float64
	SurfaceArea  float64
	Amenities    float64
}

// DefaultWeights returns the standard weight table.
func DefaultWeights() Weights {
	return Weights{
		Price:        1.5,
		Location:     1.3,
		Rooms:        1.2,
		ListingType:  1.1,
		PropertyType: 1.0,
		SurfaceArea:  1.0,
		Amenities:    0.8,
	}
}

// FieldScore is one field's contribution: its weight, partial score in
// [0,1], and the expected/actual values, for the ranking-explanation
// surface.
type FieldScore struct {
	Field    string
	Weight   float64
	Score    float64
	Expected string
	Actual   string
}

// MatchResult is the outcome of scoring one listing against one filter set.
type MatchResult struct {
	Score    float64
	Fields   []FieldScore
	Matched  bool // Score == 1 for every present field
	Partials []FieldScore
}

// Matcher scores listings against filters using a configurable weight table.
type Matcher struct {
	Weights Weights
}

// New creates a Matcher with the given weights.
func New(w Weights) *Matcher {
	return &Matcher{Weights: w}
}

// Score computes matched_weight/total_weight for l against filters.
// total_weight == 0 (no fields present in filters) scores 1.
func (m *Matcher) Score(l *models.Listing, f models.ExtractedFilters) MatchResult {
	var fields []FieldScore

	if f.PriceMin != nil || f.PriceMax != nil {
		fields = append(fields, m.scorePrice(l, f))
	}
	if f.Location != nil {
		fields = append(fields, m.scoreLocation(l, *f.Location))
	}
	if f.RoomsMin != nil || f.RoomsMax != nil {
		fields = append(fields, m.scoreRooms(l, f))
	}
	if f.ListingType != nil {
		fields = append(fields, m.scoreListingType(l, *f.ListingType))
	}
	if f.PropertyType != nil {
		fields = append(fields, m.scorePropertyType(l, *f.PropertyType))
	}
	if f.SurfaceAreaMin != nil || f.SurfaceAreaMax != nil {
		fields = append(fields, m.scoreSurfaceArea(l, f))
	}
	if hasAmenityFilter(f) {
		fields = append(fields, m.scoreAmenities(l, f)...)
	}

	var totalWeight, matchedWeight float64
	var partials []FieldScore
	matched := true
	for _, fs := range fields {
		totalWeight += fs.Weight
		matchedWeight += fs.Score * fs.Weight
		if fs.Score < 1 {
			matched = false
			partials = append(partials, fs)
		}
	}

	score := 1.0
	if totalWeight > 0 {
		score = matchedWeight / totalWeight
	}

	return MatchResult{Score: score, Fields: fields, Matched: matched, Partials: partials}
}

func (m *Matcher) scorePrice(l *models.Listing, f models.ExtractedFilters) FieldScore {
	fs := FieldScore{Field: "price", Weight: m.Weights.Price}
	price := float64(l.Price)

	switch {
	case f.PriceMax != nil && price > float64(*f.PriceMax):
		max := float64(*f.PriceMax)
		overage := (price - max) / max
		if overage > PriceOverageTolerance {
			fs.Score = 0
		} else {
			fs.Score = 1 - overage/PriceOverageTolerance
		}
	case f.PriceMin != nil && price < float64(*f.PriceMin):
		min := float64(*f.PriceMin)
		under := (min - price) / min
		if under > PriceOverageTolerance {
			fs.Score = 0
		} else {
			fs.Score = 1 - under/PriceOverageTolerance
		}
	default:
		fs.Score = 1
	}
	return fs
}

func (m *Matcher) scoreLocation(l *models.Listing, filterLoc string) FieldScore {
	fs := FieldScore{Field: "location", Weight: m.Weights.Location, Expected: filterLoc}
	listingLoc := strings.ToLower(strings.TrimSpace(l.City + " " + l.Address))
	city := strings.ToLower(strings.TrimSpace(l.City))
	filter := strings.ToLower(strings.TrimSpace(filterLoc))
	fs.Actual = l.City

	switch {
	case filter == "" || listingLoc == "":
		fs.Score = 0
	case strings.Contains(listingLoc, filter):
		fs.Score = 1
	case city != "" && strings.Contains(filter, city):
		// filter is more specific than the listing's city — reverse substring.
		fs.Score = 0.5
	default:
		fs.Score = 0
	}
	return fs
}

func (m *Matcher) scoreRooms(l *models.Listing, f models.ExtractedFilters) FieldScore {
	fs := FieldScore{Field: "rooms", Weight: m.Weights.Rooms}
	if l.Rooms == nil {
		fs.Score = 0.5 // unknown room count is neutral
		fs.Actual = "unknown"
		return fs
	}
	rooms := *l.Rooms
	fs.Actual = itoa(rooms)

	min, max := 0, 0
	hasMin, hasMax := f.RoomsMin != nil, f.RoomsMax != nil
	if hasMin {
		min = *f.RoomsMin
	}
	if hasMax {
		max = *f.RoomsMax
	}

	switch {
	case hasMin && hasMax && rooms >= min && rooms <= max:
		fs.Score = 1
	case hasMin && !hasMax && rooms >= min:
		fs.Score = 1
	case !hasMin && hasMax && rooms <= max:
		fs.Score = 1
	default:
		diff := roomsDiff(rooms, min, max, hasMin, hasMax)
		switch diff {
		case 1:
			fs.Score = 0.7
		default:
			fs.Score = 0
		}
	}
	return fs
}

// roomsDiff is the smallest distance from rooms to the nearest satisfying
// bound, or a large sentinel if no bound applies.
func roomsDiff(rooms, min, max int, hasMin, hasMax bool) int {
	best := 1 << 30
	if hasMin && rooms < min {
		best = min - rooms
	}
	if hasMax && rooms > max {
		d := rooms - max
		if d < best {
			best = d
		}
	}
	return best
}

func (m *Matcher) scoreListingType(l *models.Listing, want models.ListingType) FieldScore {
	score := 0.0
	if l.ListingType == want {
		score = 1
	}
	return FieldScore{Field: "listing_type", Weight: m.Weights.ListingType, Score: score, Expected: string(want), Actual: string(l.ListingType)}
}

func (m *Matcher) scorePropertyType(l *models.Listing, want models.PropertyType) FieldScore {
	score := 0.0
	if l.PropertyType == want {
		score = 1
	}
	return FieldScore{Field: "property_type", Weight: m.Weights.PropertyType, Score: score, Expected: string(want), Actual: string(l.PropertyType)}
}

func (m *Matcher) scoreSurfaceArea(l *models.Listing, f models.ExtractedFilters) FieldScore {
	fs := FieldScore{Field: "surface_area", Weight: m.Weights.SurfaceArea}
	if l.SurfaceAreaM2 == nil {
		fs.Score = 0.5
		fs.Actual = "unknown"
		return fs
	}
	area := *l.SurfaceAreaM2
	fs.Actual = ftoa(area)

	switch {
	case f.SurfaceAreaMax != nil && area > *f.SurfaceAreaMax:
		over := (area - *f.SurfaceAreaMax) / *f.SurfaceAreaMax
		fs.Score = falloff(over, surfaceAreaTolerance)
	case f.SurfaceAreaMin != nil && area < *f.SurfaceAreaMin:
		under := (*f.SurfaceAreaMin - area) / *f.SurfaceAreaMin
		fs.Score = falloff(under, surfaceAreaTolerance)
	default:
		fs.Score = 1
	}
	return fs
}

func falloff(deviation, tolerance float64) float64 {
	if deviation > tolerance {
		return 0
	}
	return 1 - deviation/tolerance
}

func hasAmenityFilter(f models.ExtractedFilters) bool {
	return f.HasParking != nil || f.HasBalcony != nil || f.HasGarage != nil || f.IsFurnished != nil
}

func (m *Matcher) scoreAmenities(l *models.Listing, f models.ExtractedFilters) []FieldScore {
	var out []FieldScore
	add := func(name string, want *bool, have bool) {
		if want == nil {
			return
		}
		score := 0.0
		if *want == have {
			score = 1
		}
		out = append(out, FieldScore{
			Field: "amenity:" + name, Weight: m.Weights.Amenities, Score: score,
			Expected: boolstr(*want), Actual: boolstr(have),
		})
	}
	add("parking", f.HasParking, l.HasParking)
	add("balcony", f.HasBalcony, l.HasBalcony)
	add("garage", f.HasGarage, l.HasGarage)
	add("furnished", f.IsFurnished, l.IsFurnished)
	return out
}

// FilterByHardRequirements removes listings excluded outright:
// listing_type mismatch when set, or price beyond price_max*1.15.
// Everything else is soft (left to Score).
func FilterByHardRequirements(listings []*models.Listing, f models.ExtractedFilters) []*models.Listing {
	out := make([]*models.Listing, 0, len(listings))
	for _, l := range listings {
		if f.ListingType != nil && l.ListingType != *f.ListingType {
			continue
		}
		if f.PriceMax != nil && float64(l.Price) > float64(*f.PriceMax)*(1+HardPriceTolerance) {
			continue
		}
		out = append(out, l)
	}
	return out
}

func itoa(n int) string {
	return strconv.Itoa(n)
}

func ftoa(f float64) string {
	return strconv.FormatFloat(f, 'f', 0, 64)
}

func boolstr(b bool) string {
	return strconv.FormatBool(b)
}
