package models

// ExtractedFilters is a partial, all-optional structured query. An absent
// field (nil pointer / nil slice) means unconstrained.
type ExtractedFilters struct {
	ListingType  *ListingType  `json:"listing_type,omitempty"`
	PropertyType *PropertyType `json:"property_type,omitempty"`

	PriceMin *int `json:"price_min,omitempty"`
	PriceMax *int `json:"price_max,omitempty"`

	Location *string `json:"location,omitempty"`

	RoomsMin *int `json:"rooms_min,omitempty"`
	RoomsMax *int `json:"rooms_max,omitempty"`

	SurfaceAreaMin *float64 `json:"surface_area_min,omitempty"`
	SurfaceAreaMax *float64 `json:"surface_area_max,omitempty"`

	HasParking  *bool `json:"has_parking,omitempty"`
	HasBalcony  *bool `json:"has_balcony,omitempty"`
	HasGarage   *bool `json:"has_garage,omitempty"`
	IsFurnished *bool `json:"is_furnished,omitempty"`

	Amenities []string `json:"amenities,omitempty"`
}

// Merge overlays new non-nil fields onto the receiver, returning the
// merged result. Same-key new values override; absent new values preserve
// old ones (additive accumulation).
func (f ExtractedFilters) Merge(next ExtractedFilters) ExtractedFilters {
	merged := f

	if next.ListingType != nil {
		merged.ListingType = next.ListingType
	}
	if next.PropertyType != nil {
		merged.PropertyType = next.PropertyType
	}
	if next.PriceMin != nil {
		merged.PriceMin = next.PriceMin
	}
	if next.PriceMax != nil {
		merged.PriceMax = next.PriceMax
	}
	if next.Location != nil {
		merged.Location = next.Location
	}
	if next.RoomsMin != nil {
		merged.RoomsMin = next.RoomsMin
	}
	if next.RoomsMax != nil {
		merged.RoomsMax = next.RoomsMax
	}
	if next.SurfaceAreaMin != nil {
		merged.SurfaceAreaMin = next.SurfaceAreaMin
	}
	if next.SurfaceAreaMax != nil {
		merged.SurfaceAreaMax = next.SurfaceAreaMax
	}
	if next.HasParking != nil {
		merged.HasParking = next.HasParking
	}
	if next.HasBalcony != nil {
		merged.HasBalcony = next.HasBalcony
	}
	if next.HasGarage != nil {
		merged.HasGarage = next.HasGarage
	}
	if next.IsFurnished != nil {
		merged.IsFurnished = next.IsFurnished
	}
	if next.Amenities != nil {
		merged.Amenities = next.Amenities
	}

	return merged
}

// HighValueFieldPresent reports whether at least one of the fields the
// search-gating policy considers "high value" is set.
func (f ExtractedFilters) HighValueFieldPresent() bool {
	return f.ListingType != nil ||
		f.PropertyType != nil ||
		f.PriceMax != nil ||
		f.Location != nil ||
		f.RoomsMin != nil ||
		f.RoomsMax != nil
}

// ExtractionConfidence is the overall and per-field confidence of a filter
// extraction, driving the chat manager's clarification gate.
type ExtractionConfidence struct {
	Overall         float64            `json:"overall"`
	PerField        map[string]float64 `json:"per_field,omitempty"`
	AmbiguousFields []string           `json:"ambiguous_fields,omitempty"`
	// Language is the keyword-detected dominant language of the query
	// ("hr", "en", "mixed", or "unknown").
	Language string `json:"language,omitempty"`
}

// Clamp clamps Overall and every per-field score into [0,1]. Missing scores
// are treated as 0.
func (c *ExtractionConfidence) Clamp() {
	c.Overall = clamp01(c.Overall)
	for k, v := range c.PerField {
		c.PerField[k] = clamp01(v)
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
