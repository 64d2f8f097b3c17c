// Package models holds the canonical data types shared across the scraping
// pipeline, the search core, and the job queue.
package models

import "time"

// ListingType is the commercial arrangement of a Listing.
type ListingType string

const (
	ListingTypeRent ListingType = "rent"
	ListingTypeSale ListingType = "sale"
)

// PropertyType is the kind of property a Listing advertises.
type PropertyType string

const (
	PropertyTypeApartment PropertyType = "apartment"
	PropertyTypeHouse     PropertyType = "house"
	PropertyTypeOffice    PropertyType = "office"
	PropertyTypeLand      PropertyType = "land"
	PropertyTypeOther     PropertyType = "other"
)

// EmbeddingDimensions is the fixed width of every Listing embedding vector.
const EmbeddingDimensions = 1536

// Listing is the canonical representation of one property advertisement.
type Listing struct {
	ID         string
	Source     string
	ExternalID string
	URL        string

	Title       string
	Description string
	Images      []string

	Price        int
	Currency     string
	ListingType  ListingType
	PropertyType PropertyType

	City    string
	Address string
	Lat     *float64
	Lng     *float64

	Rooms         *int
	Bedrooms      *int
	Bathrooms     *int
	SurfaceAreaM2 *float64

	HasParking          bool
	HasBalcony          bool
	HasGarage           bool
	IsFurnished         bool
	AdditionalAmenities map[string]bool

	Embedding []float32

	ScrapedAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Key uniquely identifies a Listing by its source-of-record identity.
// (source, external_id) is the invariant the listing store enforces.
type Key struct {
	Source     string
	ExternalID string
}

func (l *Listing) Key() Key {
	return Key{Source: l.Source, ExternalID: l.ExternalID}
}

// UpdateListingInput carries a partial update: nil fields are left untouched.
// Listing.ApplyUpdate applies it.
type UpdateListingInput struct {
	Title         *string
	Description   *string
	Images        []string
	Price         *int
	City          *string
	Address       *string
	Rooms         *int
	Bedrooms      *int
	Bathrooms     *int
	SurfaceAreaM2 *float64
	HasParking    *bool
	HasBalcony    *bool
	HasGarage     *bool
	IsFurnished   *bool
}

// ApplyUpdate merges a partial update into the listing in place, refreshing
// UpdatedAt. Fields left nil in the input keep their current value.
func (l *Listing) ApplyUpdate(in UpdateListingInput, now time.Time) {
	if in.Title != nil {
		l.Title = *in.Title
	}
	if in.Description != nil {
		l.Description = *in.Description
	}
	if in.Images != nil {
		l.Images = in.Images
	}
	if in.Price != nil {
		l.Price = *in.Price
	}
	if in.City != nil {
		l.City = *in.City
	}
	if in.Address != nil {
		l.Address = *in.Address
	}
	if in.Rooms != nil {
		l.Rooms = in.Rooms
	}
	if in.Bedrooms != nil {
		l.Bedrooms = in.Bedrooms
	}
	if in.Bathrooms != nil {
		l.Bathrooms = in.Bathrooms
	}
	if in.SurfaceAreaM2 != nil {
		l.SurfaceAreaM2 = in.SurfaceAreaM2
	}
	if in.HasParking != nil {
		l.HasParking = *in.HasParking
	}
	if in.HasBalcony != nil {
		l.HasBalcony = *in.HasBalcony
	}
	if in.HasGarage != nil {
		l.HasGarage = *in.HasGarage
	}
	if in.IsFurnished != nil {
		l.IsFurnished = *in.IsFurnished
	}
	l.UpdatedAt = now
}
