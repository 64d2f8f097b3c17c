package httpapi

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/nyka2002/nekretnine-search/internal/errkind"
	"github.com/nyka2002/nekretnine-search/internal/models"
	"github.com/nyka2002/nekretnine-search/internal/store"
)

func queryInt(q url.Values, key string) *int {
	v := q.Get(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return nil
	}
	return &n
}

func queryBool(q url.Values, key string) *bool {
	v := q.Get(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil
	}
	return &b
}

const similarListingsCount = 3

// handleListListings implements GET /listings: a plain filtered browse
// over the store, independent of the chat/search pipeline.
func (s *Server) handleListListings(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit := 20
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	offset := 0
	if v := q.Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 1 {
			offset = (n - 1) * limit
		}
	}

	filters := store.ListFilters{}
	if v := q.Get("listing_type"); v != "" {
		lt := models.ListingType(v)
		filters.ListingType = &lt
	}
	if v := q.Get("property_type"); v != "" {
		pt := models.PropertyType(v)
		filters.PropertyType = &pt
	}
	if v := q.Get("city"); v != "" {
		filters.City = &v
	}
	filters.PriceMin = queryInt(q, "price_min")
	filters.PriceMax = queryInt(q, "price_max")
	filters.RoomsMin = queryInt(q, "rooms_min")
	filters.RoomsMax = queryInt(q, "rooms_max")
	filters.HasParking = queryBool(q, "has_parking")
	filters.HasBalcony = queryBool(q, "has_balcony")
	filters.IsFurnished = queryBool(q, "is_furnished")

	listings, err := s.Store.List(r.Context(), filters, limit, offset)
	if err != nil {
		writeError(w, errkind.Wrap(errkind.DatabaseError, "list listings", err))
		return
	}

	dtos := make([]listingDTO, len(listings))
	for i, l := range listings {
		dtos[i] = toListingDTO(l)
	}
	writeJSON(w, http.StatusOK, listListingsResponse{Listings: dtos, Total: len(dtos)})
}

// handleGetListing implements GET /listings/{id}: the listing plus up to
// 3 semantically similar listings.
func (s *Server) handleGetListing(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	listing, err := s.Store.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, errkind.Wrap(errkind.DatabaseError, "get listing", err))
		return
	}
	if listing == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "listing not found"})
		return
	}

	resp := listingDetailResponse{Listing: toListingDTO(listing)}

	similar, simErr := s.Search.FindSimilar(r.Context(), id, similarListingsCount)
	if simErr == nil {
		resp.Similar = make([]listingDTO, len(similar))
		for i, sr := range similar {
			d := toListingDTO(sr.Listing)
			d.Score = &scoreDTO{Semantic: sr.Similarity, Combined: sr.Similarity}
			resp.Similar[i] = d
		}
	}
	// NO_EMBEDDING is expected for listings without a vector yet; omit
	// Similar rather than failing the whole request.

	writeJSON(w, http.StatusOK, resp)
}
