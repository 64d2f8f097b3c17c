// Package store implements the listing store: the interface into the
// vector database the rest of the system consumes. The concrete in-memory
// implementation stands in for the external vector database engine.
package store

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nyka2002/nekretnine-search/internal/models"
)

// ListFilters narrows the plain (non-semantic) list operation.
type ListFilters struct {
	ListingType  *models.ListingType
	PropertyType *models.PropertyType
	City         *string
	PriceMin     *int
	PriceMax     *int
	RoomsMin     *int
	RoomsMax     *int
	HasParking   *bool
	HasBalcony   *bool
	IsFurnished  *bool
}

// SearchResult pairs a Listing with its vector-similarity score.
type SearchResult struct {
	Listing    *models.Listing
	Similarity float64
}

// Store is the interface the search core consumes.
type Store interface {
	Insert(ctx context.Context, l *models.Listing) (inserted bool, err error)
	BatchInsert(ctx context.Context, listings []*models.Listing) (count int, err error)
	GetByID(ctx context.Context, id string) (*models.Listing, error)
	List(ctx context.Context, filters ListFilters, limit, offset int) ([]*models.Listing, error)
	SearchSemantic(ctx context.Context, embedding []float32, threshold float64, k int) ([]SearchResult, error)
	UpdateEmbedding(ctx context.Context, id string, vector []float32) error
	CleanupStale(ctx context.Context, days int) (removed int, err error)
}

// MemoryStore is an in-memory Store, concurrency-safe, used for development
// and tests in place of the out-of-scope vector database engine.
type MemoryStore struct {
	mu    sync.RWMutex
	byID  map[string]*models.Listing
	byKey map[models.Key]string // (source, external_id) -> id
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:  map[string]*models.Listing{},
		byKey: map[models.Key]string{},
	}
}

// Insert stores l. On a (source, external_id) conflict it refreshes the
// existing row from l's fields instead and returns inserted=false; a
// conflict is not an error.
func (s *MemoryStore) Insert(ctx context.Context, l *models.Listing) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := l.Key()
	if existingID, ok := s.byKey[key]; ok {
		existing := s.byID[existingID]
		refreshListing(existing, l)
		return false, nil
	}

	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	s.byID[l.ID] = l
	s.byKey[key] = l.ID
	return true, nil
}

// refreshListing updates mutable fields on an already-stored listing from
// a freshly scraped one (price/description/images may change on
// re-scrape).
func refreshListing(existing, fresh *models.Listing) {
	existing.Title = fresh.Title
	existing.Description = fresh.Description
	existing.Images = fresh.Images
	existing.Price = fresh.Price
	existing.City = fresh.City
	existing.Address = fresh.Address
	existing.Rooms = fresh.Rooms
	existing.Bedrooms = fresh.Bedrooms
	existing.Bathrooms = fresh.Bathrooms
	existing.SurfaceAreaM2 = fresh.SurfaceAreaM2
	existing.HasParking = fresh.HasParking
	existing.HasBalcony = fresh.HasBalcony
	existing.HasGarage = fresh.HasGarage
	existing.IsFurnished = fresh.IsFurnished
	existing.AdditionalAmenities = fresh.AdditionalAmenities
	existing.ScrapedAt = fresh.ScrapedAt
	existing.UpdatedAt = fresh.ScrapedAt
}

// BatchInsert inserts each listing, returning the count actually inserted
// (as opposed to refreshed-as-duplicate).
func (s *MemoryStore) BatchInsert(ctx context.Context, listings []*models.Listing) (int, error) {
	count := 0
	for _, l := range listings {
		inserted, err := s.Insert(ctx, l)
		if err != nil {
			return count, err
		}
		if inserted {
			count++
		}
	}
	return count, nil
}

// GetByID returns the listing with id, or nil if not found.
func (s *MemoryStore) GetByID(ctx context.Context, id string) (*models.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.byID[id], nil
}

// List returns listings matching filters, ordered by ScrapedAt DESC.
func (s *MemoryStore) List(ctx context.Context, filters ListFilters, limit, offset int) ([]*models.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matches []*models.Listing
	for _, l := range s.byID {
		if matchesListFilters(l, filters) {
			matches = append(matches, l)
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].ScrapedAt.After(matches[j].ScrapedAt)
	})

	if offset >= len(matches) {
		return nil, nil
	}
	end := len(matches)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return matches[offset:end], nil
}

func matchesListFilters(l *models.Listing, f ListFilters) bool {
	if f.ListingType != nil && l.ListingType != *f.ListingType {
		return false
	}
	if f.PropertyType != nil && l.PropertyType != *f.PropertyType {
		return false
	}
	if f.City != nil && l.City != *f.City {
		return false
	}
	if f.PriceMin != nil && l.Price < *f.PriceMin {
		return false
	}
	if f.PriceMax != nil && l.Price > *f.PriceMax {
		return false
	}
	if f.RoomsMin != nil && (l.Rooms == nil || *l.Rooms < *f.RoomsMin) {
		return false
	}
	if f.RoomsMax != nil && (l.Rooms == nil || *l.Rooms > *f.RoomsMax) {
		return false
	}
	if f.HasParking != nil && l.HasParking != *f.HasParking {
		return false
	}
	if f.HasBalcony != nil && l.HasBalcony != *f.HasBalcony {
		return false
	}
	if f.IsFurnished != nil && l.IsFurnished != *f.IsFurnished {
		return false
	}
	return true
}

// SearchSemantic returns up to k candidates ordered by cosine similarity
// descending, restricted to those at or above threshold.
func (s *MemoryStore) SearchSemantic(ctx context.Context, embedding []float32, threshold float64, k int) ([]SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var results []SearchResult
	for _, l := range s.byID {
		if len(l.Embedding) != len(embedding) || len(embedding) == 0 {
			continue
		}
		sim := cosineSimilarity(l.Embedding, embedding)
		if sim >= threshold {
			results = append(results, SearchResult{Listing: l, Similarity: sim})
		}
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})

	if k > 0 && len(results) > k {
		results = results[:k]
	}
	return results, nil
}

func cosineSimilarity(a []float32, b []float32) float64 {
	var dot, magA, magB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		magA += float64(a[i]) * float64(a[i])
		magB += float64(b[i]) * float64(b[i])
	}
	if magA == 0 || magB == 0 {
		return 0
	}
	sim := dot / (math.Sqrt(magA) * math.Sqrt(magB))
	// Map cosine similarity [-1,1] into [0,1] as the store's similarity scale.
	return (sim + 1) / 2
}

// UpdateEmbedding sets the embedding vector for listing id.
func (s *MemoryStore) UpdateEmbedding(ctx context.Context, id string, vector []float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l, ok := s.byID[id]; ok {
		l.Embedding = vector
		l.UpdatedAt = time.Now()
	}
	return nil
}

// CleanupStale removes listings whose UpdatedAt is older than days; the
// scheduled maintenance sweep calls this daily.
func (s *MemoryStore) CleanupStale(ctx context.Context, days int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().AddDate(0, 0, -days)
	removed := 0
	for id, l := range s.byID {
		if l.UpdatedAt.Before(cutoff) {
			delete(s.byID, id)
			delete(s.byKey, l.Key())
			removed++
		}
	}
	return removed, nil
}
