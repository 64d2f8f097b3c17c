package embedding

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/nyka2002/nekretnine-search/internal/models"
)

type fakeProvider struct {
	calls     int
	failBatch bool // fail any call with more than one input
	failAll   bool
}

func (f *fakeProvider) Embed(ctx context.Context, texts []string) ([][]float32, int, error) {
	f.calls++
	if f.failAll {
		return nil, 0, errors.New("provider down")
	}
	if f.failBatch && len(texts) > 1 {
		return nil, 0, errors.New("batch endpoint failed")
	}
	vectors := make([][]float32, len(texts))
	for i := range texts {
		vectors[i] = []float32{1, 0, 0}
	}
	return vectors, len(texts) * 7, nil
}

func TestGenerateQuery_CacheHit(t *testing.T) {
	p := &fakeProvider{}
	s := New(p, NewCache())

	first, err := s.GenerateQuery(context.Background(), "Stan u Zagrebu")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.Cached {
		t.Error("first call should miss the cache")
	}

	// Same text modulo case/whitespace normalizes to the same key.
	second, err := s.GenerateQuery(context.Background(), "  stan  u zagrebu ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !second.Cached {
		t.Error("second call should hit the cache")
	}
	if p.calls != 1 {
		t.Errorf("expected 1 provider call, got %d", p.calls)
	}
}

func TestGenerateQuery_ProviderError(t *testing.T) {
	s := New(&fakeProvider{failAll: true}, NewCache())
	if _, err := s.GenerateQuery(context.Background(), "bilo što"); err == nil {
		t.Fatal("expected an error when the provider is down")
	}
}

func newTestListing(id string) *models.Listing {
	return &models.Listing{
		ID:          id,
		Title:       "Stan " + id,
		City:        "Zagreb",
		ListingType: models.ListingTypeRent,
	}
}

func TestBatchGenerate_CacheProbeSkipsHits(t *testing.T) {
	p := &fakeProvider{}
	cache := NewCache()
	cache.Set(ListingKey("a"), []float32{0, 1, 0}, time.Minute)
	s := New(p, cache)

	listings := []*models.Listing{newTestListing("a"), newTestListing("b")}
	failed := s.BatchGenerate(context.Background(), listings)
	if len(failed) != 0 {
		t.Fatalf("unexpected failures: %v", failed)
	}

	if listings[0].Embedding == nil || listings[0].Embedding[1] != 1 {
		t.Error("cached vector should have been applied to listing a")
	}
	if listings[1].Embedding == nil {
		t.Error("listing b should have been embedded by the provider")
	}
	if p.calls != 1 {
		t.Errorf("expected 1 provider call for the single miss, got %d", p.calls)
	}
}

func TestBatchGenerate_FallbackPerItem(t *testing.T) {
	p := &fakeProvider{failBatch: true}
	s := New(p, NewCache())

	listings := []*models.Listing{newTestListing("a"), newTestListing("b"), newTestListing("c")}
	failed := s.BatchGenerate(context.Background(), listings)
	if len(failed) != 0 {
		t.Fatalf("per-item fallback should have succeeded, failures: %v", failed)
	}
	for _, l := range listings {
		if l.Embedding == nil {
			t.Errorf("listing %s missing embedding after fallback", l.ID)
		}
	}
	// 1 failed batch call + 3 per-item calls.
	if p.calls != 4 {
		t.Errorf("expected 4 provider calls, got %d", p.calls)
	}
}

func TestBatchGenerate_AllFailedCollected(t *testing.T) {
	s := New(&fakeProvider{failAll: true}, NewCache())
	listings := []*models.Listing{newTestListing("a"), newTestListing("b")}
	failed := s.BatchGenerate(context.Background(), listings)
	if len(failed) != 2 {
		t.Fatalf("expected both listings in failedIDs, got %v", failed)
	}
}

func TestListingText_TemplateAndTruncation(t *testing.T) {
	rooms := 2
	area := 55.0
	l := &models.Listing{
		Title:         "Svijetao stan",
		PropertyType:  models.PropertyTypeApartment,
		ListingType:   models.ListingTypeRent,
		City:          "Zagreb",
		Address:       "Trešnjevka",
		Rooms:         &rooms,
		SurfaceAreaM2: &area,
		Price:         700,
		HasParking:    true,
		Description:   strings.Repeat("x", 600),
	}

	text := ListingText(l)
	if !strings.HasPrefix(text, "Svijetao stan. apartment za rent. Lokacija: Zagreb, Trešnjevka. 2 sobe, 55m², 700€.") {
		t.Errorf("unexpected prefix: %q", text[:100])
	}
	if !strings.Contains(text, "Pogodnosti: parking.") {
		t.Errorf("expected amenities section, got %q", text)
	}
	if strings.Count(text, "x") != 500 {
		t.Errorf("description should be truncated to 500 chars, got %d", strings.Count(text, "x"))
	}

	// Idempotent: same listing, same text.
	if ListingText(l) != text {
		t.Error("ListingText should be stable for the same listing")
	}
}
