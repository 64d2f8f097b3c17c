package matcher

import (
	"testing"

	"github.com/nyka2002/nekretnine-search/internal/models"
)

func intp(n int) *int { return &n }
func floatp(f float64) *float64 { return &f }
func boolp(b bool) *bool { return &b }

func TestScoreNoFilters(t *testing.T) {
	m := New(DefaultWeights())
	l := &models.Listing{Price: 500}
	res := m.Score(l, models.ExtractedFilters{})
	if res.Score != 1 {
		t.Fatalf("expected score 1 with no filters, got %v", res.Score)
	}
}

func TestScorePriceBoundaries(t *testing.T) {
	m := New(DefaultWeights())

	// Exactly 10% over max -> partial score 0.
	l := &models.Listing{Price: 1100}
	f := models.ExtractedFilters{PriceMax: intp(1000)}
	res := m.Score(l, f)
	if res.Fields[0].Score != 0 {
		t.Fatalf("expected 0 at exactly 10%% overage, got %v", res.Fields[0].Score)
	}

	// Beyond 10% -> 0 as well (clamped), and definitely unmatched.
	l2 := &models.Listing{Price: 1200}
	res2 := m.Score(l2, f)
	if res2.Fields[0].Score != 0 {
		t.Fatalf("expected 0 beyond 10%% overage, got %v", res2.Fields[0].Score)
	}

	// 5% over -> partial 0.5.
	l3 := &models.Listing{Price: 1050}
	res3 := m.Score(l3, f)
	if got := res3.Fields[0].Score; got < 0.49 || got > 0.51 {
		t.Fatalf("expected ~0.5 at 5%% overage, got %v", got)
	}
}

func TestScoreRoomsNeutralWhenUnknown(t *testing.T) {
	m := New(DefaultWeights())
	l := &models.Listing{Rooms: nil}
	f := models.ExtractedFilters{RoomsMin: intp(2)}
	res := m.Score(l, f)
	if res.Fields[0].Score != 0.5 {
		t.Fatalf("expected neutral 0.5 for unknown rooms, got %v", res.Fields[0].Score)
	}
}

func TestScoreRoomsOffByOne(t *testing.T) {
	m := New(DefaultWeights())
	l := &models.Listing{Rooms: intp(3)}
	f := models.ExtractedFilters{RoomsMin: intp(2), RoomsMax: intp(2)}
	res := m.Score(l, f)
	if res.Fields[0].Score != 0.7 {
		t.Fatalf("expected 0.7 for off-by-one rooms, got %v", res.Fields[0].Score)
	}
}

func TestScoreRoomsOffByTwo(t *testing.T) {
	m := New(DefaultWeights())
	l := &models.Listing{Rooms: intp(4)}
	f := models.ExtractedFilters{RoomsMin: intp(2), RoomsMax: intp(2)}
	res := m.Score(l, f)
	if res.Fields[0].Score != 0 {
		t.Fatalf("expected 0 for off-by-two rooms, got %v", res.Fields[0].Score)
	}
}

func TestScoreLocation(t *testing.T) {
	m := New(DefaultWeights())
	l := &models.Listing{City: "Zagreb", Address: "Trešnjevka"}

	exact := m.scoreLocation(l, "Zagreb")
	if exact.Score != 1 {
		t.Fatalf("expected exact substring match 1, got %v", exact.Score)
	}

	reverse := m.scoreLocation(l, "Zagreb, Trešnjevka, Neki Dio")
	if reverse.Score != 0.5 {
		t.Fatalf("expected reverse-substring 0.5, got %v", reverse.Score)
	}

	none := m.scoreLocation(l, "Split")
	if none.Score != 0 {
		t.Fatalf("expected no match 0, got %v", none.Score)
	}
}

func TestFilterByHardRequirements(t *testing.T) {
	listings := []*models.Listing{
		{ListingType: models.ListingTypeRent, Price: 1000},
		{ListingType: models.ListingTypeSale, Price: 1000},
		{ListingType: models.ListingTypeRent, Price: 1151}, // >15% over 1000
		{ListingType: models.ListingTypeRent, Price: 1150}, // exactly 15% -> admissible
	}
	rent := models.ListingTypeRent
	f := models.ExtractedFilters{ListingType: &rent, PriceMax: intp(1000)}
	out := FilterByHardRequirements(listings, f)
	if len(out) != 2 {
		t.Fatalf("expected 2 hard-admissible listings, got %d", len(out))
	}
}
