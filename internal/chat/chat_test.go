package chat

import (
	"context"
	"testing"
	"time"

	"github.com/nyka2002/nekretnine-search/internal/models"
)

func fixedNow(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestApplyTurnLowConfidenceClarifies(t *testing.T) {
	m := New(NewMemoryStore(), fixedNow(time.Now()))
	s := m.GetOrCreate(context.Background(), "")

	should := m.ApplyTurn(s, "nekretnina", models.ExtractedFilters{}, models.ExtractionConfidence{Overall: 0.2, AmbiguousFields: []string{"all"}})
	if should {
		t.Fatalf("expected no search on low confidence")
	}
	if s.State != models.SessionStateClarifying {
		t.Fatalf("expected CLARIFYING state, got %v", s.State)
	}
}

func TestApplyTurnFilterMergeAcrossTurns(t *testing.T) {
	m := New(NewMemoryStore(), fixedNow(time.Now()))
	s := m.GetOrCreate(context.Background(), "")

	rent := models.ListingTypeRent
	zagreb := "Zagreb"
	turn1 := models.ExtractedFilters{ListingType: &rent, Location: &zagreb}
	m.ApplyTurn(s, "Stan za najam u Zagrebu", turn1, models.ExtractionConfidence{Overall: 0.9})

	price700 := 700
	turn2 := models.ExtractedFilters{PriceMax: &price700}
	m.ApplyTurn(s, "do 700 eura", turn2, models.ExtractionConfidence{Overall: 0.9})

	if s.CurrentFilters.ListingType == nil || *s.CurrentFilters.ListingType != models.ListingTypeRent {
		t.Fatalf("expected listing_type preserved across turns")
	}
	if s.CurrentFilters.PriceMax == nil || *s.CurrentFilters.PriceMax != 700 {
		t.Fatalf("expected price_max merged to 700")
	}

	price800 := 800
	turn3 := models.ExtractedFilters{PriceMax: &price800}
	m.ApplyTurn(s, "zapravo do 800 eura", turn3, models.ExtractionConfidence{Overall: 0.9})
	if s.CurrentFilters.PriceMax == nil || *s.CurrentFilters.PriceMax != 800 {
		t.Fatalf("expected price_max overridden to 800, got %v", s.CurrentFilters.PriceMax)
	}
}

func TestApplyTurnFirstTurnGatingBelowHalf(t *testing.T) {
	m := New(NewMemoryStore(), fixedNow(time.Now()))
	s := m.GetOrCreate(context.Background(), "")

	zagreb := "Zagreb"
	f := models.ExtractedFilters{Location: &zagreb}
	should := m.ApplyTurn(s, "negdje u Zagrebu možda", f, models.ExtractionConfidence{Overall: 0.45})
	if should {
		t.Fatalf("expected no search on first turn below 0.5 confidence")
	}
}

func TestHistoryTruncatedTo20(t *testing.T) {
	m := New(NewMemoryStore(), fixedNow(time.Now()))
	s := m.GetOrCreate(context.Background(), "")
	for i := 0; i < 30; i++ {
		m.ApplyTurn(s, "query", models.ExtractedFilters{}, models.ExtractionConfidence{Overall: 0.9, AmbiguousFields: []string{"x"}})
	}
	if len(s.Turns) > models.MaxTurnHistory {
		t.Fatalf("expected turns capped at %d, got %d", models.MaxTurnHistory, len(s.Turns))
	}
}

func TestFollowUpQuestionsCappedAtThree(t *testing.T) {
	qs := GenerateFollowUpQuestions(models.ExtractedFilters{}, 0)
	if len(qs) > MaxFollowUpQuestions {
		t.Fatalf("expected at most %d questions, got %d", MaxFollowUpQuestions, len(qs))
	}
}

func TestFollowUpQuestionsSuggestNarrowingWhenManyResults(t *testing.T) {
	rent := models.ListingTypeRent
	zagreb := "Zagreb"
	price := 700
	rooms := 2
	f := models.ExtractedFilters{ListingType: &rent, Location: &zagreb, PriceMax: &price, RoomsMin: &rooms, RoomsMax: &rooms}
	qs := GenerateFollowUpQuestions(f, 10)
	if len(qs) == 0 {
		t.Fatalf("expected a narrowing suggestion when all high-value filters are set but results are many")
	}
}
