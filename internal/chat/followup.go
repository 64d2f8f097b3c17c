package chat

import "github.com/nyka2002/nekretnine-search/internal/models"

// MaxFollowUpQuestions caps the heuristic question list.
const MaxFollowUpQuestions = 3

// GenerateFollowUpQuestions suggests broadening when a search ran and
// found nothing, otherwise asks about each missing high-value filter, and
// suggests narrowing when there are many results. A negative resultCount
// means no search ran this turn.
func GenerateFollowUpQuestions(filters models.ExtractedFilters, resultCount int) []string {
	var qs []string

	if resultCount == 0 {
		qs = append(qs, "Nema rezultata za zadane filtere — želite li proširiti pretragu (veći budžet, druga lokacija)?")
	}

	if filters.ListingType == nil {
		qs = append(qs, "Tražite najam ili prodaju?")
	}
	if filters.Location == nil {
		qs = append(qs, "U kojem gradu ili dijelu grada tražite nekretninu?")
	}
	if filters.PriceMax == nil {
		qs = append(qs, "Koji je vaš budžet?")
	}
	if filters.RoomsMin == nil && filters.RoomsMax == nil {
		qs = append(qs, "Koliko soba tražite?")
	}

	if resultCount > 5 {
		qs = append(qs, "Ima dosta rezultata — želite li suziti pretragu dodatnim kriterijima?")
	}

	if len(qs) > MaxFollowUpQuestions {
		qs = qs[:MaxFollowUpQuestions]
	}
	return qs
}
