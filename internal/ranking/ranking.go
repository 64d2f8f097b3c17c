// Package ranking combines four scores (semantic, filter-match, recency,
// freshness) into one weighted ranking, sorted descending, with a
// human-readable explain surface for debugging.
package ranking

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/nyka2002/nekretnine-search/internal/matcher"
	"github.com/nyka2002/nekretnine-search/internal/models"
)

// Weights combines the four component scores.
type Weights struct {
	Semantic    float64
	FilterMatch float64
	Recency     float64
	Freshness   float64
}

// DefaultWeights returns the standard combination weights.
func DefaultWeights() Weights {
	return Weights{Semantic: 0.4, FilterMatch: 0.4, Recency: 0.1, Freshness: 0.1}
}

// Scores holds the four subscores plus the combined score, stored alongside
// each ranked listing for the explain surface.
type Scores struct {
	Semantic    float64
	FilterMatch float64
	Recency     float64
	Freshness   float64
	Combined    float64
}

// Result pairs a Listing with its computed Scores and matcher detail.
type Result struct {
	Listing *models.Listing
	Scores  Scores
	Match   matcher.MatchResult
}

// Service ranks candidates using a weight table and a Matcher.
type Service struct {
	Weights Weights
	Matcher *matcher.Matcher
}

// New creates a ranking Service.
func New(w Weights, m *matcher.Matcher) *Service {
	return &Service{Weights: w, Matcher: m}
}

// Candidate is one semantic-search hit awaiting ranking.
type Candidate struct {
	Listing    *models.Listing
	Similarity float64
}

// Rank computes all four subscores for each candidate against filters and
// returns results sorted descending by combined score.
func (s *Service) Rank(candidates []Candidate, filters models.ExtractedFilters, now time.Time) []Result {
	results := make([]Result, 0, len(candidates))
	for _, c := range candidates {
		match := s.Matcher.Score(c.Listing, filters)
		scores := Scores{
			Semantic:    clamp01(c.Similarity),
			FilterMatch: clamp01(match.Score),
			Recency:     recency(c.Listing.CreatedAt, now),
			Freshness:   freshness(c.Listing.ScrapedAt, now),
		}
		scores.Combined = clamp01(
			s.Weights.Semantic*scores.Semantic +
				s.Weights.FilterMatch*scores.FilterMatch +
				s.Weights.Recency*scores.Recency +
				s.Weights.Freshness*scores.Freshness,
		)
		results = append(results, Result{Listing: c.Listing, Scores: scores, Match: match})
	}

	sortByCombinedDesc(results)
	return results
}

// Rerank recomputes only the filter-match component (used when filters are
// updated mid-session) and re-sorts, leaving semantic/recency/freshness
// untouched.
func (s *Service) Rerank(results []Result, filters models.ExtractedFilters) []Result {
	out := make([]Result, len(results))
	for i, r := range results {
		match := s.Matcher.Score(r.Listing, filters)
		scores := r.Scores
		scores.FilterMatch = clamp01(match.Score)
		scores.Combined = clamp01(
			s.Weights.Semantic*scores.Semantic +
				s.Weights.FilterMatch*scores.FilterMatch +
				s.Weights.Recency*scores.Recency +
				s.Weights.Freshness*scores.Freshness,
		)
		out[i] = Result{Listing: r.Listing, Scores: scores, Match: match}
	}
	sortByCombinedDesc(out)
	return out
}

func sortByCombinedDesc(results []Result) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Scores.Combined > results[j].Scores.Combined
	})
}

// recency is 1.0 for age < 1 day, clamp(1 - days/30, 0, 1) otherwise.
func recency(createdAt, now time.Time) float64 {
	days := now.Sub(createdAt).Hours() / 24
	if days < 1 {
		return 1
	}
	return clamp01(1 - days/30)
}

// freshness is 1.0 for age < 1 hour, clamp(1 - hours/168, 0, 1) otherwise.
func freshness(scrapedAt, now time.Time) float64 {
	hours := now.Sub(scrapedAt).Hours()
	if hours < 1 {
		return 1
	}
	return clamp01(1 - hours/168)
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

// Explain renders a human-readable breakdown of one ranked result: the four
// subscores plus matched/unmatched/partial field names.
func Explain(r Result) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "combined=%.3f (semantic=%.3f filter=%.3f recency=%.3f freshness=%.3f)\n",
		r.Scores.Combined, r.Scores.Semantic, r.Scores.FilterMatch, r.Scores.Recency, r.Scores.Freshness)

	var matched, unmatched []string
	var partial []string
	for _, fs := range r.Match.Fields {
		switch {
		case fs.Score == 1:
			matched = append(matched, fs.Field)
		case fs.Score == 0:
			unmatched = append(unmatched, fs.Field)
		default:
			partial = append(partial, fmt.Sprintf("%s(%.2f: expected %s, got %s)", fs.Field, fs.Score, fs.Expected, fs.Actual))
		}
	}
	fmt.Fprintf(&sb, "matched=%v\n", matched)
	fmt.Fprintf(&sb, "unmatched=%v\n", unmatched)
	fmt.Fprintf(&sb, "partial=%v\n", partial)
	return sb.String()
}
