// Package search orchestrates the end-to-end query path: embed ->
// retrieve -> hard-filter -> rank, with an automatic fallback to a
// filter-only path when semantic retrieval comes up empty or fails. Pure
// orchestration over the embedding, store, matcher, and ranking packages.
package search

import (
	"context"
	"time"

	"github.com/nyka2002/nekretnine-search/internal/embedding"
	"github.com/nyka2002/nekretnine-search/internal/errkind"
	"github.com/nyka2002/nekretnine-search/internal/matcher"
	"github.com/nyka2002/nekretnine-search/internal/models"
	"github.com/nyka2002/nekretnine-search/internal/ranking"
	"github.com/nyka2002/nekretnine-search/internal/store"
)

// EmbeddingGenerator is the subset of the embedding service search needs.
type EmbeddingGenerator interface {
	GenerateQuery(ctx context.Context, text string) (embedding.QueryResult, error)
}

// Config controls one search call's similarity threshold, result limit and
// fallback fetch limit.
type Config struct {
	Threshold               float64
	MaxResults              int
	FallbackLimitMultiplier int
}

// DefaultConfig returns the standard search thresholds.
func DefaultConfig() Config {
	return Config{Threshold: 0.5, MaxResults: 20, FallbackLimitMultiplier: 2}
}

// fallbackWeights are the weights applied only to a fallback-path call,
// where every candidate carries the same placeholder similarity.
var fallbackWeights = ranking.Weights{Semantic: 0, FilterMatch: 0.8, Recency: 0.15, Freshness: 0.05}

const fallbackSimilarity = 0.5
const candidateFetchMultiplier = 3 // fetch 3x requested so ranking has room to drop mismatches

// Result is the outcome of one Search call.
type Result struct {
	Listings     []ranking.Result
	TotalMatches int
	SearchTimeMs int64
	Filters      models.ExtractedFilters
	Embedding    []float32
	FallbackUsed bool
	// Cached reports whether the query embedding came from the cache
	// rather than a fresh provider call.
	Cached bool
}

// Service orchestrates embedding, retrieval, matching, and ranking.
type Service struct {
	Embeddings EmbeddingGenerator
	Store      store.Store
	Matcher    *matcher.Matcher
	Ranking    *ranking.Service
	Now        func() time.Time
}

// New creates a search Service. now defaults to time.Now if nil.
func New(embeddings EmbeddingGenerator, st store.Store, m *matcher.Matcher, r *ranking.Service, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{Embeddings: embeddings, Store: st, Matcher: m, Ranking: r, Now: now}
}

// Search performs the end-to-end query operation.
func (s *Service) Search(ctx context.Context, queryText string, filters models.ExtractedFilters, cfg Config) (Result, error) {
	start := time.Now()

	embResult, embErr := s.Embeddings.GenerateQuery(ctx, queryText)
	if embErr == nil {
		candidates, searchErr := s.Store.SearchSemantic(ctx, embResult.Embedding, cfg.Threshold, cfg.MaxResults*candidateFetchMultiplier)
		if searchErr == nil && len(candidates) > 0 {
			return s.rankSemantic(ctx, candidates, filters, cfg, embResult, start)
		}
		// DATABASE_ERROR or empty candidates both trigger the fallback path.
	}

	return s.fallback(ctx, filters, cfg, start)
}

func (s *Service) rankSemantic(ctx context.Context, candidates []store.SearchResult, filters models.ExtractedFilters, cfg Config, emb embedding.QueryResult, start time.Time) (Result, error) {
	listings := make([]*models.Listing, len(candidates))
	simByID := make(map[string]float64, len(candidates))
	for i, c := range candidates {
		listings[i] = c.Listing
		simByID[c.Listing.ID] = c.Similarity
	}

	admissible := matcher.FilterByHardRequirements(listings, filters)

	rankCandidates := make([]ranking.Candidate, len(admissible))
	for i, l := range admissible {
		rankCandidates[i] = ranking.Candidate{Listing: l, Similarity: simByID[l.ID]}
	}

	ranked := s.Ranking.Rank(rankCandidates, filters, s.Now())
	if len(ranked) > cfg.MaxResults {
		ranked = ranked[:cfg.MaxResults]
	}

	return Result{
		Listings:     ranked,
		TotalMatches: len(admissible),
		SearchTimeMs: time.Since(start).Milliseconds(),
		Filters:      filters,
		Embedding:    emb.Embedding,
		Cached:       emb.Cached,
	}, nil
}

// fallback lists by filters directly, assigns a fixed 0.5 similarity, and
// ranks with the fallback weight table for this call only.
func (s *Service) fallback(ctx context.Context, filters models.ExtractedFilters, cfg Config, start time.Time) (Result, error) {
	listFilters := toListFilters(filters)
	listed, err := s.Store.List(ctx, listFilters, cfg.MaxResults*cfg.FallbackLimitMultiplier, 0)
	if err != nil {
		return Result{}, errkind.Wrap(errkind.DatabaseError, "search fallback: store.List", err)
	}

	rankCandidates := make([]ranking.Candidate, len(listed))
	for i, l := range listed {
		rankCandidates[i] = ranking.Candidate{Listing: l, Similarity: fallbackSimilarity}
	}

	fallbackRanker := ranking.New(fallbackWeights, s.Matcher)
	ranked := fallbackRanker.Rank(rankCandidates, filters, s.Now())
	if len(ranked) > cfg.MaxResults {
		ranked = ranked[:cfg.MaxResults]
	}

	return Result{
		Listings:     ranked,
		TotalMatches: len(listed),
		SearchTimeMs: time.Since(start).Milliseconds(),
		Filters:      filters,
		FallbackUsed: true,
	}, nil
}

// FindSimilar fetches the base listing's embedding and retrieves its k
// nearest neighbors, dropping the base listing from the results.
func (s *Service) FindSimilar(ctx context.Context, listingID string, k int) ([]store.SearchResult, error) {
	base, err := s.Store.GetByID(ctx, listingID)
	if err != nil {
		return nil, errkind.Wrap(errkind.DatabaseError, "find similar: get base listing", err)
	}
	if base == nil || len(base.Embedding) == 0 {
		return nil, errkind.New(errkind.NoEmbedding, "listing has no embedding")
	}

	results, err := s.Store.SearchSemantic(ctx, base.Embedding, fallbackSimilarity, k+1)
	if err != nil {
		return nil, errkind.Wrap(errkind.DatabaseError, "find similar: search semantic", err)
	}

	out := make([]store.SearchResult, 0, len(results))
	for _, r := range results {
		if r.Listing.ID == listingID {
			continue
		}
		out = append(out, r)
	}
	if len(out) > k {
		out = out[:k]
	}
	return out, nil
}

func toListFilters(f models.ExtractedFilters) store.ListFilters {
	return store.ListFilters{
		ListingType:  f.ListingType,
		PropertyType: f.PropertyType,
		City:         f.Location,
		PriceMin:     f.PriceMin,
		PriceMax:     f.PriceMax,
		RoomsMin:     f.RoomsMin,
		RoomsMax:     f.RoomsMax,
		HasParking:   f.HasParking,
		HasBalcony:   f.HasBalcony,
		IsFurnished:  f.IsFurnished,
	}
}
