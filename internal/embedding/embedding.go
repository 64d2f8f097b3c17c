// Package embedding implements text->vector generation with a two-tier
// TTL cache and a batched API for bulk listing embedding.
package embedding

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/nyka2002/nekretnine-search/internal/logger"
	"github.com/nyka2002/nekretnine-search/internal/models"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Provider generates embedding vectors from text. A separate, narrower
// interface from internal/llm.Provider (which is chat-completion oriented and has
// no embeddings endpoint).
type Provider interface {
	Embed(ctx context.Context, texts []string) ([][]float32, int, error)
}

// OpenAIEmbedder is the default Provider, calling OpenAI's embeddings API.
type OpenAIEmbedder struct {
	client openai.Client
	model  string
}

// NewOpenAIEmbedder creates an OpenAIEmbedder.
func NewOpenAIEmbedder(apiKey, baseURL, model string) *OpenAIEmbedder {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if model == "" {
		model = "text-embedding-3-small"
	}
	return &OpenAIEmbedder{client: openai.NewClient(opts...), model: model}
}

// Embed calls the batch embeddings endpoint for texts, returning one vector
// per input in order, plus the total token count billed.
func (e *OpenAIEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, int, error) {
	resp, err := e.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Model: openai.EmbeddingModel(e.model),
		Input: openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts},
	})
	if err != nil {
		return nil, 0, fmt.Errorf("embedding: provider call: %w", err)
	}

	vectors := make([][]float32, len(resp.Data))
	for _, d := range resp.Data {
		vec := make([]float32, len(d.Embedding))
		for i, f := range d.Embedding {
			vec[i] = float32(f)
		}
		vectors[d.Index] = vec
	}

	return vectors, int(resp.Usage.TotalTokens), nil
}

// QueryResult is the result of generating a query embedding.
type QueryResult struct {
	Embedding  []float32
	TokenCount int
	Cached     bool
}

// Service is the embedding service: cache-first generation plus batch
// listing embedding.
type Service struct {
	provider Provider
	cache    *Cache
}

// New creates a Service.
func New(provider Provider, cache *Cache) *Service {
	return &Service{provider: provider, cache: cache}
}

// GenerateQuery normalizes text, checks the query cache, and falls back to
// the provider on a miss.
func (s *Service) GenerateQuery(ctx context.Context, text string) (QueryResult, error) {
	normalized := normalizeText(text)
	key := QueryKey(normalized)

	if vec, ok := s.cache.Get(key); ok {
		return QueryResult{Embedding: vec, Cached: true}, nil
	}

	vectors, tokens, err := s.provider.Embed(ctx, []string{normalized})
	if err != nil {
		return QueryResult{}, err
	}
	if len(vectors) == 0 {
		return QueryResult{}, fmt.Errorf("embedding: provider returned no vectors")
	}

	s.cache.Set(key, vectors[0], QueryTTL)
	return QueryResult{Embedding: vectors[0], TokenCount: tokens}, nil
}

const batchChunkSize = 100
const batchChunkDelay = 100 * time.Millisecond

// BatchGenerate probes the cache for each listing, sends only the misses to
// the provider in chunks of 100 with a 100ms delay between chunks, and falls
// back to per-item generation if a whole chunk fails. Per-item failures are
// collected in failedIDs rather than aborting the batch.
func (s *Service) BatchGenerate(ctx context.Context, listings []*models.Listing) (failedIDs []string) {
	var misses []*models.Listing
	for _, l := range listings {
		key := ListingKey(l.ID)
		if vec, ok := s.cache.Get(key); ok {
			l.Embedding = vec
			continue
		}
		misses = append(misses, l)
	}

	for i := 0; i < len(misses); i += batchChunkSize {
		end := i + batchChunkSize
		if end > len(misses) {
			end = len(misses)
		}
		chunk := misses[i:end]

		if err := s.embedChunk(ctx, chunk); err != nil {
			logger.Warn("embedding: batch chunk failed, falling back to per-item", "error", err)
			failedIDs = append(failedIDs, s.embedPerItem(ctx, chunk)...)
		}

		if end < len(misses) {
			time.Sleep(batchChunkDelay)
		}
	}

	return failedIDs
}

func (s *Service) embedChunk(ctx context.Context, chunk []*models.Listing) error {
	texts := make([]string, len(chunk))
	for i, l := range chunk {
		texts[i] = ListingText(l)
	}

	vectors, _, err := s.provider.Embed(ctx, texts)
	if err != nil {
		return err
	}
	if len(vectors) != len(chunk) {
		return fmt.Errorf("embedding: expected %d vectors, got %d", len(chunk), len(vectors))
	}

	for i, l := range chunk {
		l.Embedding = vectors[i]
		s.cache.Set(ListingKey(l.ID), vectors[i], ListingTTL)
	}
	return nil
}

func (s *Service) embedPerItem(ctx context.Context, chunk []*models.Listing) (failed []string) {
	for _, l := range chunk {
		vectors, _, err := s.provider.Embed(ctx, []string{ListingText(l)})
		if err != nil || len(vectors) == 0 {
			failed = append(failed, l.ID)
			continue
		}
		l.Embedding = vectors[0]
		s.cache.Set(ListingKey(l.ID), vectors[0], ListingTTL)
	}
	return failed
}

func normalizeText(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// ListingText composes the stable, reproducible text blob embedded for a
// listing. The template must not change between runs or cached listing
// vectors stop matching their source text.
func ListingText(l *models.Listing) string {
	rooms := "?"
	if l.Rooms != nil {
		rooms = strconv.Itoa(*l.Rooms)
	}
	area := "?"
	if l.SurfaceAreaM2 != nil {
		area = strconv.FormatFloat(*l.SurfaceAreaM2, 'f', 0, 64)
	}

	var amenities []string
	if l.HasParking {
		amenities = append(amenities, "parking")
	}
	if l.HasBalcony {
		amenities = append(amenities, "balkon")
	}
	if l.HasGarage {
		amenities = append(amenities, "garaža")
	}
	if l.IsFurnished {
		amenities = append(amenities, "namješteno")
	}

	description := l.Description
	if len(description) > 500 {
		description = description[:500]
	}

	return fmt.Sprintf(
		"%s. %s za %s. Lokacija: %s, %s. %s sobe, %sm², %d€. Pogodnosti: %s. %s",
		l.Title, l.PropertyType, l.ListingType, l.City, l.Address,
		rooms, area, l.Price, strings.Join(amenities, ", "), description,
	)
}
