package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/nyka2002/nekretnine-search/internal/chat"
	"github.com/nyka2002/nekretnine-search/internal/embedding"
	"github.com/nyka2002/nekretnine-search/internal/filters"
	"github.com/nyka2002/nekretnine-search/internal/llm"
	"github.com/nyka2002/nekretnine-search/internal/matcher"
	"github.com/nyka2002/nekretnine-search/internal/models"
	"github.com/nyka2002/nekretnine-search/internal/queue"
	"github.com/nyka2002/nekretnine-search/internal/ranking"
	"github.com/nyka2002/nekretnine-search/internal/search"
	"github.com/nyka2002/nekretnine-search/internal/store"
)

type fakeLLM struct {
	response string
}

func (f fakeLLM) Complete(ctx context.Context, req llm.CompletionRequest) (llm.CompletionResponse, error) {
	return llm.CompletionResponse{Content: f.response}, nil
}
func (f fakeLLM) Name() string { return "fake" }
func (f fakeLLM) SupportsJSONSchema() bool { return true }

type fakeEmbedder struct{}

func (fakeEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, int, error) {
	vectors := make([][]float32, len(texts))
	for i := range texts {
		vectors[i] = []float32{1, 0, 0}
	}
	return vectors, len(texts), nil
}

func newTestServer(t *testing.T, llmResponse string) (*Server, *store.MemoryStore) {
	t.Helper()

	st := store.NewMemoryStore()
	m := matcher.New(matcher.DefaultWeights())
	rankSvc := ranking.New(ranking.DefaultWeights(), m)
	embedSvc := embedding.New(fakeEmbedder{}, embedding.NewCache())

	return &Server{
		Extractor:   filters.New(fakeLLM{response: llmResponse}, filters.DefaultConfig()),
		ChatManager: chat.New(chat.NewMemoryStore(), nil),
		Search:      search.New(embedSvc, st, m, rankSvc, nil),
		Store:       st,
		Queue:       queue.New(),
		AdminToken:  "sekrit",
	}, st
}

func seedListing(t *testing.T, st *store.MemoryStore, source, externalID, city string, price int) *models.Listing {
	t.Helper()
	now := time.Now()
	l := &models.Listing{
		Source:      source,
		ExternalID:  externalID,
		Title:       "Stan " + externalID,
		Price:       price,
		Currency:    "EUR",
		ListingType: models.ListingTypeRent,
		City:        city,
		Embedding:   []float32{1, 0, 0},
		ScrapedAt:   now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := st.Insert(context.Background(), l); err != nil {
		t.Fatalf("seed insert: %v", err)
	}
	return l
}

func TestHandleChat_EmptyQueryRejected(t *testing.T) {
	srv, _ := newTestServer(t, `{}`)
	router := srv.Router()

	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"query":"  "}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHandleChat_SearchableTurnReturnsListings(t *testing.T) {
	llmResponse := `{"listing_type":"rent","location":"Zagreb","price_max":800,"confidence":0.9,"ambiguous_fields":[]}`
	srv, st := newTestServer(t, llmResponse)
	seedListing(t, st, "njuskalo", "1", "Zagreb", 700)
	router := srv.Router()

	body := `{"query":"Stan za najam u Zagrebu do 800 eura"}`
	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp chatResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.SessionID == "" {
		t.Error("expected a session id to be assigned")
	}
	if len(resp.Listings) != 1 {
		t.Fatalf("expected 1 listing, got %d", len(resp.Listings))
	}
	if resp.ExtractedFilters.PriceMax == nil || *resp.ExtractedFilters.PriceMax != 800 {
		t.Errorf("expected merged price_max=800, got %v", resp.ExtractedFilters.PriceMax)
	}
	if resp.Cached {
		t.Error("first query should miss the embedding cache")
	}

	// The same query again hits the embedding cache and says so.
	req = httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(body))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 on repeat query, got %d", rec.Code)
	}
	var repeat chatResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &repeat); err != nil {
		t.Fatalf("decoding repeat response: %v", err)
	}
	if !repeat.Cached {
		t.Error("expected repeat query to report cached=true")
	}
}

func TestHandleChat_LowConfidenceClarifies(t *testing.T) {
	llmResponse := `{"confidence":0.2,"ambiguous_fields":["listing_type","location"]}`
	srv, _ := newTestServer(t, llmResponse)
	router := srv.Router()

	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"query":"nekretnina"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp chatResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(resp.Listings) != 0 {
		t.Error("clarifying turn should not search")
	}
	if len(resp.FollowUpQuestions) == 0 {
		t.Error("expected follow-up questions on a clarifying turn")
	}
}

func TestHandleListListings_Filters(t *testing.T) {
	srv, st := newTestServer(t, `{}`)
	seedListing(t, st, "njuskalo", "1", "Zagreb", 700)
	seedListing(t, st, "njuskalo", "2", "Split", 900)
	router := srv.Router()

	req := httptest.NewRequest(http.MethodGet, "/listings?city=Zagreb&price_max=800", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp listListingsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(resp.Listings) != 1 || resp.Listings[0].City != "Zagreb" {
		t.Fatalf("expected only the Zagreb listing, got %+v", resp.Listings)
	}
}

func TestAdminEndpoints_BearerAuth(t *testing.T) {
	srv, _ := newTestServer(t, `{}`)
	router := srv.Router()

	req := httptest.NewRequest(http.MethodGet, "/admin/scraping/status", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/admin/scraping/status", nil)
	req.Header.Set("Authorization", "Bearer sekrit")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d", rec.Code)
	}
}

func TestAdminTrigger_EnqueuesJob(t *testing.T) {
	srv, _ := newTestServer(t, `{}`)
	router := srv.Router()

	req := httptest.NewRequest(http.MethodPost, "/admin/scraping/trigger", strings.NewReader(`{"source":"njuskalo"}`))
	req.Header.Set("Authorization", "Bearer sekrit")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp triggerScrapingResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.JobID == "" {
		t.Error("expected a job id")
	}

	counts := srv.Queue.Counts()
	if counts.Waiting != 1 {
		t.Errorf("expected 1 waiting job, got %d", counts.Waiting)
	}
}
