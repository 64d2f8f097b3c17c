package sources

import (
	"context"
	"testing"

	"github.com/nyka2002/nekretnine-search/internal/models"
)

func TestLoadSelectorConfigs(t *testing.T) {
	configs, err := LoadSelectorConfigs()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(configs) == 0 {
		t.Fatal("expected at least one embedded selector config")
	}
	for _, cfg := range configs {
		if cfg.Source == "" || cfg.BaseURL == "" {
			t.Errorf("config missing source/base_url: %+v", cfg)
		}
		if len(cfg.Cards) == 0 || len(cfg.Title) == 0 {
			t.Errorf("%s: cards and title selector chains are required", cfg.Source)
		}
	}
}

func TestConfigScraper_PageURL(t *testing.T) {
	cfg := SelectorConfig{
		Source:  "test-site",
		BaseURL: "https://example.com/oglasi",
		PagePath: map[string]string{
			"rent": "najam?page=%d",
			"sale": "prodaja?page=%d",
		},
	}

	rent := NewConfigScraper(cfg, models.ListingTypeRent)
	if got := rent.PageURL(3); got != "https://example.com/oglasi/najam?page=3" {
		t.Errorf("unexpected rent page url: %q", got)
	}
	sale := NewConfigScraper(cfg, models.ListingTypeSale)
	if got := sale.PageURL(1); got != "https://example.com/oglasi/prodaja?page=1" {
		t.Errorf("unexpected sale page url: %q", got)
	}
}

const configScraperListHTML = `
<html><body>
<article class="card">
  <h3 class="title"><a href="https://example.com/oglasi/oglas/111">Stan A</a></h3>
  <span class="price">700 €/mj</span>
  <span class="location">Zagreb, Trešnjevka</span>
</article>
<article class="card">
  <h3 class="title"><a href="https://example.com/oglasi/oglas/222">Stan B</a></h3>
  <span class="price">850 €/mj</span>
  <span class="location">Split</span>
</article>
<a class="next" href="/oglasi/najam?page=2">Sljedeća</a>
</body></html>`

func TestConfigScraper_ParseList(t *testing.T) {
	cfg := SelectorConfig{
		Source:   "test-site",
		BaseURL:  "https://example.com/oglasi",
		Cards:    []string{".missing", "article.card"},
		Title:    []string{"h3.title a"},
		Price:    []string{".price"},
		Location: []string{".location"},
		NextPage: "a.next",
	}
	s := NewConfigScraper(cfg, models.ListingTypeRent)

	page, err := s.ParseList(context.Background(), configScraperListHTML, "https://example.com/oglasi/najam?page=1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(page.Listings) != 2 {
		t.Fatalf("expected 2 listings, got %d", len(page.Listings))
	}
	first := page.Listings[0]
	if first.ExternalID != "111" {
		t.Errorf("expected external id 111, got %q", first.ExternalID)
	}
	if first.Title != "Stan A" {
		t.Errorf("expected title Stan A, got %q", first.Title)
	}
	if first.PriceText != "700 €/mj" {
		t.Errorf("unexpected price text %q", first.PriceText)
	}
	if !page.Pagination.HasNext {
		t.Error("expected pagination to report a next page")
	}
	if page.Pagination.NextURL != "https://example.com/oglasi/najam?page=2" {
		t.Errorf("unexpected next url %q", page.Pagination.NextURL)
	}
}

const configScraperDetailHTML = `
<html><body>
<div class="description">Svijetao dvosobni stan blizu centra.</div>
<div class="gallery"><img src="https://example.com/img/1.jpg"><img src="https://example.com/img/2.jpg"></div>
<ul class="features"><li>parking</li><li>balkon</li></ul>
<dl>
  <dt class="info-label">Broj soba</dt><dd>2</dd>
  <dt class="info-label">Kupaonice</dt><dd>1</dd>
</dl>
</body></html>`

func TestConfigScraper_ParseDetail(t *testing.T) {
	cfg := SelectorConfig{
		Source:  "test-site",
		BaseURL: "https://example.com/oglasi",
		Cards:   []string{"article.card"},
		Detail: DetailSelectors{
			Description: []string{".description"},
			Images:      []string{".gallery img"},
			Amenities:   []string{".features li"},
			Labels:      ".info-label",
		},
	}
	s := NewConfigScraper(cfg, models.ListingTypeRent)

	raw, err := s.ParseDetail(context.Background(), configScraperDetailHTML, RawListingData{ExternalID: "111"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if raw.Description == "" {
		t.Error("expected description to be filled")
	}
	if len(raw.Images) != 2 {
		t.Errorf("expected 2 images, got %d", len(raw.Images))
	}
	if len(raw.RawAmenities) != 2 {
		t.Errorf("expected 2 amenities, got %d", len(raw.RawAmenities))
	}
	if raw.Rooms == nil || *raw.Rooms != 2 {
		t.Errorf("expected rooms=2, got %v", raw.Rooms)
	}
	if raw.Bathrooms == nil || *raw.Bathrooms != 1 {
		t.Errorf("expected bathrooms=1, got %v", raw.Bathrooms)
	}
}
