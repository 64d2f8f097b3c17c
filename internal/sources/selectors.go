package sources

import (
	"context"
	"embed"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/nyka2002/nekretnine-search/internal/models"
	"gopkg.in/yaml.v3"
)

//go:embed config/*.yaml
var selectorConfigFS embed.FS

// DetailSelectors are the CSS paths a config-driven scraper uses on a
// listing's detail page.
type DetailSelectors struct {
	Description []string `yaml:"description"`
	Images      []string `yaml:"images"`
	Amenities   []string `yaml:"amenities"`
	Labels      string   `yaml:"labels"`
}

// SelectorConfig declares one source entirely through CSS selectors, so a
// new site can be onboarded with a YAML file instead of a hand-written
// scraper. Each selector field is a fallback chain tried in order.
type SelectorConfig struct {
	Source   string            `yaml:"source"`
	BaseURL  string            `yaml:"base_url"`
	PagePath map[string]string `yaml:"page_path"` // listing type -> path with one %d page placeholder

	Cards    []string `yaml:"cards"`
	Title    []string `yaml:"title"`
	Price    []string `yaml:"price"`
	Location []string `yaml:"location"`
	NextPage string   `yaml:"next_page"`

	Detail DetailSelectors `yaml:"detail"`
}

// LoadSelectorConfigs parses every embedded config/*.yaml into a
// SelectorConfig.
func LoadSelectorConfigs() ([]SelectorConfig, error) {
	entries, err := selectorConfigFS.ReadDir("config")
	if err != nil {
		return nil, fmt.Errorf("sources: read selector configs: %w", err)
	}

	var configs []SelectorConfig
	for _, e := range entries {
		data, err := selectorConfigFS.ReadFile("config/" + e.Name())
		if err != nil {
			return nil, fmt.Errorf("sources: read %s: %w", e.Name(), err)
		}
		var cfg SelectorConfig
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("sources: parse %s: %w", e.Name(), err)
		}
		if cfg.Source == "" || cfg.BaseURL == "" || len(cfg.Cards) == 0 {
			return nil, fmt.Errorf("sources: %s: source, base_url and cards are required", e.Name())
		}
		configs = append(configs, cfg)
	}
	return configs, nil
}

// ConfigScraper is a Scraper driven entirely by a SelectorConfig.
type ConfigScraper struct {
	cfg         SelectorConfig
	listingType models.ListingType
}

// NewConfigScraper creates a scraper for one listing type from cfg.
func NewConfigScraper(cfg SelectorConfig, listingType models.ListingType) *ConfigScraper {
	return &ConfigScraper{cfg: cfg, listingType: listingType}
}

func (s *ConfigScraper) Source() string { return s.cfg.Source }

func (s *ConfigScraper) ListingType() models.ListingType { return s.listingType }

func (s *ConfigScraper) PageURL(n int) string {
	path, ok := s.cfg.PagePath[string(s.listingType)]
	if !ok {
		path = "?page=%d"
	}
	return s.cfg.BaseURL + "/" + fmt.Sprintf(path, n)
}

func (s *ConfigScraper) ParseList(ctx context.Context, html, pageURL string) (ParsedPage, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ParsedPage{}, fmt.Errorf("%s: parse list: %w", s.cfg.Source, err)
	}

	var cards *goquery.Selection
	for _, sel := range s.cfg.Cards {
		found := doc.Find(sel)
		if found.Length() > 0 {
			cards = found
			break
		}
	}

	var listings []RawListingData
	if cards != nil {
		cards.Each(func(_ int, card *goquery.Selection) {
			title, href := firstMatchWithHref(card, s.cfg.Title)
			if href == "" {
				return
			}
			listings = append(listings, RawListingData{
				ExternalID:   ExternalID(href),
				URL:          href,
				Title:        title,
				PriceText:    firstMatch(card, s.cfg.Price),
				LocationText: firstMatch(card, s.cfg.Location),
			})
		})
	}

	var pagination PaginationInfo
	if s.cfg.NextPage != "" {
		nextURL, hasNext := FindNextPage(s.cfg.NextPage, html, pageURL)
		pagination = PaginationInfo{HasNext: hasNext, NextURL: nextURL}
	}

	return ParsedPage{Listings: listings, Pagination: pagination}, nil
}

func (s *ConfigScraper) ParseDetail(ctx context.Context, html string, raw RawListingData) (RawListingData, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return raw, fmt.Errorf("%s: parse detail: %w", s.cfg.Source, err)
	}

	if desc := firstMatch(doc.Selection, s.cfg.Detail.Description); desc != "" {
		raw.Description = desc
	}

	for _, sel := range s.cfg.Detail.Images {
		doc.Find(sel).Each(func(_ int, img *goquery.Selection) {
			if src, ok := img.Attr("src"); ok && src != "" {
				raw.Images = append(raw.Images, src)
			}
		})
		if len(raw.Images) > 0 {
			break
		}
	}

	for _, sel := range s.cfg.Detail.Amenities {
		doc.Find(sel).Each(func(_ int, f *goquery.Selection) {
			if text := strings.TrimSpace(f.Text()); text != "" {
				raw.RawAmenities = append(raw.RawAmenities, text)
			}
		})
		if len(raw.RawAmenities) > 0 {
			break
		}
	}

	if s.cfg.Detail.Labels != "" {
		labels := map[string]string{}
		doc.Find(s.cfg.Detail.Labels).Each(func(_ int, label *goquery.Selection) {
			value := label.Next().Text()
			labels[strings.ToLower(strings.TrimSpace(label.Text()))] = strings.TrimSpace(value)
		})
		raw.Rooms, raw.Bedrooms, raw.Bathrooms = ParseLabelMap(labels)
	}

	return raw, nil
}
