package sources

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/nyka2002/nekretnine-search/internal/models"
)

// NjuskaloScraper is the per-site scraper for a major Croatian classifieds
// site: each field is attempted against several candidate CSS selectors
// before giving up, so a site-side markup change degrades gracefully.
type NjuskaloScraper struct {
	baseURL     string
	listingType models.ListingType
}

// NewNjuskaloScraper creates a scraper for one listing type; "rent" and
// "sale" are scraped as separate Runner invocations with their own rate
// limiters.
func NewNjuskaloScraper(listingType models.ListingType) *NjuskaloScraper {
	return &NjuskaloScraper{
		baseURL:     "https://www.njuskalo.hr/nekretnine",
		listingType: listingType,
	}
}

func (s *NjuskaloScraper) Source() string { return "njuskalo" }

func (s *NjuskaloScraper) ListingType() models.ListingType { return s.listingType }

func (s *NjuskaloScraper) PageURL(n int) string {
	segment := "prodaja-stanova"
	if s.listingType == models.ListingTypeRent {
		segment = "najam-stanova"
	}
	return fmt.Sprintf("%s/%s?page=%d", s.baseURL, segment, n)
}

var listingCardSelectors = []string{"article.EntityList-item", ".entity-body", ".oglas-item"}
var titleSelectors = []string{"h3.entity-title a", ".naslov a", "h2 a"}
var priceSelectors = []string{".price", ".entity-pub-prices", ".cijena"}
var locationSelectors = []string{".entity-description-main", ".lokacija", ".location"}

func (s *NjuskaloScraper) ParseList(ctx context.Context, html, pageURL string) (ParsedPage, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ParsedPage{}, fmt.Errorf("njuskalo: parse list: %w", err)
	}

	var cards *goquery.Selection
	for _, sel := range listingCardSelectors {
		found := doc.Find(sel)
		if found.Length() > 0 {
			cards = found
			break
		}
	}

	var listings []RawListingData
	if cards != nil {
		cards.Each(func(_ int, card *goquery.Selection) {
			raw, ok := s.parseCard(card, pageURL)
			if ok {
				listings = append(listings, raw)
			}
		})
	}

	nextURL, hasNext := FindNextPage(".Pagination-link--next", html, pageURL)

	return ParsedPage{
		Listings: listings,
		Pagination: PaginationInfo{
			HasNext: hasNext,
			NextURL: nextURL,
		},
	}, nil
}

func (s *NjuskaloScraper) parseCard(card *goquery.Selection, pageURL string) (RawListingData, bool) {
	title, href := firstMatchWithHref(card, titleSelectors)
	if href == "" {
		return RawListingData{}, false
	}

	return RawListingData{
		ExternalID:   ExternalID(href),
		URL:          href,
		Title:        title,
		PriceText:    firstMatch(card, priceSelectors),
		LocationText: firstMatch(card, locationSelectors),
	}, true
}

// ParseDetail enriches a raw listing with description, images, amenities and
// room counts from its detail page, keeping the list-page fields as-is.
// Runner.Run does not call it.
func (s *NjuskaloScraper) ParseDetail(ctx context.Context, html string, raw RawListingData) (RawListingData, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return raw, fmt.Errorf("njuskalo: parse detail: %w", err)
	}

	raw.Description = strings.TrimSpace(doc.Find(".description, .entity-description").First().Text())

	doc.Find(".image-gallery img, .photo img").Each(func(_ int, img *goquery.Selection) {
		if src, ok := img.Attr("src"); ok && src != "" {
			raw.Images = append(raw.Images, src)
		}
	})

	doc.Find(".amenity, .property-feature").Each(func(_ int, f *goquery.Selection) {
		raw.RawAmenities = append(raw.RawAmenities, strings.TrimSpace(f.Text()))
	})

	labels := map[string]string{}
	doc.Find(".property-info-label").Each(func(i int, label *goquery.Selection) {
		value := label.Next().Text()
		labels[strings.ToLower(strings.TrimSpace(label.Text()))] = strings.TrimSpace(value)
	})
	raw.Rooms, raw.Bedrooms, raw.Bathrooms = ParseLabelMap(labels)

	return raw, nil
}

func firstMatch(root *goquery.Selection, selectors []string) string {
	for _, sel := range selectors {
		if text := strings.TrimSpace(root.Find(sel).First().Text()); text != "" {
			return text
		}
	}
	return ""
}

func firstMatchWithHref(root *goquery.Selection, selectors []string) (text, href string) {
	for _, sel := range selectors {
		el := root.Find(sel).First()
		if el.Length() == 0 {
			continue
		}
		if h, ok := el.Attr("href"); ok && h != "" {
			return strings.TrimSpace(el.Text()), h
		}
	}
	return "", ""
}
