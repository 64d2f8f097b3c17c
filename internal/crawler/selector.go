// Package crawler holds the pagination-link detector that
// internal/sources' scrapers share for "is there a next page" / "what's
// its URL" detection.
package crawler

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// PaginationSelector finds the next page link.
type PaginationSelector struct {
	NextSelector string // CSS selector for "next" link
}

// NewPaginationSelector creates a pagination selector.
func NewPaginationSelector(nextSelector string) *PaginationSelector {
	return &PaginationSelector{
		NextSelector: nextSelector,
	}
}

// FindNextPage finds the URL of the next page.
func (ps *PaginationSelector) FindNextPage(html string, baseURL string) (string, bool) {
	if ps.NextSelector == "" {
		return "", false
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", false
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return "", false
	}

	var nextURL string
	doc.Find(ps.NextSelector).First().Each(func(_ int, s *goquery.Selection) {
		href, exists := s.Attr("href")
		if !exists || href == "" {
			return
		}

		// Skip fragments and javascript links
		if strings.HasPrefix(href, "#") || strings.HasPrefix(href, "javascript:") {
			return
		}

		linkURL, err := url.Parse(href)
		if err != nil {
			return
		}

		if !linkURL.IsAbs() {
			linkURL = base.ResolveReference(linkURL)
		}

		nextURL = linkURL.String()
	})

	return nextURL, nextURL != ""
}
