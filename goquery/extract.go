// Package goquery provides HTML link extraction using goquery.
package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/scout"
)

// Ensure LinkExtractor implements scout.LinkExtractor at compile time.
var _ scout.LinkExtractor = (*LinkExtractor)(nil)

// LinkExtractor returns the href of every anchor in a page.
type LinkExtractor struct {
	selector string
}

// NewLinkExtractor creates a LinkExtractor that reads every a[href].
func NewLinkExtractor() *LinkExtractor {
	return &LinkExtractor{selector: "a[href]"}
}

// ExtractLinks parses html and returns the anchor targets in document
// order, with surrounding whitespace trimmed and duplicates and empty
// hrefs removed. Targets are returned as written in the page.
func (e *LinkExtractor) ExtractLinks(html string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, scout.Errorf(scout.EPARSE, "failed to parse HTML: %v", err)
	}

	seen := make(map[string]struct{})
	var links []string
	doc.Find(e.selector).Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" {
			return
		}
		if _, ok := seen[href]; ok {
			return
		}
		seen[href] = struct{}{}
		links = append(links, href)
	})

	return links, nil
}
