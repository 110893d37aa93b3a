package mock

import "github.com/fwojciec/scout"

var _ scout.LinkExtractor = (*LinkExtractor)(nil)

// LinkExtractor is a mock implementation of scout.LinkExtractor.
type LinkExtractor struct {
	ExtractLinksFn func(html string) ([]string, error)
}

func (e *LinkExtractor) ExtractLinks(html string) ([]string, error) {
	return e.ExtractLinksFn(html)
}
