package scout

// LinkExtractor finds hyperlink targets in a page.
type LinkExtractor interface {
	// ExtractLinks parses HTML and returns the raw href of every anchor,
	// without duplicates, in document order. Targets are not resolved
	// against the page URL, so relative links come back relative.
	ExtractLinks(html string) ([]string, error)
}
