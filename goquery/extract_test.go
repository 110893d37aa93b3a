package goquery_test

import (
	"testing"

	"github.com/fwojciec/scout"
	"github.com/fwojciec/scout/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinkExtractor_ExtractLinks(t *testing.T) {
	t.Parallel()

	t.Run("returns anchor targets in document order", func(t *testing.T) {
		t.Parallel()

		html := `<!DOCTYPE html>
<html>
<body>
<nav>
	<a href="http://b.test/x">B</a>
	<a href="/about">About</a>
</nav>
<main>
	<p>See <a href="https://c.test">C</a> and <a href="#top">top</a>.</p>
</main>
</body>
</html>`

		links, err := goquery.NewLinkExtractor().ExtractLinks(html)

		require.NoError(t, err)
		assert.Equal(t, []string{"http://b.test/x", "/about", "https://c.test", "#top"}, links)
	})

	t.Run("removes duplicates and empty hrefs", func(t *testing.T) {
		t.Parallel()

		html := `<a href="http://b.test">1</a><a href="">2</a><a href="  http://b.test ">3</a><a>4</a>`

		links, err := goquery.NewLinkExtractor().ExtractLinks(html)

		require.NoError(t, err)
		assert.Equal(t, []string{"http://b.test"}, links)
	})

	t.Run("ignores href on non-anchor elements", func(t *testing.T) {
		t.Parallel()

		html := `<link href="http://cdn.test/style.css"><area href="http://map.test"><a href="http://b.test">b</a>`

		links, err := goquery.NewLinkExtractor().ExtractLinks(html)

		require.NoError(t, err)
		assert.Equal(t, []string{"http://b.test"}, links)
	})

	t.Run("returns nothing for a page without links", func(t *testing.T) {
		t.Parallel()

		links, err := goquery.NewLinkExtractor().ExtractLinks("plain text body")

		require.NoError(t, err)
		assert.Empty(t, links)
	})
}

// Compile-time verification that LinkExtractor implements scout.LinkExtractor
var _ scout.LinkExtractor = (*goquery.LinkExtractor)(nil)
