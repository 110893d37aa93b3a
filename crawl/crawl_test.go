package crawl_test

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fwojciec/scout"
	"github.com/fwojciec/scout/crawl"
	"github.com/fwojciec/scout/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// site serves pages from a fixed map of URL to outgoing links.
// Pages missing from the map have no links.
func site(pages map[string][]string) (*mock.Fetcher, *mock.LinkExtractor) {
	fetcher := &mock.Fetcher{
		FetchFn: func(_ context.Context, url string) (string, error) {
			return url, nil
		},
	}
	extractor := &mock.LinkExtractor{
		ExtractLinksFn: func(html string) ([]string, error) {
			return pages[html], nil
		},
	}
	return fetcher, extractor
}

// capture returns a GraphWriter that stores every result it receives.
func capture(results *[]*scout.CrawlResult) *mock.GraphWriter {
	var mu sync.Mutex
	return &mock.GraphWriter{
		WriteGraphFn: func(_ context.Context, result *scout.CrawlResult) error {
			mu.Lock()
			defer mu.Unlock()
			*results = append(*results, result)
			return nil
		},
	}
}

func assertNoSelfLoops(t *testing.T, edges []scout.Edge) {
	t.Helper()
	for _, e := range edges {
		assert.NotEqual(t, e.Source, e.Destination, "self loop %v", e)
	}
}

func TestCrawler_Crawl(t *testing.T) {
	t.Parallel()

	t.Run("requires at least one seed", func(t *testing.T) {
		t.Parallel()

		c := &crawl.Crawler{}

		_, err := c.Crawl(context.Background())

		assert.Equal(t, scout.EINVALID, scout.ErrorCode(err))
	})

	t.Run("records cross-domain links from a single seed", func(t *testing.T) {
		t.Parallel()

		fetcher, extractor := site(map[string][]string{
			"http://a.test": {"http://b.test/x", "http://b.test/y"},
		})
		var results []*scout.CrawlResult
		c := &crawl.Crawler{
			Fetcher:    fetcher,
			Extractor:  extractor,
			Output:     capture(&results),
			MaxWorkers: 1,
			MaxLinks:   5,
		}

		result, err := c.Crawl(context.Background(), "http://a.test")

		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Same(t, result, results[0])
		assert.False(t, result.Interrupted)
		assert.NotEmpty(t, result.ID)
		assert.Equal(t, []string{"http://a.test"}, result.Seeds)
		assert.Contains(t, result.Edges, scout.Edge{Source: "a.test", Destination: "b.test"})
		assert.NotContains(t, result.Edges, scout.Edge{Source: "b.test", Destination: "b.test"})
		assertNoSelfLoops(t, result.Edges)
		assert.Equal(t, 3, result.Hits)
		assert.Equal(t, 2, result.LinksRemaining)
	})

	t.Run("suppresses same-domain links", func(t *testing.T) {
		t.Parallel()

		fetcher, extractor := site(map[string][]string{
			"http://a.test":       {"http://a.test/about"},
			"http://a.test/about": {"http://a.test"},
		})
		var results []*scout.CrawlResult
		c := &crawl.Crawler{
			Fetcher:   fetcher,
			Extractor: extractor,
			Output:    capture(&results),
			MaxLinks:  5,
		}

		result, err := c.Crawl(context.Background(), "http://a.test")

		require.NoError(t, err)
		assert.Empty(t, result.Edges)
		assert.Equal(t, 1, result.Hits)
	})

	t.Run("never enqueues ignored domains", func(t *testing.T) {
		t.Parallel()

		var mu sync.Mutex
		var fetched []string
		fetcher := &mock.Fetcher{
			FetchFn: func(_ context.Context, url string) (string, error) {
				mu.Lock()
				fetched = append(fetched, url)
				mu.Unlock()
				return url, nil
			},
		}
		_, extractor := site(map[string][]string{
			"http://a.test": {"https://t.co/abc", "http://b.test"},
		})
		var results []*scout.CrawlResult
		c := &crawl.Crawler{
			Fetcher:   fetcher,
			Extractor: extractor,
			Output:    capture(&results),
			MaxLinks:  5,
		}

		result, err := c.Crawl(context.Background(), "http://a.test")

		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"http://a.test", "http://b.test"}, fetched)
		for _, e := range result.Edges {
			assert.NotEqual(t, "t.co", e.Destination)
		}
	})

	t.Run("logs a timed out seed and still finishes the others", func(t *testing.T) {
		t.Parallel()

		fetcher := &mock.Fetcher{
			FetchFn: func(_ context.Context, url string) (string, error) {
				if url == "http://slow.test" {
					return "", scout.Errorf(scout.ETIMEOUT, "deadline exceeded")
				}
				return url, nil
			},
		}
		_, extractor := site(map[string][]string{
			"http://a.test": {"http://b.test"},
		})
		var buf bytes.Buffer
		var results []*scout.CrawlResult
		c := &crawl.Crawler{
			Fetcher:   fetcher,
			Extractor: extractor,
			Output:    capture(&results),
			Logger:    slog.New(slog.NewTextHandler(&buf, nil)),
			MaxLinks:  10,
		}

		result, err := c.Crawl(context.Background(), "http://slow.test", "http://a.test")

		require.NoError(t, err)
		assert.Contains(t, buf.String(), "slow.test")
		assert.Contains(t, buf.String(), "timed out")
		require.Len(t, results, 1)
		assert.Equal(t, []scout.Edge{{Source: "a.test", Destination: "b.test"}}, result.Edges)
	})

	t.Run("stops accepting links once the budget is spent", func(t *testing.T) {
		t.Parallel()

		// Every page links to ten fresh domains.
		fetcher := &mock.Fetcher{
			FetchFn: func(_ context.Context, url string) (string, error) {
				return url, nil
			},
		}
		extractor := &mock.LinkExtractor{
			ExtractLinksFn: func(html string) ([]string, error) {
				links := make([]string, 10)
				for i := range links {
					links[i] = fmt.Sprintf("%s.d%d.test", html, i)
				}
				return links, nil
			},
		}
		var results []*scout.CrawlResult
		c := &crawl.Crawler{
			Fetcher:    fetcher,
			Extractor:  extractor,
			Output:     capture(&results),
			MaxWorkers: 4,
			MaxLinks:   25,
		}

		result, err := c.Crawl(context.Background(), "http://a.test")

		require.NoError(t, err)
		assert.Len(t, result.Edges, 24, "one budget slot goes to the seed")
		assert.Equal(t, 0, result.LinksRemaining)
		assertNoSelfLoops(t, result.Edges)
	})

	t.Run("closes the fetcher once after workers stop", func(t *testing.T) {
		t.Parallel()

		var inFlight, closes atomic.Int32
		var closedDuringFetch atomic.Bool
		fetcher := &mock.Fetcher{
			FetchFn: func(_ context.Context, url string) (string, error) {
				inFlight.Add(1)
				defer inFlight.Add(-1)
				time.Sleep(time.Millisecond)
				return url, nil
			},
			CloseFn: func() error {
				if inFlight.Load() > 0 {
					closedDuringFetch.Store(true)
				}
				closes.Add(1)
				return nil
			},
		}
		_, extractor := site(map[string][]string{
			"http://a.test": {"http://b.test", "http://c.test", "http://d.test"},
		})
		c := &crawl.Crawler{
			Fetcher:    fetcher,
			Extractor:  extractor,
			MaxWorkers: 3,
		}

		_, err := c.Crawl(context.Background(), "http://a.test")

		require.NoError(t, err)
		assert.Equal(t, int32(1), closes.Load())
		assert.False(t, closedDuringFetch.Load())
	})

	t.Run("writes the partial graph when interrupted", func(t *testing.T) {
		t.Parallel()

		started := make(chan struct{})
		release := make(chan struct{})
		fetcher := &mock.Fetcher{
			FetchFn: func(_ context.Context, url string) (string, error) {
				if url == "http://hang.test" {
					close(started)
					<-release
				}
				return url, nil
			},
		}
		_, extractor := site(map[string][]string{
			"http://a.test":    {"http://hang.test"},
			"http://hang.test": {"http://late.test"},
		})
		var results []*scout.CrawlResult
		c := &crawl.Crawler{
			Fetcher:    fetcher,
			Extractor:  extractor,
			Output:     capture(&results),
			MaxWorkers: 2,
			MaxLinks:   10,
		}

		ctx, cancel := context.WithCancel(context.Background())
		type outcome struct {
			result *scout.CrawlResult
			err    error
		}
		done := make(chan outcome, 1)
		go func() {
			result, err := c.Crawl(ctx, "http://a.test")
			done <- outcome{result, err}
		}()

		<-started
		cancel()
		close(release)

		var out outcome
		select {
		case out = <-done:
		case <-time.After(5 * time.Second):
			t.Fatal("crawl did not stop after interrupt")
		}

		require.NoError(t, out.err)
		assert.True(t, out.result.Interrupted)
		require.Len(t, results, 1)
		assert.Equal(t, []scout.Edge{{Source: "a.test", Destination: "hang.test"}}, results[0].Edges)
	})

	t.Run("returns the output error after writing", func(t *testing.T) {
		t.Parallel()

		fetcher, extractor := site(nil)
		c := &crawl.Crawler{
			Fetcher:   fetcher,
			Extractor: extractor,
			Output: &mock.GraphWriter{
				WriteGraphFn: func(_ context.Context, _ *scout.CrawlResult) error {
					return scout.Errorf(scout.EINVALID, "read-only")
				},
			},
		}

		result, err := c.Crawl(context.Background(), "http://a.test")

		require.Error(t, err)
		assert.Equal(t, scout.EINVALID, scout.ErrorCode(err))
		assert.NotNil(t, result)
	})

	t.Run("reports progress for every fetched page", func(t *testing.T) {
		t.Parallel()

		fetcher, extractor := site(map[string][]string{
			"http://a.test": {"http://b.test"},
		})
		var mu sync.Mutex
		counts := make(map[crawl.ProgressType]int)
		c := &crawl.Crawler{
			Fetcher:   fetcher,
			Extractor: extractor,
			MaxLinks:  10,
			Progress: func(e crawl.ProgressEvent) {
				mu.Lock()
				defer mu.Unlock()
				counts[e.Type]++
				assert.Equal(t, 10, e.Total)
			},
		}

		_, err := c.Crawl(context.Background(), "http://a.test")

		require.NoError(t, err)
		assert.Equal(t, 2, counts[crawl.ProgressFetching])
		assert.Equal(t, 1, counts[crawl.ProgressLinkAdded])
		assert.Equal(t, 2, counts[crawl.ProgressDone])
	})
}

func TestState_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "seeding", crawl.StateSeeding.String())
	assert.Equal(t, "shutting down", crawl.StateShuttingDown.String())
	assert.Equal(t, "dumped", crawl.StateDumped.String())
	assert.Equal(t, "State(42)", crawl.State(42).String())
}
