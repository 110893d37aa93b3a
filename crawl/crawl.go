// Package crawl provides the crawl engine: a shared frontier queue, a fixed
// pool of fetch workers, link-budget accounting, and the coordinator that
// detects when the crawl has drained and hands the graph to its output.
package crawl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/fwojciec/scout"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Crawl defaults.
const (
	DefaultMaxWorkers = 10
	DefaultMaxLinks   = 100
)

// State is a phase of the crawl lifecycle.
type State int

const (
	StateSeeding State = iota
	StateRunning
	StateDraining
	StateShuttingDown
	StateDumped
)

func (s State) String() string {
	switch s {
	case StateSeeding:
		return "seeding"
	case StateRunning:
		return "running"
	case StateDraining:
		return "draining"
	case StateShuttingDown:
		return "shutting down"
	case StateDumped:
		return "dumped"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// ProgressEvent reports progress during a crawl.
type ProgressEvent struct {
	Type  ProgressType
	URL   string
	Hits  int
	Total int
	Error error
}

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	ProgressFetching ProgressType = iota
	ProgressLinkAdded
	ProgressFailed
	ProgressDone
)

// ProgressFunc is a callback for reporting crawl progress.
// It is called concurrently from every worker.
type ProgressFunc func(event ProgressEvent)

// Crawler coordinates a crawl: it seeds the frontier, runs the worker
// pool until the frontier drains or ctx is canceled, and writes the
// resulting graph to Output.
type Crawler struct {
	Fetcher    scout.Fetcher
	Extractor  scout.LinkExtractor
	Output     scout.GraphWriter
	Logger     *slog.Logger
	Progress   ProgressFunc
	MaxWorkers int
	MaxLinks   int
}

// Crawl runs a crawl from the given seeds.
//
// The crawl ends when every enqueued URL has been processed, or when ctx
// is canceled. Cancellation is not an error: the graph discovered so far
// is still written and the result is marked Interrupted. Workers blocked
// on the frontier stop immediately; workers mid-fetch finish their
// request first. The Fetcher is closed once all workers have stopped.
//
// Output receives the result exactly once on every path that got past
// seeding; its error is returned.
func (c *Crawler) Crawl(ctx context.Context, seeds ...string) (result *scout.CrawlResult, err error) {
	if len(seeds) == 0 {
		return nil, scout.Errorf(scout.EINVALID, "at least one seed URL required")
	}

	maxWorkers := c.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = DefaultMaxWorkers
	}
	maxLinks := c.MaxLinks
	if maxLinks <= 0 {
		maxLinks = DefaultMaxLinks
	}
	logger := c.logger()

	queue := NewQueue()
	tracker := NewTracker(queue, maxLinks)
	result = &scout.CrawlResult{
		ID:         uuid.New().String(),
		MaxLinks:   maxLinks,
		MaxWorkers: maxWorkers,
		StartedAt:  time.Now().UTC(),
	}

	defer func() {
		result.Hits = tracker.Hits()
		result.LinksRemaining = tracker.LinksRemaining()
		result.Edges = tracker.Edges()
		result.FinishedAt = time.Now().UTC()
		if werr := c.dump(context.WithoutCancel(ctx), result); werr != nil {
			err = errors.Join(err, fmt.Errorf("write graph: %w", werr))
		}
		logger.Info("crawl state", "state", StateDumped, "edges", len(result.Edges))
	}()

	logger.Info("crawl state", "state", StateSeeding, "seeds", len(seeds))
	result.Seeds = tracker.Seed(seeds)

	logger.Info("crawl state", "state", StateRunning, "workers", maxWorkers)
	workerCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(workerCtx)
	for range maxWorkers {
		w := &Worker{
			Frontier:  queue,
			Fetcher:   c.Fetcher,
			Extractor: c.Extractor,
			Tracker:   tracker,
			Logger:    logger,
			Progress:  c.Progress,
			Total:     maxLinks,
		}
		g.Go(func() error {
			w.Run(gctx)
			return nil
		})
	}

	logger.Info("crawl state", "state", StateDraining)
	if werr := queue.Wait(ctx); werr != nil {
		result.Interrupted = true
		logger.Info("crawl state", "state", StateShuttingDown, "pending", queue.Unfinished())
	}

	cancel()
	_ = g.Wait()
	if cerr := c.Fetcher.Close(); cerr != nil {
		logger.Warn("close fetcher", "err", cerr)
	}
	return result, nil
}

func (c *Crawler) dump(ctx context.Context, result *scout.CrawlResult) error {
	if c.Output == nil {
		return nil
	}
	return c.Output.WriteGraph(ctx, result)
}

func (c *Crawler) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return c.Logger
}
