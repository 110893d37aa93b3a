package crawl

import (
	"context"
	"log/slog"

	"github.com/fwojciec/scout"
)

// Worker repeatedly takes an item from the frontier, fetches it, hands
// the links it finds to the tracker and marks the item processed.
// Failures are logged and contained: no single page can stop a worker.
type Worker struct {
	Frontier  scout.Frontier
	Fetcher   scout.Fetcher
	Extractor scout.LinkExtractor
	Tracker   *Tracker
	Logger    *slog.Logger
	Progress  ProgressFunc

	// Total is the link budget, reported in progress events.
	Total int
}

// Run processes frontier items until ctx is canceled.
func (w *Worker) Run(ctx context.Context) {
	for {
		item, err := w.Frontier.Dequeue(ctx)
		if err != nil {
			return
		}
		w.Visit(ctx, item)
		w.Frontier.MarkProcessed()
	}
}

// Visit fetches one item and accepts its links into the crawl.
// The fetch itself is detached from ctx so that an in-flight request
// finishes or times out on its own; if ctx is canceled by then, the
// discovered links are dropped.
func (w *Worker) Visit(ctx context.Context, item scout.FrontierItem) {
	w.report(ProgressEvent{Type: ProgressFetching, URL: item.URL})

	links, err := w.links(context.WithoutCancel(ctx), item.URL)
	if err != nil {
		w.fail(item.URL, err)
	} else if ctx.Err() == nil {
		for _, link := range w.Tracker.Accept(item.URL, links) {
			w.report(ProgressEvent{Type: ProgressLinkAdded, URL: link})
		}
	}

	if item.NewDomainHit {
		w.Tracker.Hit()
	}
	w.report(ProgressEvent{Type: ProgressDone, URL: item.URL})
}

func (w *Worker) links(ctx context.Context, url string) ([]string, error) {
	body, err := w.Fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	return w.Extractor.ExtractLinks(body)
}

// fail logs a per-URL failure by kind.
func (w *Worker) fail(url string, err error) {
	logger := w.logger()
	switch scout.ErrorCode(err) {
	case scout.ETIMEOUT:
		logger.Warn("timed out", "url", url)
	case scout.ETRANSPORT:
		logger.Warn("fetch failed", "url", url, "err", scout.ErrorMessage(err))
	case scout.EPARSE:
		logger.Warn("parse failed", "url", url, "err", scout.ErrorMessage(err))
	default:
		logger.Error("unexpected error", "url", url, "err", err)
	}
	w.report(ProgressEvent{Type: ProgressFailed, URL: url, Error: err})
}

func (w *Worker) report(event ProgressEvent) {
	if w.Progress == nil {
		return
	}
	event.Hits = w.Tracker.Hits()
	event.Total = w.Total
	w.Progress(event)
}

func (w *Worker) logger() *slog.Logger {
	if w.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return w.Logger
}
