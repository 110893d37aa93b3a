package mock

import (
	"context"

	"github.com/fwojciec/scout"
)

var _ scout.GraphWriter = (*GraphWriter)(nil)

// GraphWriter is a mock implementation of scout.GraphWriter.
type GraphWriter struct {
	WriteGraphFn func(ctx context.Context, result *scout.CrawlResult) error
}

func (w *GraphWriter) WriteGraph(ctx context.Context, result *scout.CrawlResult) error {
	return w.WriteGraphFn(ctx, result)
}
