package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/scout"
)

// Ensure LoggingGraphWriter implements scout.GraphWriter.
var _ scout.GraphWriter = (*LoggingGraphWriter)(nil)

// LoggingGraphWriter wraps a GraphWriter with logging.
type LoggingGraphWriter struct {
	next   scout.GraphWriter
	logger *slog.Logger
}

// NewLoggingGraphWriter creates a new LoggingGraphWriter.
func NewLoggingGraphWriter(next scout.GraphWriter, logger *slog.Logger) *LoggingGraphWriter {
	return &LoggingGraphWriter{next: next, logger: logger}
}

// WriteGraph delegates to the wrapped writer and logs the dump.
func (w *LoggingGraphWriter) WriteGraph(ctx context.Context, result *scout.CrawlResult) (err error) {
	defer func(begin time.Time) {
		w.logger.Info("write graph",
			"crawl", result.ID,
			"edges", len(result.Edges),
			"interrupted", result.Interrupted,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return w.next.WriteGraph(ctx, result)
}
