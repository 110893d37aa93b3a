package mock

import (
	"context"

	"github.com/fwojciec/scout"
)

var _ scout.Frontier = (*Frontier)(nil)

// Frontier is a mock implementation of scout.Frontier.
type Frontier struct {
	EnqueueFn       func(item scout.FrontierItem)
	DequeueFn       func(ctx context.Context) (scout.FrontierItem, error)
	MarkProcessedFn func()
	WaitFn          func(ctx context.Context) error
}

func (f *Frontier) Enqueue(item scout.FrontierItem) {
	f.EnqueueFn(item)
}

func (f *Frontier) Dequeue(ctx context.Context) (scout.FrontierItem, error) {
	return f.DequeueFn(ctx)
}

func (f *Frontier) MarkProcessed() {
	f.MarkProcessedFn()
}

func (f *Frontier) Wait(ctx context.Context) error {
	return f.WaitFn(ctx)
}
