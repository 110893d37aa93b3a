package crawl

import (
	"context"
	"sync"

	"github.com/fwojciec/scout"
)

// Compile-time interface verification.
var _ scout.Frontier = (*Queue)(nil)

// Queue is an unbounded FIFO of frontier items that tracks how many
// enqueued items are still unfinished. It is safe for concurrent use by
// multiple goroutines.
//
// An item stays unfinished from Enqueue until the matching MarkProcessed.
// Workers enqueue what they discover before marking the page they were
// working on, so the unfinished count only reaches zero once the queue is
// empty and no worker is mid-fetch.
type Queue struct {
	mu         sync.Mutex
	items      []scout.FrontierItem
	unfinished int

	// ready holds a wakeup for one blocked Dequeue.
	ready chan struct{}
	// drained is closed whenever unfinished drops to zero.
	drained chan struct{}
}

// NewQueue returns an empty Queue.
func NewQueue() *Queue {
	drained := make(chan struct{})
	close(drained)
	return &Queue{
		ready:   make(chan struct{}, 1),
		drained: drained,
	}
}

// Enqueue appends an item to the queue. It never blocks.
func (q *Queue) Enqueue(item scout.FrontierItem) {
	q.mu.Lock()
	q.items = append(q.items, item)
	if q.unfinished == 0 {
		q.drained = make(chan struct{})
	}
	q.unfinished++
	q.mu.Unlock()

	q.wake()
}

// Dequeue removes and returns the oldest item, blocking until one is
// available. Returns an error only if ctx is canceled first.
func (q *Queue) Dequeue(ctx context.Context) (scout.FrontierItem, error) {
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			item := q.items[0]
			q.items[0] = scout.FrontierItem{}
			q.items = q.items[1:]
			more := len(q.items) > 0
			q.mu.Unlock()

			// Pass the wakeup on so another blocked worker sees the rest.
			if more {
				q.wake()
			}
			return item, nil
		}
		q.mu.Unlock()

		select {
		case <-ctx.Done():
			return scout.FrontierItem{}, ctx.Err()
		case <-q.ready:
		}
	}
}

// MarkProcessed marks one dequeued item as fully handled.
// It panics if called more times than items were enqueued.
func (q *Queue) MarkProcessed() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.unfinished <= 0 {
		panic("crawl: MarkProcessed called more times than Enqueue")
	}
	q.unfinished--
	if q.unfinished == 0 {
		close(q.drained)
	}
}

// Wait blocks until every enqueued item has been marked processed.
// Returns immediately if nothing is unfinished, and returns ctx.Err()
// if ctx is canceled first. A canceled ctx takes precedence.
func (q *Queue) Wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	q.mu.Lock()
	drained := q.drained
	q.mu.Unlock()

	select {
	case <-drained:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Len returns the number of items waiting to be dequeued.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Unfinished returns the number of enqueued items not yet marked processed.
func (q *Queue) Unfinished() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.unfinished
}

func (q *Queue) wake() {
	select {
	case q.ready <- struct{}{}:
	default:
	}
}
