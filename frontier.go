package scout

import "context"

// FrontierItem is a URL waiting to be fetched.
type FrontierItem struct {
	URL string

	// NewDomainHit is true when the URL consumed link budget when it was
	// discovered. Seeds always count.
	NewDomainHit bool
}

// Frontier is the shared work queue of a crawl.
type Frontier interface {
	// Enqueue adds an item without blocking.
	Enqueue(item FrontierItem)

	// Dequeue blocks until an item is available.
	// Returns an error only if the context is canceled.
	Dequeue(ctx context.Context) (FrontierItem, error)

	// MarkProcessed records that a dequeued item, and everything it
	// enqueued, has been fully handled.
	MarkProcessed()

	// Wait blocks until every enqueued item has been marked processed.
	// Returns an error if the context is canceled first.
	Wait(ctx context.Context) error
}
