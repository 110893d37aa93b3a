package scout

import "context"

// Fetcher retrieves page bodies from URLs.
// A single Fetcher is shared by every crawl worker.
type Fetcher interface {
	// Fetch requests the URL and returns the response body.
	// Implementations bound every request with their own timeout and
	// report it as ETIMEOUT; other transport failures are ETRANSPORT.
	Fetch(ctx context.Context, url string) (body string, err error)

	// Close releases the underlying transport session.
	// Must not be called while a Fetch may still be in flight.
	Close() error
}
