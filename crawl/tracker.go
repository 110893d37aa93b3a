package crawl

import (
	"sync"

	"github.com/fwojciec/scout"
	"github.com/fwojciec/scout/bloom"
)

// Visited set configuration.
const (
	// minExpectedURLs is the smallest number of URLs the visited set is sized for.
	minExpectedURLs = 10000
	// expectedURLsPerLink scales the visited set with the link budget, since
	// same-domain links are enqueued without consuming budget.
	expectedURLsPerLink = 100
)

// Tracker owns the state shared by all workers of a crawl: the domain
// graph, the visited set and the budget counters. Every check-then-mutate
// sequence runs under a single mutex, so discovering links is atomic with
// respect to other workers. It is safe for concurrent use.
//
// The visited set is a bloom filter: about one unseen URL in a million is
// taken for visited and skipped. No URL is ever enqueued twice.
type Tracker struct {
	mu             sync.Mutex
	frontier       scout.Frontier
	graph          *scout.Graph
	visited        *bloom.Filter
	linksRemaining int
	hits           int
}

// NewTracker returns a Tracker that enqueues accepted links into frontier
// and accepts at most maxLinks budget-consuming links, seeds included.
func NewTracker(frontier scout.Frontier, maxLinks int) *Tracker {
	n := uint(max(maxLinks*expectedURLsPerLink, minExpectedURLs))
	return &Tracker{
		frontier:       frontier,
		graph:          scout.NewGraph(),
		visited:        bloom.NewFilter(n, bloom.DefaultFalsePositiveRate),
		linksRemaining: max(maxLinks, 0),
	}
}

// Seed enqueues each seed as a new-domain hit and charges it to the link
// budget. Seeds bypass validation and the budget gate, but a seed given
// twice is only enqueued once. Returns the seeds that were enqueued.
func (t *Tracker) Seed(seeds []string) []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	var enqueued []string
	for _, seed := range seeds {
		if t.visited.TestAndAdd(seed) {
			continue
		}
		t.frontier.Enqueue(scout.FrontierItem{URL: seed, NewDomainHit: true})
		if t.linksRemaining > 0 {
			t.linksRemaining--
		}
		enqueued = append(enqueued, seed)
	}
	return enqueued
}

// Accept classifies the links discovered on sourceURL. Each unseen, valid
// target is recorded in the graph and enqueued, and consumes budget when
// the graph counts the edge. Once the budget is spent the remaining
// targets are dropped. Returns the targets that were enqueued.
func (t *Tracker) Accept(sourceURL string, targets []string) []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	var enqueued []string
	for _, target := range targets {
		if t.visited.Test(target) {
			continue
		}
		if t.linksRemaining <= 0 {
			break
		}
		if !scout.IsValidLink(target) {
			continue
		}
		newHit := t.graph.RecordEdge(sourceURL, target)
		if newHit {
			t.linksRemaining--
		}
		t.frontier.Enqueue(scout.FrontierItem{URL: target, NewDomainHit: newHit})
		t.visited.Add(target)
		enqueued = append(enqueued, target)
	}
	return enqueued
}

// Hit counts a completed new-domain hit and returns the new total.
func (t *Tracker) Hit() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.hits++
	return t.hits
}

// Hits returns the number of completed new-domain hits.
func (t *Tracker) Hits() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.hits
}

// LinksRemaining returns the unspent link budget.
func (t *Tracker) LinksRemaining() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.linksRemaining
}

// Edges returns a snapshot of the graph's edges.
func (t *Tracker) Edges() []scout.Edge {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.graph.Edges()
}
