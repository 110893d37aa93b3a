package scout

import (
	"cmp"
	"math"
	"math/rand/v2"
	"slices"
)

// DefaultSuggestions is how many sites a suggestion run reports.
const DefaultSuggestions = 5

// Suggestion is a domain reached from a starting domain and how often it
// was reached.
type Suggestion struct {
	Domain string `json:"domain"`
	Visits int    `json:"visits"`
}

// LinkGraph is a read-only view of a finished crawl's graph for walking.
// Every destination is a node, even if the crawl never recorded links out
// of it. Duplicate edges are kept and weigh their destination accordingly.
type LinkGraph struct {
	adj map[string][]string
}

// NewLinkGraph builds a LinkGraph from dumped edges.
func NewLinkGraph(edges []Edge) *LinkGraph {
	adj := make(map[string][]string)
	for _, e := range edges {
		adj[e.Source] = append(adj[e.Source], e.Destination)
		if _, ok := adj[e.Destination]; !ok {
			adj[e.Destination] = nil
		}
	}
	return &LinkGraph{adj: adj}
}

// Has reports whether domain is a node of the graph.
func (g *LinkGraph) Has(domain string) bool {
	_, ok := g.adj[domain]
	return ok
}

// BreadthFirst counts, for every domain within levels links of start, the
// number of link paths of at most levels steps that lead to it. start
// itself is counted at level zero.
func (g *LinkGraph) BreadthFirst(start string, levels int) (map[string]int, error) {
	if levels < 0 {
		return nil, Errorf(EINVALID, "levels must not be negative")
	}
	if !g.Has(start) {
		return nil, Errorf(ENOTFOUND, "domain %q not in graph", start)
	}

	visits := map[string]int{start: 1}
	level := map[string]int{start: 1}
	for range levels {
		next := make(map[string]int)
		for src, paths := range level {
			for _, dest := range g.adj[src] {
				next[dest] = addSaturating(next[dest], paths)
			}
		}
		if len(next) == 0 {
			break
		}
		for domain, paths := range next {
			visits[domain] = addSaturating(visits[domain], paths)
		}
		level = next
	}
	return visits, nil
}

// RandomWalk follows steps random links from start and counts how often
// each domain is entered. A domain without outgoing links sends the walk
// back where it came from. Staying in place is not counted.
func (g *LinkGraph) RandomWalk(start string, steps int, rnd *rand.Rand) (map[string]int, error) {
	if steps < 0 {
		return nil, Errorf(EINVALID, "steps must not be negative")
	}
	if !g.Has(start) {
		return nil, Errorf(ENOTFOUND, "domain %q not in graph", start)
	}
	pick := rand.IntN
	if rnd != nil {
		pick = rnd.IntN
	}

	visits := make(map[string]int)
	current, previous := start, start
	for range steps {
		next := previous
		if dests := g.adj[current]; len(dests) > 0 {
			next = dests[pick(len(dests))]
		}
		if next != current {
			visits[next]++
		}
		previous, current = current, next
	}
	return visits, nil
}

// TopSuggestions returns the n most visited domains other than exclude,
// most visited first and ties in name order. n <= 0 returns all of them.
func TopSuggestions(visits map[string]int, exclude string, n int) []Suggestion {
	suggestions := make([]Suggestion, 0, len(visits))
	for domain, count := range visits {
		if domain == exclude {
			continue
		}
		suggestions = append(suggestions, Suggestion{Domain: domain, Visits: count})
	}
	slices.SortFunc(suggestions, func(a, b Suggestion) int {
		if c := cmp.Compare(b.Visits, a.Visits); c != 0 {
			return c
		}
		return cmp.Compare(a.Domain, b.Domain)
	})
	if n > 0 && len(suggestions) > n {
		suggestions = suggestions[:n]
	}
	return suggestions
}

func addSaturating(a, b int) int {
	if a > math.MaxInt-b {
		return math.MaxInt
	}
	return a + b
}
