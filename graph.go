package scout

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"
	"time"
)

// Edge is a link from one domain to another.
type Edge struct {
	Source      string `json:"source"`
	Destination string `json:"destination"`
}

// Graph records links between domains as an edge list grouped by source.
// Sources and destinations keep their insertion order and duplicate
// destinations are kept, so the graph doubles as a log of discovered links.
//
// Graph is not safe for concurrent use.
type Graph struct {
	order []string
	adj   map[string][]string
}

// NewGraph returns an empty Graph.
func NewGraph() *Graph {
	return &Graph{adj: make(map[string][]string)}
}

// RecordEdge adds an edge from the domain of sourceURL to the domain of
// destURL and reports whether the edge counts against the link budget.
//
// Links within a single domain are never recorded and never count.
// The first link out of a source domain creates that source; every
// later cross-domain link is appended, even if the same destination
// was seen before.
func (g *Graph) RecordEdge(sourceURL, destURL string) bool {
	src, dest := DomainOf(sourceURL), DomainOf(destURL)
	if src == dest {
		return false
	}
	if _, ok := g.adj[src]; !ok {
		g.order = append(g.order, src)
	}
	g.adj[src] = append(g.adj[src], dest)
	return true
}

// Successors returns the destinations recorded for source, in insertion order.
func (g *Graph) Successors(source string) []string {
	return append([]string(nil), g.adj[source]...)
}

// Len returns the number of recorded edges.
func (g *Graph) Len() int {
	var n int
	for _, dests := range g.adj {
		n += len(dests)
	}
	return n
}

// Edges returns a copy of every edge, sources in insertion order and
// destinations in insertion order within each source.
func (g *Graph) Edges() []Edge {
	edges := make([]Edge, 0, g.Len())
	for _, src := range g.order {
		for _, dest := range g.adj[src] {
			edges = append(edges, Edge{Source: src, Destination: dest})
		}
	}
	return edges
}

// WriteEdges writes edges to w, one "source\tdestination" pair per line.
func WriteEdges(w io.Writer, edges []Edge) error {
	bw := bufio.NewWriter(w)
	for _, e := range edges {
		if _, err := bw.WriteString(e.Source + "\t" + e.Destination + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ReadEdges reads edges written by WriteEdges. Source and destination may
// be separated by any run of whitespace; blank lines are skipped.
func ReadEdges(r io.Reader) ([]Edge, error) {
	var edges []Edge
	scanner := bufio.NewScanner(r)
	for line := 1; scanner.Scan(); line++ {
		fields := strings.Fields(scanner.Text())
		switch len(fields) {
		case 0:
			continue
		case 2:
			edges = append(edges, Edge{Source: fields[0], Destination: fields[1]})
		default:
			return nil, Errorf(EINVALID, "line %d: expected source and destination", line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return edges, nil
}

// CrawlResult is the outcome of a single crawl, handed to a GraphWriter
// once the crawl has drained or been interrupted.
type CrawlResult struct {
	ID             string    `json:"id"`
	Seeds          []string  `json:"seeds"`
	MaxLinks       int       `json:"maxLinks"`
	MaxWorkers     int       `json:"maxWorkers"`
	Hits           int       `json:"hits"`
	LinksRemaining int       `json:"linksRemaining"`
	Interrupted    bool      `json:"interrupted"`
	StartedAt      time.Time `json:"startedAt"`
	FinishedAt     time.Time `json:"finishedAt"`
	Edges          []Edge    `json:"edges"`
}

// Validate returns an error if the result contains invalid fields.
func (r *CrawlResult) Validate() error {
	if r.ID == "" {
		return Errorf(EINVALID, "crawl ID required")
	}
	return nil
}

// GraphWriter persists the graph of a finished crawl.
type GraphWriter interface {
	WriteGraph(ctx context.Context, result *CrawlResult) error
}

// GraphWriters fans a result out to several writers. Every writer is
// called even if an earlier one fails.
type GraphWriters []GraphWriter

// WriteGraph calls WriteGraph on every writer and joins their errors.
func (ws GraphWriters) WriteGraph(ctx context.Context, result *CrawlResult) error {
	var errs []error
	for _, w := range ws {
		if err := w.WriteGraph(ctx, result); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
