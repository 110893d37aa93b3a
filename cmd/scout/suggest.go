package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"time"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/scout"
	"github.com/fwojciec/scout/fs"
	"github.com/fwojciec/scout/sqlite"
)

// SuggestCLI defines the flags of the suggest command.
type SuggestCLI struct {
	Input  string `short:"i" default:"output.txt" help:"Domain graph written by a crawl"`
	DB     string `name:"db" env:"SCOUT_DB" help:"SQLite database holding stored crawls"`
	Crawl  string `help:"ID of a stored crawl to read from --db instead of --input"`
	BFS    string `name:"bfs" short:"b" placeholder:"ADDR" help:"Suggest by breadth-first search from ADDR"`
	Levels int    `short:"n" default:"5" help:"Number of levels to traverse for breadth-first search"`
	Walk   string `short:"r" placeholder:"ADDR" help:"Suggest by random walk from ADDR"`
	Steps  int    `short:"s" default:"100" help:"Number of steps to take when random walking"`
	Top    int    `default:"5" help:"Number of suggestions to print"`
	Seed   uint64 `help:"Random walk seed (0 picks one)"`
}

// Validate checks flag combinations kong cannot check on its own.
func (c *SuggestCLI) Validate() error {
	if c.BFS == "" && c.Walk == "" {
		return scout.Errorf(scout.EINVALID, "one of --bfs or --walk is required")
	}
	if c.Levels < 0 {
		return scout.Errorf(scout.EINVALID, "levels must not be negative")
	}
	if c.Steps < 0 {
		return scout.Errorf(scout.EINVALID, "steps must not be negative")
	}
	if c.Top < 1 {
		return scout.Errorf(scout.EINVALID, "top must be at least 1")
	}
	if c.Crawl != "" && c.DB == "" {
		return scout.Errorf(scout.EINVALID, "--crawl requires --db")
	}
	return nil
}

// RunSuggest executes the suggest command, ranking the domains most
// reachable from a start domain in a crawled graph.
func (m *Main) RunSuggest(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cli := &SuggestCLI{}
	parser, err := kong.New(cli,
		kong.Name("scout suggest"),
		kong.Description("Suggest related sites from a crawled domain graph"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if wantsHelp(args) {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	if _, err := parser.Parse(args); err != nil {
		var perr *kong.ParseError
		if errors.As(err, &perr) {
			_ = perr.Context.PrintUsage(false)
		}
		return err
	}
	if err := cli.Validate(); err != nil {
		return err
	}

	edges, err := loadEdges(ctx, cli, stderr)
	if err != nil {
		return err
	}
	graph := scout.NewLinkGraph(edges)

	if cli.BFS != "" {
		start := scout.NormalizeDomain(cli.BFS)
		visits, err := graph.BreadthFirst(start, cli.Levels)
		if err != nil {
			return err
		}
		printSuggestions(stdout, scout.TopSuggestions(visits, start, cli.Top))
	}

	if cli.Walk != "" {
		seed := cli.Seed
		if seed == 0 {
			seed = uint64(time.Now().UnixNano())
		}
		start := scout.NormalizeDomain(cli.Walk)
		visits, err := graph.RandomWalk(start, cli.Steps, rand.New(rand.NewPCG(seed, seed)))
		if err != nil {
			return err
		}
		printSuggestions(stdout, scout.TopSuggestions(visits, start, cli.Top))
	}
	return nil
}

// loadEdges reads the graph from a stored crawl if one is named, otherwise
// from the graph file.
func loadEdges(ctx context.Context, cli *SuggestCLI, stderr io.Writer) ([]scout.Edge, error) {
	if cli.Crawl == "" {
		return fs.NewGraphFile(cli.Input).ReadEdges()
	}

	db := sqlite.NewDB(cli.DB)
	if err := db.Open(); err != nil {
		fmt.Fprintf(stderr, "Hint: Set SCOUT_DB to use a different database path\n")
		return nil, fmt.Errorf("failed to open database at %q: %w", cli.DB, err)
	}
	defer db.Close()

	result, err := sqlite.NewGraphService(db).FindCrawlByID(ctx, cli.Crawl)
	if err != nil {
		return nil, err
	}
	return result.Edges, nil
}

func printSuggestions(w io.Writer, suggestions []scout.Suggestion) {
	fmt.Fprintln(w, "Suggested Sites:")
	for _, s := range suggestions {
		fmt.Fprintln(w, s.Domain)
	}
}
