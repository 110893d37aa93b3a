package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/scout"
	"github.com/fwojciec/scout/crawl"
	"github.com/fwojciec/scout/fs"
	"github.com/fwojciec/scout/goquery"
	scouthttp "github.com/fwojciec/scout/http"
	scoutslog "github.com/fwojciec/scout/slog"
	"github.com/fwojciec/scout/sqlite"
	"github.com/fwojciec/scout/term"
)

func main() {
	ctx, stop := interruptContext(context.Background())
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// interruptContext returns a context canceled by the first interrupt.
// Later interrupts get the default handling and kill the process.
func interruptContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt)
	context.AfterFunc(ctx, stop)
	return ctx, stop
}

// Main represents the program.
type Main struct {
	// IsTerminal reports whether the progress bar should be drawn to w.
	IsTerminal func(w io.Writer) bool

	// Width looks up the terminal width for the progress bar.
	Width func() (int, error)
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		IsTerminal: isTerminal,
		Width:      term.StdoutWidth,
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(f)
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) > 0 && args[0] == "suggest" {
		return m.RunSuggest(ctx, args[1:], stdout, stderr)
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("scout"),
		kong.Description("Crawl the web from a set of seed sites and record which domains link to which.\n\nRun \"scout suggest --help\" to rank related sites in a crawled graph."),
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

	logger, closeLog, err := openLogger(cli.Log, cli.Verbose)
	if err != nil {
		return err
	}
	defer closeLog()

	output := scout.GraphWriters{fs.NewGraphFile(cli.Output)}
	if cli.DB != "" {
		db := sqlite.NewDB(cli.DB)
		if err := db.Open(); err != nil {
			fmt.Fprintf(stderr, "Hint: Set SCOUT_DB to use a different database path\n")
			return fmt.Errorf("failed to open database at %q: %w", cli.DB, err)
		}
		defer db.Close()
		output = append(output, sqlite.NewGraphService(db))
	}

	var fetcher scout.Fetcher = scouthttp.NewFetcher(scouthttp.WithTimeout(cli.Timeout))
	if cli.Verbose {
		fetcher = scoutslog.NewLoggingFetcher(fetcher, logger)
	}

	crawler := &crawl.Crawler{
		Fetcher:    fetcher,
		Extractor:  goquery.NewLinkExtractor(),
		Output:     scoutslog.NewLoggingGraphWriter(output, logger),
		Logger:     logger,
		MaxWorkers: cli.Workers,
		MaxLinks:   cli.Links,
	}

	var bar *term.ProgressBar
	if m.IsTerminal != nil && m.IsTerminal(stdout) {
		bar = term.NewProgressBar(stdout, cli.Links,
			term.WithWidth(m.Width),
			term.WithLogger(logger),
		)
		crawler.Progress = func(event crawl.ProgressEvent) {
			bar.Update(event.Hits, progressSuffix(event))
		}
	}

	result, err := crawler.Crawl(ctx, cli.SeedURLs()...)
	if result != nil && bar != nil {
		bar.Finish(result.Hits)
	}
	if err != nil {
		return err
	}

	if result.Interrupted {
		fmt.Fprintln(stdout, "\nExiting gracefully")
	} else {
		fmt.Fprintln(stdout)
	}
	printSummary(stdout, cli, result)
	return nil
}

// wantsHelp reports whether args ask for usage.
func wantsHelp(args []string) bool {
	for _, arg := range args {
		switch arg {
		case "--":
			return false
		case "-h", "--help":
			return true
		}
	}
	return len(args) > 0 && args[0] == "help"
}

// openLogger returns a text logger appending to path, or a discarding
// logger if path is empty.
func openLogger(path string, verbose bool) (*slog.Logger, func(), error) {
	if path == "" {
		return slog.New(slog.DiscardHandler), func() {}, nil
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file %q: %w", path, err)
	}

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level}))
	return logger, func() { f.Close() }, nil
}

// progressSuffix describes a progress event for the progress bar.
func progressSuffix(event crawl.ProgressEvent) string {
	switch event.Type {
	case crawl.ProgressFetching:
		return "getting " + event.URL
	case crawl.ProgressLinkAdded:
		return "adding " + event.URL
	case crawl.ProgressFailed:
		if scout.ErrorCode(event.Error) == scout.ETIMEOUT {
			return "timed out " + event.URL
		}
		return "failed " + event.URL
	case crawl.ProgressDone:
		return "done with " + event.URL
	default:
		return ""
	}
}

func printSummary(w io.Writer, cli *CLI, result *scout.CrawlResult) {
	fmt.Fprintf(w, "Visited %d new domains, wrote %d edges to %s\n",
		result.Hits, len(result.Edges), cli.Output)
	if cli.DB != "" {
		fmt.Fprintf(w, "Stored crawl %s in %s\n", result.ID, cli.DB)
	}
}
