package main

import (
	"time"

	"github.com/fwojciec/scout"
)

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Workers int           `short:"w" default:"10" help:"Number of concurrent fetch workers"`
	Links   int           `short:"l" default:"100" help:"Number of unique domain links to follow"`
	Output  string        `short:"o" default:"output.txt" help:"Output file for the domain graph"`
	Timeout time.Duration `short:"t" default:"7s" help:"Fetch timeout per page"`
	Log     string        `default:"scout.log" env:"SCOUT_LOG" help:"Diagnostic log file (empty disables logging)"`
	DB      string        `name:"db" env:"SCOUT_DB" help:"Also store the crawl in this SQLite database"`
	Verbose bool          `short:"v" help:"Log every fetch"`
	Seeds   []string      `arg:"" optional:"" help:"Seed URLs (default: built-in list of popular sites)"`
}

// Validate checks flag values kong cannot check on its own.
func (c *CLI) Validate() error {
	if c.Workers < 1 {
		return scout.Errorf(scout.EINVALID, "workers must be at least 1")
	}
	if c.Links < 1 {
		return scout.Errorf(scout.EINVALID, "links must be at least 1")
	}
	if c.Timeout <= 0 {
		return scout.Errorf(scout.EINVALID, "timeout must be positive")
	}
	return nil
}

// SeedURLs returns the seeds given on the command line, or the default
// seeds if none were given.
func (c *CLI) SeedURLs() []string {
	if len(c.Seeds) > 0 {
		return c.Seeds
	}
	return append([]string(nil), DefaultSeeds...)
}

// DefaultSeeds is the seed list used when none is given.
var DefaultSeeds = []string{
	"http://www.cnn.com",
	"http://www.washingtonpost.com",
	"http://www.cbs.com",
	"http://reddit.com",
	"http://buzzfeed.com",
	"http://lolcats.com",
	"http://espn.com",
	"http://att.yahoo.com",
	"http://yahoo.com",
	"http://vox.com",
	"http://nytimes.com",
	"http://wikipedia.org",
	"http://wsj.com",
	"http://usatoday.com",
	"http://fox.com",
	"http://youtube.com",
	"http://linkedin.com",
	"http://msn.com",
	"http://imdb.com",
	"http://stackoverflow.com",
	"http://wikia.com",
}
