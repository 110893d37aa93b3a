// Package fs provides file-based storage for crawl graphs.
package fs

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/fwojciec/scout"
)

// Ensure GraphFile implements scout.GraphWriter at compile time.
var _ scout.GraphWriter = (*GraphFile)(nil)

// GraphFile writes a crawl's edges to a tab-separated text file, one
// "source\tdestination" pair per line. The file is written to a temporary
// sibling first and renamed into place, so readers never see a partial
// graph.
type GraphFile struct {
	path string
}

// NewGraphFile creates a GraphFile that writes to path.
func NewGraphFile(path string) *GraphFile {
	return &GraphFile{path: path}
}

func (f *GraphFile) tempPath() string {
	return f.path + ".tmp"
}

// WriteGraph replaces the file with the result's edges.
func (f *GraphFile) WriteGraph(ctx context.Context, result *scout.CrawlResult) error {
	if dir := filepath.Dir(f.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	tmp, err := os.Create(f.tempPath())
	if err != nil {
		return err
	}

	if err := scout.WriteEdges(tmp, result.Edges); err != nil {
		tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}

	if err := os.Rename(tmp.Name(), f.path); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return nil
}

// ReadEdges reads the edges of the last graph written to the file.
func (f *GraphFile) ReadEdges() ([]scout.Edge, error) {
	file, err := os.Open(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, scout.Errorf(scout.ENOTFOUND, "graph file %q not found", f.path)
	} else if err != nil {
		return nil, err
	}
	defer file.Close()

	return scout.ReadEdges(file)
}
