package sqlite

import (
	"context"
	"database/sql"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/scout"
)

// Compile-time interface verification.
var _ scout.GraphWriter = (*GraphService)(nil)

// GraphService stores crawl results and their edges in SQLite.
type GraphService struct {
	db *DB
}

// NewGraphService creates a new GraphService.
func NewGraphService(db *DB) *GraphService {
	return &GraphService{db: db}
}

// WriteGraph stores the crawl and its edges in a single transaction.
// Writing a result with an existing ID replaces the earlier one.
func (s *GraphService) WriteGraph(ctx context.Context, result *scout.CrawlResult) error {
	if err := result.Validate(); err != nil {
		return err
	}

	hash := GraphHash(result.Edges)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	// Cascades to the crawl's edges.
	if _, err := tx.ExecContext(ctx, "DELETE FROM crawls WHERE id = ?", result.ID); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO crawls (id, seeds, max_links, max_workers, hits, links_remaining, interrupted, graph_hash, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, result.ID, joinSeeds(result.Seeds), result.MaxLinks, result.MaxWorkers, result.Hits,
		result.LinksRemaining, result.Interrupted, hash,
		result.StartedAt.UTC().Format(timeFormat), result.FinishedAt.UTC().Format(timeFormat))
	if err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO edges (crawl_id, position, source, destination)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, e := range result.Edges {
		if _, err := stmt.ExecContext(ctx, result.ID, i, e.Source, e.Destination); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// FindCrawlByID retrieves a stored crawl, edges included.
func (s *GraphService) FindCrawlByID(ctx context.Context, id string) (*scout.CrawlResult, error) {
	var result scout.CrawlResult
	var seeds, startedAt, finishedAt string

	err := s.db.QueryRowContext(ctx, `
		SELECT id, seeds, max_links, max_workers, hits, links_remaining, interrupted, started_at, finished_at
		FROM crawls
		WHERE id = ?
	`, id).Scan(&result.ID, &seeds, &result.MaxLinks, &result.MaxWorkers, &result.Hits,
		&result.LinksRemaining, &result.Interrupted, &startedAt, &finishedAt)

	if err == sql.ErrNoRows {
		return nil, scout.Errorf(scout.ENOTFOUND, "crawl not found")
	}
	if err != nil {
		return nil, err
	}

	result.Seeds = splitSeeds(seeds)
	if result.StartedAt, err = parseTime(startedAt, "started_at"); err != nil {
		return nil, err
	}
	if result.FinishedAt, err = parseTime(finishedAt, "finished_at"); err != nil {
		return nil, err
	}

	if result.Edges, err = s.FindEdges(ctx, id); err != nil {
		return nil, err
	}
	return &result, nil
}

// FindEdges returns a crawl's edges in the order they were discovered.
func (s *GraphService) FindEdges(ctx context.Context, crawlID string) ([]scout.Edge, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT source, destination
		FROM edges
		WHERE crawl_id = ?
		ORDER BY position
	`, crawlID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var edges []scout.Edge
	for rows.Next() {
		var e scout.Edge
		if err := rows.Scan(&e.Source, &e.Destination); err != nil {
			return nil, err
		}
		edges = append(edges, e)
	}
	return edges, rows.Err()
}

// GraphHash returns the content hash of edges in their text dump form,
// so a stored crawl can be matched against an output file.
func GraphHash(edges []scout.Edge) string {
	d := xxhash.New()
	_ = scout.WriteEdges(d, edges)
	return strconv.FormatUint(d.Sum64(), 16)
}
