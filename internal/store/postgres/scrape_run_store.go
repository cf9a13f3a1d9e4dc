package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alanyoungcy/manifoldbot/internal/domain"
)

// ScrapeRunStore implements domain.ScrapeRunStore using PostgreSQL.
type ScrapeRunStore struct {
	pool *pgxpool.Pool
}

var _ domain.ScrapeRunStore = (*ScrapeRunStore)(nil)

// NewScrapeRunStore creates a new ScrapeRunStore backed by the given pool.
func NewScrapeRunStore(pool *pgxpool.Pool) *ScrapeRunStore {
	return &ScrapeRunStore{pool: pool}
}

// Create records the start of a scraper run.
func (s *ScrapeRunStore) Create(ctx context.Context, run domain.ScrapeRun) error {
	const query = `
		INSERT INTO scrape_runs (id, status, pages_fetched, markets_seen, error, started_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := s.pool.Exec(ctx, query,
		run.ID, string(run.Status), run.PagesFetched, run.MarketsSeen, run.Error, run.StartedAt)
	if err != nil {
		return fmt.Errorf("postgres: create scrape run %s: %w", run.ID, err)
	}
	return nil
}

// Finish records the final state of a scraper run.
func (s *ScrapeRunStore) Finish(ctx context.Context, run domain.ScrapeRun) error {
	const query = `
		UPDATE scrape_runs
		SET status = $2, pages_fetched = $3, markets_seen = $4, error = $5, finished_at = $6
		WHERE id = $1`
	tag, err := s.pool.Exec(ctx, query,
		run.ID, string(run.Status), run.PagesFetched, run.MarketsSeen, run.Error, run.FinishedAt)
	if err != nil {
		return fmt.Errorf("postgres: finish scrape run %s: %w", run.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

const runCols = `id, status, pages_fetched, markets_seen, error, started_at, finished_at`

func scanRun(row pgx.Row) (domain.ScrapeRun, error) {
	var run domain.ScrapeRun
	var status string
	err := row.Scan(
		&run.ID, &status, &run.PagesFetched, &run.MarketsSeen,
		&run.Error, &run.StartedAt, &run.FinishedAt,
	)
	if err != nil {
		return domain.ScrapeRun{}, err
	}
	run.Status = domain.ScrapeStatus(status)
	return run, nil
}

// GetByID retrieves a scrape run by ID.
func (s *ScrapeRunStore) GetByID(ctx context.Context, id string) (domain.ScrapeRun, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+runCols+` FROM scrape_runs WHERE id = $1`, id)
	run, err := scanRun(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ScrapeRun{}, domain.ErrNotFound
		}
		return domain.ScrapeRun{}, fmt.Errorf("postgres: get scrape run %s: %w", id, err)
	}
	return run, nil
}

// ListRecent returns the most recent runs, newest first.
func (s *ScrapeRunStore) ListRecent(ctx context.Context, limit int) ([]domain.ScrapeRun, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+runCols+` FROM scrape_runs ORDER BY started_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: list recent scrape runs: %w", err)
	}
	defer rows.Close()

	return collectRuns(rows)
}

// ListBefore returns runs in the given status that started before the cutoff.
// The archiver uses this to find aged runs to move to cold storage.
func (s *ScrapeRunStore) ListBefore(ctx context.Context, before time.Time, status domain.ScrapeStatus) ([]domain.ScrapeRun, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+runCols+` FROM scrape_runs WHERE started_at < $1 AND status = $2 ORDER BY started_at`,
		before, string(status))
	if err != nil {
		return nil, fmt.Errorf("postgres: list scrape runs before %s: %w", before, err)
	}
	defer rows.Close()

	return collectRuns(rows)
}

// MarkArchived flags a run as moved to cold storage.
func (s *ScrapeRunStore) MarkArchived(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE scrape_runs SET status = $2 WHERE id = $1`,
		id, string(domain.ScrapeStatusArchived))
	if err != nil {
		return fmt.Errorf("postgres: mark scrape run %s archived: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func collectRuns(rows pgx.Rows) ([]domain.ScrapeRun, error) {
	var runs []domain.ScrapeRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan scrape run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: scrape run rows: %w", err)
	}
	return runs, nil
}
