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

// BetStore implements domain.BetStore using PostgreSQL.
type BetStore struct {
	pool *pgxpool.Pool
}

var _ domain.BetStore = (*BetStore)(nil)

// NewBetStore creates a new BetStore backed by the given connection pool.
func NewBetStore(pool *pgxpool.Pool) *BetStore {
	return &BetStore{pool: pool}
}

// Create inserts a new placed-bet audit row.
func (s *BetStore) Create(ctx context.Context, b domain.PlacedBet) error {
	const query = `
		INSERT INTO placed_bets (
			record_id, bet_id, contract_id, outcome, amount, limit_prob,
			shares, prob_before, prob_after, status, status_code,
			placed_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10, $11,
			$12, $13
		)`
	_, err := s.pool.Exec(ctx, query,
		b.RecordID, b.BetID, b.ContractID, b.Outcome, b.Amount, b.LimitProb,
		b.Shares, b.ProbBefore, b.ProbAfter, string(b.Status), b.StatusCode,
		b.PlacedAt, b.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: create placed bet %s: %w", b.RecordID, err)
	}
	return nil
}

// UpdateStatus records the API's verdict on a previously created bet.
func (s *BetStore) UpdateStatus(ctx context.Context, recordID string, status domain.BetStatus, betID string, statusCode int) error {
	const query = `
		UPDATE placed_bets
		SET status = $2, bet_id = $3, status_code = $4, updated_at = NOW()
		WHERE record_id = $1`
	tag, err := s.pool.Exec(ctx, query, recordID, string(status), betID, statusCode)
	if err != nil {
		return fmt.Errorf("postgres: update bet %s status: %w", recordID, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

const betCols = `record_id, bet_id, contract_id, outcome, amount, limit_prob,
	shares, prob_before, prob_after, status, status_code, placed_at, updated_at`

func scanBet(row pgx.Row) (domain.PlacedBet, error) {
	var b domain.PlacedBet
	var status string
	err := row.Scan(
		&b.RecordID, &b.BetID, &b.ContractID, &b.Outcome, &b.Amount, &b.LimitProb,
		&b.Shares, &b.ProbBefore, &b.ProbAfter, &status, &b.StatusCode,
		&b.PlacedAt, &b.UpdatedAt,
	)
	if err != nil {
		return domain.PlacedBet{}, err
	}
	b.Status = domain.BetStatus(status)
	return b, nil
}

// GetByRecordID retrieves a placed bet by its local record ID.
func (s *BetStore) GetByRecordID(ctx context.Context, recordID string) (domain.PlacedBet, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+betCols+` FROM placed_bets WHERE record_id = $1`, recordID)
	b, err := scanBet(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.PlacedBet{}, domain.ErrNotFound
		}
		return domain.PlacedBet{}, fmt.Errorf("postgres: get placed bet %s: %w", recordID, err)
	}
	return b, nil
}

// ListByContract returns bets placed on a single market.
func (s *BetStore) ListByContract(ctx context.Context, contractID string, opts domain.ListOpts) ([]domain.PlacedBet, error) {
	query := `SELECT ` + betCols + ` FROM placed_bets WHERE contract_id = $1`
	args := []any{contractID}
	argIdx := 2

	if opts.Since != nil {
		query += fmt.Sprintf(" AND placed_at >= $%d", argIdx)
		args = append(args, *opts.Since)
		argIdx++
	}

	query += " ORDER BY placed_at DESC"

	if opts.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIdx)
		args = append(args, opts.Limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: list bets for %s: %w", contractID, err)
	}
	defer rows.Close()

	return collectBets(rows)
}

// ListRecent returns the most recently placed bets across all markets.
func (s *BetStore) ListRecent(ctx context.Context, limit int) ([]domain.PlacedBet, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+betCols+` FROM placed_bets ORDER BY placed_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: list recent bets: %w", err)
	}
	defer rows.Close()

	return collectBets(rows)
}

// ListBefore returns bets placed strictly before the cutoff, oldest first.
// The archiver uses this to select aged rows for cold storage.
func (s *BetStore) ListBefore(ctx context.Context, before time.Time) ([]domain.PlacedBet, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+betCols+` FROM placed_bets WHERE placed_at < $1 ORDER BY placed_at`, before)
	if err != nil {
		return nil, fmt.Errorf("postgres: list bets before %s: %w", before, err)
	}
	defer rows.Close()

	return collectBets(rows)
}

func collectBets(rows pgx.Rows) ([]domain.PlacedBet, error) {
	var bets []domain.PlacedBet
	for rows.Next() {
		b, err := scanBet(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan placed bet: %w", err)
		}
		bets = append(bets, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: placed bet rows: %w", err)
	}
	return bets, nil
}
