package domain

import (
	"context"
	"time"
)

// ListOpts provides pagination and filtering for list queries.
type ListOpts struct {
	Limit  int
	Offset int
	Since  *time.Time
	Until  *time.Time
}

// MarketStore persists market metadata.
type MarketStore interface {
	Upsert(ctx context.Context, market Market) error
	UpsertBatch(ctx context.Context, markets []Market) error
	GetByID(ctx context.Context, id string) (Market, error)
	GetBySlug(ctx context.Context, slug string) (Market, error)
	ListOpen(ctx context.Context, opts ListOpts) ([]Market, error)
	Count(ctx context.Context) (int64, error)
}

// BetStore persists the audit trail of bets placed through the bot.
type BetStore interface {
	Create(ctx context.Context, bet PlacedBet) error
	UpdateStatus(ctx context.Context, recordID string, status BetStatus, betID string, statusCode int) error
	GetByRecordID(ctx context.Context, recordID string) (PlacedBet, error)
	ListByContract(ctx context.Context, contractID string, opts ListOpts) ([]PlacedBet, error)
	ListRecent(ctx context.Context, limit int) ([]PlacedBet, error)
}

// ScrapeRunStore persists scraper run history.
type ScrapeRunStore interface {
	Create(ctx context.Context, run ScrapeRun) error
	Finish(ctx context.Context, run ScrapeRun) error
	GetByID(ctx context.Context, id string) (ScrapeRun, error)
	ListRecent(ctx context.Context, limit int) ([]ScrapeRun, error)
	ListBefore(ctx context.Context, before time.Time, status ScrapeStatus) ([]ScrapeRun, error)
	MarkArchived(ctx context.Context, id string) error
}

// AuditEntry is a single audit log row.
type AuditEntry struct {
	ID        int64
	Event     string
	Detail    map[string]any
	CreatedAt time.Time
}

// AuditStore persists an append-only audit log.
type AuditStore interface {
	Log(ctx context.Context, event string, detail map[string]any) error
	List(ctx context.Context, opts ListOpts) ([]AuditEntry, error)
}
