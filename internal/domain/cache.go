package domain

import (
	"context"
	"time"
)

// MarketCache provides fast market metadata lookups.
type MarketCache interface {
	Set(ctx context.Context, market Market) error
	SetBatch(ctx context.Context, markets []Market) error
	Get(ctx context.Context, id string) (Market, error)
	GetBySlug(ctx context.Context, slug string) (Market, error)
	Invalidate(ctx context.Context, id string) error
}

// RateLimiter provides distributed rate limiting.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
	Wait(ctx context.Context, key string) error
}

// LockManager provides distributed locking.
type LockManager interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (unlock func(), err error)
}

// Event bus channels.
const (
	ChannelMarketEvents = "events:market"
	ChannelBetEvents    = "events:bet"
	ChannelScrapeEvents = "events:scrape"
)

// EventBus fans realtime bot events out to interested consumers, such as the
// admin WebSocket hub. Payloads are opaque JSON.
type EventBus interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	// Subscribe returns a channel that emits payloads published to the given
	// channel. Glob-style patterns are accepted. The returned channel closes
	// when ctx is cancelled.
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
}
