// Package feed consumes the Manifold realtime broadcast stream and keeps the
// local market store and cache up to date between scrape runs.
package feed

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync/atomic"

	"github.com/alanyoungcy/manifoldbot/internal/domain"
	"github.com/alanyoungcy/manifoldbot/internal/platform/manifold"
)

// MarketWriter persists a single market. The Postgres MarketStore satisfies
// this implicitly.
type MarketWriter interface {
	Upsert(ctx context.Context, market domain.Market) error
}

// MarketCacher mirrors a single market into the cache.
type MarketCacher interface {
	Set(ctx context.Context, market domain.Market) error
}

// MarketFeed subscribes to the global new-contract and new-bet topics and
// applies each new market to the store. Bets are only counted and republished;
// the scraper refreshes market aggregates on its own schedule.
type MarketFeed struct {
	ws      *manifold.WSClient
	markets MarketWriter
	cache   MarketCacher
	bus     domain.EventBus
	logger  *slog.Logger

	betsSeen    atomic.Int64
	marketsSeen atomic.Int64
}

// NewMarketFeed creates a MarketFeed. cache may be nil.
func NewMarketFeed(ws *manifold.WSClient, markets MarketWriter, cache MarketCacher, logger *slog.Logger) *MarketFeed {
	return &MarketFeed{
		ws:      ws,
		markets: markets,
		cache:   cache,
		logger:  logger.With(slog.String("component", "market_feed")),
	}
}

// WithBus republishes feed events on the bot's event bus so the admin
// WebSocket hub can stream them to dashboard clients.
func (f *MarketFeed) WithBus(bus domain.EventBus) *MarketFeed {
	f.bus = bus
	return f
}

// Run connects, subscribes, and blocks until the context is cancelled. The
// underlying client reconnects on its own; Run only returns on cancellation
// or when the initial connect fails.
func (f *MarketFeed) Run(ctx context.Context) error {
	if err := f.ws.Connect(ctx); err != nil {
		return err
	}
	defer f.ws.Close()

	f.ws.OnBroadcast(func(topic string, data json.RawMessage) {
		switch topic {
		case manifold.TopicNewContract:
			f.handleNewContract(ctx, data)
		case manifold.TopicNewBet:
			f.betsSeen.Add(1)
			f.publish(ctx, domain.ChannelBetEvents, data)
		}
	})

	if err := f.ws.Subscribe(ctx, manifold.TopicNewContract, manifold.TopicNewBet); err != nil {
		return err
	}

	f.logger.Info("market feed started")
	<-ctx.Done()
	f.logger.Info("market feed stopped",
		slog.Int64("markets_seen", f.marketsSeen.Load()),
		slog.Int64("bets_seen", f.betsSeen.Load()),
	)
	return ctx.Err()
}

// newContractEnvelope matches the broadcast payload, which wraps the contract.
type newContractEnvelope struct {
	Contract json.RawMessage `json:"contract"`
}

func (f *MarketFeed) handleNewContract(ctx context.Context, data json.RawMessage) {
	raw := data
	var env newContractEnvelope
	if err := json.Unmarshal(data, &env); err == nil && len(env.Contract) > 0 {
		raw = env.Contract
	}

	var lite manifold.LiteMarket
	if err := json.Unmarshal(raw, &lite); err != nil || lite.ID == "" {
		f.logger.Warn("undecodable new-contract broadcast")
		return
	}

	market := lite.ToDomainMarket()
	if err := f.markets.Upsert(ctx, market); err != nil {
		f.logger.Error("store new market failed",
			slog.String("market_id", market.ID),
			slog.String("error", err.Error()),
		)
		return
	}
	if f.cache != nil {
		if err := f.cache.Set(ctx, market); err != nil {
			f.logger.Warn("cache new market failed",
				slog.String("market_id", market.ID),
				slog.String("error", err.Error()),
			)
		}
	}

	f.marketsSeen.Add(1)
	f.publish(ctx, domain.ChannelMarketEvents, raw)
	f.logger.Info("new market",
		slog.String("market_id", market.ID),
		slog.String("question", market.Question),
	)
}

// publish is best-effort; a slow or unreachable bus never stalls the feed.
func (f *MarketFeed) publish(ctx context.Context, channel string, payload []byte) {
	if f.bus == nil {
		return
	}
	if err := f.bus.Publish(ctx, channel, payload); err != nil {
		f.logger.Warn("event publish failed",
			slog.String("channel", channel),
			slog.String("error", err.Error()),
		)
	}
}
