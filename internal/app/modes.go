package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/alanyoungcy/manifoldbot/internal/domain"
	"github.com/alanyoungcy/manifoldbot/internal/feed"
	"github.com/alanyoungcy/manifoldbot/internal/pipeline"
	"github.com/alanyoungcy/manifoldbot/internal/platform/manifold"
)

// scrapeLockTTL guards against two instances scraping concurrently.
const scrapeLockTTL = 10 * time.Minute

// ScrapeMode runs the market scraper and archiver pipelines.
func (a *App) ScrapeMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting scrape mode")

	if !a.cfg.Pipeline.Enabled {
		a.logger.WarnContext(ctx, "pipeline.enabled is false, but scrape mode always runs the pipeline")
	}

	orch, err := a.buildPipeline(deps)
	if err != nil {
		return fmt.Errorf("scrape mode: %w", err)
	}
	return orch.Run(ctx)
}

// MonitorMode runs the realtime feed: new markets and bets stream in over the
// WebSocket and keep the store and cache current. No scraping or archival.
func (a *App) MonitorMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting monitor mode")

	if deps.MarketStore == nil {
		return fmt.Errorf("monitor mode requires the postgres market store")
	}

	g, ctx := errgroup.WithContext(ctx)

	ws := manifold.NewWSClient(a.cfg.Manifold.WsURL)
	marketFeed := feed.NewMarketFeed(ws, deps.MarketStore, deps.MarketCache, a.logger)
	if deps.EventBus != nil {
		marketFeed.WithBus(deps.EventBus)
	}
	g.Go(func() error {
		err := marketFeed.Run(ctx)
		if ctx.Err() != nil {
			return nil // clean shutdown
		}
		return fmt.Errorf("market feed: %w", err)
	})

	return g.Wait()
}

// FullMode runs the scraper pipeline and the realtime feed together.
func (a *App) FullMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting full mode")

	orch, err := a.buildPipeline(deps)
	if err != nil {
		return fmt.Errorf("full mode: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return orch.Run(ctx)
	})

	ws := manifold.NewWSClient(a.cfg.Manifold.WsURL)
	marketFeed := feed.NewMarketFeed(ws, deps.MarketStore, deps.MarketCache, a.logger)
	if deps.EventBus != nil {
		marketFeed.WithBus(deps.EventBus)
	}
	g.Go(func() error {
		err := marketFeed.Run(ctx)
		if ctx.Err() != nil {
			return nil // clean shutdown
		}
		return fmt.Errorf("market feed: %w", err)
	})

	return g.Wait()
}

// buildPipeline wires the scraper and archiver from the dependency bundle.
func (a *App) buildPipeline(deps *Dependencies) (*pipeline.Orchestrator, error) {
	if deps.MarketStore == nil || deps.ScrapeRunStore == nil {
		return nil, fmt.Errorf("pipeline requires postgres stores (markets, scrape runs)")
	}

	interval := a.cfg.Pipeline.ScrapeInterval.Duration
	if interval <= 0 {
		interval = 15 * time.Minute
	}

	fetcher := pipeline.NewAPIFetcher(deps.Manifold)
	scraper := pipeline.NewMarketScraper(
		a.withScrapeLock(fetcher, deps.LockManager),
		deps.MarketStore,
		deps.ScrapeRunStore,
		pipeline.ScraperConfig{
			PageLimit:          a.cfg.Pipeline.PageLimit,
			MaxPages:           a.cfg.Pipeline.MaxPages,
			RateLimitPerMinute: a.cfg.Pipeline.RateLimitPerMinute,
		},
		a.logger,
	)
	if deps.MarketCache != nil {
		scraper.WithCache(deps.MarketCache)
	}
	if deps.SnapshotWriter != nil {
		scraper.WithSnapshots(deps.SnapshotWriter)
	}
	if deps.RateLimiter != nil {
		scraper.WithRateLimiter(deps.RateLimiter)
	}
	if deps.Notifier != nil {
		scraper.WithNotifier(deps.Notifier)
	}
	if deps.EventBus != nil {
		scraper.WithBus(deps.EventBus)
	}
	if a.scrapeTrigger != nil {
		scraper.WithTrigger(a.scrapeTrigger)
	}

	var archiver *pipeline.Archiver
	if deps.Archiver != nil {
		archiver = pipeline.NewArchiver(deps.Archiver, a.cfg.Pipeline.ArchiveRetentionDays, a.logger)
	}

	return pipeline.NewOrchestrator(scraper, archiver, interval, a.cfg.Pipeline.ArchiveCron, a.logger), nil
}

// withScrapeLock wraps a fetcher so the first page of each run also acquires
// the distributed scrape lock, skipping the run when another instance holds
// it. A nil lock manager leaves the fetcher unwrapped.
func (a *App) withScrapeLock(f pipeline.MarketFetcher, locks domain.LockManager) pipeline.MarketFetcher {
	if locks == nil {
		return f
	}
	return &lockedFetcher{inner: f, locks: locks, logger: a.logger}
}

// lockedFetcher guards a scrape run with the distributed lock. The lock is
// acquired on the first page and released through EndRun when the scraper
// finishes the run, however it exits.
type lockedFetcher struct {
	inner  pipeline.MarketFetcher
	locks  domain.LockManager
	logger *slog.Logger

	unlock func()
}

var _ pipeline.RunEnder = (*lockedFetcher)(nil)

func (l *lockedFetcher) FetchPage(ctx context.Context, limit int, before string) (pipeline.Page, error) {
	if before == "" {
		unlock, err := l.locks.Acquire(ctx, "scrape", scrapeLockTTL)
		if err != nil {
			if errors.Is(err, domain.ErrLockHeld) {
				return pipeline.Page{}, fmt.Errorf("scrape already running elsewhere: %w", err)
			}
			return pipeline.Page{}, fmt.Errorf("acquire scrape lock: %w", err)
		}
		l.EndRun()
		l.unlock = unlock
	}
	return l.inner.FetchPage(ctx, limit, before)
}

// EndRun releases the scrape lock, if held.
func (l *lockedFetcher) EndRun() {
	if l.unlock != nil {
		l.unlock()
		l.unlock = nil
	}
}
