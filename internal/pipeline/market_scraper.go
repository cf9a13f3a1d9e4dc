package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/alanyoungcy/manifoldbot/internal/domain"
	"github.com/alanyoungcy/manifoldbot/internal/notify"
)

const rateLimitKey = "manifold:markets"

// Notify is the slice of the notifier the scraper needs.
type Notify interface {
	Notify(ctx context.Context, event, title, message string) error
}

// MarketSink persists a batch of markets. The Postgres MarketStore satisfies
// this implicitly.
type MarketSink interface {
	UpsertBatch(ctx context.Context, markets []domain.Market) error
}

// RunRecorder tracks scrape run lifecycle. The Postgres ScrapeRunStore
// satisfies this implicitly.
type RunRecorder interface {
	Create(ctx context.Context, run domain.ScrapeRun) error
	Finish(ctx context.Context, run domain.ScrapeRun) error
}

// MarketCacher mirrors market batches into a cache.
type MarketCacher interface {
	SetBatch(ctx context.Context, markets []domain.Market) error
}

// ScraperConfig controls pagination and request pacing for one scrape run.
type ScraperConfig struct {
	// PageLimit is the number of markets requested per page.
	PageLimit int
	// MaxPages caps how many pages a single run will walk. Zero means walk
	// until the listing is exhausted.
	MaxPages int
	// RateLimitPerMinute throttles listing requests. Zero disables throttling.
	RateLimitPerMinute int
}

// MarketScraper walks the market listing page by page, persists each batch,
// and records the run in the scrape history. Cache, snapshot, limiter, and
// notifier are optional; a nil value disables that side effect.
type MarketScraper struct {
	fetcher   MarketFetcher
	markets   MarketSink
	runs      RunRecorder
	cache     MarketCacher
	snapshots domain.SnapshotWriter
	limiter   domain.RateLimiter
	notifier  Notify
	bus       domain.EventBus
	trigger   <-chan struct{}
	cfg       ScraperConfig
	logger    *slog.Logger
}

// NewMarketScraper creates a new MarketScraper.
func NewMarketScraper(
	fetcher MarketFetcher,
	markets MarketSink,
	runs RunRecorder,
	cfg ScraperConfig,
	logger *slog.Logger,
) *MarketScraper {
	if cfg.PageLimit <= 0 {
		cfg.PageLimit = 500
	}
	return &MarketScraper{
		fetcher: fetcher,
		markets: markets,
		runs:    runs,
		cfg:     cfg,
		logger:  logger.With(slog.String("component", "market_scraper")),
	}
}

// WithCache makes the scraper mirror each batch into the market cache.
func (s *MarketScraper) WithCache(cache MarketCacher) *MarketScraper {
	s.cache = cache
	return s
}

// WithSnapshots makes the scraper store each raw page body.
func (s *MarketScraper) WithSnapshots(w domain.SnapshotWriter) *MarketScraper {
	s.snapshots = w
	return s
}

// WithRateLimiter throttles listing requests through the given limiter.
func (s *MarketScraper) WithRateLimiter(rl domain.RateLimiter) *MarketScraper {
	s.limiter = rl
	return s
}

// WithNotifier makes the scraper emit scrape_done / scrape_failed events.
func (s *MarketScraper) WithNotifier(n Notify) *MarketScraper {
	s.notifier = n
	return s
}

// WithBus publishes each finished run on the bot's event bus.
func (s *MarketScraper) WithBus(bus domain.EventBus) *MarketScraper {
	s.bus = bus
	return s
}

// WithTrigger makes RunLoop start an extra run whenever the channel receives,
// on top of the regular interval.
func (s *MarketScraper) WithTrigger(trigger <-chan struct{}) *MarketScraper {
	s.trigger = trigger
	return s
}

// Run executes a single scrape run that paginates through the market listing
// and upserts each batch. It records the run in the scrape history and
// returns the finished run record.
func (s *MarketScraper) Run(ctx context.Context) (domain.ScrapeRun, error) {
	if f, ok := s.fetcher.(RunEnder); ok {
		defer f.EndRun()
	}

	run := domain.ScrapeRun{
		ID:        uuid.New().String(),
		Status:    domain.ScrapeStatusRunning,
		StartedAt: time.Now().UTC(),
	}
	if err := s.runs.Create(ctx, run); err != nil {
		return run, fmt.Errorf("recording scrape run start: %w", err)
	}

	s.logger.Info("scrape run started",
		slog.String("run_id", run.ID),
		slog.Int("page_limit", s.cfg.PageLimit),
	)

	before := ""
	for page := 1; s.cfg.MaxPages == 0 || page <= s.cfg.MaxPages; page++ {
		if err := ctx.Err(); err != nil {
			return s.fail(ctx, run, fmt.Errorf("scrape cancelled: %w", err))
		}

		if err := s.throttle(ctx); err != nil {
			return s.fail(ctx, run, err)
		}

		p, err := s.fetcher.FetchPage(ctx, s.cfg.PageLimit, before)
		if err != nil {
			return s.fail(ctx, run, fmt.Errorf("page %d: %w", page, err))
		}
		if len(p.Markets) == 0 {
			break
		}

		if err := s.markets.UpsertBatch(ctx, p.Markets); err != nil {
			return s.fail(ctx, run, fmt.Errorf("storing page %d: %w", page, err))
		}

		// Cache and snapshot failures degrade the run but do not abort it.
		if s.cache != nil {
			if err := s.cache.SetBatch(ctx, p.Markets); err != nil {
				s.logger.Warn("cache batch failed",
					slog.String("run_id", run.ID),
					slog.String("error", err.Error()),
				)
			}
		}
		if s.snapshots != nil {
			if err := s.snapshots.WritePage(ctx, run.ID, page, p.Raw); err != nil {
				s.logger.Warn("page snapshot failed",
					slog.String("run_id", run.ID),
					slog.Int("page", page),
					slog.String("error", err.Error()),
				)
			}
		}

		run.PagesFetched = page
		run.MarketsSeen += len(p.Markets)
		s.logger.Info("scraped market page",
			slog.String("run_id", run.ID),
			slog.Int("page", page),
			slog.Int("batch_size", len(p.Markets)),
			slog.Int("markets_seen", run.MarketsSeen),
		)

		if len(p.Markets) < s.cfg.PageLimit {
			break
		}
		before = p.LastID
	}

	run.Status = domain.ScrapeStatusDone
	now := time.Now().UTC()
	run.FinishedAt = &now
	if err := s.runs.Finish(ctx, run); err != nil {
		return run, fmt.Errorf("recording scrape run finish: %w", err)
	}

	s.logger.Info("scrape run complete",
		slog.String("run_id", run.ID),
		slog.Int("pages", run.PagesFetched),
		slog.Int("markets_seen", run.MarketsSeen),
		slog.Duration("elapsed", now.Sub(run.StartedAt)),
	)

	if s.notifier != nil {
		_ = s.notifier.Notify(ctx, notify.EventScrapeDone, "Scrape complete",
			fmt.Sprintf("Run %s: %d markets across %d pages", run.ID, run.MarketsSeen, run.PagesFetched))
	}
	s.publishRun(ctx, run)

	return run, nil
}

// RunLoop runs the scraper on a repeating interval until the context is
// cancelled. It scrapes once immediately on start.
func (s *MarketScraper) RunLoop(ctx context.Context, interval time.Duration) error {
	if _, err := s.Run(ctx); err != nil {
		s.logger.Error("scrape run failed", slog.String("error", err.Error()))
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("market scraper loop stopped")
			return ctx.Err()
		case <-ticker.C:
			if _, err := s.Run(ctx); err != nil {
				s.logger.Error("scrape run failed", slog.String("error", err.Error()))
			}
		case <-s.trigger:
			s.logger.Info("scrape run triggered on demand")
			if _, err := s.Run(ctx); err != nil {
				s.logger.Error("scrape run failed", slog.String("error", err.Error()))
			}
		}
	}
}

// throttle blocks until the limiter admits another listing request.
func (s *MarketScraper) throttle(ctx context.Context) error {
	if s.limiter == nil || s.cfg.RateLimitPerMinute <= 0 {
		return nil
	}

	for {
		allowed, err := s.limiter.Allow(ctx, rateLimitKey, s.cfg.RateLimitPerMinute, time.Minute)
		if err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}
		if allowed {
			return nil
		}

		timer := time.NewTimer(time.Second)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// fail marks the run failed, best-effort, and returns the causing error.
// It uses a fresh context so the failure is recorded even when the run was
// cancelled.
func (s *MarketScraper) fail(ctx context.Context, run domain.ScrapeRun, cause error) (domain.ScrapeRun, error) {
	run.Status = domain.ScrapeStatusFailed
	run.Error = cause.Error()
	now := time.Now().UTC()
	run.FinishedAt = &now

	finishCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.runs.Finish(finishCtx, run); err != nil {
		s.logger.Error("could not record failed run",
			slog.String("run_id", run.ID),
			slog.String("error", err.Error()),
		)
	}
	if s.notifier != nil {
		_ = s.notifier.Notify(finishCtx, notify.EventScrapeFailed, "Scrape failed",
			fmt.Sprintf("Run %s: %v", run.ID, cause))
	}
	s.publishRun(finishCtx, run)
	return run, cause
}

// publishRun announces a finished run on the event bus, best-effort.
func (s *MarketScraper) publishRun(ctx context.Context, run domain.ScrapeRun) {
	if s.bus == nil {
		return
	}
	payload, err := json.Marshal(map[string]any{
		"type":         "scrape_run",
		"run_id":       run.ID,
		"status":       run.Status,
		"pages":        run.PagesFetched,
		"markets_seen": run.MarketsSeen,
		"error":        run.Error,
	})
	if err != nil {
		return
	}
	if err := s.bus.Publish(ctx, domain.ChannelScrapeEvents, payload); err != nil {
		s.logger.Warn("scrape event publish failed", slog.String("error", err.Error()))
	}
}
