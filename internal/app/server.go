package app

import (
	"github.com/alanyoungcy/manifoldbot/internal/server"
	"github.com/alanyoungcy/manifoldbot/internal/server/handler"
	"github.com/alanyoungcy/manifoldbot/internal/server/ws"
	"github.com/alanyoungcy/manifoldbot/internal/service"
)

// buildServer assembles the admin API from whatever dependencies the current
// mode wired. Routes whose backing stores are absent stay unregistered, so the
// same server works in every mode.
func (a *App) buildServer(deps *Dependencies) (*server.Server, *ws.Hub) {
	handlers := server.Handlers{
		Health: handler.NewHealthHandler(a.logger),
	}

	var counter handler.MarketCounter
	if deps.MarketStore != nil {
		counter = deps.MarketStore
		handlers.Markets = handler.NewMarketHandler(deps.MarketStore, a.logger)
	}
	var runSource handler.RunSource
	if deps.ScrapeRunStore != nil {
		runSource = deps.ScrapeRunStore
		scrape := handler.NewScrapeHandler(deps.ScrapeRunStore, a.logger)
		if a.scrapeTrigger != nil {
			scrape.WithTriggerChannel(a.scrapeTrigger)
		}
		handlers.Scrape = scrape
	}
	handlers.Status = handler.NewStatusHandler(a.cfg.Mode, counter, runSource)

	if deps.BetStore != nil {
		svc := service.NewBetService(deps.Manifold, deps.BetStore, a.logger)
		if deps.RateLimiter != nil {
			svc.WithRateLimiter(deps.RateLimiter)
		}
		if deps.AuditStore != nil {
			svc.WithAuditStore(deps.AuditStore)
		}
		if deps.Notifier != nil {
			svc.WithNotifier(deps.Notifier)
		}
		handlers.Bets = handler.NewBetHandler(svc, deps.BetStore, a.logger)
	}

	var hub *ws.Hub
	if deps.EventBus != nil {
		hub = ws.NewHub(deps.EventBus, a.cfg.Mode, a.logger)
	}

	srv := server.New(server.Config{
		Port:               a.cfg.Server.Port,
		CORSOrigins:        a.cfg.Server.CORSOrigins,
		APIKey:             a.cfg.Server.ApiKey,
		RateLimitPerMinute: a.cfg.Server.RateLimitPerMinute,
	}, handlers, hub, deps.RateLimiter, a.logger)

	return srv, hub
}
