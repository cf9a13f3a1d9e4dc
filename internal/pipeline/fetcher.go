// Package pipeline contains the background jobs: the market scraper, the
// cold-storage archiver, and the orchestrator that runs them.
package pipeline

import (
	"context"
	"fmt"

	"github.com/alanyoungcy/manifoldbot/internal/domain"
	"github.com/alanyoungcy/manifoldbot/internal/platform/manifold"
)

// Page is one market listing page: the decoded markets, the raw body for
// snapshotting, and the cursor for the next page.
type Page struct {
	Markets []domain.Market
	Raw     []byte
	LastID  string
}

// MarketFetcher retrieves one listing page from an external API.
type MarketFetcher interface {
	FetchPage(ctx context.Context, limit int, before string) (Page, error)
}

// RunEnder is implemented by fetchers that hold per-run resources. EndRun is
// called exactly once when a scrape run stops, whatever the outcome.
type RunEnder interface {
	EndRun()
}

// APIFetcher implements MarketFetcher over the Manifold REST client.
type APIFetcher struct {
	client *manifold.Client
}

var _ MarketFetcher = (*APIFetcher)(nil)

// NewAPIFetcher creates an APIFetcher.
func NewAPIFetcher(client *manifold.Client) *APIFetcher {
	return &APIFetcher{client: client}
}

// FetchPage fetches one page of markets ordered by creation time descending.
// An empty before cursor fetches the newest page.
func (f *APIFetcher) FetchPage(ctx context.Context, limit int, before string) (Page, error) {
	q := manifold.MarketsQuery{
		Limit:  &limit,
		Before: before,
	}

	resp, err := f.client.GetMarkets(ctx, q)
	if err != nil {
		return Page{}, fmt.Errorf("fetching markets page: %w", err)
	}
	if !resp.OK() {
		return Page{}, fmt.Errorf("fetching markets page: status %d", resp.StatusCode)
	}

	var lite []manifold.LiteMarket
	if err := resp.Decode(&lite); err != nil {
		return Page{}, fmt.Errorf("decoding markets page: %w", err)
	}

	page := Page{
		Markets: make([]domain.Market, 0, len(lite)),
		Raw:     resp.Body,
	}
	for i := range lite {
		page.Markets = append(page.Markets, lite[i].ToDomainMarket())
	}
	if len(lite) > 0 {
		page.LastID = lite[len(lite)-1].ID
	}
	return page, nil
}
