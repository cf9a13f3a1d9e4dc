package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/alanyoungcy/manifoldbot/internal/domain"
)

type fakeFetcher struct {
	pages   []Page
	failAt  int // 1-based page index that returns an error; 0 disables
	fetches int
}

func (f *fakeFetcher) FetchPage(_ context.Context, _ int, _ string) (Page, error) {
	f.fetches++
	if f.failAt > 0 && f.fetches == f.failAt {
		return Page{}, errors.New("listing unavailable")
	}
	if f.fetches > len(f.pages) {
		return Page{}, nil
	}
	return f.pages[f.fetches-1], nil
}

type fakeSink struct {
	batches [][]domain.Market
	err     error
}

func (f *fakeSink) UpsertBatch(_ context.Context, markets []domain.Market) error {
	if f.err != nil {
		return f.err
	}
	f.batches = append(f.batches, markets)
	return nil
}

type fakeRunRecorder struct {
	created  []domain.ScrapeRun
	finished []domain.ScrapeRun
}

func (f *fakeRunRecorder) Create(_ context.Context, run domain.ScrapeRun) error {
	f.created = append(f.created, run)
	return nil
}

func (f *fakeRunRecorder) Finish(_ context.Context, run domain.ScrapeRun) error {
	f.finished = append(f.finished, run)
	return nil
}

type fakeSnapshots struct {
	pages map[int][]byte
}

func (f *fakeSnapshots) WritePage(_ context.Context, _ string, page int, body []byte) error {
	if f.pages == nil {
		f.pages = make(map[int][]byte)
	}
	f.pages[page] = body
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func marketsPage(n int, prefix string) Page {
	p := Page{Raw: []byte(`[]`)}
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("%s-%d", prefix, i)
		p.Markets = append(p.Markets, domain.Market{ID: id, Question: "q " + id})
		p.LastID = id
	}
	return p
}

func TestScraperWalksAllPages(t *testing.T) {
	fetcher := &fakeFetcher{pages: []Page{
		marketsPage(2, "a"),
		marketsPage(2, "b"),
		marketsPage(1, "c"), // short page ends the run
	}}
	sink := &fakeSink{}
	runs := &fakeRunRecorder{}

	s := NewMarketScraper(fetcher, sink, runs, ScraperConfig{PageLimit: 2, MaxPages: 10}, testLogger())

	run, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if run.Status != domain.ScrapeStatusDone {
		t.Errorf("status = %s, want done", run.Status)
	}
	if run.PagesFetched != 3 {
		t.Errorf("pages fetched = %d, want 3", run.PagesFetched)
	}
	if run.MarketsSeen != 5 {
		t.Errorf("markets seen = %d, want 5", run.MarketsSeen)
	}
	if len(sink.batches) != 3 {
		t.Fatalf("stored %d batches, want 3", len(sink.batches))
	}
	if run.FinishedAt == nil {
		t.Error("FinishedAt not set")
	}
	if len(runs.created) != 1 || len(runs.finished) != 1 {
		t.Fatalf("run lifecycle: created=%d finished=%d", len(runs.created), len(runs.finished))
	}
	if runs.finished[0].Status != domain.ScrapeStatusDone {
		t.Errorf("recorded status = %s, want done", runs.finished[0].Status)
	}
}

func TestScraperStopsAtMaxPages(t *testing.T) {
	fetcher := &fakeFetcher{pages: []Page{
		marketsPage(2, "a"),
		marketsPage(2, "b"),
		marketsPage(2, "c"),
	}}
	sink := &fakeSink{}
	runs := &fakeRunRecorder{}

	s := NewMarketScraper(fetcher, sink, runs, ScraperConfig{PageLimit: 2, MaxPages: 2}, testLogger())

	run, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if run.PagesFetched != 2 {
		t.Errorf("pages fetched = %d, want 2", run.PagesFetched)
	}
	if fetcher.fetches != 2 {
		t.Errorf("fetches = %d, want 2", fetcher.fetches)
	}
}

func TestScraperRecordsFailedRun(t *testing.T) {
	fetcher := &fakeFetcher{
		pages:  []Page{marketsPage(2, "a")},
		failAt: 2,
	}
	sink := &fakeSink{}
	runs := &fakeRunRecorder{}

	s := NewMarketScraper(fetcher, sink, runs, ScraperConfig{PageLimit: 2, MaxPages: 10}, testLogger())

	run, err := s.Run(context.Background())
	if err == nil {
		t.Fatal("expected error from failing page fetch")
	}
	if run.Status != domain.ScrapeStatusFailed {
		t.Errorf("status = %s, want failed", run.Status)
	}
	if run.Error == "" {
		t.Error("run error message not recorded")
	}
	// The first page was stored before the failure.
	if run.MarketsSeen != 2 {
		t.Errorf("markets seen = %d, want 2", run.MarketsSeen)
	}
	if len(runs.finished) != 1 || runs.finished[0].Status != domain.ScrapeStatusFailed {
		t.Fatalf("failed run not recorded: %+v", runs.finished)
	}
}

func TestScraperStoreFailureAbortsRun(t *testing.T) {
	fetcher := &fakeFetcher{pages: []Page{marketsPage(2, "a")}}
	sink := &fakeSink{err: errors.New("db down")}
	runs := &fakeRunRecorder{}

	s := NewMarketScraper(fetcher, sink, runs, ScraperConfig{PageLimit: 2, MaxPages: 10}, testLogger())

	run, err := s.Run(context.Background())
	if err == nil {
		t.Fatal("expected error from failing store")
	}
	if run.Status != domain.ScrapeStatusFailed {
		t.Errorf("status = %s, want failed", run.Status)
	}
}

func TestScraperWritesSnapshots(t *testing.T) {
	fetcher := &fakeFetcher{pages: []Page{
		{Markets: []domain.Market{{ID: "m1"}}, Raw: []byte(`[{"id":"m1"}]`), LastID: "m1"},
	}}
	sink := &fakeSink{}
	runs := &fakeRunRecorder{}
	snaps := &fakeSnapshots{}

	s := NewMarketScraper(fetcher, sink, runs, ScraperConfig{PageLimit: 5, MaxPages: 10}, testLogger()).
		WithSnapshots(snaps)

	if _, err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if string(snaps.pages[1]) != `[{"id":"m1"}]` {
		t.Errorf("snapshot page 1 = %q", snaps.pages[1])
	}
}

type fakeRunEndingFetcher struct {
	fakeFetcher
	endRuns int
}

func (f *fakeRunEndingFetcher) EndRun() { f.endRuns++ }

func TestScraperEndsRunOnEveryExit(t *testing.T) {
	tests := []struct {
		name    string
		fetcher fakeFetcher
		cfg     ScraperConfig
	}{
		// A full final page with the page cap hit must still end the run.
		{"max pages on full page", fakeFetcher{pages: []Page{
			marketsPage(2, "a"),
			marketsPage(2, "b"),
		}}, ScraperConfig{PageLimit: 2, MaxPages: 2}},
		{"short page", fakeFetcher{pages: []Page{
			marketsPage(1, "a"),
		}}, ScraperConfig{PageLimit: 2, MaxPages: 10}},
		{"fetch error", fakeFetcher{failAt: 1}, ScraperConfig{PageLimit: 2, MaxPages: 10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fetcher := &fakeRunEndingFetcher{fakeFetcher: tt.fetcher}
			s := NewMarketScraper(fetcher, &fakeSink{}, &fakeRunRecorder{}, tt.cfg, testLogger())

			_, _ = s.Run(context.Background())

			if fetcher.endRuns != 1 {
				t.Errorf("EndRun called %d times, want 1", fetcher.endRuns)
			}
		})
	}
}

func TestScraperEmptyFirstPage(t *testing.T) {
	fetcher := &fakeFetcher{}
	sink := &fakeSink{}
	runs := &fakeRunRecorder{}

	s := NewMarketScraper(fetcher, sink, runs, ScraperConfig{PageLimit: 2, MaxPages: 10}, testLogger())

	run, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if run.Status != domain.ScrapeStatusDone {
		t.Errorf("status = %s, want done", run.Status)
	}
	if run.MarketsSeen != 0 || run.PagesFetched != 0 {
		t.Errorf("run = %+v, want zero pages and markets", run)
	}
	if len(sink.batches) != 0 {
		t.Errorf("stored %d batches, want 0", len(sink.batches))
	}
}
