package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alanyoungcy/manifoldbot/internal/domain"
	"github.com/alanyoungcy/manifoldbot/internal/platform/manifold"
)

type fakeMarketSource struct {
	markets map[string]domain.Market
}

func (f *fakeMarketSource) GetByID(_ context.Context, id string) (domain.Market, error) {
	if m, ok := f.markets[id]; ok {
		return m, nil
	}
	return domain.Market{}, domain.ErrNotFound
}

func (f *fakeMarketSource) GetBySlug(_ context.Context, slug string) (domain.Market, error) {
	for _, m := range f.markets {
		if m.Slug == slug {
			return m, nil
		}
	}
	return domain.Market{}, domain.ErrNotFound
}

func (f *fakeMarketSource) ListOpen(_ context.Context, _ domain.ListOpts) ([]domain.Market, error) {
	var out []domain.Market
	for _, m := range f.markets {
		out = append(out, m)
	}
	return out, nil
}

func (f *fakeMarketSource) Count(_ context.Context) (int64, error) {
	return int64(len(f.markets)), nil
}

type fakeBetPlacer struct {
	record domain.PlacedBet
	err    error
}

func (f *fakeBetPlacer) PlaceBet(_ context.Context, amount int, contractID string, _ *manifold.BetOpts) (domain.PlacedBet, error) {
	if f.err != nil {
		return domain.PlacedBet{}, f.err
	}
	rec := f.record
	rec.Amount = amount
	rec.ContractID = contractID
	return rec, nil
}

func (f *fakeBetPlacer) CancelBet(_ context.Context, _ string) error {
	return f.err
}

type fakeBetSource struct {
	bets []domain.PlacedBet
}

func (f *fakeBetSource) ListByContract(_ context.Context, contractID string, _ domain.ListOpts) ([]domain.PlacedBet, error) {
	var out []domain.PlacedBet
	for _, b := range f.bets {
		if b.ContractID == contractID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeBetSource) ListRecent(_ context.Context, _ int) ([]domain.PlacedBet, error) {
	return f.bets, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newMarketMux(src MarketSource) *http.ServeMux {
	h := NewMarketHandler(src, testLogger())
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/markets", h.ListMarkets)
	mux.HandleFunc("GET /api/markets/{id}", h.GetMarket)
	return mux
}

func TestGetMarketByIDAndSlug(t *testing.T) {
	mux := newMarketMux(&fakeMarketSource{markets: map[string]domain.Market{
		"m1": {ID: "m1", Slug: "will-it-rain", Question: "Will it rain?"},
	}})

	for _, key := range []string{"m1", "will-it-rain"} {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/markets/"+key, nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("GET %s: status = %d, want 200", key, rec.Code)
		}
		var m domain.Market
		if err := json.Unmarshal(rec.Body.Bytes(), &m); err != nil {
			t.Fatalf("GET %s: bad body: %v", key, err)
		}
		if m.ID != "m1" {
			t.Errorf("GET %s: market id = %q, want m1", key, m.ID)
		}
	}
}

func TestGetMarketNotFound(t *testing.T) {
	mux := newMarketMux(&fakeMarketSource{markets: map[string]domain.Market{}})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/markets/nope", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestListMarketsIncludesTotal(t *testing.T) {
	mux := newMarketMux(&fakeMarketSource{markets: map[string]domain.Market{
		"m1": {ID: "m1"},
		"m2": {ID: "m2"},
	}})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/markets?limit=10", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp listMarketsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if resp.Total != 2 || len(resp.Markets) != 2 {
		t.Errorf("total=%d markets=%d, want 2/2", resp.Total, len(resp.Markets))
	}
	if resp.Limit != 10 {
		t.Errorf("limit = %d, want 10", resp.Limit)
	}
}

func TestPlaceBetValidatesBody(t *testing.T) {
	h := NewBetHandler(&fakeBetPlacer{}, &fakeBetSource{}, testLogger())

	tests := []struct {
		name string
		body string
		want int
	}{
		{"missing contract", `{"amount":10}`, http.StatusBadRequest},
		{"bad outcome", `{"amount":10,"contract_id":"c1","outcome":"MAYBE"}`, http.StatusBadRequest},
		{"not json", `nope`, http.StatusBadRequest},
		{"ok", `{"amount":10,"contract_id":"c1","outcome":"NO"}`, http.StatusCreated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/bets", strings.NewReader(tt.body))
			h.PlaceBet(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestPlaceBetRateLimitedMapsTo429(t *testing.T) {
	h := NewBetHandler(&fakeBetPlacer{err: domain.ErrRateLimited}, &fakeBetSource{}, testLogger())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/bets",
		strings.NewReader(`{"amount":10,"contract_id":"c1"}`))
	h.PlaceBet(rec, req)

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
}

func TestListBetsFiltersByContract(t *testing.T) {
	h := NewBetHandler(&fakeBetPlacer{}, &fakeBetSource{bets: []domain.PlacedBet{
		{RecordID: "r1", ContractID: "c1"},
		{RecordID: "r2", ContractID: "c2"},
	}}, testLogger())

	rec := httptest.NewRecorder()
	h.ListBets(rec, httptest.NewRequest(http.MethodGet, "/api/bets?contract_id=c2", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp listBetsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if len(resp.Bets) != 1 || resp.Bets[0].RecordID != "r2" {
		t.Errorf("bets = %+v, want only r2", resp.Bets)
	}
}
