package manifold

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// recordedRequest captures what the server saw for assertion.
type recordedRequest struct {
	method string
	path   string
	query  string
	auth   string
	body   string
}

func newTestClient(t *testing.T, status int, respBody string) (*Client, *recordedRequest) {
	t.Helper()
	rec := &recordedRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.method = r.Method
		rec.path = r.URL.Path
		rec.query = r.URL.RawQuery
		rec.auth = r.Header.Get("Authorization")
		b, _ := io.ReadAll(r.Body)
		rec.body = string(b)
		w.WriteHeader(status)
		w.Write([]byte(respBody))
	}))
	t.Cleanup(srv.Close)

	client := NewClient(ClientConfig{
		BaseURL: srv.URL,
		APIKey:  "test-key",
	})
	return client, rec
}

func TestClientAuthHeader(t *testing.T) {
	client, rec := newTestClient(t, http.StatusOK, `{}`)
	if _, err := client.GetMe(context.Background()); err != nil {
		t.Fatalf("GetMe: %v", err)
	}
	if rec.auth != "Key test-key" {
		t.Errorf("Authorization = %q, want %q", rec.auth, "Key test-key")
	}
}

func TestClientNoAuthHeaderWithoutKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "" {
			t.Errorf("Authorization sent without a key: %q", r.Header.Get("Authorization"))
		}
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := NewClient(ClientConfig{BaseURL: srv.URL})
	if _, err := client.GetMarkets(context.Background(), MarketsQuery{}); err != nil {
		t.Fatalf("GetMarkets: %v", err)
	}
}

func TestClientGetPaths(t *testing.T) {
	tests := []struct {
		name     string
		call     func(c *Client) (*Response, error)
		wantPath string
	}{
		{"GetUser", func(c *Client) (*Response, error) {
			return c.GetUser(context.Background(), "alice")
		}, "/user/alice"},
		{"GetUserByID", func(c *Client) (*Response, error) {
			return c.GetUserByID(context.Background(), "u1")
		}, "/user/by-id/u1"},
		{"GetMarket", func(c *Client) (*Response, error) {
			return c.GetMarket(context.Background(), "m1")
		}, "/market/m1"},
		{"GetMarketBySlug", func(c *Client) (*Response, error) {
			return c.GetMarketBySlug(context.Background(), "will-it-rain")
		}, "/slug/will-it-rain"},
		{"GetGroup", func(c *Client) (*Response, error) {
			return c.GetGroup(context.Background(), "politics")
		}, "/group/politics"},
		{"GetGroupByID", func(c *Client) (*Response, error) {
			return c.GetGroupByID(context.Background(), "g1")
		}, "/group/by-id/g1"},
		{"GetPositions", func(c *Client) (*Response, error) {
			return c.GetPositions(context.Background(), "m1", PositionsQuery{})
		}, "/market/m1/positions"},
		{"SearchMarkets", func(c *Client) (*Response, error) {
			return c.SearchMarkets(context.Background(), SearchQuery{Term: "x"})
		}, "/search-markets"},
		{"GetLeagues", func(c *Client) (*Response, error) {
			return c.GetLeagues(context.Background(), LeaguesQuery{})
		}, "/leagues"},
	}

	for _, tt := range tests {
		client, rec := newTestClient(t, http.StatusOK, `{}`)
		if _, err := tt.call(client); err != nil {
			t.Errorf("%s: %v", tt.name, err)
			continue
		}
		if rec.method != http.MethodGet {
			t.Errorf("%s: method = %s, want GET", tt.name, rec.method)
		}
		if rec.path != tt.wantPath {
			t.Errorf("%s: path = %q, want %q", tt.name, rec.path, tt.wantPath)
		}
	}
}

func TestClientCreateMarketBody(t *testing.T) {
	client, rec := newTestClient(t, http.StatusOK, `{"id":"m1"}`)

	m, err := NewBinaryMarket("Will it rain?", 40, nil)
	if err != nil {
		t.Fatalf("NewBinaryMarket: %v", err)
	}
	if _, err := client.CreateMarket(context.Background(), m); err != nil {
		t.Fatalf("CreateMarket: %v", err)
	}

	if rec.method != http.MethodPost || rec.path != "/market" {
		t.Errorf("request = %s %s, want POST /market", rec.method, rec.path)
	}
	want := `{"initialProb":40,"outcomeType":"BINARY","question":"Will it rain?"}`
	if rec.body != want {
		t.Errorf("body = %s, want %s", rec.body, want)
	}
}

func TestClientCreateBetBody(t *testing.T) {
	client, rec := newTestClient(t, http.StatusOK, `{"betId":"b1"}`)

	bet, err := NewPlaceBet(50, "c1", &BetOpts{LimitProb: floatPtr(0.35)})
	if err != nil {
		t.Fatalf("NewPlaceBet: %v", err)
	}
	if _, err := client.CreateBet(context.Background(), bet); err != nil {
		t.Fatalf("CreateBet: %v", err)
	}

	want := `{"amount":50,"contractId":"c1","limitprob":0.35,"outcome":"YES"}`
	if rec.body != want {
		t.Errorf("body = %s, want %s", rec.body, want)
	}
}

func TestClientCancelBetHasNoBody(t *testing.T) {
	client, rec := newTestClient(t, http.StatusOK, `{}`)
	if _, err := client.CancelBet(context.Background(), "b1"); err != nil {
		t.Fatalf("CancelBet: %v", err)
	}
	if rec.path != "/bet/cancel/b1" {
		t.Errorf("path = %q, want /bet/cancel/b1", rec.path)
	}
	if rec.body != "" {
		t.Errorf("body = %q, want none", rec.body)
	}
}

func TestClientSetCloseTime(t *testing.T) {
	// Clearing the close time posts an explicit empty object.
	client, rec := newTestClient(t, http.StatusOK, `{}`)
	if _, err := client.SetCloseTime(context.Background(), "m1", nil); err != nil {
		t.Fatalf("SetCloseTime: %v", err)
	}
	if rec.path != "/market/m1/close" {
		t.Errorf("path = %q", rec.path)
	}
	if rec.body != "{}" {
		t.Errorf("body = %q, want {}", rec.body)
	}

	closeTime := time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)
	client2, rec2 := newTestClient(t, http.StatusOK, `{}`)
	if _, err := client2.SetCloseTime(context.Background(), "m1", &closeTime); err != nil {
		t.Fatalf("SetCloseTime: %v", err)
	}
	want := `{"closeTime":1798761600000}`
	if rec2.body != want {
		t.Errorf("body = %s, want %s", rec2.body, want)
	}
}

func TestClientResolveMarket(t *testing.T) {
	client, rec := newTestClient(t, http.StatusOK, `{}`)
	r, err := NewResolveBinary(ResolveYes, nil)
	if err != nil {
		t.Fatalf("NewResolveBinary: %v", err)
	}
	if _, err := client.ResolveMarket(context.Background(), "m1", r); err != nil {
		t.Fatalf("ResolveMarket: %v", err)
	}
	if rec.path != "/market/m1/resolve" {
		t.Errorf("path = %q", rec.path)
	}
	if rec.body != `{"outcome":"YES"}` {
		t.Errorf("body = %s", rec.body)
	}
}

func TestClientQueryEncoding(t *testing.T) {
	client, rec := newTestClient(t, http.StatusOK, `[]`)
	q := MarketsQuery{Limit: intPtr(100), Sort: SortCreatedTime, Order: OrderDesc}
	if _, err := client.GetMarkets(context.Background(), q); err != nil {
		t.Fatalf("GetMarkets: %v", err)
	}
	want := "limit=100&order=desc&sort=created-time"
	if rec.query != want {
		t.Errorf("query = %q, want %q", rec.query, want)
	}
}

func TestClientReturnsNon2xxUninterpreted(t *testing.T) {
	client, _ := newTestClient(t, http.StatusForbidden, `{"message":"insufficient balance"}`)
	resp, err := client.AddLiquidity(context.Background(), "m1", 100)
	if err != nil {
		t.Fatalf("non-2xx must not become an error, got %v", err)
	}
	if resp.OK() {
		t.Error("OK() = true for 403")
	}
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("StatusCode = %d, want 403", resp.StatusCode)
	}
	if string(resp.Body) != `{"message":"insufficient balance"}` {
		t.Errorf("Body = %s", resp.Body)
	}
}

func TestClientTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse all connections

	client := NewClient(ClientConfig{BaseURL: srv.URL})
	_, err := client.GetMe(context.Background())
	if !errors.Is(err, ErrTransport) {
		t.Errorf("error = %v, want ErrTransport", err)
	}
}

func TestResponseDecode(t *testing.T) {
	client, _ := newTestClient(t, http.StatusOK, `{"id":"m1","question":"Q?","createdTime":1700000000000}`)
	resp, err := client.GetMarket(context.Background(), "m1")
	if err != nil {
		t.Fatalf("GetMarket: %v", err)
	}
	var m LiteMarket
	if err := resp.Decode(&m); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if m.ID != "m1" || m.Question != "Q?" {
		t.Errorf("decoded market = %+v", m)
	}
	dm := m.ToDomainMarket()
	if !dm.CreatedAt.Equal(time.UnixMilli(1700000000000)) {
		t.Errorf("CreatedAt = %v", dm.CreatedAt)
	}
}
