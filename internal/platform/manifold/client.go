package manifold

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// DefaultBaseURL is the production Manifold Markets v0 API root.
const DefaultBaseURL = "https://api.manifold.markets/v0"

// Client is the REST client for the Manifold Markets API. It shapes outbound
// requests and forwards responses back uninterpreted: methods return the raw
// status, headers and body, and only failures of the HTTP round trip itself
// become errors. Status-code handling and body parsing belong to the caller.
//
// A Client is safe for concurrent use.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// ClientConfig configures a Client. Zero fields take defaults; APIKey may be
// empty for the public read-only endpoints.
type ClientConfig struct {
	// BaseURL is the API root; DefaultBaseURL when empty.
	BaseURL string
	// APIKey authenticates mutating calls. Sent as "Authorization: Key <key>".
	APIKey string
	// HTTPClient overrides the default client (30s timeout). Retry and
	// rate-limit policies, if wanted, belong in here.
	HTTPClient *http.Client
}

// NewClient creates a Manifold REST client.
func NewClient(cfg ClientConfig) *Client {
	c := &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		httpClient: cfg.HTTPClient,
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return c
}

// Response is a raw API response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// OK reports whether the response status is in the 2xx range.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Decode unmarshals the response body into v.
func (r *Response) Decode(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("manifold: decode response: %w", err)
	}
	return nil
}

// GetUser fetches a user by username.
func (c *Client) GetUser(ctx context.Context, username string) (*Response, error) {
	return c.get(ctx, "/user/"+url.PathEscape(username), nil)
}

// GetUserByID fetches a user by ID.
func (c *Client) GetUserByID(ctx context.Context, id string) (*Response, error) {
	return c.get(ctx, "/user/by-id/"+url.PathEscape(id), nil)
}

// GetMe fetches the authenticated user.
func (c *Client) GetMe(ctx context.Context) (*Response, error) {
	return c.get(ctx, "/me", nil)
}

// GetUsers lists users.
func (c *Client) GetUsers(ctx context.Context, q UsersQuery) (*Response, error) {
	return c.get(ctx, "/users", q.Payload())
}

// GetGroups lists topics.
func (c *Client) GetGroups(ctx context.Context, q GroupsQuery) (*Response, error) {
	return c.get(ctx, "/groups", q.Payload())
}

// GetGroup fetches a topic by slug.
func (c *Client) GetGroup(ctx context.Context, slug string) (*Response, error) {
	return c.get(ctx, "/group/"+url.PathEscape(slug), nil)
}

// GetGroupByID fetches a topic by ID.
func (c *Client) GetGroupByID(ctx context.Context, id string) (*Response, error) {
	return c.get(ctx, "/group/by-id/"+url.PathEscape(id), nil)
}

// GetMarkets lists markets.
func (c *Client) GetMarkets(ctx context.Context, q MarketsQuery) (*Response, error) {
	return c.get(ctx, "/markets", q.Payload())
}

// GetMarket fetches a market by ID.
func (c *Client) GetMarket(ctx context.Context, id string) (*Response, error) {
	return c.get(ctx, "/market/"+url.PathEscape(id), nil)
}

// GetMarketBySlug fetches a market by its URL slug.
func (c *Client) GetMarketBySlug(ctx context.Context, slug string) (*Response, error) {
	return c.get(ctx, "/slug/"+url.PathEscape(slug), nil)
}

// SearchMarkets runs full-text market search.
func (c *Client) SearchMarkets(ctx context.Context, q SearchQuery) (*Response, error) {
	return c.get(ctx, "/search-markets", q.Payload())
}

// GetPositions lists user positions on a market.
func (c *Client) GetPositions(ctx context.Context, marketID string, q PositionsQuery) (*Response, error) {
	return c.get(ctx, "/market/"+url.PathEscape(marketID)+"/positions", q.Payload())
}

// GetBets lists bets.
func (c *Client) GetBets(ctx context.Context, q BetsQuery) (*Response, error) {
	return c.get(ctx, "/bets", q.Payload())
}

// GetComments lists comments.
func (c *Client) GetComments(ctx context.Context, q CommentsQuery) (*Response, error) {
	return c.get(ctx, "/comments", q.Payload())
}

// GetManagrams lists mana transfers.
func (c *Client) GetManagrams(ctx context.Context, q ManagramsQuery) (*Response, error) {
	return c.get(ctx, "/managrams", q.Payload())
}

// GetLeagues lists league standings.
func (c *Client) GetLeagues(ctx context.Context, q LeaguesQuery) (*Response, error) {
	return c.get(ctx, "/leagues", q.Payload())
}

// CreateMarket creates a market of any of the five variants.
func (c *Client) CreateMarket(ctx context.Context, req CreateMarketRequest) (*Response, error) {
	return c.post(ctx, "/market", req.Payload())
}

// CreateBet places a bet.
func (c *Client) CreateBet(ctx context.Context, bet *PlaceBet) (*Response, error) {
	return c.post(ctx, "/bet", bet.Payload())
}

// CancelBet cancels an open limit order by bet ID. The ID travels in the
// path; there is no body.
func (c *Client) CancelBet(ctx context.Context, id string) (*Response, error) {
	return c.post(ctx, "/bet/cancel/"+url.PathEscape(id), nil)
}

// CreateAnswer adds an answer to a multiple-choice market.
func (c *Client) CreateAnswer(ctx context.Context, marketID, text string) (*Response, error) {
	if text == "" {
		return nil, fmt.Errorf("manifold: create answer: text is required: %w", ErrValidation)
	}
	return c.post(ctx, "/market/"+url.PathEscape(marketID)+"/answer", Payload{"text": text})
}

// AddLiquidity subsidizes a market's liquidity pool.
func (c *Client) AddLiquidity(ctx context.Context, marketID string, amount int) (*Response, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("manifold: add liquidity: amount %d is not positive: %w", amount, ErrValidation)
	}
	return c.post(ctx, "/market/"+url.PathEscape(marketID)+"/add-liquidity", Payload{"amount": amount})
}

// AddBounty adds to a bountied question's bounty.
func (c *Client) AddBounty(ctx context.Context, marketID string, amount int) (*Response, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("manifold: add bounty: amount %d is not positive: %w", amount, ErrValidation)
	}
	return c.post(ctx, "/market/"+url.PathEscape(marketID)+"/add-bounty", Payload{"amount": amount})
}

// AwardBounty pays bounty to a comment on a bountied question.
func (c *Client) AwardBounty(ctx context.Context, marketID string, award *AwardBounty) (*Response, error) {
	return c.post(ctx, "/market/"+url.PathEscape(marketID)+"/award-bounty", award.Payload())
}

// SetCloseTime changes when a market stops trading. A nil closeTime clears
// the close time, sent as an explicit empty body rather than omitted.
func (c *Client) SetCloseTime(ctx context.Context, marketID string, closeTime *time.Time) (*Response, error) {
	p := Payload{}
	p.setTime("closeTime", closeTime)
	return c.post(ctx, "/market/"+url.PathEscape(marketID)+"/close", p)
}

// ModifyGroup adds the market to a topic or removes it.
func (c *Client) ModifyGroup(ctx context.Context, marketID string, req *ModifyGroup) (*Response, error) {
	return c.post(ctx, "/market/"+url.PathEscape(marketID)+"/group", req.Payload())
}

// ResolveMarket resolves a market with any of the three resolution shapes.
func (c *Client) ResolveMarket(ctx context.Context, marketID string, req ResolveRequest) (*Response, error) {
	return c.post(ctx, "/market/"+url.PathEscape(marketID)+"/resolve", req.Payload())
}

// SellShares sells shares in a market.
func (c *Client) SellShares(ctx context.Context, marketID string, req SellShares) (*Response, error) {
	return c.post(ctx, "/market/"+url.PathEscape(marketID)+"/sell", req.Payload())
}

// SellSharesDPM sells shares on a legacy DPM market.
func (c *Client) SellSharesDPM(ctx context.Context, req SellSharesDPM) (*Response, error) {
	return c.post(ctx, "/sell-shares-dpm", req.Payload())
}

// CreateComment posts a comment on a market.
func (c *Client) CreateComment(ctx context.Context, req *CreateComment) (*Response, error) {
	return c.post(ctx, "/comment", req.Payload())
}

// get issues a GET with optional query parameters.
func (c *Client) get(ctx context.Context, path string, params Payload) (*Response, error) {
	fullURL := c.baseURL + path
	if vals := params.Values(); len(vals) > 0 {
		fullURL += "?" + vals.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("manifold: create request: %w", err)
	}
	return c.do(req)
}

// post issues a POST with a JSON body. A nil payload posts no body at all; an
// empty non-nil payload posts "{}".
func (c *Client) post(ctx context.Context, path string, body Payload) (*Response, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := body.EncodeJSON()
		if err != nil {
			return nil, err
		}
		bodyReader = bytes.NewReader(jsonBody)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("manifold: create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req)
}

// do executes the request and drains the body. Non-2xx statuses are not
// errors; only round-trip and read failures are, wrapped with ErrTransport.
func (c *Client) do(req *http.Request) (*Response, error) {
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Key "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("manifold: %s %s: %w: %w", req.Method, req.URL.Path, ErrTransport, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("manifold: read response: %w: %w", ErrTransport, err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       respBody,
	}, nil
}
