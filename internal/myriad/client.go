package myriad

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/mselser95/gasfutures/pkg/types"
	"go.uber.org/zap"
)

// Client is an HTTP client for the Myriad market and user REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a new API client. A zero timeout defaults to 30s.
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// FetchMarkets fetches one page of market summaries.
func (c *Client) FetchMarkets(ctx context.Context, q *types.MarketsQuery) (*types.MarketsResponse, error) {
	var resp types.MarketsResponse
	err := c.get(ctx, "markets", "/markets", q.Values(), &resp)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("fetched-markets",
		zap.Int("page", resp.Pagination.Page),
		zap.Int("count", len(resp.Data)),
		zap.Int("total", resp.Pagination.Total),
		zap.Bool("has-next", resp.Pagination.HasNext))

	return &resp, nil
}

// FetchMarket fetches a single market by numeric id or slug.
func (c *Client) FetchMarket(ctx context.Context, idOrSlug string) (*types.Market, error) {
	if idOrSlug == "" {
		return nil, fmt.Errorf("market id or slug cannot be empty")
	}

	var market types.Market
	err := c.get(ctx, "market", "/markets/"+url.PathEscape(idOrSlug), nil, &market)
	if err != nil {
		return nil, err
	}

	return &market, nil
}

// FetchUserEvents fetches one page of a user's market events.
func (c *Client) FetchUserEvents(ctx context.Context, address string, q *types.UserEventsQuery) (*types.UserEventsResponse, error) {
	if address == "" {
		return nil, fmt.Errorf("address cannot be empty")
	}

	var resp types.UserEventsResponse
	err := c.get(ctx, "user-events", "/users/"+url.PathEscape(address)+"/events", q.Values(), &resp)
	if err != nil {
		return nil, err
	}

	return &resp, nil
}

// FetchPortfolio fetches one page of a user's positions.
func (c *Client) FetchPortfolio(ctx context.Context, address string, q *types.PortfolioQuery) (*types.PortfolioResponse, error) {
	if address == "" {
		return nil, fmt.Errorf("address cannot be empty")
	}

	var resp types.PortfolioResponse
	err := c.get(ctx, "portfolio", "/users/"+url.PathEscape(address)+"/portfolio", q.Values(), &resp)
	if err != nil {
		return nil, err
	}

	return &resp, nil
}

// get issues a GET request and decodes a 2xx body into out. Non-2xx bodies are
// decoded as the API error envelope.
func (c *Client) get(ctx context.Context, endpoint string, path string, params url.Values, out interface{}) (err error) {
	start := time.Now()
	defer func() {
		RequestDurationSeconds.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
		if err != nil {
			RequestErrorsTotal.WithLabelValues(endpoint).Inc()
		}
	}()

	requestURL := c.baseURL + path
	if len(params) > 0 {
		requestURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "gasfutures/1.0")

	c.logger.Debug("api-request", zap.String("url", requestURL))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp.StatusCode, body)
	}

	err = json.Unmarshal(body, out)
	if err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}

	return nil
}

func decodeAPIError(status int, body []byte) *types.APIError {
	apiErr := &types.APIError{}
	if json.Unmarshal(body, apiErr) != nil || apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(string(body))
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(status)
		}
	}

	if apiErr.StatusCode == 0 {
		apiErr.StatusCode = status
	}

	return apiErr
}
