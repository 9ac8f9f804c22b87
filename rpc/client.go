// Package rpc talks to the remote forecast-aggregation procedure. The
// aggregator pre-computes per-product daily demand figures server-side;
// when it is unreachable the planner recomputes them locally from raw rows.
package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"plancore/forecast"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// BaseURL returns the client's base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// Name identifies this forecast source in logs and plan-run records.
func (c *Client) Name() string { return "aggregated" }

// Reconfigure updates the client's base URL and timeout for hot-reload.
func (c *Client) Reconfigure(baseURL string, timeout time.Duration) {
	c.baseURL = baseURL
	c.httpClient.Timeout = timeout
}

type aggregateRequest struct {
	WeekStart  string               `json:"week_start"`
	WeeksBack  int                  `json:"weeks_back"`
	ProductIDs []forecast.ProductID `json:"product_ids"`
}

type aggregateResponse struct {
	Rows []forecast.DailyAggregate `json:"rows"`
}

// DailyAggregates fetches pre-aggregated forecast inputs for one week.
// Implements forecast.Source.
func (c *Client) DailyAggregates(ctx context.Context, week forecast.Week, weeksBack int, products []forecast.ProductID) ([]forecast.DailyAggregate, error) {
	if c.baseURL == "" {
		return nil, fmt.Errorf("aggregator not configured")
	}
	req := aggregateRequest{
		WeekStart:  week.Start.Format("2006-01-02"),
		WeeksBack:  weeksBack,
		ProductIDs: products,
	}
	var resp aggregateResponse
	if err := c.post(ctx, "/rpc/weekly_product_forecast", req, &resp); err != nil {
		return nil, err
	}
	return resp.Rows, nil
}

func (c *Client) post(ctx context.Context, path string, body any, result any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("aggregator marshal: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("aggregator request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("aggregator POST %s: %w", path, err)
	}
	defer resp.Body.Close()
	return c.decode(resp, result)
}

func (c *Client) decode(resp *http.Response, result any) error {
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("aggregator read body: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("aggregator HTTP %d: %s", resp.StatusCode, string(data))
	}
	if result != nil {
		if err := json.Unmarshal(data, result); err != nil {
			return fmt.Errorf("aggregator decode: %w", err)
		}
	}
	return nil
}
