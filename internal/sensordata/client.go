package sensordata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/smartcity-agent/backend/internal/metrics"
	"github.com/smartcity-agent/backend/pkg/logger"
	"github.com/smartcity-agent/backend/pkg/retry"
)

// Client talks to the sensor data service and the maintenance dashboard.
// Every fetch is failure-isolated: transport and HTTP errors become
// error-shaped values, never Go errors crossing the component boundary.
type Client struct {
	baseURL       string
	statusBaseURL string
	httpClient    *http.Client
	retryConfig   retry.Config
}

// CategorySeries is one vertical's slice of timestamped readings from the
// temporal endpoint.
type CategorySeries struct {
	Data []map[string]interface{} `json:"data"`
}

// RangeMetadata records how a time-ranged fetch was issued, kept on both
// success and failure for transparency in debug output.
type RangeMetadata struct {
	FromDate  string `json:"from_date"`
	ToDate    string `json:"to_date"`
	NodeID    string `json:"node_id"`
	URL       string `json:"url"`
	DataFound bool   `json:"data_found"`
}

// RangeResult is the per-node outcome of a time-ranged fetch: either
// FilteredData keyed by vertical, or Error.
type RangeResult struct {
	FilteredData map[string]CategorySeries `json:"filtered_data,omitempty"`
	Metadata     *RangeMetadata            `json:"metadata,omitempty"`
	Error        string                    `json:"error,omitempty"`
}

func NewClient(baseURL, statusBaseURL string, timeout time.Duration, maxAttempts int) *Client {
	return &Client{
		baseURL:       baseURL,
		statusBaseURL: statusBaseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		retryConfig: retry.Config{
			MaxAttempts:  maxAttempts,
			InitialDelay: 200 * time.Millisecond,
			MaxDelay:     2 * time.Second,
			Multiplier:   2.0,
			Logger:       logger.GetLogger(),
		},
	}
}

// FetchLatest returns the latest snapshot for one node, or an error record.
func (c *Client) FetchLatest(ctx context.Context, nodeID string) map[string]interface{} {
	reqURL := fmt.Sprintf("%s/verticals/all/latest?node_id=%s", c.baseURL, url.QueryEscape(nodeID))

	var snapshot map[string]interface{}
	if err := c.getJSON(ctx, reqURL, &snapshot); err != nil {
		metrics.UpstreamErrors.WithLabelValues("latest").Inc()
		return map[string]interface{}{
			"error": fmt.Sprintf("Failed to fetch data for node %s: %v", nodeID, err),
		}
	}

	return snapshot
}

// FetchLatestAll fetches latest snapshots node by node; one node failing
// does not affect the others.
func (c *Client) FetchLatestAll(ctx context.Context, nodeIDs []string) map[string]interface{} {
	results := make(map[string]interface{}, len(nodeIDs))
	for _, nodeID := range nodeIDs {
		results[nodeID] = c.FetchLatest(ctx, nodeID)
	}
	return results
}

// FetchRange returns the time-ranged series for one node over the given
// period label.
func (c *Client) FetchRange(ctx context.Context, nodeID, period string) RangeResult {
	fromDate, toDate := TimeRange(period, time.Now())
	reqURL := fmt.Sprintf("%s/verticals/all/temporal?from=%s&to=%s&node_id=%s",
		c.baseURL, url.QueryEscape(fromDate), url.QueryEscape(toDate), url.QueryEscape(nodeID))

	meta := &RangeMetadata{
		FromDate: fromDate,
		ToDate:   toDate,
		NodeID:   nodeID,
		URL:      reqURL,
	}

	var series map[string]CategorySeries
	if err := c.getJSON(ctx, reqURL, &series); err != nil {
		metrics.UpstreamErrors.WithLabelValues("temporal").Inc()
		return RangeResult{
			Error:    fmt.Sprintf("Failed to fetch historical data for node %s: %v", nodeID, err),
			Metadata: meta,
		}
	}

	meta.DataFound = len(series) > 0
	return RangeResult{
		FilteredData: series,
		Metadata:     meta,
	}
}

// FetchRangeAll fetches time-ranged series node by node.
func (c *Client) FetchRangeAll(ctx context.Context, nodeIDs []string, period string) map[string]RangeResult {
	results := make(map[string]RangeResult, len(nodeIDs))
	for _, nodeID := range nodeIDs {
		results[nodeID] = c.FetchRange(ctx, nodeID, period)
	}
	return results
}

// FetchToday fetches the midnight-UTC-to-now series for each node.
func (c *Client) FetchToday(ctx context.Context, nodeIDs []string) map[string]RangeResult {
	return c.FetchRangeAll(ctx, nodeIDs, "today")
}

// FetchAverage returns the fleet-wide aggregate, or a single error record
// on total failure.
func (c *Client) FetchAverage(ctx context.Context) map[string]interface{} {
	reqURL := fmt.Sprintf("%s/verticals/avg/", c.baseURL)

	var aggregate map[string]interface{}
	if err := c.getJSON(ctx, reqURL, &aggregate); err != nil {
		metrics.UpstreamErrors.WithLabelValues("average").Inc()
		return map[string]interface{}{
			"error": fmt.Sprintf("Failed to fetch average data: %v", err),
		}
	}

	return aggregate
}

// FetchNodeStatus returns {status, last_seen} for one node, or an error
// record.
func (c *Client) FetchNodeStatus(ctx context.Context, nodeID string) map[string]interface{} {
	reqURL := fmt.Sprintf("%s/get_node_status?node_id=%s", c.statusBaseURL, url.QueryEscape(nodeID))

	var status map[string]interface{}
	if err := c.getJSON(ctx, reqURL, &status); err != nil {
		metrics.UpstreamErrors.WithLabelValues("node_status").Inc()
		return map[string]interface{}{
			"error": fmt.Sprintf("Failed to fetch status for node %s: %v", nodeID, err),
		}
	}

	return status
}

func (c *Client) getJSON(ctx context.Context, reqURL string, out interface{}) error {
	return retry.Do(ctx, c.retryConfig, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("request failed: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			io.Copy(io.Discard, resp.Body)
			return fmt.Errorf("unexpected status %d", resp.StatusCode)
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("failed to read response: %w", err)
		}

		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}

		return nil
	})
}

// LogFetchSummary emits one debug line per node describing what came back.
func LogFetchSummary(results map[string]RangeResult) {
	for nodeID, result := range results {
		logger.Debug("Range fetch finished",
			zap.String("node_id", nodeID),
			zap.Bool("data_found", result.Metadata != nil && result.Metadata.DataFound),
			zap.String("error", result.Error),
		)
	}
}
