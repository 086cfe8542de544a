package agrohub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/meskel/agroclimate-mcp/internal/domain"
	"github.com/meskel/agroclimate-mcp/internal/observability"
)

// Client talks to the upstream agro-climate data service over HTTP. Every
// request is bounded by the configured timeout; a timeout surfaces as
// *TimeoutError and a non-2xx response as *UpstreamError.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewClient creates an upstream data-service client.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		timeout: timeout,
		logger:  logger,
		metrics: metrics,
	}
}

// Regions fetches the full region list.
func (c *Client) Regions(ctx context.Context) ([]domain.Region, error) {
	var resp regionsResponse
	if err := c.getJSON(ctx, "/regions", "regions", &resp); err != nil {
		return nil, err
	}

	regions := make([]domain.Region, 0, len(resp.Data))
	for _, r := range resp.Data {
		regions = append(regions, domain.Region{ID: r.ID, ISO2: r.ISO2, Name: r.Name})
	}
	return regions, nil
}

// ListStations fetches all stations registered for a region, in upstream
// insertion order.
func (c *Client) ListStations(ctx context.Context, regionID int) ([]domain.Station, error) {
	var resp stationsResponse
	path := fmt.Sprintf("/regions/%d/stations", regionID)
	if err := c.getJSON(ctx, path, "stations", &resp); err != nil {
		return nil, err
	}

	stations := make([]domain.Station, 0, len(resp.Data))
	for _, dto := range resp.Data {
		stations = append(stations, dto.toDomain())
	}
	return stations, nil
}

// SeasonalForecast fetches the seasonal climate outlook for one station. An
// empty forecast collection is a valid payload, not an error.
func (c *Client) SeasonalForecast(ctx context.Context, stationID int) (domain.SeasonalForecast, error) {
	var resp seasonalResponse
	path := fmt.Sprintf("/stations/%d/seasonal-forecasts", stationID)
	if err := c.getJSON(ctx, path, "seasonal_forecast", &resp); err != nil {
		return domain.SeasonalForecast{}, err
	}
	return resp.toDomain(), nil
}

// CropForecast fetches the crop-yield forecast for one station.
func (c *Client) CropForecast(ctx context.Context, stationID int) (domain.CropForecast, error) {
	var resp cropResponse
	path := fmt.Sprintf("/stations/%d/crop-forecasts", stationID)
	if err := c.getJSON(ctx, path, "crop_forecast", &resp); err != nil {
		return domain.CropForecast{}, err
	}
	return resp.toDomain(), nil
}

// getJSON performs a GET against the upstream and decodes the JSON body into
// v. The endpoint label is used for metrics only.
func (c *Client) getJSON(ctx context.Context, path, endpoint string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.UpstreamDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	if err != nil {
		if isTimeout(err) {
			c.metrics.UpstreamRequests.WithLabelValues(endpoint, "timeout").Inc()
			return &TimeoutError{Endpoint: endpoint, Timeout: c.timeout}
		}
		c.metrics.UpstreamRequests.WithLabelValues(endpoint, "error").Inc()
		return fmt.Errorf("%s request: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.metrics.UpstreamRequests.WithLabelValues(endpoint, "error").Inc()
		return &UpstreamError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		c.metrics.UpstreamRequests.WithLabelValues(endpoint, "error").Inc()
		return fmt.Errorf("decode %s response: %w", endpoint, err)
	}

	c.metrics.UpstreamRequests.WithLabelValues(endpoint, "success").Inc()
	return nil
}

func isTimeout(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}
