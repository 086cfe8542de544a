// Package mcp wires the query service into MCP tools served by qilin.
package mcp

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/miyamo2/qilin"

	"github.com/meskel/agroclimate-mcp/internal/adapter/agrohub"
	"github.com/meskel/agroclimate-mcp/internal/domain"
	"github.com/meskel/agroclimate-mcp/internal/observability"
	"github.com/meskel/agroclimate-mcp/internal/query"
)

// Tools holds the handler dependencies.
type Tools struct {
	svc     *query.Service
	logger  *slog.Logger
	metrics *observability.Metrics
}

// Register attaches all agro-climate tools to the qilin instance.
func Register(q *qilin.Qilin, svc *query.Service, logger *slog.Logger, metrics *observability.Metrics) {
	t := &Tools{svc: svc, logger: logger, metrics: metrics}

	q.UseInTools(requestLogger(logger))

	q.Tool("list_stations",
		(*ListStationsRequest)(nil),
		t.ListStations,
		qilin.ToolWithDescription("List all weather stations of the deployment region"))

	q.Tool("nearest_station",
		(*NearestStationRequest)(nil),
		t.NearestStation,
		qilin.ToolWithDescription("Find the weather station nearest to a coordinate pair"))

	q.Tool("climate_forecast",
		(*ForecastToolRequest)(nil),
		t.ClimateForecast,
		qilin.ToolWithDescription("Get the seasonal climate forecast for a location or an explicit station. Location queries probe several nearby stations because not every station carries an active forecast."))

	q.Tool("crop_forecast",
		(*ForecastToolRequest)(nil),
		t.CropForecast,
		qilin.ToolWithDescription("Get the crop-yield forecast for a location (nearest station) or an explicit station"))

	q.Tool("region",
		(*RegionRequest)(nil),
		t.Region,
		qilin.ToolWithDescription("Show the region this deployment serves"))
}

// requestLogger logs every tool invocation with its duration and outcome.
func requestLogger(logger *slog.Logger) qilin.ToolMiddlewareFunc {
	return func(next qilin.ToolHandlerFunc) qilin.ToolHandlerFunc {
		return func(c qilin.ToolContext) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				logger.Error("tool failed",
					"tool", c.ToolName(),
					"duration", time.Since(start),
					"error", err,
				)
				return err
			}
			logger.Info("tool served",
				"tool", c.ToolName(),
				"duration", time.Since(start),
			)
			return nil
		}
	}
}

func (t *Tools) observe(tool, outcome string) {
	t.metrics.ToolRequests.WithLabelValues(tool, outcome).Inc()
}

// ListStationsRequest has no parameters; the deployment region is implied.
type ListStationsRequest struct{}

// NearestStationRequest contains input parameters for the nearest_station tool.
type NearestStationRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// ForecastToolRequest addresses a forecast by coordinates or explicit station.
type ForecastToolRequest struct {
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	StationID *int     `json:"station_id,omitempty"`
}

// RegionRequest has no parameters.
type RegionRequest struct{}

func (t *Tools) ListStations(c qilin.ToolContext) error {
	stations, err := t.svc.ListStations(c.Context())
	if err != nil {
		return t.fail(c, "list_stations", err)
	}
	t.observe("list_stations", "ok")
	return c.JSON(stations)
}

func (t *Tools) NearestStation(c qilin.ToolContext) error {
	var req NearestStationRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if err := validCoordinates(req.Latitude, req.Longitude); err != nil {
		return err
	}

	nearest, ok, err := t.svc.NearestStation(c.Context(), req.Latitude, req.Longitude)
	if err != nil {
		return t.fail(c, "nearest_station", err)
	}
	if !ok {
		t.observe("nearest_station", "no_data")
		return c.String("No stations with known coordinates are registered for this region.")
	}
	t.observe("nearest_station", "ok")
	return c.JSON(nearest)
}

func (t *Tools) ClimateForecast(c qilin.ToolContext) error {
	req, err := bindForecastRequest(c)
	if err != nil {
		return err
	}

	result, err := t.svc.ClimateForecast(c.Context(), req)
	if err != nil {
		return t.fail(c, "climate_forecast", err)
	}
	if result.Forecast == nil {
		t.observe("climate_forecast", "no_data")
		return c.String(noDataMessage("seasonal climate forecast", result.Attempted))
	}
	t.observe("climate_forecast", "ok")
	return c.JSON(result.Forecast)
}

func (t *Tools) CropForecast(c qilin.ToolContext) error {
	req, err := bindForecastRequest(c)
	if err != nil {
		return err
	}

	result, err := t.svc.CropForecast(c.Context(), req)
	if err != nil {
		return t.fail(c, "crop_forecast", err)
	}
	if result.Forecast == nil {
		t.observe("crop_forecast", "no_data")
		return c.String(noDataMessage("crop-yield forecast", result.Attempted))
	}
	t.observe("crop_forecast", "ok")
	return c.JSON(result.Forecast)
}

func (t *Tools) Region(c qilin.ToolContext) error {
	region, err := t.svc.Region(c.Context())
	if err != nil {
		return t.fail(c, "region", err)
	}
	t.observe("region", "ok")
	return c.JSON(region)
}

func bindForecastRequest(c qilin.ToolContext) (query.ForecastRequest, error) {
	var req ForecastToolRequest
	if err := c.Bind(&req); err != nil {
		return query.ForecastRequest{}, err
	}

	if req.StationID != nil {
		if *req.StationID <= 0 {
			return query.ForecastRequest{}, fmt.Errorf("station_id must be positive, got %d", *req.StationID)
		}
		return query.ForecastRequest{StationID: *req.StationID}, nil
	}
	if req.Latitude == nil || req.Longitude == nil {
		return query.ForecastRequest{}, errors.New("provide either station_id or both latitude and longitude")
	}
	if err := validCoordinates(*req.Latitude, *req.Longitude); err != nil {
		return query.ForecastRequest{}, err
	}
	return query.ForecastRequest{Latitude: *req.Latitude, Longitude: *req.Longitude}, nil
}

func validCoordinates(lat, lon float64) error {
	if lat < -90 || lat > 90 {
		return fmt.Errorf("latitude must be within [-90, 90], got %v", lat)
	}
	if lon < -180 || lon > 180 {
		return fmt.Errorf("longitude must be within [-180, 180], got %v", lon)
	}
	return nil
}

// fail turns known upstream failures into user-facing messages and leaves
// everything else to the protocol layer. The wording deliberately separates
// "no data for your location" from "service unreachable": only the former
// should send a caller looking for alternatives.
func (t *Tools) fail(c qilin.ToolContext, tool string, err error) error {
	t.observe(tool, "error")

	var timeoutErr *agrohub.TimeoutError
	if errors.As(err, &timeoutErr) {
		return c.String("The climate data service did not respond in time. This is a service problem, not a lack of data; please retry shortly.")
	}
	var upstreamErr *agrohub.UpstreamError
	if errors.As(err, &upstreamErr) {
		return c.String(fmt.Sprintf("The climate data service returned an error (status %d). This is a service problem, not a lack of data; please retry later.", upstreamErr.StatusCode))
	}
	if errors.Is(err, agrohub.ErrRegionUnavailable) {
		return c.String("Location-based queries are not available for this deployment: the configured region could not be resolved.")
	}
	return err
}

// noDataMessage explains an exhausted probe and suggests alternatives.
func noDataMessage(what string, attempted []domain.Station) string {
	var b strings.Builder
	fmt.Fprintf(&b, "No %s is currently available near this location.", what)

	if len(attempted) > 0 {
		names := make([]string, 0, len(attempted))
		for _, s := range attempted {
			if s.Name != "" {
				names = append(names, s.Name)
			} else {
				names = append(names, fmt.Sprintf("station %d", s.ID))
			}
		}
		fmt.Fprintf(&b, " Stations checked: %s.", strings.Join(names, ", "))
	}

	b.WriteString(" Forecast coverage is seasonal and uneven; try different coordinates, or use list_stations and query a specific station_id.")
	return b.String()
}
