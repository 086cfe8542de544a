// Package query exposes the location-based operations the tool boundary
// serves: station listing, nearest-station lookup, and climate/crop forecast
// acquisition with nearest-first probing.
package query

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/meskel/agroclimate-mcp/internal/domain"
	"github.com/meskel/agroclimate-mcp/internal/observability"
)

// StationSource lists the stations of a region. In production this is the
// TTL-cached upstream client.
type StationSource interface {
	ListStations(ctx context.Context, regionID int) ([]domain.Station, error)
}

// ForecastSource fetches raw forecast payloads per station.
type ForecastSource interface {
	SeasonalForecast(ctx context.Context, stationID int) (domain.SeasonalForecast, error)
	CropForecast(ctx context.Context, stationID int) (domain.CropForecast, error)
}

// RegionSource resolves the deployment region.
type RegionSource interface {
	Resolve(ctx context.Context) (domain.Region, error)
	Resolved() bool
}

// UsageEvent describes one served forecast request, published for downstream
// analytics when a publisher is configured.
type UsageEvent struct {
	Tool      string    `json:"tool"`
	StationID int       `json:"station_id,omitempty"`
	Station   string    `json:"station,omitempty"`
	Outcome   string    `json:"outcome"`
	Attempts  int       `json:"attempts"`
	ServedAt  time.Time `json:"served_at"`
}

// UsagePublisher publishes usage events. Implementations must be safe for
// concurrent use.
type UsagePublisher interface {
	PublishUsage(ctx context.Context, event UsageEvent) error
}

// Service orchestrates region resolution, the station directory, distance
// ranking, forecast probing, and normalization.
type Service struct {
	stations  StationSource
	forecasts ForecastSource
	regions   RegionSource
	events    UsagePublisher // nil when publishing is disabled

	probeBudget int
	logger      *slog.Logger
	metrics     *observability.Metrics
}

// New creates the query service. Pass a nil publisher to disable usage events.
func New(stations StationSource, forecasts ForecastSource, regions RegionSource, events UsagePublisher, probeBudget int, logger *slog.Logger, metrics *observability.Metrics) *Service {
	return &Service{
		stations:    stations,
		forecasts:   forecasts,
		regions:     regions,
		events:      events,
		probeBudget: probeBudget,
		logger:      logger,
		metrics:     metrics,
	}
}

// CheckReadiness reports whether the deployment region has been resolved.
// All location-based operations depend on it.
func (s *Service) CheckReadiness(_ context.Context) error {
	if !s.regions.Resolved() {
		return errors.New("deployment region not resolved yet")
	}
	return nil
}

// Region returns the deployment region.
func (s *Service) Region(ctx context.Context) (domain.Region, error) {
	return s.regions.Resolve(ctx)
}

// ListStations returns all stations of the deployment region in upstream
// insertion order.
func (s *Service) ListStations(ctx context.Context) ([]domain.Station, error) {
	region, err := s.regions.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	return s.stations.ListStations(ctx, region.ID)
}

// NearestStation returns the station closest to the origin, or ok=false when
// the directory holds no rankable station.
func (s *Service) NearestStation(ctx context.Context, lat, lon float64) (domain.RankedCandidate, bool, error) {
	ranked, err := s.rankedStations(ctx, lat, lon)
	if err != nil {
		return domain.RankedCandidate{}, false, err
	}
	if len(ranked) == 0 {
		return domain.RankedCandidate{}, false, nil
	}
	return ranked[0], true, nil
}

// ForecastRequest addresses a forecast either by coordinates or by an
// explicit station id. A positive StationID bypasses ranking and probing.
type ForecastRequest struct {
	Latitude  float64
	Longitude float64
	StationID int
}

// ByStation reports whether the request addresses an explicit station.
func (r ForecastRequest) ByStation() bool {
	return r.StationID > 0
}

// ClimateResult is the outcome of a climate forecast query. A nil Forecast
// means no probed station carried data; Attempted lists what was tried.
type ClimateResult struct {
	Forecast  *domain.NormalizedClimate
	Attempted []domain.Station
}

// ClimateForecast acquires a seasonal climate forecast. Coordinate requests
// probe up to the configured budget of nearest stations; explicit station
// requests fetch exactly that station.
func (s *Service) ClimateForecast(ctx context.Context, req ForecastRequest) (ClimateResult, error) {
	if req.ByStation() {
		station, err := s.lookupStation(ctx, req.StationID)
		if err != nil {
			return ClimateResult{}, err
		}
		raw, err := s.forecasts.SeasonalForecast(ctx, station.ID)
		if err != nil {
			return ClimateResult{}, err
		}
		result := ClimateResult{Attempted: []domain.Station{station}}
		if raw.HasData() {
			normalized := domain.NormalizeClimate(station, raw)
			result.Forecast = &normalized
		}
		s.recordForecast(ctx, "climate_forecast", result.Forecast != nil, station, 1)
		return result, nil
	}

	ranked, err := s.rankedStations(ctx, req.Latitude, req.Longitude)
	if err != nil {
		return ClimateResult{}, err
	}

	fetch := func(ctx context.Context, station domain.Station) (domain.SeasonalForecast, error) {
		return s.forecasts.SeasonalForecast(ctx, station.ID)
	}
	probe, err := domain.ProbeForecasts(ctx, ranked, s.probeBudget, fetch, s.logger)
	if err != nil {
		return ClimateResult{}, err
	}

	s.metrics.ProbeAttempts.Observe(float64(len(probe.Attempted)))
	result := ClimateResult{Attempted: probe.Attempted}
	if probe.Accepted {
		s.metrics.ProbeOutcomes.WithLabelValues("accepted").Inc()
		normalized := domain.NormalizeClimate(probe.Station, probe.Forecast)
		result.Forecast = &normalized
	} else {
		s.metrics.ProbeOutcomes.WithLabelValues("exhausted").Inc()
	}
	s.recordForecast(ctx, "climate_forecast", probe.Accepted, probe.Station, len(probe.Attempted))
	return result, nil
}

// CropResult is the outcome of a crop forecast query.
type CropResult struct {
	Forecast  *domain.NormalizedCrop
	Attempted []domain.Station
}

// CropForecast acquires a crop-yield forecast. Coordinate requests consult
// only the single nearest station; agronomic coverage is not known to be
// sparse the way seasonal coverage is, so there is no probe fallback here.
func (s *Service) CropForecast(ctx context.Context, req ForecastRequest) (CropResult, error) {
	var station domain.Station
	if req.ByStation() {
		found, err := s.lookupStation(ctx, req.StationID)
		if err != nil {
			return CropResult{}, err
		}
		station = found
	} else {
		nearest, ok, err := s.NearestStation(ctx, req.Latitude, req.Longitude)
		if err != nil {
			return CropResult{}, err
		}
		if !ok {
			return CropResult{}, nil
		}
		station = nearest.Station
	}

	raw, err := s.forecasts.CropForecast(ctx, station.ID)
	if err != nil {
		return CropResult{}, err
	}

	result := CropResult{Attempted: []domain.Station{station}}
	if raw.HasData() {
		normalized := domain.NormalizeCrop(station, raw)
		result.Forecast = &normalized
	}
	s.recordForecast(ctx, "crop_forecast", result.Forecast != nil, station, 1)
	return result, nil
}

func (s *Service) rankedStations(ctx context.Context, lat, lon float64) ([]domain.RankedCandidate, error) {
	region, err := s.regions.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	stations, err := s.stations.ListStations(ctx, region.ID)
	if err != nil {
		return nil, fmt.Errorf("list stations: %w", err)
	}
	return domain.RankByDistance(lat, lon, stations), nil
}

// lookupStation finds a station's display record in the directory. Unknown
// ids are not rejected: the forecast endpoint is the authority on whether a
// station exists, so a bare record is synthesized and the fetch decides.
func (s *Service) lookupStation(ctx context.Context, stationID int) (domain.Station, error) {
	region, err := s.regions.Resolve(ctx)
	if err != nil {
		return domain.Station{}, err
	}
	stations, err := s.stations.ListStations(ctx, region.ID)
	if err != nil {
		return domain.Station{}, fmt.Errorf("list stations: %w", err)
	}
	for _, st := range stations {
		if st.ID == stationID {
			return st, nil
		}
	}
	return domain.Station{ID: stationID}, nil
}

// recordForecast publishes a usage event when a publisher is configured.
// Publishing is best-effort: a broker outage must never fail a user request.
func (s *Service) recordForecast(ctx context.Context, tool string, accepted bool, station domain.Station, attempts int) {
	if s.events == nil {
		return
	}

	outcome := "accepted"
	if !accepted {
		outcome = "no_data"
		station = domain.Station{}
	}
	event := UsageEvent{
		Tool:      tool,
		StationID: station.ID,
		Station:   station.Name,
		Outcome:   outcome,
		Attempts:  attempts,
		ServedAt:  time.Now().UTC(),
	}

	if err := s.events.PublishUsage(ctx, event); err != nil {
		s.metrics.UsageEvents.WithLabelValues("error").Inc()
		s.logger.Warn("usage event publish failed", "tool", tool, "error", err)
		return
	}
	s.metrics.UsageEvents.WithLabelValues("published").Inc()
}
