package query

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/meskel/agroclimate-mcp/internal/domain"
	"github.com/meskel/agroclimate-mcp/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fptr(v float64) *float64 {
	return &v
}

// --- fakes ---

type fakeStations struct {
	calls    int
	stations []domain.Station
	err      error
}

func (f *fakeStations) ListStations(_ context.Context, _ int) ([]domain.Station, error) {
	f.calls++
	return f.stations, f.err
}

type fakeForecasts struct {
	seasonalCalls []int
	cropCalls     []int
	seasonal      map[int]domain.SeasonalForecast
	seasonalErr   map[int]error
	crop          map[int]domain.CropForecast
	cropErr       error
}

func newFakeForecasts() *fakeForecasts {
	return &fakeForecasts{
		seasonal:    make(map[int]domain.SeasonalForecast),
		seasonalErr: make(map[int]error),
		crop:        make(map[int]domain.CropForecast),
	}
}

func (f *fakeForecasts) SeasonalForecast(_ context.Context, stationID int) (domain.SeasonalForecast, error) {
	f.seasonalCalls = append(f.seasonalCalls, stationID)
	if err, ok := f.seasonalErr[stationID]; ok {
		return domain.SeasonalForecast{}, err
	}
	return f.seasonal[stationID], nil
}

func (f *fakeForecasts) CropForecast(_ context.Context, stationID int) (domain.CropForecast, error) {
	f.cropCalls = append(f.cropCalls, stationID)
	if f.cropErr != nil {
		return domain.CropForecast{}, f.cropErr
	}
	return f.crop[stationID], nil
}

type fakeRegions struct {
	region domain.Region
	err    error
}

func (f *fakeRegions) Resolve(_ context.Context) (domain.Region, error) {
	if f.err != nil {
		return domain.Region{}, f.err
	}
	return f.region, nil
}

func (f *fakeRegions) Resolved() bool {
	return f.err == nil
}

type capturedEvents struct {
	events []UsageEvent
	err    error
}

func (c *capturedEvents) PublishUsage(_ context.Context, ev UsageEvent) error {
	c.events = append(c.events, ev)
	return c.err
}

// --- fixtures ---

func stationAt(id int, name string, lat, lon float64) domain.Station {
	return domain.Station{ID: id, Name: name, Latitude: fptr(lat), Longitude: fptr(lon)}
}

// directory around origin (9.0, 38.7): ids 1..4 by increasing distance.
func testDirectory() []domain.Station {
	return []domain.Station{
		stationAt(3, "third", 9.3, 38.7),
		stationAt(1, "first", 9.01, 38.7),
		stationAt(4, "fourth", 9.9, 38.7),
		stationAt(2, "second", 9.1, 38.7),
	}
}

func seasonalWithData(stationID int) domain.SeasonalForecast {
	return domain.SeasonalForecast{
		StationID: stationID,
		Entries: []domain.SeasonalEntry{
			{Year: 2026, Month: 6, Probabilities: domain.TercileProbabilities{Lower: fptr(0.2), Normal: fptr(0.45), Upper: fptr(0.35)}},
		},
	}
}

func cropWithData(stationID int) domain.CropForecast {
	return domain.CropForecast{
		StationID: stationID,
		Entries: []domain.CropEntry{
			{Cultivar: "teff/dz-01-196", Statistics: domain.CropStatistics{Median: fptr(2.1)}},
		},
	}
}

func newTestService(stations *fakeStations, forecasts *fakeForecasts, regions *fakeRegions, events UsagePublisher) *Service {
	return New(stations, forecasts, regions, events, 3, discardLogger(), observability.NewMetricsForTesting())
}

// --- tests ---

func TestListStations_PreservesUpstreamOrder(t *testing.T) {
	stations := &fakeStations{stations: testDirectory()}
	svc := newTestService(stations, newFakeForecasts(), &fakeRegions{region: domain.Region{ID: 7}}, nil)

	got, err := svc.ListStations(context.Background())
	require.NoError(t, err)

	require.Len(t, got, 4)
	assert.Equal(t, 3, got[0].ID, "listing must keep upstream insertion order, not rank")
}

func TestNearestStation(t *testing.T) {
	stations := &fakeStations{stations: testDirectory()}
	svc := newTestService(stations, newFakeForecasts(), &fakeRegions{}, nil)

	nearest, ok, err := svc.NearestStation(context.Background(), 9.0, 38.7)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1, nearest.Station.ID)
	assert.Positive(t, nearest.DistanceKm)
}

func TestNearestStation_EmptyDirectory(t *testing.T) {
	svc := newTestService(&fakeStations{}, newFakeForecasts(), &fakeRegions{}, nil)

	_, ok, err := svc.NearestStation(context.Background(), 9.0, 38.7)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNearestStation_DirectoryErrorPropagates(t *testing.T) {
	stations := &fakeStations{err: errors.New("upstream down")}
	svc := newTestService(stations, newFakeForecasts(), &fakeRegions{}, nil)

	_, _, err := svc.NearestStation(context.Background(), 9.0, 38.7)
	require.Error(t, err)
}

func TestClimateForecast_ProbesNearestFirst(t *testing.T) {
	stations := &fakeStations{stations: testDirectory()}
	forecasts := newFakeForecasts()
	forecasts.seasonal[3] = seasonalWithData(3)

	svc := newTestService(stations, forecasts, &fakeRegions{}, nil)

	result, err := svc.ClimateForecast(context.Background(), ForecastRequest{Latitude: 9.0, Longitude: 38.7})
	require.NoError(t, err)

	require.NotNil(t, result.Forecast)
	assert.Equal(t, 3, result.Forecast.Station.ID)
	assert.Equal(t, []int{1, 2, 3}, forecasts.seasonalCalls, "probing walks nearest-first")
	assert.Len(t, result.Attempted, 3)
}

func TestClimateForecast_ExhaustedReturnsAttempted(t *testing.T) {
	stations := &fakeStations{stations: testDirectory()}
	svc := newTestService(stations, newFakeForecasts(), &fakeRegions{}, nil)

	result, err := svc.ClimateForecast(context.Background(), ForecastRequest{Latitude: 9.0, Longitude: 38.7})
	require.NoError(t, err)

	assert.Nil(t, result.Forecast)
	require.Len(t, result.Attempted, 3, "budget bounds the attempts")
	assert.Equal(t, 1, result.Attempted[0].ID)
}

func TestClimateForecast_ExplicitStationBypassesProbing(t *testing.T) {
	stations := &fakeStations{stations: testDirectory()}
	forecasts := newFakeForecasts()
	forecasts.seasonal[4] = seasonalWithData(4)

	svc := newTestService(stations, forecasts, &fakeRegions{}, nil)

	result, err := svc.ClimateForecast(context.Background(), ForecastRequest{StationID: 4})
	require.NoError(t, err)

	require.NotNil(t, result.Forecast)
	assert.Equal(t, 4, result.Forecast.Station.ID)
	assert.Equal(t, "fourth", result.Forecast.Station.Name, "directory record enriches the response")
	assert.Equal(t, []int{4}, forecasts.seasonalCalls, "no probing for explicit station requests")
}

func TestClimateForecast_ExplicitUnknownStationStillFetched(t *testing.T) {
	stations := &fakeStations{stations: testDirectory()}
	forecasts := newFakeForecasts()
	forecasts.seasonal[99] = seasonalWithData(99)

	svc := newTestService(stations, forecasts, &fakeRegions{}, nil)

	result, err := svc.ClimateForecast(context.Background(), ForecastRequest{StationID: 99})
	require.NoError(t, err)
	require.NotNil(t, result.Forecast)
	assert.Equal(t, 99, result.Forecast.Station.ID)
}

func TestClimateForecast_RegionErrorPropagates(t *testing.T) {
	regionErr := errors.New("region unavailable")
	svc := newTestService(&fakeStations{}, newFakeForecasts(), &fakeRegions{err: regionErr}, nil)

	_, err := svc.ClimateForecast(context.Background(), ForecastRequest{Latitude: 9.0, Longitude: 38.7})
	require.ErrorIs(t, err, regionErr)
}

func TestCropForecast_UsesSingleNearestStation(t *testing.T) {
	stations := &fakeStations{stations: testDirectory()}
	forecasts := newFakeForecasts()
	forecasts.crop[1] = cropWithData(1)

	svc := newTestService(stations, forecasts, &fakeRegions{}, nil)

	result, err := svc.CropForecast(context.Background(), ForecastRequest{Latitude: 9.0, Longitude: 38.7})
	require.NoError(t, err)

	require.NotNil(t, result.Forecast)
	assert.Equal(t, 1, result.Forecast.Station.ID)
	assert.Equal(t, []int{1}, forecasts.cropCalls, "crop path has no probe fallback")
}

func TestCropForecast_NearestHasNoData(t *testing.T) {
	stations := &fakeStations{stations: testDirectory()}
	forecasts := newFakeForecasts()

	svc := newTestService(stations, forecasts, &fakeRegions{}, nil)

	result, err := svc.CropForecast(context.Background(), ForecastRequest{Latitude: 9.0, Longitude: 38.7})
	require.NoError(t, err)

	assert.Nil(t, result.Forecast)
	require.Len(t, result.Attempted, 1, "only the nearest station is consulted")
	assert.Equal(t, []int{1}, forecasts.cropCalls, "no second station is tried")
}

func TestCropForecast_EmptyDirectory(t *testing.T) {
	svc := newTestService(&fakeStations{}, newFakeForecasts(), &fakeRegions{}, nil)

	result, err := svc.CropForecast(context.Background(), ForecastRequest{Latitude: 9.0, Longitude: 38.7})
	require.NoError(t, err)
	assert.Nil(t, result.Forecast)
	assert.Empty(t, result.Attempted)
}

func TestUsageEvents_PublishedOnAcceptance(t *testing.T) {
	stations := &fakeStations{stations: testDirectory()}
	forecasts := newFakeForecasts()
	forecasts.seasonal[1] = seasonalWithData(1)
	events := &capturedEvents{}

	svc := newTestService(stations, forecasts, &fakeRegions{}, events)

	_, err := svc.ClimateForecast(context.Background(), ForecastRequest{Latitude: 9.0, Longitude: 38.7})
	require.NoError(t, err)

	require.Len(t, events.events, 1)
	ev := events.events[0]
	assert.Equal(t, "climate_forecast", ev.Tool)
	assert.Equal(t, 1, ev.StationID)
	assert.Equal(t, "accepted", ev.Outcome)
	assert.Equal(t, 1, ev.Attempts)
	assert.False(t, ev.ServedAt.IsZero())
}

func TestUsageEvents_PublishFailureDoesNotFailRequest(t *testing.T) {
	stations := &fakeStations{stations: testDirectory()}
	forecasts := newFakeForecasts()
	forecasts.seasonal[1] = seasonalWithData(1)
	events := &capturedEvents{err: errors.New("broker down")}

	svc := newTestService(stations, forecasts, &fakeRegions{}, events)

	result, err := svc.ClimateForecast(context.Background(), ForecastRequest{Latitude: 9.0, Longitude: 38.7})
	require.NoError(t, err)
	assert.NotNil(t, result.Forecast)
}

func TestCheckReadiness(t *testing.T) {
	svc := newTestService(&fakeStations{}, newFakeForecasts(), &fakeRegions{}, nil)
	assert.NoError(t, svc.CheckReadiness(context.Background()))

	unresolved := newTestService(&fakeStations{}, newFakeForecasts(), &fakeRegions{err: errors.New("down")}, nil)
	assert.Error(t, unresolved.CheckReadiness(context.Background()))
}
