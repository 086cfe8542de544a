package domain

import (
	"context"
	"log/slog"
)

// DefaultProbeBudget bounds how many candidate stations a single query may
// attempt against the forecast endpoint.
const DefaultProbeBudget = 3

// ForecastFetch retrieves the seasonal forecast payload for one station.
type ForecastFetch func(ctx context.Context, station Station) (SeasonalForecast, error)

// ProbeResult is the tagged outcome of a probe run: either some station was
// accepted (Accepted true, Station and Forecast set) or the budget was
// exhausted (Accepted false). Attempted lists every station probed, in order,
// for both outcomes.
type ProbeResult struct {
	Accepted  bool
	Station   Station
	Forecast  SeasonalForecast
	Attempted []Station
}

// ProbeForecasts walks ranked candidates nearest-first, fetching each
// station's seasonal forecast until one returns non-empty data or the budget
// is spent. The first usable payload wins; remaining candidates are never
// fetched. A candidate whose fetch fails is treated the same as one with no
// data: logged and skipped, because upstream coverage is uneven and a single
// dead station must not fail the whole query. Only context cancellation
// aborts the run early.
func ProbeForecasts(ctx context.Context, candidates []RankedCandidate, budget int, fetch ForecastFetch, logger *slog.Logger) (ProbeResult, error) {
	if budget <= 0 {
		budget = DefaultProbeBudget
	}

	result := ProbeResult{}
	seen := make(map[int]bool, budget)

	for _, candidate := range candidates {
		if len(result.Attempted) >= budget {
			break
		}
		if err := ctx.Err(); err != nil {
			return result, err
		}

		station := candidate.Station
		if seen[station.ID] {
			continue
		}
		seen[station.ID] = true
		result.Attempted = append(result.Attempted, station)

		forecast, err := fetch(ctx, station)
		if err != nil {
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			logger.Warn("forecast fetch failed, trying next station",
				"station_id", station.ID,
				"station", station.Name,
				"distance_km", candidate.DistanceKm,
				"error", err,
			)
			continue
		}
		if !forecast.HasData() {
			logger.Debug("station has no active forecast",
				"station_id", station.ID,
				"station", station.Name,
			)
			continue
		}

		result.Accepted = true
		result.Station = station
		result.Forecast = forecast
		return result, nil
	}

	return result, nil
}
