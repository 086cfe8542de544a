// Package domain models Ethiopian agro-climate forecast data.
//
// # Data Source
//
// All data originates from the national agro-climate data service ("AgroHub"),
// which aggregates weather station metadata, seasonal climate outlooks, and
// crop-yield model runs for Ethiopia. The service is queried live over HTTP;
// nothing is persisted locally beyond a time-bounded station cache.
//
// # Stations and Coordinates
//
// Stations are fixed-location observation points with WGS-84 coordinates in
// decimal degrees. The upstream API serves coordinates inconsistently (as
// JSON numbers, numeric strings, or null), so station coordinates are modeled
// as optional. A station without usable coordinates is still listed, but it
// can never be ranked as "nearest" (see [RankByDistance]).
//
// Stations optionally carry an administrative chain (municipality → state →
// region) used for display only.
//
// # Seasonal Forecasts
//
// Seasonal climate outlooks are issued per station, per year and month, as
// tercile probabilities: the chance that rainfall falls in the lower, normal,
// or upper third of the historical distribution. Callers receive these
// relabeled as below_normal / normal / above_normal (see [NormalizeClimate]).
// Forecast issuance tracks the kiremt (June–September) and belg
// (February–May) rainy seasons, so many stations carry no active outlook for
// months outside those windows.
//
// # Crop Forecasts
//
// Crop-yield forecasts are issued per station as summary statistics of model
// ensemble runs, keyed by cultivar and soil type. Upstream statistics
// (median, mean, minimum, maximum, confidence bounds) are relabeled into a
// stable caller-facing shape by [NormalizeCrop]. Statistics missing from a
// model run stay absent in the output; a defaulted zero yield would read as a
// real prediction.
//
// # Coverage
//
// Forecast coverage is sparse and uneven: a station can exist geographically
// yet carry no active forecast for the requested period. This is an expected
// outcome, not an error. [ProbeForecasts] works around it by trying a bounded
// number of nearest stations in order until one yields data.
package domain
