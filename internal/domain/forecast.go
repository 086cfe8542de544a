package domain

// TercileProbabilities are the upstream per-period rainfall probabilities.
// Each value is the chance of rainfall landing in that third of the
// historical distribution. Fields the upstream omits stay nil.
type TercileProbabilities struct {
	Lower  *float64 `json:"lower,omitempty"`
	Normal *float64 `json:"normal,omitempty"`
	Upper  *float64 `json:"upper,omitempty"`
}

// SeasonalEntry is one year/month outlook row from the upstream seasonal
// forecast payload.
type SeasonalEntry struct {
	Year          int                  `json:"year"`
	Month         int                  `json:"month"`
	Probabilities TercileProbabilities `json:"probabilities"`
}

// SeasonalForecast is the raw seasonal climate payload for one station.
type SeasonalForecast struct {
	StationID int             `json:"station_id"`
	Entries   []SeasonalEntry `json:"entries"`
}

// HasData reports whether the payload carries at least one outlook row. An
// empty payload means the station has no active forecast for the period,
// which is a legitimate outcome and not an error.
func (f SeasonalForecast) HasData() bool {
	return len(f.Entries) > 0
}

// CropStatistics are the upstream yield-model summary statistics for one
// cultivar/soil combination. Any statistic may be absent.
type CropStatistics struct {
	Median  *float64 `json:"median,omitempty"`
	Mean    *float64 `json:"mean,omitempty"`
	Minimum *float64 `json:"minimum,omitempty"`
	Maximum *float64 `json:"maximum,omitempty"`
	LowerCI *float64 `json:"lower_ci,omitempty"`
	UpperCI *float64 `json:"upper_ci,omitempty"`
}

// CropEntry is one cultivar/soil row from the upstream crop forecast payload.
type CropEntry struct {
	Cultivar   string         `json:"cultivar"`
	Soil       string         `json:"soil,omitempty"`
	Statistics CropStatistics `json:"statistics"`
}

// CropForecast is the raw crop-yield payload for one station.
type CropForecast struct {
	StationID int         `json:"station_id"`
	Entries   []CropEntry `json:"entries"`
}

// HasData reports whether the payload carries at least one yield row.
func (f CropForecast) HasData() bool {
	return len(f.Entries) > 0
}
