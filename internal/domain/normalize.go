package domain

// ClimateOutlook is the caller-stable shape of one seasonal outlook period.
// The upstream tercile labels are renamed: lower becomes below_normal, upper
// becomes above_normal. Probabilities absent upstream stay absent here; a
// defaulted zero would be indistinguishable from a real 0% forecast.
type ClimateOutlook struct {
	Year        int      `json:"year"`
	Month       int      `json:"month"`
	BelowNormal *float64 `json:"below_normal,omitempty"`
	Normal      *float64 `json:"normal,omitempty"`
	AboveNormal *float64 `json:"above_normal,omitempty"`
}

// NormalizedClimate is the stable climate forecast shape consumed by callers.
type NormalizedClimate struct {
	Station  Station          `json:"station"`
	Outlooks []ClimateOutlook `json:"outlooks"`
}

// ValueRange is a min/max pair. Either end may be absent.
type ValueRange struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

// ConfidenceInterval is a lower/upper confidence bound pair.
type ConfidenceInterval struct {
	Lower *float64 `json:"lower,omitempty"`
	Upper *float64 `json:"upper,omitempty"`
}

// CropOutlook is the caller-stable shape of one cultivar/soil yield forecast.
type CropOutlook struct {
	Cultivar   string              `json:"cultivar"`
	Soil       string              `json:"soil,omitempty"`
	Median     *float64            `json:"median,omitempty"`
	Average    *float64            `json:"average,omitempty"`
	Range      *ValueRange         `json:"range,omitempty"`
	Confidence *ConfidenceInterval `json:"confidence,omitempty"`
}

// NormalizedCrop is the stable crop forecast shape consumed by callers.
type NormalizedCrop struct {
	Station  Station       `json:"station"`
	Outlooks []CropOutlook `json:"outlooks"`
}

// NormalizeClimate reshapes a raw seasonal payload into the stable output
// structure. An empty payload normalizes to an empty outlook list; whether
// that counts as "no data" is decided by the probe, one layer up.
func NormalizeClimate(station Station, f SeasonalForecast) NormalizedClimate {
	outlooks := make([]ClimateOutlook, 0, len(f.Entries))
	for _, e := range f.Entries {
		outlooks = append(outlooks, ClimateOutlook{
			Year:        e.Year,
			Month:       e.Month,
			BelowNormal: e.Probabilities.Lower,
			Normal:      e.Probabilities.Normal,
			AboveNormal: e.Probabilities.Upper,
		})
	}
	return NormalizedClimate{Station: station, Outlooks: outlooks}
}

// NormalizeCrop reshapes a raw crop-yield payload into the stable output
// structure. Range and Confidence are omitted entirely when the upstream
// carries neither end of the pair.
func NormalizeCrop(station Station, f CropForecast) NormalizedCrop {
	outlooks := make([]CropOutlook, 0, len(f.Entries))
	for _, e := range f.Entries {
		o := CropOutlook{
			Cultivar: e.Cultivar,
			Soil:     e.Soil,
			Median:   e.Statistics.Median,
			Average:  e.Statistics.Mean,
		}
		if e.Statistics.Minimum != nil || e.Statistics.Maximum != nil {
			o.Range = &ValueRange{Min: e.Statistics.Minimum, Max: e.Statistics.Maximum}
		}
		if e.Statistics.LowerCI != nil || e.Statistics.UpperCI != nil {
			o.Confidence = &ConfidenceInterval{Lower: e.Statistics.LowerCI, Upper: e.Statistics.UpperCI}
		}
		outlooks = append(outlooks, o)
	}
	return NormalizedCrop{Station: station, Outlooks: outlooks}
}
