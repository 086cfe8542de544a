package agrohub

import (
	"bytes"
	"strconv"

	"github.com/meskel/agroclimate-mcp/internal/domain"
)

// Upstream API response types. Every endpoint wraps its payload in a "data"
// envelope. Coordinates arrive as JSON numbers, numeric strings, or null
// depending on the upstream version; flexFloat absorbs all three.

type regionsResponse struct {
	Data []regionDTO `json:"data"`
}

type regionDTO struct {
	ID   int    `json:"id"`
	ISO2 string `json:"iso2"`
	Name string `json:"name"`
}

type stationsResponse struct {
	Data []stationDTO `json:"data"`
}

type stationDTO struct {
	ID           int           `json:"id"`
	Name         string        `json:"name"`
	Latitude     flexFloat     `json:"latitude"`
	Longitude    flexFloat     `json:"longitude"`
	Municipality *municipality `json:"municipality"`
}

type municipality struct {
	Name  string `json:"name"`
	State *struct {
		Name   string `json:"name"`
		Region *struct {
			Name string `json:"name"`
		} `json:"region"`
	} `json:"state"`
}

type seasonalResponse struct {
	Data struct {
		StationID int `json:"station_id"`
		Forecasts []struct {
			Year          int `json:"year"`
			Month         int `json:"month"`
			Probabilities struct {
				Lower  *float64 `json:"lower"`
				Normal *float64 `json:"normal"`
				Upper  *float64 `json:"upper"`
			} `json:"probabilities"`
		} `json:"forecasts"`
	} `json:"data"`
}

type cropResponse struct {
	Data struct {
		StationID int `json:"station_id"`
		Forecasts []struct {
			Cultivar   string `json:"cultivar"`
			Soil       string `json:"soil"`
			Statistics struct {
				Median  *float64 `json:"median"`
				Mean    *float64 `json:"mean"`
				Minimum *float64 `json:"minimum"`
				Maximum *float64 `json:"maximum"`
				LowerCI *float64 `json:"lower_ci"`
				UpperCI *float64 `json:"upper_ci"`
			} `json:"statistics"`
		} `json:"forecasts"`
	} `json:"data"`
}

// flexFloat is an optional float that tolerates the upstream's mixed
// encodings. A value that does not parse as a number is treated as absent
// rather than failing the whole station list.
type flexFloat struct {
	value *float64
}

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	s := string(b)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	f.value = &v
	return nil
}

func (d stationDTO) toDomain() domain.Station {
	s := domain.Station{
		ID:        d.ID,
		Name:      d.Name,
		Latitude:  d.Latitude.value,
		Longitude: d.Longitude.value,
	}
	if d.Municipality != nil {
		admin := &domain.AdminPath{Municipality: d.Municipality.Name}
		if d.Municipality.State != nil {
			admin.State = d.Municipality.State.Name
			if d.Municipality.State.Region != nil {
				admin.Region = d.Municipality.State.Region.Name
			}
		}
		s.Admin = admin
	}
	return s
}

func (r seasonalResponse) toDomain() domain.SeasonalForecast {
	out := domain.SeasonalForecast{StationID: r.Data.StationID}
	for _, f := range r.Data.Forecasts {
		out.Entries = append(out.Entries, domain.SeasonalEntry{
			Year:  f.Year,
			Month: f.Month,
			Probabilities: domain.TercileProbabilities{
				Lower:  f.Probabilities.Lower,
				Normal: f.Probabilities.Normal,
				Upper:  f.Probabilities.Upper,
			},
		})
	}
	return out
}

func (r cropResponse) toDomain() domain.CropForecast {
	out := domain.CropForecast{StationID: r.Data.StationID}
	for _, f := range r.Data.Forecasts {
		out.Entries = append(out.Entries, domain.CropEntry{
			Cultivar: f.Cultivar,
			Soil:     f.Soil,
			Statistics: domain.CropStatistics{
				Median:  f.Statistics.Median,
				Mean:    f.Statistics.Mean,
				Minimum: f.Statistics.Minimum,
				Maximum: f.Statistics.Maximum,
				LowerCI: f.Statistics.LowerCI,
				UpperCI: f.Statistics.UpperCI,
			},
		})
	}
	return out
}
