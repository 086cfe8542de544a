package domain

// Region is a country-level administrative area served by the upstream
// service. Exactly one region is resolved per deployment and reused for the
// process lifetime.
type Region struct {
	ID   int    `json:"id"`
	ISO2 string `json:"iso2"`
	Name string `json:"name"`
}

// AdminPath is the administrative chain a station belongs to, carried through
// for display only. Any level may be empty.
type AdminPath struct {
	Municipality string `json:"municipality,omitempty"`
	State        string `json:"state,omitempty"`
	Region       string `json:"region,omitempty"`
}

// Station is a fixed-location weather and forecast data source. Coordinates
// are optional: the upstream API sometimes omits them or sends values that do
// not parse, and such stations must never be ranked by distance.
type Station struct {
	ID        int        `json:"id"`
	Name      string     `json:"name"`
	Latitude  *float64   `json:"latitude,omitempty"`
	Longitude *float64   `json:"longitude,omitempty"`
	Admin     *AdminPath `json:"administrative_path,omitempty"`
}

// HasCoordinates reports whether the station carries a usable coordinate pair.
func (s Station) HasCoordinates() bool {
	return s.Latitude != nil && s.Longitude != nil
}
