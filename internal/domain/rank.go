package domain

import (
	"math"
	"sort"
)

// earthRadiusKm is the mean Earth radius used for great-circle distances.
const earthRadiusKm = 6371.0

// RankedCandidate pairs a station with its great-circle distance from a query
// origin. Derived per query, never persisted.
type RankedCandidate struct {
	Station    Station `json:"station"`
	DistanceKm float64 `json:"distance_km"`
}

// HaversineKm returns the great-circle distance in kilometers between two
// coordinate pairs given in decimal degrees.
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := radians(lat2 - lat1)
	dLon := radians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(radians(lat1))*math.Cos(radians(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// RankByDistance orders stations by distance from the origin, nearest first.
// Stations without usable coordinates are excluded rather than ranked as
// nearest by default. Ties keep the input order (stable sort). The input
// slice is never mutated; a new slice is returned.
func RankByDistance(originLat, originLon float64, stations []Station) []RankedCandidate {
	ranked := make([]RankedCandidate, 0, len(stations))
	for _, s := range stations {
		if !s.HasCoordinates() {
			continue
		}
		ranked = append(ranked, RankedCandidate{
			Station:    s,
			DistanceKm: HaversineKm(originLat, originLon, *s.Latitude, *s.Longitude),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].DistanceKm < ranked[j].DistanceKm
	})
	return ranked
}
