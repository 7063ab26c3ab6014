package geo

import "math"

// earthRadiusKm is the mean Earth radius used by the great-circle formula.
const earthRadiusKm = 6371

// UnknownDistanceKm is assigned to candidates with no declared position so
// any finite radius excludes them instead of erroring.
const UnknownDistanceKm = 9999

type Position struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// HaversineKm returns the great-circle distance between a and b in
// kilometers.
func HaversineKm(a, b Position) float64 {
	toRad := func(v float64) float64 { return v * math.Pi / 180 }

	dLat := toRad(b.Lat - a.Lat)
	dLng := toRad(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(a.Lat))*math.Cos(toRad(b.Lat))*
			math.Sin(dLng/2)*math.Sin(dLng/2)

	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// Candidate is a worker as seen by the filter. Pos is nil when the worker
// is not broadcasting a position.
type Candidate struct {
	ID        string
	Pos       *Position
	Available bool
}

// Match is a candidate that survived filtering, annotated with its distance
// from the origin.
type Match struct {
	Candidate
	DistanceKm float64
}

// Filter keeps available candidates within maxKm of origin. Candidates
// without a position get UnknownDistanceKm and fall out of any finite
// radius. Output order is unspecified; ranking happens downstream.
func Filter(origin Position, candidates []Candidate, maxKm float64) []Match {
	var res []Match
	for _, c := range candidates {
		if !c.Available {
			continue
		}
		dist := float64(UnknownDistanceKm)
		if c.Pos != nil {
			dist = HaversineKm(origin, *c.Pos)
		}
		if dist <= maxKm {
			res = append(res, Match{Candidate: c, DistanceKm: dist})
		}
	}
	return res
}
