package geo

import (
	"math"

	"github.com/nearmark/nearmark/internal/domain"
)

// earthRadiusMeters is the spherical Earth model radius used by the
// haversine formula.
const earthRadiusMeters = 6371000

func degToRad(d float64) float64 {
	return d * (math.Pi / 180)
}

// Distance returns the great-circle distance in meters between two positions
// using the haversine formula.
func Distance(a, b domain.Position) float64 {
	dLat := degToRad(b.Latitude - a.Latitude)
	dLon := degToRad(b.Longitude - a.Longitude)

	latA := degToRad(a.Latitude)
	latB := degToRad(b.Latitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(latA)*math.Cos(latB)*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusMeters * c
}

// Nearby returns the ids of all markers strictly closer than radiusMeters to
// user. A marker exactly at the radius boundary is excluded. The scan is a
// linear pass over the marker set; any substitute index must produce the same
// result set.
func Nearby(user domain.Position, markers []*domain.Marker, radiusMeters float64) []string {
	var ids []string
	for _, m := range markers {
		d := Distance(user, domain.Position{Latitude: m.Latitude, Longitude: m.Longitude})
		if d < radiusMeters {
			ids = append(ids, m.ID)
		}
	}
	return ids
}
