package geo

import "math"

const earthRadiusKM = 6371.0

// Point is a latitude/longitude pair in degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// DistanceKM returns the great-circle distance between two points in
// kilometers using the haversine formula.
func DistanceKM(a, b Point) float64 {
	latA := radians(a.Lat)
	latB := radians(b.Lat)
	dLat := radians(b.Lat - a.Lat)
	dLon := radians(b.Lon - a.Lon)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(latA)*math.Cos(latB)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKM * math.Asin(math.Sqrt(h))
}

// WithinRadius reports whether b lies within radiusKM of a. The comparison
// uses the unrounded distance.
func WithinRadius(a, b Point, radiusKM float64) bool {
	return DistanceKM(a, b) <= radiusKM
}

// RoundKM rounds a distance to two decimal places for display.
func RoundKM(km float64) float64 {
	return math.Round(km*100) / 100
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
