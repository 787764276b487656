// Package geo provides great-circle distance math and IP geolocation for
// the suspicion-scoring pipeline. Distance is computed with the haversine
// formula; geolocation is delegated to an external service behind the
// Resolver interface.
package geo

import "math"

// earthRadiusMiles is the mean Earth radius used by the haversine formula.
const earthRadiusMiles = 3956

// Point is a geographic coordinate in decimal degrees.
type Point struct {
	Lat  float64 `json:"latitude"`
	Long float64 `json:"longitude"`
}

// DistanceMiles returns the great-circle distance between a and b in miles.
func DistanceMiles(a, b Point) float64 {
	lat1 := radians(a.Lat)
	lat2 := radians(b.Lat)
	dLat := lat2 - lat1
	dLong := radians(b.Long) - radians(a.Long)

	h := math.Pow(math.Sin(dLat/2), 2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Pow(math.Sin(dLong/2), 2)
	c := 2 * math.Asin(math.Sqrt(h))

	return c * earthRadiusMiles
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
