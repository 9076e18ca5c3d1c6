package models

import "math"

const earthRadiusKm = 6371.0

// HaversineKm returns the great-circle distance in kilometers between two
// points. Used both for the precise radius cut and for the distance
// reported to clients, so the two can never disagree.
func HaversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180.0
	dLng := (lng2 - lng1) * math.Pi / 180.0

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180.0)*math.Cos(lat2*math.Pi/180.0)*
			math.Sin(dLng/2)*math.Sin(dLng/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

// BoundingBoxDeltas returns lat/lng half-widths of a box guaranteed to
// contain the circle of radiusKm around a point at the given latitude.
// One degree of latitude is ~111 km; longitude degrees shrink with cos(lat).
func BoundingBoxDeltas(lat, radiusKm float64) (latDelta, lngDelta float64) {
	latDelta = radiusKm / 111.0

	cosLat := math.Cos(lat * math.Pi / 180.0)
	if cosLat < 0.01 {
		cosLat = 0.01
	}
	lngDelta = radiusKm / (111.0 * cosLat)
	return latDelta, lngDelta
}

// ValidCoordinates reports whether lat/lng form a real WGS84 point.
func ValidCoordinates(lat, lng float64) bool {
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}
