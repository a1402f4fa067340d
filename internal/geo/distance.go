package geo

import (
	"math"

	"bedfinder-backend/internal/model"
)

const (
	earthRadiusMiles = 3958.8
	// average urban driving speed used for travel estimates
	urbanSpeedMPH = 18.0
)

// DistanceMiles is the great-circle distance between two points.
func DistanceMiles(a, b model.Coordinates) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusMiles * math.Asin(math.Min(1, math.Sqrt(h)))
}

// TravelMinutes estimates a drive time for the given distance.
func TravelMinutes(miles float64) int {
	return int(math.Round(miles / urbanSpeedMPH * 60))
}

// Annotate sets distance (rounded to 0.1 mile) and travel time on every
// hospital relative to ref.
func Annotate(hospitals []model.Hospital, ref model.Coordinates) {
	for i := range hospitals {
		miles := math.Round(DistanceMiles(ref, hospitals[i].Address.Coordinates)*10) / 10
		hospitals[i].SetDerived(miles, TravelMinutes(miles))
	}
}

// ValidCoordinates reports whether c is a real latitude/longitude pair.
func ValidCoordinates(c model.Coordinates) bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lng >= -180 && c.Lng <= 180 &&
		!math.IsNaN(c.Lat) && !math.IsNaN(c.Lng)
}
