package parse

import (
	"fmt"
	"regexp"
	"strconv"

	"bedfinder-backend/internal/model"
)

var coordsRe = regexp.MustCompile(`^\s*(-?\d+(?:\.\d+)?)\s*[,;]\s*(-?\d+(?:\.\d+)?)\s*$`)

// Coordinates parses "lat,lng" or "lat;lng".
func Coordinates(s string) (model.Coordinates, error) {
	m := coordsRe.FindStringSubmatch(s)
	if m == nil {
		return model.Coordinates{}, fmt.Errorf("invalid coordinates %q", s)
	}

	lat, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return model.Coordinates{}, fmt.Errorf("invalid latitude %q: %w", m[1], err)
	}
	lng, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return model.Coordinates{}, fmt.Errorf("invalid longitude %q: %w", m[2], err)
	}

	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return model.Coordinates{}, fmt.Errorf("coordinates out of range: %q", s)
	}
	return model.Coordinates{Lat: lat, Lng: lng}, nil
}
