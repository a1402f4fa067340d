package geo

// Browser geolocation error codes.
const (
	CodePermissionDenied    = 1
	CodePositionUnavailable = 2
	CodeTimeout             = 3
)

// GeolocationOutcome is the advisory for a failed browser position lookup.
type GeolocationOutcome struct {
	Code     int    `json:"code"`
	Denied   bool   `json:"denied"`
	Advisory string `json:"advisory"`
}

// ClassifyGeolocationError maps a browser error code to an advisory. Only a
// permission denial is meant to be remembered.
func ClassifyGeolocationError(code int) GeolocationOutcome {
	switch code {
	case CodePermissionDenied:
		return GeolocationOutcome{
			Code:     code,
			Denied:   true,
			Advisory: "Location access was denied. Showing hospitals near the default location; you can search by address instead.",
		}
	case CodePositionUnavailable:
		return GeolocationOutcome{
			Code:     code,
			Advisory: "Your location is currently unavailable. Showing hospitals near the default location.",
		}
	case CodeTimeout:
		return GeolocationOutcome{
			Code:     code,
			Advisory: "Locating you took too long. Showing hospitals near the default location.",
		}
	default:
		return GeolocationOutcome{
			Code:     code,
			Advisory: "Could not determine your location. Showing hospitals near the default location.",
		}
	}
}
