package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
	"googlemaps.github.io/maps"

	"bedfinder-backend/internal/apperr"
	"bedfinder-backend/internal/logging"
	"bedfinder-backend/internal/model"
)

// Provider status codes of the geocoding API.
const (
	StatusOK            = "OK"
	StatusZeroResults   = "ZERO_RESULTS"
	StatusRequestDenied = "REQUEST_DENIED"
)

const (
	msgZeroResults   = "No results found for this location. Please try a different address or city name."
	msgRequestDenied = "Geocoding request denied. Please check your API key."
	msgNetwork       = "Failed to geocode address. Please check your internet connection."
	msgMissingKey    = "Map services are not configured. Please set GOOGLE_MAPS_API_KEY and restart the server."
)

// ErrMissingAPIKey is returned when no provider credential is configured.
var ErrMissingAPIKey = apperr.Config(msgMissingKey)

// Location is a geocoded place.
type Location struct {
	Coordinates      model.Coordinates `json:"coordinates"`
	FormattedAddress string            `json:"formattedAddress"`
}

// Geocoder turns a free-form address into a location.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (*Location, error)
}

// StatusError is a non-OK provider status.
type StatusError struct {
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("geocoding status %s", e.Status)
}

// StatusMessage maps a provider status to the message shown to the user.
func StatusMessage(status string) string {
	switch status {
	case StatusZeroResults:
		return msgZeroResults
	case StatusRequestDenied:
		return msgRequestDenied
	default:
		return fmt.Sprintf("Geocoding failed: %s", status)
	}
}

type geocodeResponse struct {
	Status       string                 `json:"status"`
	ErrorMessage string                 `json:"error_message"`
	Results      []maps.GeocodingResult `json:"results"`
}

// GoogleGeocoder calls the Google Geocoding JSON API.
type GoogleGeocoder struct {
	endpoint string
	apiKey   string
	client   *http.Client
	log      zerolog.Logger
}

// NewGoogleGeocoder creates a geocoder. An empty apiKey is accepted; every
// call then fails with ErrMissingAPIKey.
func NewGoogleGeocoder(endpoint, apiKey string, timeout time.Duration) *GoogleGeocoder {
	return &GoogleGeocoder{
		endpoint: endpoint,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: timeout},
		log:      logging.Component("geocoder"),
	}
}

// Geocode resolves address to its first result.
func (g *GoogleGeocoder) Geocode(ctx context.Context, address string) (*Location, error) {
	if g.apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if address == "" {
		return nil, apperr.Validation("address is required")
	}

	q := url.Values{
		"address": []string{address},
		"key":     []string{g.apiKey},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, apperr.Internal("failed to build geocoding request", err)
	}

	g.log.Debug().Str("address", address).Msg("geocoding request")
	resp, err := g.client.Do(req)
	if err != nil {
		return nil, apperr.External(msgNetwork, err)
	}
	defer resp.Body.Close()

	var body geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, apperr.External(msgNetwork, fmt.Errorf("decode geocoding response (http %d): %w", resp.StatusCode, err))
	}

	if body.Status == StatusOK && len(body.Results) > 0 {
		first := body.Results[0]
		return &Location{
			Coordinates: model.Coordinates{
				Lat: first.Geometry.Location.Lat,
				Lng: first.Geometry.Location.Lng,
			},
			FormattedAddress: first.FormattedAddress,
		}, nil
	}

	status := body.Status
	if status == StatusOK {
		status = StatusZeroResults
	}
	g.log.Warn().Str("status", status).Str("provider_message", body.ErrorMessage).Msg("geocoding failed")

	kind := apperr.KindExternal
	if status == StatusZeroResults {
		kind = apperr.KindNotFound
	}
	return nil, &apperr.Error{Kind: kind, Message: StatusMessage(status), Err: &StatusError{Status: status}}
}

// ProviderStatus extracts the provider status from a Geocode error, if any.
func ProviderStatus(err error) (string, bool) {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Status, true
	}
	return "", false
}
