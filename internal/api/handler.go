package api

import (
	"errors"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"bedfinder-backend/config"
	"bedfinder-backend/internal/apperr"
	"bedfinder-backend/internal/geo"
	"bedfinder-backend/internal/logging"
	"bedfinder-backend/internal/model"
	"bedfinder-backend/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store    store.Store
	geocoder geo.Geocoder
	cfg      *config.Config
	webpush  *webpush.Options
	log      zerolog.Logger
}

// NewHandler creates a new API handler. webpushOptions is nil when alerts
// are not configured.
func NewHandler(s store.Store, g geo.Geocoder, cfg *config.Config, webpushOptions *webpush.Options) *Handler {
	if cfg == nil {
		cfg = &config.Config{}
	}
	return &Handler{
		store:    s,
		geocoder: g,
		cfg:      cfg,
		webpush:  webpushOptions,
		log:      logging.Component("api"),
	}
}

// hospitalView is a hospital with its computed availability status.
type hospitalView struct {
	model.Hospital
	AvailabilityStatus model.AvailabilityStatus `json:"availabilityStatus"`
}

func viewOf(h model.Hospital) hospitalView {
	return hospitalView{Hospital: h, AvailabilityStatus: h.AvailabilityStatus()}
}

func viewsOf(hs []model.Hospital) []hospitalView {
	out := make([]hospitalView, len(hs))
	for i, h := range hs {
		out[i] = viewOf(h)
	}
	return out
}

func (h *Handler) defaultLocation() model.Coordinates {
	return model.Coordinates{Lat: h.cfg.Maps.DefaultLat, Lng: h.cfg.Maps.DefaultLng}
}

// respondError writes err with the status of its kind. Unclassified errors
// are logged and hidden behind a generic message.
func (h *Handler) respondError(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)
	var appErr *apperr.Error
	if !errors.As(err, &appErr) || status == http.StatusInternalServerError {
		h.log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, gin.H{"error": apperr.Message(err)})
}
