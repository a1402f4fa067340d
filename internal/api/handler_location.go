package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"bedfinder-backend/internal/apperr"
	"bedfinder-backend/internal/geo"
	"bedfinder-backend/internal/model"
	"bedfinder-backend/internal/mw"
	"bedfinder-backend/internal/store"
)

type geocodeRequest struct {
	Address string `json:"address" binding:"required"`
}

// PostGeocode resolves a free-form address to coordinates.
func (h *Handler) PostGeocode(c *gin.Context) {
	var req geocodeRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Address) == "" {
		h.respondError(c, apperr.Validation("address is required"))
		return
	}
	if h.geocoder == nil {
		h.respondError(c, geo.ErrMissingAPIKey)
		return
	}

	loc, err := h.geocoder.Geocode(c.Request.Context(), strings.TrimSpace(req.Address))
	if err != nil {
		body := gin.H{"error": apperr.Message(err)}
		if status, ok := geo.ProviderStatus(err); ok {
			body["status"] = status
		}
		h.log.Warn().Err(err).Msg("geocoding failed")
		c.AbortWithStatusJSON(apperr.HTTPStatus(err), body)
		return
	}
	c.JSON(http.StatusOK, loc)
}

type locationResponse struct {
	ClientID        string            `json:"clientId"`
	LocationDenied  bool              `json:"locationDenied"`
	Prompt          bool              `json:"prompt"`
	Advisory        string            `json:"advisory,omitempty"`
	DefaultLocation model.Coordinates `json:"defaultLocation"`
}

// GetLocationPreference tells the client whether to ask for geolocation.
func (h *Handler) GetLocationPreference(c *gin.Context) {
	clientID := mw.ClientIDFrom(c)

	denied := false
	pref, err := h.store.GetLocationPreference(c.Request.Context(), clientID)
	switch {
	case err == nil:
		denied = pref.LocationDenied
	case errors.Is(err, store.ErrNotFound):
	default:
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, locationResponse{
		ClientID:        clientID,
		LocationDenied:  denied,
		Prompt:          !denied,
		DefaultLocation: h.defaultLocation(),
	})
}

type putLocationRequest struct {
	ErrorCode int  `json:"error_code"`
	Granted   bool `json:"granted"`
}

// PutLocationPreference records the outcome of a browser geolocation
// request. A permission denial is remembered; a later grant clears it.
func (h *Handler) PutLocationPreference(c *gin.Context) {
	var req putLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, apperr.Validation("invalid request"))
		return
	}
	if req.Granted == (req.ErrorCode != 0) {
		h.respondError(c, apperr.Validation("exactly one of granted or error_code is required"))
		return
	}

	clientID := mw.ClientIDFrom(c)
	resp := locationResponse{ClientID: clientID, Prompt: true, DefaultLocation: h.defaultLocation()}

	var outcome geo.GeolocationOutcome
	if req.ErrorCode != 0 {
		outcome = geo.ClassifyGeolocationError(req.ErrorCode)
		resp.Advisory = outcome.Advisory
	}

	if req.Granted || outcome.Denied {
		pref := &model.LocationPreference{
			ClientID:       clientID,
			LocationDenied: outcome.Denied,
			UpdatedAt:      time.Now().UTC(),
		}
		if err := h.store.SaveLocationPreference(c.Request.Context(), pref); err != nil {
			h.respondError(c, err)
			return
		}
		resp.LocationDenied = pref.LocationDenied
		resp.Prompt = !pref.LocationDenied
	} else {
		pref, err := h.store.GetLocationPreference(c.Request.Context(), clientID)
		switch {
		case err == nil:
			resp.LocationDenied = pref.LocationDenied
			resp.Prompt = !pref.LocationDenied
		case !errors.Is(err, store.ErrNotFound):
			h.respondError(c, err)
			return
		}
	}

	c.JSON(http.StatusOK, resp)
}

// GetMapConfig hands the browser the maps key and default centre.
func (h *Handler) GetMapConfig(c *gin.Context) {
	if h.cfg.Maps.APIKey == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"configured":    false,
			"error":         apperr.Message(geo.ErrMissingAPIKey),
			"defaultCenter": h.defaultLocation(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"configured":    true,
		"apiKey":        h.cfg.Maps.APIKey,
		"defaultCenter": h.defaultLocation(),
	})
}
