package api

import (
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"bedfinder-backend/internal/apperr"
	"bedfinder-backend/internal/geo"
	"bedfinder-backend/internal/model"
	"bedfinder-backend/internal/parse"
	"bedfinder-backend/internal/search"
)

const defaultNearbyRadiusMiles = 25

// ListHospitals returns the hospitals matching the query string filters.
//
//	GET /api/hospitals?q=&filters=er,distance-10&bedType=&emergency=&available=&lat=&lng=
func (h *Handler) ListHospitals(c *gin.Context) {
	criteria, err := criteriaFromQuery(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	ref, hasRef, err := referenceFromQuery(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	hospitals, err := h.store.ListHospitals(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	if hasRef {
		geo.Annotate(hospitals, ref)
	}

	result := search.Apply(hospitals, criteria)
	c.JSON(http.StatusOK, gin.H{"hospitals": viewsOf(result), "count": len(result)})
}

// NearbyHospitals returns hospitals within radius miles of lat/lng.
func (h *Handler) NearbyHospitals(c *gin.Context) {
	ref, hasRef, err := referenceFromQuery(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if !hasRef {
		h.respondError(c, apperr.Validation("lat and lng are required"))
		return
	}

	radius := float64(defaultNearbyRadiusMiles)
	if raw := c.Query("radius"); raw != "" {
		radius, err = strconv.ParseFloat(raw, 64)
		if err != nil || radius <= 0 || math.IsInf(radius, 0) {
			h.respondError(c, apperr.Validation("radius must be a positive number of miles"))
			return
		}
	}

	hospitals, err := h.store.ListHospitals(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	geo.Annotate(hospitals, ref)

	nearby := search.Nearby(hospitals, radius)
	c.JSON(http.StatusOK, gin.H{"hospitals": viewsOf(nearby), "count": len(nearby)})
}

// GetHospital returns one hospital, with distance when lat/lng are given.
func (h *Handler) GetHospital(c *gin.Context) {
	ref, hasRef, err := referenceFromQuery(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	hospital, err := h.store.GetHospital(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	if hasRef {
		one := []model.Hospital{*hospital}
		geo.Annotate(one, ref)
		hospital = &one[0]
	}
	c.JSON(http.StatusOK, viewOf(*hospital))
}

// GetHospitalHistory returns recent availability changes of one hospital.
func (h *Handler) GetHospitalHistory(c *gin.Context) {
	id := c.Param("id")
	if _, err := h.store.GetHospital(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}

	limit := 50
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 500 {
			h.respondError(c, apperr.Validation("limit must be between 1 and 500"))
			return
		}
		limit = n
	}

	events, err := h.store.AvailabilityHistory(c.Request.Context(), id, limit)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"hospitalId": id, "events": events, "count": len(events)})
}

// GetStats returns aggregate figures over all hospitals.
func (h *Handler) GetStats(c *gin.Context) {
	stats, err := h.store.Stats(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	stats.AverageERWait = math.Round(stats.AverageERWait*10) / 10
	c.JSON(http.StatusOK, stats)
}

func criteriaFromQuery(c *gin.Context) (search.Criteria, error) {
	filters, err := parse.FilterTokens(parse.SplitList(c.Query("filters")))
	if err != nil {
		return search.Criteria{}, apperr.Validation(err.Error())
	}
	criteria := search.FromFilters(c.Query("q"), filters)

	if bt := c.Query("bedType"); bt != "" && !strings.EqualFold(bt, "all") {
		cat, ok := model.ParseBedCategory(bt)
		if !ok {
			return search.Criteria{}, apperr.Validation("unknown bed type " + strconv.Quote(bt))
		}
		criteria.BedTypes = append(criteria.BedTypes, cat)
	}

	if criteria.EmergencyOnly, err = boolQuery(c, "emergency"); err != nil {
		return search.Criteria{}, err
	}
	if criteria.AvailableOnly, err = boolQuery(c, "available"); err != nil {
		return search.Criteria{}, err
	}
	return criteria, nil
}

func boolQuery(c *gin.Context, key string) (bool, error) {
	raw := c.Query(key)
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, apperr.Validation(key + " must be true or false")
	}
	return v, nil
}

// referenceFromQuery reads the optional reference location from either
// lat/lng or near="lat,lng".
func referenceFromQuery(c *gin.Context) (model.Coordinates, bool, error) {
	if near := c.Query("near"); near != "" {
		ref, err := parse.Coordinates(near)
		if err != nil {
			return model.Coordinates{}, false, apperr.Validation(err.Error())
		}
		return ref, true, nil
	}

	latRaw, lngRaw := c.Query("lat"), c.Query("lng")
	if latRaw == "" && lngRaw == "" {
		return model.Coordinates{}, false, nil
	}
	lat, errLat := strconv.ParseFloat(latRaw, 64)
	lng, errLng := strconv.ParseFloat(lngRaw, 64)
	ref := model.Coordinates{Lat: lat, Lng: lng}
	if errLat != nil || errLng != nil || !geo.ValidCoordinates(ref) {
		return model.Coordinates{}, false, apperr.Validation("lat and lng must be valid coordinates")
	}
	return ref, true, nil
}
