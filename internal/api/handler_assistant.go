package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"bedfinder-backend/internal/apperr"
	"bedfinder-backend/internal/geo"
	"bedfinder-backend/internal/model"
	"bedfinder-backend/internal/recommend"
)

type assistantRequest struct {
	Message string   `json:"message" binding:"required"`
	Lat     *float64 `json:"lat"`
	Lng     *float64 `json:"lng"`
}

type assistantResponse struct {
	Intent       recommend.Intent `json:"intent"`
	Summary      string           `json:"summary"`
	MatchedCount int              `json:"matchedCount"`
	TopPick      *hospitalView    `json:"topPick"`
	Alternates   []hospitalView   `json:"alternates"`
	BedType      string           `json:"bedType"`
	BedCount     int              `json:"bedCount"`
	WaitMinutes  int              `json:"waitMinutes"`
	Reasons      []string         `json:"reasons"`
	Advisory     string           `json:"advisory,omitempty"`
}

// PostAssistant answers a free-text description of the patient's situation
// with a recommended hospital and up to two alternates.
func (h *Handler) PostAssistant(c *gin.Context) {
	var req assistantRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		h.respondError(c, apperr.Validation("message is required"))
		return
	}
	if (req.Lat == nil) != (req.Lng == nil) {
		h.respondError(c, apperr.Validation("lat and lng must be given together"))
		return
	}

	ctx := c.Request.Context()
	hospitals, err := h.store.ListHospitals(ctx)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if req.Lat != nil {
		ref := model.Coordinates{Lat: *req.Lat, Lng: *req.Lng}
		if !geo.ValidCoordinates(ref) {
			h.respondError(c, apperr.Validation("lat and lng must be valid coordinates"))
			return
		}
		geo.Annotate(hospitals, ref)
	}

	res := recommend.Recommend(req.Message, hospitals)

	if delay := h.cfg.Assistant.ThinkingDelay; delay > 0 {
		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			c.AbortWithStatus(http.StatusRequestTimeout)
			return
		}
	}

	c.JSON(http.StatusOK, toAssistantResponse(res))
}

func toAssistantResponse(res recommend.Result) assistantResponse {
	out := assistantResponse{
		Intent:       res.Intent,
		Summary:      res.Summary(),
		MatchedCount: res.MatchedCount,
		Alternates:   viewsOf(res.Alternates),
		BedType:      res.BedType,
		BedCount:     res.BedCount,
		WaitMinutes:  res.WaitMinutes,
		Reasons:      res.Reasons,
		Advisory:     res.Advisory,
	}
	if res.TopPick != nil {
		v := viewOf(*res.TopPick)
		out.TopPick = &v
	}
	if out.Reasons == nil {
		out.Reasons = []string{}
	}
	return out
}
