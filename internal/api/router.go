package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"bedfinder-backend/config"
	"bedfinder-backend/internal/logging"
	"bedfinder-backend/internal/mw"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(handler *Handler, cfg config.ServerConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), mw.RequestLogger(logging.Component("http")))

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst)

	ttl := time.Duration(cfg.CacheTTLSeconds) * time.Second
	caching := mw.Cache(cache.New(ttl, 10*time.Minute), ttl)

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		api.GET("/hospitals", caching, handler.ListHospitals)
		api.GET("/hospitals/filter", caching, handler.ListHospitals)
		api.GET("/hospitals/nearby", caching, handler.NearbyHospitals)
		api.GET("/hospitals/:id", caching, handler.GetHospital)
		api.GET("/hospitals/:id/history", handler.GetHospitalHistory)
		api.GET("/stats", caching, handler.GetStats)

		api.POST("/assistant", handler.PostAssistant)
		api.POST("/geocode", handler.PostGeocode)
		api.GET("/map-config", handler.GetMapConfig)

		location := api.Group("/location", mw.ClientID())
		location.GET("", handler.GetLocationPreference)
		location.PUT("", handler.PutLocationPreference)

		alerts := api.Group("/alerts")
		alerts.GET("/subscriptions", handler.GetSubscription)
		alerts.PUT("/subscriptions", handler.PutSubscription)
		alerts.DELETE("/subscriptions", handler.DeleteSubscription)
		alerts.GET("/vapid_public_key", handler.GetVAPIDPublicKey)
	}

	return r
}
