package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"

	"bedfinder-backend/config"
	"bedfinder-backend/internal/api"
	"bedfinder-backend/internal/db"
	"bedfinder-backend/internal/feed"
	"bedfinder-backend/internal/geo"
	"bedfinder-backend/internal/liveness"
	"bedfinder-backend/internal/logging"
	"bedfinder-backend/internal/notification"
	"bedfinder-backend/internal/store"
)

// dispatcher is the sink for reopened-hospital alerts shared by the feed and
// the liveness ticker.
type dispatcher interface {
	Dispatch(hospitalID string)
}

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logging.Init("bedfinder", "development")
		log.Fatal().Err(err).Str("path", configPath).Msg("failed to load configuration")
	}
	logging.Init("bedfinder", cfg.Env)
	log.Info().Str("path", configPath).Msg("configuration loaded")

	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize database")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appStore := store.NewGormStore(gormDB)

	var (
		webpushOptions *webpush.Options
		alerts         dispatcher
	)
	if cfg.Push.Enabled() {
		webpushOptions = &webpush.Options{
			VAPIDPublicKey:  cfg.Push.PublicKey,
			VAPIDPrivateKey: cfg.Push.PrivateKey,
			Subscriber:      cfg.Push.Subject,
			TTL:             cfg.Push.TTL,
		}
		pool := notification.NewWorkerPool(cfg.WorkerPool.Size, appStore, webpushOptions)
		pool.Start(ctx)
		alerts = pool
	} else {
		log.Warn().Msg("VAPID keys are not configured; bed alerts are disabled")
	}

	feedSvc := feed.NewService(cfg.Feed, appStore, alerts)
	source, err := feedSvc.LoadInitial(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load hospitals")
	}
	log.Info().Str("source", string(source)).Msg("hospital data ready")
	go feedSvc.Run(ctx)

	if cfg.Liveness.Enabled {
		go liveness.NewTicker(appStore, cfg.Liveness.Interval, alerts).Run(ctx)
	}

	var geocoder geo.Geocoder
	if cfg.Maps.APIKey != "" {
		geocoder = geo.NewGoogleGeocoder(cfg.Maps.GeocodeURL, cfg.Maps.APIKey, time.Duration(cfg.Maps.TimeoutSeconds)*time.Second)
	} else {
		log.Warn().Msg("GOOGLE_MAPS_API_KEY is not set; geocoding and maps are disabled")
	}

	handler := api.NewHandler(appStore, geocoder, cfg, webpushOptions)
	router := api.NewRouter(handler, cfg.Server)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "X-Client-ID"},
		ExposedHeaders: []string{"X-Client-ID", "X-Cache"},
	}).Handler(router)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           corsHandler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server ListenAndServe")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	log.Info().Msg("shutdown signal received, stopping services")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("HTTP server Shutdown")
	}

	log.Info().Msg("server gracefully stopped")
}
