// Package feed loads hospital records from the upstream backend, falling back
// to the static seed set when the backend cannot be used.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"bedfinder-backend/config"
	"bedfinder-backend/internal/logging"
	"bedfinder-backend/internal/model"
	"bedfinder-backend/internal/seed"
	"bedfinder-backend/internal/store"
)

// Source names where the current hospital set came from.
type Source string

const (
	SourceFeed Source = "feed"
	SourceSeed Source = "seed"
)

// Notifier receives the ids of hospitals whose ER availability reopened.
type Notifier interface {
	Dispatch(hospitalID string)
}

// Service loads and refreshes the hospital set.
type Service struct {
	cfg      config.FeedConfig
	store    store.Store
	client   *http.Client
	notifier Notifier
	now      func() time.Time
	log      zerolog.Logger
}

// NewService creates a feed service. notifier may be nil.
func NewService(cfg config.FeedConfig, s store.Store, notifier Notifier) *Service {
	logger := logging.Component("feed")

	var transport http.RoundTripper = &http.Transport{}
	if cfg.HTTPProxy != "" {
		proxyURL, err := url.Parse(cfg.HTTPProxy)
		if err != nil {
			logger.Warn().Err(err).Str("proxy", cfg.HTTPProxy).Msg("invalid proxy URL, feed will not use a proxy")
		} else {
			transport = &http.Transport{Proxy: http.ProxyURL(proxyURL)}
		}
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Service{
		cfg:   cfg,
		store: s,
		client: &http.Client{
			Transport: transport,
			Timeout:   timeout,
		},
		notifier: notifier,
		now:      func() time.Time { return time.Now().UTC() },
		log:      logger,
	}
}

// LoadInitial populates the store once at startup. Feed failures are logged
// and answered with the seed set; only store failures are returned.
func (s *Service) LoadInitial(ctx context.Context) (Source, error) {
	now := s.now()

	if s.cfg.Enabled && s.cfg.URL != "" {
		hospitals, err := s.load(ctx, now)
		if err != nil {
			s.log.Warn().Err(err).Msg("hospital feed unavailable, using seed data")
		} else {
			if _, err := s.store.ReplaceHospitals(ctx, hospitals); err != nil {
				return "", fmt.Errorf("failed to store feed hospitals: %w", err)
			}
			s.log.Info().Int("hospitals", len(hospitals)).Msg("loaded hospitals from feed")
			return SourceFeed, nil
		}
	}

	hospitals := seed.Hospitals(now)
	if _, err := s.store.ReplaceHospitals(ctx, hospitals); err != nil {
		return "", fmt.Errorf("failed to store seed hospitals: %w", err)
	}
	s.log.Info().Int("hospitals", len(hospitals)).Msg("loaded seed hospitals")
	return SourceSeed, nil
}

// Refresh re-reads the feed. On any failure the current data is kept.
func (s *Service) Refresh(ctx context.Context) error {
	hospitals, err := s.load(ctx, s.now())
	if err != nil {
		return err
	}

	reopened, err := s.store.ReplaceHospitals(ctx, hospitals)
	if err != nil {
		return fmt.Errorf("failed to store feed hospitals: %w", err)
	}

	if len(reopened) > 0 && s.notifier != nil {
		s.log.Info().Int("hospitals", len(reopened)).Msg("dispatching bed alerts")
		for _, id := range reopened {
			s.notifier.Dispatch(id)
		}
	}
	return nil
}

// Run refreshes the feed periodically until ctx is cancelled. It returns at
// once when the feed is disabled or no refresh interval is configured.
func (s *Service) Run(ctx context.Context) {
	if !s.cfg.Enabled || s.cfg.URL == "" || s.cfg.RefreshInterval <= 0 {
		s.log.Info().Msg("feed refresh is disabled")
		return
	}
	s.log.Info().Dur("interval", s.cfg.RefreshInterval).Msg("starting feed refresh")

	timer := time.NewTimer(s.cfg.RefreshInterval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("feed refresh shutting down")
			return
		case <-timer.C:
			if err := s.Refresh(ctx); err != nil {
				s.log.Warn().Err(err).Msg("feed refresh failed, keeping current data")
			}
			timer.Reset(s.cfg.RefreshInterval)
		}
	}
}

// load fetches and maps the feed. A feed with no usable record is an error.
func (s *Service) load(ctx context.Context, now time.Time) ([]model.Hospital, error) {
	items, err := s.fetch(ctx)
	if err != nil {
		return nil, err
	}
	hospitals := s.toHospitals(items, now)
	if len(hospitals) == 0 {
		return nil, fmt.Errorf("feed returned no usable hospitals (%d records)", len(items))
	}
	return hospitals, nil
}

func (s *Service) toHospitals(items []Item, now time.Time) []model.Hospital {
	out := make([]model.Hospital, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, it := range items {
		h := it.ToHospital(now)
		if err := h.Validate(); err != nil {
			s.log.Warn().Err(err).Msg("skipping invalid feed record")
			continue
		}
		if seen[h.ID] {
			s.log.Warn().Str("id", h.ID).Msg("skipping duplicate feed record")
			continue
		}
		seen[h.ID] = true
		out = append(out, h)
	}
	return out
}

// fetch reads the complete hospital list from the upstream backend.
func (s *Service) fetch(ctx context.Context) ([]Item, error) {
	endpoint := strings.TrimRight(s.cfg.URL, "/") + "/api/hospitals"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("received non-200 status code: %d", resp.StatusCode)
	}

	var body Response
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode feed response: %w", err)
	}
	return body.Hospitals, nil
}
