// Package liveness nudges ER availability up or down on a fixed interval so
// the served data keeps moving between upstream refreshes.
package liveness

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"bedfinder-backend/internal/logging"
	"bedfinder-backend/internal/model"
	"bedfinder-backend/internal/store"
)

// Notifier receives the ids of hospitals whose ER availability reopened.
type Notifier interface {
	Dispatch(hospitalID string)
}

// Ticker applies a fair +1/-1 step to every hospital's ER count per tick.
type Ticker struct {
	store    store.Store
	interval time.Duration
	notifier Notifier
	now      func() time.Time
	log      zerolog.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// NewTicker creates a ticker. notifier may be nil.
func NewTicker(s store.Store, interval time.Duration, notifier Notifier) *Ticker {
	return &Ticker{
		store:    s,
		interval: interval,
		notifier: notifier,
		now:      func() time.Time { return time.Now().UTC() },
		log:      logging.Component("liveness"),
		rng:      rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x9e3779b97f4a7c15)),
	}
}

// WithRand replaces the random source.
func (t *Ticker) WithRand(r *rand.Rand) *Ticker {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rng = r
	return t
}

func (t *Ticker) step(model.Hospital) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.rng.IntN(2) == 0 {
		return -1
	}
	return 1
}

// Tick performs one mutation round and dispatches alerts for reopened hospitals.
func (t *Ticker) Tick(ctx context.Context) ([]string, error) {
	reopened, err := t.store.MutateERAvailability(ctx, t.now(), t.step)
	if err != nil {
		return nil, err
	}
	if t.notifier != nil {
		for _, id := range reopened {
			t.notifier.Dispatch(id)
		}
	}
	return reopened, nil
}

// Run ticks every interval until ctx is cancelled.
func (t *Ticker) Run(ctx context.Context) {
	if t.interval <= 0 {
		t.log.Info().Msg("liveness ticker disabled")
		return
	}
	t.log.Info().Dur("interval", t.interval).Msg("starting liveness ticker")

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			t.log.Info().Msg("liveness ticker shutting down")
			return
		case <-ticker.C:
			reopened, err := t.Tick(ctx)
			if err != nil {
				t.log.Error().Err(err).Msg("availability tick failed")
				continue
			}
			if len(reopened) > 0 {
				t.log.Info().Strs("hospitals", reopened).Msg("ER beds reopened")
			}
		}
	}
}
