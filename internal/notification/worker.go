package notification

import (
	"context"
	"fmt"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/rs/zerolog"

	"bedfinder-backend/internal/logging"
	"bedfinder-backend/internal/model"
	"bedfinder-backend/internal/store"
)

// NotificationSender defines the interface for sending a web push notification.
type NotificationSender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is a real implementation of NotificationSender using the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

const jobsPerWorker = 16

// WorkerPool sends bed alerts to the subscribers of hospitals whose ER
// availability reopened.
type WorkerPool struct {
	size    int
	jobs    chan string
	store   store.Store
	webpush *webpush.Options
	sender  NotificationSender
	log     zerolog.Logger
}

// NewWorkerPool creates a new worker pool.
func NewWorkerPool(size int, s store.Store, webpushOptions *webpush.Options) *WorkerPool {
	if size <= 0 {
		size = 1
	}
	return &WorkerPool{
		size:    size,
		jobs:    make(chan string, size*jobsPerWorker),
		store:   s,
		webpush: webpushOptions,
		sender:  &WebPushSender{},
		log:     logging.Component("alerts"),
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	wp.log.Debug().Int("worker", id).Msg("worker started")
	for {
		select {
		case hospitalID := <-wp.jobs:
			wp.sendAlertsForHospital(ctx, hospitalID)
		case <-ctx.Done():
			wp.log.Debug().Int("worker", id).Msg("worker shutting down")
			return
		}
	}
}

// Dispatch queues a hospital for alerting. The job is dropped when the queue
// is full.
func (wp *WorkerPool) Dispatch(hospitalID string) {
	select {
	case wp.jobs <- hospitalID:
	default:
		wp.log.Warn().Str("hospital_id", hospitalID).Msg("alert queue full, dropping job")
	}
}

// Jobs returns the jobs channel for testing.
func (wp *WorkerPool) Jobs() chan string {
	return wp.jobs
}

// AlertMessage is the text pushed when a hospital has ER capacity again.
func AlertMessage(hospitalName string) string {
	return fmt.Sprintf("%s has ER beds available again", hospitalName)
}

func (wp *WorkerPool) sendAlertsForHospital(ctx context.Context, hospitalID string) {
	subscriptions, err := wp.store.SubscriptionsForHospital(ctx, hospitalID)
	if err != nil {
		wp.log.Error().Err(err).Str("hospital_id", hospitalID).Msg("failed to fetch subscriptions")
		return
	}
	if len(subscriptions) == 0 {
		return
	}

	label := hospitalID
	if h, err := wp.store.GetHospital(ctx, hospitalID); err != nil {
		wp.log.Warn().Err(err).Str("hospital_id", hospitalID).Msg("failed to fetch hospital name")
	} else if h.Name != "" {
		label = h.Name
	}

	wp.log.Info().Str("hospital_id", hospitalID).Int("subscribers", len(subscriptions)).Msg("sending bed alerts")
	payload := []byte(AlertMessage(label))
	for _, sub := range subscriptions {
		wp.sendNotification(ctx, sub, payload)
	}
}

func (wp *WorkerPool) sendNotification(ctx context.Context, sub model.AlertSubscription, payload []byte) {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := wp.sender.Send(payload, wpSub, wp.webpush)
	if err != nil {
		wp.log.Error().Err(err).Str("endpoint", sub.Endpoint).Msg("failed to send alert")
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusGone {
		wp.log.Info().Str("endpoint", sub.Endpoint).Msg("subscription expired, deleting")
		if err := wp.store.DeleteSubscription(ctx, sub.Endpoint); err != nil {
			wp.log.Error().Err(err).Str("endpoint", sub.Endpoint).Msg("failed to delete expired subscription")
		}
	}
}
