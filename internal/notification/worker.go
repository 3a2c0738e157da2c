package notification

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/SherClockHolmes/webpush-go"
	"go.uber.org/zap"

	"mundox-portal-bff/config"
	"mundox-portal-bff/internal/model"
	"mundox-portal-bff/internal/store"
)

// Message is the JSON payload delivered to admin browsers.
type Message struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

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

// Options builds the webpush options from config, or nil when the VAPID keys
// are not configured.
func Options(cfg config.PushConfig) *webpush.Options {
	if !cfg.Enabled() {
		return nil
	}
	return &webpush.Options{
		Subscriber:      cfg.Subject,
		VAPIDPublicKey:  cfg.PublicKey,
		VAPIDPrivateKey: cfg.PrivateKey,
		TTL:             cfg.TTL,
	}
}

// WorkerPool fans admin notifications out to every stored push subscription.
type WorkerPool struct {
	size    int
	jobs    chan Message
	store   store.Store
	webpush *webpush.Options
	sender  NotificationSender
	log     *zap.Logger
	wg      sync.WaitGroup
}

// NewWorkerPool creates a new worker pool. A nil webpushOptions disables push:
// Dispatch becomes a no-op.
func NewWorkerPool(cfg config.WorkerPoolConfig, st store.Store, webpushOptions *webpush.Options, log *zap.Logger) *WorkerPool {
	size := cfg.Size
	if size <= 0 {
		size = 1
	}
	queue := cfg.QueueSize
	if queue <= 0 {
		queue = size
	}
	return &WorkerPool{
		size:    size,
		jobs:    make(chan Message, queue),
		store:   st,
		webpush: webpushOptions,
		sender:  &WebPushSender{},
		log:     log,
	}
}

// SetSender replaces the push transport.
func (wp *WorkerPool) SetSender(s NotificationSender) {
	wp.sender = s
}

// Enabled reports whether push delivery is configured.
func (wp *WorkerPool) Enabled() bool {
	return wp.webpush != nil
}

// Start launches the worker goroutines. They exit when ctx is cancelled.
func (wp *WorkerPool) Start(ctx context.Context) {
	if !wp.Enabled() {
		wp.log.Info("Push notifications disabled, VAPID keys not configured")
		return
	}
	for i := 0; i < wp.size; i++ {
		wp.wg.Add(1)
		go wp.worker(ctx, i)
	}
}

// Wait blocks until every worker has returned.
func (wp *WorkerPool) Wait() {
	wp.wg.Wait()
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	defer wp.wg.Done()
	wp.log.Debug("Worker started", zap.Int("worker", id))
	for {
		select {
		case msg := <-wp.jobs:
			wp.broadcast(ctx, msg)
		case <-ctx.Done():
			wp.log.Debug("Worker shutting down", zap.Int("worker", id))
			return
		}
	}
}

// Dispatch queues a message without blocking. When the queue is full the
// message is dropped.
func (wp *WorkerPool) Dispatch(msg Message) bool {
	if !wp.Enabled() {
		return false
	}
	select {
	case wp.jobs <- msg:
		return true
	default:
		wp.log.Warn("Notification queue full, dropping message", zap.String("title", msg.Title))
		return false
	}
}

func (wp *WorkerPool) broadcast(ctx context.Context, msg Message) {
	subscriptions, err := wp.store.ListPushSubscriptions(ctx)
	if err != nil {
		wp.log.Error("Error fetching push subscriptions", zap.Error(err))
		return
	}
	if len(subscriptions) == 0 {
		return
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		wp.log.Error("Error encoding notification", zap.Error(err))
		return
	}

	wp.log.Info("Sending admin notifications", zap.String("title", msg.Title), zap.Int("subscriptions", len(subscriptions)))
	for _, sub := range subscriptions {
		wp.sendNotification(ctx, sub, payload)
	}
}

// sendNotification sends a single web push notification.
func (wp *WorkerPool) sendNotification(ctx context.Context, sub model.PushSubscription, payload []byte) {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := wp.sender.Send(payload, wpSub, wp.webpush)
	if err != nil {
		wp.log.Warn("Error sending notification", zap.String("endpoint", sub.Endpoint), zap.Error(err))
		return
	}
	defer resp.Body.Close()

	// Handle expired subscriptions
	if resp.StatusCode == http.StatusGone {
		wp.log.Info("Subscription expired, deleting", zap.String("endpoint", sub.Endpoint))
		if err := wp.store.DeletePushSubscription(ctx, sub.Endpoint); err != nil {
			wp.log.Warn("Failed to delete expired subscription", zap.String("endpoint", sub.Endpoint), zap.Error(err))
		}
	}
}
