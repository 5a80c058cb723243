package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sourcegraph/conc"

	"brigade/internal/analytics"
)

const (
	publishTimeout = 5 * time.Second
	queueSize      = 64
)

// AlertMessage is the body published for each computed dashboard
type AlertMessage struct {
	MessageID    string               `json:"message_id"`
	RestaurantID uint                 `json:"restaurant_id"`
	HealthScore  int                  `json:"health_score"`
	Alerts       []analytics.FeedItem `json:"alerts"`
	GeneratedAt  time.Time            `json:"generated_at"`
}

// Publisher sends dashboard alerts to a fanout exchange.
// RecordDashboard only enqueues; a single worker publishes in the background.
type Publisher struct {
	ch       Channel
	exchange string
	logger   *slog.Logger
	mu       sync.Mutex
	newID    func() string

	queue    chan *analytics.Dashboard
	queueMu  sync.RWMutex
	stopped  bool
	worker   conc.WaitGroup
	closeErr error
	once     sync.Once
}

var _ analytics.Recorder = (*Publisher)(nil)

// NewPublisher opens a channel on conn and declares a durable fanout exchange
func NewPublisher(conn Connection, exchange string, logger *slog.Logger) (*Publisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, err
	}

	if err := ch.ExchangeDeclare(
		exchange,
		"fanout",
		true,
		false,
		false,
		false,
		nil,
	); err != nil {
		ch.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
	}

	if logger == nil {
		logger = slog.Default()
	}
	p := &Publisher{
		ch:       ch,
		exchange: exchange,
		logger:   logger.With("component", "notify"),
		newID:    func() string { return uuid.New().String() },
		queue:    make(chan *analytics.Dashboard, queueSize),
	}
	p.worker.Go(p.drain)
	return p, nil
}

func (p *Publisher) drain() {
	for d := range p.queue {
		p.publish(d)
	}
}

func (p *Publisher) publish(d *analytics.Dashboard) {
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	if err := p.PublishDashboard(ctx, d); err != nil {
		p.logger.Error("alert publish failed", "restaurant_id", d.RestaurantID, "error", err)
		return
	}
	p.logger.Debug("alerts published", "restaurant_id", d.RestaurantID, "alerts", len(d.Alerts))
}

// PublishDashboard publishes the dashboard's top alerts as one message
func (p *Publisher) PublishDashboard(ctx context.Context, d *analytics.Dashboard) error {
	msg := AlertMessage{
		MessageID:    p.newID(),
		RestaurantID: d.RestaurantID,
		HealthScore:  d.HealthScore,
		Alerts:       d.Alerts,
		GeneratedAt:  d.GeneratedAt,
	}
	if msg.Alerts == nil {
		msg.Alerts = []analytics.FeedItem{}
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal alert message: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	err = p.ch.PublishWithContext(ctx,
		p.exchange,
		"",
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    msg.MessageID,
			Timestamp:    d.GeneratedAt,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish alerts for restaurant %d: %w", d.RestaurantID, err)
	}
	return nil
}

// ObserveAnalyzer is a no-op; only whole dashboards are published
func (p *Publisher) ObserveAnalyzer(analytics.Module, time.Duration) {}

// RecordDashboard queues d for publishing without waiting on the broker.
// The dashboard is dropped with a warning when the queue is full or the publisher is closed.
func (p *Publisher) RecordDashboard(d *analytics.Dashboard) {
	p.queueMu.RLock()
	defer p.queueMu.RUnlock()
	if p.stopped {
		p.logger.Warn("alert dropped, publisher closed", "restaurant_id", d.RestaurantID)
		return
	}
	select {
	case p.queue <- d:
	default:
		p.logger.Warn("alert queue full, dropping dashboard", "restaurant_id", d.RestaurantID)
	}
}

// Close stops accepting dashboards, publishes whatever is queued, then closes the channel
func (p *Publisher) Close() error {
	p.once.Do(func() {
		p.queueMu.Lock()
		p.stopped = true
		close(p.queue)
		p.queueMu.Unlock()

		p.worker.Wait()

		p.mu.Lock()
		defer p.mu.Unlock()
		p.closeErr = p.ch.Close()
	})
	return p.closeErr
}
