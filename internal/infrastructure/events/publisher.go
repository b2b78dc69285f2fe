// Package events publishes trust-score changes to Kafka for downstream
// consumers such as search ranking and vendor notifications.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"github.com/sony/gobreaker/v2"

	"github.com/freshcart/marketplace/internal/api/metrics"
	"github.com/freshcart/marketplace/internal/core/ports"
)

const (
	source         = "marketplace"
	aggregateType  = "vendor"
	publishTimeout = 5 * time.Second
)

// Envelope is the standard wrapper for every message on the trust topic.
type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	AggregateID   string          `json:"aggregate_id"`
	AggregateType string          `json:"aggregate_type"`
	Version       int             `json:"version"`
	Timestamp     time.Time       `json:"timestamp"`
	Source        string          `json:"source"`
	Data          json.RawMessage `json:"data"`
}

func newEnvelope(e ports.TrustEvent) (*Envelope, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, err
	}
	ts := e.OccurredAt
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	return &Envelope{
		EventID:       uuid.New().String(),
		EventType:     e.Type,
		AggregateID:   e.VendorID,
		AggregateType: aggregateType,
		Version:       1,
		Timestamp:     ts,
		Source:        source,
		Data:          data,
	}, nil
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Config holds the publisher settings.
type Config struct {
	Brokers []string
	Topic   string
	// Breaker trips after MinRequests calls with a failure ratio of at least FailureRatio.
	MinRequests  uint32
	FailureRatio float64
	OpenTimeout  time.Duration
}

func (c Config) withDefaults() Config {
	if c.MinRequests == 0 {
		c.MinRequests = 5
	}
	if c.FailureRatio <= 0 {
		c.FailureRatio = 0.5
	}
	if c.OpenTimeout <= 0 {
		c.OpenTimeout = 30 * time.Second
	}
	return c
}

// KafkaPublisher implements ports.EventPublisher. Writes go through a circuit
// breaker so a broker outage fails fast instead of stalling trust updates.
type KafkaPublisher struct {
	writer  messageWriter
	topic   string
	breaker *gobreaker.CircuitBreaker[struct{}]
	log     zerolog.Logger
}

// NewKafkaPublisher creates a publisher writing to cfg.Topic, keyed by vendor ID.
func NewKafkaPublisher(cfg Config, log zerolog.Logger) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireAll,
	}
	return newKafkaPublisher(w, cfg, log)
}

func newKafkaPublisher(w messageWriter, cfg Config, log zerolog.Logger) *KafkaPublisher {
	cfg = cfg.withDefaults()
	settings := gobreaker.Settings{
		Name:        "kafka-" + cfg.Topic,
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.FailureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state change")
		},
	}
	return &KafkaPublisher{
		writer:  w,
		topic:   cfg.Topic,
		breaker: gobreaker.NewCircuitBreaker[struct{}](settings),
		log:     log,
	}
}

func (p *KafkaPublisher) PublishTrustEvent(ctx context.Context, e ports.TrustEvent) error {
	env, err := newEnvelope(e)
	if err != nil {
		return fmt.Errorf("marshal trust event: %w", err)
	}
	value, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}

	msg := kafka.Message{
		Topic: p.topic,
		Key:   []byte(env.AggregateID),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(env.EventType)},
			{Key: "source", Value: []byte(source)},
		},
	}

	_, err = p.breaker.Execute(func() (struct{}, error) {
		ctx, cancel := context.WithTimeout(ctx, publishTimeout)
		defer cancel()
		return struct{}{}, p.writer.WriteMessages(ctx, msg)
	})
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.TrustEventsPublishedTotal.WithLabelValues("circuit_open").Inc()
		return fmt.Errorf("publish %s: %w", env.EventType, err)
	case err != nil:
		metrics.TrustEventsPublishedTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("publish %s to %s: %w", env.EventType, p.topic, err)
	}

	metrics.TrustEventsPublishedTotal.WithLabelValues("ok").Inc()
	p.log.Debug().Str("event_type", env.EventType).Str("vendor_id", env.AggregateID).Msg("trust event published")
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NoopPublisher drops events. Used when no brokers are configured.
type NoopPublisher struct {
	log zerolog.Logger
}

func NewNoopPublisher(log zerolog.Logger) *NoopPublisher {
	return &NoopPublisher{log: log}
}

func (p *NoopPublisher) PublishTrustEvent(_ context.Context, e ports.TrustEvent) error {
	p.log.Debug().Str("event_type", e.Type).Str("vendor_id", e.VendorID).Msg("trust event dropped, no broker configured")
	return nil
}

func (p *NoopPublisher) Close() error { return nil }
