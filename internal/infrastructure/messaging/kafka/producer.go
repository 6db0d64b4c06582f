// Package kafka publishes claim-resolution events so downstream consumers
// (billing, audit, analytics) can react without polling the service.
package kafka

import (
	"github.com/segmentio/kafka-go"

	"github.com/lexicon-health/lexicon/internal/config"
)

// requiredAcks maps the configured acknowledgement level onto the client's.
func requiredAcks(acks string) kafka.RequiredAcks {
	switch acks {
	case "none":
		return kafka.RequireNone
	case "all":
		return kafka.RequireAll
	default:
		return kafka.RequireOne
	}
}

// NewWriter builds a kafka writer for cfg.  Messages are keyed by claim id,
// so all events for one claim land in the same partition in order.
func NewWriter(cfg config.KafkaConfig) *kafka.Writer {
	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: requiredAcks(cfg.Acks),
		BatchTimeout: cfg.BatchTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	if cfg.MaxRetries > 0 {
		w.MaxAttempts = cfg.MaxRetries
	}
	return w
}
