// Package notify publishes release events so downstream systems (changelog
// bots, dashboards, dependent-project triggers) learn about new versions.
// It supports an in-process broker for local runs and tests and a
// Kafka-compatible broker for CI fleets.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Broker abstracts message publishing.
// The in-memory implementation is used for local invocations; the Kafka
// implementation when KAFKA_BROKERS is configured.
type Broker interface {
	// Publish sends a message to a topic with a key for partitioning.
	// For the in-memory broker the key is recorded but otherwise unused.
	Publish(ctx context.Context, topic string, key string, value []byte) error

	// Close shuts down the broker connection gracefully.
	Close() error
}

// ReleaseEvent is the JSON payload published after a successful release.
type ReleaseEvent struct {
	Module    string    `json:"module"`
	Version   string    `json:"version"`
	Flavor    string    `json:"flavor"`
	Commit    string    `json:"commit,omitempty"`
	BuildURL  string    `json:"build_url,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Publisher serializes release events onto a broker topic.
type Publisher struct {
	broker Broker
	topic  string
}

// NewPublisher creates a Publisher for the given topic.
func NewPublisher(broker Broker, topic string) *Publisher {
	return &Publisher{broker: broker, topic: topic}
}

// Publish emits one release event. The module coordinate is the partition
// key so events for one module stay ordered.
func (p *Publisher) Publish(ctx context.Context, event ReleaseEvent) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal release event: %w", err)
	}

	if err := p.broker.Publish(ctx, p.topic, event.Module, data); err != nil {
		return fmt.Errorf("failed to publish release event: %w", err)
	}
	return nil
}
