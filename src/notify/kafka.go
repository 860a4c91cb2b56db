package notify

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/twmb/franz-go/pkg/kgo"
)

var errBrokerClosed = errors.New("broker is closed")

// KafkaBroker publishes release events to a Kafka-compatible cluster using
// franz-go. Only producing is needed here; consumers of release events live
// in other systems.
type KafkaBroker struct {
	client *kgo.Client
	mu     sync.Mutex
	closed bool
}

// NewKafkaBroker connects to the given broker addresses
// (e.g. ["localhost:19092"]).
func NewKafkaBroker(brokers []string) (*KafkaBroker, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("at least one broker address is required")
	}

	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.AllowAutoTopicCreation(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka client: %w", err)
	}

	return &KafkaBroker{client: client}, nil
}

// Publish produces one record synchronously. A release emits a handful of
// events at most, so there is nothing to batch.
func (b *KafkaBroker) Publish(ctx context.Context, topic string, key string, value []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return errBrokerClosed
	}

	record := &kgo.Record{
		Topic: topic,
		Key:   []byte(key),
		Value: value,
	}

	results := b.client.ProduceSync(ctx, record)
	if err := results.FirstErr(); err != nil {
		return fmt.Errorf("failed to produce release event: %w", err)
	}
	return nil
}

// Close shuts down the producer connection.
func (b *KafkaBroker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	b.client.Close()
	return nil
}
