package notify

import (
	"context"
	"sync"
)

// InMemoryBroker keeps published messages in memory. Local release runs use
// it so notifications never leave the process; tests use it to assert on
// what was published.
type InMemoryBroker struct {
	mu       sync.Mutex
	messages map[string][]Message
	closed   bool
}

// Message is one published record.
type Message struct {
	Topic string
	Key   string
	Value []byte
}

// NewInMemoryBroker creates a new InMemoryBroker instance.
func NewInMemoryBroker() *InMemoryBroker {
	return &InMemoryBroker{
		messages: make(map[string][]Message),
	}
}

// Publish records the message under its topic.
func (b *InMemoryBroker) Publish(ctx context.Context, topic string, key string, value []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return errBrokerClosed
	}

	// Copy: callers may reuse their buffer.
	v := make([]byte, len(value))
	copy(v, value)

	b.messages[topic] = append(b.messages[topic], Message{Topic: topic, Key: key, Value: v})
	return nil
}

// Messages returns all messages published to a topic, in order.
func (b *InMemoryBroker) Messages(topic string) []Message {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Message(nil), b.messages[topic]...)
}

// Close marks the broker closed; further publishes fail.
func (b *InMemoryBroker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}
