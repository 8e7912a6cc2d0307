package pubsub

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/pubsub"
	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

// publishTimeout bounds a single publish, including the wait for the server id.
const publishTimeout = 10 * time.Second

// New connects to Pub/Sub in projectID. The returned teardown flushes and stops
// every topic handle, then closes the client.
func New(ctx context.Context, projectID string) (PubSubClient, func(), error) {
	pubSubC, err := pubsub.NewClient(ctx, projectID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create pubsub client: %w", err)
	}
	c := newClient(pubSubC)
	return c, c.teardown, nil
}

func newClient(pubSubC *pubsub.Client) *client {
	return &client{
		client: pubSubC,
		topics: map[EventType]*pubsub.Topic{},
	}
}

// topic returns the cached handle for t, creating it on first use.
func (c *client) topic(t EventType) *pubsub.Topic {
	c.mu.Lock()
	defer c.mu.Unlock()
	topic, ok := c.topics[t]
	if !ok {
		topic = c.client.Topic(string(t))
		c.topics[t] = topic
	}
	return topic
}

func (c *client) teardown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, topic := range c.topics {
		topic.Stop()
	}
	c.topics = map[EventType]*pubsub.Topic{}
	if err := c.client.Close(); err != nil {
		log.Error("Failed to close pubsub client", "error", err)
	}
}

func (c *client) SendMessage(topic EventType, data any) error {
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	msgpackData, err := msgpack.Marshal(data)
	if err != nil {
		log.Error("MessagePack marshal error", "error", err)
		return err
	}
	message := &pubsub.Message{
		Data:       msgpackData,
		Attributes: map[string]string{"content-type": "application/msgpack"},
	}
	result := c.topic(topic).Publish(ctx, message)
	serverID, err := result.Get(ctx)
	if err != nil {
		log.Error("Failed to publish message", "error", err, "topic", topic)
		return err
	}
	log.Debug("SendMessage", "serverID", serverID, "topic", topic)
	return nil
}

type noop struct{}

// NewNoop returns a client that drops every message. Used when no project is configured.
func NewNoop() PubSubClient { return noop{} }

func (noop) SendMessage(topic EventType, _ any) error {
	log.Debug("Pub/Sub disabled, dropping event", "topic", topic)
	return nil
}
