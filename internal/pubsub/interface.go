package pubsub

// PubSubClient publishes lifecycle events.
type PubSubClient interface {
	SendMessage(topic EventType, data any) error
}
