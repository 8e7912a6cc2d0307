package pubsub

import (
	"sync"
	"time"

	"cloud.google.com/go/pubsub"
)

type client struct {
	client *pubsub.Client

	mu     sync.Mutex
	topics map[EventType]*pubsub.Topic
}

// EventType represents the type of event/message sent via pubsub.
// It doubles as the topic name.
type EventType string

const (
	EventMatchRegistered EventType = "match-registered"
	EventMatchUpdated    EventType = "match-updated"
	EventMatchFinished   EventType = "match-finished"
	EventMatchDeleted    EventType = "match-deleted"
)

// MatchEvent is the msgpack payload of every lifecycle event.
type MatchEvent struct {
	Type       EventType `msgpack:"type"`
	MatchID    int64     `msgpack:"match_id"`
	Kind       string    `msgpack:"kind"`
	Scope      string    `msgpack:"scope"`
	Player1    string    `msgpack:"player1,omitempty"`
	Player2    string    `msgpack:"player2,omitempty"`
	Score1     *int      `msgpack:"score1,omitempty"`
	Score2     *int      `msgpack:"score2,omitempty"`
	Status     string    `msgpack:"status,omitempty"`
	OccurredAt time.Time `msgpack:"occurred_at"`
}
