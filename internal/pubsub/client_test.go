package pubsub

import (
	"context"
	"testing"
	"time"

	"cloud.google.com/go/pubsub"
	"cloud.google.com/go/pubsub/pstest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
	"google.golang.org/api/option"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

func TestMatchEventWireKeys(t *testing.T) {
	s1, s2 := 21, 15
	payload, err := msgpack.Marshal(MatchEvent{
		Type: EventMatchFinished, MatchID: 42, Kind: "official", Scope: "Open/Central/A",
		Score1: &s1, Score2: &s2, Status: "finished", OccurredAt: time.Now(),
	})
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, msgpack.Unmarshal(payload, &raw))
	assert.EqualValues(t, "match-finished", raw["type"])
	assert.EqualValues(t, 42, raw["match_id"])
	assert.EqualValues(t, 21, raw["score1"])
	assert.NotContains(t, raw, "player1", "empty names are omitted")
}

func TestNoopDropsMessages(t *testing.T) {
	assert.NoError(t, NewNoop().SendMessage(EventMatchDeleted, MatchEvent{}))
}

func TestMockRecordsTopics(t *testing.T) {
	m := NewMock()
	require.NoError(t, m.SendMessage(EventMatchRegistered, MatchEvent{MatchID: 1}))
	require.NoError(t, m.SendMessage(EventMatchFinished, MatchEvent{MatchID: 1}))
	assert.Equal(t, []EventType{EventMatchRegistered, EventMatchFinished}, m.Topics())

	m.Reset()
	assert.Empty(t, m.Topics())
}

func setupFakePubSub(t *testing.T) (*client, *pstest.Server) {
	t.Helper()
	ctx := context.Background()

	srv := pstest.NewServer()
	t.Cleanup(func() { _ = srv.Close() })
	conn, err := grpc.NewClient(srv.Addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	psc, err := pubsub.NewClient(ctx, "test-project", option.WithGRPCConn(conn))
	require.NoError(t, err)
	_, err = psc.CreateTopic(ctx, string(EventMatchRegistered))
	require.NoError(t, err)

	c := newClient(psc)
	t.Cleanup(c.teardown)
	return c, srv
}

func TestSendMessageReusesTopic(t *testing.T) {
	c, srv := setupFakePubSub(t)

	require.NoError(t, c.SendMessage(EventMatchRegistered, MatchEvent{MatchID: 1}))
	require.NoError(t, c.SendMessage(EventMatchRegistered, MatchEvent{MatchID: 2}))

	c.mu.Lock()
	assert.Len(t, c.topics, 1)
	c.mu.Unlock()

	msgs := srv.Messages()
	require.Len(t, msgs, 2)
	var got MatchEvent
	require.NoError(t, msgpack.Unmarshal(msgs[1].Data, &got))
	assert.EqualValues(t, 2, got.MatchID)
	assert.Equal(t, "application/msgpack", msgs[1].Attributes["content-type"])
}

func TestSendMessageToMissingTopicFails(t *testing.T) {
	c, _ := setupFakePubSub(t)
	assert.Error(t, c.SendMessage(EventMatchDeleted, MatchEvent{MatchID: 1}))
}
