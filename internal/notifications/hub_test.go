package notifications

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"shardit/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_RegisterAndUnregister(t *testing.T) {
	hub := NewHub()

	client, err := hub.Register(10, nil)
	require.NoError(t, err)
	assert.True(t, hub.IsOnline(10))
	assert.False(t, hub.IsOnline(11))

	hub.UnregisterClient(client)
	assert.False(t, hub.IsOnline(10))

	// Unregistering twice must not corrupt the counters.
	hub.UnregisterClient(client)
	assert.Equal(t, 0, hub.totalConns)
}

func TestHub_PerUserConnectionLimit(t *testing.T) {
	hub := NewHub()

	for i := 0; i < maxConnsPerUser; i++ {
		_, err := hub.Register(3, nil)
		require.NoError(t, err)
	}
	_, err := hub.Register(3, nil)
	assert.Error(t, err)

	// A different user is unaffected.
	_, err = hub.Register(4, nil)
	assert.NoError(t, err)
}

func TestHub_BroadcastReachesOnlyRecipient(t *testing.T) {
	hub := NewHub()

	alice, err := hub.Register(1, nil)
	require.NoError(t, err)
	bob, err := hub.Register(2, nil)
	require.NoError(t, err)

	hub.Broadcast(1, "for alice")

	select {
	case msg := <-alice.Send:
		assert.Equal(t, "for alice", string(msg))
	default:
		t.Fatal("expected a message for alice")
	}
	select {
	case msg := <-bob.Send:
		t.Fatalf("unexpected message for bob: %s", msg)
	default:
	}
}

func TestHub_WiringForwardsRedisMessages(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = rdb.Close() }()

	hub := NewHub()
	notifier := NewNotifier(rdb)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, hub.StartWiring(ctx, notifier))

	client, err := hub.Register(5, nil)
	require.NoError(t, err)

	require.NoError(t, notifier.PublishUser(context.Background(), 5, `{"type":"notification"}`))

	select {
	case msg := <-client.Send:
		assert.JSONEq(t, `{"type":"notification"}`, string(msg))
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for forwarded message")
	}
}

type notificationRepoStub struct {
	createFn func(context.Context, *models.Notification) error
}

func (s *notificationRepoStub) Create(ctx context.Context, n *models.Notification) error {
	return s.createFn(ctx, n)
}
func (s *notificationRepoStub) ListByRecipient(context.Context, uint, bool, int) ([]models.Notification, error) {
	return nil, nil
}
func (s *notificationRepoStub) MarkRead(context.Context, uint, uint) error { return nil }
func (s *notificationRepoStub) MarkAllRead(context.Context, uint) error    { return nil }

func TestSink_StoresAndPublishes(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = rdb.Close() }()

	var stored *models.Notification
	repo := &notificationRepoStub{createFn: func(_ context.Context, n *models.Notification) error {
		n.ID = 9
		stored = n
		return nil
	}}

	sub := rdb.Subscribe(context.Background(), UserChannel(2))
	defer func() { _ = sub.Close() }()
	_, err := sub.Receive(context.Background())
	require.NoError(t, err)

	sink := NewSink(repo, NewNotifier(rdb))
	err = sink.Notify(context.Background(), &models.Notification{
		RecipientID:      2,
		Message:          "grace accepted your request",
		RelatedRequestID: 1,
	})
	require.NoError(t, err)
	require.NotNil(t, stored)

	select {
	case msg := <-sub.Channel():
		var env Envelope
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &env))
		assert.Equal(t, "notification", env.Type)
		assert.Equal(t, uint(2), env.Payload.RecipientID)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for published notification")
	}
}

func TestSink_FeedOnlyWithoutRedis(t *testing.T) {
	var stored *models.Notification
	repo := &notificationRepoStub{createFn: func(_ context.Context, n *models.Notification) error {
		stored = n
		return nil
	}}

	sink := NewSink(repo, NewNotifier(nil))
	err := sink.Notify(context.Background(), &models.Notification{RecipientID: 3, Message: "hi"})
	require.NoError(t, err)
	assert.NotNil(t, stored)
}
