package websocket

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) (*Hub, context.CancelFunc) {
	t.Helper()
	hub := NewHub(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(cancel)
	return hub, cancel
}

func receive(t *testing.T, sub *Subscription) *Event {
	t.Helper()
	select {
	case evt, ok := <-sub.C:
		require.True(t, ok, "subscription closed")
		return evt
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return nil
	}
}

func TestHubDeliversInPublishOrder(t *testing.T) {
	hub, _ := startHub(t)
	sub, err := hub.Subscribe("a_b")
	require.NoError(t, err)
	defer sub.Close()

	ctx := context.Background()
	for i := 0; i < 10; i++ {
		evt, err := NewEvent("a_b", "message.created", map[string]int{"n": i})
		require.NoError(t, err)
		require.NoError(t, hub.Publish(ctx, evt))
	}

	for i := 0; i < 10; i++ {
		evt := receive(t, sub)
		assert.JSONEq(t, fmt.Sprintf(`{"n":%d}`, i), string(evt.Payload))
	}
}

func TestHubIsolatesTopics(t *testing.T) {
	hub, _ := startHub(t)
	ab, err := hub.Subscribe("a_b")
	require.NoError(t, err)
	defer ab.Close()
	cd, err := hub.Subscribe("c_d")
	require.NoError(t, err)
	defer cd.Close()

	evt, _ := NewEvent("c_d", "message.created", nil)
	require.NoError(t, hub.Publish(context.Background(), evt))

	assert.Equal(t, evt.ID, receive(t, cd).ID)
	select {
	case got := <-ab.C:
		t.Fatalf("unexpected event on other topic: %+v", got)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSubscriptionCloseIsIdempotent(t *testing.T) {
	hub, _ := startHub(t)
	sub, err := hub.Subscribe("a_b")
	require.NoError(t, err)
	assert.Equal(t, 1, hub.SubscriberCount("a_b"))

	sub.Close()
	sub.Close()
	assert.Equal(t, 0, hub.SubscriberCount("a_b"))

	_, ok := <-sub.C
	assert.False(t, ok)

	// publishing to a topic without listeners is fine
	evt, _ := NewEvent("a_b", "message.created", nil)
	assert.NoError(t, hub.Publish(context.Background(), evt))
}

func TestHubStopClosesSubscriptions(t *testing.T) {
	hub, cancel := startHub(t)
	sub, err := hub.Subscribe("a_b")
	require.NoError(t, err)

	cancel()

	select {
	case _, ok := <-sub.C:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("subscription not closed on stop")
	}
	sub.Close()

	evt, _ := NewEvent("a_b", "message.created", nil)
	assert.ErrorIs(t, hub.Publish(context.Background(), evt), ErrHubClosed)
	_, err = hub.Subscribe("a_b")
	assert.ErrorIs(t, err, ErrHubClosed)
}

func TestHubSkipsFullSubscriber(t *testing.T) {
	hub, _ := startHub(t)
	slow, err := hub.Subscribe("a_b")
	require.NoError(t, err)
	defer slow.Close()

	ctx := context.Background()
	for i := 0; i < subscriptionBuffer+5; i++ {
		evt, _ := NewEvent("a_b", "message.created", i)
		require.NoError(t, hub.Publish(ctx, evt))
	}

	// the slow subscriber must not have blocked the hub
	fast, err := hub.Subscribe("a_b")
	require.NoError(t, err)
	defer fast.Close()
	evt, _ := NewEvent("a_b", "message.read", nil)
	require.NoError(t, hub.Publish(ctx, evt))
	// fast may still see the tail of the flood if it subscribed mid-delivery
	for got := receive(t, fast); got.ID != evt.ID; got = receive(t, fast) {
	}
	assert.Len(t, slow.C, subscriptionBuffer)
}

func TestRelayOnlyForLocalPublishes(t *testing.T) {
	hub, _ := startHub(t)
	relayed := make(chan *Event, 2)
	hub.SetRelay(func(evt *Event) { relayed <- evt })

	sub, err := hub.Subscribe("a_b")
	require.NoError(t, err)
	defer sub.Close()

	local, _ := NewEvent("a_b", "message.created", nil)
	remote, _ := NewEvent("a_b", "message.created", nil)
	ctx := context.Background()
	require.NoError(t, hub.Publish(ctx, local))
	require.NoError(t, hub.Inject(ctx, remote))

	assert.Equal(t, local.ID, receive(t, sub).ID)
	assert.Equal(t, remote.ID, receive(t, sub).ID)
	require.Len(t, relayed, 1)
	assert.Equal(t, local.ID, (<-relayed).ID)
}

func TestMessageHandlerDispatch(t *testing.T) {
	var sent, read string
	h := NewMessageHandler(
		func(_ context.Context, text string) error { sent = text; return nil },
		func(_ context.Context, id string) error { read = id; return nil },
		zerolog.Nop(),
	)
	ctx := context.Background()

	require.NoError(t, h.Handle(ctx, Inbound{Type: InboundSend, Text: "hello"}))
	require.NoError(t, h.Handle(ctx, Inbound{Type: InboundRead, MessageID: "m1"}))
	assert.Equal(t, "hello", sent)
	assert.Equal(t, "m1", read)

	assert.Error(t, h.Handle(ctx, Inbound{Type: InboundSend, Text: "  "}))
	assert.Error(t, h.Handle(ctx, Inbound{Type: InboundRead}))
	assert.ErrorIs(t, h.Handle(ctx, Inbound{Type: "typing"}), ErrUnknownFrame)
}
