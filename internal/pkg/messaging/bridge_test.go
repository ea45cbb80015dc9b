package messaging

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/dreamline/mentorlink/internal/pkg/websocket"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	subjects []string
	payloads [][]byte
}

func (p *recordingPublisher) Publish(subject string, data []byte) error {
	p.subjects = append(p.subjects, subject)
	p.payloads = append(p.payloads, data)
	return nil
}

type recordingInjector struct {
	events []*websocket.Event
}

func (i *recordingInjector) Inject(_ context.Context, evt *websocket.Event) error {
	i.events = append(i.events, evt)
	return nil
}

func TestRelayTagsOriginWithoutMutatingEvent(t *testing.T) {
	pub := &recordingPublisher{}
	b := newBridge(pub, "mentorlink.", &recordingInjector{}, zerolog.Nop())

	evt, err := websocket.NewEvent("a_b", "message.created", map[string]string{"text": "hi"})
	require.NoError(t, err)
	b.Relay(evt)

	require.Len(t, pub.subjects, 1)
	assert.Equal(t, "mentorlink.chats.a_b", pub.subjects[0])
	assert.Empty(t, evt.Origin)

	var sent websocket.Event
	require.NoError(t, json.Unmarshal(pub.payloads[0], &sent))
	assert.Equal(t, b.origin, sent.Origin)
	assert.Equal(t, evt.ID, sent.ID)
}

func TestHandleSkipsOwnEvents(t *testing.T) {
	pub := &recordingPublisher{}
	inj := &recordingInjector{}
	b := newBridge(pub, "mentorlink", inj, zerolog.Nop())

	evt, _ := websocket.NewEvent("a_b", "message.created", nil)
	b.Relay(evt)
	b.handle(&nats.Msg{Subject: pub.subjects[0], Data: pub.payloads[0]})
	assert.Empty(t, inj.events)

	other := newBridge(&recordingPublisher{}, "mentorlink", inj, zerolog.Nop())
	other.handle(&nats.Msg{Subject: pub.subjects[0], Data: pub.payloads[0]})
	require.Len(t, inj.events, 1)
	assert.Equal(t, evt.ID, inj.events[0].ID)
	assert.Equal(t, "a_b", inj.events[0].Topic)
}

func TestHandleIgnoresGarbage(t *testing.T) {
	inj := &recordingInjector{}
	b := newBridge(&recordingPublisher{}, "mentorlink", inj, zerolog.Nop())
	b.handle(&nats.Msg{Subject: "mentorlink.chats.a_b", Data: []byte("{not json")})
	assert.Empty(t, inj.events)
}

func TestHealthCheckWithoutConnection(t *testing.T) {
	b := newBridge(&recordingPublisher{}, "mentorlink", &recordingInjector{}, zerolog.Nop())
	assert.ErrorIs(t, b.HealthCheck(), nats.ErrConnectionClosed)
	assert.NoError(t, b.Close())
}
