package messaging

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/dreamline/mentorlink/internal/pkg/websocket"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

const injectTimeout = 5 * time.Second

// Injector receives events that were published on another instance
type Injector interface {
	Inject(ctx context.Context, evt *websocket.Event) error
}

type publisher interface {
	Publish(subject string, data []byte) error
}

// Bridge mirrors chat events between the local hub and every other
// instance subscribed to the same NATS subject prefix.
type Bridge struct {
	conn   *nats.Conn
	pub    publisher
	sub    *nats.Subscription
	prefix string
	origin string
	hub    Injector
	logger zerolog.Logger
}

// NewBridge connects to NATS. Call Start to begin receiving.
func NewBridge(url, prefix string, hub Injector, logger zerolog.Logger) (*Bridge, error) {
	nc, err := nats.Connect(url,
		nats.Name("mentorlink"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
	)
	if err != nil {
		return nil, err
	}

	b := newBridge(nc, prefix, hub, logger)
	b.conn = nc
	logger.Info().Str("url", url).Str("origin", b.origin).Msg("NATS bridge connected")
	return b, nil
}

func newBridge(pub publisher, prefix string, hub Injector, logger zerolog.Logger) *Bridge {
	return &Bridge{
		pub:    pub,
		prefix: strings.TrimSuffix(prefix, "."),
		origin: uuid.New().String(),
		hub:    hub,
		logger: logger,
	}
}

// Subject returns the NATS subject of a chat channel
func (b *Bridge) Subject(chatID string) string {
	return b.prefix + ".chats." + chatID
}

// Relay publishes a locally originated event. It has the signature Hub.SetRelay expects.
func (b *Bridge) Relay(evt *websocket.Event) {
	out := *evt
	out.Origin = b.origin

	data, err := json.Marshal(&out)
	if err != nil {
		b.logger.Error().Err(err).Str("eventID", evt.ID).Msg("Failed to marshal event for NATS")
		return
	}
	if err := b.pub.Publish(b.Subject(evt.Topic), data); err != nil {
		b.logger.Error().Err(err).Str("topic", evt.Topic).Msg("Failed to publish event to NATS")
		return
	}
	b.logger.Debug().Str("topic", evt.Topic).Str("eventType", evt.Type).Msg("Event relayed to NATS")
}

// Start subscribes to every chat subject and blocks until ctx is done
func (b *Bridge) Start(ctx context.Context) error {
	sub, err := b.conn.Subscribe(b.prefix+".chats.*", b.handle)
	if err != nil {
		return err
	}
	b.sub = sub
	b.logger.Info().Str("subject", sub.Subject).Msg("NATS bridge started")

	<-ctx.Done()
	return ctx.Err()
}

func (b *Bridge) handle(msg *nats.Msg) {
	var evt websocket.Event
	if err := json.Unmarshal(msg.Data, &evt); err != nil {
		b.logger.Error().Err(err).Str("subject", msg.Subject).Msg("Failed to unmarshal NATS event")
		return
	}
	if evt.Origin == b.origin {
		return
	}
	if evt.Topic == "" {
		evt.Topic = strings.TrimPrefix(msg.Subject, b.prefix+".chats.")
	}

	ctx, cancel := context.WithTimeout(context.Background(), injectTimeout)
	defer cancel()
	if err := b.hub.Inject(ctx, &evt); err != nil {
		b.logger.Warn().Err(err).Str("topic", evt.Topic).Msg("Failed to inject remote event")
	}
}

// Close unsubscribes and drops the connection
func (b *Bridge) Close() error {
	if b.sub != nil {
		_ = b.sub.Unsubscribe()
	}
	if b.conn != nil {
		b.conn.Close()
	}
	return nil
}

// HealthCheck verifies NATS connection is healthy
func (b *Bridge) HealthCheck() error {
	if b.conn == nil || b.conn.IsClosed() {
		return nats.ErrConnectionClosed
	}
	if !b.conn.IsConnected() {
		return nats.ErrDisconnected
	}
	return nil
}
