package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum inbound frame size
	maxMessageSize = 16 * 1024

	inboundTimeout = 5 * time.Second
)

// Inbound is a frame sent by the browser over the socket
type Inbound struct {
	Type      string `json:"type"`
	Text      string `json:"text,omitempty"`
	MessageID string `json:"messageId,omitempty"`
}

// Inbound frame types
const (
	InboundSend = "send"
	InboundRead = "read"
)

// InboundFunc handles a frame on behalf of the connected user
type InboundFunc func(ctx context.Context, in Inbound) error

// NewUpgrader builds the HTTP upgrader. An empty allowed list accepts any origin.
func NewUpgrader(allowedOrigins []string) websocket.Upgrader {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowed) == 0 || allowed["*"] {
				return true
			}
			return allowed[r.Header.Get("Origin")]
		},
	}
}

// Client is a middleman between the websocket connection and a hub subscription
type Client struct {
	conn      *websocket.Conn
	sub       *Subscription
	userID    string
	onInbound InboundFunc
	logger    zerolog.Logger

	// errs carries error frames to writePump, the connection's only writer
	errs chan []byte
}

// readPump reads inbound frames until the connection fails, then releases
// the subscription which in turn stops writePump.
func (c *Client) readPump() {
	defer func() {
		c.sub.Close()
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var in Inbound
		if err := c.conn.ReadJSON(&in); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.logger.Info().Str("userID", c.userID).Str("topic", c.sub.Topic()).Msg("WebSocket closed normally")
			} else if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn().Err(err).Str("userID", c.userID).Str("topic", c.sub.Topic()).Msg("Unexpected WebSocket close")
			} else {
				c.logger.Debug().Err(err).Str("userID", c.userID).Str("topic", c.sub.Topic()).Msg("WebSocket read error")
			}
			return
		}

		if c.onInbound == nil {
			continue
		}
		ctx, cancel := context.WithTimeout(context.Background(), inboundTimeout)
		err := c.onInbound(ctx, in)
		cancel()
		if err != nil {
			c.logger.Warn().Err(err).Str("userID", c.userID).Str("type", in.Type).Msg("Inbound frame rejected")
			c.writeError(err)
		}
	}
}

// writePump forwards subscription events and keeps the connection alive with pings
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case evt, ok := <-c.sub.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(evt); err != nil {
				return
			}
		case frame := <-c.errs:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) writeError(err error) {
	frame, _ := json.Marshal(map[string]string{"type": "error", "message": err.Error()})
	select {
	case c.errs <- frame:
	default:
		c.logger.Debug().Str("userID", c.userID).Msg("Dropping error frame, writer is busy")
	}
}
