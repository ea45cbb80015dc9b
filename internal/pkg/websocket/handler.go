package websocket

import (
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// Handler upgrades HTTP requests and attaches the socket to a subscription
type Handler struct {
	upgrader websocket.Upgrader
	logger   zerolog.Logger
}

// NewHandler creates a new WebSocket handler
func NewHandler(allowedOrigins []string, logger zerolog.Logger) *Handler {
	return &Handler{
		upgrader: NewUpgrader(allowedOrigins),
		logger:   logger,
	}
}

// Serve upgrades the connection and streams sub's events to it. The caller
// has already authorized userID for the subscription's topic. Serve takes
// ownership of sub and releases it when the socket goes away.
func (h *Handler) Serve(c *gin.Context, sub *Subscription, userID string, onInbound InboundFunc) error {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		sub.Close()
		h.logger.Error().
			Err(err).
			Str("topic", sub.Topic()).
			Str("userID", userID).
			Msg("Failed to upgrade connection to WebSocket")
		return err
	}

	client := &Client{
		conn:      conn,
		sub:       sub,
		userID:    userID,
		onInbound: onInbound,
		logger:    h.logger,
		errs:      make(chan []byte, 8),
	}

	go client.writePump()
	go client.readPump()

	h.logger.Info().
		Str("topic", sub.Topic()).
		Str("userID", userID).
		Str("remoteAddr", conn.RemoteAddr().String()).
		Msg("WebSocket connection established")
	return nil
}
