package websocket

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"
)

// ErrUnknownFrame is returned for inbound frames with an unsupported type.
var ErrUnknownFrame = errors.New("unknown frame type")

// MessageHandler turns inbound socket frames into chat operations of one
// user in one channel. Persistence and fan-out happen in the callbacks, so
// a frame sent over the socket takes the same path as an HTTP request.
type MessageHandler struct {
	send     func(ctx context.Context, text string) error
	markRead func(ctx context.Context, messageID string) error
	logger   zerolog.Logger
}

// NewMessageHandler creates a new MessageHandler
func NewMessageHandler(
	send func(ctx context.Context, text string) error,
	markRead func(ctx context.Context, messageID string) error,
	logger zerolog.Logger,
) *MessageHandler {
	return &MessageHandler{
		send:     send,
		markRead: markRead,
		logger:   logger,
	}
}

// Handle dispatches one frame. It has the InboundFunc signature.
func (h *MessageHandler) Handle(ctx context.Context, in Inbound) error {
	switch in.Type {
	case InboundSend:
		if strings.TrimSpace(in.Text) == "" {
			return errors.New("text is required")
		}
		return h.send(ctx, in.Text)
	case InboundRead:
		if in.MessageID == "" {
			return errors.New("messageId is required")
		}
		return h.markRead(ctx, in.MessageID)
	default:
		h.logger.Debug().Str("type", in.Type).Msg("Ignoring unknown frame")
		return ErrUnknownFrame
	}
}
