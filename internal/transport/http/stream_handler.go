package http

import (
	"context"
	"errors"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/tradegig/marketfeed/internal/service/messages"
)

// StreamHandlers exposes the room subscription primitive over WebSocket:
// every row inserted into the room is delivered as one JSON frame.
type StreamHandlers struct {
	svc *messages.Service
	log *zerolog.Logger
}

// NewStreamHandlers creates a new stream handlers instance.
func NewStreamHandlers(svc *messages.Service, logger *zerolog.Logger) *StreamHandlers {
	return &StreamHandlers{
		svc: svc,
		log: logger,
	}
}

// StreamRoom upgrades the connection and forwards inserted messages for
// one room until the client disconnects or the server shuts down. The
// stream carries only rows whose room matches the path parameter.
// GET /api/rooms/:room_id/stream
func (h *StreamHandlers) StreamRoom(c *gin.Context) {
	roomID := c.Param("room_id")

	// Subscribe before the upgrade so no insert slips between the
	// handshake and the first delivered frame.
	sub := h.svc.Subscribe(roomID)
	defer sub.Cancel()

	conn, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("ws accept error")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "internal error")

	// CloseRead cancels the context as soon as the client goes away.
	ctx := conn.CloseRead(c.Request.Context())

	h.log.Debug().Str("room_id", roomID).Msg("room stream opened")

	for {
		select {
		case msg, ok := <-sub.Messages():
			if !ok {
				conn.Close(websocket.StatusNormalClosure, "closing")
				return
			}
			if err := wsjson.Write(ctx, conn, messageToResponse(msg)); err != nil {
				if !errors.Is(err, context.Canceled) {
					h.log.Warn().Err(err).Str("room_id", roomID).Msg("write stream frame")
				}
				return
			}
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "closing")
			return
		}
	}
}
