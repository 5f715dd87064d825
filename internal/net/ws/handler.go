// Package ws adapts gorilla websockets to sessions on a hub.
package ws

import (
	"context"
	"log"
	nethttp "net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/sportsracer/repman/internal/hub"
	"github.com/sportsracer/repman/internal/net/proto"
	"github.com/sportsracer/repman/internal/telemetry"
)

const (
	defaultSendBuffer = 16
	defaultReadLimit  = 4096
)

type HandlerConfig struct {
	Logger     telemetry.Logger
	SendBuffer int
	ReadLimit  int64
}

type Handler struct {
	hub      *hub.Hub
	logger   telemetry.Logger
	upgrader websocket.Upgrader
	buffer   int
	limit    int64
}

func NewHandler(h *hub.Hub, cfg HandlerConfig) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = telemetry.WrapLogger(log.Default())
	}
	limit := cfg.ReadLimit
	if limit <= 0 {
		limit = defaultReadLimit
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *nethttp.Request) bool {
			return true
		},
	}

	return &Handler{
		hub:      h,
		logger:   logger,
		upgrader: upgrader,
		buffer:   cfg.SendBuffer,
		limit:    limit,
	}
}

// Handle upgrades the request and runs the read loop until the socket
// closes. The optional "encoding" query parameter selects the codec.
func (h *Handler) Handle(w nethttp.ResponseWriter, r *nethttp.Request) {
	codec, err := proto.CodecByName(r.URL.Query().Get("encoding"))
	if err != nil {
		nethttp.Error(w, err.Error(), nethttp.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Printf("websocket upgrade failed: %v", err)
		return
	}

	t := newTransport(conn, codec.Binary(), h.buffer)
	s := h.hub.Connect(t, codec)
	if s == nil {
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server closing"),
			time.Now().Add(writeWait))
		conn.Close()
		return
	}
	go t.writePump()

	conn.SetReadLimit(h.limit)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	ctx := context.Background()
	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Printf("session %s read failed: %v", s.ID(), err)
			}
			h.hub.Disconnect(ctx, s)
			t.Close()
			return
		}
		s.HandleFrame(ctx, payload)
	}
}
