package ws

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// transport owns the write side of one websocket. Frames queue on a
// bounded channel drained by writePump; a full queue drops the frame.
type transport struct {
	conn        *websocket.Conn
	messageType int
	send        chan []byte

	done      chan struct{}
	closeOnce sync.Once
}

func newTransport(conn *websocket.Conn, binary bool, buffer int) *transport {
	messageType := websocket.TextMessage
	if binary {
		messageType = websocket.BinaryMessage
	}
	if buffer <= 0 {
		buffer = defaultSendBuffer
	}
	return &transport{
		conn:        conn,
		messageType: messageType,
		send:        make(chan []byte, buffer),
		done:        make(chan struct{}),
	}
}

func (t *transport) Send(frame []byte) bool {
	select {
	case <-t.done:
		return false
	default:
	}
	select {
	case t.send <- frame:
		return true
	default:
		return false
	}
}

// Close asks writePump to send a close frame and shut the socket down.
func (t *transport) Close() error {
	t.closeOnce.Do(func() { close(t.done) })
	return nil
}

func (t *transport) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		t.conn.Close()
	}()

	for {
		select {
		case frame := <-t.send:
			t.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := t.conn.WriteMessage(t.messageType, frame); err != nil {
				t.Close()
				return
			}
		case <-ticker.C:
			t.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := t.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				t.Close()
				return
			}
		case <-t.done:
			t.conn.SetWriteDeadline(time.Now().Add(writeWait))
			t.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server closing"))
			return
		}
	}
}
