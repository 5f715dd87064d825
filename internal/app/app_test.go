package app

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/sportsracer/repman/internal/telemetry"
)

func TestRunServesUntilCancelled(t *testing.T) {
	t.Setenv("REPMAN_TICK_INTERVAL", "10ms")
	t.Setenv("REPMAN_TOPFLOP_COUNT", "2")
	t.Setenv("REPMAN_LOG_LEVEL", "warn")
	t.Setenv("REPMAN_LOG_JSON_PATH", filepath.Join(t.TempDir(), "events.ndjson"))

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ready := make(chan string, 1)
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, Config{
			Logger:   telemetry.WrapLogger(log.New(io.Discard, "", 0)),
			EnvFiles: []string{filepath.Join(t.TempDir(), "missing.env")},
			Listener: listener,
			Ready:    func(addr string) { ready <- addr },
		})
	}()

	var addr string
	select {
	case addr = <-ready:
	case err := <-done:
		t.Fatalf("Run returned early: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatalf("server did not start")
	}

	resp, err := http.Get("http://" + addr + "/health")
	if err != nil {
		t.Fatalf("health request failed: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if string(body) != "ok" {
		t.Fatalf("unexpected health body %q", body)
	}

	conn, _, err := websocket.DefaultDialer.Dial("ws://"+addr+"/ws", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"msg":"join","name":"alice"}`)); err != nil {
		t.Fatalf("write join: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var sawState bool
	for i := 0; i < 5 && !sawState; i++ {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		var msg struct {
			Msg       string `json:"msg"`
			TopsFlops []any  `json:"topsFlops"`
		}
		if err := json.Unmarshal(payload, &msg); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if msg.Msg == "state" {
			sawState = true
			if len(msg.TopsFlops) != 2 {
				t.Fatalf("expected 2 collectibles, got %d", len(msg.TopsFlops))
			}
		}
	}
	if !sawState {
		t.Fatalf("no state snapshot received")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("Run did not return after cancel")
	}
}

func TestRunRejectsInvalidConfig(t *testing.T) {
	t.Setenv("REPMAN_TICK_INTERVAL", "often")

	err := Run(context.Background(), Config{
		Logger:   telemetry.WrapLogger(log.New(io.Discard, "", 0)),
		EnvFiles: []string{filepath.Join(t.TempDir(), "missing.env")},
	})
	if err == nil {
		t.Fatalf("expected configuration error")
	}
}
