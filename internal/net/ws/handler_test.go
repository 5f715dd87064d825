package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/sportsracer/repman/internal/hub"
	"github.com/sportsracer/repman/internal/net/proto"
	"github.com/sportsracer/repman/internal/world"
)

func newTestServer(t *testing.T) (*hub.Hub, *httptest.Server) {
	t.Helper()
	w, err := world.New(world.Config{TopFlopCount: 2}, world.Deps{})
	if err != nil {
		t.Fatalf("world.New: %v", err)
	}
	h := hub.New(w, hub.DefaultConfig())
	handler := NewHandler(h, HandlerConfig{})
	srv := httptest.NewServer(http.HandlerFunc(handler.Handle))
	t.Cleanup(srv.Close)
	return h, srv
}

func websocketURL(t *testing.T, base string, query url.Values) string {
	t.Helper()
	u, err := url.Parse(base)
	if err != nil {
		t.Fatalf("failed to parse server url: %v", err)
	}
	u.Scheme = "ws"
	u.RawQuery = query.Encode()
	return u.String()
}

func dial(t *testing.T, srv *httptest.Server, query url.Values) *websocket.Conn {
	t.Helper()
	conn, resp, err := websocket.DefaultDialer.Dial(websocketURL(t, srv.URL, query), nil)
	if err != nil {
		if resp != nil {
			resp.Body.Close()
		}
		t.Fatalf("failed to open websocket connection: %v", err)
	}
	t.Cleanup(func() {
		conn.Close()
		if resp != nil {
			resp.Body.Close()
		}
	})
	return conn
}

func readJSON(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	kind, payload, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if kind != websocket.TextMessage {
		t.Fatalf("expected text frame, got %d", kind)
	}
	var decoded map[string]any
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("frame is not json: %v", err)
	}
	return decoded
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestJoinReceiveStateAndLeave(t *testing.T) {
	h, srv := newTestServer(t)
	conn := dial(t, srv, nil)

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"msg":"join","name":"alice"}`)); err != nil {
		t.Fatalf("write join: %v", err)
	}
	if msg := readJSON(t, conn); msg["msg"] != "joined" {
		t.Fatalf("expected joined, got %v", msg)
	}

	h.Step(context.Background())
	state := readJSON(t, conn)
	if state["msg"] != "state" {
		t.Fatalf("expected state, got %v", state)
	}
	players := state["players"].([]any)
	if len(players) != 1 || players[0].(map[string]any)["name"] != "alice" {
		t.Fatalf("unexpected players %v", players)
	}

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"msg":"input","w":true}`)); err != nil {
		t.Fatalf("write input: %v", err)
	}
	waitFor(t, "input to apply", func() bool {
		snap := h.Snapshot()
		return len(snap.Players) == 1 && snap.Players[0].MoveSpeed > 0
	})

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"msg":"leave"}`)); err != nil {
		t.Fatalf("write leave: %v", err)
	}
	waitFor(t, "player removal", func() bool { return h.Diagnostics().Players == 0 })
}

func TestErrorsKeepConnectionOpen(t *testing.T) {
	_, srv := newTestServer(t)
	conn := dial(t, srv, nil)

	conn.WriteMessage(websocket.TextMessage, []byte(`{"msg":"input","w":true}`))
	if msg := readJSON(t, conn); msg["description"] != "'msg' must be one of join" {
		t.Fatalf("unexpected reply %v", msg)
	}

	conn.WriteMessage(websocket.TextMessage, []byte(`not json`))
	if msg := readJSON(t, conn); msg["msg"] != "error" {
		t.Fatalf("expected error reply, got %v", msg)
	}

	conn.WriteMessage(websocket.TextMessage, []byte(`{"msg":"join","name":"bob"}`))
	if msg := readJSON(t, conn); msg["msg"] != "joined" {
		t.Fatalf("expected joined after errors, got %v", msg)
	}
}

func TestSocketCloseRemovesPlayer(t *testing.T) {
	h, srv := newTestServer(t)
	conn := dial(t, srv, nil)

	conn.WriteMessage(websocket.TextMessage, []byte(`{"msg":"join","name":"alice"}`))
	readJSON(t, conn)
	if h.Diagnostics().Players != 1 {
		t.Fatalf("expected one player")
	}

	conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	conn.Close()

	waitFor(t, "disconnect", func() bool {
		d := h.Diagnostics()
		return d.Players == 0 && d.Sessions == 0
	})
}

func TestMsgpackEncoding(t *testing.T) {
	h, srv := newTestServer(t)
	conn := dial(t, srv, url.Values{"encoding": {"msgpack"}})

	join, err := proto.Msgpack.Marshal(proto.Join{Msg: proto.MsgJoin, Name: "alice"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	conn.WriteMessage(websocket.BinaryMessage, join)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	kind, payload, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read joined: %v", err)
	}
	if kind != websocket.BinaryMessage {
		t.Fatalf("expected binary frame, got %d", kind)
	}
	var joined proto.Joined
	if err := proto.Msgpack.Unmarshal(payload, &joined); err != nil || joined.Msg != proto.MsgJoined {
		t.Fatalf("unexpected joined frame: %v %+v", err, joined)
	}

	h.Step(context.Background())
	_, payload, err = conn.ReadMessage()
	if err != nil {
		t.Fatalf("read state: %v", err)
	}
	var state proto.State
	if err := proto.Msgpack.Unmarshal(payload, &state); err != nil {
		t.Fatalf("unmarshal state: %v", err)
	}
	if state.Msg != proto.MsgState || len(state.TopFlops) != 2 {
		t.Fatalf("unexpected state msg=%q topsFlops=%d", state.Msg, len(state.TopFlops))
	}
}

func TestUnknownEncodingRejected(t *testing.T) {
	_, srv := newTestServer(t)

	_, resp, err := websocket.DefaultDialer.Dial(websocketURL(t, srv.URL, url.Values{"encoding": {"xml"}}), nil)
	if err == nil {
		t.Fatalf("expected dial to fail")
	}
	if resp == nil || resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 response, got %v", resp)
	}
	resp.Body.Close()
}

func TestHubCloseClosesSockets(t *testing.T) {
	h, srv := newTestServer(t)
	conn := dial(t, srv, nil)
	conn.WriteMessage(websocket.TextMessage, []byte(`{"msg":"join","name":"alice"}`))
	readJSON(t, conn)

	h.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := conn.ReadMessage()
	if !websocket.IsCloseError(err, websocket.CloseGoingAway) {
		t.Fatalf("expected going-away close, got %v", err)
	}
	waitFor(t, "disconnect", func() bool { return h.Diagnostics().Players == 0 })
}
