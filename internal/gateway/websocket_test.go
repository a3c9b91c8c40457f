package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

// echoServer pushes one chat message on connect and forwards every frame it reads to got.
func echoServer(t *testing.T, got chan<- ReplyRequest, headers chan<- string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers <- r.Header.Get("X-User-Id")
		c, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer c.Close(websocket.StatusNormalClosure, "")
		ctx := r.Context()
		sender := "Alice"
		if err := wsjson.Write(ctx, c, Message{Msg: "!duel help", Room: "room-1", Sender: &sender}); err != nil {
			return
		}
		for {
			var req ReplyRequest
			if err := wsjson.Read(ctx, c, &req); err != nil {
				return
			}
			got <- req
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestWebSocketRoundTrip(t *testing.T) {
	got := make(chan ReplyRequest, 1)
	headers := make(chan string, 1)
	srv := echoServer(t, got, headers)

	ws := NewWebSocket("ws"+strings.TrimPrefix(srv.URL, "http"), 0)
	ws.SetHeaderProvider(StaticHeaders("bot-1", "", ""))
	inbound := make(chan *Message, 1)
	ws.OnMessage(func(m *Message) { inbound <- m })

	var states []WebSocketState
	ws.OnStateChange(func(s WebSocketState) { states = append(states, s) })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := ws.Connect(ctx); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if h := <-headers; h != "bot-1" {
		t.Fatalf("handshake header = %q", h)
	}

	select {
	case m := <-inbound:
		if m.Msg != "!duel help" || m.Room != "room-1" || m.UserID() != "Alice" {
			t.Fatalf("unexpected message %+v", m)
		}
	case <-ctx.Done():
		t.Fatalf("no inbound message")
	}

	egress := NewEgress("ws", nil, ws)
	if err := egress.SendText(ctx, "room-1", "pong"); err != nil {
		t.Fatalf("SendText: %v", err)
	}
	select {
	case req := <-got:
		if req != (ReplyRequest{Type: "text", Room: "room-1", Data: "pong"}) {
			t.Fatalf("unexpected frame %+v", req)
		}
	case <-ctx.Done():
		t.Fatalf("frame not received")
	}

	if err := ws.Close(ctx); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if ws.State() != WSStateDisconnected {
		t.Fatalf("state after close = %v", ws.State())
	}
	if len(states) < 2 || states[0] != WSStateConnecting || states[1] != WSStateConnected {
		t.Fatalf("state transitions = %v", states)
	}
}

func TestWriteWithoutConnection(t *testing.T) {
	ws := NewWebSocket("ws://127.0.0.1:1/none", 0)
	if err := ws.WriteJSON(context.Background(), ReplyRequest{}); err != ErrNotConnected {
		t.Fatalf("err = %v, want ErrNotConnected", err)
	}
}

func TestAutoEgressFallsBackToHTTP(t *testing.T) {
	gw := &fakeGateway{}
	c := newTestClient(t, gw)
	ws := NewWebSocket("ws://127.0.0.1:1/none", 0)
	egress := NewEgress("auto", c, ws)
	if err := egress.SendImage(context.Background(), "r", "aGk="); err != nil {
		t.Fatalf("SendImage: %v", err)
	}
	if len(gw.got) != 1 || gw.got[0].Type != "image" {
		t.Fatalf("http fallback not used: %+v", gw.got)
	}
}
