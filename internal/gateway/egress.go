package gateway

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/park285/cheese-duel/internal/obslog"
)

// Egress sends replies to a room, over HTTP or the websocket.
type Egress interface {
	SendText(ctx context.Context, room, message string) error
	SendImage(ctx context.Context, room, imageBase64 string) error
}

// NewEgress picks the reply transport: "ws", "auto" (websocket first, one HTTP fallback)
// or anything else for HTTP.
func NewEgress(mode string, c *Client, ws *WebSocket) Egress {
	switch mode {
	case "ws":
		return &wsEgress{ws: ws}
	case "auto":
		return &autoEgress{ws: &wsEgress{ws: ws}, http: &httpEgress{c: c}}
	default:
		return &httpEgress{c: c}
	}
}

type httpEgress struct{ c *Client }

func (h *httpEgress) SendText(ctx context.Context, room, message string) error {
	if h.c == nil {
		return errors.New("http egress not available")
	}
	return h.c.SendMessage(ctx, room, message)
}

func (h *httpEgress) SendImage(ctx context.Context, room, imageBase64 string) error {
	if h.c == nil {
		return errors.New("http egress not available")
	}
	return h.c.SendImage(ctx, room, imageBase64)
}

type wsEgress struct{ ws *WebSocket }

func (w *wsEgress) SendText(ctx context.Context, room, message string) error {
	return w.send(ctx, ReplyRequest{Type: "text", Room: room, Data: message})
}

func (w *wsEgress) SendImage(ctx context.Context, room, imageBase64 string) error {
	return w.send(ctx, ReplyRequest{Type: "image", Room: room, Data: imageBase64})
}

func (w *wsEgress) send(ctx context.Context, req ReplyRequest) error {
	if w.ws == nil {
		return ErrNotConnected
	}
	return w.ws.WriteJSON(ctx, &req)
}

type autoEgress struct {
	ws   *wsEgress
	http *httpEgress
}

func (a *autoEgress) SendText(ctx context.Context, room, message string) error {
	if err := a.ws.SendText(ctx, room, message); err == nil {
		return nil
	} else if !errors.Is(err, ErrNotConnected) {
		obslog.L().Warn("egress_fallback", zap.String("type", "text"), zap.String("room", room), zap.Error(err))
	}
	return a.http.SendText(ctx, room, message)
}

func (a *autoEgress) SendImage(ctx context.Context, room, imageBase64 string) error {
	if err := a.ws.SendImage(ctx, room, imageBase64); err == nil {
		return nil
	} else if !errors.Is(err, ErrNotConnected) {
		obslog.L().Warn("egress_fallback", zap.String("type", "image"), zap.String("room", room), zap.Error(err))
	}
	return a.http.SendImage(ctx, room, imageBase64)
}
