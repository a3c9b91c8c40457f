// Package gateway talks to the chat gateway: HTTP replies through fasthttp and the
// inbound event stream over a websocket.
package gateway

import "strings"

// Message is one chat event pushed by the gateway.
type Message struct {
	Msg    string       `json:"msg"`
	Room   string       `json:"room"`
	Sender *string      `json:"sender,omitempty"`
	JSON   *MessageJSON `json:"json,omitempty"`
}

type MessageJSON struct {
	UserID  string `json:"user_id,omitempty"`
	ChatID  string `json:"chat_id,omitempty"`
	Message string `json:"message,omitempty"`
}

// UserID prefers the structured id and falls back to the sender field.
func (m *Message) UserID() string {
	if m == nil {
		return ""
	}
	if m.JSON != nil && strings.TrimSpace(m.JSON.UserID) != "" {
		return strings.TrimSpace(m.JSON.UserID)
	}
	if m.Sender != nil {
		return strings.TrimSpace(*m.Sender)
	}
	return ""
}

// SenderName is the display name, or the user id when the gateway sent none.
func (m *Message) SenderName() string {
	if m != nil && m.Sender != nil && strings.TrimSpace(*m.Sender) != "" {
		return strings.TrimSpace(*m.Sender)
	}
	return m.UserID()
}

// ReplyRequest is the body of POST /reply and of websocket egress frames.
type ReplyRequest struct {
	Type string `json:"type"`
	Room string `json:"room"`
	Data string `json:"data"`
}

type WebSocketState int

const (
	WSStateDisconnected WebSocketState = iota
	WSStateConnecting
	WSStateConnected
	WSStateReconnecting
	WSStateFailed
)

func (s WebSocketState) String() string {
	switch s {
	case WSStateConnecting:
		return "connecting"
	case WSStateConnected:
		return "connected"
	case WSStateReconnecting:
		return "reconnecting"
	case WSStateFailed:
		return "failed"
	default:
		return "disconnected"
	}
}

type MessageCallback func(message *Message)

type StateCallback func(state WebSocketState)

// HeaderProvider injects per-request headers (X-User-Id and friends).
type HeaderProvider func() map[string]string

// StaticHeaders builds a provider that skips blank values.
func StaticHeaders(userID, email, sessionID string) HeaderProvider {
	return func() map[string]string {
		h := map[string]string{}
		if userID != "" {
			h["X-User-Id"] = userID
		}
		if email != "" {
			h["X-User-Email"] = email
		}
		if sessionID != "" {
			h["X-Session-Id"] = sessionID
		}
		return h
	}
}
