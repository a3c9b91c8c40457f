package presenter

import (
	"encoding/base64"
	"strings"

	"github.com/park285/cheese-duel/pkg/dueldto"
)

// Presenter delivers text and board images without coupling to the command layer.
type Presenter struct {
	sendMessage func(room, message string) error
	sendImage   func(room, imageBase64 string) error
}

func New(sendMessage func(room, message string) error, sendImage func(room, imageBase64 string) error) *Presenter {
	return &Presenter{sendMessage: sendMessage, sendImage: sendImage}
}

// Board sends the message, then the board image when the state carries one.
func (p *Presenter) Board(room, message string, state *dueldto.SessionState) error {
	if p == nil {
		return nil
	}
	if err := p.Text(room, message); err != nil {
		return err
	}
	if state == nil || len(state.BoardImage) == 0 || p.sendImage == nil {
		return nil
	}
	return p.sendImage(room, base64.StdEncoding.EncodeToString(state.BoardImage))
}

// Text sends a plain message; blank messages are dropped.
func (p *Presenter) Text(room, message string) error {
	if p == nil || p.sendMessage == nil || strings.TrimSpace(message) == "" {
		return nil
	}
	return p.sendMessage(room, message)
}

// Broadcast runs Board for every room, stopping at the first error.
func (p *Presenter) Broadcast(rooms []string, message string, state *dueldto.SessionState) error {
	seen := make(map[string]struct{}, len(rooms))
	for _, room := range rooms {
		if _, dup := seen[room]; dup || strings.TrimSpace(room) == "" {
			continue
		}
		seen[room] = struct{}{}
		if err := p.Board(room, message, state); err != nil {
			return err
		}
	}
	return nil
}
