package command

import (
	"context"
	"strings"

	"github.com/park285/cheese-duel/internal/duel"
)

// lobby handles "lobby make | join <code> | list | cancel".
func (h *Handler) lobby(ctx context.Context, msg Message, args []string) error {
	if len(args) == 0 {
		return h.Presenter.Text(msg.Room, h.Formatter.Usage("lobby.usage"))
	}
	switch strings.ToLower(args[0]) {
	case "make":
		ch, err := h.Lobbies.Make(ctx, msg.Room, msg.UserID, msg.UserName)
		if err != nil {
			return h.fail(msg, "lobby_make", err)
		}
		return h.Presenter.Text(msg.Room, h.Formatter.LobbyMade(ch.Code))
	case "join":
		if len(args) < 2 {
			return h.Presenter.Text(msg.Room, h.Formatter.Usage("lobby.usage"))
		}
		return h.lobbyJoin(ctx, msg, args[1])
	case "list":
		list, err := h.Lobbies.ListLobby(ctx)
		if err != nil {
			return h.fail(msg, "lobby_list", err)
		}
		return h.Presenter.Text(msg.Room, h.Formatter.LobbyList(list))
	case "cancel":
		open, err := h.Lobbies.OpenLobbyOf(ctx, msg.UserID)
		if err != nil {
			return h.fail(msg, "lobby_cancel", err)
		}
		if open == nil {
			return h.Presenter.Text(msg.Room, h.Formatter.Usage("lobby.errors.none_open"))
		}
		ch, err := h.Lobbies.Cancel(ctx, open.Code, msg.UserID)
		if err != nil {
			return h.fail(msg, "lobby_cancel", err)
		}
		return h.Presenter.Text(msg.Room, h.Formatter.LobbyCancelled(ch.Code))
	default:
		return h.Presenter.Text(msg.Room, h.Formatter.Usage("lobby.usage"))
	}
}

func (h *Handler) lobbyJoin(ctx context.Context, msg Message, code string) error {
	res, err := h.Lobbies.Join(ctx, msg.Room, code, msg.UserID, msg.UserName)
	if err != nil {
		return h.fail(msg, "lobby_join", err)
	}
	if !res.Started {
		return h.Presenter.Text(msg.Room, h.Formatter.LobbyJoined(res))
	}
	g, err := h.Duels.LoadGame(ctx, res.GameID)
	if err == nil && g == nil {
		err = duel.ErrGameNotFound
	}
	if err != nil {
		return h.fail(msg, "lobby_join", err)
	}
	state, err := h.Duels.ToDTO(ctx, g)
	if err != nil {
		return h.fail(msg, "render", err)
	}
	rooms, err := h.Lobbies.Rooms(ctx, res.Channel.Code)
	if err != nil || len(rooms) == 0 {
		rooms = g.Rooms()
	}
	return h.Presenter.Broadcast(rooms, h.Formatter.LobbyJoined(res), state)
}
