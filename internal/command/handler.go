// Package command parses chat commands and drives duels, lobbies and challenges.
package command

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/park285/cheese-duel/internal/challenge"
	"github.com/park285/cheese-duel/internal/duel"
	"github.com/park285/cheese-duel/internal/lobby"
	"github.com/park285/cheese-duel/internal/obslog"
	"github.com/park285/cheese-duel/internal/presenter"
	"github.com/park285/cheese-duel/internal/rules"
)

const historyLimit = 10

// Message is one inbound chat line with the sender already resolved.
type Message struct {
	Room     string
	UserID   string
	UserName string
	Text     string
}

// HistoryStore lists finished duels; nil disables the history command.
type HistoryStore interface {
	RecentResults(ctx context.Context, userID string, limit int) ([]duel.Result, error)
}

type Deps struct {
	Prefix      string
	Duels       *duel.Manager
	Lobbies     *lobby.Manager
	Challenges  *challenge.Manager
	History     HistoryStore
	Presenter   *presenter.Presenter
	Formatter   *presenter.Formatter
	RoomAllowed func(room string) bool
}

type Handler struct {
	Deps
}

func New(d Deps) *Handler {
	if d.RoomAllowed == nil {
		d.RoomAllowed = func(string) bool { return true }
	}
	return &Handler{Deps: d}
}

// Handle runs one command. Messages without the prefix, from other rooms or without a
// sender are ignored. Domain failures are reported to the room; only delivery errors
// are returned.
func (h *Handler) Handle(ctx context.Context, msg Message) error {
	text := strings.TrimSpace(msg.Text)
	if !strings.HasPrefix(text, h.Prefix) {
		return nil
	}
	if !h.RoomAllowed(msg.Room) {
		obslog.L().Debug("command_room_ignored", zap.String("room", msg.Room))
		return nil
	}
	if strings.TrimSpace(msg.UserID) == "" {
		return nil
	}
	if strings.TrimSpace(msg.UserName) == "" {
		msg.UserName = msg.UserID
	}

	args := strings.Fields(strings.TrimPrefix(text, h.Prefix))
	if len(args) == 0 {
		return h.Presenter.Text(msg.Room, h.Formatter.Help())
	}
	head := strings.ToLower(args[0])
	switch {
	case head == "help":
		return h.Presenter.Text(msg.Room, h.Formatter.Help())
	case head == "status":
		return h.status(ctx, msg)
	case head == "resign":
		return h.resign(ctx, msg)
	case head == "abort":
		return h.abort(ctx, msg)
	case head == "history":
		return h.history(ctx, msg)
	case head == "accept":
		return h.accept(ctx, msg)
	case head == "decline":
		return h.decline(msg)
	case head == "lobby":
		return h.lobby(ctx, msg, args[1:])
	case head == "select":
		if len(args) < 2 {
			return h.Presenter.Text(msg.Room, h.Formatter.Usage("errors.usage_select"))
		}
		return h.selectSquare(ctx, msg, args[1])
	case strings.HasPrefix(head, "@"):
		return h.challenge(ctx, msg, args)
	default:
		return h.selectSquare(ctx, msg, args[0])
	}
}

func (h *Handler) fail(msg Message, op string, err error) error {
	obslog.L().Warn("command_error",
		zap.String("op", op),
		zap.String("room", msg.Room),
		zap.String("user_id", msg.UserID),
		zap.Error(err),
	)
	return h.Presenter.Text(msg.Room, h.Formatter.Error(err))
}

func (h *Handler) selectSquare(ctx context.Context, msg Message, square string) error {
	g, out, err := h.Duels.Select(ctx, msg.UserID, msg.Room, square)
	if errors.Is(err, duel.ErrInvalidSquare) {
		return h.Presenter.Text(msg.Room, h.Formatter.InvalidSquare(square))
	}
	if err != nil {
		return h.fail(msg, "select", err)
	}

	switch out.Kind {
	case rules.Selected:
		state, err := h.Duels.ToDTOForViewer(ctx, g, msg.UserID)
		if err != nil {
			return h.fail(msg, "render", err)
		}
		return h.Presenter.Board(msg.Room, h.Formatter.Selected(g.State.Selected, out.Targets), state)
	case rules.MoveApplied:
		state, err := h.Duels.ToDTOForViewer(ctx, g, g.PlayerID(g.Turn()))
		if err != nil {
			return h.fail(msg, "render", err)
		}
		return h.Presenter.Broadcast(g.Rooms(), h.Formatter.Move(g, out.Move), state)
	default:
		return h.Presenter.Text(msg.Room, h.Formatter.Deselected(g))
	}
}

func (h *Handler) activeGame(ctx context.Context, msg Message) (*duel.Game, error) {
	g, err := h.Duels.GetActiveGameByUserInRoom(ctx, msg.UserID, msg.Room)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, duel.ErrGameNotFound
	}
	return g, nil
}

func (h *Handler) status(ctx context.Context, msg Message) error {
	g, err := h.activeGame(ctx, msg)
	if err != nil {
		return h.fail(msg, "status", err)
	}
	state, err := h.Duels.ToDTOForViewer(ctx, g, msg.UserID)
	if err != nil {
		return h.fail(msg, "render", err)
	}
	return h.Presenter.Board(msg.Room, h.Formatter.Status(g), state)
}

func (h *Handler) resign(ctx context.Context, msg Message) error {
	g, err := h.Duels.Resign(ctx, msg.UserID, msg.Room)
	if err != nil {
		return h.fail(msg, "resign", err)
	}
	state, err := h.Duels.ToDTO(ctx, g)
	if err != nil {
		return h.fail(msg, "render", err)
	}
	return h.Presenter.Broadcast(g.Rooms(), h.Formatter.Resigned(g), state)
}

func (h *Handler) abort(ctx context.Context, msg Message) error {
	g, err := h.activeGame(ctx, msg)
	if err != nil {
		return h.fail(msg, "abort", err)
	}
	if _, ok := g.SideOf(msg.UserID); !ok {
		return h.fail(msg, "abort", duel.ErrNotInGame)
	}
	if g, err = h.Duels.Abort(ctx, g.ID); err != nil {
		return h.fail(msg, "abort", err)
	}
	return h.Presenter.Broadcast(g.Rooms(), h.Formatter.Aborted(), nil)
}

func (h *Handler) history(ctx context.Context, msg Message) error {
	if h.History == nil {
		return h.Presenter.Text(msg.Room, h.Formatter.Usage("history.disabled"))
	}
	results, err := h.History.RecentResults(ctx, msg.UserID, historyLimit)
	if err != nil {
		return h.fail(msg, "history", err)
	}
	return h.Presenter.Text(msg.Room, h.Formatter.History(results))
}

// start announces a new duel in every room it is played in.
func (h *Handler) start(ctx context.Context, msg Message, g *duel.Game) error {
	state, err := h.Duels.ToDTO(ctx, g)
	if err != nil {
		return h.fail(msg, "render", err)
	}
	return h.Presenter.Broadcast(g.Rooms(), h.Formatter.Start(g), state)
}
