package presenter

import (
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/park285/cheese-duel/internal/challenge"
	"github.com/park285/cheese-duel/internal/duel"
	"github.com/park285/cheese-duel/internal/lobby"
	"github.com/park285/cheese-duel/internal/msgcat"
	"github.com/park285/cheese-duel/internal/obslog"
	"github.com/park285/cheese-duel/internal/rules"
	"github.com/park285/cheese-duel/pkg/dueldto"
)

// Formatter turns duel state into chat text using the message catalog.
type Formatter struct {
	cat    *msgcat.Catalog
	prefix string
}

func NewFormatter(cat *msgcat.Catalog, prefix string) *Formatter {
	return &Formatter{cat: cat, prefix: strings.TrimSpace(prefix)}
}

func (f *Formatter) Prefix() string { return f.prefix }

type vars map[string]any

func (f *Formatter) render(key string, data vars) string {
	if data == nil {
		data = vars{}
	}
	data["Prefix"] = f.prefix
	text, err := f.cat.Render(key, data)
	if err != nil {
		obslog.L().Warn("msgcat_render_error", zap.String("key", key), zap.Error(err))
		return key
	}
	return text
}

func (f *Formatter) Help() string { return fold(f.render("duel.help", nil)) }

func (f *Formatter) Start(g *duel.Game) string {
	return f.render("duel.start", vars{"White": g.WhiteName, "Black": g.BlackName})
}

func (f *Formatter) Selected(square string, targets []rules.Position) string {
	if len(targets) == 0 {
		return f.render("duel.selected_none", vars{"Square": square})
	}
	names := make([]string, 0, len(targets))
	for _, t := range targets {
		names = append(names, t.String())
	}
	return f.render("duel.selected", vars{"Square": square, "Targets": strings.Join(names, ", ")})
}

func (f *Formatter) Deselected(g *duel.Game) string {
	return f.render("duel.deselected", vars{"Player": g.PlayerName(g.Turn()), "Side": g.Turn().String()})
}

// Move describes an applied move from the mover's point of view.
func (f *Formatter) Move(g *duel.Game, mv *rules.Move) string {
	data := vars{"Player": g.PlayerName(mv.Side), "Move": mv.String()}
	if mv.Captured != nil {
		data["Captured"] = mv.Captured.Kind().String()
	}
	switch mv.Effect {
	case rules.Captured:
		return f.render("duel.captured", data)
	case rules.EnPassantCaptured:
		return f.render("duel.en_passant", data)
	case rules.GameOver:
		return f.render("duel.game_over", data)
	default:
		return f.render("duel.moved", data)
	}
}

func (f *Formatter) Challenged(ch *challenge.Challenge) string {
	return f.render("duel.challenged", vars{"Challenger": ch.ChallengerName, "Target": ch.TargetName})
}

func (f *Formatter) Declined(ch *challenge.Challenge) string {
	return f.render("duel.declined", vars{"Challenger": ch.ChallengerName, "Target": ch.TargetName})
}

func (f *Formatter) Resigned(g *duel.Game) string {
	loser := g.WhiteName
	winner := g.BlackName
	if g.Winner == g.WhiteID {
		loser, winner = g.BlackName, g.WhiteName
	}
	return f.render("duel.resigned", vars{"Loser": loser, "Winner": winner})
}

func (f *Formatter) Aborted() string { return f.render("duel.aborted", nil) }

func (f *Formatter) Status(g *duel.Game) string {
	return f.render("duel.status", vars{
		"White":  g.WhiteName,
		"Black":  g.BlackName,
		"Player": g.PlayerName(g.Turn()),
		"Side":   g.Turn().String(),
		"Number": g.MoveCount() + 1,
	})
}

func (f *Formatter) LobbyMade(code string) string {
	return f.render("lobby.made", vars{"Code": code})
}

func (f *Formatter) LobbyJoined(r *lobby.JoinResult) string {
	if !r.Started {
		return f.render("lobby.queued", vars{"Code": r.Channel.Code})
	}
	return f.render("lobby.started", vars{"Code": r.Channel.Code, "White": r.Channel.WhiteName, "Black": r.Channel.BlackName})
}

func (f *Formatter) LobbyList(list []*lobby.Channel) string {
	if len(list) == 0 {
		return f.render("lobby.list_empty", nil)
	}
	lines := []string{f.render("lobby.list_header", nil)}
	for _, ch := range list {
		lines = append(lines, f.render("lobby.list_item", vars{"Code": ch.Code, "Creator": ch.CreatorName}))
	}
	return strings.Join(lines, "\n")
}

func (f *Formatter) LobbyCancelled(code string) string {
	return f.render("lobby.cancelled", vars{"Code": code})
}

func (f *Formatter) Usage(key string) string { return f.render(key, nil) }

func (f *Formatter) History(results []duel.Result) string {
	if len(results) == 0 {
		return f.render("history.empty", nil)
	}
	lines := []string{f.render("history.header", nil)}
	for _, r := range results {
		lines = append(lines, f.render("history.item", vars{
			"White": r.WhiteName, "Black": r.BlackName,
			"Result": r.Result, "Method": r.Method, "Moves": r.MoveCount,
		}))
	}
	return fold(strings.Join(lines, "\n"))
}

// Error maps a domain error to user-facing text.
func (f *Formatter) Error(err error) string {
	var de dueldto.DomainError
	if errors.As(err, &de) {
		if f.cat.Has(de.Code) {
			return f.render(de.Code, nil)
		}
		return de.Error()
	}
	for _, m := range errorKeys {
		if errors.Is(err, m.err) {
			return f.render(m.key, nil)
		}
	}
	return f.render("errors.generic", nil)
}

var errorKeys = []struct {
	err error
	key string
}{
	{duel.ErrGameNotFound, "errors.not_found"},
	{duel.ErrNotInGame, "errors.not_in_game"},
	{duel.ErrNotYourTurn, "errors.not_your_turn"},
	{duel.ErrGameOver, "errors.game_over"},
	{duel.ErrConcurrentUpdate, "errors.concurrent"},
	{duel.ErrPlayerBusy, "errors.busy"},
	{duel.ErrAlreadyStarted, "errors.already_started"},
	{challenge.ErrSelfChallenge, "errors.self"},
	{challenge.ErrNoPendingForUser, "errors.no_pending"},
	{lobby.ErrChannelGone, "lobby.errors.gone"},
	{lobby.ErrFull, "lobby.errors.full"},
	{lobby.ErrChannelActive, "lobby.errors.active"},
	{lobby.ErrAlreadyJoined, "lobby.errors.joined"},
	{lobby.ErrCreatorHasLobby, "lobby.errors.has_lobby"},
	{lobby.ErrNotCreator, "lobby.errors.not_creator"},
	{lobby.ErrPlayerBusyInRoom, "errors.busy"},
}

// InvalidSquare is rendered separately because it echoes the input.
func (f *Formatter) InvalidSquare(input string) string {
	return f.render("errors.invalid_square", vars{"Input": input})
}

func (f *Formatter) PendingChallenge(target string) string {
	return f.render("errors.pending", vars{"Target": target})
}
