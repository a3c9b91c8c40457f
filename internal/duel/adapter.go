package duel

import (
	"context"
	"fmt"

	nchess "github.com/corentings/chess/v2"

	"github.com/park285/cheese-duel/internal/render"
	"github.com/park285/cheese-duel/internal/rules"
	"github.com/park285/cheese-duel/pkg/dueldto"
)

// ToDTO renders the duel from White's side.
func (m *Manager) ToDTO(ctx context.Context, g *Game) (*dueldto.SessionState, error) {
	return m.ToDTOForViewer(ctx, g, "")
}

// ToDTOForViewer renders the board from the viewer's side; Black sees it flipped.
// The pending selection and its targets are drawn only while the duel is active.
func (m *Manager) ToDTOForViewer(ctx context.Context, g *Game, viewerID string) (*dueldto.SessionState, error) {
	if m == nil || g == nil {
		return nil, nil
	}
	game, err := rules.Restore(g.State)
	if err != nil {
		return nil, fmt.Errorf("restore %s: %w", g.ID, err)
	}

	opts := render.Options{
		Header: fmt.Sprintf("%s vs %s", g.WhiteName, g.BlackName),
		Turn:   hudTurn(g),
		Banner: banner(g),
	}
	if side, ok := g.SideOf(viewerID); ok && side == rules.Second {
		opts.Perspective = nchess.Black
	}
	if lm := g.LastMove; lm != nil {
		from, ferr := rules.ParsePosition(lm.From)
		to, terr := rules.ParsePosition(lm.To)
		if ferr == nil && terr == nil {
			opts.LastMove = &render.MoveHighlight{From: render.Square(from), To: render.Square(to)}
		}
	}

	state := &dueldto.SessionState{
		GameID:    g.ID,
		WhiteName: g.WhiteName,
		BlackName: g.BlackName,
		Turn:      g.Turn().String(),
		MoveCount: g.MoveCount(),
		Status:    string(g.Status),
		Winner:    g.Winner,
	}
	if g.LastMove != nil {
		state.LastMove = g.LastMove.Text
	}
	if sel, targets, ok := game.Selection(); ok && g.Status == StatusActive {
		sq := render.Square(sel)
		opts.Selected = &sq
		opts.Targets = render.Squares(targets)
		state.Selected = sel.String()
		for _, t := range targets {
			state.Targets = append(state.Targets, t.String())
		}
	}

	png, err := m.renderer.RenderPNG(ctx, render.BoardFromGame(game), opts)
	if err != nil {
		return nil, err
	}
	state.BoardImage = png
	return state, nil
}

func hudTurn(g *Game) string {
	return fmt.Sprintf("%s to move - %s (move %d)", g.Turn(), g.PlayerName(g.Turn()), g.MoveCount()+1)
}

func banner(g *Game) string {
	switch g.Status {
	case StatusFinished:
		return fmt.Sprintf("%s captured the king", nameOfWinner(g))
	case StatusResigned:
		return fmt.Sprintf("%s wins by resignation", nameOfWinner(g))
	case StatusAborted:
		return "duel aborted"
	}
	return ""
}

func nameOfWinner(g *Game) string {
	if g.Winner == g.BlackID {
		return g.BlackName
	}
	return g.WhiteName
}
