package rules

import (
	"errors"
	"fmt"
)

// ErrCorruptSnapshot is returned by Restore when a snapshot breaks a board invariant.
var ErrCorruptSnapshot = errors.New("corrupt game snapshot")

// Snapshot is the serializable form of a Game.
type Snapshot struct {
	Turn      Side             `json:"turn"`
	Pieces    []PieceRecord    `json:"pieces"`
	EnPassant *EnPassantRecord `json:"en_passant,omitempty"`
	Selected  string           `json:"selected,omitempty"`
	Winner    *Side            `json:"winner,omitempty"`
	Moves     int              `json:"moves"`
}

type PieceRecord struct {
	Side   Side   `json:"side"`
	Kind   Kind   `json:"kind"`
	Square string `json:"square"`
}

type EnPassantRecord struct {
	Target string `json:"target"`
	Victim string `json:"victim"`
}

func (g *Game) Snapshot() Snapshot {
	s := Snapshot{Turn: g.turn, Moves: g.moves}
	for _, side := range []Side{First, Second} {
		for _, p := range g.board.pieces[side] {
			s.Pieces = append(s.Pieces, PieceRecord{Side: p.Side(), Kind: p.Kind(), Square: p.pos.String()})
		}
	}
	if g.enPassant != nil {
		s.EnPassant = &EnPassantRecord{
			Target: g.enPassant.target.String(),
			Victim: g.enPassant.victim.pos.String(),
		}
	}
	if g.selected != nil {
		s.Selected = g.selected.pos.String()
	}
	if g.winner != nil {
		w := *g.winner
		s.Winner = &w
	}
	return s
}

// Restore rebuilds a Game and checks occupancy, king count, en-passant and selection
// consistency. An en-passant record must name an opponent pawn and an empty target.
func Restore(s Snapshot) (*Game, error) {
	g := NewEmptyGame(s.Turn)
	g.moves = s.Moves
	kings := [2]int{}
	if s.Turn > Second {
		return nil, fmt.Errorf("%w: turn %d", ErrCorruptSnapshot, s.Turn)
	}
	for _, rec := range s.Pieces {
		if rec.Side > Second || rec.Kind > King {
			return nil, fmt.Errorf("%w: piece %d/%d", ErrCorruptSnapshot, rec.Side, rec.Kind)
		}
		pos, err := ParsePosition(rec.Square)
		if err != nil {
			return nil, fmt.Errorf("%w: piece square %q", ErrCorruptSnapshot, rec.Square)
		}
		if err := g.Place(rec.Side, rec.Kind, pos); err != nil {
			return nil, fmt.Errorf("%w: %s on %s: %v", ErrCorruptSnapshot, rec.Kind, pos, err)
		}
		if rec.Kind == King {
			kings[rec.Side]++
		}
	}

	if s.Winner != nil {
		w := *s.Winner
		if w > Second {
			return nil, fmt.Errorf("%w: winner %d", ErrCorruptSnapshot, w)
		}
		g.winner = &w
		if kings[w] != 1 || kings[w.Opponent()] != 0 {
			return nil, fmt.Errorf("%w: finished game with %d/%d kings", ErrCorruptSnapshot, kings[First], kings[Second])
		}
	} else if kings[First] != 1 || kings[Second] != 1 {
		return nil, fmt.Errorf("%w: expected one king per side, got %d/%d", ErrCorruptSnapshot, kings[First], kings[Second])
	}

	if ep := s.EnPassant; ep != nil {
		target, err := ParsePosition(ep.Target)
		if err != nil {
			return nil, fmt.Errorf("%w: en passant target %q", ErrCorruptSnapshot, ep.Target)
		}
		victimPos, err := ParsePosition(ep.Victim)
		if err != nil {
			return nil, fmt.Errorf("%w: en passant victim %q", ErrCorruptSnapshot, ep.Victim)
		}
		victim := g.board.PieceAt(victimPos)
		if victim == nil || victim.Kind() != Pawn ||
			!victimPos.IsOffsetValid(0, -victim.Side().forward()) ||
			victimPos.shift(0, -victim.Side().forward()) != target {
			return nil, fmt.Errorf("%w: en passant %s does not sit behind a pawn on %s", ErrCorruptSnapshot, target, victimPos)
		}
		if victim.Side() == g.turn {
			return nil, fmt.Errorf("%w: en passant victim on %s belongs to the side to move", ErrCorruptSnapshot, victimPos)
		}
		if g.board.PieceAt(target) != nil {
			return nil, fmt.Errorf("%w: en passant target %s is occupied", ErrCorruptSnapshot, target)
		}
		g.enPassant = &enPassant{target: target, victim: victim}
	}

	if s.Selected != "" {
		pos, err := ParsePosition(s.Selected)
		if err != nil {
			return nil, fmt.Errorf("%w: selection %q", ErrCorruptSnapshot, s.Selected)
		}
		p := g.board.PieceAt(pos)
		if p == nil || p.Side() != g.turn || g.IsTerminated() {
			return nil, fmt.Errorf("%w: selection %s is not a side-to-move piece", ErrCorruptSnapshot, pos)
		}
		g.selected = p
		g.possible = g.targetsFor(p)
	}
	return g, nil
}
