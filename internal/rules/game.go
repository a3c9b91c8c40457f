// Package rules is the duel rules engine: board occupancy, per-piece move generation,
// the select/move state machine and capture resolution.
package rules

// Phase is the state of the two-step select/move interaction.
type Phase uint8

const (
	AwaitingSelection Phase = iota
	AwaitingDestination
)

func (p Phase) String() string {
	if p == AwaitingDestination {
		return "awaiting_destination"
	}
	return "awaiting_selection"
}

// OutcomeKind tells the caller what a single Select call did.
type OutcomeKind uint8

const (
	Deselected OutcomeKind = iota
	Selected
	MoveApplied
)

func (k OutcomeKind) String() string {
	switch k {
	case Selected:
		return "selected"
	case MoveApplied:
		return "move_applied"
	default:
		return "deselected"
	}
}

// Outcome is the result of one Select step. Targets is set for Selected, Move for MoveApplied.
type Outcome struct {
	Kind    OutcomeKind
	Targets []Position
	Move    *Move
}

// Game owns the board, the side to move, en-passant bookkeeping, the pending selection
// and the winner. It is not safe for concurrent use.
type Game struct {
	board     *Board
	turn      Side
	enPassant *enPassant
	selected  *Piece
	possible  PositionSet
	winner    *Side
	moves     int
}

type enPassant struct {
	target Position
	victim *Piece
}

var backRank = [BoardSize]Kind{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}

// NewGame returns the starting layout with FIRST to move. SECOND's back rank is the
// point mirror of FIRST's, so its king starts on d8.
func NewGame() *Game {
	g := NewEmptyGame(First)
	for col := 0; col < BoardSize; col++ {
		g.mustPlace(First, backRank[col], MustPosition(col, First.homeRow()))
		g.mustPlace(First, Pawn, MustPosition(col, First.pawnRow()))
		g.mustPlace(Second, backRank[BoardSize-1-col], MustPosition(col, Second.homeRow()))
		g.mustPlace(Second, Pawn, MustPosition(col, Second.pawnRow()))
	}
	return g
}

// NewEmptyGame returns a board with no pieces, for custom setups built with Place.
func NewEmptyGame(turn Side) *Game {
	return &Game{board: NewBoard(), turn: turn}
}

func (g *Game) Place(side Side, kind Kind, pos Position) error {
	return g.board.Place(NewPiece(side, kind, pos))
}

func (g *Game) mustPlace(side Side, kind Kind, pos Position) {
	if err := g.Place(side, kind, pos); err != nil {
		panic(err)
	}
}

func (g *Game) Turn() Side { return g.turn }

func (g *Game) Phase() Phase {
	if g.selected != nil {
		return AwaitingDestination
	}
	return AwaitingSelection
}

// Selection returns the selected square and its legal targets while awaiting a destination.
func (g *Game) Selection() (Position, []Position, bool) {
	if g.selected == nil {
		return Position{}, nil, false
	}
	return g.selected.pos, g.possible.Sorted(), true
}

func (g *Game) Pieces(side Side) []*Piece { return g.board.Pieces(side) }

func (g *Game) PieceAt(pos Position) *Piece { return g.board.PieceAt(pos) }

// EnPassantTarget is the square skipped by the pawn that just double-advanced.
func (g *Game) EnPassantTarget() (Position, bool) {
	if g.enPassant == nil {
		return Position{}, false
	}
	return g.enPassant.target, true
}

func (g *Game) IsTerminated() bool { return g.winner != nil }

func (g *Game) Winner() (Side, bool) {
	if g.winner == nil {
		return First, false
	}
	return *g.winner, true
}

// MoveCount is the number of moves applied since the game started.
func (g *Game) MoveCount() int { return g.moves }

// LegalTargetsOf returns the targets of the side-to-move piece on pos; ok is false when
// pos is empty, holds an opponent piece, or the game is over. It never mutates the game.
func (g *Game) LegalTargetsOf(pos Position) (PositionSet, bool) {
	if g.IsTerminated() {
		return nil, false
	}
	p := g.board.PieceAt(pos)
	if p == nil || p.Side() != g.turn {
		return nil, false
	}
	return g.targetsFor(p), true
}

func (g *Game) targetsFor(p *Piece) PositionSet {
	var ep *Position
	if g.enPassant != nil && g.enPassant.victim.Side() != p.Side() {
		t := g.enPassant.target
		ep = &t
	}
	return LegalTargets(p.Kind(), p.Side(), p.pos,
		g.board.PositionsOf(p.Side()), g.board.PositionsOf(p.Side().Opponent()), ep)
}

// Select feeds one square selection into the state machine.
// A finished game ignores further input.
func (g *Game) Select(pos Position) Outcome {
	if g.IsTerminated() {
		return Outcome{Kind: Deselected}
	}

	if g.selected == nil {
		p := g.board.PieceAt(pos)
		if p == nil || p.Side() != g.turn {
			return Outcome{Kind: Deselected}
		}
		g.selected = p
		g.possible = g.targetsFor(p)
		return Outcome{Kind: Selected, Targets: g.possible.Sorted()}
	}

	piece, possible := g.selected, g.possible
	g.selected, g.possible = nil, nil
	if !possible.Has(pos) {
		return Outcome{Kind: Deselected}
	}
	move := g.resolve(piece, pos)
	g.turn = g.turn.Opponent()
	return Outcome{Kind: MoveApplied, Move: &move}
}
