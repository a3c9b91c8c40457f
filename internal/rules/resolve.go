package rules

// Effect is the side effect a confirmed move produced.
type Effect uint8

const (
	Moved Effect = iota
	Captured
	EnPassantCaptured
	GameOver
)

func (e Effect) String() string {
	switch e {
	case Captured:
		return "captured"
	case EnPassantCaptured:
		return "en_passant"
	case GameOver:
		return "game_over"
	default:
		return "moved"
	}
}

// Move describes an applied move. Captured is the removed piece, if any; Winner is
// meaningful only when Effect is GameOver.
type Move struct {
	Side     Side
	Kind     Kind
	From     Position
	To       Position
	Effect   Effect
	Captured *Piece
	Winner   Side
}

func (m Move) String() string {
	sep := "-"
	if m.Captured != nil {
		sep = "x"
	}
	return m.Kind.Letter() + m.From.String() + sep + m.To.String()
}

// resolve applies a move already validated against the mover's legal targets.
func (g *Game) resolve(p *Piece, to Position) Move {
	move := Move{Side: p.Side(), Kind: p.Kind(), From: p.pos, To: to, Effect: Moved}

	captured := g.board.PieceAt(to)
	switch {
	case captured != nil && captured.Side() != p.Side():
		move.Effect = Captured
	case captured == nil && p.Kind() == Pawn && g.enPassant != nil &&
		g.enPassant.target == to && g.enPassant.victim.Side() != p.Side():
		captured = g.enPassant.victim
		move.Effect = EnPassantCaptured
	default:
		captured = nil
	}

	if captured != nil {
		g.board.Remove(captured)
		move.Captured = captured
		if captured.Kind() == King {
			winner := p.Side()
			g.winner = &winner
			move.Effect = GameOver
			move.Winner = winner
		}
	}

	g.board.Relocate(p, to)

	g.enPassant = nil
	if p.Kind() == Pawn && abs(to.Row()-move.From.Row()) == 2 {
		g.enPassant = &enPassant{
			target: move.From.shift(0, p.Side().forward()),
			victim: p,
		}
	}
	g.moves++
	return move
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
