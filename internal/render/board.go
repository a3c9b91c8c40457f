package render

import (
	nchess "github.com/corentings/chess/v2"

	"github.com/park285/cheese-duel/internal/rules"
)

// Square maps a rules position onto the chess library's square.
func Square(p rules.Position) nchess.Square {
	return nchess.NewSquare(nchess.File(p.Col()), nchess.Rank(p.Row()))
}

// Squares maps a list of positions, keeping order.
func Squares(ps []rules.Position) []nchess.Square {
	out := make([]nchess.Square, 0, len(ps))
	for _, p := range ps {
		out = append(out, Square(p))
	}
	return out
}

var pieceTypes = map[rules.Kind]nchess.PieceType{
	rules.Pawn:   nchess.Pawn,
	rules.Knight: nchess.Knight,
	rules.Bishop: nchess.Bishop,
	rules.Rook:   nchess.Rook,
	rules.Queen:  nchess.Queen,
	rules.King:   nchess.King,
}

// BoardFromPieces builds a drawable board from each side's live pieces.
func BoardFromPieces(first, second []*rules.Piece) *nchess.Board {
	m := make(map[nchess.Square]nchess.Piece, len(first)+len(second))
	for _, list := range [][]*rules.Piece{first, second} {
		for _, p := range list {
			clr := nchess.White
			if p.Side() == rules.Second {
				clr = nchess.Black
			}
			m[Square(p.Position())] = nchess.NewPiece(pieceTypes[p.Kind()], clr)
		}
	}
	return nchess.NewBoard(m)
}

// BoardFromGame is BoardFromPieces for a whole game.
func BoardFromGame(g *rules.Game) *nchess.Board {
	return BoardFromPieces(g.Pieces(rules.First), g.Pieces(rules.Second))
}
