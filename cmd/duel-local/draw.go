package main

import (
	"strings"

	"github.com/fatih/color"

	"github.com/park285/cheese-duel/internal/rules"
)

var (
	lightSquare = color.New(color.FgBlack, color.BgHiWhite)
	darkSquare  = color.New(color.FgBlack, color.BgGreen)
	lastSquare  = color.New(color.FgBlack, color.BgYellow)
	selSquare   = color.New(color.FgBlack, color.BgHiBlue)
	target      = color.New(color.FgBlack, color.BgHiCyan)
	coordinate  = color.New(color.Bold)
)

var glyphs = [2][6]string{
	{"♙", "♘", "♗", "♖", "♕", "♔"},
	{"♟", "♞", "♝", "♜", "♛", "♚"},
}

func glyph(p *rules.Piece) string {
	if p == nil {
		return " "
	}
	return glyphs[p.Side()][p.Kind()]
}

// draw renders the board with the last move, the selection and its targets highlighted.
func draw(g *rules.Game, last *rules.Move, flipped bool) string {
	sel, targets, selecting := g.Selection()
	marked := rules.NewPositionSet(targets...)

	var b strings.Builder
	for i := 0; i < rules.BoardSize; i++ {
		row := rules.BoardSize - 1 - i
		if flipped {
			row = i
		}
		b.WriteString(coordinate.Sprintf(" %d ", row+1))
		for j := 0; j < rules.BoardSize; j++ {
			col := j
			if flipped {
				col = rules.BoardSize - 1 - j
			}
			pos := rules.MustPosition(col, row)
			style := darkSquare
			if (col+row)%2 == 1 {
				style = lightSquare
			}
			switch {
			case selecting && pos == sel:
				style = selSquare
			case marked.Has(pos):
				style = target
			case last != nil && (pos == last.From || pos == last.To):
				style = lastSquare
			}
			cell := glyph(g.PieceAt(pos))
			if cell == " " && marked.Has(pos) {
				cell = "·"
			}
			b.WriteString(style.Sprintf(" %s ", cell))
		}
		b.WriteString("\n")
	}
	b.WriteString("   ")
	for j := 0; j < rules.BoardSize; j++ {
		col := j
		if flipped {
			col = rules.BoardSize - 1 - j
		}
		b.WriteString(coordinate.Sprintf(" %c ", 'a'+col))
	}
	return b.String()
}
