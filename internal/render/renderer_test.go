package render

import (
	"bytes"
	"context"
	"image/png"
	"testing"

	nchess "github.com/corentings/chess/v2"

	"github.com/park285/cheese-duel/internal/rules"
)

func TestBoardFromGame(t *testing.T) {
	b := BoardFromGame(rules.NewGame())
	if got := b.Piece(nchess.E1); got != nchess.WhiteKing {
		t.Fatalf("e1 = %v", got)
	}
	if got := b.Piece(nchess.D8); got != nchess.BlackKing {
		t.Fatalf("d8 = %v", got)
	}
	if got := b.Piece(nchess.E4); got != nchess.NoPiece {
		t.Fatalf("e4 = %v", got)
	}
	if Square(rules.MustParse("h8")) != nchess.H8 {
		t.Fatalf("square mapping broken")
	}
}

func TestRenderPNG(t *testing.T) {
	g := rules.NewGame()
	out := g.Select(rules.MustParse("b1"))
	sel := Square(rules.MustParse("b1"))
	opts := Options{
		Header:   "alice vs bob",
		Turn:     "white to move",
		Selected: &sel,
		Targets:  Squares(out.Targets),
		LastMove: &MoveHighlight{From: nchess.E7, To: nchess.E5},
	}
	r := NewSVGBoardRenderer()
	raw, err := r.RenderPNG(context.Background(), BoardFromGame(g), opts)
	if err != nil {
		t.Fatalf("RenderPNG: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != boardPixels+sideMargin*2 || b.Dy() != boardPixels+topMargin+bottomMargin {
		t.Fatalf("unexpected size %v", b)
	}

	opts.Perspective = nchess.Black
	flipped, err := r.RenderPNG(context.Background(), BoardFromGame(g), opts)
	if err != nil {
		t.Fatalf("RenderPNG flipped: %v", err)
	}
	if bytes.Equal(raw, flipped) {
		t.Fatalf("expected different images for flipped viewpoints")
	}
}

func TestRenderPNGErrors(t *testing.T) {
	r := NewSVGBoardRenderer()
	if _, err := r.RenderPNG(context.Background(), nil, Options{}); err == nil {
		t.Fatalf("expected error for nil board")
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := r.RenderPNG(ctx, BoardFromGame(rules.NewGame()), Options{}); err == nil {
		t.Fatalf("expected error for cancelled context")
	}
}

func TestEveryGlyphParses(t *testing.T) {
	for _, clr := range []nchess.Color{nchess.White, nchess.Black} {
		for pt := range glyphs {
			if _, err := renderPieceImage(nchess.NewPiece(pt, clr), 32); err != nil {
				t.Fatalf("%v %v: %v", clr, pt, err)
			}
		}
	}
}
