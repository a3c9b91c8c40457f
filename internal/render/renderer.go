package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	imagedraw "image/draw"
	"image/png"
	"strings"

	nchess "github.com/corentings/chess/v2"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// MoveHighlight marks the last applied move.
type MoveHighlight struct {
	From nchess.Square
	To   nchess.Square
}

// Options controls what is drawn on top of the board.
type Options struct {
	Header string
	Turn   string
	// Banner replaces the turn panel when set, e.g. for a finished duel.
	Banner      string
	LastMove    *MoveHighlight
	Selected    *nchess.Square
	Targets     []nchess.Square
	Perspective nchess.Color
}

type BoardRenderer interface {
	RenderPNG(ctx context.Context, board *nchess.Board, opts Options) ([]byte, error)
}

type svgBoardRenderer struct {
	face font.Face
}

func NewSVGBoardRenderer() BoardRenderer {
	return &svgBoardRenderer{face: basicfont.Face7x13}
}

const (
	squareSize   = 64
	boardPixels  = squareSize * 8
	sideMargin   = 32
	topMargin    = 96
	bottomMargin = 32
	panelHeight  = 30
	panelGap     = 10
	panelRadius  = 10
	panelPadX    = 18
)

var (
	lightSquare     = color.RGBA{233, 207, 163, 255}
	darkSquare      = color.RGBA{187, 136, 96, 255}
	backgroundColor = color.RGBA{22, 24, 36, 255}
	lastMoveFill    = color.NRGBA{R: 255, G: 228, B: 120, A: 130}
	selectedFill    = color.NRGBA{R: 120, G: 200, B: 255, A: 150}
	targetFill      = color.NRGBA{R: 250, G: 248, B: 240, A: 150}
	captureRing     = color.NRGBA{R: 220, G: 70, B: 60, A: 170}
	hudPanelColor   = color.NRGBA{R: 28, G: 31, B: 46, A: 250}
	hudBannerColor  = color.NRGBA{R: 120, G: 40, B: 40, A: 250}
	hudShadowColor  = color.NRGBA{0, 0, 0, 50}
	hudTextColor    = color.NRGBA{R: 236, G: 239, B: 255, A: 255}
	coordTextColor  = color.NRGBA{R: 8, G: 214, B: 120, A: 255}
)

// layout maps squares to pixels for one viewing side.
type layout struct {
	origin image.Point
	flip   bool
}

func (l layout) rect(sq nchess.Square) image.Rectangle {
	col, row := int(sq.File()), 7-int(sq.Rank())
	if l.flip {
		col, row = 7-col, 7-row
	}
	x := l.origin.X + col*squareSize
	y := l.origin.Y + row*squareSize
	return image.Rect(x, y, x+squareSize, y+squareSize)
}

func (r *svgBoardRenderer) RenderPNG(ctx context.Context, board *nchess.Board, opts Options) ([]byte, error) {
	if board == nil {
		return nil, fmt.Errorf("board is nil")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	width := boardPixels + sideMargin*2
	height := boardPixels + topMargin + bottomMargin
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	imagedraw.Draw(img, img.Bounds(), image.NewUniform(backgroundColor), image.Point{}, imagedraw.Src)

	l := layout{origin: image.Pt(sideMargin, topMargin), flip: opts.Perspective == nchess.Black}
	boardRect := image.Rect(l.origin.X, l.origin.Y, l.origin.X+boardPixels, l.origin.Y+boardPixels)

	r.drawHUD(img, opts, boardRect)
	drawSquares(img, l)
	if hl := opts.LastMove; hl != nil {
		fillRect(img, l.rect(hl.From), lastMoveFill)
		fillRect(img, l.rect(hl.To), lastMoveFill)
	}
	if opts.Selected != nil {
		fillRect(img, l.rect(*opts.Selected), selectedFill)
	}
	if err := drawPieces(img, board, l); err != nil {
		return nil, err
	}
	drawTargets(img, board, opts.Targets, l)
	r.drawCoordinates(img, l)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func allSquares() []nchess.Square {
	out := make([]nchess.Square, 0, 64)
	for rank := nchess.Rank1; rank <= nchess.Rank8; rank++ {
		for file := nchess.FileA; file <= nchess.FileH; file++ {
			out = append(out, nchess.NewSquare(file, rank))
		}
	}
	return out
}

func drawSquares(dst imagedraw.Image, l layout) {
	for _, sq := range allSquares() {
		clr := lightSquare
		if (int(sq.File())+int(sq.Rank()))%2 == 0 {
			clr = darkSquare
		}
		imagedraw.Draw(dst, l.rect(sq), image.NewUniform(clr), image.Point{}, imagedraw.Src)
	}
}

func drawPieces(dst imagedraw.Image, board *nchess.Board, l layout) error {
	for sq, piece := range board.SquareMap() {
		if piece == nchess.NoPiece {
			continue
		}
		glyph, err := renderPieceImage(piece, squareSize)
		if err != nil {
			return err
		}
		imagedraw.Draw(dst, l.rect(sq), glyph, image.Point{}, imagedraw.Over)
	}
	return nil
}

// drawTargets tints empty targets and rings occupied ones.
func drawTargets(img *image.RGBA, board *nchess.Board, targets []nchess.Square, l layout) {
	for _, sq := range targets {
		rect := l.rect(sq)
		if board.Piece(sq) == nchess.NoPiece {
			c := rect.Min.Add(image.Pt(squareSize/2, squareSize/2))
			fillPolygon(img, circlePoints(float64(c.X), float64(c.Y), squareSize/6, 24), targetFill)
			continue
		}
		strokeRect(img, rect, 4, captureRing)
	}
}

func (r *svgBoardRenderer) drawHUD(img *image.RGBA, opts Options, boardRect image.Rectangle) {
	drawer := &font.Drawer{Dst: img, Face: r.face}

	title := strings.TrimSpace(opts.Header)
	if title == "" {
		title = "Duel"
	}
	status, statusColor := strings.TrimSpace(opts.Turn), hudPanelColor
	if b := strings.TrimSpace(opts.Banner); b != "" {
		status, statusColor = b, hudBannerColor
	}

	statusBottom := boardRect.Min.Y - panelGap*2
	statusTop := statusBottom - panelHeight
	titleBottom := statusTop - panelGap
	titleRect := image.Rect(boardRect.Min.X, titleBottom-panelHeight, boardRect.Max.X, titleBottom)

	drawPanel(img, drawer, titleRect, title, hudPanelColor)
	if status == "" {
		return
	}
	w := drawer.MeasureString(status).Round() + panelPadX*2
	if w > boardRect.Dx() {
		w = boardRect.Dx()
	}
	left := boardRect.Min.X + (boardRect.Dx()-w)/2
	drawPanel(img, drawer, image.Rect(left, statusTop, left+w, statusBottom), status, statusColor)
}

func drawPanel(img *image.RGBA, drawer *font.Drawer, rect image.Rectangle, text string, bg color.Color) {
	fillPolygon(img, roundedRectPoints(rect.Add(image.Pt(0, 4)), panelRadius), hudShadowColor)
	fillPolygon(img, roundedRectPoints(rect, panelRadius), bg)
	text = truncateWithEllipsis(drawer.Face, text, rect.Dx()-panelPadX*2)
	drawCenteredString(drawer, rect, text, hudTextColor)
}

func (r *svgBoardRenderer) drawCoordinates(img *image.RGBA, l layout) {
	drawer := &font.Drawer{Dst: img, Face: r.face, Src: image.NewUniform(coordTextColor)}
	ascent := r.face.Metrics().Ascent.Ceil()
	for i := 0; i < 8; i++ {
		rankRect := l.rect(nchess.NewSquare(nchess.FileA, nchess.Rank(i)))
		fileRect := l.rect(nchess.NewSquare(nchess.File(i), nchess.Rank1))
		if l.flip {
			rankRect = l.rect(nchess.NewSquare(nchess.FileH, nchess.Rank(i)))
			fileRect = l.rect(nchess.NewSquare(nchess.File(i), nchess.Rank8))
		}
		drawCenteredText(drawer, nchess.Rank(i).String(), l.origin.X-sideMargin/2, rankRect.Min.Y+squareSize/2+ascent/2)
		drawCenteredText(drawer, nchess.File(i).String(), fileRect.Min.X+squareSize/2, l.origin.Y+boardPixels+ascent+4)
	}
}

func truncateWithEllipsis(face font.Face, text string, maxWidth int) string {
	text = strings.TrimSpace(text)
	drawer := font.Drawer{Face: face}
	if text == "" || maxWidth <= 0 || drawer.MeasureString(text).Round() <= maxWidth {
		return text
	}
	runes := []rune(text)
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		if c := string(runes) + "..."; drawer.MeasureString(c).Round() <= maxWidth {
			return c
		}
	}
	return ""
}

func drawCenteredString(drawer *font.Drawer, rect image.Rectangle, text string, clr color.Color) {
	if text == "" {
		return
	}
	m := drawer.Face.Metrics()
	x := rect.Min.X + (rect.Dx()-drawer.MeasureString(text).Round())/2
	if x < rect.Min.X {
		x = rect.Min.X
	}
	drawer.Src = image.NewUniform(clr)
	drawer.Dot = fixed.P(x, rect.Min.Y+(rect.Dy()+m.Ascent.Ceil()-m.Descent.Ceil())/2)
	drawer.DrawString(text)
}

func drawCenteredText(drawer *font.Drawer, text string, centerX, baseline int) {
	w := drawer.MeasureString(text).Round()
	drawer.Dot = fixed.P(centerX-w/2, baseline)
	drawer.DrawString(text)
}
