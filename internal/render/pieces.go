package render

import (
	"bytes"
	"fmt"
	"image"
	"sync"

	nchess "github.com/corentings/chess/v2"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

// Glyph bodies share a 45x45 viewBox; %[1]s is the fill colour and %[2]s the outline.
var glyphs = map[nchess.PieceType]string{
	nchess.Pawn: `<circle cx="22.5" cy="13" r="5.5" fill="%[1]s" stroke="%[2]s" stroke-width="1.5"/>
<path d="M 17 19 L 28 19 L 31 33 L 14 33 Z" fill="%[1]s" stroke="%[2]s" stroke-width="1.5"/>
<rect x="11" y="33" width="23" height="5" fill="%[1]s" stroke="%[2]s" stroke-width="1.5"/>`,

	nchess.Rook: `<path d="M 12 9 L 16 9 L 16 12 L 20 12 L 20 9 L 25 9 L 25 12 L 29 12 L 29 9 L 33 9 L 33 15 L 30 17 L 30 31 L 15 31 L 15 17 L 12 15 Z" fill="%[1]s" stroke="%[2]s" stroke-width="1.5"/>
<rect x="10" y="31" width="25" height="7" fill="%[1]s" stroke="%[2]s" stroke-width="1.5"/>`,

	nchess.Knight: `<path d="M 15 38 L 33 38 L 32 24 C 32 15 27 9 20 8 L 19 12 L 15 15 L 10 24 L 13 27 L 18 23 L 21 22 L 15 32 Z" fill="%[1]s" stroke="%[2]s" stroke-width="1.5"/>
<circle cx="17" cy="16" r="1.2" fill="%[2]s"/>`,

	nchess.Bishop: `<circle cx="22.5" cy="8" r="2.5" fill="%[1]s" stroke="%[2]s" stroke-width="1.5"/>
<path d="M 22.5 11 C 15 17 14 24 17 30 L 28 30 C 31 24 30 17 22.5 11 Z" fill="%[1]s" stroke="%[2]s" stroke-width="1.5"/>
<rect x="11" y="32" width="23" height="6" fill="%[1]s" stroke="%[2]s" stroke-width="1.5"/>`,

	nchess.Queen: `<path d="M 9 14 L 14 29 L 31 29 L 36 14 L 29 23 L 27 10 L 22.5 22 L 18 10 L 16 23 Z" fill="%[1]s" stroke="%[2]s" stroke-width="1.5"/>
<circle cx="9" cy="12" r="2" fill="%[1]s" stroke="%[2]s" stroke-width="1.2"/>
<circle cx="18" cy="8.5" r="2" fill="%[1]s" stroke="%[2]s" stroke-width="1.2"/>
<circle cx="27" cy="8.5" r="2" fill="%[1]s" stroke="%[2]s" stroke-width="1.2"/>
<circle cx="36" cy="12" r="2" fill="%[1]s" stroke="%[2]s" stroke-width="1.2"/>
<rect x="12" y="30" width="21" height="8" fill="%[1]s" stroke="%[2]s" stroke-width="1.5"/>`,

	nchess.King: `<path d="M 21 4 L 24 4 L 24 7 L 27 7 L 27 10 L 24 10 L 24 14 L 21 14 L 21 10 L 18 10 L 18 7 L 21 7 Z" fill="%[1]s" stroke="%[2]s" stroke-width="1.2"/>
<path d="M 22.5 15 C 12 15 8 22 13 30 L 32 30 C 37 22 33 15 22.5 15 Z" fill="%[1]s" stroke="%[2]s" stroke-width="1.5"/>
<rect x="11" y="31" width="23" height="7" fill="%[1]s" stroke="%[2]s" stroke-width="1.5"/>`,
}

func glyphSVG(piece nchess.Piece) ([]byte, error) {
	body, ok := glyphs[piece.Type()]
	if !ok {
		return nil, fmt.Errorf("no glyph for piece %v", piece)
	}
	fill, outline := "#f8f8f2", "#1e1e1e"
	if piece.Color() == nchess.Black {
		fill, outline = "#2b2b2b", "#f0f0f0"
	}
	var b bytes.Buffer
	b.WriteString(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 45 45" width="45" height="45">`)
	fmt.Fprintf(&b, body, fill, outline)
	b.WriteString(`</svg>`)
	return b.Bytes(), nil
}

type pieceCacheKey struct {
	piece nchess.Piece
	size  int
}

var (
	pieceCache   = map[pieceCacheKey]*image.RGBA{}
	pieceCacheMu sync.RWMutex
)

func renderPieceImage(piece nchess.Piece, size int) (image.Image, error) {
	key := pieceCacheKey{piece: piece, size: size}
	pieceCacheMu.RLock()
	img, ok := pieceCache[key]
	pieceCacheMu.RUnlock()
	if ok {
		return img, nil
	}

	data, err := glyphSVG(piece)
	if err != nil {
		return nil, err
	}
	icon, err := oksvg.ReadIconStream(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse piece svg: %w", err)
	}
	icon.SetTarget(0, 0, float64(size), float64(size))

	img = image.NewRGBA(image.Rect(0, 0, size, size))
	scanner := rasterx.NewScannerGV(size, size, img, img.Bounds())
	icon.Draw(rasterx.NewDasher(size, size, scanner), 1.0)

	pieceCacheMu.Lock()
	pieceCache[key] = img
	pieceCacheMu.Unlock()
	return img, nil
}
