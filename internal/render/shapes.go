package render

import (
	"image"
	"image/color"
	imagedraw "image/draw"
	"math"

	"github.com/srwiley/rasterx"
	"golang.org/x/image/math/fixed"
)

type pointF struct{ X, Y float64 }

func fillRect(img *image.RGBA, rect image.Rectangle, clr color.Color) {
	imagedraw.Draw(img, rect, image.NewUniform(clr), image.Point{}, imagedraw.Over)
}

func strokeRect(img *image.RGBA, rect image.Rectangle, width int, clr color.Color) {
	inner := rect.Inset(width)
	fillRect(img, image.Rect(rect.Min.X, rect.Min.Y, rect.Max.X, inner.Min.Y), clr)
	fillRect(img, image.Rect(rect.Min.X, inner.Max.Y, rect.Max.X, rect.Max.Y), clr)
	fillRect(img, image.Rect(rect.Min.X, inner.Min.Y, inner.Min.X, inner.Max.Y), clr)
	fillRect(img, image.Rect(inner.Max.X, inner.Min.Y, rect.Max.X, inner.Max.Y), clr)
}

// fillPolygon rasterizes a closed anti-aliased polygon onto img.
func fillPolygon(img *image.RGBA, pts []pointF, clr color.Color) {
	if len(pts) < 3 {
		return
	}
	b := img.Bounds()
	scanner := rasterx.NewScannerGV(b.Dx(), b.Dy(), img, b)
	filler := rasterx.NewFiller(b.Dx(), b.Dy(), scanner)
	filler.SetColor(clr)
	filler.Start(toFixed(pts[0]))
	for _, p := range pts[1:] {
		filler.Line(toFixed(p))
	}
	filler.Stop(true)
	filler.Draw()
}

func toFixed(p pointF) fixed.Point26_6 {
	return fixed.Point26_6{X: fixed.Int26_6(p.X * 64), Y: fixed.Int26_6(p.Y * 64)}
}

func circlePoints(cx, cy, r float64, segments int) []pointF {
	return arc(cx, cy, r, 0, 2*math.Pi, segments)
}

func arc(cx, cy, r, from, to float64, segments int) []pointF {
	pts := make([]pointF, 0, segments+1)
	for i := 0; i <= segments; i++ {
		a := from + (to-from)*float64(i)/float64(segments)
		pts = append(pts, pointF{X: cx + r*math.Cos(a), Y: cy + r*math.Sin(a)})
	}
	return pts
}

func roundedRectPoints(rect image.Rectangle, radius int) []pointF {
	r := float64(radius)
	if limit := float64(min(rect.Dx(), rect.Dy())) / 2; r > limit {
		r = limit
	}
	x0, y0 := float64(rect.Min.X), float64(rect.Min.Y)
	x1, y1 := float64(rect.Max.X), float64(rect.Max.Y)
	const seg = 6
	var pts []pointF
	pts = append(pts, arc(x1-r, y0+r, r, -math.Pi/2, 0, seg)...)
	pts = append(pts, arc(x1-r, y1-r, r, 0, math.Pi/2, seg)...)
	pts = append(pts, arc(x0+r, y1-r, r, math.Pi/2, math.Pi, seg)...)
	pts = append(pts, arc(x0+r, y0+r, r, math.Pi, 3*math.Pi/2, seg)...)
	return pts
}
