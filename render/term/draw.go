package term

import (
	"unicode/utf8"

	"cogentcore.org/core/math32"
	"github.com/gdamore/tcell/v2"
	"github.com/hupe1980/vizsync/render"
)

const (
	lineRune  = '·'
	pointRune = '•'
)

func drawText(s tcell.Screen, x, y int, text string, style tcell.Style) {
	for _, r := range text {
		s.SetContent(x, y, r, nil, style)
		x++
	}
}

// styleFor blends an element color (or the base color when elem is nil)
// with the material opacity.
func styleFor(mat *render.Material, elem *math32.Vector3) tcell.Style {
	c := math32.Vec3(mat.BaseColor.X, mat.BaseColor.Y, mat.BaseColor.Z)
	if elem != nil {
		c = *elem
	}
	c = c.MulScalar(math32.Clamp(mat.BaseColor.W, 0, 1))
	return tcell.StyleDefault.Foreground(tcell.NewRGBColor(channel(c.X), channel(c.Y), channel(c.Z)))
}

func channel(f float32) int32 {
	return int32(math32.Round(math32.Clamp(f, 0, 1) * 255))
}

func colorAt(colors []math32.Vector3, i int) *math32.Vector3 {
	if i < len(colors) {
		return &colors[i]
	}
	return nil
}

func drawTriangles(s tcell.Screen, p projection, m *render.TriangleMesh, mat *render.Material) {
	for _, t := range m.Triangles {
		for k := 0; k < 3; k++ {
			a, b := t[k], t[(k+1)%3]
			if int(a) >= len(m.Vertices) || int(b) >= len(m.Vertices) {
				continue
			}
			st := styleFor(mat, colorAt(m.Colors, int(a)))
			drawSegment(s, p, m.Vertices[a], m.Vertices[b], lineRune, st)
		}
	}
}

func drawLines(s tcell.Screen, p projection, l *render.LineSet, mat *render.Material) {
	for i, ln := range l.Lines {
		if int(ln[0]) >= len(l.Points) || int(ln[1]) >= len(l.Points) {
			continue
		}
		st := styleFor(mat, colorAt(l.Colors, i))
		drawSegment(s, p, l.Points[ln[0]], l.Points[ln[1]], lineRune, st)
	}
}

func drawPoints(s tcell.Screen, p projection, pc *render.PointCloud, mat *render.Material) {
	r := glyph(pc.Symbol, pc.Filled)
	for i, v := range pc.Points {
		col, row := p.cell(v)
		if p.inside(col, row) {
			s.SetContent(col, row, r, nil, styleFor(mat, colorAt(pc.Colors, i)))
		}
	}
}

func glyph(symbol string, filled bool) rune {
	switch symbol {
	case "":
		return pointRune
	case "o":
		if filled {
			return '●'
		}
		return '○'
	case "s":
		if filled {
			return '■'
		}
		return '□'
	case "^":
		if filled {
			return '▲'
		}
		return '△'
	}
	r, _ := utf8.DecodeRuneInString(symbol)
	return r
}

// drawSegment rasterizes the projected segment with Bresenham's algorithm.
func drawSegment(s tcell.Screen, p projection, a, b math32.Vector3, r rune, st tcell.Style) {
	x0, y0 := p.cell(a)
	x1, y1 := p.cell(b)

	dx, dy := abs(x1-x0), -abs(y1-y0)
	sx, sy := sign(x1-x0), sign(y1-y0)
	e := dx + dy
	for {
		if p.inside(x0, y0) {
			s.SetContent(x0, y0, r, nil, st)
		}
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	}
	return 0
}
