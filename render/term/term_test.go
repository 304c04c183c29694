package term

import (
	"testing"

	"cogentcore.org/core/math32"
	"github.com/gdamore/tcell/v2"
	"github.com/hupe1980/vizsync/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSimBackend(t *testing.T, w, h int) (*Backend, tcell.SimulationScreen) {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	b, err := New(func(o *Options) { o.Screen = screen })
	require.NoError(t, err)
	screen.SetSize(w, h)
	t.Cleanup(func() { _ = b.Close() })
	return b, screen
}

func TestRender_SinglePointCentered(t *testing.T) {
	b, screen := newSimBackend(t, 20, 10)

	pc := &render.PointCloud{Points: []math32.Vector3{math32.Vec3(3, 3, 3)}}
	mat := &render.Material{BaseColor: math32.Vec4(1, 0, 0, 1)}
	require.NoError(t, b.Add("Points_0", 0, pc, mat))
	require.NoError(t, b.Render())

	r, _, style, _ := screen.GetContent(9, 4)
	assert.Equal(t, pointRune, r)
	fg, _, _ := style.Decompose()
	assert.Equal(t, tcell.NewRGBColor(255, 0, 0), fg)
}

func TestRender_LineAcrossWindow(t *testing.T) {
	b, screen := newSimBackend(t, 22, 6)

	ls := &render.LineSet{
		Points: []math32.Vector3{math32.Vec3(0, 0, 0), math32.Vec3(10, 0, 0)},
		Lines:  [][2]uint32{{0, 1}},
		Colors: []math32.Vector3{math32.Vec3(0, 1, 0)},
	}
	require.NoError(t, b.Add("Arrows_0", 0, ls, &render.Material{BaseColor: math32.Vec4(1, 1, 1, 1)}))
	require.NoError(t, b.Render())

	// The segment spans the inner width on the middle row.
	for col := 1; col <= 20; col++ {
		r, _, style, _ := screen.GetContent(col, 2)
		assert.Equal(t, lineRune, r, "col %d", col)
		fg, _, _ := style.Decompose()
		assert.Equal(t, tcell.NewRGBColor(0, 255, 0), fg)
	}
}

func TestRender_WindowsSideBySide(t *testing.T) {
	b, screen := newSimBackend(t, 40, 10)

	left := &render.PointCloud{Points: []math32.Vector3{{}}}
	right := &render.PointCloud{Points: []math32.Vector3{{}}, Symbol: "o", Filled: true}
	mat := &render.Material{BaseColor: math32.Vec4(1, 1, 1, 1)}
	require.NoError(t, b.Add("Points_0", 0, left, mat))
	require.NoError(t, b.Add("Points_1", 1, right, mat))
	require.NoError(t, b.Render())

	r, _, _, _ := screen.GetContent(9, 4)
	assert.Equal(t, pointRune, r)
	r, _, _, _ = screen.GetContent(29, 4)
	assert.Equal(t, '●', r)
}

func TestBackend_Errors(t *testing.T) {
	b, _ := newSimBackend(t, 10, 5)
	pc := &render.PointCloud{}
	require.NoError(t, b.Add("Points_0", 0, pc, &render.Material{}))
	assert.ErrorIs(t, b.Add("Points_0", 0, pc, &render.Material{}), render.ErrDuplicate)
	assert.ErrorIs(t, b.Update("Mesh_0", render.UpdatePoints), render.ErrUnknown)
	require.NoError(t, b.Update("Points_0", render.UpdatePoints))

	require.NoError(t, b.Close())
	require.NoError(t, b.Close())
	assert.ErrorIs(t, b.Render(), render.ErrClosed)
}

func TestGlyph(t *testing.T) {
	assert.Equal(t, '○', glyph("o", false))
	assert.Equal(t, '■', glyph("s", true))
	assert.Equal(t, 'x', glyph("x", true))
	assert.Equal(t, pointRune, glyph("", false))
}
