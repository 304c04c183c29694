package actor

import (
	"fmt"
	"strings"

	"cogentcore.org/core/colors"
	"cogentcore.org/core/math32"
	"github.com/hupe1980/vizsync/render"
	"github.com/hupe1980/vizsync/schema"
)

// ParseColor resolves a CSS color name or a #rgb/#rrggbb hex string.
func ParseColor(s string) (math32.Vector3, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "#") {
		c, err := colors.FromHex(s)
		if err != nil {
			return math32.Vector3{}, fmt.Errorf("%w %q: %w", ErrInvalidColor, s, err)
		}
		return rgb(c), nil
	}
	c, err := colors.FromName(strings.ToLower(s))
	if err != nil {
		return math32.Vector3{}, fmt.Errorf("%w %q: %w", ErrInvalidColor, s, err)
	}
	return rgb(c), nil
}

// CheckColor resolves the color provided in p, if any.
func CheckColor(p schema.Patch) error {
	c, ok := p.Fields[schema.Color].(string)
	if !ok {
		return nil
	}
	_, err := ParseColor(c)
	return err
}

// Opacity returns v, or 1 when v is outside [0,1].
func Opacity(v float64) float32 {
	if v < 0 || v > 1 {
		return 1
	}
	return float32(v)
}

var white = math32.Vec3(1, 1, 1)

func baseColor(c math32.Vector3, opacity float32) math32.Vector4 {
	return math32.Vec4(c.X, c.Y, c.Z, opacity)
}

// newMaterial builds the material of a snapshot.
func newMaterial(snap schema.Snapshot, wireframe bool) (render.Material, error) {
	c, err := ParseColor(snap.Text(schema.Color))
	if err != nil {
		return render.Material{}, err
	}
	m := render.Material{
		BaseColor: baseColor(c, Opacity(snap.Float(schema.Opacity))),
		Shader:    render.ShaderSolid,
		LineWidth: 1,
		PointSize: 1,
	}
	if wireframe {
		m.Shader = render.ShaderUnlitLine
	}
	if snap.Has(schema.LineWidth) {
		m.LineWidth = float32(snap.Float(schema.LineWidth))
	}
	if snap.Has(schema.PointSize) {
		m.PointSize = float32(snap.Int(schema.PointSize))
	}
	return m, nil
}
