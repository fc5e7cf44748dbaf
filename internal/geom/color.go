package geom

import (
	"fmt"
	"image/color"

	"gopkg.in/yaml.v3"
)

// Color is a linear RGB triple. Components are nominally in [0,1] but light
// colours may exceed 1 to brighten a scene.
type Color struct {
	R, G, B float64
}

var (
	White = Color{1, 1, 1}
	Black = Color{0, 0, 0}
)

// Gray returns a colour with all components set to v
func Gray(v float64) Color {
	return Color{v, v, v}
}

func (c Color) Mul(o Color) Color      { return Color{c.R * o.R, c.G * o.G, c.B * o.B} }
func (c Color) Add(o Color) Color      { return Color{c.R + o.R, c.G + o.G, c.B + o.B} }
func (c Color) Scale(s float64) Color  { return Color{c.R * s, c.G * s, c.B * s} }
func (c Color) IsBlack() bool          { return c.R <= 0 && c.G <= 0 && c.B <= 0 }
func (c Color) String() string         { return fmt.Sprintf("rgb(%g,%g,%g)", c.R, c.G, c.B) }
func (c Color) components() [3]float64 { return [3]float64{c.R, c.G, c.B} }

// RGBA clamps the colour into an 8-bit opaque pixel
func (c Color) RGBA() color.RGBA {
	var out [3]uint8
	for i, v := range c.components() {
		switch {
		case v <= 0:
			out[i] = 0
		case v >= 1:
			out[i] = 255
		default:
			out[i] = uint8(v*255 + 0.5)
		}
	}
	return color.RGBA{out[0], out[1], out[2], 255}
}

func (c Color) MarshalYAML() (interface{}, error) {
	return Vec3{c.R, c.G, c.B}.MarshalYAML()
}

func (c *Color) UnmarshalYAML(node *yaml.Node) error {
	var v Vec3
	if err := v.UnmarshalYAML(node); err != nil {
		return err
	}
	*c = Color{v.X, v.Y, v.Z}
	return nil
}
