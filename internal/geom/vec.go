package geom

import (
	"fmt"
	"math"

	"gopkg.in/yaml.v3"
)

// Vec3 is a float64 3D vector in scene units
type Vec3 struct {
	X, Y, Z float64
}

// V is shorthand for Vec3{x, y, z}
func V(x, y, z float64) Vec3 {
	return Vec3{X: x, Y: y, Z: z}
}

func (v Vec3) Add(o Vec3) Vec3      { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Sub(o Vec3) Vec3      { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }
func (v Vec3) Dot(o Vec3) float64   { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }
func (v Vec3) Len() float64         { return math.Sqrt(v.Dot(v)) }

// Cross returns the cross product of v and o
func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{
		X: v.Y*o.Z - v.Z*o.Y,
		Y: v.Z*o.X - v.X*o.Z,
		Z: v.X*o.Y - v.Y*o.X,
	}
}

// Normalize returns the unit vector of v, or the zero vector when v has no length
func (v Vec3) Normalize() Vec3 {
	l := v.Len()
	if l == 0 {
		return Vec3{}
	}
	return v.Scale(1 / l)
}

// Rotate turns v about the unit direction of axis by angle radians (Rodrigues).
// A zero axis leaves v unchanged.
func (v Vec3) Rotate(axis Vec3, angle float64) Vec3 {
	k := axis.Normalize()
	if k == (Vec3{}) || angle == 0 {
		return v
	}
	cos, sin := math.Cos(angle), math.Sin(angle)
	return v.Scale(cos).
		Add(k.Cross(v).Scale(sin)).
		Add(k.Scale(k.Dot(v) * (1 - cos)))
}

// RotateAbout turns v about an axis passing through center
func (v Vec3) RotateAbout(center, axis Vec3, angle float64) Vec3 {
	return v.Sub(center).Rotate(axis, angle).Add(center)
}

func (v Vec3) String() string { return fmt.Sprintf("(%g,%g,%g)", v.X, v.Y, v.Z) }

// MarshalYAML writes the vector as a flow sequence [x, y, z]
func (v Vec3) MarshalYAML() (interface{}, error) {
	n := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
	for _, c := range []float64{v.X, v.Y, v.Z} {
		n.Content = append(n.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: formatFloat(c)})
	}
	return n, nil
}

// UnmarshalYAML reads a three element sequence
func (v *Vec3) UnmarshalYAML(node *yaml.Node) error {
	var c []float64
	if err := node.Decode(&c); err != nil {
		return err
	}
	if len(c) != 3 {
		return fmt.Errorf("line %d: expected 3 components, got %d", node.Line, len(c))
	}
	*v = Vec3{c[0], c[1], c[2]}
	return nil
}

func formatFloat(f float64) string {
	return fmt.Sprintf("%g", f)
}
