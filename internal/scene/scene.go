// Package scene describes a single renderable frame: camera, lights,
// background and primitives. A Descriptor carries no behaviour and is safe to
// hand to a renderer or serialise.
package scene

import "github.com/ivlev/aconitase/internal/geom"

// Camera is a pinhole camera at Location aimed at LookAt
type Camera struct {
	Location geom.Vec3 `yaml:"location"`
	LookAt   geom.Vec3 `yaml:"look_at"`
}

// Light is a point light. Color doubles as intensity: black is off.
type Light struct {
	Position geom.Vec3  `yaml:"position"`
	Color    geom.Color `yaml:"color"`
}

// Finish holds the surface parameters of a primitive
type Finish struct {
	Phong      float64 `yaml:"phong,omitempty"`
	Reflection float64 `yaml:"reflection,omitempty"`
}

type Sphere struct {
	Center geom.Vec3  `yaml:"center"`
	Radius float64    `yaml:"radius"`
	Color  geom.Color `yaml:"color"`
	Finish Finish     `yaml:"finish,omitempty"`
}

// Cylinder is a capped cylinder between P1 and P2
type Cylinder struct {
	P1     geom.Vec3  `yaml:"p1"`
	P2     geom.Vec3  `yaml:"p2"`
	Radius float64    `yaml:"radius"`
	Color  geom.Color `yaml:"color"`
}

// Descriptor is everything a renderer needs for one frame
type Descriptor struct {
	Frame      int         `yaml:"frame"`
	Scene      int         `yaml:"scene"` // 1-based
	Name       string      `yaml:"name"`
	Step       int         `yaml:"step"`
	Camera     Camera      `yaml:"camera"`
	Lights     []Light     `yaml:"lights"`
	Background *geom.Color `yaml:"background,omitempty"`
	Spheres    []Sphere    `yaml:"spheres,omitempty"`
	Cylinders  []Cylinder  `yaml:"cylinders,omitempty"`
}

// Group is a batch of primitives making up one object
type Group struct {
	Spheres   []Sphere
	Cylinders []Cylinder
}

// Add appends the primitives of groups to the descriptor
func (d *Descriptor) Add(groups ...Group) {
	for _, g := range groups {
		d.Spheres = append(d.Spheres, g.Spheres...)
		d.Cylinders = append(d.Cylinders, g.Cylinders...)
	}
}

// AddLight appends a light source
func (d *Descriptor) AddLight(position geom.Vec3, color geom.Color) {
	d.Lights = append(d.Lights, Light{Position: position, Color: color})
}

// SetBackground sets a flat background colour
func (d *Descriptor) SetBackground(c geom.Color) {
	d.Background = &c
}
