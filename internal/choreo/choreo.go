// Package choreo holds the six scene procedures of the aconitase animation.
//
// Each procedure maps (Cast, Timing, step) to a scene.Descriptor. Nothing is
// carried between calls: every position, rotation and light level is derived
// from the local step, so any frame can be produced on its own.
package choreo

import (
	"github.com/ivlev/aconitase/internal/geom"
	"github.com/ivlev/aconitase/internal/motion"
	"github.com/ivlev/aconitase/internal/scene"
)

// Timing is the length of the scene being choreographed
type Timing struct {
	Frames  int
	Seconds float64
	FPS     int
}

// SceneFunc produces the descriptor for local step of a scene
type SceneFunc func(c *Cast, t Timing, step int) (scene.Descriptor, error)

// Entry names a scene procedure
type Entry struct {
	Name   string
	Render SceneFunc
}

// Reference is the six-scene order of the animation
var Reference = []Entry{
	{Name: "citrate-rotation", Render: CitrateRotation},
	{Name: "moving", Render: Moving},
	{Name: "fading-in", Render: FadingIn},
	{Name: "switching", Render: Switching},
	{Name: "fading-out", Render: FadingOut},
	{Name: "final", Render: Final},
}

var (
	rotationAxis = geom.V(1, 1, 0)

	defaultCamera = scene.Camera{Location: geom.V(0, 0, -30), LookAt: geom.V(0, 0, 0)}
	frontLight    = geom.V(0, 0, -20)
	enzymeLight   = geom.V(30, 0, -20)
	enzymeInside  = geom.Color{R: 0.35, G: 0.16, B: 0.2}

	// Entrance of the enzyme, and where the product ends up
	entrance = geom.V(31, 0, 0)
	exit     = geom.V(51, 0, 0)
)

func (t Timing) progress(step int, durationSec float64, target geom.Vec3, delaySec float64) geom.Vec3 {
	return motion.LinearProgress(step, durationSec, target, t.FPS, delaySec)
}

// third returns the length of one third of the scene in frames (rounded
// down, used as a step threshold) and in seconds
func (t Timing) third() (int, float64) {
	return t.Frames / 3, t.Seconds / 3
}

func (c *Cast) enzyme() scene.Group {
	return scene.Group{Spheres: c.Enzyme}
}
