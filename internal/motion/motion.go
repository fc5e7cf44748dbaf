// Package motion holds the interpolation ramps used to choreograph scenes.
// Every function derives its value from the step alone so a frame can be
// computed without knowing any earlier frame.
package motion

import (
	"math"

	"github.com/ivlev/aconitase/internal/geom"
)

// Progress is the fraction of a ramp of durationSec seconds covered at step.
// The ramp starts delaySec seconds into the scene and reaches 1.0 on step
// fps*(delaySec+durationSec)-1. Values are not clamped: steps before the
// delay give a negative fraction and steps past the ramp exceed 1.
func Progress(step int, durationSec float64, fps int, delaySec float64) float64 {
	total := float64(fps) * durationSec
	effective := float64(step+1) - float64(fps)*delaySec
	return effective / total
}

// LinearProgress scales target by Progress component-wise
func LinearProgress(step int, durationSec float64, target geom.Vec3, fps int, delaySec float64) geom.Vec3 {
	return target.Scale(Progress(step, durationSec, fps, delaySec))
}

// AngularProgress is the rotation in radians after step steps of a ramp that
// turns totalRotation*π over durationFrames frames.
func AngularProgress(totalRotation, durationFrames float64, step int) float64 {
	return (totalRotation * math.Pi / durationFrames) * float64(step)
}

// Fade is a light intensity falling linearly from 1 to 0 over the ramp,
// clamped to [0,1] outside it.
func Fade(step int, durationSec float64, fps int, delaySec float64) float64 {
	return clamp01(1 - Progress(step, durationSec, fps, delaySec))
}

// FadeColor is a white light dimmed by Fade
func FadeColor(step int, durationSec float64, fps int, delaySec float64) geom.Color {
	return geom.Gray(Fade(step, durationSec, fps, delaySec))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
