package choreo

import (
	"github.com/ivlev/aconitase/internal/geom"
	"github.com/ivlev/aconitase/internal/molecule"
	"github.com/ivlev/aconitase/internal/motion"
	"github.com/ivlev/aconitase/internal/scene"
)

// Atoms split off citrate in the switching scene
var (
	hydroxylAtoms = []int{5, 15}
	hydrogenAtoms = []int{13}
)

// CitrateRotation spins citrate two half-turns over the whole scene in front
// of a static camera.
func CitrateRotation(c *Cast, t Timing, step int) (scene.Descriptor, error) {
	d := scene.Descriptor{Camera: defaultCamera}
	d.AddLight(frontLight, geom.White)

	angle := motion.AngularProgress(2, float64(t.Frames), step)
	d.Add(c.Citrate.Place(molecule.Pose{Axis: rotationAxis, Angle: angle}))
	return d, nil
}

// Moving carries citrate to the enzyme entrance with the camera following
// at a fixed distance.
func Moving(c *Cast, t Timing, step int) (scene.Descriptor, error) {
	looking := t.progress(step, t.Seconds, entrance, 0)
	position := geom.V(looking.X, looking.Y, -30)

	d := scene.Descriptor{Camera: scene.Camera{Location: position, LookAt: looking}}
	d.AddLight(frontLight, geom.White)
	d.Add(c.Citrate.Place(molecule.At(looking)), c.enzyme())
	return d, nil
}

// FadingIn moves the camera into the enzyme while the light fades out
func FadingIn(c *Cast, t Timing, step int) (scene.Descriptor, error) {
	p := t.progress(step, t.Seconds, geom.V(0, 0, 25), 0)
	position := geom.V(32, p.Y, p.Z-30)

	d := scene.Descriptor{Camera: scene.Camera{Location: position, LookAt: geom.V(30, 0, 0)}}
	d.AddLight(frontLight, motion.FadeColor(step, t.Seconds, t.FPS, 0))
	d.Add(c.enzyme())
	return d, nil
}

// Switching shows the reaction inside the enzyme. The hydroxyl group and a
// hydrogen are pulled off citrate, swap places and move back in. Each third
// of the scene is one phase; a step on a boundary belongs to the earlier one.
func Switching(c *Cast, t Timing, step int) (scene.Descriptor, error) {
	phase, phaseSec := t.third()
	phaseFrames := float64(t.Frames) / 3

	var (
		ohOffset, hOffset geom.Vec3
		ohPose, hPose     molecule.Pose
	)
	switch {
	case step <= phase:
		// Split OH and H and move them away
		ohOffset = t.progress(step, phaseSec, geom.V(3, 0, 0), 0)
		hOffset = ohOffset
	case step <= 2*phase:
		// Move OH up and H down, turning OH on the way
		ohOffset = geom.V(6, 0, 0)
		hOffset = geom.V(6, 0, 0)
		hPose = molecule.At(t.progress(step, phaseSec, geom.V(0, -1.5, 0.39), phaseSec))
		ohPose = molecule.At(t.progress(step, phaseSec, geom.V(0, 2, -0.55), phaseSec)).
			Rotated(rotationAxis, motion.AngularProgress(0.5, phaseFrames, step-phase))
	default:
		// Move both back towards the molecule
		ohOffset = geom.V(6, 2.1, -0.6)
		hOffset = geom.V(6, -1.5, 0.39)
		ohPose = molecule.At(t.progress(step, phaseSec, geom.V(-9.5, 0, 0), 2*phaseSec)).
			Rotated(rotationAxis, motion.AngularProgress(0.5, phaseFrames, phase))
		hPose = molecule.At(t.progress(step, phaseSec, geom.V(-4, 0, 0), 2*phaseSec))
	}

	rest, oh, err := c.Citrate.Divide(hydroxylAtoms, "oh_group", ohOffset)
	if err != nil {
		return scene.Descriptor{}, err
	}
	rest, h, err := rest.Divide(hydrogenAtoms, "h_atom", hOffset)
	if err != nil {
		return scene.Descriptor{}, err
	}

	d := scene.Descriptor{Camera: defaultCamera}
	d.SetBackground(enzymeInside)
	d.AddLight(frontLight, geom.White)
	d.Add(rest.Place(molecule.Pose{}), oh.Place(ohPose), h.Place(hPose))
	return d, nil
}

// FadingOut shows isocitrate while the light dims, then backs the camera out
// of the enzyme.
func FadingOut(c *Cast, t Timing, step int) (scene.Descriptor, error) {
	phase, phaseSec := t.third()

	if step <= phase {
		d := scene.Descriptor{Camera: defaultCamera}
		d.SetBackground(enzymeInside)
		d.AddLight(frontLight, motion.FadeColor(step, phaseSec, t.FPS, 0))
		d.Add(c.Isocitrate.Place(molecule.Pose{}))
		return d, nil
	}

	p := t.progress(step, t.Seconds, geom.V(0, 0, -30), phaseSec)
	position := geom.V(35, p.Y, p.Z-5)

	d := scene.Descriptor{Camera: scene.Camera{Location: position, LookAt: geom.V(30, 0, 0)}}
	d.AddLight(enzymeLight, geom.White)
	d.Add(c.enzyme())
	return d, nil
}

// Final moves isocitrate out of the enzyme with the camera tracking it, then
// spins it at rest for the remaining two thirds.
func Final(c *Cast, t Timing, step int) (scene.Descriptor, error) {
	phase, phaseSec := t.third()
	location := geom.V(35, 0, -25)

	var (
		target geom.Vec3
		pose   molecule.Pose
	)
	if step <= phase {
		target = t.progress(step, phaseSec, exit.Sub(entrance), 0).Add(entrance)
		pose = molecule.At(target)
	} else {
		target = exit
		angle := motion.AngularProgress(2, 2*float64(t.Frames)/3, step-phase)
		pose = molecule.At(exit).Rotated(rotationAxis, angle)
	}

	d := scene.Descriptor{Camera: scene.Camera{Location: location, LookAt: target}}
	d.AddLight(enzymeLight, geom.White)
	d.Add(c.Isocitrate.Place(pose), c.enzyme())
	return d, nil
}
