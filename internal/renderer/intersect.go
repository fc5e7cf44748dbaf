package renderer

import (
	"math"

	"github.com/ivlev/aconitase/internal/geom"
	"github.com/ivlev/aconitase/internal/scene"
)

const epsilon = 1e-4

// hit describes the nearest intersection along a ray
type hit struct {
	t      float64
	normal geom.Vec3
	color  geom.Color
	finish scene.Finish
}

// intersectSphere returns the distance t along the ray (origin, dir)
// where it first hits the sphere (if any).
func intersectSphere(origin, dir geom.Vec3, s scene.Sphere) (float64, bool) {
	oc := origin.Sub(s.Center)
	a := dir.Dot(dir)
	b := 2 * oc.Dot(dir)
	c := oc.Dot(oc) - s.Radius*s.Radius
	discriminant := b*b - 4*a*c
	if discriminant < 0 {
		return 0, false
	}
	sqrtDisc := math.Sqrt(discriminant)
	t1 := (-b - sqrtDisc) / (2 * a)
	t2 := (-b + sqrtDisc) / (2 * a)
	if t1 > epsilon {
		return t1, true
	}
	if t2 > epsilon {
		return t2, true
	}
	return 0, false
}

// intersectCylinder computes the intersection of a ray with a finite cylinder
// (including caps). It returns the smallest positive t and the surface
// normal at the hit.
func intersectCylinder(origin, dir geom.Vec3, cyl scene.Cylinder) (float64, bool, geom.Vec3) {
	v := cyl.P2.Sub(cyl.P1)
	length := v.Len()
	if length == 0 {
		return 0, false, geom.Vec3{}
	}
	axis := v.Scale(1 / length)
	dp := origin.Sub(cyl.P1)

	// Lateral surface
	dDotV := dir.Dot(axis)
	dPerp := dir.Sub(axis.Scale(dDotV))
	dpPerp := dp.Sub(axis.Scale(dp.Dot(axis)))
	A := dPerp.Dot(dPerp)
	B := 2 * dPerp.Dot(dpPerp)
	C := dpPerp.Dot(dpPerp) - cyl.Radius*cyl.Radius

	tMin := math.Inf(1)
	found := false
	var normal geom.Vec3

	if math.Abs(A) > epsilon {
		disc := B*B - 4*A*C
		if disc >= 0 {
			sqrtDisc := math.Sqrt(disc)
			for _, t := range []float64{(-B - sqrtDisc) / (2 * A), (-B + sqrtDisc) / (2 * A)} {
				if t <= epsilon || t >= tMin {
					continue
				}
				p := origin.Add(dir.Scale(t))
				// Must lie between the caps
				proj := p.Sub(cyl.P1).Dot(axis)
				if proj >= 0 && proj <= length {
					tMin = t
					found = true
					normal = p.Sub(cyl.P1.Add(axis.Scale(proj))).Normalize()
				}
			}
		}
	}

	// Caps
	if math.Abs(dDotV) > epsilon {
		for _, end := range []struct {
			center geom.Vec3
			normal geom.Vec3
		}{
			{cyl.P1, axis.Scale(-1)},
			{cyl.P2, axis},
		} {
			t := -(origin.Sub(end.center).Dot(axis)) / dDotV
			if t <= epsilon || t >= tMin {
				continue
			}
			p := origin.Add(dir.Scale(t))
			if p.Sub(end.center).Len() <= cyl.Radius {
				tMin = t
				found = true
				normal = end.normal
			}
		}
	}

	return tMin, found, normal
}

// nearest finds the closest primitive hit by the ray
func nearest(origin, dir geom.Vec3, d *scene.Descriptor) (hit, bool) {
	best := hit{t: math.Inf(1)}
	found := false

	for _, s := range d.Spheres {
		if t, ok := intersectSphere(origin, dir, s); ok && t < best.t {
			p := origin.Add(dir.Scale(t))
			best = hit{t: t, normal: p.Sub(s.Center).Normalize(), color: s.Color, finish: s.Finish}
			found = true
		}
	}
	for _, c := range d.Cylinders {
		if t, ok, n := intersectCylinder(origin, dir, c); ok && t < best.t {
			best = hit{t: t, normal: n, color: c.Color}
			found = true
		}
	}
	return best, found
}

// occluded reports whether anything lies between origin and a point maxT
// along dir
func occluded(origin, dir geom.Vec3, maxT float64, d *scene.Descriptor) bool {
	for _, s := range d.Spheres {
		if t, ok := intersectSphere(origin, dir, s); ok && t < maxT {
			return true
		}
	}
	for _, c := range d.Cylinders {
		if t, ok, _ := intersectCylinder(origin, dir, c); ok && t < maxT {
			return true
		}
	}
	return false
}
