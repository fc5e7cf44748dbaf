// Package renderer ray traces a scene.Descriptor into an RGBA image.
package renderer

import (
	"context"
	"image"
	"math"
	"runtime"

	"golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"

	"github.com/ivlev/aconitase/internal/geom"
	"github.com/ivlev/aconitase/internal/scene"
	"github.com/ivlev/aconitase/internal/system"
)

// Renderer holds the image size and shading parameters. It has no per-frame
// state and may render several frames at once.
type Renderer struct {
	Width, Height int
	Supersample   int     // rays per pixel along each axis, downscaled after tracing
	FOV           float64 // horizontal field of view in radians
	Ambient       float64
	Diffuse       float64
	Shininess     float64
	MaxDepth      int // reflection bounces
	Workers       int // concurrent rows, 0 for NumCPU
}

// New returns a renderer with POV-Ray like defaults
func New(width, height, supersample int) *Renderer {
	return &Renderer{
		Width:       width,
		Height:      height,
		Supersample: supersample,
		FOV:         67.380135 * math.Pi / 180,
		Ambient:     0.1,
		Diffuse:     0.6,
		Shininess:   40,
		MaxDepth:    2,
	}
}

// camera is the orthonormal basis of a look-at camera
type camera struct {
	origin                 geom.Vec3
	forward, right, upward geom.Vec3
	halfW, halfH           float64
}

func newCamera(c scene.Camera, fov float64, width, height int) camera {
	forward := c.LookAt.Sub(c.Location).Normalize()
	if forward == (geom.Vec3{}) {
		forward = geom.V(0, 0, 1)
	}
	up := geom.V(0, 1, 0)
	if math.Abs(forward.Dot(up)) > 0.999 {
		up = geom.V(0, 0, 1)
	}
	// Left-handed: x right, y up, z into the screen
	right := up.Cross(forward).Normalize()
	upward := forward.Cross(right)

	halfW := math.Tan(fov / 2)
	return camera{
		origin:  c.Location,
		forward: forward,
		right:   right,
		upward:  upward,
		halfW:   halfW,
		halfH:   halfW * float64(height) / float64(width),
	}
}

func (c camera) ray(i, j, width, height int) geom.Vec3 {
	u := (2*(float64(i)+0.5)/float64(width) - 1) * c.halfW
	v := (1 - 2*(float64(j)+0.5)/float64(height)) * c.halfH
	return c.forward.Add(c.right.Scale(u)).Add(c.upward.Scale(v)).Normalize()
}

// Render traces every pixel of the frame. Rows are traced in parallel.
func (r *Renderer) Render(ctx context.Context, d scene.Descriptor) (*image.RGBA, error) {
	ss := r.Supersample
	if ss < 1 {
		ss = 1
	}
	w, h := r.Width*ss, r.Height*ss
	bounds := image.Rect(0, 0, w, h)

	var traced *image.RGBA
	if ss > 1 {
		traced = system.GetImage(bounds)
		defer system.PutImage(traced)
	} else {
		traced = image.NewRGBA(bounds)
	}

	cam := newCamera(d.Camera, r.FOV, w, h)
	background := geom.Black
	if d.Background != nil {
		background = *d.Background
	}

	workers := r.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for j := 0; j < h; j++ {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			for i := 0; i < w; i++ {
				c := r.trace(cam.origin, cam.ray(i, j, w, h), &d, background, 0)
				traced.SetRGBA(i, j, c.RGBA())
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if ss == 1 {
		return traced, nil
	}
	out := image.NewRGBA(image.Rect(0, 0, r.Width, r.Height))
	draw.CatmullRom.Scale(out, out.Bounds(), traced, bounds, draw.Src, nil)
	return out, nil
}

// trace returns the colour seen along a ray
func (r *Renderer) trace(origin, dir geom.Vec3, d *scene.Descriptor, background geom.Color, depth int) geom.Color {
	h, ok := nearest(origin, dir, d)
	if !ok {
		return background
	}

	point := origin.Add(dir.Scale(h.t))
	normal := h.normal
	if normal.Dot(dir) > 0 {
		normal = normal.Scale(-1)
	}
	shadowOrigin := point.Add(normal.Scale(epsilon))
	viewDir := dir.Scale(-1)

	c := h.color.Scale(r.Ambient)
	for _, light := range d.Lights {
		if light.Color.IsBlack() {
			continue
		}
		toLight := light.Position.Sub(point)
		dist := toLight.Len()
		l := toLight.Scale(1 / dist)
		diff := normal.Dot(l)
		if diff <= 0 || occluded(shadowOrigin, l, dist, d) {
			continue
		}
		c = c.Add(h.color.Mul(light.Color).Scale(r.Diffuse * diff))

		if h.finish.Phong > 0 {
			reflected := reflect(l.Scale(-1), normal)
			highlight := math.Pow(math.Max(viewDir.Dot(reflected), 0), r.Shininess)
			c = c.Add(light.Color.Scale(h.finish.Phong * highlight))
		}
	}

	if h.finish.Reflection > 0 && depth < r.MaxDepth {
		mirrored := r.trace(shadowOrigin, reflect(dir, normal), d, background, depth+1)
		c = c.Scale(1 - h.finish.Reflection).Add(mirrored.Scale(h.finish.Reflection))
	}
	return c
}

// reflect returns the reflection of I about the normal N
func reflect(I, N geom.Vec3) geom.Vec3 {
	return I.Sub(N.Scale(2 * I.Dot(N)))
}
