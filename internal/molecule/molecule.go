// Package molecule loads small molecules and places them in a scene.
//
// A Molecule is immutable once loaded. Moving, rotating or splitting it
// always produces new values, so the same base geometry can be posed for any
// number of frames, in any order or in parallel.
package molecule

import (
	"errors"
	"fmt"
	"math"

	"github.com/ivlev/aconitase/internal/geom"
	"github.com/ivlev/aconitase/internal/scene"
)

var ErrAtomIndex = errors.New("atom index not in molecule")

// Atom is one atom of a molecule. Index is the 0-based position of the atom
// in the file it was loaded from and survives Divide.
type Atom struct {
	Index   int
	Serial  int
	Name    string
	Element string
	Pos     geom.Vec3
	Radius  float64
	Color   geom.Color
}

// Bond joins two atoms by Index
type Bond struct {
	A, B int
}

type Molecule struct {
	Name  string
	atoms []Atom
	bonds []Bond
}

// New builds a molecule from atoms and bonds. Slices are copied.
func New(name string, atoms []Atom, bonds []Bond) *Molecule {
	m := &Molecule{
		Name:  name,
		atoms: make([]Atom, len(atoms)),
		bonds: make([]Bond, len(bonds)),
	}
	copy(m.atoms, atoms)
	copy(m.bonds, bonds)
	return m
}

func (m *Molecule) Len() int { return len(m.atoms) }

// Atoms returns a copy of the atoms
func (m *Molecule) Atoms() []Atom {
	out := make([]Atom, len(m.atoms))
	copy(out, m.atoms)
	return out
}

// Bonds returns a copy of the bonds
func (m *Molecule) Bonds() []Bond {
	out := make([]Bond, len(m.bonds))
	copy(out, m.bonds)
	return out
}

// Center is the centroid of the atom positions
func (m *Molecule) Center() geom.Vec3 {
	if len(m.atoms) == 0 {
		return geom.Vec3{}
	}
	var sum geom.Vec3
	for _, a := range m.atoms {
		sum = sum.Add(a.Pos)
	}
	return sum.Scale(1 / float64(len(m.atoms)))
}

// Pose places a molecule: a rotation of Angle radians about Axis through the
// molecule's own centre, followed by a translation by Offset. The zero Pose
// leaves the molecule where it was loaded.
type Pose struct {
	Offset geom.Vec3
	Axis   geom.Vec3
	Angle  float64
}

// At returns a pose translated to offset
func At(offset geom.Vec3) Pose {
	return Pose{Offset: offset}
}

// Rotated returns p with its rotation replaced
func (p Pose) Rotated(axis geom.Vec3, angle float64) Pose {
	p.Axis = axis
	p.Angle = angle
	return p
}

// Moved returns p translated by d
func (p Pose) Moved(d geom.Vec3) Pose {
	p.Offset = p.Offset.Add(d)
	return p
}

// Transform returns a copy of the molecule with pose baked into its atom positions
func (m *Molecule) Transform(p Pose) *Molecule {
	out := New(m.Name, m.atoms, m.bonds)
	center := m.Center()
	for i := range out.atoms {
		pos := out.atoms[i].Pos
		if p.Angle != 0 {
			pos = pos.RotateAbout(center, p.Axis, p.Angle)
		}
		out.atoms[i].Pos = pos.Add(p.Offset)
	}
	return out
}

// Divide splits the atoms with the given indices off into a new molecule
// named name, translated by offset. rest keeps every other atom. Bonds that
// cross the split belong to neither part.
func (m *Molecule) Divide(indices []int, name string, offset geom.Vec3) (rest, part *Molecule, err error) {
	selected := make(map[int]bool, len(indices))
	for _, idx := range indices {
		selected[idx] = true
	}
	for idx := range selected {
		if _, ok := m.find(idx); !ok {
			return nil, nil, fmt.Errorf("%s: divide %q: %d: %w", m.Name, name, idx, ErrAtomIndex)
		}
	}

	rest = &Molecule{Name: m.Name}
	part = &Molecule{Name: name}
	for _, a := range m.atoms {
		if selected[a.Index] {
			a.Pos = a.Pos.Add(offset)
			part.atoms = append(part.atoms, a)
		} else {
			rest.atoms = append(rest.atoms, a)
		}
	}
	for _, b := range m.bonds {
		switch {
		case selected[b.A] && selected[b.B]:
			part.bonds = append(part.bonds, b)
		case !selected[b.A] && !selected[b.B]:
			rest.bonds = append(rest.bonds, b)
		}
	}
	return rest, part, nil
}

func (m *Molecule) find(index int) (int, bool) {
	for i, a := range m.atoms {
		if a.Index == index {
			return i, true
		}
	}
	return 0, false
}

var bondColor = geom.Color{R: 150.0 / 255, G: 150.0 / 255, B: 150.0 / 255}

// Place poses the molecule and returns its primitives: one sphere per atom
// and one cylinder per bond, drawn between the atom surfaces.
func (m *Molecule) Place(p Pose) scene.Group {
	posed := m.Transform(p)

	g := scene.Group{Spheres: make([]scene.Sphere, 0, len(posed.atoms))}
	byIndex := make(map[int]Atom, len(posed.atoms))
	for _, a := range posed.atoms {
		byIndex[a.Index] = a
		g.Spheres = append(g.Spheres, scene.Sphere{
			Center: a.Pos,
			Radius: a.Radius,
			Color:  a.Color,
			Finish: scene.Finish{Phong: 0.4},
		})
	}

	for _, b := range posed.bonds {
		a1, ok1 := byIndex[b.A]
		a2, ok2 := byIndex[b.B]
		if !ok1 || !ok2 {
			continue
		}
		d := a2.Pos.Sub(a1.Pos)
		if d.Len() == 0 {
			continue
		}
		dir := d.Normalize()
		g.Cylinders = append(g.Cylinders, scene.Cylinder{
			P1:     a1.Pos.Add(dir.Scale(a1.Radius)),
			P2:     a2.Pos.Sub(dir.Scale(a2.Radius)),
			Radius: 0.3 * math.Min(a1.Radius, a2.Radius),
			Color:  bondColor,
		})
	}
	return g
}
