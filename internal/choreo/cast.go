package choreo

import (
	"fmt"

	"github.com/ivlev/aconitase/internal/geom"
	"github.com/ivlev/aconitase/internal/molecule"
	"github.com/ivlev/aconitase/internal/scene"
)

// Cast holds the shared, read-only entities every scene draws from
type Cast struct {
	Citrate    *molecule.Molecule
	Isocitrate *molecule.Molecule
	Enzyme     []scene.Sphere
}

var enzymeFinish = scene.Finish{Phong: 0.2, Reflection: 0.3}

// Enzyme returns the four spheres standing in for aconitase
func Enzyme() []scene.Sphere {
	pink := geom.Color{R: 1, G: 0.7, B: 0.75}
	centers := []geom.Vec3{
		geom.V(30, -1, 0), // Bottom left
		geom.V(35, -1, 0), // Bottom right
		geom.V(30, 4, 0),  // Top left
		geom.V(35, 4, 0),  // Top right
	}

	spheres := make([]scene.Sphere, len(centers))
	for i, c := range centers {
		spheres[i] = scene.Sphere{Center: c, Radius: 5, Color: pink, Finish: enzymeFinish}
	}
	return spheres
}

// LoadCast loads both molecules centred at the origin. An empty path selects
// the embedded structure of the same name.
func LoadCast(citratePath, isocitratePath string) (*Cast, error) {
	citrate, err := loadMolecule("citrate", citratePath)
	if err != nil {
		return nil, err
	}
	isocitrate, err := loadMolecule("isocitrate", isocitratePath)
	if err != nil {
		return nil, err
	}

	return &Cast{
		Citrate:    citrate,
		Isocitrate: isocitrate,
		Enzyme:     Enzyme(),
	}, nil
}

func loadMolecule(name, path string) (*molecule.Molecule, error) {
	opts := molecule.Options{Center: true}

	var (
		m   *molecule.Molecule
		err error
	)
	if path == "" {
		m, err = molecule.LoadAsset(name, opts)
	} else {
		m, err = molecule.Load(path, opts)
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", name, err)
	}

	// The switching scene splits atoms 5, 15 and 13 off citrate
	if name == "citrate" {
		for _, idx := range append(append([]int{}, hydroxylAtoms...), hydrogenAtoms...) {
			if idx >= m.Len() {
				return nil, fmt.Errorf("load %s: atom %d: %w", name, idx, molecule.ErrAtomIndex)
			}
		}
	}
	return m, nil
}
