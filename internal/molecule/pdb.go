package molecule

import (
	"bufio"
	"bytes"
	"embed"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	chem "github.com/rmera/gochem"

	"github.com/ivlev/aconitase/internal/geom"
)

//go:embed assets/*.pdb
var assets embed.FS

// Options control how a PDB file is placed after parsing
type Options struct {
	Center bool      // translate so the centroid sits at the origin
	Offset geom.Vec3 // added after centring
}

// Atom scale factor to shrink spheres below their covalent radius
const atomScaleFactor = 0.6

// Approximate covalent radii and element colours.
var radii = map[string]float64{
	"H":  0.25,
	"C":  0.70,
	"N":  0.65,
	"O":  0.60,
	"F":  0.50,
	"P":  1.00,
	"S":  1.00,
	"CL": 1.00,
}

var colors = map[string]geom.Color{
	"H":  {R: 1, G: 1, B: 1},
	"C":  {R: 0.2, G: 0.2, B: 0.2},
	"N":  {R: 0.31, G: 0.31, B: 1},
	"O":  {R: 1, G: 0.2, B: 0.2},
	"F":  {R: 0, G: 1, B: 0},
	"P":  {R: 1, G: 0.65, B: 0},
	"S":  {R: 1, G: 1, B: 0},
	"CL": {R: 0, G: 1, B: 0},
}

func covalentRadius(element string) float64 {
	if r, ok := radii[element]; ok {
		return r
	}
	return 0.70
}

func elementColor(element string) geom.Color {
	if c, ok := colors[element]; ok {
		return c
	}
	return geom.Color{R: 0.78, G: 0.39, B: 0.78}
}

// Load reads a PDB file from disk
func Load(path string, opts Options) (*Molecule, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return Parse(f, name, opts)
}

// LoadAsset reads one of the embedded molecules ("citrate", "isocitrate")
func LoadAsset(name string, opts Options) (*Molecule, error) {
	f, err := assets.Open("assets/" + name + ".pdb")
	if err != nil {
		return nil, fmt.Errorf("no embedded molecule %q: %w", name, err)
	}
	defer f.Close()
	return Parse(f, name, opts)
}

// Parse reads the first model through goChem's PDB reader and projects it
// onto Atoms. Bonds come from CONECT records; when the file has none they are
// inferred from covalent radii.
func Parse(r io.Reader, name string, opts Options) (*Molecule, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	mol, err := chem.PDBRead(bytes.NewReader(data), false)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if mol == nil || mol.Len() == 0 || len(mol.Coords) == 0 {
		return nil, fmt.Errorf("%s: no atoms found", name)
	}

	coords := mol.Coords[0]
	atoms := make([]Atom, mol.Len())
	serials := make(map[int]int, len(atoms))
	for i := range atoms {
		a := mol.Atom(i)
		atomName := strings.TrimSpace(a.Name)
		element := strings.ToUpper(strings.TrimSpace(a.Symbol))
		if element == "" {
			element = elementFromName(atomName)
		}
		atoms[i] = Atom{
			Index:   i,
			Serial:  a.ID,
			Name:    atomName,
			Element: element,
			Pos:     geom.V(coords.At(i, 0), coords.At(i, 1), coords.At(i, 2)),
			Radius:  covalentRadius(element) * atomScaleFactor,
			Color:   elementColor(element),
		}
		serials[a.ID] = i
	}

	links, err := readConect(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	bonds := resolveBonds(links, serials)
	if len(links) == 0 {
		bonds = inferBonds(atoms)
	}

	m := &Molecule{Name: name, atoms: atoms, bonds: bonds}

	shift := opts.Offset
	if opts.Center {
		shift = shift.Sub(m.Center())
	}
	for i := range m.atoms {
		m.atoms[i].Pos = m.atoms[i].Pos.Add(shift)
	}
	return m, nil
}

// conect is one CONECT pair of atom serials
type conect struct{ from, to int }

// readConect collects the CONECT records, which goChem does not turn into
// bonds on its own.
func readConect(r io.Reader) ([]conect, error) {
	var links []conect
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if !strings.HasPrefix(line, "CONECT") {
			continue
		}
		fields := strings.Fields(line[6:])
		if len(fields) < 2 {
			continue
		}
		from, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, fmt.Errorf("line %d: bad CONECT serial: %w", lineNo, err)
		}
		for _, f := range fields[1:] {
			to, err := strconv.Atoi(f)
			if err != nil {
				return nil, fmt.Errorf("line %d: bad CONECT serial: %w", lineNo, err)
			}
			links = append(links, conect{from, to})
		}
	}
	return links, scanner.Err()
}

// resolveBonds maps serial pairs onto atom indices, dropping duplicates,
// self links and serials outside the first model.
func resolveBonds(links []conect, serials map[int]int) []Bond {
	var bonds []Bond
	seen := map[Bond]bool{}
	for _, l := range links {
		a, okA := serials[l.from]
		b, okB := serials[l.to]
		if !okA || !okB || a == b {
			continue
		}
		if a > b {
			a, b = b, a
		}
		bond := Bond{A: a, B: b}
		if !seen[bond] {
			seen[bond] = true
			bonds = append(bonds, bond)
		}
	}
	return bonds
}

// elementFromName guesses the element from the leading letter of an atom name
func elementFromName(name string) string {
	for _, r := range name {
		if unicode.IsLetter(r) {
			return strings.ToUpper(string(r))
		}
	}
	return ""
}

// inferBonds joins atoms closer than 1.2 times the sum of their covalent radii
func inferBonds(atoms []Atom) []Bond {
	var bonds []Bond
	for i := 0; i < len(atoms); i++ {
		for j := i + 1; j < len(atoms); j++ {
			limit := 1.2 * (covalentRadius(atoms[i].Element) + covalentRadius(atoms[j].Element))
			if atoms[i].Pos.Sub(atoms[j].Pos).Len() <= limit {
				bonds = append(bonds, Bond{A: atoms[i].Index, B: atoms[j].Index})
			}
		}
	}
	return bonds
}
