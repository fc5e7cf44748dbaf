package scene

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Dump is a list of frame descriptors written by the -dump mode
type Dump struct {
	Version string       `yaml:"version"`
	FPS     int          `yaml:"fps"`
	Frames  []Descriptor `yaml:"frames"`
}

// WriteDump streams the dump to path. A full timeline is over a thousand
// descriptors, so the document goes through a buffered encoder instead of
// being assembled in memory first.
func WriteDump(dump *Dump, path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()

	w := bufio.NewWriterSize(f, 1<<16)
	if err := EncodeDump(w, dump); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return w.Flush()
}

// EncodeDump writes the dump as a single YAML document
func EncodeDump(w io.Writer, dump *Dump) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(dump); err != nil {
		return err
	}
	return enc.Close()
}

// ReadDump reads descriptors from a YAML file
func ReadDump(path string) (*Dump, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var dump Dump
	if err := yaml.NewDecoder(bufio.NewReader(f)).Decode(&dump); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &dump, nil
}
