package layout

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
)

// layoutFile mirrors the on-disk TOML layout definition:
//
//	id = "en_opt"
//	name = "English Optimized"
//
//	[[entry]]
//	ref = 1
//	abc = "a"
//	abc_shift = "A"
//	num = "1"
//	symb = "@"
type layoutFile struct {
	ID      string  `toml:"id"`
	Name    string  `toml:"name"`
	Entries []Entry `toml:"entry"`
}

// LoadFile reads a layout definition from a TOML file.
func LoadFile(path string) (*Layout, error) {
	var lf layoutFile
	if _, err := toml.DecodeFile(path, &lf); err != nil {
		return nil, fmt.Errorf("parsing layout %s: %w", path, err)
	}
	if lf.ID == "" {
		lf.ID = "unknown"
	}
	if lf.Name == "" {
		lf.Name = "Unknown"
	}
	l := New(lf.ID, lf.Name, lf.Entries)
	log.Debugf("Loaded layout %q (%s): %d entries", lf.ID, path, l.Len())
	return l, nil
}

// Parse reads a layout definition from TOML text.
func Parse(data string) (*Layout, error) {
	var lf layoutFile
	if _, err := toml.Decode(data, &lf); err != nil {
		return nil, fmt.Errorf("parsing layout: %w", err)
	}
	if lf.ID == "" {
		lf.ID = "unknown"
	}
	if lf.Name == "" {
		lf.Name = "Unknown"
	}
	return New(lf.ID, lf.Name, lf.Entries), nil
}
