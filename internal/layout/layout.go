// Package layout loads named starting positions from YAML.
//
// A layout file looks like:
//
//	name: classic
//	armies:
//	  red:
//	    rook: [n4, n11]
//	    pawn: [m4, m5]
//	pieces:
//	  - {at: g7, type: pawn, color: blue, move_count: 6}
//
// "armies" lists fresh pieces per color and type; "pieces" places single
// pieces and may set a pawn's move counter.
package layout

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	yaml "gopkg.in/yaml.v3"

	"github.com/KylerCondran/4PlayerChess/internal/board"
	"github.com/KylerCondran/4PlayerChess/internal/fourchess"
)

//go:embed classic.yaml
var builtin embed.FS

const DefaultName = "classic"

var (
	ErrUnknown = errors.New("unknown layout")
	ErrInvalid = errors.New("invalid layout")
)

// Layout is a validated starting position.
type Layout struct {
	Name        string
	Description string
	Placements  []fourchess.Placement
}

// NewSession starts a game from the layout.
func (l *Layout) NewSession() (*fourchess.Session, error) {
	return fourchess.NewSession(l.Placements)
}

type fileSpec struct {
	Name        string                         `yaml:"name"`
	Description string                         `yaml:"description"`
	Armies      map[string]map[string][]string `yaml:"armies"`
	Pieces      []pieceSpec                    `yaml:"pieces"`
}

type pieceSpec struct {
	At        string `yaml:"at"`
	Type      string `yaml:"type"`
	Color     string `yaml:"color"`
	MoveCount *int   `yaml:"move_count"`
}

// Parse decodes and validates one layout document. Unknown fields are rejected.
func Parse(b []byte) (*Layout, error) {
	var fs fileSpec
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&fs); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	l := &Layout{Name: strings.TrimSpace(fs.Name), Description: strings.TrimSpace(fs.Description)}

	colors := make([]string, 0, len(fs.Armies))
	for c := range fs.Armies {
		colors = append(colors, c)
	}
	sort.Strings(colors)
	for _, cname := range colors {
		color, err := fourchess.ParseColor(cname)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
		}
		types := fs.Armies[cname]
		tnames := make([]string, 0, len(types))
		for t := range types {
			tnames = append(tnames, t)
		}
		sort.Strings(tnames)
		for _, tname := range tnames {
			pt, err := fourchess.ParsePieceType(tname)
			if err != nil {
				return nil, fmt.Errorf("%w: %s: %v", ErrInvalid, cname, err)
			}
			for _, s := range types[tname] {
				at, err := board.ParseCoord(s)
				if err != nil {
					return nil, fmt.Errorf("%w: %s %s: %v", ErrInvalid, cname, tname, err)
				}
				l.Placements = append(l.Placements, fourchess.Placement{At: at, Piece: fourchess.NewPiece(pt, color)})
			}
		}
	}

	for i, ps := range fs.Pieces {
		pl, err := ps.placement()
		if err != nil {
			return nil, fmt.Errorf("%w: pieces[%d]: %v", ErrInvalid, i, err)
		}
		l.Placements = append(l.Placements, pl)
	}

	// NewSession catches duplicates and negative counters.
	s, err := fourchess.NewSession(l.Placements)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	l.Placements = s.Placements()
	return l, nil
}

func (ps pieceSpec) placement() (fourchess.Placement, error) {
	at, err := board.ParseCoord(ps.At)
	if err != nil {
		return fourchess.Placement{}, err
	}
	pt, err := fourchess.ParsePieceType(ps.Type)
	if err != nil {
		return fourchess.Placement{}, err
	}
	color, err := fourchess.ParseColor(ps.Color)
	if err != nil {
		return fourchess.Placement{}, err
	}
	p := fourchess.NewPiece(pt, color)
	if ps.MoveCount != nil {
		p.MoveCount = *ps.MoveCount
	}
	return fourchess.Placement{At: at, Piece: p}, nil
}

// Catalog is the set of layouts a server can start games from.
type Catalog struct {
	layouts map[string]*Layout
}

// Load reads the built-in layouts, then every *.yaml/*.yml in dir if set.
// A file in dir replaces a built-in layout of the same name; two files in dir
// declaring the same name is an error.
func Load(dir string) (*Catalog, error) {
	c := &Catalog{layouts: make(map[string]*Layout)}
	raw, err := builtin.ReadFile("classic.yaml")
	if err != nil {
		return nil, fmt.Errorf("read builtin layout: %w", err)
	}
	l, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("builtin classic: %w", err)
	}
	c.layouts[l.Name] = l

	dir = strings.TrimSpace(dir)
	if dir == "" {
		return c, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read layout dir: %w", err)
	}
	seen := make(map[string]string) // layout name -> file
	for _, e := range entries {
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if e.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		b, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", e.Name(), err)
		}
		l, err := Parse(b)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", e.Name(), err)
		}
		if l.Name == "" {
			l.Name = strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		}
		if prev, ok := seen[l.Name]; ok {
			return nil, fmt.Errorf("%w: layout %q declared in %s and %s", ErrInvalid, l.Name, prev, e.Name())
		}
		seen[l.Name] = e.Name()
		c.layouts[l.Name] = l
	}
	return c, nil
}

// Get returns the named layout.
func (c *Catalog) Get(name string) (*Layout, error) {
	l, ok := c.layouts[strings.TrimSpace(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknown, name)
	}
	return l, nil
}

func (c *Catalog) Names() []string {
	out := make([]string, 0, len(c.layouts))
	for n := range c.layouts {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
