// Package board describes the 14x14 cross-shaped playing field.
package board

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	// Size is the width and height of the grid.
	Size = 14
	// NumSquares counts every cell of the grid, active or not.
	NumSquares = Size * Size
	// CornerSize is the edge of each removed corner block.
	CornerSize = 3
	// NumActive counts the playable cells.
	NumActive = NumSquares - 4*CornerSize*CornerSize
)

var ErrInvalidCoordinate = errors.New("invalid coordinate")

// Coord is a cell position. X selects the file (a..n), Y the rank (1..14).
type Coord struct {
	X int
	Y int
}

// OffGrid is returned where a coordinate cannot be produced.
var OffGrid = Coord{X: -1, Y: -1}

func C(x, y int) Coord { return Coord{X: x, Y: y} }

// InGrid reports whether c lies inside the 14x14 square, ignoring the corner mask.
func (c Coord) InGrid() bool {
	return c.X >= 0 && c.X < Size && c.Y >= 0 && c.Y < Size
}

// IsActive reports whether c is a playable cell.
func IsActive(c Coord) bool {
	if !c.InGrid() {
		return false
	}
	lowX, highX := c.X < CornerSize, c.X >= Size-CornerSize
	lowY, highY := c.Y < CornerSize, c.Y >= Size-CornerSize
	return !((lowX || highX) && (lowY || highY))
}

// Index returns the square id y*14+x, or -1 when c is off the grid.
func (c Coord) Index() int {
	if !c.InGrid() {
		return -1
	}
	return c.Y*Size + c.X
}

// FromIndex is the inverse of Index.
func FromIndex(i int) Coord {
	if i < 0 || i >= NumSquares {
		return OffGrid
	}
	return Coord{X: i % Size, Y: i / Size}
}

// String renders the algebraic name, e.g. (0,3) -> "a4".
func (c Coord) String() string {
	if !c.InGrid() {
		return "-"
	}
	return string(rune('a'+c.X)) + strconv.Itoa(c.Y+1)
}

// ParseCoord reads an algebraic name and rejects anything that is not an active cell.
func ParseCoord(s string) (Coord, error) {
	raw := strings.ToLower(strings.TrimSpace(s))
	if len(raw) < 2 || len(raw) > 3 {
		return OffGrid, fmt.Errorf("%w: %q", ErrInvalidCoordinate, s)
	}
	file := raw[0]
	if file < 'a' || file >= 'a'+Size {
		return OffGrid, fmt.Errorf("%w: file out of range in %q", ErrInvalidCoordinate, s)
	}
	rank, err := strconv.Atoi(raw[1:])
	if err != nil || rank < 1 || rank > Size {
		return OffGrid, fmt.Errorf("%w: rank out of range in %q", ErrInvalidCoordinate, s)
	}
	c := Coord{X: int(file - 'a'), Y: rank - 1}
	if !IsActive(c) {
		return OffGrid, fmt.Errorf("%w: %s is an inactive corner square", ErrInvalidCoordinate, c)
	}
	return c, nil
}

// MustParse is ParseCoord for constant tables and tests.
func MustParse(s string) Coord {
	c, err := ParseCoord(s)
	if err != nil {
		panic(err)
	}
	return c
}

// ActiveCoords lists every playable cell in square-id order.
func ActiveCoords() []Coord {
	out := make([]Coord, 0, NumActive)
	for i := 0; i < NumSquares; i++ {
		if c := FromIndex(i); IsActive(c) {
			out = append(out, c)
		}
	}
	return out
}
