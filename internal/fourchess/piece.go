// Package fourchess implements the rules of four-player chess on the cross board.
//
// A Session owns all mutable state. It is not safe for concurrent use; callers
// that share a session between goroutines must serialize access themselves.
package fourchess

import (
	"fmt"
	"strings"
)

// PieceType is the closed set of piece kinds.
type PieceType uint8

const (
	NoPieceType PieceType = iota
	Pawn
	Rook
	Knight
	Bishop
	Queen
	King
)

var pieceTypeNames = [...]string{
	NoPieceType: "",
	Pawn:        "pawn",
	Rook:        "rook",
	Knight:      "knight",
	Bishop:      "bishop",
	Queen:       "queen",
	King:        "king",
}

func (t PieceType) String() string {
	if int(t) < len(pieceTypeNames) {
		return pieceTypeNames[t]
	}
	return fmt.Sprintf("PieceType(%d)", uint8(t))
}

// Valid reports whether t is one of the six real piece kinds.
func (t PieceType) Valid() bool { return t >= Pawn && t <= King }

// ParsePieceType accepts full names and single-letter symbols (P R N B Q K).
func ParsePieceType(s string) (PieceType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pawn", "p":
		return Pawn, nil
	case "rook", "r":
		return Rook, nil
	case "knight", "n":
		return Knight, nil
	case "bishop", "b":
		return Bishop, nil
	case "queen", "q":
		return Queen, nil
	case "king", "k":
		return King, nil
	}
	return NoPieceType, fmt.Errorf("unknown piece type %q", s)
}

// Color is one of the four armies.
type Color uint8

const (
	Red Color = iota
	Blue
	Yellow
	Green
	NumColors = 4
)

// TurnOrder is the fixed rotation of play.
var TurnOrder = [NumColors]Color{Red, Blue, Yellow, Green}

var colorNames = [NumColors]string{"red", "blue", "yellow", "green"}

func (c Color) String() string {
	if c.Valid() {
		return colorNames[c]
	}
	return fmt.Sprintf("Color(%d)", uint8(c))
}

func (c Color) Valid() bool { return c < NumColors }

func ParseColor(s string) (Color, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	for i, name := range colorNames {
		if v == name || (len(v) == 1 && v[0] == name[0]) {
			return Color(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidColor, s)
}

// Pawn move counters start at this value; reaching PromotionMoveCount turns the pawn into a queen.
const (
	PawnInitialMoveCount = 2
	PromotionMoveCount   = 8
)

// Piece is a single unit on the board.
type Piece struct {
	Type      PieceType
	Color     Color
	MoveCount int
}

// NewPiece returns a piece with the counter its type starts from.
func NewPiece(t PieceType, c Color) Piece {
	p := Piece{Type: t, Color: c}
	if t == Pawn {
		p.MoveCount = PawnInitialMoveCount
	}
	return p
}

// Unmoved reports whether a pawn may still double-step.
func (p Piece) Unmoved() bool { return p.Type == Pawn && p.MoveCount == PawnInitialMoveCount }

func (p Piece) String() string { return p.Color.String() + " " + p.Type.String() }
