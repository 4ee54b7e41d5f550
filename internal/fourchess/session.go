package fourchess

import (
	"fmt"

	"github.com/KylerCondran/4PlayerChess/internal/board"
)

// Placement puts a piece on a square, both for the starting layout and board snapshots.
type Placement struct {
	At    board.Coord
	Piece Piece
}

// LastMove is the previous ply, kept only to decide en passant on the next one.
type LastMove struct {
	Type       PieceType
	Color      Color
	From       board.Coord
	To         board.Coord
	DoubleStep bool
}

// Session is one game: board, side to move, resigned colors and the last move.
type Session struct {
	squares  [board.NumSquares]*Piece
	turn     int
	resigned [NumColors]bool
	last     *LastMove
	over     bool
	ply      int
}

// NewSession builds a game from a starting placement. Red moves first.
func NewSession(placements []Placement) (*Session, error) {
	s := &Session{}
	for _, pl := range placements {
		if !board.IsActive(pl.At) {
			return nil, fmt.Errorf("%w: %s", ErrInvalidCoordinate, pl.At)
		}
		if !pl.Piece.Type.Valid() {
			return nil, fmt.Errorf("invalid piece type %d on %s", pl.Piece.Type, pl.At)
		}
		if !pl.Piece.Color.Valid() {
			return nil, fmt.Errorf("%w: %d on %s", ErrInvalidColor, pl.Piece.Color, pl.At)
		}
		if pl.Piece.MoveCount < 0 {
			return nil, fmt.Errorf("negative move count on %s", pl.At)
		}
		idx := pl.At.Index()
		if s.squares[idx] != nil {
			return nil, fmt.Errorf("square %s occupied twice", pl.At)
		}
		p := pl.Piece
		s.squares[idx] = &p
	}
	return s, nil
}

// PieceAt returns a copy of the piece on c.
func (s *Session) PieceAt(c board.Coord) (Piece, bool) {
	idx := c.Index()
	if idx < 0 || s.squares[idx] == nil {
		return Piece{}, false
	}
	return *s.squares[idx], true
}

func (s *Session) empty(c board.Coord) bool {
	idx := c.Index()
	return idx >= 0 && s.squares[idx] == nil
}

// Placements lists every piece in square-id order.
func (s *Session) Placements() []Placement {
	out := make([]Placement, 0, 64)
	for i, p := range s.squares {
		if p != nil {
			out = append(out, Placement{At: board.FromIndex(i), Piece: *p})
		}
	}
	return out
}

// Turn returns the color to move. ok is false once the game is over.
func (s *Session) Turn() (c Color, ok bool) {
	if s.over {
		return 0, false
	}
	return TurnOrder[s.turn], true
}

func (s *Session) IsResigned(c Color) bool { return c.Valid() && s.resigned[c] }

// Resigned lists resigned colors in turn order.
func (s *Session) Resigned() []Color {
	var out []Color
	for _, c := range TurnOrder {
		if s.resigned[c] {
			out = append(out, c)
		}
	}
	return out
}

// InPlay lists colors that have not resigned, in turn order.
func (s *Session) InPlay() []Color {
	var out []Color
	for _, c := range TurnOrder {
		if !s.resigned[c] {
			out = append(out, c)
		}
	}
	return out
}

func (s *Session) LastMove() (LastMove, bool) {
	if s.last == nil {
		return LastMove{}, false
	}
	return *s.last, true
}

func (s *Session) Over() bool { return s.over }

// Winner is the last color standing. ok is false while the game runs or when every color resigned.
func (s *Session) Winner() (c Color, ok bool) {
	if !s.over {
		return 0, false
	}
	left := s.InPlay()
	if len(left) != 1 {
		return 0, false
	}
	return left[0], true
}

// Ply counts applied moves.
func (s *Session) Ply() int { return s.ply }

// Clone returns an independent deep copy.
func (s *Session) Clone() *Session {
	cp := *s
	for i, p := range s.squares {
		if p != nil {
			v := *p
			cp.squares[i] = &v
		}
	}
	if s.last != nil {
		lm := *s.last
		cp.last = &lm
	}
	return &cp
}
