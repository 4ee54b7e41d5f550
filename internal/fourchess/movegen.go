package fourchess

import (
	"fmt"

	"github.com/KylerCondran/4PlayerChess/internal/board"
)

// Pawn geometry per color. Directions are fixed on the grid and do not follow any view rotation.
var (
	pawnForward = [NumColors]board.Offset{
		Red:    board.West,
		Blue:   board.South,
		Yellow: board.East,
		Green:  board.North,
	}
	pawnCaptures = [NumColors][2]board.Offset{
		Red:    {board.SouthWest, board.NorthWest},
		Blue:   {board.SouthWest, board.SouthEast},
		Yellow: {board.SouthEast, board.NorthEast},
		Green:  {board.NorthWest, board.NorthEast},
	}
	// pawnFlanks are the squares beside a pawn where a double-stepped enemy can be taken en passant.
	pawnFlanks = [NumColors][2]board.Offset{
		Red:    {board.South, board.North},
		Blue:   {board.West, board.East},
		Yellow: {board.South, board.North},
		Green:  {board.West, board.East},
	}
)

// Forward is the direction a pawn of color c advances in.
func Forward(c Color) board.Offset { return pawnForward[c] }

type generator func(s *Session, from board.Coord, p Piece, dst *destSet)

var generators = map[PieceType]generator{
	Pawn:   genPawn,
	Rook:   slider(board.Orthogonal),
	Bishop: slider(board.Diagonal),
	Queen:  slider(board.AllEight),
	Knight: stepper(board.KnightJumps),
	King:   stepper(board.AllEight),
}

// destSet collects destinations without duplicates.
type destSet struct {
	seen [board.NumSquares]bool
}

func (d *destSet) add(c board.Coord) { d.seen[c.Index()] = true }

func (d *destSet) has(c board.Coord) bool {
	idx := c.Index()
	return idx >= 0 && d.seen[idx]
}

func (d *destSet) list() []board.Coord {
	var out []board.Coord
	for i, ok := range d.seen {
		if ok {
			out = append(out, board.FromIndex(i))
		}
	}
	return out
}

// LegalDestinations returns the squares the piece on from may move to, in square-id order.
// An empty square yields an empty set. Ownership of the turn is not checked here.
func (s *Session) LegalDestinations(from board.Coord) ([]board.Coord, error) {
	if !board.IsActive(from) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidCoordinate, from)
	}
	p, ok := s.PieceAt(from)
	if !ok {
		return nil, nil
	}
	return s.destinations(from, p).list(), nil
}

func (s *Session) destinations(from board.Coord, p Piece) *destSet {
	dst := &destSet{}
	gen, ok := generators[p.Type]
	if !ok {
		panic(fmt.Sprintf("fourchess: no move generator for %v", p.Type))
	}
	gen(s, from, p, dst)
	return dst
}

// Movable lists the current color's squares holding a piece with at least one destination.
func (s *Session) Movable() []board.Coord {
	mover, ok := s.Turn()
	if !ok {
		return nil
	}
	var out []board.Coord
	for _, pl := range s.Placements() {
		if pl.Piece.Color != mover {
			continue
		}
		if len(s.destinations(pl.At, pl.Piece).list()) > 0 {
			out = append(out, pl.At)
		}
	}
	return out
}

// enterable reports whether a piece of color c may land on to, capturing if needed.
func (s *Session) enterable(to board.Coord, c Color) bool {
	if !board.IsActive(to) {
		return false
	}
	occ, ok := s.PieceAt(to)
	return !ok || occ.Color != c
}

func slider(dirs []board.Offset) generator {
	return func(s *Session, from board.Coord, p Piece, dst *destSet) {
		for _, d := range dirs {
			for to := from.Add(d); board.IsActive(to); to = to.Add(d) {
				occ, ok := s.PieceAt(to)
				if !ok {
					dst.add(to)
					continue
				}
				if occ.Color != p.Color {
					dst.add(to)
				}
				break
			}
		}
	}
}

func stepper(offsets []board.Offset) generator {
	return func(s *Session, from board.Coord, p Piece, dst *destSet) {
		for _, o := range offsets {
			if to := from.Add(o); s.enterable(to, p.Color) {
				dst.add(to)
			}
		}
	}
}

func genPawn(s *Session, from board.Coord, p Piece, dst *destSet) {
	fwd := pawnForward[p.Color]

	one := from.Add(fwd)
	if board.IsActive(one) && s.empty(one) {
		dst.add(one)
		two := board.NeighborAlong(from, fwd, 2)
		if p.Unmoved() && board.IsActive(two) && s.empty(two) {
			dst.add(two)
		}
	}

	for _, o := range pawnCaptures[p.Color] {
		to := from.Add(o)
		if !board.IsActive(to) {
			continue
		}
		if occ, ok := s.PieceAt(to); ok && occ.Color != p.Color {
			dst.add(to)
		}
	}

	if to, ok := s.enPassantTarget(from, p); ok {
		dst.add(to)
	}
}

// enPassantTarget returns the landing square for an en passant capture by the pawn on from, if any.
func (s *Session) enPassantTarget(from board.Coord, p Piece) (board.Coord, bool) {
	if p.Type != Pawn {
		return board.OffGrid, false
	}
	lm, ok := s.LastMove()
	if !ok || lm.Type != Pawn || !lm.DoubleStep || lm.Color == p.Color {
		return board.OffGrid, false
	}
	victim, ok := s.PieceAt(lm.To)
	if !ok || victim.Type != Pawn || victim.Color != lm.Color {
		return board.OffGrid, false
	}
	for _, side := range pawnFlanks[p.Color] {
		if from.Add(side) != lm.To {
			continue
		}
		target := lm.To.Add(pawnForward[p.Color])
		if board.IsActive(target) && s.empty(target) {
			return target, true
		}
	}
	return board.OffGrid, false
}
