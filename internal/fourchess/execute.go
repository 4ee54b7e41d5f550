package fourchess

import (
	"fmt"

	"github.com/KylerCondran/4PlayerChess/internal/board"
)

// MoveOutcome reports the effects of an applied move.
type MoveOutcome struct {
	Mover Color
	// Piece is the mover as it stood on From; Result is what now stands on To.
	Piece  Piece
	Result Piece
	From   board.Coord
	To     board.Coord

	// Captured is nil for a quiet move. CapturedAt differs from To only for en passant.
	Captured   *Piece
	CapturedAt board.Coord
	EnPassant  bool
	DoubleStep bool
	Promoted   bool

	Next    Color
	HasNext bool

	GameOver  bool
	Winner    Color
	HasWinner bool
}

// ApplyMove moves the piece on from to to. Either the whole move happens or the session is left untouched.
func (s *Session) ApplyMove(from, to board.Coord) (MoveOutcome, error) {
	if s.over {
		return MoveOutcome{}, ErrGameOver
	}
	if !board.IsActive(from) {
		return MoveOutcome{}, fmt.Errorf("%w: %s", ErrInvalidCoordinate, from)
	}
	if !board.IsActive(to) {
		return MoveOutcome{}, fmt.Errorf("%w: %s", ErrInvalidCoordinate, to)
	}
	p, ok := s.PieceAt(from)
	if !ok {
		return MoveOutcome{}, fmt.Errorf("%w: no piece on %s", ErrIllegalMove, from)
	}
	mover := TurnOrder[s.turn]
	if p.Color != mover {
		return MoveOutcome{}, fmt.Errorf("%w: %s to move, piece on %s is %s", ErrIllegalMove, mover, from, p.Color)
	}
	if s.resigned[p.Color] {
		return MoveOutcome{}, fmt.Errorf("%w: %s has resigned", ErrIllegalMove, p.Color)
	}
	if !s.destinations(from, p).has(to) {
		return MoveOutcome{}, fmt.Errorf("%w: %s on %s cannot reach %s", ErrIllegalMove, p, from, to)
	}

	out := MoveOutcome{Mover: mover, Piece: p, From: from, To: to}
	if victim, ok := s.PieceAt(to); ok {
		out.Captured = &victim
		out.CapturedAt = to
	} else if ep, ok := s.enPassantTarget(from, p); ok && ep == to {
		at := s.last.To
		victim, _ := s.PieceAt(at)
		out.Captured = &victim
		out.CapturedAt = at
		out.EnPassant = true
		s.squares[at.Index()] = nil
	}

	moved := p
	if p.Type == Pawn {
		d := board.Delta(from, to)
		if abs(d.DX) == 2 || abs(d.DY) == 2 {
			moved.MoveCount += 2
			out.DoubleStep = true
		} else {
			moved.MoveCount++
		}
		if moved.MoveCount >= PromotionMoveCount {
			moved = Piece{Type: Queen, Color: p.Color}
			out.Promoted = true
		}
	}
	s.squares[from.Index()] = nil
	s.squares[to.Index()] = &moved
	out.Result = moved

	s.last = &LastMove{Type: p.Type, Color: p.Color, From: from, To: to, DoubleStep: out.DoubleStep}
	s.ply++
	s.advanceTurn()
	out.Next, out.HasNext = s.Turn()
	out.GameOver = s.over
	out.Winner, out.HasWinner = s.Winner()
	return out, nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
