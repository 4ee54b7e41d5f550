package fourchess

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func move(t *testing.T, s *Session, from, to string) MoveOutcome {
	t.Helper()
	out, err := s.ApplyMove(sq(from), sq(to))
	require.NoError(t, err, "%s-%s", from, to)
	return out
}

func TestApplyMove_QuietMoveAdvancesTurn(t *testing.T) {
	s := newSession(t, at("n7", Rook, Red), at("g13", Pawn, Blue))
	out := move(t, s, "n7", "n9")
	assert.Nil(t, out.Captured)
	assert.Equal(t, Red, out.Mover)
	assert.True(t, out.HasNext)
	assert.Equal(t, Blue, out.Next)
	assert.False(t, out.GameOver)
	assert.False(t, out.HasWinner)

	_, ok := s.PieceAt(sq("n7"))
	assert.False(t, ok)
	p, ok := s.PieceAt(sq("n9"))
	require.True(t, ok)
	assert.Equal(t, Rook, p.Type)

	lm, ok := s.LastMove()
	require.True(t, ok)
	assert.Equal(t, LastMove{Type: Rook, Color: Red, From: sq("n7"), To: sq("n9")}, lm)
	assert.Equal(t, 1, s.Ply())
}

func TestApplyMove_TurnCyclesThroughAllColors(t *testing.T) {
	s := newSession(t,
		at("n7", Rook, Red),
		at("g14", Rook, Blue),
		at("a7", Rook, Yellow),
		at("h1", Rook, Green),
	)
	move(t, s, "n7", "n8")
	move(t, s, "g14", "g13")
	move(t, s, "a7", "a8")
	out := move(t, s, "h1", "h2")
	assert.Equal(t, Red, out.Next)
}

func TestApplyMove_Capture(t *testing.T) {
	s := newSession(t, at("g7", Rook, Red), at("g10", Knight, Blue))
	out := move(t, s, "g7", "g10")
	require.NotNil(t, out.Captured)
	assert.Equal(t, Piece{Type: Knight, Color: Blue}, *out.Captured)
	assert.Equal(t, sq("g10"), out.CapturedAt)
	assert.False(t, out.EnPassant)
	assert.Len(t, s.Placements(), 1)
}

func TestApplyMove_PawnCounters(t *testing.T) {
	s := newSession(t, at("m7", Pawn, Red), at("g14", Rook, Blue), at("a7", Rook, Yellow), at("h1", Rook, Green))
	out := move(t, s, "m7", "k7")
	assert.True(t, out.DoubleStep)
	assert.Equal(t, 4, out.Result.MoveCount)
	lm, _ := s.LastMove()
	assert.True(t, lm.DoubleStep)

	move(t, s, "g14", "g13")
	move(t, s, "a7", "a8")
	move(t, s, "h1", "h2")

	out = move(t, s, "k7", "j7")
	assert.False(t, out.DoubleStep)
	assert.Equal(t, 5, out.Result.MoveCount)
}

func TestApplyMove_PromotionAtEight(t *testing.T) {
	s := newSession(t,
		at("m7", Pawn, Red),
		at("d1", Rook, Green),
		at("g14", King, Blue),
		at("a7", King, Yellow),
	)
	_, err := s.Resign(Blue)
	require.NoError(t, err)
	_, err = s.Resign(Yellow)
	require.NoError(t, err)

	path := []string{"m7", "k7", "j7", "i7", "h7", "g7"}
	rook := []string{"d1", "e1"}
	var out MoveOutcome
	for i := 1; i < len(path); i++ {
		out = move(t, s, path[i-1], path[i])
		if i < len(path)-1 {
			assert.False(t, out.Promoted, "step %d", i)
			assert.Equal(t, Pawn, out.Result.Type)
		}
		move(t, s, rook[(i+1)%2], rook[i%2])
	}
	assert.True(t, out.Promoted)
	assert.Equal(t, Piece{Type: Queen, Color: Red}, out.Result)
	assert.Equal(t, Pawn, out.Piece.Type)

	p, ok := s.PieceAt(sq("g7"))
	require.True(t, ok)
	assert.Equal(t, Queen, p.Type)
	assert.Equal(t, Red, p.Color)

	got := legal(t, s, "g7")
	assert.Contains(t, got, "g1", "queen slides along the file")
	assert.Contains(t, got, "d4", "queen slides along the diagonal")
	lm, _ := s.LastMove()
	assert.Equal(t, Rook, lm.Type)
}

func TestApplyMove_PromotionFromHighCounter(t *testing.T) {
	s := newSession(t, Placement{At: sq("h7"), Piece: Piece{Type: Pawn, Color: Red, MoveCount: 7}}, at("g14", Rook, Blue))
	out := move(t, s, "h7", "g7")
	assert.True(t, out.Promoted)
	lm, _ := s.LastMove()
	assert.Equal(t, Pawn, lm.Type, "last move keeps the pre-promotion type")
}

func enPassantSetup(t *testing.T) *Session {
	return newSession(t,
		at("n7", Rook, Red),
		at("g13", Pawn, Blue),
		Placement{At: sq("g10"), Piece: Piece{Type: Pawn, Color: Yellow, MoveCount: 5}},
		at("a7", Rook, Yellow),
		at("h1", Rook, Green),
	)
}

func TestEnPassant_AvailableForOnePly(t *testing.T) {
	s := enPassantSetup(t)
	move(t, s, "n7", "n8")
	out := move(t, s, "g13", "g11")
	require.True(t, out.DoubleStep)

	assert.Contains(t, legal(t, s, "g10"), "h11")

	move(t, s, "a7", "a8")
	assert.NotContains(t, legal(t, s, "g10"), "h11")
}

func TestEnPassant_RemovesPassedPawn(t *testing.T) {
	s := enPassantSetup(t)
	move(t, s, "n7", "n8")
	move(t, s, "g13", "g11")

	out := move(t, s, "g10", "h11")
	assert.True(t, out.EnPassant)
	require.NotNil(t, out.Captured)
	assert.Equal(t, Pawn, out.Captured.Type)
	assert.Equal(t, Blue, out.Captured.Color)
	assert.Equal(t, sq("g11"), out.CapturedAt)

	_, ok := s.PieceAt(sq("g11"))
	assert.False(t, ok, "passed pawn is removed")
	p, ok := s.PieceAt(sq("h11"))
	require.True(t, ok)
	assert.Equal(t, Yellow, p.Color)
	assert.Equal(t, Green, out.Next)
}

func TestEnPassant_NotForSingleStep(t *testing.T) {
	s := newSession(t,
		at("n7", Rook, Red),
		Placement{At: sq("g12"), Piece: Piece{Type: Pawn, Color: Blue, MoveCount: 3}},
		Placement{At: sq("g10"), Piece: Piece{Type: Pawn, Color: Yellow, MoveCount: 5}},
	)
	move(t, s, "n7", "n8")
	move(t, s, "g12", "g11")
	assert.NotContains(t, legal(t, s, "g10"), "h11")
}

func TestApplyMove_IllegalLeavesSessionUntouched(t *testing.T) {
	s := enPassantSetup(t)
	move(t, s, "n7", "n8")
	before := s.Clone()

	cases := []struct {
		name     string
		from, to string
	}{
		{"not a destination", "g13", "g10"},
		{"wrong color", "a7", "a8"},
		{"empty square", "g7", "g6"},
		{"sideways pawn", "g13", "h13"},
	}
	for _, tc := range cases {
		_, err := s.ApplyMove(sq(tc.from), sq(tc.to))
		assert.ErrorIs(t, err, ErrIllegalMove, tc.name)
		assert.Equal(t, before, s, tc.name)
	}
}

func TestApplyMove_InvalidCoordinate(t *testing.T) {
	s := newSession(t, at("n7", Rook, Red))
	before := s.Clone()
	_, err := s.ApplyMove(sq("n7"), sq("n7").Add(Forward(Yellow)))
	assert.ErrorIs(t, err, ErrInvalidCoordinate)
	assert.Equal(t, before, s)
}
