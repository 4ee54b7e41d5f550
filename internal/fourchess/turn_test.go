package fourchess

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KylerCondran/4PlayerChess/internal/board"
)

func fourRooks(t *testing.T) *Session {
	return newSession(t,
		at("n7", Rook, Red),
		at("g14", Rook, Blue),
		at("a7", Rook, Yellow),
		at("h1", Rook, Green),
	)
}

func TestResign_OffTurnKeepsMover(t *testing.T) {
	s := fourRooks(t)
	out, err := s.Resign(Yellow)
	require.NoError(t, err)
	assert.False(t, out.TurnAdvanced)
	assert.False(t, out.GameOver)
	assert.Equal(t, Red, out.Next)
	assert.True(t, s.IsResigned(Yellow))
	assert.Equal(t, []Color{Red, Blue, Green}, s.InPlay())
}

func TestResign_CurrentColorPassesTurn(t *testing.T) {
	s := fourRooks(t)
	out, err := s.Resign(Red)
	require.NoError(t, err)
	assert.True(t, out.TurnAdvanced)
	assert.Equal(t, Blue, out.Next)

	c, ok := s.Turn()
	require.True(t, ok)
	assert.Equal(t, Blue, c)
}

func TestResign_Idempotent(t *testing.T) {
	s := fourRooks(t)
	_, err := s.Resign(Blue)
	require.NoError(t, err)
	before := s.Clone()

	out, err := s.Resign(Blue)
	require.NoError(t, err)
	assert.True(t, out.AlreadyResigned)
	assert.Equal(t, before, s)
}

func TestResign_SkippedInRotation(t *testing.T) {
	s := fourRooks(t)
	_, err := s.Resign(Blue)
	require.NoError(t, err)

	out := move(t, s, "n7", "n8")
	assert.Equal(t, Yellow, out.Next)
	out = move(t, s, "a7", "a8")
	assert.Equal(t, Green, out.Next)
	out = move(t, s, "h1", "h2")
	assert.Equal(t, Red, out.Next)
}

func TestResign_ResignedPiecesStayButCannotMove(t *testing.T) {
	s := newSession(t,
		at("g7", Rook, Red),
		at("g14", Rook, Blue),
		at("a7", Rook, Yellow),
		at("h1", Rook, Green),
	)
	_, err := s.Resign(Blue)
	require.NoError(t, err)

	p, ok := s.PieceAt(sq("g14"))
	require.True(t, ok)
	assert.Equal(t, Blue, p.Color)

	// still a valid capture target
	move(t, s, "g7", "g13")
	out := move(t, s, "a7", "a8")
	assert.Equal(t, Green, out.Next)
	move(t, s, "h1", "h2")
	out = move(t, s, "g13", "g14")
	require.NotNil(t, out.Captured)
	assert.Equal(t, Blue, out.Captured.Color)
}

func TestResign_LastColorStandingWins(t *testing.T) {
	s := fourRooks(t)
	for _, c := range []Color{Blue, Yellow} {
		out, err := s.Resign(c)
		require.NoError(t, err)
		assert.False(t, out.GameOver)
	}
	out, err := s.Resign(Red)
	require.NoError(t, err)
	assert.True(t, out.GameOver)
	assert.False(t, out.HasNext)
	require.True(t, out.HasWinner)
	assert.Equal(t, Green, out.Winner)

	assert.True(t, s.Over())
	_, ok := s.Turn()
	assert.False(t, ok)
	w, ok := s.Winner()
	require.True(t, ok)
	assert.Equal(t, Green, w)
	assert.Empty(t, s.Movable())

	_, err = s.ApplyMove(sq("h1"), sq("h2"))
	assert.ErrorIs(t, err, ErrGameOver)

	_, err = s.Resign(Green)
	assert.ErrorIs(t, err, ErrGameOver)
	_, err = s.Resign(Red)
	assert.NoError(t, err, "repeat resignation stays a no-op after the game ends")
}

func TestResign_InvalidColor(t *testing.T) {
	s := fourRooks(t)
	_, err := s.Resign(Color(9))
	assert.ErrorIs(t, err, ErrInvalidColor)
	assert.Empty(t, s.Resigned())
}

func TestWinner_NoneWhileRunning(t *testing.T) {
	s := fourRooks(t)
	_, ok := s.Winner()
	assert.False(t, ok)
}

func TestParseColorAndPieceType(t *testing.T) {
	for in, want := range map[string]Color{"red": Red, " Blue ": Blue, "y": Yellow, "G": Green} {
		got, err := ParseColor(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseColor("purple")
	assert.ErrorIs(t, err, ErrInvalidColor)

	for in, want := range map[string]PieceType{"pawn": Pawn, "N": Knight, "queen": Queen, "k": King} {
		got, err := ParsePieceType(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err = ParsePieceType("dragon")
	assert.Error(t, err)
}

func TestNewSession_RejectsBadPlacements(t *testing.T) {
	_, err := NewSession([]Placement{{At: sq("g7"), Piece: NewPiece(Rook, Red)}, {At: sq("g7"), Piece: NewPiece(Pawn, Blue)}})
	assert.Error(t, err)

	_, err = NewSession([]Placement{{At: board.C(0, 0), Piece: NewPiece(Rook, Red)}})
	assert.Error(t, err)
}
