package fourchess

// advanceTurn steps to the next color in TurnOrder that has not resigned.
// At most NumColors steps are taken; finding nobody ends the game.
func (s *Session) advanceTurn() {
	for i := 0; i < NumColors; i++ {
		s.turn = (s.turn + 1) % NumColors
		if !s.resigned[TurnOrder[s.turn]] {
			return
		}
	}
	s.over = true
}

// settle ends the game when fewer than two colors are still playing.
func (s *Session) settle() {
	if len(s.InPlay()) < 2 {
		s.over = true
	}
}

// ResignOutcome describes what a resignation changed.
type ResignOutcome struct {
	Color Color
	// AlreadyResigned marks the idempotent no-op case.
	AlreadyResigned bool
	TurnAdvanced    bool
	Next            Color
	HasNext         bool
	GameOver        bool
	Winner          Color
	HasWinner       bool
}

// Resign withdraws c for the rest of the game. Its pieces stay on the board but never move again.
func (s *Session) Resign(c Color) (ResignOutcome, error) {
	if !c.Valid() {
		return ResignOutcome{}, ErrInvalidColor
	}
	out := ResignOutcome{Color: c}
	switch {
	case s.resigned[c]:
		out.AlreadyResigned = true
	case s.over:
		return out, ErrGameOver
	default:
		wasToMove := TurnOrder[s.turn] == c
		s.resigned[c] = true
		s.settle()
		if !s.over && wasToMove {
			s.advanceTurn()
			out.TurnAdvanced = true
		}
	}
	out.Next, out.HasNext = s.Turn()
	out.GameOver = s.over
	out.Winner, out.HasWinner = s.Winner()
	return out, nil
}
