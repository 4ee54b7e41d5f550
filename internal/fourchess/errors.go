package fourchess

import (
	"errors"

	"github.com/KylerCondran/4PlayerChess/internal/board"
)

var (
	ErrIllegalMove       = errors.New("illegal move")
	ErrInvalidCoordinate = board.ErrInvalidCoordinate
	ErrInvalidColor      = errors.New("invalid color")
	// ErrGameOver is raised once fewer than two colors remain in play.
	ErrGameOver = errors.New("game over: all opponents resigned")
)
