package fourchesspresenter

import (
	"fmt"
	"strings"

	"github.com/KylerCondran/4PlayerChess/internal/board"
	"github.com/KylerCondran/4PlayerChess/pkg/fourchessdto"
)

var pieceLetters = map[string]byte{
	"pawn":   'P',
	"rook":   'R',
	"knight": 'N',
	"bishop": 'B',
	"queen":  'Q',
	"king":   'K',
}

// FormatBoard draws the state as a text grid, rank 14 on top. Each occupied
// square shows the color initial and piece letter ("rK" is the red king);
// corner squares are left blank.
func FormatBoard(st *fourchessdto.GameState) string {
	if st == nil {
		return ""
	}
	cells := make(map[string]string, len(st.Pieces))
	for _, p := range st.Pieces {
		letter, ok := pieceLetters[p.Type]
		if !ok || p.Color == "" {
			continue
		}
		cells[p.Square] = string(p.Color[0]) + string(letter)
	}

	var sb strings.Builder
	for y := board.Size - 1; y >= 0; y-- {
		fmt.Fprintf(&sb, "%2d ", y+1)
		for x := 0; x < board.Size; x++ {
			c := board.C(x, y)
			switch cell, ok := cells[c.String()]; {
			case !board.IsActive(c):
				sb.WriteString("   ")
			case ok:
				sb.WriteString(cell + " ")
			default:
				sb.WriteString(" . ")
			}
		}
		sb.WriteString("\n")
	}
	sb.WriteString("   ")
	for x := 0; x < board.Size; x++ {
		fmt.Fprintf(&sb, " %c ", 'a'+x)
	}
	sb.WriteString("\n")
	sb.WriteString(FormatStatus(st))
	return sb.String()
}

// FormatStatus is the one-line summary under the board.
func FormatStatus(st *fourchessdto.GameState) string {
	if st == nil {
		return ""
	}
	var sb strings.Builder
	switch {
	case st.Over && st.Winner != "":
		fmt.Fprintf(&sb, "game over, %s wins", st.Winner)
	case st.Over:
		sb.WriteString("game over")
	default:
		fmt.Fprintf(&sb, "%s to move", st.Turn)
	}
	fmt.Fprintf(&sb, " | ply %d", st.Ply)
	if len(st.Resigned) > 0 {
		fmt.Fprintf(&sb, " | resigned: %s", strings.Join(st.Resigned, ", "))
	}
	if lm := st.LastMove; lm != nil {
		fmt.Fprintf(&sb, " | last: %s %s %s-%s", lm.Color, lm.Type, lm.From, lm.To)
	}
	return sb.String()
}

func FormatEvent(ev fourchessdto.Event) string {
	return fmt.Sprintf("#%d %s: %s", ev.Seq, ev.Kind, ev.Caption)
}
