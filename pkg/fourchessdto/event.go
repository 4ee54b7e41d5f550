package fourchessdto

import "time"

// Event kinds.
const (
	EventMoved    = "moved"
	EventCaptured = "captured"
	EventPromoted = "promoted"
	EventTurn     = "turn"
	EventResigned = "resigned"
	EventGameOver = "game_over"
	EventClosed   = "closed"
)

// Event is one entry on a session's feed.
type Event struct {
	Seq       uint64    `json:"seq"`
	SessionID string    `json:"session_id"`
	Kind      string    `json:"kind"`
	Color     string    `json:"color,omitempty"`
	Piece     string    `json:"piece,omitempty"`
	From      string    `json:"from,omitempty"`
	To        string    `json:"to,omitempty"`
	Captured  *Capture  `json:"captured,omitempty"`
	Winner    string    `json:"winner,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	Caption   string    `json:"caption"`
	At        time.Time `json:"at"`
}
