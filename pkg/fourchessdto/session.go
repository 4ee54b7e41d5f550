package fourchessdto

import "time"

// Placement is one occupied square. Square uses algebraic names such as "m4".
type Placement struct {
	Square    string `json:"square"`
	Type      string `json:"type"`
	Color     string `json:"color"`
	MoveCount int    `json:"move_count,omitempty"`
}

type LastMove struct {
	Type       string `json:"type"`
	Color      string `json:"color"`
	From       string `json:"from"`
	To         string `json:"to"`
	DoubleStep bool   `json:"double_step,omitempty"`
}

// GameState is a full snapshot of one session.
type GameState struct {
	ID        string      `json:"id"`
	Layout    string      `json:"layout"`
	Turn      string      `json:"turn,omitempty"`
	Over      bool        `json:"over"`
	Winner    string      `json:"winner,omitempty"`
	Resigned  []string    `json:"resigned"`
	InPlay    []string    `json:"in_play"`
	Ply       int         `json:"ply"`
	LastMove  *LastMove   `json:"last_move,omitempty"`
	Pieces    []Placement `json:"pieces"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// GameSummary is the list view of a session.
type GameSummary struct {
	ID        string    `json:"id"`
	Layout    string    `json:"layout"`
	Turn      string    `json:"turn,omitempty"`
	Over      bool      `json:"over"`
	Ply       int       `json:"ply"`
	UpdatedAt time.Time `json:"updated_at"`
}

type GameList struct {
	Games []GameSummary `json:"games"`
}

type LayoutList struct {
	Default string   `json:"default"`
	Layouts []string `json:"layouts"`
}
