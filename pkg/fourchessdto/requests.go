package fourchessdto

type CreateRequest struct {
	Layout string `json:"layout,omitempty"`
}

type MoveRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Capture describes a removed piece. Square differs from the move's To only for en passant.
type Capture struct {
	Square    string `json:"square"`
	Type      string `json:"type"`
	Color     string `json:"color"`
	EnPassant bool   `json:"en_passant,omitempty"`
}

type MoveResponse struct {
	From     string     `json:"from"`
	To       string     `json:"to"`
	Mover    string     `json:"mover"`
	Piece    string     `json:"piece"`
	Captured *Capture   `json:"captured,omitempty"`
	Promoted bool       `json:"promoted,omitempty"`
	State    *GameState `json:"state"`
}

type LegalResponse struct {
	From         string   `json:"from"`
	Destinations []string `json:"destinations"`
}

type ResignRequest struct {
	Color string `json:"color"`
}

type ResignResponse struct {
	Color           string     `json:"color"`
	AlreadyResigned bool       `json:"already_resigned,omitempty"`
	State           *GameState `json:"state"`
}
