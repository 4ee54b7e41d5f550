package fourchessdto

// Error is the JSON body of every non-2xx response.
type Error struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable,omitempty"`
}

func (e Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Code != "" {
		return e.Code
	}
	return "fourchess service error"
}

// Error codes.
const (
	CodeInvalidRequest    = "invalid_request"
	CodeInvalidCoordinate = "invalid_coordinate"
	CodeInvalidColor      = "invalid_color"
	CodeIllegalMove       = "illegal_move"
	CodeGameOver          = "game_over"
	CodeNotFound          = "not_found"
	CodeUnknownLayout     = "unknown_layout"
	CodeTooManySessions   = "too_many_sessions"
	CodeMethodNotAllowed  = "method_not_allowed"
	CodeInternal          = "internal"
)
