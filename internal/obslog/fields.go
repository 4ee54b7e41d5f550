package obslog

import (
	"fmt"

	"go.uber.org/zap"
)

// Common field keys shared by the game, HTTP and websocket layers.

func FieldSession(id string) zap.Field { return zap.String("session_id", id) }

func FieldColor(c fmt.Stringer) zap.Field { return zap.Stringer("color", c) }

func FieldMove(from, to fmt.Stringer) zap.Field {
	return zap.String("move", from.String()+"-"+to.String())
}

func FieldLayout(name string) zap.Field { return zap.String("layout", name) }
