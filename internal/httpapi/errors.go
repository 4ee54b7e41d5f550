package httpapi

import (
	"errors"
	"strings"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/KylerCondran/4PlayerChess/internal/fourchess"
	"github.com/KylerCondran/4PlayerChess/internal/game"
	"github.com/KylerCondran/4PlayerChess/internal/obslog"
	"github.com/KylerCondran/4PlayerChess/pkg/fourchessdto"
)

var errEmptyBody = &badRequest{detail: "request body required"}

type badRequest struct{ detail string }

func (e *badRequest) Error() string { return e.detail }

// squareError keeps the raw input of a square that failed to parse.
type squareError struct {
	square string
	err    error
}

func (e *squareError) Error() string { return e.err.Error() }
func (e *squareError) Unwrap() error { return e.err }

type colorError struct {
	color string
	err   error
}

func (e *colorError) Error() string { return e.err.Error() }
func (e *colorError) Unwrap() error { return e.err }

// classify maps an error to a status, a code and the template data for its message.
func classify(err error, id string) (int, string, map[string]any) {
	var br *badRequest
	var se *squareError
	var ce *colorError
	switch {
	case errors.As(err, &br):
		return fasthttp.StatusBadRequest, fourchessdto.CodeInvalidRequest, map[string]any{"Detail": br.detail}
	case errors.As(err, &se):
		return fasthttp.StatusBadRequest, fourchessdto.CodeInvalidCoordinate, map[string]any{"Square": se.square}
	case errors.Is(err, fourchess.ErrInvalidCoordinate):
		return fasthttp.StatusBadRequest, fourchessdto.CodeInvalidCoordinate, map[string]any{"Square": "square"}
	case errors.As(err, &ce):
		return fasthttp.StatusBadRequest, fourchessdto.CodeInvalidColor, map[string]any{"Color": ce.color}
	case errors.Is(err, fourchess.ErrInvalidColor):
		return fasthttp.StatusBadRequest, fourchessdto.CodeInvalidColor, map[string]any{"Color": "?"}
	case errors.Is(err, game.ErrSessionNotFound):
		return fasthttp.StatusNotFound, fourchessdto.CodeNotFound, map[string]any{"ID": id}
	case errors.Is(err, game.ErrUnknownLayout):
		return fasthttp.StatusNotFound, fourchessdto.CodeUnknownLayout, map[string]any{"Layout": layoutName(err)}
	case errors.Is(err, fourchess.ErrGameOver):
		return fasthttp.StatusConflict, fourchessdto.CodeGameOver, nil
	case errors.Is(err, fourchess.ErrIllegalMove):
		detail := strings.TrimPrefix(err.Error(), fourchess.ErrIllegalMove.Error()+": ")
		return fasthttp.StatusUnprocessableEntity, fourchessdto.CodeIllegalMove, map[string]any{"Detail": detail}
	case errors.Is(err, game.ErrTooManySessions):
		return fasthttp.StatusTooManyRequests, fourchessdto.CodeTooManySessions, nil
	default:
		return fasthttp.StatusInternalServerError, fourchessdto.CodeInternal, nil
	}
}

func layoutName(err error) string {
	msg := err.Error()
	if i := strings.LastIndex(msg, ": "); i >= 0 {
		return strings.Trim(msg[i+2:], `"`)
	}
	return "?"
}

func (s *Server) writeError(ctx *fasthttp.RequestCtx, err error, id string) {
	status, code, data := classify(err, id)
	msg := s.cat.RenderOr("error."+code, data, code)
	body := fourchessdto.Error{Code: code, Message: msg, Retryable: status == fasthttp.StatusTooManyRequests}

	fields := []zap.Field{
		zap.ByteString("method", ctx.Method()),
		zap.ByteString("path", ctx.Path()),
		zap.Int("status", status),
		zap.Error(err),
	}
	if id != "" {
		fields = append(fields, obslog.FieldSession(id))
	}
	if status >= fasthttp.StatusInternalServerError {
		obslog.L().Error("http_request_error", fields...)
	} else {
		obslog.L().Debug("http_request_error", fields...)
	}
	writeJSON(ctx, status, body)
}

func (s *Server) notFound(ctx *fasthttp.RequestCtx) {
	writeJSON(ctx, fasthttp.StatusNotFound, fourchessdto.Error{
		Code:    fourchessdto.CodeNotFound,
		Message: "no route for " + string(ctx.Path()),
	})
}

func (s *Server) methodNotAllowed(ctx *fasthttp.RequestCtx) {
	code := fourchessdto.CodeMethodNotAllowed
	msg := s.cat.RenderOr("error."+code, map[string]any{"Method": string(ctx.Method()), "Path": string(ctx.Path())}, code)
	writeJSON(ctx, fasthttp.StatusMethodNotAllowed, fourchessdto.Error{Code: code, Message: msg})
}
