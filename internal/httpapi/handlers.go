package httpapi

import (
	"strings"

	"github.com/valyala/fasthttp"

	"github.com/KylerCondran/4PlayerChess/internal/adapter/fourchesspresenter"
	"github.com/KylerCondran/4PlayerChess/internal/board"
	"github.com/KylerCondran/4PlayerChess/internal/fourchess"
	"github.com/KylerCondran/4PlayerChess/pkg/fourchessdto"
)

func (s *Server) handleHealth(ctx *fasthttp.RequestCtx) {
	writeJSON(ctx, fasthttp.StatusOK, map[string]any{"status": "ok", "sessions": s.mgr.Len()})
}

func (s *Server) handleLayouts(ctx *fasthttp.RequestCtx) {
	writeJSON(ctx, fasthttp.StatusOK, fourchessdto.LayoutList{Default: s.defaultLayout, Layouts: s.layouts.Names()})
}

func (s *Server) handleCreate(ctx *fasthttp.RequestCtx) {
	var req fourchessdto.CreateRequest
	if err := decodeBody(ctx, &req, true); err != nil {
		s.writeError(ctx, err, "")
		return
	}
	snap, err := s.mgr.Create(ctx, req.Layout)
	if err != nil {
		s.writeError(ctx, err, "")
		return
	}
	ctx.Response.Header.Set("Location", "/games/"+snap.ID)
	writeJSON(ctx, fasthttp.StatusCreated, fourchesspresenter.ToDTOState(snap))
}

func (s *Server) handleList(ctx *fasthttp.RequestCtx) {
	snaps, err := s.mgr.List(ctx)
	if err != nil {
		s.writeError(ctx, err, "")
		return
	}
	list := fourchessdto.GameList{Games: make([]fourchessdto.GameSummary, 0, len(snaps))}
	for _, snap := range snaps {
		list.Games = append(list.Games, fourchesspresenter.ToDTOSummary(snap))
	}
	writeJSON(ctx, fasthttp.StatusOK, list)
}

func (s *Server) handleGet(ctx *fasthttp.RequestCtx, id string) {
	snap, err := s.mgr.Get(ctx, id)
	if err != nil {
		s.writeError(ctx, err, id)
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, fourchesspresenter.ToDTOState(snap))
}

func (s *Server) handleDelete(ctx *fasthttp.RequestCtx, id string) {
	if err := s.mgr.Delete(ctx, id); err != nil {
		s.writeError(ctx, err, id)
		return
	}
	ctx.SetStatusCode(fasthttp.StatusNoContent)
}

func (s *Server) handleLegal(ctx *fasthttp.RequestCtx, id string) {
	raw := string(ctx.QueryArgs().Peek("from"))
	if strings.TrimSpace(raw) == "" {
		s.writeError(ctx, &badRequest{detail: "query parameter from is required"}, id)
		return
	}
	from, err := parseSquare(raw)
	if err != nil {
		s.writeError(ctx, err, id)
		return
	}
	dests, err := s.mgr.Legal(ctx, id, from)
	if err != nil {
		s.writeError(ctx, err, id)
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, fourchesspresenter.ToDTOLegal(from, dests))
}

func (s *Server) handleMove(ctx *fasthttp.RequestCtx, id string) {
	var req fourchessdto.MoveRequest
	if err := decodeBody(ctx, &req, false); err != nil {
		s.writeError(ctx, err, id)
		return
	}
	from, err := parseSquare(req.From)
	if err != nil {
		s.writeError(ctx, err, id)
		return
	}
	to, err := parseSquare(req.To)
	if err != nil {
		s.writeError(ctx, err, id)
		return
	}
	out, snap, err := s.mgr.Move(ctx, id, from, to)
	if err != nil {
		s.writeError(ctx, err, id)
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, fourchesspresenter.ToDTOMove(out, snap))
}

func (s *Server) handleResign(ctx *fasthttp.RequestCtx, id string) {
	var req fourchessdto.ResignRequest
	if err := decodeBody(ctx, &req, false); err != nil {
		s.writeError(ctx, err, id)
		return
	}
	c, err := fourchess.ParseColor(req.Color)
	if err != nil {
		s.writeError(ctx, &colorError{color: req.Color, err: err}, id)
		return
	}
	out, snap, err := s.mgr.Resign(ctx, id, c)
	if err != nil {
		s.writeError(ctx, err, id)
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, fourchesspresenter.ToDTOResign(out, snap))
}

func parseSquare(raw string) (board.Coord, error) {
	c, err := board.ParseCoord(raw)
	if err != nil {
		return board.OffGrid, &squareError{square: strings.TrimSpace(raw), err: err}
	}
	return c, nil
}
