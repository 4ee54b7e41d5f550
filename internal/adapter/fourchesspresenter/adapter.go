// Package fourchesspresenter converts engine and manager values into wire DTOs and text.
package fourchesspresenter

import (
	"github.com/KylerCondran/4PlayerChess/internal/board"
	"github.com/KylerCondran/4PlayerChess/internal/fourchess"
	"github.com/KylerCondran/4PlayerChess/internal/game"
	"github.com/KylerCondran/4PlayerChess/pkg/fourchessdto"
)

func ToDTOState(snap game.Snapshot) *fourchessdto.GameState {
	s := snap.Session
	if s == nil {
		return nil
	}
	st := &fourchessdto.GameState{
		ID:        snap.ID,
		Layout:    snap.Layout,
		Over:      s.Over(),
		Resigned:  colorNames(s.Resigned()),
		InPlay:    colorNames(s.InPlay()),
		Ply:       s.Ply(),
		Pieces:    ToDTOPlacements(s.Placements()),
		CreatedAt: snap.CreatedAt,
		UpdatedAt: snap.UpdatedAt,
	}
	if c, ok := s.Turn(); ok {
		st.Turn = c.String()
	}
	if w, ok := s.Winner(); ok {
		st.Winner = w.String()
	}
	if lm, ok := s.LastMove(); ok {
		st.LastMove = &fourchessdto.LastMove{
			Type:       lm.Type.String(),
			Color:      lm.Color.String(),
			From:       lm.From.String(),
			To:         lm.To.String(),
			DoubleStep: lm.DoubleStep,
		}
	}
	return st
}

func ToDTOSummary(snap game.Snapshot) fourchessdto.GameSummary {
	sum := fourchessdto.GameSummary{ID: snap.ID, Layout: snap.Layout, UpdatedAt: snap.UpdatedAt}
	if s := snap.Session; s != nil {
		sum.Over = s.Over()
		sum.Ply = s.Ply()
		if c, ok := s.Turn(); ok {
			sum.Turn = c.String()
		}
	}
	return sum
}

func ToDTOPlacements(pls []fourchess.Placement) []fourchessdto.Placement {
	out := make([]fourchessdto.Placement, 0, len(pls))
	for _, pl := range pls {
		p := fourchessdto.Placement{
			Square: pl.At.String(),
			Type:   pl.Piece.Type.String(),
			Color:  pl.Piece.Color.String(),
		}
		if pl.Piece.Type == fourchess.Pawn {
			p.MoveCount = pl.Piece.MoveCount
		}
		out = append(out, p)
	}
	return out
}

func ToDTOMove(out fourchess.MoveOutcome, snap game.Snapshot) *fourchessdto.MoveResponse {
	resp := &fourchessdto.MoveResponse{
		From:     out.From.String(),
		To:       out.To.String(),
		Mover:    out.Mover.String(),
		Piece:    out.Piece.Type.String(),
		Promoted: out.Promoted,
		State:    ToDTOState(snap),
	}
	if out.Captured != nil {
		resp.Captured = &fourchessdto.Capture{
			Square:    out.CapturedAt.String(),
			Type:      out.Captured.Type.String(),
			Color:     out.Captured.Color.String(),
			EnPassant: out.EnPassant,
		}
	}
	return resp
}

func ToDTOResign(out fourchess.ResignOutcome, snap game.Snapshot) *fourchessdto.ResignResponse {
	return &fourchessdto.ResignResponse{
		Color:           out.Color.String(),
		AlreadyResigned: out.AlreadyResigned,
		State:           ToDTOState(snap),
	}
}

func ToDTOLegal(from board.Coord, dests []board.Coord) *fourchessdto.LegalResponse {
	names := make([]string, 0, len(dests))
	for _, c := range dests {
		names = append(names, c.String())
	}
	return &fourchessdto.LegalResponse{From: from.String(), Destinations: names}
}

func colorNames(cs []fourchess.Color) []string {
	out := make([]string, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.String())
	}
	return out
}
