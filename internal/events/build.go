package events

import (
	"github.com/KylerCondran/4PlayerChess/internal/fourchess"
	"github.com/KylerCondran/4PlayerChess/internal/msgcat"
	"github.com/KylerCondran/4PlayerChess/pkg/fourchessdto"
)

// Builder turns engine outcomes into captioned feed events.
type Builder struct {
	cat *msgcat.Catalog
}

// NewBuilder uses cat for captions. A nil catalog yields plain fallback captions.
func NewBuilder(cat *msgcat.Catalog) *Builder { return &Builder{cat: cat} }

func (b *Builder) caption(key string, data map[string]any, fallback string) string {
	return b.cat.RenderOr(key, data, fallback)
}

// Move returns the events for one applied move, in the order they happened.
func (b *Builder) Move(id string, out fourchess.MoveOutcome, s *fourchess.Session) []Event {
	color := out.Mover.String()
	piece := out.Piece.Type.String()
	from, to := out.From.String(), out.To.String()

	evs := []Event{{
		SessionID: id,
		Kind:      fourchessdto.EventMoved,
		Color:     color,
		Piece:     piece,
		From:      from,
		To:        to,
		Caption: b.caption("event.moved",
			map[string]any{"Color": color, "Piece": piece, "From": from, "To": to},
			color+" "+piece+" "+from+"-"+to),
	}}

	if out.Captured != nil {
		victim := out.Captured.String()
		at := out.CapturedAt.String()
		key := "event.captured"
		if out.EnPassant {
			key = "event.captured_en_passant"
		}
		evs = append(evs, Event{
			SessionID: id,
			Kind:      fourchessdto.EventCaptured,
			Color:     color,
			Piece:     piece,
			From:      from,
			To:        to,
			Captured: &fourchessdto.Capture{
				Square:    at,
				Type:      out.Captured.Type.String(),
				Color:     out.Captured.Color.String(),
				EnPassant: out.EnPassant,
			},
			Caption: b.caption(key,
				map[string]any{"Color": color, "Piece": piece, "Victim": victim, "At": at},
				color+" takes "+victim),
		})
	}

	if out.Promoted {
		evs = append(evs, Event{
			SessionID: id,
			Kind:      fourchessdto.EventPromoted,
			Color:     color,
			Piece:     out.Result.Type.String(),
			To:        to,
			Caption:   b.caption("event.promoted", map[string]any{"Color": color, "At": to}, color+" promotes"),
		})
	}
	return append(evs, b.after(id, s)...)
}

// Resign returns the events for a resignation. A repeated resignation produces none.
func (b *Builder) Resign(id string, out fourchess.ResignOutcome, s *fourchess.Session) []Event {
	if out.AlreadyResigned {
		return nil
	}
	color := out.Color.String()
	evs := []Event{{
		SessionID: id,
		Kind:      fourchessdto.EventResigned,
		Color:     color,
		Caption:   b.caption("event.resigned", map[string]any{"Color": color}, color+" resigns"),
	}}
	if !out.GameOver && !out.TurnAdvanced {
		return evs
	}
	return append(evs, b.after(id, s)...)
}

// after reports whose turn it is, or how the game ended.
func (b *Builder) after(id string, s *fourchess.Session) []Event {
	if s.Over() {
		ev := Event{SessionID: id, Kind: fourchessdto.EventGameOver}
		if w, ok := s.Winner(); ok {
			ev.Winner = w.String()
			ev.Caption = b.caption("event.game_over", map[string]any{"Winner": ev.Winner}, ev.Winner+" wins")
		} else {
			ev.Caption = b.caption("event.game_over_no_winner", nil, "game over")
		}
		return []Event{ev}
	}
	next, _ := s.Turn()
	return []Event{{
		SessionID: id,
		Kind:      fourchessdto.EventTurn,
		Color:     next.String(),
		Caption:   b.caption("event.turn", map[string]any{"Color": next.String()}, next.String()+" to move"),
	}}
}

// Closed renders the caption for a closed event.
func (b *Builder) Closed(reason string) string {
	return b.caption("event.closed", map[string]any{"Reason": reason}, "game closed")
}
