package game

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KylerCondran/4PlayerChess/internal/board"
	"github.com/KylerCondran/4PlayerChess/internal/events"
	"github.com/KylerCondran/4PlayerChess/internal/fourchess"
	"github.com/KylerCondran/4PlayerChess/internal/layout"
	"github.com/KylerCondran/4PlayerChess/internal/msgcat"
	"github.com/KylerCondran/4PlayerChess/pkg/fourchessdto"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newTestManager(t *testing.T, opts Options) (*Manager, *events.Hub, *clock) {
	t.Helper()
	layouts, err := layout.Load("")
	require.NoError(t, err)
	cat, err := msgcat.New("")
	require.NoError(t, err)
	hub := events.NewHub(64)
	m := NewManager(layouts, hub, events.NewBuilder(cat), opts)
	clk := &clock{t: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
	m.now = clk.now
	return m, hub, clk
}

func sq(s string) board.Coord { return board.MustParse(s) }

func TestCreateAndGet(t *testing.T) {
	ctx := context.Background()
	m, _, _ := newTestManager(t, Options{})
	snap, err := m.Create(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "classic", snap.Layout)
	assert.Len(t, snap.ID, 36)

	got, err := m.Get(ctx, snap.ID)
	require.NoError(t, err)
	assert.Len(t, got.Session.Placements(), 64)

	_, err = m.Get(ctx, "nope")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = m.Create(ctx, "nope")
	assert.ErrorIs(t, err, ErrUnknownLayout)
}

func TestCreate_Cap(t *testing.T) {
	ctx := context.Background()
	m, _, _ := newTestManager(t, Options{MaxSessions: 2})
	for i := 0; i < 2; i++ {
		_, err := m.Create(ctx, "classic")
		require.NoError(t, err)
	}
	_, err := m.Create(ctx, "classic")
	assert.ErrorIs(t, err, ErrTooManySessions)
}

func TestSnapshotIsACopy(t *testing.T) {
	ctx := context.Background()
	m, _, _ := newTestManager(t, Options{})
	snap, err := m.Create(ctx, "")
	require.NoError(t, err)
	_, err = snap.Session.ApplyMove(sq("m7"), sq("k7"))
	require.NoError(t, err)

	got, err := m.Get(ctx, snap.ID)
	require.NoError(t, err)
	assert.Zero(t, got.Session.Ply())
}

func TestMove_PublishesEvents(t *testing.T) {
	ctx := context.Background()
	m, _, clk := newTestManager(t, Options{})
	snap, err := m.Create(ctx, "")
	require.NoError(t, err)
	sub, err := m.Subscribe(ctx, snap.ID)
	require.NoError(t, err)
	defer sub.Unsubscribe()

	clk.t = clk.t.Add(time.Minute)
	out, after, err := m.Move(ctx, snap.ID, sq("m7"), sq("k7"))
	require.NoError(t, err)
	assert.True(t, out.DoubleStep)
	assert.Equal(t, 1, after.Session.Ply())
	assert.Equal(t, clk.t, after.UpdatedAt)

	ev := <-sub.Events()
	assert.Equal(t, fourchessdto.EventMoved, ev.Kind)
	assert.Equal(t, "red pawn m7-k7", ev.Caption)
	ev = <-sub.Events()
	assert.Equal(t, fourchessdto.EventTurn, ev.Kind)
	assert.Equal(t, "blue", ev.Color)
}

func TestMove_Rejected(t *testing.T) {
	ctx := context.Background()
	m, hub, _ := newTestManager(t, Options{})
	snap, err := m.Create(ctx, "")
	require.NoError(t, err)
	sub := hub.Subscribe(snap.ID)
	defer sub.Unsubscribe()

	_, _, err = m.Move(ctx, snap.ID, sq("d13"), sq("d12"))
	assert.ErrorIs(t, err, fourchess.ErrIllegalMove, "blue is not on turn")
	_, _, err = m.Move(ctx, snap.ID, sq("m7"), sq("j7"))
	assert.ErrorIs(t, err, fourchess.ErrIllegalMove)
	_, _, err = m.Move(ctx, "missing", sq("m7"), sq("k7"))
	assert.ErrorIs(t, err, ErrSessionNotFound)

	select {
	case ev := <-sub.Events():
		t.Fatalf("unexpected event %+v", ev)
	default:
	}
}

func TestLegal(t *testing.T) {
	ctx := context.Background()
	m, _, _ := newTestManager(t, Options{})
	snap, err := m.Create(ctx, "")
	require.NoError(t, err)
	got, err := m.Legal(ctx, snap.ID, sq("n5"))
	require.NoError(t, err)
	assert.Equal(t, []board.Coord{sq("l4"), sq("l6")}, got)

	_, err = m.Legal(ctx, snap.ID, board.C(0, 0))
	assert.ErrorIs(t, err, fourchess.ErrInvalidCoordinate)
}

func TestResign_GameOver(t *testing.T) {
	ctx := context.Background()
	m, _, _ := newTestManager(t, Options{})
	snap, err := m.Create(ctx, "")
	require.NoError(t, err)

	for _, c := range []fourchess.Color{fourchess.Red, fourchess.Blue} {
		_, _, err := m.Resign(ctx, snap.ID, c)
		require.NoError(t, err)
	}
	out, after, err := m.Resign(ctx, snap.ID, fourchess.Green)
	require.NoError(t, err)
	assert.True(t, out.GameOver)
	w, ok := after.Session.Winner()
	require.True(t, ok)
	assert.Equal(t, fourchess.Yellow, w)

	_, _, err = m.Move(ctx, snap.ID, sq("b7"), sq("c7"))
	assert.ErrorIs(t, err, fourchess.ErrGameOver)

	again, _, err := m.Resign(ctx, snap.ID, fourchess.Green)
	require.NoError(t, err)
	assert.True(t, again.AlreadyResigned)
}

func TestDelete_ClosesFeed(t *testing.T) {
	ctx := context.Background()
	m, _, _ := newTestManager(t, Options{})
	snap, err := m.Create(ctx, "")
	require.NoError(t, err)
	sub, err := m.Subscribe(ctx, snap.ID)
	require.NoError(t, err)

	require.NoError(t, m.Delete(ctx, snap.ID))
	ev := <-sub.Events()
	assert.Equal(t, fourchessdto.EventClosed, ev.Kind)
	assert.Equal(t, ReasonDeleted, ev.Reason)
	_, ok := <-sub.Events()
	assert.False(t, ok)

	assert.ErrorIs(t, m.Delete(ctx, snap.ID), ErrSessionNotFound)
	_, err = m.Subscribe(ctx, snap.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestList_OrderedByCreation(t *testing.T) {
	ctx := context.Background()
	m, _, clk := newTestManager(t, Options{})
	var ids []string
	for i := 0; i < 3; i++ {
		clk.t = clk.t.Add(time.Second)
		snap, err := m.Create(ctx, "")
		require.NoError(t, err)
		ids = append(ids, snap.ID)
	}
	list, err := m.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	for i, s := range list {
		assert.Equal(t, ids[i], s.ID)
	}
}

func TestSweep_ExpiresIdle(t *testing.T) {
	ctx := context.Background()
	m, _, clk := newTestManager(t, Options{TTL: time.Hour})
	idle, err := m.Create(ctx, "")
	require.NoError(t, err)
	busy, err := m.Create(ctx, "")
	require.NoError(t, err)
	sub, err := m.Subscribe(ctx, idle.ID)
	require.NoError(t, err)

	clk.t = clk.t.Add(50 * time.Minute)
	_, _, err = m.Move(ctx, busy.ID, sq("m7"), sq("k7"))
	require.NoError(t, err)

	assert.Equal(t, 1, m.Sweep(clk.t.Add(20*time.Minute)))
	_, err = m.Get(ctx, idle.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = m.Get(ctx, busy.ID)
	assert.NoError(t, err)

	ev := <-sub.Events()
	assert.Equal(t, ReasonExpired, ev.Reason)
}

func TestRun_StopsOnCancel(t *testing.T) {
	m, _, _ := newTestManager(t, Options{TTL: time.Hour, SweepInterval: time.Millisecond})
	snap, err := m.Create(context.Background(), "")
	require.NoError(t, err)
	sub, err := m.Subscribe(context.Background(), snap.ID)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx) }()
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return")
	}
	ev := <-sub.Events()
	assert.Equal(t, ReasonShutdown, ev.Reason)
}

func TestCanceledContext(t *testing.T) {
	m, _, _ := newTestManager(t, Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := m.Create(ctx, "")
	assert.ErrorIs(t, err, context.Canceled)
}
