// Package game keeps live four-player sessions in memory and serializes access to each one.
package game

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/KylerCondran/4PlayerChess/internal/board"
	"github.com/KylerCondran/4PlayerChess/internal/events"
	"github.com/KylerCondran/4PlayerChess/internal/fourchess"
	"github.com/KylerCondran/4PlayerChess/internal/layout"
	"github.com/KylerCondran/4PlayerChess/internal/obslog"
)

var (
	ErrTooManySessions = errors.New("too many sessions")
	ErrSessionNotFound = errors.New("session not found")
	ErrUnknownLayout   = layout.ErrUnknown
)

// Close reasons carried on the final feed event.
const (
	ReasonDeleted  = "deleted"
	ReasonExpired  = "expired"
	ReasonShutdown = "shutdown"
)

type Options struct {
	MaxSessions   int
	TTL           time.Duration
	SweepInterval time.Duration
	DefaultLayout string
}

type Manager struct {
	mu      sync.RWMutex
	games   map[string]*entry
	layouts *layout.Catalog
	hub     *events.Hub
	events  *events.Builder
	opts    Options
	now     func() time.Time
}

// entry guards one session. Manager.mu is never acquired while an entry lock is held.
type entry struct {
	mu      sync.Mutex
	id      string
	layout  string
	s       *fourchess.Session
	created time.Time
	updated time.Time
}

// Snapshot is a point-in-time copy of a session; its Session is a private clone.
type Snapshot struct {
	ID        string
	Layout    string
	Session   *fourchess.Session
	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewManager(layouts *layout.Catalog, hub *events.Hub, builder *events.Builder, opts Options) *Manager {
	if opts.DefaultLayout == "" {
		opts.DefaultLayout = layout.DefaultName
	}
	if builder == nil {
		builder = events.NewBuilder(nil)
	}
	return &Manager{
		games:   make(map[string]*entry),
		layouts: layouts,
		hub:     hub,
		events:  builder,
		opts:    opts,
		now:     time.Now,
	}
}

func (e *entry) snapshot() Snapshot {
	return Snapshot{ID: e.id, Layout: e.layout, Session: e.s.Clone(), CreatedAt: e.created, UpdatedAt: e.updated}
}

// Create starts a session from the named layout, or the default layout when name is blank.
func (m *Manager) Create(ctx context.Context, layoutName string) (Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return Snapshot{}, err
	}
	name := strings.TrimSpace(layoutName)
	if name == "" {
		name = m.opts.DefaultLayout
	}
	l, err := m.layouts.Get(name)
	if err != nil {
		return Snapshot{}, err
	}
	s, err := l.NewSession()
	if err != nil {
		return Snapshot{}, fmt.Errorf("layout %s: %w", name, err)
	}

	now := m.now()
	e := &entry{id: uuid.NewString(), layout: l.Name, s: s, created: now, updated: now}

	m.mu.Lock()
	if m.opts.MaxSessions > 0 && len(m.games) >= m.opts.MaxSessions {
		m.mu.Unlock()
		obslog.L().Warn("session_create_rejected", zap.Int("max_sessions", m.opts.MaxSessions))
		return Snapshot{}, ErrTooManySessions
	}
	m.games[e.id] = e
	total := len(m.games)
	m.mu.Unlock()

	obslog.L().Info("session_create", obslog.FieldSession(e.id), obslog.FieldLayout(e.layout), zap.Int("sessions", total))
	return e.snapshot(), nil
}

func (m *Manager) lookup(id string) (*entry, error) {
	m.mu.RLock()
	e, ok := m.games[strings.TrimSpace(id)]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return e, nil
}

func (m *Manager) Get(ctx context.Context, id string) (Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return Snapshot{}, err
	}
	e, err := m.lookup(id)
	if err != nil {
		return Snapshot{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshot(), nil
}

// Legal lists the destinations of the piece on from. Reading does not refresh the idle timer.
func (m *Manager) Legal(ctx context.Context, id string, from board.Coord) ([]board.Coord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e, err := m.lookup(id)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.s.LegalDestinations(from)
}

// Move applies from-to for whichever color is on turn and publishes the resulting events.
func (m *Manager) Move(ctx context.Context, id string, from, to board.Coord) (fourchess.MoveOutcome, Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return fourchess.MoveOutcome{}, Snapshot{}, err
	}
	e, err := m.lookup(id)
	if err != nil {
		return fourchess.MoveOutcome{}, Snapshot{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	out, err := e.s.ApplyMove(from, to)
	if err != nil {
		obslog.L().Info("session_move_rejected", obslog.FieldSession(e.id), obslog.FieldMove(from, to), zap.Error(err))
		return fourchess.MoveOutcome{}, Snapshot{}, err
	}
	e.updated = m.now()

	fields := []zap.Field{obslog.FieldSession(e.id), obslog.FieldColor(out.Mover), obslog.FieldMove(from, to), zap.Int("ply", e.s.Ply())}
	if out.Captured != nil {
		fields = append(fields, zap.Stringer("captured", out.Captured), zap.Bool("en_passant", out.EnPassant))
	}
	if out.Promoted {
		fields = append(fields, zap.Bool("promoted", true))
	}
	obslog.L().Info("session_move", fields...)

	m.hub.Publish(m.events.Move(e.id, out, e.s)...)
	return out, e.snapshot(), nil
}

// Resign withdraws color c. Repeating it is a no-op that publishes nothing.
func (m *Manager) Resign(ctx context.Context, id string, c fourchess.Color) (fourchess.ResignOutcome, Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return fourchess.ResignOutcome{}, Snapshot{}, err
	}
	e, err := m.lookup(id)
	if err != nil {
		return fourchess.ResignOutcome{}, Snapshot{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	out, err := e.s.Resign(c)
	if err != nil {
		return fourchess.ResignOutcome{}, Snapshot{}, err
	}
	if !out.AlreadyResigned {
		e.updated = m.now()
		obslog.L().Info("session_resign", obslog.FieldSession(e.id), obslog.FieldColor(c), zap.Bool("turn_advanced", out.TurnAdvanced))
		if out.GameOver {
			fields := []zap.Field{obslog.FieldSession(e.id)}
			if out.HasWinner {
				fields = append(fields, zap.Stringer("winner", out.Winner))
			}
			obslog.L().Info("session_game_over", fields...)
		}
	}
	m.hub.Publish(m.events.Resign(e.id, out, e.s)...)
	return out, e.snapshot(), nil
}

// Delete drops the session and closes its feed.
func (m *Manager) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	id = strings.TrimSpace(id)
	m.mu.Lock()
	_, ok := m.games[id]
	delete(m.games, id)
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	obslog.L().Info("session_delete", obslog.FieldSession(id))
	m.hub.CloseTopic(id, ReasonDeleted, m.events.Closed(ReasonDeleted))
	return nil
}

// List returns snapshots ordered by creation time, oldest first.
func (m *Manager) List(ctx context.Context) ([]Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	entries := make([]*entry, 0, len(m.games))
	for _, e := range m.games {
		entries = append(entries, e)
	}
	m.mu.RUnlock()

	out := make([]Snapshot, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		out = append(out, e.snapshot())
		e.mu.Unlock()
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// Subscribe attaches to the event feed of an existing session.
func (m *Manager) Subscribe(ctx context.Context, id string) (*events.Subscription, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	id = strings.TrimSpace(id)
	// Hold the registry lock so a concurrent Delete cannot slip between the check and the subscribe.
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.games[id]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return m.hub.Subscribe(id), nil
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.games)
}
