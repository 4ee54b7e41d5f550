package game

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/KylerCondran/4PlayerChess/internal/obslog"
)

// Sweep removes sessions idle since before now-TTL and returns how many were dropped.
func (m *Manager) Sweep(now time.Time) int {
	if m.opts.TTL <= 0 {
		return 0
	}
	cutoff := now.Add(-m.opts.TTL)

	m.mu.RLock()
	var all []*entry
	for _, e := range m.games {
		all = append(all, e)
	}
	m.mu.RUnlock()

	expired := 0
	for _, e := range all {
		e.mu.Lock()
		idle := e.updated.Before(cutoff)
		updated := e.updated
		e.mu.Unlock()
		if !idle {
			continue
		}
		m.mu.Lock()
		cur, ok := m.games[e.id]
		if ok && cur == e {
			delete(m.games, e.id)
		}
		m.mu.Unlock()
		if !ok || cur != e {
			continue
		}
		expired++
		obslog.L().Info("session_expire", obslog.FieldSession(e.id), zap.Time("updated_at", updated))
		m.hub.CloseTopic(e.id, ReasonExpired, m.events.Closed(ReasonExpired))
	}
	return expired
}

// Run sweeps idle sessions every SweepInterval until ctx ends, then closes every feed.
func (m *Manager) Run(ctx context.Context) error {
	interval := m.opts.SweepInterval
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			m.closeAll()
			return nil
		case <-ticker.C:
			if n := m.Sweep(m.now()); n > 0 {
				obslog.L().Info("session_sweep", zap.Int("expired", n), zap.Int("remaining", m.Len()))
			}
		}
	}
}

func (m *Manager) closeAll() {
	m.mu.Lock()
	ids := make([]string, 0, len(m.games))
	for id := range m.games {
		ids = append(ids, id)
	}
	m.mu.Unlock()
	for _, id := range ids {
		m.hub.CloseTopic(id, ReasonShutdown, m.events.Closed(ReasonShutdown))
	}
}
