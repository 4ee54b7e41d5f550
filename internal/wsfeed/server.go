// Package wsfeed streams session events to websocket clients.
package wsfeed

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/KylerCondran/4PlayerChess/internal/events"
	"github.com/KylerCondran/4PlayerChess/internal/game"
	"github.com/KylerCondran/4PlayerChess/internal/obslog"
	"github.com/KylerCondran/4PlayerChess/pkg/fourchessdto"
)

// Subscriber is the part of game.Manager the feed needs.
type Subscriber interface {
	Subscribe(ctx context.Context, id string) (*events.Subscription, error)
}

type Server struct {
	subs         Subscriber
	pingInterval time.Duration
	writeTimeout time.Duration
	origins      []string

	mu  sync.Mutex
	srv *http.Server
}

type Option func(*Server)

func WithPingInterval(d time.Duration) Option { return func(s *Server) { s.pingInterval = d } }

// WithOriginPatterns allows cross-origin browsers matching the patterns (see websocket.AcceptOptions).
func WithOriginPatterns(p ...string) Option { return func(s *Server) { s.origins = p } }

func NewServer(subs Subscriber, opts ...Option) *Server {
	s := &Server{subs: subs, pingInterval: 30 * time.Second, writeTimeout: 5 * time.Second}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /games/{id}/events", s.handleEvents)
	return mux
}

func (s *Server) ListenAndServe(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		MaxHeaderBytes:    1 << 16,
	}
	s.mu.Lock()
	s.srv = srv
	s.mu.Unlock()
	obslog.L().Info("ws_listen", zap.String("addr", addr))
	err := srv.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.srv
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	sub, err := s.subs.Subscribe(r.Context(), id)
	if err != nil {
		status, code := http.StatusInternalServerError, fourchessdto.CodeInternal
		if errors.Is(err, game.ErrSessionNotFound) {
			status, code = http.StatusNotFound, fourchessdto.CodeNotFound
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(fourchessdto.Error{Code: code, Message: err.Error()})
		return
	}
	defer sub.Unsubscribe()

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns:  s.origins,
		CompressionMode: websocket.CompressionNoContextTakeover,
	})
	if err != nil {
		obslog.L().Warn("ws_accept_error", obslog.FieldSession(id), zap.Error(err))
		return
	}
	defer conn.CloseNow()
	obslog.L().Info("ws_subscribe", obslog.FieldSession(id), zap.String("remote", r.RemoteAddr))

	// Clients never send anything; CloseRead keeps control frames flowing and
	// cancels ctx once the peer goes away.
	ctx := conn.CloseRead(r.Context())
	reason := s.stream(ctx, conn, sub)
	obslog.L().Info("ws_unsubscribe", obslog.FieldSession(id), zap.String("reason", reason), zap.Uint64("dropped", sub.Dropped()))
}

// stream forwards events until the client leaves or the session closes, and says why it stopped.
func (s *Server) stream(ctx context.Context, conn *websocket.Conn, sub *events.Subscription) string {
	ping := time.NewTicker(s.pingInterval)
	defer ping.Stop()
	failures := 0
	for {
		select {
		case <-ctx.Done():
			return "client_gone"
		case ev, ok := <-sub.Events():
			if !ok {
				_ = conn.Close(websocket.StatusNormalClosure, "session closed")
				return "topic_closed"
			}
			wctx, cancel := context.WithTimeout(ctx, s.writeTimeout)
			err := wsjson.Write(wctx, conn, ev)
			cancel()
			if err != nil {
				return "write_error"
			}
			if ev.Kind == fourchessdto.EventClosed {
				_ = conn.Close(websocket.StatusNormalClosure, ev.Reason)
				return ev.Reason
			}
		case <-ping.C:
			pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
			err := conn.Ping(pctx)
			cancel()
			if err == nil {
				failures = 0
				continue
			}
			if failures++; failures >= 2 {
				_ = conn.Close(websocket.StatusGoingAway, "ping failure")
				return "ping_failure"
			}
		}
	}
}
