package fourchessclient

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/KylerCondran/4PlayerChess/pkg/fourchessdto"
)

type FeedState int

const (
	FeedDisconnected FeedState = iota
	FeedConnecting
	FeedConnected
	FeedReconnecting
	FeedClosed // the server ended the session feed
	FeedFailed
)

func (s FeedState) String() string {
	switch s {
	case FeedDisconnected:
		return "disconnected"
	case FeedConnecting:
		return "connecting"
	case FeedConnected:
		return "connected"
	case FeedReconnecting:
		return "reconnecting"
	case FeedClosed:
		return "closed"
	case FeedFailed:
		return "failed"
	}
	return "unknown"
}

type EventCallback func(ev *fourchessdto.Event)

type StateCallback func(state FeedState)

type callbackEntry struct {
	id       int
	callback EventCallback
}

type stateCallbackEntry struct {
	id       int
	callback StateCallback
}

// Feed follows one session's event stream and fans events out to callbacks.
// Dropped connections are redialed with backoff; a closed event from the server ends the feed.
type Feed struct {
	url string

	connM sync.Mutex
	conn  *websocket.Conn

	state  FeedState
	stateM sync.RWMutex

	cbM      sync.RWMutex
	nextCbID int
	evCbs    []callbackEntry
	stateCbs []stateCallbackEntry

	maxReconnectAttempts int
	lastSeq              uint64

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	headerProvider HeaderProvider
}

// NewFeed targets ws://host/games/{id}/events; wsBase is the websocket listener's base URL.
func NewFeed(wsBase, sessionID string, maxReconnectAttempts int) *Feed {
	return &Feed{
		url:                  strings.TrimRight(wsBase, "/") + gamePath(sessionID) + "/events",
		state:                FeedDisconnected,
		maxReconnectAttempts: maxReconnectAttempts,
		stopCh:               make(chan struct{}),
	}
}

func (f *Feed) SetHeaderProvider(h HeaderProvider) { f.headerProvider = h }

// Connect dials once and starts the reader. It returns the dial error if the first attempt fails.
func (f *Feed) Connect(ctx context.Context) error {
	switch f.State() {
	case FeedConnected, FeedConnecting:
		return nil
	}
	f.setState(FeedConnecting)
	conn, err := f.dial(ctx)
	if err != nil {
		f.setState(FeedFailed)
		return err
	}
	f.attach(conn)
	return nil
}

func (f *Feed) dial(ctx context.Context) (*websocket.Conn, error) {
	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	conn, _, err := websocket.Dial(dialCtx, f.url, &websocket.DialOptions{
		CompressionMode: websocket.CompressionNoContextTakeover,
		HTTPHeader:      f.buildHeaders(),
	})
	return conn, err
}

func (f *Feed) attach(conn *websocket.Conn) {
	f.connM.Lock()
	f.conn = conn
	f.connM.Unlock()
	f.setState(FeedConnected)
	f.wg.Add(1)
	go f.listen(conn)
}

func (f *Feed) listen(conn *websocket.Conn) {
	defer f.wg.Done()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-f.stopCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	for {
		var ev fourchessdto.Event
		if err := wsjson.Read(ctx, conn, &ev); err != nil {
			f.detach(conn)
			if f.isStopping() {
				return
			}
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure {
				f.setState(FeedClosed)
				return
			}
			f.setState(FeedDisconnected)
			f.reconnect()
			return
		}
		// skip anything already delivered
		if ev.Seq != 0 && ev.Seq <= f.lastSeq {
			continue
		}
		f.lastSeq = ev.Seq
		f.dispatch(&ev)
		if ev.Kind == fourchessdto.EventClosed {
			f.detach(conn)
			_ = conn.Close(websocket.StatusNormalClosure, "")
			f.setState(FeedClosed)
			return
		}
	}
}

func (f *Feed) dispatch(ev *fourchessdto.Event) {
	f.cbM.RLock()
	callbacks := make([]callbackEntry, len(f.evCbs))
	copy(callbacks, f.evCbs)
	f.cbM.RUnlock()
	for _, entry := range callbacks {
		entry.callback(ev)
	}
}

func (f *Feed) reconnect() {
	if f.maxReconnectAttempts <= 0 {
		f.setState(FeedFailed)
		return
	}
	f.setState(FeedReconnecting)
	for attempt := 1; attempt <= f.maxReconnectAttempts; attempt++ {
		select {
		case <-f.stopCh:
			return
		case <-time.After(backoffDuration(attempt)):
		}
		conn, err := f.dial(context.Background())
		if err != nil {
			continue
		}
		f.attach(conn)
		return
	}
	f.setState(FeedFailed)
}

func (f *Feed) detach(conn *websocket.Conn) {
	f.connM.Lock()
	if f.conn == conn {
		f.conn = nil
	}
	f.connM.Unlock()
}

func (f *Feed) OnEvent(cb EventCallback) int {
	f.cbM.Lock()
	defer f.cbM.Unlock()
	f.nextCbID++
	f.evCbs = append(f.evCbs, callbackEntry{id: f.nextCbID, callback: cb})
	return f.nextCbID
}

func (f *Feed) RemoveEventCallback(id int) {
	f.cbM.Lock()
	defer f.cbM.Unlock()
	for i, cb := range f.evCbs {
		if cb.id == id {
			f.evCbs = append(f.evCbs[:i], f.evCbs[i+1:]...)
			break
		}
	}
}

func (f *Feed) OnStateChange(cb StateCallback) int {
	f.cbM.Lock()
	defer f.cbM.Unlock()
	f.nextCbID++
	f.stateCbs = append(f.stateCbs, stateCallbackEntry{id: f.nextCbID, callback: cb})
	return f.nextCbID
}

func (f *Feed) RemoveStateCallback(id int) {
	f.cbM.Lock()
	defer f.cbM.Unlock()
	for i, cb := range f.stateCbs {
		if cb.id == id {
			f.stateCbs = append(f.stateCbs[:i], f.stateCbs[i+1:]...)
			break
		}
	}
}

func (f *Feed) State() FeedState {
	f.stateM.RLock()
	defer f.stateM.RUnlock()
	return f.state
}

func (f *Feed) setState(state FeedState) {
	f.stateM.Lock()
	f.state = state
	f.stateM.Unlock()

	f.cbM.RLock()
	callbacks := make([]stateCallbackEntry, len(f.stateCbs))
	copy(callbacks, f.stateCbs)
	f.cbM.RUnlock()
	for _, entry := range callbacks {
		entry.callback(state)
	}
}

// Close stops the reader and any pending reconnect, waiting until ctx ends at the latest.
func (f *Feed) Close(ctx context.Context) error {
	f.stopOnce.Do(func() { close(f.stopCh) })
	f.connM.Lock()
	conn := f.conn
	f.conn = nil
	f.connM.Unlock()
	if conn != nil {
		_ = conn.Close(websocket.StatusNormalClosure, "close")
	}

	done := make(chan struct{})
	go func() {
		f.wg.Wait()
		close(done)
	}()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

func (f *Feed) isStopping() bool {
	select {
	case <-f.stopCh:
		return true
	default:
		return false
	}
}

func (f *Feed) buildHeaders() http.Header {
	hdr := http.Header{}
	if f.headerProvider == nil {
		return hdr
	}
	for k, v := range f.headerProvider() {
		if strings.TrimSpace(k) == "" || strings.TrimSpace(v) == "" {
			continue
		}
		hdr.Set(k, v)
	}
	return hdr
}

// ErrFeedClosed is returned by Wait when the feed ended without the wanted event.
var ErrFeedClosed = errors.New("feed closed")

// Wait blocks until an event of the given kind arrives. Only events
// dispatched after the call are considered; use Expect to avoid racing an
// action that triggers the event.
func (f *Feed) Wait(ctx context.Context, kind string) (*fourchessdto.Event, error) {
	return f.Expect(kind)(ctx)
}

// Expect starts listening for kind right away and returns a function that
// waits for it. The returned function must be called exactly once.
func (f *Feed) Expect(kind string) func(ctx context.Context) (*fourchessdto.Event, error) {
	got := make(chan *fourchessdto.Event, 1)
	ended := make(chan struct{}, 1)
	evID := f.OnEvent(func(ev *fourchessdto.Event) {
		if ev.Kind == kind {
			select {
			case got <- ev:
			default:
			}
		}
	})
	stID := f.OnStateChange(func(s FeedState) {
		if s == FeedClosed || s == FeedFailed {
			select {
			case ended <- struct{}{}:
			default:
			}
		}
	})

	return func(ctx context.Context) (*fourchessdto.Event, error) {
		defer f.RemoveEventCallback(evID)
		defer f.RemoveStateCallback(stID)
		select {
		case ev := <-got:
			return ev, nil
		default:
		}
		switch f.State() {
		case FeedClosed, FeedFailed:
			return nil, ErrFeedClosed
		}
		select {
		case ev := <-got:
			return ev, nil
		case <-ended:
			select {
			case ev := <-got:
				return ev, nil
			default:
				return nil, ErrFeedClosed
			}
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}
