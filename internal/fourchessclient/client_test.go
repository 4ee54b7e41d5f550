package fourchessclient

import (
	"context"
	"net"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"

	"github.com/KylerCondran/4PlayerChess/internal/events"
	"github.com/KylerCondran/4PlayerChess/internal/game"
	"github.com/KylerCondran/4PlayerChess/internal/httpapi"
	"github.com/KylerCondran/4PlayerChess/internal/layout"
	"github.com/KylerCondran/4PlayerChess/internal/msgcat"
	"github.com/KylerCondran/4PlayerChess/internal/wsfeed"
	"github.com/KylerCondran/4PlayerChess/pkg/fourchessdto"
)

type stack struct {
	client *Client
	wsBase string
	hub    *events.Hub
}

func newStack(t *testing.T) *stack {
	t.Helper()
	layouts, err := layout.Load("")
	require.NoError(t, err)
	cat, err := msgcat.New("")
	require.NoError(t, err)
	hub := events.NewHub(32)
	mgr := game.NewManager(layouts, hub, events.NewBuilder(cat), game.Options{})

	ln := fasthttputil.NewInmemoryListener()
	go func() { _ = httpapi.NewServer(mgr, layouts, cat, "classic").Serve(ln) }()
	t.Cleanup(func() { _ = ln.Close() })

	ws := httptest.NewServer(wsfeed.NewServer(mgr).Handler())
	t.Cleanup(ws.Close)

	c := NewClient("http://fourchess.test", WithDial(func(string) (net.Conn, error) { return ln.Dial() }))
	return &stack{client: c, wsBase: "ws" + strings.TrimPrefix(ws.URL, "http"), hub: hub}
}

func TestClient_GameRoundTrip(t *testing.T) {
	st := newStack(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, st.client.Health(ctx))
	ll, err := st.client.Layouts(ctx)
	require.NoError(t, err)
	assert.Contains(t, ll.Layouts, "classic")

	g, err := st.client.Create(ctx, "")
	require.NoError(t, err)
	dests, err := st.client.Legal(ctx, g.ID, "m4")
	require.NoError(t, err)
	assert.Equal(t, []string{"k4", "l4"}, dests)

	mv, err := st.client.Move(ctx, g.ID, "m4", "k4")
	require.NoError(t, err)
	assert.Equal(t, "blue", mv.State.Turn)

	_, err = st.client.Move(ctx, g.ID, "k4", "j4")
	assert.Equal(t, fourchessdto.CodeIllegalMove, Code(err))

	rr, err := st.client.Resign(ctx, g.ID, "blue")
	require.NoError(t, err)
	assert.Equal(t, "yellow", rr.State.Turn)

	list, err := st.client.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, st.client.Delete(ctx, g.ID))
	_, err = st.client.Get(ctx, g.ID)
	var ae *APIError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, fasthttp.StatusNotFound, ae.Status)
}

func TestClient_RetriesServerErrors(t *testing.T) {
	ln := fasthttputil.NewInmemoryListener()
	t.Cleanup(func() { _ = ln.Close() })
	var calls atomic.Int32
	go func() {
		_ = fasthttp.Serve(ln, func(ctx *fasthttp.RequestCtx) {
			if calls.Add(1) < 3 {
				ctx.SetStatusCode(fasthttp.StatusServiceUnavailable)
				return
			}
			ctx.SetContentType("application/json")
			ctx.SetBodyString(`{"status":"ok"}`)
		})
	}()

	c := NewClient("http://fourchess.test", WithRetry(3), WithDial(func(string) (net.Conn, error) { return ln.Dial() }))
	require.NoError(t, c.Health(context.Background()))
	assert.Equal(t, int32(3), calls.Load())

	calls.Store(0)
	_, err := c.Create(context.Background(), "")
	var ae *APIError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, fasthttp.StatusServiceUnavailable, ae.Status)
	assert.Equal(t, int32(1), calls.Load(), "create is not retried")
}

func TestFeed_FollowsGame(t *testing.T) {
	st := newStack(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	g, err := st.client.Create(ctx, "")
	require.NoError(t, err)

	feed := NewFeed(st.wsBase, g.ID, 0)
	var seen []string
	done := make(chan struct{})
	feed.OnEvent(func(ev *fourchessdto.Event) {
		seen = append(seen, ev.Kind)
		if ev.Kind == fourchessdto.EventClosed {
			close(done)
		}
	})
	require.NoError(t, feed.Connect(ctx))
	require.Eventually(t, func() bool { return st.hub.Subscribers(g.ID) > 0 }, 2*time.Second, 5*time.Millisecond)

	waitTurn := feed.Expect(fourchessdto.EventTurn)
	_, err = st.client.Move(ctx, g.ID, "m7", "k7")
	require.NoError(t, err)
	ev, err := waitTurn(ctx)
	require.NoError(t, err)
	assert.Equal(t, "blue", ev.Color)

	require.NoError(t, st.client.Delete(ctx, g.ID))
	select {
	case <-done:
	case <-ctx.Done():
		t.Fatal("feed did not see the closed event")
	}
	require.Eventually(t, func() bool { return feed.State() == FeedClosed }, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"moved", "turn", "closed"}, seen)
	require.NoError(t, feed.Close(ctx))

	_, err = feed.Wait(ctx, fourchessdto.EventTurn)
	assert.ErrorIs(t, err, ErrFeedClosed)
}

func TestBackoff(t *testing.T) {
	assert.Equal(t, 100*time.Millisecond, backoffDuration(0))
	assert.Equal(t, 400*time.Millisecond, backoffDuration(3))
	assert.Equal(t, backoffDuration(6), backoffDuration(60))
}
