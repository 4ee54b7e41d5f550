// Package httpapi serves the JSON board API over fasthttp.
package httpapi

import (
	"context"
	"encoding/json"
	"net"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/KylerCondran/4PlayerChess/internal/game"
	"github.com/KylerCondran/4PlayerChess/internal/layout"
	"github.com/KylerCondran/4PlayerChess/internal/msgcat"
	"github.com/KylerCondran/4PlayerChess/internal/obslog"
)

const (
	maxBodyBytes = 1 << 16
	apiCSP       = "default-src 'none'; frame-ancestors 'none'; base-uri 'none'"
)

type Server struct {
	mgr           *game.Manager
	layouts       *layout.Catalog
	cat           *msgcat.Catalog
	defaultLayout string
	srv           *fasthttp.Server
}

func NewServer(mgr *game.Manager, layouts *layout.Catalog, cat *msgcat.Catalog, defaultLayout string) *Server {
	s := &Server{mgr: mgr, layouts: layouts, cat: cat, defaultLayout: defaultLayout}
	s.srv = &fasthttp.Server{
		Handler:            s.Handler(),
		Name:               "fourchess",
		ReadTimeout:        10 * time.Second,
		WriteTimeout:       10 * time.Second,
		IdleTimeout:        60 * time.Second,
		MaxRequestBodySize: maxBodyBytes,
	}
	return s
}

// ListenAndServe blocks until Shutdown is called or the listener fails.
func (s *Server) ListenAndServe(addr string) error {
	obslog.L().Info("http_listen", zap.String("addr", addr))
	return s.srv.ListenAndServe(addr)
}

// Serve is ListenAndServe on an existing listener.
func (s *Server) Serve(ln net.Listener) error { return s.srv.Serve(ln) }

func (s *Server) Shutdown(ctx context.Context) error { return s.srv.ShutdownWithContext(ctx) }

// Handler routes requests. Paths are matched segment by segment:
//
//	/healthz
//	/layouts
//	/games
//	/games/{id}
//	/games/{id}/legal
//	/games/{id}/moves
//	/games/{id}/resign
func (s *Server) Handler() fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		ctx.Response.Header.Set("Content-Security-Policy", apiCSP)
		ctx.Response.Header.Set("Cache-Control", "no-store")

		parts := strings.Split(strings.Trim(string(ctx.Path()), "/"), "/")
		switch {
		case len(parts) == 1 && parts[0] == "healthz":
			s.only(ctx, fasthttp.MethodGet, s.handleHealth)
		case len(parts) == 1 && parts[0] == "layouts":
			s.only(ctx, fasthttp.MethodGet, s.handleLayouts)
		case len(parts) == 1 && parts[0] == "games":
			switch string(ctx.Method()) {
			case fasthttp.MethodGet:
				s.handleList(ctx)
			case fasthttp.MethodPost:
				s.handleCreate(ctx)
			default:
				s.methodNotAllowed(ctx)
			}
		case len(parts) == 2 && parts[0] == "games":
			id := parts[1]
			switch string(ctx.Method()) {
			case fasthttp.MethodGet:
				s.handleGet(ctx, id)
			case fasthttp.MethodDelete:
				s.handleDelete(ctx, id)
			default:
				s.methodNotAllowed(ctx)
			}
		case len(parts) == 3 && parts[0] == "games":
			id := parts[1]
			switch parts[2] {
			case "legal":
				s.only(ctx, fasthttp.MethodGet, func(ctx *fasthttp.RequestCtx) { s.handleLegal(ctx, id) })
			case "moves":
				s.only(ctx, fasthttp.MethodPost, func(ctx *fasthttp.RequestCtx) { s.handleMove(ctx, id) })
			case "resign":
				s.only(ctx, fasthttp.MethodPost, func(ctx *fasthttp.RequestCtx) { s.handleResign(ctx, id) })
			default:
				s.notFound(ctx)
			}
		default:
			s.notFound(ctx)
		}
	}
}

func (s *Server) only(ctx *fasthttp.RequestCtx, method string, h fasthttp.RequestHandler) {
	if string(ctx.Method()) != method {
		s.methodNotAllowed(ctx)
		return
	}
	h(ctx)
}

func writeJSON(ctx *fasthttp.RequestCtx, status int, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		obslog.L().Error("http_encode_error", zap.Error(err))
		ctx.Error(`{"code":"internal","message":"internal error"}`, fasthttp.StatusInternalServerError)
		ctx.SetContentType("application/json; charset=utf-8")
		return
	}
	ctx.SetContentType("application/json; charset=utf-8")
	ctx.SetStatusCode(status)
	ctx.SetBody(b)
}

// decodeBody parses a JSON body. An empty body leaves v untouched when allowEmpty is set.
func decodeBody(ctx *fasthttp.RequestCtx, v any, allowEmpty bool) error {
	body := ctx.PostBody()
	if len(strings.TrimSpace(string(body))) == 0 {
		if allowEmpty {
			return nil
		}
		return errEmptyBody
	}
	if err := json.Unmarshal(body, v); err != nil {
		return &badRequest{detail: "malformed JSON"}
	}
	return nil
}
