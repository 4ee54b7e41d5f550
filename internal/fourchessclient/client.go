// Package fourchessclient talks to a running fourchess server over HTTP and websocket.
package fourchessclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/KylerCondran/4PlayerChess/pkg/fourchessdto"
)

// HeaderProvider injects per-request headers.
type HeaderProvider func() map[string]string

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status int
	Body   fourchessdto.Error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("fourchess api error: status=%d code=%s message=%s", e.Status, e.Body.Code, e.Body.Message)
}

// Code returns the server error code of err, or "" when err is not an APIError.
func Code(err error) string {
	var ae *APIError
	if errors.As(err, &ae) {
		return ae.Body.Code
	}
	return ""
}

type Client struct {
	baseURL string
	http    *fasthttp.Client
	headers HeaderProvider

	defaultTimeout time.Duration
	retryMax       int
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.defaultTimeout = d }
}

func WithMaxConnsPerHost(n int) Option {
	return func(c *Client) { c.http.MaxConnsPerHost = n }
}

func WithHeaderProvider(h HeaderProvider) Option {
	return func(c *Client) { c.headers = h }
}

func WithRetry(max int) Option {
	return func(c *Client) { c.retryMax = max }
}

// WithDial replaces the TCP dialer, e.g. with an in-memory listener in tests.
func WithDial(dial func(addr string) (net.Conn, error)) Option {
	return func(c *Client) { c.http.Dial = dial }
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		http:           &fasthttp.Client{ReadTimeout: 10 * time.Second, WriteTimeout: 10 * time.Second, MaxConnsPerHost: 64},
		defaultTimeout: 10 * time.Second,
		retryMax:       3,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Health(ctx context.Context) error {
	return c.doJSON(ctx, fasthttp.MethodGet, "/healthz", nil, nil, true)
}

func (c *Client) Layouts(ctx context.Context) (*fourchessdto.LayoutList, error) {
	var out fourchessdto.LayoutList
	if err := c.doJSON(ctx, fasthttp.MethodGet, "/layouts", nil, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

// Create starts a game. An empty layout uses the server default. Creation is not retried.
func (c *Client) Create(ctx context.Context, layout string) (*fourchessdto.GameState, error) {
	var out fourchessdto.GameState
	if err := c.doJSON(ctx, fasthttp.MethodPost, "/games", fourchessdto.CreateRequest{Layout: layout}, &out, false); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) List(ctx context.Context) ([]fourchessdto.GameSummary, error) {
	var out fourchessdto.GameList
	if err := c.doJSON(ctx, fasthttp.MethodGet, "/games", nil, &out, true); err != nil {
		return nil, err
	}
	return out.Games, nil
}

func (c *Client) Get(ctx context.Context, id string) (*fourchessdto.GameState, error) {
	var out fourchessdto.GameState
	if err := c.doJSON(ctx, fasthttp.MethodGet, gamePath(id), nil, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Delete(ctx context.Context, id string) error {
	return c.doJSON(ctx, fasthttp.MethodDelete, gamePath(id), nil, nil, true)
}

func (c *Client) Legal(ctx context.Context, id, from string) ([]string, error) {
	var out fourchessdto.LegalResponse
	path := gamePath(id) + "/legal?from=" + url.QueryEscape(from)
	if err := c.doJSON(ctx, fasthttp.MethodGet, path, nil, &out, true); err != nil {
		return nil, err
	}
	return out.Destinations, nil
}

// Move is never retried: a lost response may hide an applied move.
func (c *Client) Move(ctx context.Context, id, from, to string) (*fourchessdto.MoveResponse, error) {
	var out fourchessdto.MoveResponse
	if err := c.doJSON(ctx, fasthttp.MethodPost, gamePath(id)+"/moves", fourchessdto.MoveRequest{From: from, To: to}, &out, false); err != nil {
		return nil, err
	}
	return &out, nil
}

// Resign is idempotent on the server, so it is retried.
func (c *Client) Resign(ctx context.Context, id, color string) (*fourchessdto.ResignResponse, error) {
	var out fourchessdto.ResignResponse
	if err := c.doJSON(ctx, fasthttp.MethodPost, gamePath(id)+"/resign", fourchessdto.ResignRequest{Color: color}, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

func gamePath(id string) string { return "/games/" + url.PathEscape(strings.TrimSpace(id)) }

func (c *Client) doJSON(ctx context.Context, method, path string, in any, out any, retry bool) error {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer func() {
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
	}()

	req.Header.SetMethod(method)
	req.SetRequestURI(c.baseURL + path)
	req.Header.SetContentType("application/json")
	if c.headers != nil {
		for k, v := range c.headers() {
			if strings.TrimSpace(k) != "" && strings.TrimSpace(v) != "" {
				req.Header.Set(k, v)
			}
		}
	}
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		req.SetBody(payload)
	}

	attempts := 1
	if retry && c.retryMax > 1 {
		attempts = c.retryMax
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := c.http.DoDeadline(req, resp, c.computeDeadline(ctx)); err != nil {
			lastErr = fmt.Errorf("request failed: %w", err)
			if attempt == attempts {
				return lastErr
			}
			if sleepErr := sleepWithContext(ctx, backoffDuration(attempt)); sleepErr != nil {
				return lastErr
			}
			continue
		}

		status := resp.StatusCode()
		if status < 200 || status >= 300 {
			apiErr := &APIError{Status: status}
			if jerr := json.Unmarshal(resp.Body(), &apiErr.Body); jerr != nil {
				apiErr.Body.Message = truncate(string(resp.Body()), 512)
			}
			if attempt == attempts || !shouldRetryStatus(status) {
				return apiErr
			}
			lastErr = apiErr
			if sleepErr := sleepWithContext(ctx, backoffDuration(attempt)); sleepErr != nil {
				return lastErr
			}
			continue
		}

		if out != nil && len(resp.Body()) > 0 {
			if err := json.Unmarshal(resp.Body(), out); err != nil {
				return fmt.Errorf("decode response: %w", err)
			}
		}
		return nil
	}
	if lastErr == nil {
		lastErr = errors.New("unknown error")
	}
	return lastErr
}

func (c *Client) computeDeadline(ctx context.Context) time.Time {
	clientDL := time.Now().Add(c.defaultTimeout)
	if dl, ok := ctx.Deadline(); ok && dl.Before(clientDL) {
		return dl
	}
	return clientDL
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func backoffDuration(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if attempt > 6 {
		attempt = 6
	}
	return time.Duration(1<<uint(attempt-1)) * 100 * time.Millisecond // 100ms, 200ms ...
}

func shouldRetryStatus(code int) bool {
	switch code {
	case 500, 502, 503, 504:
		return true
	default:
		return false
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
