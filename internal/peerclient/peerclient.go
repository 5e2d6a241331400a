// Package peerclient is the HTTP implementation of node.PeerTransport: it
// issues the GET/PATCH/POST calls of the peer wire protocol (SPEC_FULL.md
// §6) against another ring member and decodes its response.
//
// Per SPEC_FULL.md §9, this package never calls node.State.HandleFailure
// itself — it only returns errors. Deciding when an RPC failure warrants
// ring repair is the caller's job (the stabilize loop, the client-facing
// Insert/Contains paths, or the GET /successor/{id} handler).
package peerclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"ChordRing/internal/fingertable"
	"ChordRing/internal/logger"
	"ChordRing/internal/ring"
)

// Client is the shared HTTP transport used for every outbound peer call.
type Client struct {
	httpClient      *http.Client
	space           ring.Space
	reqTimeout      time.Duration
	livenessTimeout time.Duration
	logger          logger.Logger
}

// New builds a peer client. reqTimeout bounds every RPC other than the
// liveness probe (SPEC_FULL.md §6's REQ_TIMEOUT); livenessTimeout bounds
// IsAlive (LIVENESS_TIMEOUT). space is needed to turn addresses into
// identifiers for the fingertable.Peer values returned to callers.
func New(space ring.Space, reqTimeout, livenessTimeout time.Duration, opts ...Option) *Client {
	c := &Client{
		space:           space,
		reqTimeout:      reqTimeout,
		livenessTimeout: livenessTimeout,
		logger:          logger.NopLogger{},
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) peerOf(addr string) fingertable.Peer {
	return fingertable.Peer{ID: c.space.HashID(addr), Addr: addr}
}

func (c *Client) url(addr, path string) string {
	return fmt.Sprintf("http://%s%s", addr, path)
}

func (c *Client) do(ctx context.Context, method, addr, path string, form url.Values) ([]byte, error) {
	return c.doWithTimeout(ctx, c.reqTimeout, method, addr, path, form)
}

func (c *Client) doWithTimeout(ctx context.Context, timeout time.Duration, method, addr, path string, form url.Values) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var body io.Reader
	if form != nil {
		body = bytes.NewBufferString(form.Encode())
	}
	req, err := http.NewRequestWithContext(ctx, method, c.url(addr, path), body)
	if err != nil {
		return nil, fmt.Errorf("peerclient: build request: %w", err)
	}
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("peerclient: transport error", logger.FAddr("addr", addr), logger.F("path", path), logger.F("err", err.Error()))
		return nil, fmt.Errorf("peerclient: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("peerclient: non-200 response",
			logger.FAddr("addr", addr), logger.F("path", path), logger.F("status", resp.StatusCode))
		return nil, fmt.Errorf("peerclient: %s %s: status %d: %s", method, path, resp.StatusCode, string(data))
	}
	return data, nil
}

func (c *Client) Successor(ctx context.Context, addr string) (fingertable.Peer, error) {
	data, err := c.do(ctx, http.MethodGet, addr, "/successor/", nil)
	if err != nil {
		return fingertable.Peer{}, err
	}
	return c.peerOf(string(data)), nil
}

func (c *Client) SetSuccessor(ctx context.Context, addr string, succ fingertable.Peer) error {
	form := url.Values{"ip": {succ.Addr}}
	_, err := c.do(ctx, http.MethodPatch, addr, "/successor/", form)
	return err
}

func (c *Client) FindSuccessor(ctx context.Context, addr string, id ring.ID) (fingertable.Peer, error) {
	data, err := c.do(ctx, http.MethodGet, addr, fmt.Sprintf("/successor/%d", id), nil)
	if err != nil {
		return fingertable.Peer{}, err
	}
	return c.peerOf(string(data)), nil
}

func (c *Client) ClosestPrecedingFinger(ctx context.Context, addr string, id ring.ID) (fingertable.Peer, error) {
	data, err := c.do(ctx, http.MethodGet, addr, fmt.Sprintf("/successor/cpf/%d", id), nil)
	if err != nil {
		return fingertable.Peer{}, err
	}
	return c.peerOf(string(data)), nil
}

func (c *Client) Predecessor(ctx context.Context, addr string) (fingertable.Peer, error) {
	data, err := c.do(ctx, http.MethodGet, addr, "/predecessor/", nil)
	if err != nil {
		return fingertable.Peer{}, err
	}
	return c.peerOf(string(data)), nil
}

func (c *Client) SetPredecessor(ctx context.Context, addr string, pred fingertable.Peer) error {
	form := url.Values{"ip": {pred.Addr}}
	_, err := c.do(ctx, http.MethodPatch, addr, "/predecessor/", form)
	return err
}

func (c *Client) UpdateFingerTable(ctx context.Context, addr string, s fingertable.Peer, i int) error {
	form := url.Values{"n": {s.Addr}, "i": {strconv.Itoa(i)}}
	_, err := c.do(ctx, http.MethodPatch, addr, "/fingertable", form)
	return err
}

func (c *Client) Notify(ctx context.Context, addr string, self fingertable.Peer) error {
	form := url.Values{"n": {self.Addr}}
	_, err := c.do(ctx, http.MethodPatch, addr, "/notify", form)
	return err
}

func (c *Client) InsertKey(ctx context.Context, addr string, key string) (ring.ID, error) {
	form := url.Values{"key": {key}}
	data, err := c.do(ctx, http.MethodPost, addr, "/key/", form)
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseUint(string(data), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("peerclient: malformed owner id %q: %w", string(data), err)
	}
	return ring.ID(n), nil
}

func (c *Client) ContainsKey(ctx context.Context, addr string, key string) (bool, error) {
	data, err := c.do(ctx, http.MethodGet, addr, "/key/"+url.PathEscape(key), nil)
	if err != nil {
		return false, err
	}
	return string(data) == "true", nil
}

func (c *Client) InsertReplica(ctx context.Context, addr string, key string) error {
	form := url.Values{"key": {key}}
	_, err := c.do(ctx, http.MethodPost, addr, "/replica", form)
	return err
}

// IsAlive issues a short liveness probe. Unlike every other method here, it
// never returns an error: any transport failure simply means "not alive".
func (c *Client) IsAlive(ctx context.Context, addr string) bool {
	_, err := c.doWithTimeout(ctx, c.livenessTimeout, http.MethodGet, addr, "/successor/", nil)
	return err == nil
}
