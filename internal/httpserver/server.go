// Package httpserver implements the node's inbound peer/operator surface:
// the HTTP endpoints of SPEC_FULL.md §6, wrapped with otelhttp span
// instrumentation and structured access logging.
package httpserver

import (
	"context"
	"net"
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"ChordRing/internal/logger"
	"ChordRing/internal/node"
)

// Server wraps a net/http.Server hosting the Chord peer and operator API.
type Server struct {
	httpServer *http.Server
	listener   net.Listener
	node       *node.State
	logger     logger.Logger
}

// New builds a Server bound to lis, serving requests against n.
func New(lis net.Listener, n *node.State, opts ...Option) *Server {
	s := &Server{
		listener: lis,
		node:     n,
		logger:   logger.NopLogger{},
	}
	for _, opt := range opts {
		opt(s)
	}

	mux := s.routes()
	handler := otelhttp.NewHandler(s.accessLog(mux), "chordring.http")
	s.httpServer = &http.Server{Handler: handler}
	return s
}

// Start serves requests until the listener is closed or Shutdown is called.
// It always returns a non-nil error; http.ErrServerClosed signals a normal
// shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server listening", logger.FAddr("addr", s.listener.Addr().String()))
	return s.httpServer.Serve(s.listener)
}

// Shutdown gracefully drains in-flight requests before returning.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.logger.Debug("http request", logger.F("method", r.Method), logger.F("path", r.URL.Path))
		next.ServeHTTP(w, r)
	})
}
