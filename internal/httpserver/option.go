package httpserver

import "ChordRing/internal/logger"

// Option is a functional option for configuring a Server.
type Option func(*Server)

// WithLogger injects a custom logger into the Server.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}
