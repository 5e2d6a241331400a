package node

import "ChordRing/internal/logger"

// Option is a functional option for configuring a State at construction.
type Option func(*State)

// WithLogger sets a custom logger for the node.
func WithLogger(l logger.Logger) Option {
	return func(st *State) {
		if l != nil {
			st.logger = l
		}
	}
}
