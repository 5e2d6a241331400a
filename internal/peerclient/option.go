package peerclient

import "ChordRing/internal/logger"

// Option is a functional option for configuring a Client.
type Option func(*Client)

// WithLogger sets a custom logger for the Client.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}
