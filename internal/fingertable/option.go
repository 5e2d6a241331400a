package fingertable

import "ChordRing/internal/logger"

// Option is a functional option for configuring a Table.
type Option func(*Table)

// WithLogger sets a custom logger for the Table.
func WithLogger(l logger.Logger) Option {
	return func(t *Table) {
		if l != nil {
			t.logger = l
		}
	}
}
