package bootstrap

import "context"

// StaticBootstrap discovers peers from a fixed, operator-supplied list.
type StaticBootstrap struct {
	peers []string
}

// NewStaticBootstrap builds a StaticBootstrap returning peers verbatim.
func NewStaticBootstrap(peers []string) *StaticBootstrap {
	return &StaticBootstrap{peers: peers}
}

// Discover returns the configured peer list.
func (s *StaticBootstrap) Discover(ctx context.Context) ([]string, error) {
	return s.peers, nil
}

// Register does nothing in static mode; the peer list is fixed at startup.
func (s *StaticBootstrap) Register(ctx context.Context, selfAddr string) error {
	return nil
}

// Deregister does nothing in static mode.
func (s *StaticBootstrap) Deregister(ctx context.Context, selfAddr string) error {
	return nil
}
