// Package bootstrap discovers the addresses of existing ring members for a
// joining node, and optionally advertises this node's own address so later
// joiners can discover it.
package bootstrap

import "context"

// Bootstrap is how a joining node finds an introducer address.
type Bootstrap interface {
	// Discover returns a list of known peer addresses.
	Discover(ctx context.Context) ([]string, error)
	// Register advertises selfAddr so other nodes can discover it (only
	// meaningful for dynamic backends, e.g. Route53; static is a no-op).
	Register(ctx context.Context, selfAddr string) error
	// Deregister removes the advertisement made by Register.
	Deregister(ctx context.Context, selfAddr string) error
}
