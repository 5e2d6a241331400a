package bindaddr

import (
	"net"
	"testing"

	"ChordRing/internal/config"
)

func TestIsPrivateIP(t *testing.T) {
	cases := []struct {
		ip      string
		private bool
	}{
		{"10.0.0.5", true},
		{"172.16.4.4", true},
		{"192.168.1.1", true},
		{"8.8.8.8", false},
		{"203.0.113.7", false},
	}
	for _, c := range cases {
		got := isPrivateIP(net.ParseIP(c.ip))
		if got != c.private {
			t.Errorf("isPrivateIP(%s) = %v, want %v", c.ip, got, c.private)
		}
	}
}

func TestListenRejectsMismatchedExplicitHost(t *testing.T) {
	cfg := &config.NodeConfig{Bind: "127.0.0.1", Host: "8.8.8.8", Port: 0, Mode: "private"}
	if _, err := Listen(cfg); err == nil {
		t.Errorf("expected error for public host with mode=private")
	}
}
