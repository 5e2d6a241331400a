// Package bindaddr resolves the network address a node advertises to its
// peers, auto-selecting a private or public IPv4 address from the host's
// interfaces when the operator does not pin one explicitly.
package bindaddr

import (
	"fmt"
	"net"

	"ChordRing/internal/config"
)

var privateBlocks = []string{
	"10.0.0.0/8",
	"172.16.0.0/12",
	"192.168.0.0/16",
}

func isPrivateIP(ip net.IP) bool {
	for _, block := range privateBlocks {
		_, cidr, _ := net.ParseCIDR(block)
		if cidr.Contains(ip) {
			return true
		}
	}
	return false
}

// pickIP scans the host's up, non-loopback interfaces for an IPv4 address
// matching mode ("private" or "public").
func pickIP(mode string) (net.IP, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}

	for _, iface := range ifaces {
		if (iface.Flags&net.FlagUp) == 0 || (iface.Flags&net.FlagLoopback) != 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			var ip net.IP
			switch v := addr.(type) {
			case *net.IPNet:
				ip = v.IP
			case *net.IPAddr:
				ip = v.IP
			}
			if ip == nil || ip.IsLoopback() {
				continue
			}
			ip = ip.To4()
			if ip == nil {
				continue
			}
			if mode == "private" && isPrivateIP(ip) {
				return ip, nil
			}
			if mode == "public" && !isPrivateIP(ip) {
				return ip, nil
			}
		}
	}
	return nil, fmt.Errorf("no suitable %s interface found", mode)
}

// Resolved is the host/port pair a node binds its listener to and the
// address string it advertises to the rest of the ring.
type Resolved struct {
	Listener net.Listener
	Addr     string // host:port, suitable for HashID and peer dialing
}

// Listen opens a TCP listener for cfg.Node, auto-selecting a host address
// from the host's interfaces when cfg.Node.Host is empty. When Host is set
// explicitly, it is validated against cfg.Node.Mode.
func Listen(cfg *config.NodeConfig) (*Resolved, error) {
	host := cfg.Host
	if host == "" {
		ip, err := pickIP(cfg.Mode)
		if err != nil {
			return nil, err
		}
		host = ip.String()
	} else {
		ip := net.ParseIP(host)
		if ip == nil {
			return nil, fmt.Errorf("invalid IP address: %s", host)
		}
		if cfg.Mode == "private" && !isPrivateIP(ip) {
			return nil, fmt.Errorf("host %s is not private but mode=private", host)
		}
		if cfg.Mode == "public" && isPrivateIP(ip) {
			return nil, fmt.Errorf("host %s is private but mode=public", host)
		}
	}

	bindAddr := fmt.Sprintf("%s:%d", cfg.Bind, cfg.Port)
	lis, err := net.Listen("tcp", bindAddr)
	if err != nil {
		return nil, err
	}

	advertised := fmt.Sprintf("%s:%d", host, lis.Addr().(*net.TCPAddr).Port)
	return &Resolved{Listener: lis, Addr: advertised}, nil
}
