package ringtester

import (
	"context"
	"fmt"
	"strings"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"
)

// DockerBootstrap discovers ring node containers by name suffix and Docker
// network, for local multi-node integration runs (ringtester is normally
// pointed at a docker-compose deployment of cmd/ringnode).
type DockerBootstrap struct {
	Suffix  string // e.g. "ringnode"
	Port    int    // e.g. 8000
	Network string // e.g. "chordring-net"
}

// NewDockerBootstrap builds a Docker-based bootstrapper.
func NewDockerBootstrap(suffix string, port int, network string) *DockerBootstrap {
	return &DockerBootstrap{
		Suffix:  strings.TrimSpace(suffix),
		Port:    port,
		Network: strings.TrimSpace(network),
	}
}

// Discover lists running containers matching Suffix on Network and returns
// their dialable "<container-name>:<port>" addresses.
func (d *DockerBootstrap) Discover(ctx context.Context) ([]string, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("create docker client: %w", err)
	}
	defer cli.Close()

	containers, err := cli.ContainerList(ctx, container.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("list containers: %w", err)
	}

	var addrs []string
	for _, c := range containers {
		name := containerName(c.Names)
		if name == "" || !strings.Contains(name, d.Suffix) {
			continue
		}
		if c.NetworkSettings == nil {
			continue
		}
		if _, ok := c.NetworkSettings.Networks[d.Network]; !ok {
			continue
		}
		addrs = append(addrs, fmt.Sprintf("%s:%d", name, d.Port))
	}
	return addrs, nil
}

// containerName strips the leading slash Docker puts on container names.
func containerName(names []string) string {
	if len(names) == 0 {
		return ""
	}
	return strings.TrimPrefix(names[0], "/")
}

// Register and Deregister are no-ops: container lifecycle is managed by
// docker-compose, not by the tester.
func (d *DockerBootstrap) Register(ctx context.Context, selfAddr string) error   { return nil }
func (d *DockerBootstrap) Deregister(ctx context.Context, selfAddr string) error { return nil }
