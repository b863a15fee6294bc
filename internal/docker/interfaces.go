// Package docker wraps the Docker Engine API client used to probe the
// daemon and the container workloads it runs.
package docker

import "context"

// Client defines the Docker Engine API surface the watchdog uses.
type Client interface {
	// ServerVersion asks the engine for its version string. It is the
	// cheapest call that proves the API socket answers end to end.
	ServerVersion(ctx context.Context) (string, error)
	// Info returns engine-wide container counters.
	Info(ctx context.Context) (*EngineInfo, error)
	// ContainerState inspects a container by name or ID.
	ContainerState(ctx context.Context, nameOrID string) (*ContainerState, error)
	// ContainerStart starts a stopped container.
	ContainerStart(ctx context.Context, nameOrID string) error
	// Close releases the underlying API connection.
	Close() error
}

// ClientFactory creates Docker Engine API clients.
type ClientFactory interface {
	// NewClient builds a client for the given engine endpoint. An empty
	// host selects the environment default (DOCKER_HOST or the local
	// socket).
	NewClient(host string) (Client, error)
}
