package docker

import (
	"context"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"

	"github.com/monstrenyatko/docker-watchdog/internal/log"
)

// APIClient implements Client on top of the Docker Engine HTTP API.
type APIClient struct {
	api *client.Client
}

// NewAPIClient wraps an already constructed engine API client.
func NewAPIClient(api *client.Client) *APIClient {
	return &APIClient{api: api}
}

// ServerVersion asks the engine for its version string.
func (c *APIClient) ServerVersion(ctx context.Context) (string, error) {
	version, err := c.api.ServerVersion(ctx)
	if err != nil {
		return "", NewError("ServerVersion", "", err)
	}
	return version.Version, nil
}

// Info returns engine-wide container counters.
func (c *APIClient) Info(ctx context.Context) (*EngineInfo, error) {
	info, err := c.api.Info(ctx)
	if err != nil {
		return nil, NewError("Info", "", err)
	}

	return &EngineInfo{
		ServerVersion:     info.ServerVersion,
		Containers:        info.Containers,
		ContainersRunning: info.ContainersRunning,
		ContainersPaused:  info.ContainersPaused,
		ContainersStopped: info.ContainersStopped,
	}, nil
}

// ContainerState inspects a container by name or ID.
func (c *APIClient) ContainerState(ctx context.Context, nameOrID string) (*ContainerState, error) {
	resp, err := c.api.ContainerInspect(ctx, nameOrID)
	if err != nil {
		if client.IsErrNotFound(err) {
			return nil, NewContainerNotFoundError(nameOrID)
		}
		return nil, NewError("ContainerInspect", nameOrID, err)
	}
	return stateFromInspect(resp), nil
}

// ContainerStart starts a stopped container.
func (c *APIClient) ContainerStart(ctx context.Context, nameOrID string) error {
	if err := c.api.ContainerStart(ctx, nameOrID, container.StartOptions{}); err != nil {
		if client.IsErrNotFound(err) {
			return NewContainerNotFoundError(nameOrID)
		}
		return NewError("ContainerStart", nameOrID, err)
	}
	return nil
}

// Close releases the underlying API connection.
func (c *APIClient) Close() error {
	return c.api.Close()
}

// DefaultClientFactory implements ClientFactory.
type DefaultClientFactory struct {
	logger log.Logger
}

// NewClientFactory creates a new client factory with injected logger.
func NewClientFactory(logger log.Logger) *DefaultClientFactory {
	return &DefaultClientFactory{
		logger: logger,
	}
}

// NewClient builds an engine API client. Version negotiation keeps the
// wrapper compatible with whatever engine version answers the socket.
func (f *DefaultClientFactory) NewClient(host string) (Client, error) {
	opts := []client.Opt{client.FromEnv, client.WithAPIVersionNegotiation()}
	if host != "" {
		f.logger.Debug("Using configured Docker host", "host", host)
		opts = append(opts, client.WithHost(host))
	}

	api, err := client.NewClientWithOpts(opts...)
	if err != nil {
		return nil, NewError("NewClient", "", err)
	}

	return NewAPIClient(api), nil
}
