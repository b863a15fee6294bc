package docker

import (
	"context"
	"fmt"
)

// MockClient implements Client interface for testing.
type MockClient struct {
	ServerVersionFunc  func(ctx context.Context) (string, error)
	InfoFunc           func(ctx context.Context) (*EngineInfo, error)
	ContainerStateFunc func(ctx context.Context, nameOrID string) (*ContainerState, error)
	ContainerStartFunc func(ctx context.Context, nameOrID string) error
	CloseFunc          func() error

	StartCalls []string
}

// ServerVersion asks the engine for its version string.
func (m *MockClient) ServerVersion(ctx context.Context) (string, error) {
	if m.ServerVersionFunc != nil {
		return m.ServerVersionFunc(ctx)
	}
	return "", fmt.Errorf("mock not implemented")
}

// Info returns engine-wide container counters.
func (m *MockClient) Info(ctx context.Context) (*EngineInfo, error) {
	if m.InfoFunc != nil {
		return m.InfoFunc(ctx)
	}
	return nil, fmt.Errorf("mock not implemented")
}

// ContainerState inspects a container by name or ID.
func (m *MockClient) ContainerState(ctx context.Context, nameOrID string) (*ContainerState, error) {
	if m.ContainerStateFunc != nil {
		return m.ContainerStateFunc(ctx, nameOrID)
	}
	return nil, fmt.Errorf("mock not implemented")
}

// ContainerStart starts a stopped container.
func (m *MockClient) ContainerStart(ctx context.Context, nameOrID string) error {
	m.StartCalls = append(m.StartCalls, nameOrID)
	if m.ContainerStartFunc != nil {
		return m.ContainerStartFunc(ctx, nameOrID)
	}
	return nil
}

// Close releases the underlying API connection.
func (m *MockClient) Close() error {
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

// MockClientFactory implements ClientFactory interface for testing.
type MockClientFactory struct {
	NewClientFunc func(host string) (Client, error)
	Client        Client
}

// NewClient builds a client for the given engine endpoint.
func (m *MockClientFactory) NewClient(host string) (Client, error) {
	if m.NewClientFunc != nil {
		return m.NewClientFunc(host)
	}
	if m.Client != nil {
		return m.Client, nil
	}
	return nil, fmt.Errorf("mock not configured")
}
