package systemd

import (
	"context"
	"fmt"

	"github.com/coreos/go-systemd/v22/dbus"
)

// MockConnection implements Connection interface for testing.
type MockConnection struct {
	GetUnitPropertyFunc   func(ctx context.Context, unitName, propertyName string) (*dbus.Property, error)
	GetUnitPropertiesFunc func(ctx context.Context, unitName string) (map[string]interface{}, error)
	ListUnitsByNamesFunc  func(ctx context.Context, units []string) ([]dbus.UnitStatus, error)
	RestartUnitFunc       func(ctx context.Context, unitName, mode string) (chan string, error)
	ResetFailedUnitFunc   func(ctx context.Context, unitName string) error
	CloseFunc             func() error
}

// GetUnitProperty gets a property of a systemd unit.
func (m *MockConnection) GetUnitProperty(ctx context.Context, unitName, propertyName string) (*dbus.Property, error) {
	if m.GetUnitPropertyFunc != nil {
		return m.GetUnitPropertyFunc(ctx, unitName, propertyName)
	}
	return nil, fmt.Errorf("mock not implemented")
}

// GetUnitProperties gets all properties of a systemd unit.
func (m *MockConnection) GetUnitProperties(ctx context.Context, unitName string) (map[string]interface{}, error) {
	if m.GetUnitPropertiesFunc != nil {
		return m.GetUnitPropertiesFunc(ctx, unitName)
	}
	return nil, fmt.Errorf("mock not implemented")
}

// ListUnitsByNames returns the state of the named units.
func (m *MockConnection) ListUnitsByNames(ctx context.Context, units []string) ([]dbus.UnitStatus, error) {
	if m.ListUnitsByNamesFunc != nil {
		return m.ListUnitsByNamesFunc(ctx, units)
	}
	return nil, fmt.Errorf("mock not implemented")
}

// RestartUnit restarts a systemd unit.
func (m *MockConnection) RestartUnit(ctx context.Context, unitName, mode string) (chan string, error) {
	if m.RestartUnitFunc != nil {
		return m.RestartUnitFunc(ctx, unitName, mode)
	}
	return nil, fmt.Errorf("mock not implemented")
}

// ResetFailedUnit resets the failed state of a unit.
func (m *MockConnection) ResetFailedUnit(ctx context.Context, unitName string) error {
	if m.ResetFailedUnitFunc != nil {
		return m.ResetFailedUnitFunc(ctx, unitName)
	}
	return fmt.Errorf("mock not implemented")
}

// Close closes the connection.
func (m *MockConnection) Close() error {
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

// MockConnectionFactory implements ConnectionFactory interface for testing.
type MockConnectionFactory struct {
	NewConnectionFunc func(ctx context.Context, userMode bool) (Connection, error)
	Connection        Connection
}

// NewConnection creates a new systemd connection based on configuration.
func (m *MockConnectionFactory) NewConnection(ctx context.Context, userMode bool) (Connection, error) {
	if m.NewConnectionFunc != nil {
		return m.NewConnectionFunc(ctx, userMode)
	}
	if m.Connection != nil {
		return m.Connection, nil
	}
	return nil, fmt.Errorf("mock not configured")
}

// MockManager implements Manager interface for testing.
type MockManager struct {
	StatusFunc         func(ctx context.Context, unitName string) (*UnitStatus, error)
	RestartFunc        func(ctx context.Context, unitName string) error
	FailureDetailsFunc func(ctx context.Context, unitName string) string

	RestartCalls []string
}

// Status returns the current state of a unit.
func (m *MockManager) Status(ctx context.Context, unitName string) (*UnitStatus, error) {
	if m.StatusFunc != nil {
		return m.StatusFunc(ctx, unitName)
	}
	return &UnitStatus{Name: unitName, LoadState: "loaded", ActiveState: "active", SubState: "running"}, nil
}

// Restart restarts a unit and waits for the queued job to finish.
func (m *MockManager) Restart(ctx context.Context, unitName string) error {
	m.RestartCalls = append(m.RestartCalls, unitName)
	if m.RestartFunc != nil {
		return m.RestartFunc(ctx, unitName)
	}
	return nil
}

// FailureDetails returns human-readable failure detail for a unit.
func (m *MockManager) FailureDetails(ctx context.Context, unitName string) string {
	if m.FailureDetailsFunc != nil {
		return m.FailureDetailsFunc(ctx, unitName)
	}
	return "Unit: " + unitName + "\n  Status: Mock failure details"
}
