// Package systemd provides access to the watched unit over the systemd D-Bus API.
package systemd

import (
	"context"

	"github.com/coreos/go-systemd/v22/dbus"
)

// Connection wraps systemd D-Bus operations for testability.
type Connection interface {
	// GetUnitProperty gets a property of a systemd unit.
	GetUnitProperty(ctx context.Context, unitName, propertyName string) (*dbus.Property, error)

	// GetUnitProperties gets all properties of a systemd unit.
	GetUnitProperties(ctx context.Context, unitName string) (map[string]interface{}, error)

	// ListUnitsByNames returns the state of the named units. Units systemd
	// has no definition for are reported with LoadState "not-found" rather
	// than an error.
	ListUnitsByNames(ctx context.Context, units []string) ([]dbus.UnitStatus, error)

	// RestartUnit restarts a systemd unit.
	RestartUnit(ctx context.Context, unitName, mode string) (chan string, error)

	// ResetFailedUnit resets the failed state of a unit.
	ResetFailedUnit(ctx context.Context, unitName string) error

	// Close closes the connection.
	Close() error
}

// Manager exposes the unit operations the watchdog and CLI need.
type Manager interface {
	// Status returns the current state of a unit.
	Status(ctx context.Context, unitName string) (*UnitStatus, error)

	// Restart restarts a unit and waits for the queued job to finish.
	Restart(ctx context.Context, unitName string) error

	// FailureDetails returns human-readable failure detail for a unit.
	FailureDetails(ctx context.Context, unitName string) string
}

// ConnectionFactory creates Connection instances.
type ConnectionFactory interface {
	// NewConnection creates a new systemd connection based on configuration.
	NewConnection(ctx context.Context, userMode bool) (Connection, error)
}
