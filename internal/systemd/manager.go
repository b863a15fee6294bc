package systemd

import (
	"context"
	"fmt"

	"github.com/monstrenyatko/docker-watchdog/internal/config"
	"github.com/monstrenyatko/docker-watchdog/internal/execx"
	"github.com/monstrenyatko/docker-watchdog/internal/log"
	"github.com/monstrenyatko/docker-watchdog/internal/validate"
)

// restartJobMode rejects the restart when it conflicts with an already
// queued job instead of replacing it.
const restartJobMode = "fail"

// DefaultManager implements Manager on top of a ConnectionFactory.
type DefaultManager struct {
	connectionFactory ConnectionFactory
	configProvider    config.Provider
	logger            log.Logger
	runner            execx.Runner
}

// NewDefaultManager creates a new default manager.
func NewDefaultManager(connectionFactory ConnectionFactory, configProvider config.Provider, logger log.Logger, runner execx.Runner) *DefaultManager {
	return &DefaultManager{
		connectionFactory: connectionFactory,
		configProvider:    configProvider,
		logger:            logger,
		runner:            runner,
	}
}

func (m *DefaultManager) connect(ctx context.Context) (Connection, error) {
	return m.connectionFactory.NewConnection(ctx, m.configProvider.GetConfig().UserMode)
}

// Status returns the current state of a unit. The load/active/sub triple
// comes from ListUnitsByNames so that unknown units surface as LoadState
// "not-found"; the remaining fields are best effort.
func (m *DefaultManager) Status(ctx context.Context, unitName string) (*UnitStatus, error) {
	conn, err := m.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = conn.Close() }()

	units, err := conn.ListUnitsByNames(ctx, []string{unitName})
	if err != nil {
		return nil, NewError("Status", unitName, err)
	}
	if len(units) == 0 {
		return nil, NewUnitNotFoundError(unitName)
	}

	unit := units[0]
	status := &UnitStatus{
		Name:        unit.Name,
		Description: unit.Description,
		LoadState:   unit.LoadState,
		ActiveState: unit.ActiveState,
		SubState:    unit.SubState,
	}

	if !status.Found() {
		return status, nil
	}

	props, err := conn.GetUnitProperties(ctx, unitName)
	if err != nil {
		m.logger.Debug("Unit detail properties unavailable", "unit", unitName, "error", err)
		return status, nil
	}
	applyDetailProperties(status, props)

	return status, nil
}

// Restart restarts a unit and waits for the queued job to finish. A unit in
// failed state has its failure record cleared first so the restart is not
// rejected by start rate limiting.
func (m *DefaultManager) Restart(ctx context.Context, unitName string) error {
	conn, err := m.connect(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	units, err := conn.ListUnitsByNames(ctx, []string{unitName})
	if err != nil {
		return NewError("Restart", unitName, err)
	}
	if len(units) == 0 || units[0].LoadState == "not-found" {
		return NewUnitNotFoundError(unitName)
	}

	if units[0].ActiveState == "failed" {
		m.logger.Debug("Clearing failed state before restart", "unit", unitName)
		if err := conn.ResetFailedUnit(ctx, unitName); err != nil {
			m.logger.Warn("Could not reset failed state", "unit", unitName, "error", err)
		}
	}

	m.logger.Info("Restarting unit", "unit", unitName)
	ch, err := conn.RestartUnit(ctx, unitName, restartJobMode)
	if err != nil {
		return NewError("Restart", unitName, err)
	}

	select {
	case result := <-ch:
		if result != "done" {
			return NewJobFailedError("Restart", unitName, result)
		}
	case <-ctx.Done():
		return fmt.Errorf("restart wait cancelled: %w", ctx.Err())
	}

	m.logger.Info("Unit restarted", "unit", unitName)
	return nil
}

// FailureDetails returns human-readable failure detail for a unit.
func (m *DefaultManager) FailureDetails(ctx context.Context, unitName string) string {
	conn, err := m.connect(ctx)
	if err != nil {
		return fmt.Sprintf("Could not connect to systemd: %v", err)
	}
	defer func() { _ = conn.Close() }()

	prop, err := conn.GetUnitProperties(ctx, unitName)
	if err != nil {
		return fmt.Sprintf("Could not retrieve unit properties: %v", err)
	}

	statusInfo := fmt.Sprintf("Unit: %s\n", unitName)
	statusInfo += fmt.Sprintf("  Load State: %v\n", prop["LoadState"])
	statusInfo += fmt.Sprintf("  Active State: %v\n", prop["ActiveState"])
	statusInfo += fmt.Sprintf("  Sub State: %v\n", prop["SubState"])

	if result, ok := prop["Result"]; ok {
		statusInfo += fmt.Sprintf("  Result: %v\n", result)
	}

	if mainPID, ok := prop["MainPID"]; ok && mainPID != uint32(0) {
		statusInfo += fmt.Sprintf("  Main PID: %v\n", mainPID)
	}

	if execMainStatus, ok := prop["ExecMainStatus"]; ok {
		statusInfo += fmt.Sprintf("  Exit Status: %v\n", execMainStatus)
	}

	// For logs, we still need journalctl as systemd dbus doesn't provide log retrieval
	// Validate unitName to prevent command injection
	if err := validate.ValidateUnitName(unitName); err != nil {
		return fmt.Sprintf("\nUnit Status (via dbus):\n%s\nRecent logs: (unavailable - invalid unit name)", statusInfo)
	}

	var output []byte
	if m.configProvider.GetConfig().UserMode {
		output, err = m.runner.CombinedOutput(ctx, "journalctl", "--user-unit", unitName, "-n", "3", "--no-pager", "--output=short-precise")
	} else {
		output, err = m.runner.CombinedOutput(ctx, "journalctl", "--unit", unitName, "-n", "3", "--no-pager", "--output=short-precise")
	}

	logInfo := "Recent logs: (unavailable)"
	if err == nil && len(output) > 0 {
		logInfo = fmt.Sprintf("Recent logs:\n%s", string(output))
	}

	return fmt.Sprintf("\nUnit Status (via dbus):\n%s\n%s", statusInfo, logInfo)
}
