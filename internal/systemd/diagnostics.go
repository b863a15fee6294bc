package systemd

import (
	"context"
	"fmt"
	"strings"

	"github.com/monstrenyatko/docker-watchdog/internal/log"
)

// DiagnosticIssue represents a detected problem with the watchdog setup.
type DiagnosticIssue struct {
	Type        string   // Type of issue: "bus_unreachable", "unit_not_loaded", etc.
	Message     string   // Human-readable description
	Suggestions []string // Actionable recommendations
}

// CheckBusReachable verifies that the systemd D-Bus API answers at all.
func CheckBusReachable(ctx context.Context, factory ConnectionFactory, userMode bool, logger log.Logger) error {
	conn, err := factory.NewConnection(ctx, userMode)
	if err != nil {
		logger.Debug("Systemd bus unreachable", "userMode", userMode, "error", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	return nil
}

// CheckUnitLoaded verifies that a systemd unit is loaded.
func CheckUnitLoaded(ctx context.Context, unitName string, factory ConnectionFactory, userMode bool, logger log.Logger) (bool, error) {
	logger.Debug("Checking if unit is loaded", "unit", unitName)

	conn, err := factory.NewConnection(ctx, userMode)
	if err != nil {
		logger.Error("Failed to connect to systemd", "error", err)
		return false, fmt.Errorf("error connecting to systemd: %w", err)
	}
	defer func() { _ = conn.Close() }()

	units, err := conn.ListUnitsByNames(ctx, []string{unitName})
	if err != nil || len(units) == 0 {
		logger.Debug("Unit state unavailable", "unit", unitName, "error", err)
		return false, nil
	}

	loaded := units[0].LoadState == "loaded"
	logger.Debug("Unit load state", "unit", unitName, "loadState", units[0].LoadState, "loaded", loaded)
	return loaded, nil
}

// DiagnoseUnitIssues inspects the watched unit and reports problems that
// would make a watchdog pass fail before any state check runs.
func DiagnoseUnitIssues(ctx context.Context, unitName string, factory ConnectionFactory, userMode bool, logger log.Logger) []DiagnosticIssue {
	var issues []DiagnosticIssue

	if err := CheckBusReachable(ctx, factory, userMode, logger); err != nil {
		bus := "system"
		reloadHint := "systemctl daemon-reexec"
		if userMode {
			bus = "user"
			reloadHint = "systemctl --user daemon-reexec"
		}
		issues = append(issues, DiagnosticIssue{
			Type:    "bus_unreachable",
			Message: fmt.Sprintf("systemd %s bus is not reachable: %v", bus, err),
			Suggestions: []string{
				"Verify the host is running systemd: test -d /run/systemd/system",
				"Check D-Bus is running: systemctl status dbus.socket",
				fmt.Sprintf("If the bus daemon hangs, try: %s", reloadHint),
			},
		})
		// Nothing else can be checked without a bus connection.
		return issues
	}

	loaded, err := CheckUnitLoaded(ctx, unitName, factory, userMode, logger)
	if err != nil {
		logger.Error("Error checking unit load state", "unit", unitName, "error", err)
		return issues
	}

	if !loaded {
		issues = append(issues, DiagnosticIssue{
			Type:    "unit_not_loaded",
			Message: fmt.Sprintf("unit %s is not loaded in systemd", unitName),
			Suggestions: []string{
				fmt.Sprintf("Check the unit exists: systemctl cat %s", unitName),
				"Install the Docker engine package if it is missing",
				fmt.Sprintf("Reload unit definitions: systemctl daemon-reload && systemctl status %s", unitName),
				"If the unit name is non-standard, set it in the watchdog configuration",
			},
		})
	}

	return issues
}

// FormatDiagnosticIssue formats a diagnostic issue for display.
func FormatDiagnosticIssue(issue DiagnosticIssue) string {
	var output strings.Builder

	output.WriteString(fmt.Sprintf("Issue: %s\n", issue.Message))

	if len(issue.Suggestions) > 0 {
		output.WriteString("\nSuggestions:\n")
		for _, suggestion := range issue.Suggestions {
			output.WriteString(fmt.Sprintf("  - %s\n", suggestion))
		}
	}

	return output.String()
}
