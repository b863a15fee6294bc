// Package cmd provides the command line interface for docker-watchdog
/*
Copyright © 2025 Oleg Kovalenko

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/monstrenyatko/docker-watchdog/internal/compose"
	"github.com/monstrenyatko/docker-watchdog/internal/docker"
	"github.com/monstrenyatko/docker-watchdog/internal/systemd"
)

// DoctorOptions holds doctor command options.
type DoctorOptions struct {
	// Currently no specific options for doctor command
}

// DoctorDeps holds doctor dependencies.
type DoctorDeps struct {
	CommonDeps
	ViperConfigFile func() string
	GetOS           func() string
	CheckBus        func(ctx context.Context) error
	CheckUnit       func(ctx context.Context, unitName string) (bool, error)
	NewClient       func(host string) (docker.Client, error)
}

// DoctorCommand represents the doctor command for the docker-watchdog CLI.
type DoctorCommand struct{}

// NewDoctorCommand creates a new DoctorCommand.
func NewDoctorCommand() *DoctorCommand {
	return &DoctorCommand{}
}

// getApp retrieves the App from the command context.
func (c *DoctorCommand) getApp(cmd *cobra.Command) *App {
	return cmd.Context().Value(appContextKey).(*App)
}

// CheckResult represents the result of a diagnostic check.
type CheckResult struct {
	Name        string
	Passed      bool
	Message     string
	Suggestions []string
}

// GetCobraCommand returns the cobra command for doctor operations.
func (c *DoctorCommand) GetCobraCommand() *cobra.Command {
	var opts DoctorOptions

	doctorCmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check system health and configuration",
		Long: `Check system health and configuration for docker-watchdog.

The doctor command performs comprehensive checks of:
- System requirements (Linux with systemd)
- Configuration file validity
- Monitored container configuration
- D-Bus connectivity and the watched unit
- Docker Engine API reachability

This helps diagnose common setup and configuration issues.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app := c.getApp(cmd)
			deps := c.buildDeps(app)
			return c.Run(cmd.Context(), app, opts, deps)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	return doctorCmd
}

// buildDeps creates production dependencies for the doctor command.
func (c *DoctorCommand) buildDeps(app *App) DoctorDeps {
	return DoctorDeps{
		CommonDeps:      NewRootDeps(app),
		ViperConfigFile: func() string { return viper.GetViper().ConfigFileUsed() },
		GetOS:           func() string { return runtime.GOOS },
		CheckBus: func(ctx context.Context) error {
			return systemd.CheckBusReachable(ctx, app.ConnectionFactory, app.Config.UserMode, app.Logger)
		},
		CheckUnit: func(ctx context.Context, unitName string) (bool, error) {
			return systemd.CheckUnitLoaded(ctx, unitName, app.ConnectionFactory, app.Config.UserMode, app.Logger)
		},
		NewClient: app.ClientFactory.NewClient,
	}
}

// Run executes the doctor command with injected dependencies.
func (c *DoctorCommand) Run(ctx context.Context, app *App, _ DoctorOptions, deps DoctorDeps) error {
	// Collect all diagnostic results
	var results []CheckResult
	var failureCount int

	// Run all checks
	results = append(results, c.checkSystemRequirements(app, deps)...)
	results = append(results, c.checkConfiguration(app, deps)...)
	workloadResults, workloads := c.checkWorkloads(ctx, app)
	results = append(results, workloadResults...)
	results = append(results, c.checkSystemd(ctx, app, deps)...)
	results = append(results, c.checkEngine(ctx, app, deps, workloads)...)

	// Count failures
	for _, result := range results {
		if !result.Passed {
			failureCount++
		}
	}

	// Display results based on output format
	if app.OutputFormat == "text" {
		// Traditional text output
		if app.Config.Verbose {
			c.displayDetailedResults(results)
		} else {
			c.displaySummaryResults(results)
		}

		// Return error instead of exiting
		if failureCount > 0 {
			if !app.Config.Verbose {
				fmt.Printf("\n%d checks failed. Run with --verbose for details.\n", failureCount)
			}
			return fmt.Errorf("doctor found %d issues", failureCount)
		} else if app.Config.Verbose {
			fmt.Println("\n✓ All checks passed")
		}
	} else {
		// Structured output (JSON/YAML)
		c.outputStructuredResults(app, results, failureCount)
		if failureCount > 0 {
			return fmt.Errorf("doctor found %d issues", failureCount)
		}
	}

	return nil
}

// checkSystemRequirements validates core system dependencies.
func (c *DoctorCommand) checkSystemRequirements(app *App, deps DoctorDeps) []CheckResult {
	var results []CheckResult

	err := app.Validator.SystemRequirements()
	if err != nil {
		// Platform-specific suggestions
		var suggestions []string
		platform := deps.GetOS()

		switch platform {
		case "linux":
			suggestions = []string{
				"Install systemd if running on a systemd-based system",
				"Ensure systemctl is in your PATH",
			}
		default:
			suggestions = []string{
				"docker-watchdog manages a systemd unit and requires a Linux host",
			}
		}

		results = append(results, CheckResult{
			Name:        "System Requirements",
			Passed:      false,
			Message:     err.Error(),
			Suggestions: suggestions,
		})
	} else {
		results = append(results, CheckResult{
			Name:    "System Requirements",
			Passed:  true,
			Message: "systemd is available",
		})
	}

	return results
}

// checkConfiguration validates the configuration file. A missing file is not
// a failure, the watchdog runs on built-in defaults.
func (c *DoctorCommand) checkConfiguration(app *App, deps DoctorDeps) []CheckResult {
	var results []CheckResult

	configFile := deps.ViperConfigFile()
	if configFile == "" {
		results = append(results, CheckResult{
			Name:    "Configuration File",
			Passed:  true,
			Message: "No configuration file, using built-in defaults",
		})
	} else {
		if _, err := deps.FileSystem.Stat(configFile); err != nil {
			results = append(results, CheckResult{
				Name:    "Configuration File",
				Passed:  false,
				Message: fmt.Sprintf("Configuration file not accessible: %v", err),
				Suggestions: []string{
					"Check file permissions on " + configFile,
					"Verify the file path is correct",
				},
			})
		} else {
			results = append(results, CheckResult{
				Name:    "Configuration File",
				Passed:  true,
				Message: fmt.Sprintf("Configuration loaded from %s", configFile),
			})
		}
	}

	return results
}

// checkWorkloads resolves the monitored containers and reports on the
// workload configuration. The resolved list feeds the engine checks.
func (c *DoctorCommand) checkWorkloads(ctx context.Context, app *App) ([]CheckResult, []compose.Workload) {
	workloads, err := app.Watchdog.Workloads(ctx)
	if err != nil {
		return []CheckResult{{
			Name:    "Workload Configuration",
			Passed:  false,
			Message: fmt.Sprintf("Could not resolve monitored containers: %v", err),
			Suggestions: []string{
				"Verify the compose file path in the configuration",
				"Check that the compose file parses: docker compose config",
			},
		}}, nil
	}

	if len(workloads) == 0 {
		return []CheckResult{{
			Name:    "Workload Configuration",
			Passed:  true,
			Message: "No containers monitored, watching the unit and engine only",
		}}, nil
	}

	return []CheckResult{{
		Name:    "Workload Configuration",
		Passed:  true,
		Message: fmt.Sprintf("%d containers monitored", len(workloads)),
	}}, workloads
}

// checkSystemd validates D-Bus connectivity and the watched unit.
func (c *DoctorCommand) checkSystemd(ctx context.Context, app *App, deps DoctorDeps) []CheckResult {
	var results []CheckResult

	busName := "system"
	if app.Config.UserMode {
		busName = "user"
	}

	if err := deps.CheckBus(ctx); err != nil {
		suggestions := []string{
			"Check that D-Bus is running on this host",
		}
		if app.Config.UserMode {
			suggestions = append(suggestions,
				"Verify DBUS_SESSION_BUS_ADDRESS is set for the user session",
				"Drop --user if Docker runs as a system service")
		} else {
			suggestions = append(suggestions,
				"Use --user if you manage a rootless Docker in a user session")
		}

		results = append(results, CheckResult{
			Name:        "D-Bus Connection",
			Passed:      false,
			Message:     fmt.Sprintf("Could not connect to the %s bus: %v", busName, err),
			Suggestions: suggestions,
		})

		// No point querying the unit without a bus
		return results
	}

	results = append(results, CheckResult{
		Name:    "D-Bus Connection",
		Passed:  true,
		Message: fmt.Sprintf("Connected to the %s bus", busName),
	})

	loaded, err := deps.CheckUnit(ctx, app.Config.Unit)
	switch {
	case err != nil:
		results = append(results, CheckResult{
			Name:    "Docker Unit",
			Passed:  false,
			Message: fmt.Sprintf("Could not query unit %s: %v", app.Config.Unit, err),
		})
	case !loaded:
		results = append(results, CheckResult{
			Name:    "Docker Unit",
			Passed:  false,
			Message: fmt.Sprintf("Unit %s is not loaded", app.Config.Unit),
			Suggestions: []string{
				"Install the Docker engine package for this distribution",
				"Reload unit definitions: systemctl daemon-reload",
				"Check the unit name: systemctl list-units --type=service",
			},
		})
	default:
		results = append(results, CheckResult{
			Name:    "Docker Unit",
			Passed:  true,
			Message: fmt.Sprintf("Unit %s is loaded", app.Config.Unit),
		})
	}

	return results
}

// checkEngine probes the Docker Engine API and the monitored containers.
func (c *DoctorCommand) checkEngine(ctx context.Context, app *App, deps DoctorDeps, workloads []compose.Workload) []CheckResult {
	var results []CheckResult

	client, err := deps.NewClient(app.Config.DockerHost)
	if err != nil {
		results = append(results, CheckResult{
			Name:    "Engine API",
			Passed:  false,
			Message: fmt.Sprintf("Could not create Docker client: %v", err),
			Suggestions: []string{
				"Verify the Docker host address in the configuration",
				"Check DOCKER_HOST if set in the environment",
			},
		})
		return results
	}
	defer func() { _ = client.Close() }()

	version, err := client.ServerVersion(ctx)
	if err != nil {
		results = append(results, CheckResult{
			Name:    "Engine API",
			Passed:  false,
			Message: fmt.Sprintf("Engine is not answering: %v", err),
			Suggestions: []string{
				fmt.Sprintf("Check the unit state: systemctl status %s", app.Config.Unit),
				"Check socket permissions on /var/run/docker.sock",
				"Run a watchdog pass to restart the engine: docker-watchdog check",
			},
		})
		return results
	}

	results = append(results, CheckResult{
		Name:    "Engine API",
		Passed:  true,
		Message: fmt.Sprintf("Engine version %s is answering", version),
	})

	// Container checks only make sense against a live engine
	for _, wl := range workloads {
		state, err := client.ContainerState(ctx, wl.Container)
		switch {
		case docker.IsContainerNotFoundError(err):
			suggestions := []string{
				"Check the container name in the configuration",
			}
			if wl.Service != "" {
				suggestions = append(suggestions, "Create the container: docker compose up -d "+wl.Service)
			}
			results = append(results, CheckResult{
				Name:        fmt.Sprintf("Container: %s", wl.Container),
				Passed:      false,
				Message:     "Container does not exist",
				Suggestions: suggestions,
			})
		case err != nil:
			results = append(results, CheckResult{
				Name:    fmt.Sprintf("Container: %s", wl.Container),
				Passed:  false,
				Message: fmt.Sprintf("Could not inspect container: %v", err),
			})
		default:
			results = append(results, CheckResult{
				Name:    fmt.Sprintf("Container: %s", wl.Container),
				Passed:  true,
				Message: fmt.Sprintf("Container exists (%s)", state.Status),
			})
		}
	}

	return results
}

// displaySummaryResults shows a brief summary of check results.
func (c *DoctorCommand) displaySummaryResults(results []CheckResult) {
	var failed []CheckResult

	for _, result := range results {
		if !result.Passed {
			failed = append(failed, result)
		}
	}

	if len(failed) > 0 {
		fmt.Println("Issues found:")
		for _, result := range failed {
			fmt.Printf("✗ %s: %s\n", result.Name, result.Message)
		}
	}
}

// displayDetailedResults shows detailed information about all checks.
func (c *DoctorCommand) displayDetailedResults(results []CheckResult) {
	fmt.Println("System Health Check Results:")
	fmt.Println(strings.Repeat("=", 40))

	for _, result := range results {
		if result.Passed {
			fmt.Printf("✓ %s: %s\n", result.Name, result.Message)
		} else {
			fmt.Printf("✗ %s: %s\n", result.Name, result.Message)
			if len(result.Suggestions) > 0 {
				fmt.Println("  Suggestions:")
				for _, suggestion := range result.Suggestions {
					fmt.Printf("    - %s\n", suggestion)
				}
			}
		}
		fmt.Println()
	}
}

// outputStructuredResults outputs health check results in structured format (JSON/YAML).
func (c *DoctorCommand) outputStructuredResults(app *App, results []CheckResult, failureCount int) {
	checks := make([]CheckResultStructured, 0, len(results))
	passedCount := 0

	for _, result := range results {
		status := "failed"
		if result.Passed {
			status = "passed"
			passedCount++
		}

		checks = append(checks, CheckResultStructured{
			Name:        result.Name,
			Status:      status,
			Message:     result.Message,
			Suggestions: result.Suggestions,
		})
	}

	overall := "passed"
	if failureCount > 0 {
		overall = "failed"
	}

	output := HealthCheckOutput{
		Overall: overall,
		Checks:  checks,
		Summary: map[string]int{
			"total":  len(results),
			"passed": passedCount,
			"failed": failureCount,
		},
	}

	// Print structured output
	_ = PrintOutput(app.OutputFormat, output)
}
