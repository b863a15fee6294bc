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

	"github.com/spf13/cobra"

	"github.com/monstrenyatko/docker-watchdog/internal/watchdog"
)

// CheckOptions holds check command options.
type CheckOptions struct{}

// CheckDeps holds check dependencies.
type CheckDeps struct {
	CommonDeps
}

// CheckCommand represents the check command.
type CheckCommand struct{}

// NewCheckCommand creates a new CheckCommand.
func NewCheckCommand() *CheckCommand {
	return &CheckCommand{}
}

// getApp retrieves the App from the command context.
func (c *CheckCommand) getApp(cmd *cobra.Command) *App {
	return cmd.Context().Value(appContextKey).(*App)
}

// CheckOutput is the structured result of one watchdog pass.
type CheckOutput struct {
	Healthy bool             `json:"healthy" yaml:"healthy"`
	Error   string           `json:"error,omitempty" yaml:"error,omitempty"`
	Report  *watchdog.Report `json:"report,omitempty" yaml:"report,omitempty"`
}

// GetCobraCommand returns the cobra command for running one watchdog pass.
func (c *CheckCommand) GetCobraCommand() *cobra.Command {
	var opts CheckOptions

	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "Run a single watchdog pass",
		Long: `Run a single watchdog pass against the watched unit.

The pass verifies the unit is active, probes the Docker Engine API, recovers
an engine that came up without starting any of its containers, and starts
monitored containers that stopped. The command exits non-zero when the daemon
could not be brought back to health. Running docker-watchdog with no
subcommand does the same thing.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app := c.getApp(cmd)
			deps := c.buildDeps(app)
			return c.Run(cmd.Context(), app, opts, deps)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	return checkCmd
}

// buildDeps creates production dependencies for the check command.
func (c *CheckCommand) buildDeps(app *App) CheckDeps {
	return CheckDeps{
		CommonDeps: NewRootDeps(app),
	}
}

// Run executes one watchdog pass with injected dependencies.
func (c *CheckCommand) Run(ctx context.Context, app *App, _ CheckOptions, deps CheckDeps) error {
	report, err := app.Watchdog.Run(ctx)

	if app.OutputFormat != "text" {
		output := CheckOutput{
			Healthy: err == nil,
			Report:  report,
		}
		if err != nil {
			output.Error = err.Error()
		}
		if printErr := PrintOutput(app.OutputFormat, output); printErr != nil {
			return printErr
		}
		return err
	}

	if err != nil {
		deps.Logger.Error("Watchdog pass failed", "unit", app.Config.Unit, "error", err)
		return err
	}

	// Anything printed here reaches cron mail; stay quiet on a healthy pass
	// unless verbose is on.
	if report.UnitRestarted || report.EngineRestarted || report.BootRecovery {
		fmt.Printf("Restarted %s\n", app.Config.Unit)
	}
	for _, name := range report.ContainersStarted {
		fmt.Printf("Started container %s\n", name)
	}
	for _, name := range report.ContainersMissing {
		fmt.Printf("Monitored container %s does not exist\n", name)
	}
	if !report.Intervened() && app.Config.Verbose {
		fmt.Printf("%s is active, engine %s is answering\n", app.Config.Unit, report.EngineVersion)
	}

	return nil
}
