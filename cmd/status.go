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
	"strconv"
	"time"

	"github.com/SerhiiCho/timeago/v3"
	"github.com/fatih/color"
	"github.com/rodaine/table"
	"github.com/spf13/cobra"

	"github.com/monstrenyatko/docker-watchdog/internal/docker"
	"github.com/monstrenyatko/docker-watchdog/internal/systemd"
)

// StatusOptions holds status command options.
type StatusOptions struct{}

// StatusDeps holds status dependencies.
type StatusDeps struct {
	CommonDeps
}

// StatusCommand represents the status command.
type StatusCommand struct{}

// NewStatusCommand creates a new StatusCommand.
func NewStatusCommand() *StatusCommand {
	return &StatusCommand{}
}

// getApp retrieves the App from the command context.
func (c *StatusCommand) getApp(cmd *cobra.Command) *App {
	return cmd.Context().Value(appContextKey).(*App)
}

// EngineStatusInfo summarizes the engine-level state for display.
type EngineStatusInfo struct {
	Available         bool   `json:"available" yaml:"available"`
	Version           string `json:"version,omitempty" yaml:"version,omitempty"`
	Containers        int    `json:"containers" yaml:"containers"`
	ContainersRunning int    `json:"containersRunning" yaml:"containersRunning"`
	Error             string `json:"error,omitempty" yaml:"error,omitempty"`
}

// ContainerStatusInfo is one monitored container's state for display.
type ContainerStatusInfo struct {
	Name    string `json:"name" yaml:"name"`
	Service string `json:"service,omitempty" yaml:"service,omitempty"`
	Status  string `json:"status" yaml:"status"`
	Health  string `json:"health,omitempty" yaml:"health,omitempty"`
}

// StatusOutput is the structured report of the status command.
type StatusOutput struct {
	Unit       *systemd.UnitStatus   `json:"unit" yaml:"unit"`
	Engine     *EngineStatusInfo     `json:"engine" yaml:"engine"`
	Containers []ContainerStatusInfo `json:"containers,omitempty" yaml:"containers,omitempty"`
}

// GetCobraCommand returns the cobra command for status operations.
func (c *StatusCommand) GetCobraCommand() *cobra.Command {
	var opts StatusOptions

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show the state of the watched unit and its containers",
		Long: `Show the state of the watched unit, the Docker engine, and the monitored
containers. Status is read-only: nothing is restarted or started.`,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			app := c.getApp(cmd)
			return app.Validator.SystemRequirements()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			app := c.getApp(cmd)
			deps := c.buildDeps(app)
			return c.Run(cmd.Context(), app, opts, deps)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	return statusCmd
}

// buildDeps creates production dependencies for the status command.
func (c *StatusCommand) buildDeps(app *App) StatusDeps {
	return StatusDeps{
		CommonDeps: NewRootDeps(app),
	}
}

// Run executes the status command with injected dependencies.
func (c *StatusCommand) Run(ctx context.Context, app *App, _ StatusOptions, deps StatusDeps) error {
	unitStatus, err := app.SystemdManager.Status(ctx, app.Config.Unit)
	if err != nil {
		return fmt.Errorf("failed to query unit %s: %w", app.Config.Unit, err)
	}

	output := StatusOutput{Unit: unitStatus, Engine: &EngineStatusInfo{}}

	client, err := app.ClientFactory.NewClient(app.Config.DockerHost)
	if err != nil {
		output.Engine.Error = err.Error()
	} else {
		defer func() { _ = client.Close() }()
		c.fillEngineStatus(ctx, client, output.Engine)
		if output.Engine.Available {
			output.Containers = c.containerStatuses(ctx, app, deps, client)
		}
	}

	if app.OutputFormat != "text" {
		return PrintOutput(app.OutputFormat, output)
	}

	c.displayStatus(deps, output)
	return nil
}

// fillEngineStatus probes the engine once; the status command never retries,
// the watchdog pass owns the attempt budget.
func (c *StatusCommand) fillEngineStatus(ctx context.Context, client docker.Client, engine *EngineStatusInfo) {
	version, err := client.ServerVersion(ctx)
	if err != nil {
		engine.Error = err.Error()
		return
	}
	engine.Available = true
	engine.Version = version

	if info, err := client.Info(ctx); err == nil {
		engine.Containers = info.Containers
		engine.ContainersRunning = info.ContainersRunning
	}
}

// containerStatuses inspects the monitored containers. Errors degrade to a
// status string so one broken container does not hide the rest.
func (c *StatusCommand) containerStatuses(ctx context.Context, app *App, deps StatusDeps, client docker.Client) []ContainerStatusInfo {
	workloads, err := app.Watchdog.Workloads(ctx)
	if err != nil {
		deps.Logger.Warn("Could not resolve monitored containers", "error", err)
		return nil
	}

	infos := make([]ContainerStatusInfo, 0, len(workloads))
	for _, wl := range workloads {
		info := ContainerStatusInfo{Name: wl.Container, Service: wl.Service}
		state, err := client.ContainerState(ctx, wl.Container)
		switch {
		case docker.IsContainerNotFoundError(err):
			info.Status = "missing"
		case err != nil:
			deps.Logger.Debug("Error inspecting container", "container", wl.Container, "error", err)
			info.Status = "unknown"
		default:
			info.Status = state.Status
			info.Health = state.Health
		}
		infos = append(infos, info)
	}
	return infos
}

// displayStatus renders the text view.
func (c *StatusCommand) displayStatus(deps StatusDeps, output StatusOutput) {
	headerFmt := color.New(color.FgGreen, color.Underline).SprintfFunc()
	columnFmt := color.New(color.FgYellow).SprintfFunc()

	unit := output.Unit
	tbl := table.New("Unit", "Load", "Active", "Sub", "PID", "Since")
	tbl.WithHeaderFormatter(headerFmt).WithFirstColumnFormatter(columnFmt)
	tbl.AddRow(unit.Name, unit.LoadState, unit.ActiveState, unit.SubState, orDash(pidString(unit.PID)), c.sinceString(deps, unit.Since))
	tbl.Print()

	fmt.Println()
	switch {
	case output.Engine.Available:
		fmt.Printf("Engine: version %s, %d/%d containers running\n", output.Engine.Version, output.Engine.ContainersRunning, output.Engine.Containers)
	case output.Engine.Error != "":
		fmt.Printf("Engine: not answering (%s)\n", output.Engine.Error)
	}

	if len(output.Containers) == 0 {
		return
	}

	fmt.Println()
	ctbl := table.New("Container", "Service", "Status", "Health")
	ctbl.WithHeaderFormatter(headerFmt).WithFirstColumnFormatter(columnFmt)
	for _, info := range output.Containers {
		ctbl.AddRow(info.Name, orDash(info.Service), info.Status, orDash(info.Health))
	}
	ctbl.Print()
}

// sinceString renders the unit's active-since timestamp as a relative time.
func (c *StatusCommand) sinceString(deps StatusDeps, since string) string {
	if since == "" {
		return "-"
	}
	ts, err := time.Parse(time.RFC3339, since)
	if err != nil {
		return since
	}
	rel, err := timeago.Parse(ts)
	if err != nil {
		deps.Logger.Debug("Error rendering active-since time", "error", err)
		return since
	}
	return rel
}

func pidString(pid int) string {
	if pid == 0 {
		return ""
	}
	return strconv.Itoa(pid)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
