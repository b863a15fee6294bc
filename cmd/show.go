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

// Package cmd provides unit inspection functionality for the docker-watchdog CLI
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/monstrenyatko/docker-watchdog/internal/systemd"
)

// ShowOptions holds show command options.
type ShowOptions struct{}

// ShowDeps holds show dependencies.
type ShowDeps struct {
	CommonDeps
	LoadUnitFile func(path string) (*systemd.UnitFile, error)
}

// ShowCommand represents the show command.
type ShowCommand struct{}

// NewShowCommand creates a new ShowCommand.
func NewShowCommand() *ShowCommand {
	return &ShowCommand{}
}

// getApp retrieves the App from the command context.
func (c *ShowCommand) getApp(cmd *cobra.Command) *App {
	return cmd.Context().Value(appContextKey).(*App)
}

// FragmentSection is one section of the unit fragment file.
type FragmentSection struct {
	Name    string               `json:"name" yaml:"name"`
	Options []systemd.UnitOption `json:"options" yaml:"options"`
}

// ShowOutput is the structured report of the show command.
type ShowOutput struct {
	Unit     *systemd.UnitStatus `json:"unit" yaml:"unit"`
	Fragment []FragmentSection   `json:"fragment,omitempty" yaml:"fragment,omitempty"`
}

// GetCobraCommand returns the cobra command for showing unit details.
func (c *ShowCommand) GetCobraCommand() *cobra.Command {
	var opts ShowOptions

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show the watched unit's properties and fragment file",
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

	return showCmd
}

// buildDeps creates production dependencies for the show command.
func (c *ShowCommand) buildDeps(app *App) ShowDeps {
	return ShowDeps{
		CommonDeps:   NewRootDeps(app),
		LoadUnitFile: systemd.LoadUnitFile,
	}
}

// Run executes the show command with injected dependencies.
func (c *ShowCommand) Run(ctx context.Context, app *App, _ ShowOptions, deps ShowDeps) error {
	unitStatus, err := app.SystemdManager.Status(ctx, app.Config.Unit)
	if err != nil {
		return fmt.Errorf("failed to query unit %s: %w", app.Config.Unit, err)
	}
	if !unitStatus.Found() {
		return fmt.Errorf("unit %s is not loaded", app.Config.Unit)
	}

	output := ShowOutput{Unit: unitStatus}

	if unitStatus.FragmentPath != "" {
		fragment, err := deps.LoadUnitFile(unitStatus.FragmentPath)
		if err != nil {
			deps.Logger.Debug("Could not read unit fragment", "path", unitStatus.FragmentPath, "error", err)
		} else {
			for _, name := range fragment.Sections() {
				output.Fragment = append(output.Fragment, FragmentSection{Name: name, Options: fragment.Section(name)})
			}
		}
	}

	if app.OutputFormat != "text" {
		return PrintOutput(app.OutputFormat, output)
	}

	c.displayUnit(output)
	return nil
}

// displayUnit renders the text view.
func (c *ShowCommand) displayUnit(output ShowOutput) {
	unit := output.Unit

	fmt.Printf("\n=== %s ===\n\n", unit.Name)

	fmt.Println("Status:")
	fmt.Printf("  %-20s: %s\n", "State", unit.ActiveState)
	fmt.Printf("  %-20s: %s\n", "Sub-State", unit.SubState)
	fmt.Printf("  %-20s: %s\n", "Load State", unit.LoadState)
	if unit.PID > 0 {
		fmt.Printf("  %-20s: %d\n", "Main PID", unit.PID)
	}
	if unit.Error != "" {
		fmt.Printf("  %-20s: %s\n", "Failure", unit.Error)
	}

	fmt.Println("\nUnit Information:")
	fmt.Printf("  %-20s: %s\n", "Description", unit.Description)
	fmt.Printf("  %-20s: %s\n", "Path", unit.FragmentPath)

	for _, section := range output.Fragment {
		fmt.Printf("\n%s Configuration:\n", section.Name)
		for _, opt := range section.Options {
			fmt.Printf("  %-20s: %s\n", opt.Key, opt.Value)
		}
	}
}
