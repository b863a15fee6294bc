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
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/spf13/cobra"
)

// PassPerformer runs one watchdog pass in daemon mode.
type PassPerformer interface {
	PerformPass(ctx context.Context, app *App)
}

// defaultPassPerformer delegates to the application watchdog and logs the
// outcome; a failed pass does not stop the daemon.
type defaultPassPerformer struct{}

func (defaultPassPerformer) PerformPass(ctx context.Context, app *App) {
	report, err := app.Watchdog.Run(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		app.Logger.Error("Watchdog pass failed", "unit", app.Config.Unit, "error", err)
		return
	}
	if report.Intervened() {
		app.Logger.Info("Watchdog intervened",
			"unitRestarted", report.UnitRestarted,
			"engineRestarted", report.EngineRestarted,
			"bootRecovery", report.BootRecovery,
			"started", report.ContainersStarted)
	}
}

// DaemonOptions holds daemon command options.
type DaemonOptions struct {
	Interval time.Duration
}

// DaemonDeps holds daemon dependencies.
type DaemonDeps struct {
	CommonDeps
	Notify NotifyFunc
}

// DaemonCommand represents the daemon command for docker-watchdog CLI.
type DaemonCommand struct {
	passPerformer PassPerformer
}

// NewDaemonCommand creates a new DaemonCommand.
func NewDaemonCommand() *DaemonCommand {
	return &DaemonCommand{passPerformer: defaultPassPerformer{}}
}

// getApp retrieves the App from the command context.
func (c *DaemonCommand) getApp(cmd *cobra.Command) *App {
	return cmd.Context().Value(appContextKey).(*App)
}

// GetCobraCommand returns the cobra command for daemon operations.
func (c *DaemonCommand) GetCobraCommand() *cobra.Command {
	var opts DaemonOptions

	daemonCmd := &cobra.Command{
		Use:   "daemon",
		Short: "Run the watchdog as a long-lived daemon",
		Long: `Run the watchdog as a long-lived daemon with periodic passes.

The daemon performs an initial watchdog pass and then keeps running,
repeating the pass at the configured interval. A failed pass is logged and
retried on the next tick instead of stopping the daemon.

The daemon integrates with systemd, sending readiness and watchdog
notifications when running under systemd supervision. One-shot invocation
from cron or a timer remains the primary mode; daemon mode is for
deployments that prefer a single long-running service.`,
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

	daemonCmd.Flags().DurationVarP(&opts.Interval, "interval", "i", 0, "Interval between watchdog passes (default: the configured interval)")

	return daemonCmd
}

// buildDeps creates production dependencies for the daemon command.
func (c *DaemonCommand) buildDeps(app *App) DaemonDeps {
	return DaemonDeps{
		CommonDeps: NewRootDeps(app),
		Notify:     daemon.SdNotify,
	}
}

// Run starts the daemon loop with injected dependencies. It returns when the
// context ends.
func (c *DaemonCommand) Run(ctx context.Context, app *App, opts DaemonOptions, deps DaemonDeps) error {
	if opts.Interval > 0 {
		app.Config.Interval = opts.Interval
	}

	deps.Logger.Info("Starting watchdog daemon", "unit", app.Config.Unit, "interval", app.Config.Interval)

	if app.Config.Verbose {
		deps.Logger.Info("Performing initial watchdog pass")
	}
	c.passPerformer.PerformPass(ctx, app)

	if sent, err := deps.Notify(false, daemon.SdNotifyReady); err != nil {
		deps.Logger.Warn("Failed to notify systemd of readiness", "error", err)
	} else if sent {
		deps.Logger.Info("Notified systemd that daemon is ready")
	}

	ticker := deps.Clock.Ticker(app.Config.Interval)
	defer ticker.Stop()

	// Send periodic watchdog notifications if configured
	watchdogTicker := deps.Clock.Ticker(30 * time.Second)
	defer watchdogTicker.Stop()

	for {
		select {
		case <-ticker.C:
			deps.Logger.Debug("Starting scheduled watchdog pass")
			c.passPerformer.PerformPass(ctx, app)
		case <-watchdogTicker.C:
			if sent, err := deps.Notify(false, daemon.SdNotifyWatchdog); err != nil {
				deps.Logger.Debug("Failed to send watchdog notification", "error", err)
			} else if sent {
				deps.Logger.Debug("Sent watchdog notification to systemd")
			}
		case <-ctx.Done():
			deps.Logger.Info("Watchdog daemon stopping")
			if _, err := deps.Notify(false, daemon.SdNotifyStopping); err != nil {
				deps.Logger.Debug("Failed to notify systemd of shutdown", "error", err)
			}
			return ctx.Err()
		}
	}
}
