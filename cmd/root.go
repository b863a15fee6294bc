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
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/monstrenyatko/docker-watchdog/internal/config"
	"github.com/monstrenyatko/docker-watchdog/internal/log"
	"github.com/monstrenyatko/docker-watchdog/internal/validate"
)

// RootCommand represents the root command for docker-watchdog CLI.
type RootCommand struct{}

// NewRootCommand creates a new RootCommand.
func NewRootCommand() *RootCommand {
	return &RootCommand{}
}

// GetCobraCommand returns the cobra root command for docker-watchdog CLI.
func (c *RootCommand) GetCobraCommand() *cobra.Command {
	var (
		configFilePath string
		userMode       bool
		verbose        bool
		outputFormat   string
		unitName       string
		attempts       int
		attemptDelay   time.Duration
		containers     []string
		composeFile    string
		dockerHost     string
	)

	rootCmd := &cobra.Command{
		Use:   "docker-watchdog",
		Short: "Docker-Watchdog keeps a systemd-managed Docker daemon and its containers running.",
		Long: `Docker-Watchdog keeps a systemd-managed Docker daemon and its containers running.

It reads the state of the docker.service unit over the systemd D-Bus API,
restarts the unit when it is inactive or the Engine API has stopped
answering, and starts monitored containers that are not running. Invoked
without arguments it performs a single watchdog pass and exits non-zero when
the daemon could not be brought back to health, which makes it suitable for
cron or a systemd timer.`,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			configProvider := config.NewDefaultConfigProvider()
			if configFilePath != "" {
				configProvider.SetConfigFilePath(configFilePath)
			}
			cfg := configProvider.InitConfig()

			if verbose {
				cfg.Verbose = true
			}
			if userMode {
				cfg.UserMode = true
			}
			if cmd.Flags().Changed("unit") {
				cfg.Unit = unitName
			}
			if cmd.Flags().Changed("attempts") {
				cfg.Attempts = attempts
			}
			if cmd.Flags().Changed("attempt-delay") {
				cfg.AttemptDelay = attemptDelay
			}
			if cmd.Flags().Changed("docker-host") {
				cfg.DockerHost = dockerHost
			}
			if cmd.Flags().Changed("compose-file") {
				cfg.ComposeFile = composeFile
			}
			if len(containers) > 0 {
				cfg.Containers = append(cfg.Containers, containers...)
			}

			if err := cfg.Validate(); err != nil {
				return err
			}
			if err := validate.ValidateUnitName(cfg.Unit); err != nil {
				return err
			}
			if err := ValidateOutputFormat(outputFormat); err != nil {
				return err
			}

			log.Init(cfg.Verbose)
			logger := log.GetLogger()

			if cfg.Verbose {
				fmt.Printf("%s using config: %s\n\n", cmd.Root().Use, viper.GetViper().ConfigFileUsed())
			}

			app := NewApp(logger, configProvider)
			app.OutputFormat = outputFormat

			ctx := context.WithValue(cmd.Context(), appContextKey, app)
			cmd.SetContext(ctx)

			return nil
		},
		// Bare invocation is the scheduler entry point: one watchdog pass,
		// no arguments, exit status toward cron or the timer unit.
		RunE: func(cmd *cobra.Command, _ []string) error {
			checkCmd := NewCheckCommand()
			app := checkCmd.getApp(cmd)
			deps := checkCmd.buildDeps(app)
			return checkCmd.Run(cmd.Context(), app, CheckOptions{}, deps)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&userMode, "user", "u", false, "Talk to the systemd user bus (rootless Docker)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configFilePath, "config", "", "Path to the configuration file")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "text", "Output format (text, json, yaml)")
	rootCmd.PersistentFlags().StringVar(&unitName, "unit", config.DefaultUnit, "Name of the systemd unit to watch")
	rootCmd.PersistentFlags().IntVar(&attempts, "attempts", config.DefaultAttempts, "Engine probe attempts per pass (1-5)")
	rootCmd.PersistentFlags().DurationVar(&attemptDelay, "attempt-delay", config.DefaultAttemptDelay, "Delay between engine probe attempts")
	rootCmd.PersistentFlags().StringArrayVar(&containers, "container", nil, "Container to watch, repeatable")
	rootCmd.PersistentFlags().StringVar(&composeFile, "compose-file", "", "Compose file whose services are watched")
	rootCmd.PersistentFlags().StringVar(&dockerHost, "docker-host", "", "Docker Engine API endpoint (default: environment)")

	rootCmd.AddCommand(
		NewCheckCommand().GetCobraCommand(),
		NewDaemonCommand().GetCobraCommand(),
		NewStatusCommand().GetCobraCommand(),
		NewShowCommand().GetCobraCommand(),
		NewDoctorCommand().GetCobraCommand(),
		NewConfigCommand().GetCobraCommand(),
		NewUpdateCommand().GetCobraCommand(),
		NewVersionCommand().GetCobraCommand(),
	)

	return rootCmd
}
