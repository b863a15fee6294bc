// Package cmd provides config init command functionality for the docker-watchdog CLI
package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

// defaultConfigTemplate is the starter configuration. Durations use the
// human-readable form viper parses back ("30s", "5m"), not nanosecond ints.
const defaultConfigTemplate = `# docker-watchdog configuration
#
# Unit watched over D-Bus and restarted when it is down.
unit: docker.service

# Engine probe attempts per pass (1-5) and the pause between them.
attempts: 3
attemptDelay: 30s

# Pause between passes in daemon mode.
interval: 5m

# Containers the watchdog starts when they are stopped.
#containers:
#  - nginx
#  - redis

# Compose project supplying container names and start order.
#composeFile: /opt/stack/docker-compose.yml

# Docker Engine API endpoint. Empty means the environment defaults.
#dockerHost: unix:///var/run/docker.sock
`

// InitOptions holds init command options.
type InitOptions struct {
	Force bool
}

// InitDeps holds init dependencies.
type InitDeps struct {
	CommonDeps
	UserHomeDir func() (string, error)
	MkdirAll    func(string, os.FileMode) error
	WriteFile   func(string, []byte, os.FileMode) error
}

// InitCommand represents the config init command.
type InitCommand struct{}

// NewInitCommand creates a new InitCommand.
func NewInitCommand() *InitCommand {
	return &InitCommand{}
}

// getApp retrieves the App from the command context.
func (c *InitCommand) getApp(cmd *cobra.Command) *App {
	return cmd.Context().Value(appContextKey).(*App)
}

// GetCobraCommand returns the cobra command for config init.
func (c *InitCommand) GetCobraCommand() *cobra.Command {
	var opts InitOptions

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a default configuration file",
		Long:  "Create a commented starter configuration file in the user configuration directory",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app := c.getApp(cmd)
			deps := c.buildDeps()
			return c.Run(app, opts, deps)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	initCmd.Flags().BoolVarP(&opts.Force, "force", "f", false, "Overwrite existing configuration file")

	return initCmd
}

// Run executes the init command with injected dependencies.
func (c *InitCommand) Run(_ *App, opts InitOptions, deps InitDeps) error {
	// Get user home directory
	homeDir, err := deps.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get user home directory: %w", err)
	}

	// Determine config directory
	configDir := filepath.Join(homeDir, ".config", "docker-watchdog")
	configFile := filepath.Join(configDir, "config.yaml")

	// Check if config file already exists
	if _, err := os.Stat(configFile); err == nil && !opts.Force {
		return fmt.Errorf("configuration file already exists at %s, use --force to overwrite", configFile)
	}

	// Create config directory
	if err := deps.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory %s: %w", configDir, err)
	}

	// Write config file
	if err := deps.WriteFile(configFile, []byte(defaultConfigTemplate), 0644); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", configFile, err)
	}

	fmt.Printf("Configuration file created at %s\n", configFile)
	return nil
}

// buildDeps creates production dependencies for the init command.
func (c *InitCommand) buildDeps() InitDeps {
	return InitDeps{
		CommonDeps:  CommonDeps{},
		UserHomeDir: os.UserHomeDir,
		MkdirAll:    os.MkdirAll,
		WriteFile:   os.WriteFile,
	}
}
