// Package cmd provides the command line interface for docker-watchdog
package cmd

import (
	"github.com/monstrenyatko/docker-watchdog/internal/config"
	"github.com/monstrenyatko/docker-watchdog/internal/docker"
	"github.com/monstrenyatko/docker-watchdog/internal/execx"
	"github.com/monstrenyatko/docker-watchdog/internal/log"
	"github.com/monstrenyatko/docker-watchdog/internal/systemd"
	"github.com/monstrenyatko/docker-watchdog/internal/validate"
	"github.com/monstrenyatko/docker-watchdog/internal/watchdog"
)

// contextKey is the type for values stored in command contexts.
type contextKey string

// appContextKey is the context key under which the App travels from the root
// command to subcommands.
const appContextKey contextKey = "app"

// App holds the application dependencies for the command line interface.
type App struct {
	Logger            log.Logger
	Config            *config.Settings
	ConfigProvider    config.Provider
	Runner            execx.Runner
	Validator         SystemValidator
	ConnectionFactory systemd.ConnectionFactory
	SystemdManager    systemd.Manager
	ClientFactory     docker.ClientFactory
	Watchdog          *watchdog.Watchdog
	OutputFormat      string
}

// NewApp creates a new App with all dependencies initialized.
func NewApp(logger log.Logger, configProv config.Provider) *App {
	cfg := configProv.GetConfig()
	runner := execx.NewRealRunner()
	validator := validate.NewValidator(logger, runner)

	connectionFactory := systemd.NewConnectionFactory(logger)
	manager := systemd.NewDefaultManager(connectionFactory, configProv, logger, runner)
	clientFactory := docker.NewClientFactory(logger)

	return &App{
		Logger:            logger,
		Config:            cfg,
		ConfigProvider:    configProv,
		Runner:            runner,
		Validator:         validator,
		ConnectionFactory: connectionFactory,
		SystemdManager:    manager,
		ClientFactory:     clientFactory,
		Watchdog:          watchdog.NewWatchdog(manager, clientFactory, configProv, logger),
		OutputFormat:      "text",
	}
}
