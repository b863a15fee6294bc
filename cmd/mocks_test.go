package cmd

import (
	"testing"

	"github.com/monstrenyatko/docker-watchdog/internal/docker"
	"github.com/monstrenyatko/docker-watchdog/internal/execx"
	"github.com/monstrenyatko/docker-watchdog/internal/log"
	"github.com/monstrenyatko/docker-watchdog/internal/systemd"
	"github.com/monstrenyatko/docker-watchdog/internal/testutil"
	"github.com/monstrenyatko/docker-watchdog/internal/watchdog"
)

// MockValidator implements SystemValidator for testing.
type MockValidator struct {
	SystemRequirementsFunc func() error
}

func (m *MockValidator) SystemRequirements() error {
	if m.SystemRequirementsFunc != nil {
		return m.SystemRequirementsFunc()
	}
	return nil
}

// AppBuilder provides a fluent interface for building test Apps. The watchdog
// inside the built App runs real pass logic against the injected mocks.
type AppBuilder struct {
	logger            log.Logger
	configOpts        []testutil.ConfigOption
	validator         SystemValidator
	manager           systemd.Manager
	clientFactory     docker.ClientFactory
	connectionFactory systemd.ConnectionFactory
	outputFormat      string
}

// NewAppBuilder creates a new AppBuilder with sensible defaults.
func NewAppBuilder(t *testing.T) *AppBuilder {
	return &AppBuilder{
		logger:        testutil.NewTestLogger(t),
		validator:     &MockValidator{},
		manager:       &systemd.MockManager{},
		clientFactory: &docker.MockClientFactory{Client: &docker.MockClient{}},
		outputFormat:  "text",
	}
}

func (b *AppBuilder) WithValidator(v SystemValidator) *AppBuilder {
	b.validator = v
	return b
}

func (b *AppBuilder) WithConfig(opts ...testutil.ConfigOption) *AppBuilder {
	b.configOpts = append(b.configOpts, opts...)
	return b
}

func (b *AppBuilder) WithVerbose(verbose bool) *AppBuilder {
	b.configOpts = append(b.configOpts, testutil.WithVerbose(verbose))
	return b
}

func (b *AppBuilder) WithSystemdManager(m systemd.Manager) *AppBuilder {
	b.manager = m
	return b
}

func (b *AppBuilder) WithClientFactory(f docker.ClientFactory) *AppBuilder {
	b.clientFactory = f
	return b
}

func (b *AppBuilder) WithConnectionFactory(f systemd.ConnectionFactory) *AppBuilder {
	b.connectionFactory = f
	return b
}

func (b *AppBuilder) WithOutputFormat(format string) *AppBuilder {
	b.outputFormat = format
	return b
}

func (b *AppBuilder) Build(t *testing.T) *App {
	provider := testutil.NewMockConfig(t, b.configOpts...)
	return &App{
		Logger:            b.logger,
		Config:            provider.GetConfig(),
		ConfigProvider:    provider,
		Runner:            &execx.RealRunner{},
		Validator:         b.validator,
		ConnectionFactory: b.connectionFactory,
		SystemdManager:    b.manager,
		ClientFactory:     b.clientFactory,
		Watchdog:          watchdog.NewWatchdog(b.manager, b.clientFactory, provider, b.logger),
		OutputFormat:      b.outputFormat,
	}
}
