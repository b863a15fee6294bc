package cmd

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"testing"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/monstrenyatko/docker-watchdog/internal/docker"
	"github.com/monstrenyatko/docker-watchdog/internal/testutil"
)

// doctorDeps returns DoctorDeps where every probe succeeds.
func doctorDeps(t *testing.T, client docker.Client) DoctorDeps {
	return DoctorDeps{
		CommonDeps: CommonDeps{
			Clock:      clock.NewMock(),
			FileSystem: &FileSystemOps{},
			Logger:     testutil.NewTestLogger(t),
		},
		ViperConfigFile: func() string { return "" },
		GetOS:           func() string { return "linux" },
		CheckBus:        func(_ context.Context) error { return nil },
		CheckUnit:       func(_ context.Context, _ string) (bool, error) { return true, nil },
		NewClient:       func(_ string) (docker.Client, error) { return client, nil },
	}
}

// runDoctor executes the doctor with injected deps and captures stdout.
func runDoctor(t *testing.T, app *App, deps DoctorDeps) (string, error) {
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	err := NewDoctorCommand().Run(context.Background(), app, DoctorOptions{}, deps)

	_ = w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)
	return buf.String(), err
}

func TestDoctorCommand_AllChecksPass(t *testing.T) {
	app := NewAppBuilder(t).Build(t)

	output, err := runDoctor(t, app, doctorDeps(t, healthyEngineClient()))
	require.NoError(t, err)
	assert.Contains(t, output, "System Health Check Results:")
	assert.Contains(t, output, "✓ System Requirements: systemd is available")
	assert.Contains(t, output, "✓ Configuration File: No configuration file, using built-in defaults")
	assert.Contains(t, output, "✓ D-Bus Connection: Connected to the system bus")
	assert.Contains(t, output, "✓ Docker Unit: Unit docker.service is loaded")
	assert.Contains(t, output, "✓ Engine API: Engine version 27.0.1 is answering")
	assert.Contains(t, output, "✓ All checks passed")
}

// TestDoctorCommand_SystemRequirementsFailure tests that a failing validator
// becomes a failed check instead of aborting the run.
func TestDoctorCommand_SystemRequirementsFailure(t *testing.T) {
	app := NewAppBuilder(t).
		WithValidator(&MockValidator{
			SystemRequirementsFunc: func() error {
				return errors.New("systemctl not found in PATH")
			},
		}).
		Build(t)

	output, err := runDoctor(t, app, doctorDeps(t, healthyEngineClient()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "doctor found 1 issues")
	assert.Contains(t, output, "✗ System Requirements: systemctl not found in PATH")
	assert.Contains(t, output, "Ensure systemctl is in your PATH")
	assert.Contains(t, output, "✓ Engine API")
}

// TestDoctorCommand_BusFailure tests that the unit check is skipped when the
// bus is unreachable.
func TestDoctorCommand_BusFailure(t *testing.T) {
	app := NewAppBuilder(t).Build(t)

	deps := doctorDeps(t, healthyEngineClient())
	deps.CheckBus = func(_ context.Context) error {
		return errors.New("dial unix /run/dbus/system_bus_socket: no such file")
	}
	deps.CheckUnit = func(_ context.Context, _ string) (bool, error) {
		t.Fatal("unit check should not run without a bus")
		return false, nil
	}

	output, err := runDoctor(t, app, deps)
	require.Error(t, err)
	assert.Contains(t, output, "✗ D-Bus Connection: Could not connect to the system bus")
	assert.Contains(t, output, "Use --user if you manage a rootless Docker in a user session")
	assert.NotContains(t, output, "Docker Unit")
}

func TestDoctorCommand_UnitNotLoaded(t *testing.T) {
	app := NewAppBuilder(t).Build(t)

	deps := doctorDeps(t, healthyEngineClient())
	deps.CheckUnit = func(_ context.Context, _ string) (bool, error) {
		return false, nil
	}

	output, err := runDoctor(t, app, deps)
	require.Error(t, err)
	assert.Contains(t, output, "✗ Docker Unit: Unit docker.service is not loaded")
	assert.Contains(t, output, "Reload unit definitions: systemctl daemon-reload")
}

func TestDoctorCommand_EngineDown(t *testing.T) {
	app := NewAppBuilder(t).Build(t)

	client := &docker.MockClient{
		ServerVersionFunc: func(_ context.Context) (string, error) {
			return "", errors.New("connection refused")
		},
	}

	output, err := runDoctor(t, app, doctorDeps(t, client))
	require.Error(t, err)
	assert.Contains(t, output, "✗ Engine API: Engine is not answering: connection refused")
	assert.Contains(t, output, "Run a watchdog pass to restart the engine: docker-watchdog check")
}

func TestDoctorCommand_MissingContainer(t *testing.T) {
	client := healthyEngineClient()
	client.ContainerStateFunc = func(_ context.Context, nameOrID string) (*docker.ContainerState, error) {
		return nil, docker.NewContainerNotFoundError(nameOrID)
	}

	app := NewAppBuilder(t).
		WithConfig(testutil.WithContainers("ghost")).
		Build(t)

	output, err := runDoctor(t, app, doctorDeps(t, client))
	require.Error(t, err)
	assert.Contains(t, output, "✓ Workload Configuration: 1 containers monitored")
	assert.Contains(t, output, "✗ Container: ghost: Container does not exist")
	assert.Contains(t, output, "Check the container name in the configuration")
}

// TestDoctorCommand_SummaryOutput tests the non-verbose text rendering.
func TestDoctorCommand_SummaryOutput(t *testing.T) {
	app := NewAppBuilder(t).
		WithVerbose(false).
		Build(t)

	deps := doctorDeps(t, healthyEngineClient())
	deps.CheckUnit = func(_ context.Context, _ string) (bool, error) {
		return false, nil
	}

	output, err := runDoctor(t, app, deps)
	require.Error(t, err)
	assert.Contains(t, output, "Issues found:")
	assert.Contains(t, output, "1 checks failed. Run with --verbose for details.")
	assert.NotContains(t, output, "System Health Check Results:")
}

func TestDoctorCommand_StructuredOutput(t *testing.T) {
	app := NewAppBuilder(t).
		WithOutputFormat("json").
		Build(t)

	output, err := runDoctor(t, app, doctorDeps(t, healthyEngineClient()))
	require.NoError(t, err)
	assert.Contains(t, output, `"overall": "passed"`)
	assert.Contains(t, output, `"status": "passed"`)
	assert.Contains(t, output, `"failed": 0`)
}

// TestDoctorCommand_Help tests help output.
func TestDoctorCommand_Help(t *testing.T) {
	cmd := NewDoctorCommand().GetCobraCommand()
	output, err := ExecuteCommandWithCapture(t, cmd, []string{"--help"})

	require.NoError(t, err)
	assert.Contains(t, output, "Check system health and configuration")
	assert.Contains(t, output, "System requirements")
	assert.Contains(t, output, "D-Bus connectivity")
}
