package watchdog

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/monstrenyatko/docker-watchdog/internal/docker"
	"github.com/monstrenyatko/docker-watchdog/internal/systemd"
	"github.com/monstrenyatko/docker-watchdog/internal/testutil"
)

func newWatchdogForTest(t *testing.T, manager systemd.Manager, factory docker.ClientFactory, opts ...testutil.ConfigOption) *Watchdog {
	t.Helper()
	return NewWatchdog(manager, factory, testutil.NewMockConfig(t, opts...), testutil.NewTestLogger(t))
}

func activeStatus() *systemd.UnitStatus {
	return &systemd.UnitStatus{Name: "docker.service", LoadState: "loaded", ActiveState: "active", SubState: "running"}
}

func inactiveStatus() *systemd.UnitStatus {
	return &systemd.UnitStatus{Name: "docker.service", LoadState: "loaded", ActiveState: "inactive", SubState: "dead"}
}

// healthyClient answers the version probe and reports running containers.
func healthyClient() *docker.MockClient {
	return &docker.MockClient{
		ServerVersionFunc: func(ctx context.Context) (string, error) {
			return "28.1.1", nil
		},
		InfoFunc: func(ctx context.Context) (*docker.EngineInfo, error) {
			return &docker.EngineInfo{ServerVersion: "28.1.1", Containers: 2, ContainersRunning: 2}, nil
		},
	}
}

func writeComposeProject(t *testing.T, content string) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "stack")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "compose.yaml"), []byte(content), 0o644))
	return dir
}

func TestRunHealthyPass(t *testing.T) {
	manager := &systemd.MockManager{}
	client := healthyClient()
	w := newWatchdogForTest(t, manager, &docker.MockClientFactory{Client: client})

	report, err := w.Run(context.Background())

	require.NoError(t, err)
	assert.False(t, report.Intervened())
	assert.Empty(t, manager.RestartCalls)
	assert.Equal(t, "28.1.1", report.EngineVersion)
	require.NotNil(t, report.Unit)
	assert.True(t, report.Unit.Active())
	require.NotNil(t, report.Engine)
	assert.Equal(t, 2, report.Engine.ContainersRunning)
}

// Consecutive passes against a healthy unit must never issue a restart.
func TestRunRepeatedPassesAreIdempotent(t *testing.T) {
	manager := &systemd.MockManager{}
	w := newWatchdogForTest(t, manager, &docker.MockClientFactory{Client: healthyClient()})

	for i := 0; i < 3; i++ {
		report, err := w.Run(context.Background())
		require.NoError(t, err)
		assert.False(t, report.Intervened())
	}

	assert.Empty(t, manager.RestartCalls)
}

func TestRunUnitRecovery(t *testing.T) {
	t.Run("restarts an inactive unit and continues", func(t *testing.T) {
		statusCalls := 0
		manager := &systemd.MockManager{
			StatusFunc: func(ctx context.Context, unitName string) (*systemd.UnitStatus, error) {
				statusCalls++
				if statusCalls == 1 {
					return inactiveStatus(), nil
				}
				return activeStatus(), nil
			},
		}
		client := healthyClient()
		w := newWatchdogForTest(t, manager, &docker.MockClientFactory{Client: client})

		report, err := w.Run(context.Background())

		require.NoError(t, err)
		assert.Equal(t, []string{"docker.service"}, manager.RestartCalls)
		assert.True(t, report.UnitRestarted)
		assert.True(t, report.Intervened())
		assert.Equal(t, "28.1.1", report.EngineVersion)
	})

	t.Run("skips engine checks when the unit stays inactive after restart", func(t *testing.T) {
		manager := &systemd.MockManager{
			StatusFunc: func(ctx context.Context, unitName string) (*systemd.UnitStatus, error) {
				return inactiveStatus(), nil
			},
		}
		probed := false
		client := &docker.MockClient{
			ServerVersionFunc: func(ctx context.Context) (string, error) {
				probed = true
				return "28.1.1", nil
			},
		}
		w := newWatchdogForTest(t, manager, &docker.MockClientFactory{Client: client})

		report, err := w.Run(context.Background())

		require.NoError(t, err)
		assert.Equal(t, []string{"docker.service"}, manager.RestartCalls)
		assert.True(t, report.UnitRestarted)
		assert.False(t, probed)
		assert.Empty(t, report.EngineVersion)
	})

	t.Run("fails when the unit is not found", func(t *testing.T) {
		manager := &systemd.MockManager{
			StatusFunc: func(ctx context.Context, unitName string) (*systemd.UnitStatus, error) {
				return &systemd.UnitStatus{Name: unitName, LoadState: "not-found"}, nil
			},
		}
		w := newWatchdogForTest(t, manager, &docker.MockClientFactory{})

		_, err := w.Run(context.Background())

		require.Error(t, err)
		assert.True(t, systemd.IsUnitNotFoundError(err))
		assert.Empty(t, manager.RestartCalls)
	})

	t.Run("fails when the status query fails", func(t *testing.T) {
		manager := &systemd.MockManager{
			StatusFunc: func(ctx context.Context, unitName string) (*systemd.UnitStatus, error) {
				return nil, systemd.NewConnectionError(false, fmt.Errorf("no bus"))
			},
		}
		w := newWatchdogForTest(t, manager, &docker.MockClientFactory{})

		_, err := w.Run(context.Background())

		require.Error(t, err)
		assert.True(t, systemd.IsConnectionError(err))
		assert.Empty(t, manager.RestartCalls)
	})

	t.Run("fails when the restart job fails", func(t *testing.T) {
		manager := &systemd.MockManager{
			StatusFunc: func(ctx context.Context, unitName string) (*systemd.UnitStatus, error) {
				return inactiveStatus(), nil
			},
			RestartFunc: func(ctx context.Context, unitName string) error {
				return systemd.NewJobFailedError("Restart", unitName, "failed")
			},
		}
		w := newWatchdogForTest(t, manager, &docker.MockClientFactory{})

		report, err := w.Run(context.Background())

		require.Error(t, err)
		assert.True(t, systemd.IsJobFailedError(err))
		assert.Len(t, manager.RestartCalls, 1)
		assert.False(t, report.UnitRestarted)
	})
}

func TestRunEngineRecovery(t *testing.T) {
	t.Run("probe retries within the attempt budget", func(t *testing.T) {
		manager := &systemd.MockManager{}
		probes := 0
		client := healthyClient()
		client.ServerVersionFunc = func(ctx context.Context) (string, error) {
			probes++
			if probes < 3 {
				return "", fmt.Errorf("connection refused")
			}
			return "28.1.1", nil
		}
		w := newWatchdogForTest(t, manager, &docker.MockClientFactory{Client: client})

		report, err := w.Run(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 3, probes)
		assert.Empty(t, manager.RestartCalls)
		assert.False(t, report.EngineRestarted)
		assert.Equal(t, "28.1.1", report.EngineVersion)
	})

	t.Run("restarts the unit when the probe budget runs out", func(t *testing.T) {
		manager := &systemd.MockManager{}
		probes := 0
		client := healthyClient()
		client.ServerVersionFunc = func(ctx context.Context) (string, error) {
			probes++
			if probes <= 3 {
				return "", fmt.Errorf("connection refused")
			}
			return "28.1.1", nil
		}
		w := newWatchdogForTest(t, manager, &docker.MockClientFactory{Client: client})

		report, err := w.Run(context.Background())

		require.NoError(t, err)
		assert.Equal(t, []string{"docker.service"}, manager.RestartCalls)
		assert.True(t, report.EngineRestarted)
		assert.Equal(t, 4, probes)
		assert.Equal(t, "28.1.1", report.EngineVersion)
	})

	t.Run("fails when the engine stays down after the restart", func(t *testing.T) {
		manager := &systemd.MockManager{}
		client := &docker.MockClient{
			ServerVersionFunc: func(ctx context.Context) (string, error) {
				return "", fmt.Errorf("connection refused")
			},
		}
		w := newWatchdogForTest(t, manager, &docker.MockClientFactory{Client: client})

		report, err := w.Run(context.Background())

		require.Error(t, err)
		assert.Contains(t, err.Error(), "still not answering after restart")
		assert.Len(t, manager.RestartCalls, 1)
		assert.True(t, report.EngineRestarted)
	})

	t.Run("does not restart on a cancelled context", func(t *testing.T) {
		manager := &systemd.MockManager{}
		client := &docker.MockClient{
			ServerVersionFunc: func(ctx context.Context) (string, error) {
				return "", fmt.Errorf("connection refused")
			},
		}
		w := newWatchdogForTest(t, manager, &docker.MockClientFactory{Client: client})

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := w.Run(ctx)

		require.Error(t, err)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Empty(t, manager.RestartCalls)
	})

	t.Run("fails when the client cannot be created", func(t *testing.T) {
		manager := &systemd.MockManager{}
		factory := &docker.MockClientFactory{
			NewClientFunc: func(host string) (docker.Client, error) {
				return nil, fmt.Errorf("no engine endpoint")
			},
		}
		w := newWatchdogForTest(t, manager, factory)

		_, err := w.Run(context.Background())

		require.Error(t, err)
		assert.Contains(t, err.Error(), "no engine endpoint")
		assert.Empty(t, manager.RestartCalls)
	})
}

func TestRunBootRecovery(t *testing.T) {
	t.Run("an engine without containers is healthy", func(t *testing.T) {
		manager := &systemd.MockManager{}
		infoCalls := 0
		client := healthyClient()
		client.InfoFunc = func(ctx context.Context) (*docker.EngineInfo, error) {
			infoCalls++
			return &docker.EngineInfo{Containers: 0, ContainersRunning: 0}, nil
		}
		w := newWatchdogForTest(t, manager, &docker.MockClientFactory{Client: client})

		report, err := w.Run(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 1, infoCalls)
		assert.False(t, report.BootRecovery)
		assert.Empty(t, manager.RestartCalls)
	})

	t.Run("a stall that clears within the budget needs no restart", func(t *testing.T) {
		manager := &systemd.MockManager{}
		infoCalls := 0
		client := healthyClient()
		client.InfoFunc = func(ctx context.Context) (*docker.EngineInfo, error) {
			infoCalls++
			if infoCalls == 1 {
				return &docker.EngineInfo{Containers: 4, ContainersRunning: 0}, nil
			}
			return &docker.EngineInfo{Containers: 4, ContainersRunning: 2}, nil
		}
		w := newWatchdogForTest(t, manager, &docker.MockClientFactory{Client: client})

		report, err := w.Run(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 2, infoCalls)
		assert.False(t, report.BootRecovery)
		assert.Empty(t, manager.RestartCalls)
		require.NotNil(t, report.Engine)
		assert.Equal(t, 2, report.Engine.ContainersRunning)
	})

	t.Run("restarts the unit when no containers come up", func(t *testing.T) {
		manager := &systemd.MockManager{}
		infoCalls := 0
		client := healthyClient()
		client.InfoFunc = func(ctx context.Context) (*docker.EngineInfo, error) {
			infoCalls++
			return &docker.EngineInfo{Containers: 4, ContainersRunning: 0}, nil
		}
		w := newWatchdogForTest(t, manager, &docker.MockClientFactory{Client: client})

		report, err := w.Run(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 3, infoCalls)
		assert.True(t, report.BootRecovery)
		assert.Equal(t, []string{"docker.service"}, manager.RestartCalls)
	})

	t.Run("fails when the engine goes quiet after the recovery restart", func(t *testing.T) {
		manager := &systemd.MockManager{}
		versionCalls := 0
		client := healthyClient()
		client.ServerVersionFunc = func(ctx context.Context) (string, error) {
			versionCalls++
			if versionCalls == 1 {
				return "28.1.1", nil
			}
			return "", fmt.Errorf("connection refused")
		}
		client.InfoFunc = func(ctx context.Context) (*docker.EngineInfo, error) {
			return &docker.EngineInfo{Containers: 4, ContainersRunning: 0}, nil
		}
		w := newWatchdogForTest(t, manager, &docker.MockClientFactory{Client: client})

		report, err := w.Run(context.Background())

		require.Error(t, err)
		assert.Contains(t, err.Error(), "not answering after boot recovery restart")
		assert.True(t, report.BootRecovery)
		assert.Len(t, manager.RestartCalls, 1)
	})

	t.Run("fails when the counters cannot be read", func(t *testing.T) {
		manager := &systemd.MockManager{}
		client := healthyClient()
		client.InfoFunc = func(ctx context.Context) (*docker.EngineInfo, error) {
			return nil, fmt.Errorf("engine info unavailable")
		}
		w := newWatchdogForTest(t, manager, &docker.MockClientFactory{Client: client})

		_, err := w.Run(context.Background())

		require.Error(t, err)
		assert.Contains(t, err.Error(), "engine info unavailable")
		assert.Empty(t, manager.RestartCalls)
	})
}

func TestRunWorkloadWatch(t *testing.T) {
	t.Run("starts a stopped container after the grace period", func(t *testing.T) {
		manager := &systemd.MockManager{}
		inspects := 0
		client := healthyClient()
		client.ContainerStateFunc = func(ctx context.Context, nameOrID string) (*docker.ContainerState, error) {
			inspects++
			return &docker.ContainerState{Name: nameOrID, Status: "exited", Running: false}, nil
		}
		w := newWatchdogForTest(t, manager, &docker.MockClientFactory{Client: client},
			testutil.WithContainers("web"))

		report, err := w.Run(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 3, inspects)
		assert.Equal(t, []string{"web"}, client.StartCalls)
		assert.Equal(t, []string{"web"}, report.ContainersStarted)
		assert.True(t, report.Intervened())
	})

	t.Run("leaves running containers alone", func(t *testing.T) {
		manager := &systemd.MockManager{}
		inspects := 0
		client := healthyClient()
		client.ContainerStateFunc = func(ctx context.Context, nameOrID string) (*docker.ContainerState, error) {
			inspects++
			return &docker.ContainerState{Name: nameOrID, Status: "running", Running: true}, nil
		}
		w := newWatchdogForTest(t, manager, &docker.MockClientFactory{Client: client},
			testutil.WithContainers("web"))

		report, err := w.Run(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 1, inspects)
		assert.Empty(t, client.StartCalls)
		assert.False(t, report.Intervened())
	})

	t.Run("waits for a container that is coming up", func(t *testing.T) {
		manager := &systemd.MockManager{}
		inspects := 0
		client := healthyClient()
		client.ContainerStateFunc = func(ctx context.Context, nameOrID string) (*docker.ContainerState, error) {
			inspects++
			if inspects == 1 {
				return &docker.ContainerState{Name: nameOrID, Status: "created", Running: false}, nil
			}
			return &docker.ContainerState{Name: nameOrID, Status: "running", Running: true}, nil
		}
		w := newWatchdogForTest(t, manager, &docker.MockClientFactory{Client: client},
			testutil.WithContainers("web"))

		report, err := w.Run(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 2, inspects)
		assert.Empty(t, client.StartCalls)
		assert.Empty(t, report.ContainersStarted)
	})

	t.Run("skips containers the engine does not know", func(t *testing.T) {
		manager := &systemd.MockManager{}
		client := healthyClient()
		client.ContainerStateFunc = func(ctx context.Context, nameOrID string) (*docker.ContainerState, error) {
			return nil, docker.NewContainerNotFoundError(nameOrID)
		}
		w := newWatchdogForTest(t, manager, &docker.MockClientFactory{Client: client},
			testutil.WithContainers("ghost"))

		report, err := w.Run(context.Background())

		require.NoError(t, err)
		assert.Empty(t, client.StartCalls)
		assert.Equal(t, []string{"ghost"}, report.ContainersMissing)
		assert.False(t, report.Intervened())
	})

	t.Run("running but unhealthy containers are not started", func(t *testing.T) {
		manager := &systemd.MockManager{}
		client := healthyClient()
		client.ContainerStateFunc = func(ctx context.Context, nameOrID string) (*docker.ContainerState, error) {
			return &docker.ContainerState{Name: nameOrID, Status: "running", Running: true, Health: "unhealthy"}, nil
		}
		w := newWatchdogForTest(t, manager, &docker.MockClientFactory{Client: client},
			testutil.WithContainers("web"))

		report, err := w.Run(context.Background())

		require.NoError(t, err)
		assert.Empty(t, client.StartCalls)
		assert.False(t, report.Intervened())
	})

	t.Run("keeps starting after one container fails", func(t *testing.T) {
		manager := &systemd.MockManager{}
		client := healthyClient()
		client.ContainerStateFunc = func(ctx context.Context, nameOrID string) (*docker.ContainerState, error) {
			return &docker.ContainerState{Name: nameOrID, Status: "exited", Running: false}, nil
		}
		client.ContainerStartFunc = func(ctx context.Context, nameOrID string) error {
			if nameOrID == "broken" {
				return fmt.Errorf("driver error")
			}
			return nil
		}
		w := newWatchdogForTest(t, manager, &docker.MockClientFactory{Client: client},
			testutil.WithContainers("broken", "web"), testutil.WithAttempts(1))

		report, err := w.Run(context.Background())

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to start containers: broken")
		assert.Equal(t, []string{"broken", "web"}, client.StartCalls)
		assert.Equal(t, []string{"web"}, report.ContainersStarted)
	})

	t.Run("starts compose services in dependency order", func(t *testing.T) {
		dir := writeComposeProject(t, `services:
  web:
    image: nginx:latest
    depends_on:
      - db
  db:
    image: postgres:16
    container_name: custom-db
    depends_on:
      - cache
  cache:
    image: redis:7
`)
		manager := &systemd.MockManager{}
		client := healthyClient()
		client.ContainerStateFunc = func(ctx context.Context, nameOrID string) (*docker.ContainerState, error) {
			return &docker.ContainerState{Name: nameOrID, Status: "exited", Running: false}, nil
		}
		w := newWatchdogForTest(t, manager, &docker.MockClientFactory{Client: client},
			testutil.WithComposeFile(dir), testutil.WithAttempts(1))

		report, err := w.Run(context.Background())

		require.NoError(t, err)
		assert.Equal(t, []string{"stack-cache-1", "custom-db", "stack-web-1"}, client.StartCalls)
		assert.Equal(t, []string{"stack-cache-1", "custom-db", "stack-web-1"}, report.ContainersStarted)
	})

	t.Run("fails when the compose project cannot be loaded", func(t *testing.T) {
		manager := &systemd.MockManager{}
		client := healthyClient()
		w := newWatchdogForTest(t, manager, &docker.MockClientFactory{Client: client},
			testutil.WithComposeFile("/nonexistent/compose.yaml"))

		_, err := w.Run(context.Background())

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to load compose project")
	})
}

func TestWorkloads(t *testing.T) {
	t.Run("merges compose services with configured names", func(t *testing.T) {
		dir := writeComposeProject(t, `services:
  web:
    image: nginx:latest
    depends_on:
      - db
  db:
    image: postgres:16
`)
		w := newWatchdogForTest(t, &systemd.MockManager{}, &docker.MockClientFactory{},
			testutil.WithComposeFile(dir), testutil.WithContainers("stack-db-1", "extra"))

		workloads, err := w.Workloads(context.Background())

		require.NoError(t, err)
		require.Len(t, workloads, 3)
		assert.Equal(t, "db", workloads[0].Service)
		assert.Equal(t, "stack-db-1", workloads[0].Container)
		assert.Equal(t, "web", workloads[1].Service)
		assert.Equal(t, "stack-web-1", workloads[1].Container)
		assert.Empty(t, workloads[2].Service)
		assert.Equal(t, "extra", workloads[2].Container)
	})

	t.Run("plain names keep their configured order", func(t *testing.T) {
		w := newWatchdogForTest(t, &systemd.MockManager{}, &docker.MockClientFactory{},
			testutil.WithContainers("b", "a"))

		workloads, err := w.Workloads(context.Background())

		require.NoError(t, err)
		require.Len(t, workloads, 2)
		assert.Equal(t, "b", workloads[0].Container)
		assert.Equal(t, "a", workloads[1].Container)
	})

	t.Run("empty configuration yields no workloads", func(t *testing.T) {
		w := newWatchdogForTest(t, &systemd.MockManager{}, &docker.MockClientFactory{})

		workloads, err := w.Workloads(context.Background())

		require.NoError(t, err)
		assert.Empty(t, workloads)
	})
}

func TestReportIntervened(t *testing.T) {
	assert.False(t, (&Report{}).Intervened())
	assert.True(t, (&Report{UnitRestarted: true}).Intervened())
	assert.True(t, (&Report{EngineRestarted: true}).Intervened())
	assert.True(t, (&Report{BootRecovery: true}).Intervened())
	assert.True(t, (&Report{ContainersStarted: []string{"web"}}).Intervened())
}
