// Package watchdog implements the health check pass that keeps the Docker
// daemon and its container workloads running.
package watchdog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/monstrenyatko/docker-watchdog/internal/compose"
	"github.com/monstrenyatko/docker-watchdog/internal/config"
	"github.com/monstrenyatko/docker-watchdog/internal/dependency"
	"github.com/monstrenyatko/docker-watchdog/internal/docker"
	"github.com/monstrenyatko/docker-watchdog/internal/log"
	"github.com/monstrenyatko/docker-watchdog/internal/systemd"
)

// Watchdog runs health check passes against the Docker daemon and the
// containers it is supposed to keep running.
type Watchdog struct {
	systemdManager systemd.Manager
	clientFactory  docker.ClientFactory
	configProvider config.Provider
	logger         log.Logger
}

// NewWatchdog creates a new watchdog.
func NewWatchdog(systemdManager systemd.Manager, clientFactory docker.ClientFactory, configProvider config.Provider, logger log.Logger) *Watchdog {
	return &Watchdog{
		systemdManager: systemdManager,
		clientFactory:  clientFactory,
		configProvider: configProvider,
		logger:         logger,
	}
}

// Report summarizes what a single pass observed and did.
type Report struct {
	Unit              *systemd.UnitStatus `json:"unit,omitempty" yaml:"unit,omitempty"`
	UnitRestarted     bool                `json:"unitRestarted" yaml:"unitRestarted"`
	EngineVersion     string              `json:"engineVersion,omitempty" yaml:"engineVersion,omitempty"`
	EngineRestarted   bool                `json:"engineRestarted" yaml:"engineRestarted"`
	Engine            *docker.EngineInfo  `json:"engine,omitempty" yaml:"engine,omitempty"`
	BootRecovery      bool                `json:"bootRecovery" yaml:"bootRecovery"`
	ContainersStarted []string            `json:"containersStarted,omitempty" yaml:"containersStarted,omitempty"`
	ContainersMissing []string            `json:"containersMissing,omitempty" yaml:"containersMissing,omitempty"`
}

// Intervened reports whether the pass had to take any corrective action.
func (r *Report) Intervened() bool {
	return r.UnitRestarted || r.EngineRestarted || r.BootRecovery || len(r.ContainersStarted) > 0
}

// Run executes one health check pass.
//
// A pass has four stages: check the systemd unit and restart it when it is
// not active, probe the engine API, recover from an engine that came up
// without starting any of its containers, and start monitored containers
// that stopped. The later stages are skipped when a unit restart was issued
// but the unit has not reported active again; the next pass picks it up
// from there.
func (w *Watchdog) Run(ctx context.Context) (*Report, error) {
	report := &Report{}

	proceed, err := w.ensureUnitActive(ctx, report)
	if err != nil {
		return report, err
	}
	if !proceed {
		return report, nil
	}

	client, err := w.clientFactory.NewClient(w.configProvider.GetConfig().DockerHost)
	if err != nil {
		return report, err
	}
	defer func() { _ = client.Close() }()

	if err := w.ensureEngineAnswers(ctx, client, report); err != nil {
		return report, err
	}

	if err := w.recoverBootStall(ctx, client, report); err != nil {
		return report, err
	}

	if err := w.watchWorkloads(ctx, client, report); err != nil {
		return report, err
	}

	return report, nil
}

// ensureUnitActive checks the watched unit and restarts it when it is not
// active. The returned bool reports whether the engine API is worth
// probing: false means a restart was accepted but the unit has not reached
// active state again.
func (w *Watchdog) ensureUnitActive(ctx context.Context, report *Report) (bool, error) {
	unitName := w.configProvider.GetConfig().Unit

	status, err := w.systemdManager.Status(ctx, unitName)
	if err != nil {
		return false, err
	}
	report.Unit = status
	if !status.Found() {
		return false, systemd.NewUnitNotFoundError(unitName)
	}

	if status.Active() {
		w.logger.Debug("Unit is active", "unit", unitName, "sub", status.SubState)
		return true, nil
	}

	w.logger.Warn("Unit is not active", "unit", unitName, "active", status.ActiveState, "sub", status.SubState)
	w.logger.Debug("Unit state before restart", "details", w.systemdManager.FailureDetails(ctx, unitName))

	if err := w.systemdManager.Restart(ctx, unitName); err != nil {
		return false, err
	}
	report.UnitRestarted = true

	status, err = w.systemdManager.Status(ctx, unitName)
	if err != nil {
		return false, err
	}
	report.Unit = status

	if !status.Active() {
		w.logger.Warn("Unit has not reached active state after restart", "unit", unitName, "active", status.ActiveState)
		return false, nil
	}

	w.logger.Info("Unit is active after restart", "unit", unitName)
	return true, nil
}

// ensureEngineAnswers verifies the engine API is reachable. When every
// probe fails even though the unit reports active, the unit gets one
// restart and one more round of probes before the pass gives up.
func (w *Watchdog) ensureEngineAnswers(ctx context.Context, client docker.Client, report *Report) error {
	version, err := w.probeEngine(ctx, client)
	if err == nil {
		report.EngineVersion = version
		w.logger.Info("Docker engine is answering", "version", version)
		return nil
	}
	if ctx.Err() != nil {
		return err
	}

	w.logger.Error("Docker engine API is not answering", "error", err)
	if rerr := w.systemdManager.Restart(ctx, w.configProvider.GetConfig().Unit); rerr != nil {
		return rerr
	}
	report.EngineRestarted = true

	version, err = w.probeEngine(ctx, client)
	if err != nil {
		return fmt.Errorf("engine API still not answering after restart: %w", err)
	}
	report.EngineVersion = version
	w.logger.Info("Docker engine is answering", "version", version)
	return nil
}

// probeEngine asks the engine for its version within the attempt budget.
// The delay is skipped after the last attempt.
func (w *Watchdog) probeEngine(ctx context.Context, client docker.Client) (string, error) {
	cfg := w.configProvider.GetConfig()

	var lastErr error
	for attempt := 1; attempt <= cfg.Attempts; attempt++ {
		version, err := client.ServerVersion(ctx)
		if err == nil {
			return version, nil
		}
		lastErr = err
		w.logger.Warn("Could not get Docker engine version", "attempt", attempt, "attempts", cfg.Attempts, "error", err)
		if attempt < cfg.Attempts {
			if err := waitAttempt(ctx, cfg.AttemptDelay); err != nil {
				return "", err
			}
		}
	}
	return "", fmt.Errorf("engine version unavailable after %d attempts: %w", cfg.Attempts, lastErr)
}

// recoverBootStall handles an engine that is up with containers defined but
// none of them running, which some engine versions get stuck in after boot.
// The unit gets one restart and the engine one more probe round; starting
// whatever is still missing afterwards is the watch stage's job.
func (w *Watchdog) recoverBootStall(ctx context.Context, client docker.Client, report *Report) error {
	info, err := w.waitForRunningContainers(ctx, client)
	if err != nil {
		return err
	}
	report.Engine = info

	if info.Containers == 0 || info.ContainersRunning > 0 {
		return nil
	}

	w.logger.Error("Docker engine did not start any containers", "containers", info.Containers)
	if err := w.systemdManager.Restart(ctx, w.configProvider.GetConfig().Unit); err != nil {
		return err
	}
	report.BootRecovery = true

	if _, err := w.probeEngine(ctx, client); err != nil {
		return fmt.Errorf("engine API not answering after boot recovery restart: %w", err)
	}
	return nil
}

// waitForRunningContainers polls the engine counters until at least one
// container is running, the engine turns out to have none at all, or the
// attempt budget runs out.
func (w *Watchdog) waitForRunningContainers(ctx context.Context, client docker.Client) (*docker.EngineInfo, error) {
	cfg := w.configProvider.GetConfig()

	var info *docker.EngineInfo
	for attempt := 1; attempt <= cfg.Attempts; attempt++ {
		var err error
		info, err = client.Info(ctx)
		if err != nil {
			return nil, err
		}
		w.logger.Info("Container counters", "containers", info.Containers, "running", info.ContainersRunning)
		if info.Containers == 0 || info.ContainersRunning > 0 {
			return info, nil
		}
		w.logger.Warn("No containers are running", "containers", info.Containers)
		if attempt < cfg.Attempts {
			if err := waitAttempt(ctx, cfg.AttemptDelay); err != nil {
				return nil, err
			}
		}
	}
	return info, nil
}

// Workloads returns the monitored containers in start order. Compose
// services come first, ordered so dependencies start before their
// dependents; plain configured names follow in the configured order.
func (w *Watchdog) Workloads(ctx context.Context) ([]compose.Workload, error) {
	cfg := w.configProvider.GetConfig()

	var workloads []compose.Workload
	seen := make(map[string]bool)

	if cfg.ComposeFile != "" {
		project, err := compose.Load(ctx, cfg.ComposeFile, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to load compose project: %w", err)
		}

		graph, err := dependency.BuildServiceDependencyGraph(project)
		if err != nil {
			return nil, err
		}
		order, err := graph.GetTopologicalOrder()
		if err != nil {
			return nil, err
		}

		byService := make(map[string]compose.Workload)
		for _, wl := range compose.Workloads(project) {
			byService[wl.Service] = wl
		}
		for _, serviceName := range order {
			wl, ok := byService[serviceName]
			if !ok || seen[wl.Container] {
				continue
			}
			seen[wl.Container] = true
			workloads = append(workloads, wl)
		}
	}

	for _, name := range cfg.Containers {
		if seen[name] {
			continue
		}
		seen[name] = true
		workloads = append(workloads, compose.Workload{Container: name})
	}

	return workloads, nil
}

// watchWorkloads starts monitored containers that are not running.
// Containers get the attempt budget to come up on their own first, so the
// watchdog does not race an engine that is still bringing workloads up.
func (w *Watchdog) watchWorkloads(ctx context.Context, client docker.Client, report *Report) error {
	workloads, err := w.Workloads(ctx)
	if err != nil {
		return err
	}
	if len(workloads) == 0 {
		w.logger.Debug("No monitored containers configured")
		return nil
	}

	cfg := w.configProvider.GetConfig()

	pending, err := w.pendingWorkloads(ctx, client, workloads, report)
	if err != nil {
		return err
	}
	for attempt := 1; attempt < cfg.Attempts && len(pending) > 0; attempt++ {
		w.logger.Info("Containers are not running", "containers", containerNames(pending), "delay", cfg.AttemptDelay)
		if err := waitAttempt(ctx, cfg.AttemptDelay); err != nil {
			return err
		}
		pending, err = w.pendingWorkloads(ctx, client, pending, report)
		if err != nil {
			return err
		}
	}
	if len(pending) == 0 {
		return nil
	}

	var failed []string
	for _, wl := range pending {
		w.logger.Info("Starting container", "container", wl.Container)
		if err := client.ContainerStart(ctx, wl.Container); err != nil {
			w.logger.Error("Could not start container", "container", wl.Container, "error", err)
			failed = append(failed, wl.Container)
			continue
		}
		report.ContainersStarted = append(report.ContainersStarted, wl.Container)
	}
	if len(failed) > 0 {
		return fmt.Errorf("failed to start containers: %s", strings.Join(failed, ", "))
	}
	return nil
}

// pendingWorkloads filters workloads down to the ones that exist but are
// not running. Missing containers are logged and dropped from the watch.
func (w *Watchdog) pendingWorkloads(ctx context.Context, client docker.Client, workloads []compose.Workload, report *Report) ([]compose.Workload, error) {
	pending := make([]compose.Workload, 0, len(workloads))
	for _, wl := range workloads {
		state, err := client.ContainerState(ctx, wl.Container)
		if err != nil {
			if docker.IsContainerNotFoundError(err) {
				w.logger.Warn("Monitored container does not exist", "container", wl.Container)
				report.ContainersMissing = append(report.ContainersMissing, wl.Container)
				continue
			}
			return nil, err
		}
		if state.Running {
			if !state.Healthy() {
				w.logger.Warn("Container is running but not healthy", "container", wl.Container, "health", state.Health)
			}
			continue
		}
		w.logger.Debug("Container is not running", "container", wl.Container, "status", state.Status)
		pending = append(pending, wl)
	}
	return pending, nil
}

func containerNames(workloads []compose.Workload) []string {
	names := make([]string, 0, len(workloads))
	for _, wl := range workloads {
		names = append(names, wl.Container)
	}
	return names
}

// waitAttempt sleeps for the attempt delay unless the context ends first.
func waitAttempt(ctx context.Context, delay time.Duration) error {
	select {
	case <-time.After(delay):
		return nil
	case <-ctx.Done():
		return fmt.Errorf("attempt wait cancelled: %w", ctx.Err())
	}
}
