package docker

import (
	"strings"

	"github.com/docker/docker/api/types/container"
)

// EngineInfo carries the engine-wide counters used for boot recovery.
type EngineInfo struct {
	ServerVersion     string `json:"serverVersion" yaml:"serverVersion"`
	Containers        int    `json:"containers" yaml:"containers"`
	ContainersRunning int    `json:"containersRunning" yaml:"containersRunning"`
	ContainersPaused  int    `json:"containersPaused" yaml:"containersPaused"`
	ContainersStopped int    `json:"containersStopped" yaml:"containersStopped"`
}

// ContainerState describes a single container as reported by the engine.
type ContainerState struct {
	Name    string `json:"name" yaml:"name"`
	ID      string `json:"id" yaml:"id"`
	Status  string `json:"status" yaml:"status"`
	Running bool   `json:"running" yaml:"running"`
	Health  string `json:"health,omitempty" yaml:"health,omitempty"`
}

// Healthy reports whether the container needs no intervention. Containers
// without a healthcheck count as healthy while running.
func (s *ContainerState) Healthy() bool {
	if !s.Running {
		return false
	}
	return s.Health == "" || s.Health == "healthy"
}

// stateFromInspect maps an engine inspect reply onto a ContainerState.
// Inspect reports names with a leading slash, which nobody types.
func stateFromInspect(resp container.InspectResponse) *ContainerState {
	state := &ContainerState{
		Name: strings.TrimPrefix(resp.Name, "/"),
		ID:   shortID(resp.ID),
	}

	if resp.State != nil {
		state.Status = resp.State.Status
		state.Running = resp.State.Running
		if resp.State.Health != nil {
			state.Health = resp.State.Health.Status
		}
	}

	return state
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
