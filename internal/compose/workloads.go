package compose

import (
	"fmt"
	"sort"

	"github.com/compose-spec/compose-go/v2/types"
)

// Workload names one container the watchdog watches, together with the
// services it depends on.
type Workload struct {
	Service   string   // compose service name
	Container string   // engine container name
	DependsOn []string // service names this workload depends on
}

// Workloads derives the watch list from a loaded project. Services are
// returned in name order; start ordering is the dependency graph's job.
func Workloads(project *types.Project) []Workload {
	names := make([]string, 0, len(project.Services))
	for name := range project.Services {
		names = append(names, name)
	}
	sort.Strings(names)

	workloads := make([]Workload, 0, len(names))
	for _, name := range names {
		service := project.Services[name]

		deps := make([]string, 0, len(service.DependsOn))
		for dep := range service.DependsOn {
			deps = append(deps, dep)
		}
		sort.Strings(deps)

		workloads = append(workloads, Workload{
			Service:   name,
			Container: ContainerName(project, name),
			DependsOn: deps,
		})
	}

	return workloads
}

// ContainerName returns the engine-side name of a service's container,
// honoring an explicit container_name. The default matches docker compose
// naming with a single replica.
func ContainerName(project *types.Project, serviceName string) string {
	service, ok := project.Services[serviceName]
	if !ok {
		return ""
	}
	return NameResolver(service.ContainerName, fmt.Sprintf("%s-%s-1", project.Name, serviceName))
}

// NameResolver returns the explicit name if provided, otherwise returns the default name.
func NameResolver(explicitName, defaultName string) string {
	if explicitName != "" {
		return explicitName
	}
	return defaultName
}
