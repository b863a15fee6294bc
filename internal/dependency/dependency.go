// Package dependency provides service dependency graph management for Docker Compose projects.
package dependency

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/compose-spec/compose-go/v2/types"
	"github.com/dominikbraun/graph"
)

// ServiceDependencyGraph models dependencies between services.
// Edge direction: dependency -> dependent (i.e., B -> A means A depends on B),
// so a topological order lists dependencies before their dependents.
type ServiceDependencyGraph struct {
	graph graph.Graph[string, string]
}

// NewServiceDependencyGraph creates a new, empty dependency graph.
func NewServiceDependencyGraph() *ServiceDependencyGraph {
	return &ServiceDependencyGraph{
		graph: graph.New(graph.StringHash, graph.Directed()),
	}
}

// AddService ensures a service exists in the graph.
func (sdg *ServiceDependencyGraph) AddService(serviceName string) error {
	if serviceName == "" {
		return fmt.Errorf("service name cannot be empty")
	}
	if err := sdg.graph.AddVertex(serviceName); err != nil && !errors.Is(err, graph.ErrVertexAlreadyExists) {
		return err
	}
	return nil
}

// AddDependency adds a dependency relationship where `dependent` depends on
// `dependency`. This creates an edge: dependency -> dependent. Cycles are not
// rejected here; they surface in GetTopologicalOrder and HasCycles.
func (sdg *ServiceDependencyGraph) AddDependency(dependent, dependency string) error {
	if dependent == "" || dependency == "" {
		return fmt.Errorf("dependent and dependency must be non-empty")
	}
	if dependent == dependency {
		return fmt.Errorf("self-dependency is not allowed: %s", dependent)
	}

	if err := sdg.AddService(dependent); err != nil {
		return err
	}
	if err := sdg.AddService(dependency); err != nil {
		return err
	}

	if err := sdg.graph.AddEdge(dependency, dependent); err != nil && !errors.Is(err, graph.ErrEdgeAlreadyExists) {
		return err
	}
	return nil
}

// CanAddDependency reports whether the dependency could be added without
// introducing a cycle. Both services must already exist in the graph.
func (sdg *ServiceDependencyGraph) CanAddDependency(dependent, dependency string) (bool, error) {
	if dependent == dependency {
		return false, fmt.Errorf("self-dependency is not allowed: %s", dependent)
	}
	if _, err := sdg.graph.Vertex(dependent); err != nil {
		return false, fmt.Errorf("unknown dependent service: %s", dependent)
	}
	if _, err := sdg.graph.Vertex(dependency); err != nil {
		return false, fmt.Errorf("unknown dependency service: %s", dependency)
	}

	createsCycle, err := graph.CreatesCycle(sdg.graph, dependency, dependent)
	if err != nil {
		return false, err
	}
	return !createsCycle, nil
}

// GetDependencies returns the services that the given service depends on.
func (sdg *ServiceDependencyGraph) GetDependencies(serviceName string) ([]string, error) {
	predMap, err := sdg.graph.PredecessorMap()
	if err != nil {
		return nil, err
	}

	preds, ok := predMap[serviceName]
	if !ok {
		return nil, fmt.Errorf("unknown service: %s", serviceName)
	}

	deps := make([]string, 0, len(preds))
	for dep := range preds {
		deps = append(deps, dep)
	}
	sort.Strings(deps)
	return deps, nil
}

// GetDependents returns the services that depend on the given service.
func (sdg *ServiceDependencyGraph) GetDependents(serviceName string) ([]string, error) {
	adjMap, err := sdg.graph.AdjacencyMap()
	if err != nil {
		return nil, err
	}

	succs, ok := adjMap[serviceName]
	if !ok {
		return nil, fmt.Errorf("unknown service: %s", serviceName)
	}

	deps := make([]string, 0, len(succs))
	for dep := range succs {
		deps = append(deps, dep)
	}
	sort.Strings(deps)
	return deps, nil
}

// GetTransitiveDependencies returns every service the given service depends
// on, directly or through other services, in lexical order.
func (sdg *ServiceDependencyGraph) GetTransitiveDependencies(serviceName string) ([]string, error) {
	predMap, err := sdg.graph.PredecessorMap()
	if err != nil {
		return nil, err
	}
	if _, ok := predMap[serviceName]; !ok {
		return nil, fmt.Errorf("unknown service: %s", serviceName)
	}

	return collectReachable(serviceName, predMap), nil
}

// GetTransitiveDependents returns every service that depends on the given
// service, directly or through other services, in lexical order.
func (sdg *ServiceDependencyGraph) GetTransitiveDependents(serviceName string) ([]string, error) {
	adjMap, err := sdg.graph.AdjacencyMap()
	if err != nil {
		return nil, err
	}
	if _, ok := adjMap[serviceName]; !ok {
		return nil, fmt.Errorf("unknown service: %s", serviceName)
	}

	return collectReachable(serviceName, adjMap), nil
}

// collectReachable walks the given edge map from a start vertex and returns
// all reachable vertices, excluding the start itself, in lexical order.
func collectReachable(start string, edges map[string]map[string]graph.Edge[string]) []string {
	visited := map[string]bool{start: true}
	queue := []string{start}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for next := range edges[current] {
			if !visited[next] {
				visited[next] = true
				queue = append(queue, next)
			}
		}
	}

	result := make([]string, 0, len(visited)-1)
	for name := range visited {
		if name != start {
			result = append(result, name)
		}
	}
	sort.Strings(result)
	return result
}

// GetTopologicalOrder returns services in topological order (dependencies
// first) with deterministic lexical tie-breaking.
func (sdg *ServiceDependencyGraph) GetTopologicalOrder() ([]string, error) {
	order, err := graph.StableTopologicalSort(sdg.graph, func(a, b string) bool {
		return a < b
	})
	if err != nil {
		if cycle := sdg.cycleParticipants(); len(cycle) > 0 {
			return nil, fmt.Errorf("dependency graph contains a cycle involving services: %s", strings.Join(cycle, ", "))
		}
		return nil, errors.New("dependency graph contains a cycle")
	}
	return order, nil
}

// HasCycles checks if the dependency graph contains cycles.
func (sdg *ServiceDependencyGraph) HasCycles() bool {
	_, err := sdg.GetTopologicalOrder()
	return err != nil
}

// cycleParticipants returns the services left over after peeling all
// zero-indegree vertices. An empty result means the graph is acyclic.
func (sdg *ServiceDependencyGraph) cycleParticipants() []string {
	predMap, err := sdg.graph.PredecessorMap()
	if err != nil {
		return nil
	}
	adjMap, err := sdg.graph.AdjacencyMap()
	if err != nil {
		return nil
	}

	indeg := make(map[string]int, len(predMap))
	for v, preds := range predMap {
		indeg[v] = len(preds)
	}

	queue := make([]string, 0)
	for v, d := range indeg {
		if d == 0 {
			queue = append(queue, v)
		}
	}

	removed := 0
	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		removed++

		for w := range adjMap[v] {
			indeg[w]--
			if indeg[w] == 0 {
				queue = append(queue, w)
			}
		}
	}

	if removed == len(indeg) {
		return nil
	}

	remaining := make([]string, 0, len(indeg)-removed)
	for v, d := range indeg {
		if d > 0 {
			remaining = append(remaining, v)
		}
	}
	sort.Strings(remaining)
	return remaining
}

// BuildServiceDependencyGraph builds a dependency graph for all services in a project.
func BuildServiceDependencyGraph(project *types.Project) (*ServiceDependencyGraph, error) {
	sdg := NewServiceDependencyGraph()

	// Add all services as vertices first
	for serviceName := range project.Services {
		if err := sdg.AddService(serviceName); err != nil {
			return nil, fmt.Errorf("failed to add service %s: %w", serviceName, err)
		}
	}

	// Add dependency edges based on depends_on relationships
	for serviceName, service := range project.Services {
		for depName := range service.DependsOn {
			if err := sdg.AddDependency(serviceName, depName); err != nil {
				return nil, fmt.Errorf("failed to add dependency %s -> %s: %w", serviceName, depName, err)
			}
		}
	}

	return sdg, nil
}
