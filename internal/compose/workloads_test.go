package compose

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/compose-spec/compose-go/v2/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkloads(t *testing.T) {
	project := &types.Project{
		Name: "stack",
		Services: types.Services{
			"web": types.ServiceConfig{
				Name: "web",
				DependsOn: types.DependsOnConfig{
					"db":    types.ServiceDependency{Condition: "service_started"},
					"cache": types.ServiceDependency{Condition: "service_started"},
				},
			},
			"db": types.ServiceConfig{
				Name:          "db",
				ContainerName: "custom-db",
			},
			"cache": types.ServiceConfig{
				Name: "cache",
			},
		},
	}

	workloads := Workloads(project)
	require.Len(t, workloads, 3)

	// Ordered by service name.
	assert.Equal(t, "cache", workloads[0].Service)
	assert.Equal(t, "db", workloads[1].Service)
	assert.Equal(t, "web", workloads[2].Service)

	// Default naming follows compose conventions; container_name wins.
	assert.Equal(t, "stack-cache-1", workloads[0].Container)
	assert.Equal(t, "custom-db", workloads[1].Container)
	assert.Equal(t, "stack-web-1", workloads[2].Container)

	// Dependencies come out sorted.
	assert.Equal(t, []string{"cache", "db"}, workloads[2].DependsOn)
	assert.Empty(t, workloads[1].DependsOn)
}

func TestContainerName(t *testing.T) {
	project := &types.Project{
		Name: "stack",
		Services: types.Services{
			"web": types.ServiceConfig{Name: "web"},
			"db":  types.ServiceConfig{Name: "db", ContainerName: "custom-db"},
		},
	}

	assert.Equal(t, "stack-web-1", ContainerName(project, "web"))
	assert.Equal(t, "custom-db", ContainerName(project, "db"))
	assert.Empty(t, ContainerName(project, "missing"))
}

// TestWorkloadsFromLoadedProject ties loading and workload derivation together.
func TestWorkloadsFromLoadedProject(t *testing.T) {
	tmpDir := t.TempDir()

	composeContent := `name: demo
services:
  proxy:
    image: nginx
    container_name: edge-proxy
    depends_on:
      - api
  api:
    image: myapp:latest
    depends_on:
      - db
  db:
    image: postgres`

	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "compose.yaml"), []byte(composeContent), 0o644))

	project, err := Load(context.Background(), tmpDir, nil)
	require.NoError(t, err)

	workloads := Workloads(project)
	require.Len(t, workloads, 3)

	byService := make(map[string]Workload, len(workloads))
	for _, w := range workloads {
		byService[w.Service] = w
	}

	assert.Equal(t, "demo-api-1", byService["api"].Container)
	assert.Equal(t, "demo-db-1", byService["db"].Container)
	assert.Equal(t, "edge-proxy", byService["proxy"].Container)
	assert.Equal(t, []string{"db"}, byService["api"].DependsOn)
	assert.Equal(t, []string{"api"}, byService["proxy"].DependsOn)
}

func TestNameResolver(t *testing.T) {
	assert.Equal(t, "explicit", NameResolver("explicit", "default"))
	assert.Equal(t, "default", NameResolver("", "default"))
}
