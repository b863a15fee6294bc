package systemd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFragment(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "docker.service")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadUnitFile(t *testing.T) {
	t.Run("parses sections and directives", func(t *testing.T) {
		path := writeFragment(t, `[Unit]
Description=Docker Application Container Engine
After=network-online.target

[Service]
Type=notify
ExecStart=/usr/bin/dockerd -H fd://
Restart=always
`)

		file, err := LoadUnitFile(path)
		require.NoError(t, err)

		service := file.Section("Service")
		require.Len(t, service, 3)
		assert.Equal(t, UnitOption{Key: "Type", Value: "notify"}, service[0])
		assert.Equal(t, UnitOption{Key: "ExecStart", Value: "/usr/bin/dockerd -H fd://"}, service[1])
		assert.Equal(t, UnitOption{Key: "Restart", Value: "always"}, service[2])
	})

	t.Run("keeps repeated directives", func(t *testing.T) {
		path := writeFragment(t, `[Service]
ExecStartPre=/usr/bin/mkdir -p /var/run/docker
ExecStartPre=/usr/bin/touch /var/run/docker/ready
ExecStart=/usr/bin/dockerd
`)

		file, err := LoadUnitFile(path)
		require.NoError(t, err)

		service := file.Section("Service")
		require.Len(t, service, 3)
		assert.Equal(t, "ExecStartPre", service[0].Key)
		assert.Equal(t, "/usr/bin/mkdir -p /var/run/docker", service[0].Value)
		assert.Equal(t, "ExecStartPre", service[1].Key)
		assert.Equal(t, "/usr/bin/touch /var/run/docker/ready", service[1].Value)
	})

	t.Run("lists non-empty sections", func(t *testing.T) {
		path := writeFragment(t, `[Unit]
Description=Docker

[Service]
ExecStart=/usr/bin/dockerd

[Install]
WantedBy=multi-user.target
`)

		file, err := LoadUnitFile(path)
		require.NoError(t, err)
		assert.Equal(t, []string{"Unit", "Service", "Install"}, file.Sections())
	})

	t.Run("returns nil for missing section", func(t *testing.T) {
		path := writeFragment(t, "[Unit]\nDescription=Docker\n")

		file, err := LoadUnitFile(path)
		require.NoError(t, err)
		assert.Nil(t, file.Section("Service"))
	})

	t.Run("fails for missing file", func(t *testing.T) {
		_, err := LoadUnitFile(filepath.Join(t.TempDir(), "missing.service"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read unit file")
	})
}
