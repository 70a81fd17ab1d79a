package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/lakewatch/lakeview/pkg/deltalog"
	"github.com/lakewatch/lakeview/pkg/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_MissingFileYieldsDefaults(t *testing.T) {
	config, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "info", config.Logging)
	assert.Equal(t, ":9090", config.MetricsAddr)
	assert.Equal(t, ".", config.Scan.Root)
	assert.True(t, config.Scan.Recursive)
	assert.True(t, config.Server.Enabled)
	assert.Equal(t, ":8050", config.Server.Addr)
}

func TestLoadConfig_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lakeview.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
logging: debug
scan:
  root: /data/lake
  maxTables: 5
server:
  addr: ":9000"
  refreshSchedule: "*/10 * * * *"
`), 0o600))

	config, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", config.Logging)
	assert.Equal(t, "/data/lake", config.Scan.Root)
	assert.Equal(t, 5, config.Scan.MaxTables)
	assert.True(t, config.Scan.Recursive)
	assert.Equal(t, ":9000", config.Server.Addr)
	assert.Equal(t, "*/10 * * * *", config.Server.RefreshSchedule)
}

func TestLoadConfig_MalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lakeview.yaml")
	require.NoError(t, os.WriteFile(path, []byte("scan: ["), 0o600))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr error
	}{
		{
			name: "valid",
			config: Config{
				Scan:   deltalog.Config{Root: "."},
				Server: server.Config{Enabled: true, Addr: ":8050"},
			},
		},
		{
			name: "invalid scan",
			config: Config{
				Scan:   deltalog.Config{},
				Server: server.Config{Enabled: true, Addr: ":8050"},
			},
			wantErr: deltalog.ErrRootRequired,
		},
		{
			name: "invalid server",
			config: Config{
				Scan:   deltalog.Config{Root: "."},
				Server: server.Config{Enabled: true},
			},
			wantErr: server.ErrAddrRequired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}
