package deltalog

import (
	"testing"

	"github.com/creasty/defaults"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr error
	}{
		{
			name:   "valid",
			config: Config{Root: ".", Recursive: true},
		},
		{
			name:    "missing root",
			config:  Config{},
			wantErr: ErrRootRequired,
		},
		{
			name:    "negative max tables",
			config:  Config{Root: ".", MaxTables: -1},
			wantErr: ErrNegativeLimit,
		},
		{
			name:    "negative version limit",
			config:  Config{Root: ".", VersionLimit: -5},
			wantErr: ErrNegativeLimit,
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

func TestConfig_Defaults(t *testing.T) {
	config := &Config{}
	require.NoError(t, defaults.Set(config))

	assert.Equal(t, ".", config.Root)
	assert.True(t, config.Recursive)
	assert.Zero(t, config.MaxTables)
	assert.Zero(t, config.VersionLimit)
}
