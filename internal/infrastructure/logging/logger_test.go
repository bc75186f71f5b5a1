package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "default", cfg: DefaultConfig()},
		{name: "development", cfg: DevelopmentConfig()},
		{name: "no output paths", cfg: Config{Level: "warn"}},
		{name: "invalid level", cfg: Config{Level: "loud"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, logger.Logger)
		})
	}
}

func TestNewFromLevel(t *testing.T) {
	assert.True(t, NewFromLevel("debug", false).Core().Enabled(zapcore.DebugLevel))
	assert.False(t, NewFromLevel("warn", false).Core().Enabled(zapcore.InfoLevel))

	// invalid level falls back to the mode default
	assert.False(t, NewFromLevel("loud", false).Core().Enabled(zapcore.DebugLevel))
	assert.True(t, NewFromLevel("", true).Core().Enabled(zapcore.DebugLevel))
}

func TestJSONOutput(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.log")

	logger, err := New(Config{Level: "info", OutputPaths: []string{out}})
	require.NoError(t, err)

	logger.Component("storage").Info("File saved", zap.String("path", "reports/q1.txt"))
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(out)
	require.NoError(t, err)

	line := strings.TrimSpace(string(data))
	assert.Contains(t, line, `"message":"File saved"`)
	assert.Contains(t, line, `"logger":"storage"`)
	assert.Contains(t, line, `"path":"reports/q1.txt"`)
}

func TestNewNop(t *testing.T) {
	logger := NewNop()
	assert.False(t, logger.Core().Enabled(zapcore.ErrorLevel))
}
