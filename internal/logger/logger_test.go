package logger

import (
	"testing"

	"github.com/cyphera/cyphera-agentpay/internal/constants"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew_Levels(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		enabled zapcore.Level
		quiet   zapcore.Level
	}{
		{name: "local default", cfg: Config{Stage: constants.LocalStage}, enabled: zapcore.InfoLevel, quiet: zapcore.DebugLevel},
		{name: "test default", cfg: Config{Stage: constants.TestStage}, enabled: zapcore.WarnLevel, quiet: zapcore.InfoLevel},
		{name: "explicit debug", cfg: Config{Stage: constants.TestStage, Level: "DEBUG"}, enabled: zapcore.DebugLevel, quiet: zapcore.DebugLevel - 1},
		{name: "prod error", cfg: Config{Stage: constants.ProdEnvironment, Level: "error"}, enabled: zapcore.ErrorLevel, quiet: zapcore.WarnLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := New(tt.cfg)
			require.NoError(t, err)
			assert.True(t, l.Core().Enabled(tt.enabled))
			assert.False(t, l.Core().Enabled(tt.quiet))
		})
	}
}

func TestNew_UnknownLevel(t *testing.T) {
	_, err := New(Config{Stage: constants.LocalStage, Level: "verbose"})
	assert.Error(t, err)
}

func TestInitLogger_ReplacesGlobal(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	previous := Log
	t.Cleanup(func() { Log = previous })

	InitLogger(constants.TestStage)
	assert.NotSame(t, previous, Log)
	assert.False(t, Log.Core().Enabled(zapcore.InfoLevel))
}
