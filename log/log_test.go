package log

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	logger, err := New("engine", JSONEncoder, "debug")
	require.NoError(t, err)
	require.True(t, logger.Core().Enabled(zapcore.DebugLevel))

	logger, err = New("engine", ConsoleEncoder, "warn")
	require.NoError(t, err)
	require.False(t, logger.Core().Enabled(zapcore.InfoLevel))

	_, err = New("engine", "xml", "info")
	require.Error(t, err)
	_, err = New("engine", JSONEncoder, "loud")
	require.Error(t, err)
}
