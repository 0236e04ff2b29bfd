package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	tests := []struct {
		level  string
		format string
		want   zapcore.Level
	}{
		{"debug", "console", zapcore.DebugLevel},
		{"info", "json", zapcore.InfoLevel},
		{"warn", "json", zapcore.WarnLevel},
		{"error", "console", zapcore.ErrorLevel},
		{"bogus", "json", zapcore.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.level+"/"+tt.format, func(t *testing.T) {
			l, err := New(tt.level, tt.format)
			require.NoError(t, err)
			assert.True(t, l.Core().Enabled(tt.want))
			if tt.want > zapcore.DebugLevel {
				assert.False(t, l.Core().Enabled(tt.want-1))
			}
		})
	}
}

func TestMust(t *testing.T) {
	assert.NotPanics(t, func() { Must("info", "console") })
}
