package settings

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadEnvDefaults(t *testing.T) {
	t.Setenv(EnvImportStrategy, "")
	t.Setenv(EnvNotification, "")
	t.Setenv(EnvInterpreter, "")

	env := LoadEnv()
	assert.Equal(t, ImportBundled, env.ImportStrategy)
	assert.Equal(t, NotifyOff, env.Notification)
	assert.Equal(t, "python3", env.Interpreter)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv(EnvImportStrategy, "fromEnvironment")
	t.Setenv(EnvNotification, "onError")
	t.Setenv(EnvInterpreter, "/opt/python/bin/python")

	env := LoadEnv()
	assert.Equal(t, ImportFromEnvironment, env.ImportStrategy)
	assert.Equal(t, NotifyOnError, env.Notification)
	assert.Equal(t, "/opt/python/bin/python", env.Interpreter)
}

func TestLoadEnvRejectsUnknownValues(t *testing.T) {
	t.Setenv(EnvImportStrategy, "sideways")
	t.Setenv(EnvNotification, "sometimes")

	env := LoadEnv()
	assert.Equal(t, ImportBundled, env.ImportStrategy)
	assert.Equal(t, NotifyOff, env.Notification)
}

func TestNotificationLevelShows(t *testing.T) {
	tests := []struct {
		level  NotificationLevel
		record slog.Level
		want   bool
	}{
		{NotifyOff, slog.LevelError, false},
		{NotifyOnError, slog.LevelError, true},
		{NotifyOnError, slog.LevelWarn, false},
		{NotifyOnWarning, slog.LevelWarn, true},
		{NotifyOnWarning, slog.LevelError, true},
		{NotifyOnWarning, slog.LevelInfo, false},
		{NotifyAlways, slog.LevelInfo, true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.level.Shows(tt.record),
			"%s shows %s", tt.level, tt.record)
	}
}
