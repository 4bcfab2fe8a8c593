package settings

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
)

// ImportStrategy selects whether bundled libraries are preferred over
// environment-provided ones on the module search path.
type ImportStrategy string

// Import strategies.
const (
	ImportBundled         ImportStrategy = "useBundled"
	ImportFromEnvironment ImportStrategy = "fromEnvironment"
)

// NotificationLevel selects when user-visible notifications accompany log
// entries sent to the editor.
type NotificationLevel string

// Notification levels.
const (
	NotifyOff       NotificationLevel = "off"
	NotifyOnError   NotificationLevel = "onError"
	NotifyOnWarning NotificationLevel = "onWarning"
	NotifyAlways    NotificationLevel = "always"
)

// Shows reports whether a log record at the given level should also be
// surfaced as a user-visible notification.
func (n NotificationLevel) Shows(level slog.Level) bool {
	switch {
	case level >= slog.LevelError:
		return n == NotifyOnError || n == NotifyOnWarning || n == NotifyAlways
	case level >= slog.LevelWarn:
		return n == NotifyOnWarning || n == NotifyAlways
	default:
		return n == NotifyAlways
	}
}

// Environment variable names read by Env.
const (
	EnvImportStrategy = "BLACKBRIDGE_IMPORT_STRATEGY"
	EnvNotification   = "BLACKBRIDGE_SHOW_NOTIFICATION"
	EnvInterpreter    = "BLACKBRIDGE_INTERPRETER"
	EnvBundledLibs    = "BLACKBRIDGE_BUNDLED_LIBS"
	EnvRunnerScript   = "BLACKBRIDGE_RUNNER"
)

// Env is the environment-level configuration of the bridge process.
type Env struct {
	// ImportStrategy controls whether the bundled libs directory is
	// prepended (useBundled) or appended (fromEnvironment) to the module
	// search path for in-runtime invocations.
	ImportStrategy ImportStrategy

	// Notification selects when log entries produce editor notifications.
	Notification NotificationLevel

	// Interpreter is the host interpreter executable: the runtime the
	// bridge treats as its own when deciding between in-runtime and
	// cross-runtime execution.
	Interpreter string

	// BundledLibs is the directory of libraries shipped with the bridge.
	BundledLibs string

	// RunnerScript is the companion runner invoked under a foreign
	// interpreter for cross-runtime calls.
	RunnerScript string
}

// LoadEnv reads environment-level configuration, honoring a .env file when
// one is present.
func LoadEnv() Env {
	_ = godotenv.Load()

	env := Env{
		ImportStrategy: ImportStrategy(getenv(EnvImportStrategy, string(ImportBundled))),
		Notification:   NotificationLevel(getenv(EnvNotification, string(NotifyOff))),
		Interpreter:    getenv(EnvInterpreter, "python3"),
		BundledLibs:    os.Getenv(EnvBundledLibs),
		RunnerScript:   os.Getenv(EnvRunnerScript),
	}
	if env.ImportStrategy != ImportFromEnvironment {
		env.ImportStrategy = ImportBundled
	}
	switch env.Notification {
	case NotifyOnError, NotifyOnWarning, NotifyAlways:
	default:
		env.Notification = NotifyOff
	}
	return env
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
