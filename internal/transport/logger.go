package transport

// Logger is the logging facade used by the Listener and everything it spawns.
// Implementations format messages printf-style, mirroring the rest of the
// retrieved pack's logging interfaces rather than inventing a structured one
// here; a structured adapter (internal/obslog) sits behind it in production.
type Logger interface {
	// Info logs a routine lifecycle event (accept, login, pickup, logout, ...).
	Info(msg string, args ...interface{})

	// Warn logs a client-caused condition: protocol errors, timeouts.
	Warn(msg string, args ...interface{})

	// Error logs a server-side failure unrelated to client behavior.
	Error(msg string, args ...interface{})
}

// LogLevel controls how much per-connection tracing a Logger emits. Info,
// Warn and Error are always emitted regardless of level; the level only
// gates optional Debug-ish detail that callers may choose to honor.
type LogLevel int

const (
	// LogLevelInfo disables verbose tracing; only Info/Warn/Error are emitted.
	LogLevelInfo LogLevel = iota

	// LogLevelDebug1 adds connection lifecycle detail: accept, close, cleanup.
	LogLevelDebug1

	// LogLevelDebug2 adds session state transitions.
	LogLevelDebug2

	// LogLevelDebug3 adds per-frame byte counts. Very chatty.
	LogLevelDebug3
)

// String renders the level for use in config dumps and flag help text.
func (l LogLevel) String() string {
	switch l {
	case LogLevelInfo:
		return "info"
	case LogLevelDebug1:
		return "debug1"
	case LogLevelDebug2:
		return "debug2"
	case LogLevelDebug3:
		return "debug3"
	default:
		return "unknown"
	}
}

// ParseLogLevel maps a config/flag string onto a LogLevel, defaulting to
// LogLevelInfo for anything unrecognized.
func ParseLogLevel(s string) LogLevel {
	switch s {
	case "debug1":
		return LogLevelDebug1
	case "debug2":
		return LogLevelDebug2
	case "debug3":
		return LogLevelDebug3
	default:
		return LogLevelInfo
	}
}

// noopLogger discards everything. Used as the default when no Logger is
// configured, so callers never need a nil check.
type noopLogger struct{}

func (noopLogger) Info(msg string, args ...interface{})  {}
func (noopLogger) Warn(msg string, args ...interface{})  {}
func (noopLogger) Error(msg string, args ...interface{}) {}

// NewNoopLogger returns a Logger that discards all messages.
func NewNoopLogger() Logger { return noopLogger{} }
