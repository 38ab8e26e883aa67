package probe

// SLogger abstracts the [*slog.Logger] behavior.
//
// Info is used for one event at the start and end of every tool run, Debug
// for process details and Warn for executions that could not be started.
// The [*slog.Logger] type satisfies this interface.
type SLogger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
}

// DefaultSLogger returns a logger that discards every message.
func DefaultSLogger() SLogger {
	return discardSLogger{}
}

type discardSLogger struct{}

var _ SLogger = discardSLogger{}

func (discardSLogger) Debug(msg string, args ...any) {}

func (discardSLogger) Info(msg string, args ...any) {}

func (discardSLogger) Warn(msg string, args ...any) {}
