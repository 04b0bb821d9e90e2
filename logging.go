package perfsync

import "time"

// LogKind classifies a LogEvent.
type LogKind string

const (
	LogFetch     LogKind = "fetch"
	LogAction    LogKind = "action"
	LogActivity  LogKind = "activity"
	LogNormalize LogKind = "normalize"
	LogPolicy    LogKind = "policy"
)

// LogEvent describes one fetch, action, activity emission, dropped list
// element or policy evaluation.
type LogEvent struct {
	Kind       LogKind
	Action     Action
	Collection string
	Token      uint64
	Duration   time.Duration
	// Stale is set on fetch events whose response was superseded and dropped.
	Stale bool
	// Refused is set on action events rejected before any remote call.
	Refused bool
	Err     error
}

// Logger records store events.
type Logger interface {
	Log(LogEvent)
}

// LoggerFunc adapts a function to Logger.
type LoggerFunc func(LogEvent)

// Log implements Logger.
func (f LoggerFunc) Log(event LogEvent) {
	if f != nil {
		f(event)
	}
}

// MultiLogger fans events out to several loggers.
type MultiLogger []Logger

// Log implements Logger.
func (m MultiLogger) Log(event LogEvent) {
	for _, logger := range m {
		if logger != nil {
			logger.Log(event)
		}
	}
}

type noopLogger struct{}

func (noopLogger) Log(LogEvent) {}
