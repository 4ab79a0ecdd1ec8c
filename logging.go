package mmkv

import (
	"fmt"
	"sync"
)

// LogLevel mirrors the closed set of levels recognized by the store's
// configuration: debug, info, warning, error, and none (silence).
type LogLevel int

const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelWarning
	LogLevelError
	LogLevelNone
)

func (l LogLevel) String() string {
	switch l {
	case LogLevelDebug:
		return "debug"
	case LogLevelInfo:
		return "info"
	case LogLevelWarning:
		return "warning"
	case LogLevelError:
		return "error"
	case LogLevelNone:
		return "none"
	default:
		return "unknown"
	}
}

// LogHandler receives a formatted log line at or above the current log level.
type LogHandler func(level LogLevel, msg string)

var (
	logMu      sync.Mutex
	logLevel   = LogLevelInfo
	logHandler LogHandler
)

// SetLogLevel sets the process-wide minimum level that reaches the log handler.
func SetLogLevel(level LogLevel) {
	logMu.Lock()
	defer logMu.Unlock()
	logLevel = level
}

// RegisterLogHandler installs a callback invoked for every log line at or
// above the current level. Until one is registered, log lines are dropped.
func RegisterLogHandler(h LogHandler) {
	logMu.Lock()
	defer logMu.Unlock()
	logHandler = h
}

// UnregisterLogHandler removes a previously registered handler.
func UnregisterLogHandler() {
	logMu.Lock()
	defer logMu.Unlock()
	logHandler = nil
}

func logf(level LogLevel, format string, args ...any) {
	logMu.Lock()
	curLevel := logLevel
	h := logHandler
	logMu.Unlock()

	if level < curLevel || curLevel == LogLevelNone || h == nil {
		return
	}
	h(level, fmt.Sprintf(format, args...))
}

func logDebug(format string, args ...any)   { logf(LogLevelDebug, format, args...) }
func logInfo(format string, args ...any)    { logf(LogLevelInfo, format, args...) }
func logWarning(format string, args ...any) { logf(LogLevelWarning, format, args...) }
func logError(format string, args ...any)   { logf(LogLevelError, format, args...) }
