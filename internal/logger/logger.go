package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// Color codes for terminal output
const (
	ColorReset  = "\033[0m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorBlue   = "\033[34m"
	ColorCyan   = "\033[36m"
	ColorBold   = "\033[1m"
	ColorRed    = "\033[31m"
)

type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

var severity = map[LogLevel]int{
	LogLevelDebug: 0,
	LogLevelInfo:  1,
	LogLevelWarn:  2,
	LogLevelError: 3,
}

var (
	mu                   = sync.RWMutex{}
	globalLevel          = LogLevelInfo
	out         io.Writer = os.Stdout
)

// SetGlobalLevel changes the level used by every logger created afterwards.
// Unknown names fall back to info.
func SetGlobalLevel(level string) {
	l := LogLevel(strings.ToLower(strings.TrimSpace(level)))
	if _, ok := severity[l]; !ok {
		l = LogLevelInfo
	}
	mu.Lock()
	globalLevel = l
	mu.Unlock()
}

// SetOutput redirects all log output, mostly for tests.
func SetOutput(w io.Writer) {
	mu.Lock()
	out = w
	mu.Unlock()
}

type Log struct {
	level LogLevel
	err   error
}

func New() *Log {
	mu.RLock()
	defer mu.RUnlock()
	return &Log{
		level: globalLevel,
	}
}

func (l *Log) SetLevel(level LogLevel) {
	l.level = level
}

func (l *Log) WithError(err error) *Log {
	return &Log{level: l.level, err: err}
}

func (l *Log) enabled(level LogLevel) bool {
	return severity[level] >= severity[l.level]
}

func (l *Log) timestamp() string {
	return time.Now().Format("15:04:05")
}

func (l *Log) print(color, icon, msg string) {
	mu.RLock()
	w := out
	mu.RUnlock()

	if l.err != nil {
		fmt.Fprintf(w, "%s[%s]%s %s %s: %v%s\n", color, l.timestamp(), ColorReset, icon, msg, l.err, ColorReset)
		return
	}
	fmt.Fprintf(w, "%s[%s]%s %s %s%s\n", color, l.timestamp(), ColorReset, icon, msg, ColorReset)
}

func (l *Log) Debug(msg string) {
	if !l.enabled(LogLevelDebug) {
		return
	}
	l.print(ColorCyan, "🔍", msg)
}

func (l *Log) Info(msg string) {
	if !l.enabled(LogLevelInfo) {
		return
	}
	l.print(ColorBlue, "ℹ️ ", msg)
}

// Award prints a highlighted line for a user milestone.
func (l *Log) Award(username, msg string) {
	if !l.enabled(LogLevelInfo) {
		return
	}
	l.print(ColorGreen+ColorBold, "🏆", fmt.Sprintf("[%s] %s", username, msg))
}

func (l *Log) Warn(msg string) {
	if !l.enabled(LogLevelWarn) {
		return
	}
	l.print(ColorYellow, "⚠️ ", msg)
}

func (l *Log) Error(msg string) {
	l.print(ColorRed, "❌", msg)
}
