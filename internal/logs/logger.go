package logs

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
)

type Level string

const (
	INFO  Level = "INFO"
	WARN  Level = "WARN"
	ERROR Level = "ERROR"
	DEBUG Level = "DEBUG"
)

// levelPriority defines the priority of each log level
// higher value= more severe
var levelPriority = map[Level]int{
	DEBUG: 1,
	INFO:  2,
	WARN:  3,
	ERROR: 4,
}

var slogLevels = map[Level]slog.Level{
	DEBUG: slog.LevelDebug,
	INFO:  slog.LevelInfo,
	WARN:  slog.LevelWarn,
	ERROR: slog.LevelError,
}

// ParseLevel accepts a level name in any case.
func ParseLevel(s string) (Level, error) {
	l := Level(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := levelPriority[l]; !ok {
		return "", fmt.Errorf("unknown log level %q", s)
	}
	return l, nil
}

// SlogLevel converts l for handler options.
func (l Level) SlogLevel() slog.Level {
	return slogLevels[l]
}

type Entry struct {
	TimeStamp time.Time      `json:"timestamp"`
	Level     Level          `json:"level"`
	Message   string         `json:"message"`
	Attrs     map[string]any `json:"attrs,omitempty"`
}

// Logger keeps the most recent entries in memory for diagnostics and
// forwards every recorded entry to slog.
type Logger struct {
	mu      sync.Mutex
	entries []Entry
	maxSize int
	level   Level
	sink    *slog.Logger
}

// level: minimum log level to record(e.g., INFO, WARN, ERROR,DEBUG)
//
//maxsize:maximum number of log entries kept in memory
func NewLogger(maxSize int, level Level) *Logger {
	return &Logger{
		entries: make([]Entry, 0, maxSize),
		maxSize: maxSize,
		level:   level,
		sink:    New("heartrisk"),
	}
}

// WithSink replaces the slog logger entries are forwarded to.
func (l *Logger) WithSink(sink *slog.Logger) *Logger {
	l.sink = sink
	return l
}

// log is the internal logging function
// it applies level filtering and ring buffer behavior
func (l *Logger) log(level Level, msg string, args []any) {
	//filter logs below the current level
	if levelPriority[level] < levelPriority[l.level] {
		return
	}

	l.mu.Lock()
	if l.maxSize > 0 {
		if len(l.entries) >= l.maxSize {
			//remove oldest entry(ring behavior)
			l.entries = l.entries[1:]
		}
		l.entries = append(l.entries, Entry{
			TimeStamp: time.Now(),
			Level:     level,
			Message:   msg,
			Attrs:     attrsOf(args),
		})
	}
	l.mu.Unlock()

	if l.sink != nil {
		l.sink.Log(context.Background(), level.SlogLevel(), msg, args...)
	}
}

func (l *Logger) Debug(msg string, args ...any) {
	l.log(DEBUG, msg, args)
}

func (l *Logger) Info(msg string, args ...any) {
	l.log(INFO, msg, args)
}

func (l *Logger) Warn(msg string, args ...any) {
	l.log(WARN, msg, args)
}

func (l *Logger) Error(msg string, args ...any) {
	l.log(ERROR, msg, args)
}

func (l *Logger) GetLast(n int) []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	if n < 0 {
		n = 0
	}
	if n > len(l.entries) {
		n = len(l.entries)
	}

	start := len(l.entries) - n
	out := make([]Entry, n)
	for i, e := range l.entries[start:] {
		e.Attrs = copyAttrs(e.Attrs)
		out[i] = e
	}
	return out
}

// attrsOf turns slog-style key/value pairs into a map.
func attrsOf(args []any) map[string]any {
	if len(args) == 0 {
		return nil
	}
	out := make(map[string]any, len(args)/2)
	for i := 0; i < len(args); i++ {
		switch a := args[i].(type) {
		case slog.Attr:
			out[a.Key] = a.Value.Any()
		case string:
			if i+1 < len(args) {
				out[a] = args[i+1]
				i++
			} else {
				out["!BADKEY"] = a
			}
		default:
			out["!BADKEY"] = a
		}
	}
	for k, v := range out {
		if err, ok := v.(error); ok {
			out[k] = err.Error()
		}
	}
	return out
}

func copyAttrs(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
