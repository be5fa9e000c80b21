package logger

import (
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"
)

// logEntry is a single formatted line waiting to be written by the backend's
// writer goroutine.
type logEntry struct {
	level Level
	log   []byte
}

// Logger writes log messages for a single subsystem to its Backend. The
// level can be changed at runtime with SetLevel to raise or lower verbosity
// without restarting the process.
type Logger struct {
	level        uint32
	subsystemTag string
	b            *Backend
	writeChan    chan logEntry
}

// defaultBackend is used by every logger created through RegisterSubSystem.
// Subsystems that need a differently-configured backend can use
// Backend.Logger directly instead.
var defaultBackend = NewBackend()

var subsystems sync.Map

// RegisterSubSystem creates a logger for the given subsystem tag, using the
// package's default backend, and remembers it so SetLogLevels can adjust
// every registered subsystem's level at once.
func RegisterSubSystem(tag string) *Logger {
	log := defaultBackend.Logger(tag)
	subsystems.Store(tag, log)
	return log
}

// DefaultBackend returns the backend used by RegisterSubSystem. Callers add
// log files or writers to it and then call Run to start the writer
// goroutine.
func DefaultBackend() *Backend {
	return defaultBackend
}

// SetLogLevels sets the log level for every subsystem registered so far
// through RegisterSubSystem.
func SetLogLevels(level Level) {
	subsystems.Range(func(_, value interface{}) bool {
		value.(*Logger).SetLevel(level)
		return true
	})
}

// Level returns the logger's current level.
func (l *Logger) Level() Level {
	return Level(atomic.LoadUint32(&l.level))
}

// SetLevel changes the logger's level.
func (l *Logger) SetLevel(level Level) {
	atomic.StoreUint32(&l.level, uint32(level))
}

// Backend returns the backend this logger writes to.
func (l *Logger) Backend() *Backend {
	return l.b
}

func (l *Logger) write(level Level, s string) {
	if level < l.Level() {
		return
	}
	line := l.formatLine(level, s)
	if !l.b.IsRunning() {
		fmt.Print(line)
		return
	}
	l.writeChan <- logEntry{level: level, log: []byte(line)}
}

func (l *Logger) formatLine(level Level, s string) string {
	prefix := fmt.Sprintf("%s [%s] %s: ", time.Now().Format("2006-01-02 15:04:05.000"), level, l.subsystemTag)
	if l.b.flag&(LogFlagLongFile|LogFlagShortFile) != 0 {
		prefix += callsite(l.b.flag&LogFlagShortFile != 0) + ": "
	}
	if n := len(s); n == 0 || s[n-1] != '\n' {
		s += "\n"
	}
	return prefix + s
}

func callsite(short bool) string {
	_, file, line, ok := runtime.Caller(4)
	if !ok {
		return "???"
	}
	if short {
		for i := len(file) - 1; i > 0; i-- {
			if file[i] == '/' {
				file = file[i+1:]
				break
			}
		}
	}
	return file + ":" + strconv.Itoa(line)
}

// Tracef formats and writes a trace-level log message.
func (l *Logger) Tracef(format string, args ...interface{}) {
	l.write(LevelTrace, fmt.Sprintf(format, args...))
}

// Debugf formats and writes a debug-level log message.
func (l *Logger) Debugf(format string, args ...interface{}) {
	l.write(LevelDebug, fmt.Sprintf(format, args...))
}

// Infof formats and writes an info-level log message.
func (l *Logger) Infof(format string, args ...interface{}) {
	l.write(LevelInfo, fmt.Sprintf(format, args...))
}

// Warnf formats and writes a warn-level log message.
func (l *Logger) Warnf(format string, args ...interface{}) {
	l.write(LevelWarn, fmt.Sprintf(format, args...))
}

// Errorf formats and writes an error-level log message.
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.write(LevelError, fmt.Sprintf(format, args...))
}

// Criticalf formats and writes a critical-level log message.
func (l *Logger) Criticalf(format string, args ...interface{}) {
	l.write(LevelCritical, fmt.Sprintf(format, args...))
}
