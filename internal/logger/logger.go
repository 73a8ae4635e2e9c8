package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

// LogLevel represents the severity level of a log message
type LogLevel int

// Log levels
const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
	FATAL
)

// Sink is a host-provided destination for log lines, typically the
// engine's debug console callback. A nil sink is silently ignored.
type Sink func(string)

// Logger handles logging functionalities
type Logger struct {
	level     LogLevel
	logger    *log.Logger
	file      *os.File
	sink      Sink
	useColors bool
}

// levelColors maps log levels to ANSI color codes
var levelColors = map[LogLevel]string{
	DEBUG: "\033[36m", // Cyan
	INFO:  "\033[32m", // Green
	WARN:  "\033[33m", // Yellow
	ERROR: "\033[31m", // Red
	FATAL: "\033[35m", // Magenta
}

// levelPrefixes maps log levels to text prefixes
var levelPrefixes = map[LogLevel]string{
	DEBUG: "DEBUG",
	INFO:  "INFO ",
	WARN:  "WARN ",
	ERROR: "ERROR",
	FATAL: "FATAL",
}

// parseLevel converts a level name into a LogLevel, defaulting to INFO
func parseLevel(levelStr string) LogLevel {
	switch strings.ToLower(levelStr) {
	case "debug":
		return DEBUG
	case "info":
		return INFO
	case "warn":
		return WARN
	case "error":
		return ERROR
	case "fatal":
		return FATAL
	default:
		return INFO
	}
}

// NewLogger creates a new logger with the specified log level
func NewLogger(levelStr string) *Logger {
	logger := &Logger{
		level:     parseLevel(levelStr),
		logger:    log.New(os.Stdout, "", 0), // We'll format the prefix manually
		useColors: true,
	}

	// Disable colors if not in a terminal
	if fileInfo, _ := os.Stdout.Stat(); (fileInfo.Mode() & os.ModeCharDevice) == 0 {
		logger.useColors = false
	}

	return logger
}

// NewFileLogger creates a new logger that writes to a file
func NewFileLogger(levelStr, filePath string) (*Logger, error) {
	file, err := openLogFile(filePath)
	if err != nil {
		return nil, err
	}

	logger := NewLogger(levelStr)
	logger.logger.SetOutput(file)
	logger.file = file
	logger.useColors = false

	return logger, nil
}

// NewMultiLogger creates a logger that writes to both console and file
func NewMultiLogger(levelStr, filePath string) (*Logger, error) {
	file, err := openLogFile(filePath)
	if err != nil {
		return nil, err
	}

	logger := NewLogger(levelStr)
	logger.logger.SetOutput(io.MultiWriter(os.Stdout, file))
	logger.file = file

	return logger, nil
}

// NewSinkLogger creates a logger whose only destination is the given sink.
// Useful when the plugin runs inside a host engine and stdout is not visible.
func NewSinkLogger(levelStr string, sink Sink) *Logger {
	return &Logger{
		level:  parseLevel(levelStr),
		logger: log.New(io.Discard, "", 0),
		sink:   sink,
	}
}

// openLogFile creates the log directory and opens the file for appending
func openLogFile(filePath string) (*os.File, error) {
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %v", err)
	}

	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %v", err)
	}
	return file, nil
}

// prefix formats the log line prefix with timestamp, level and caller info
func (l *Logger) prefix(level LogLevel) string {
	// Skip past prefix, log/logf and the public method
	_, file, line, ok := runtime.Caller(3)
	if !ok {
		file = "unknown"
		line = 0
	}
	file = filepath.Base(file)

	now := time.Now().Format("2006/01/02 15:04:05")
	prefix := fmt.Sprintf("%s [%s] %s:%d:", now, levelPrefixes[level], file, line)

	if l.useColors {
		prefix = fmt.Sprintf("%s%s\033[0m", levelColors[level], prefix)
	}
	return prefix
}

// emit writes a fully formatted line to every configured destination
func (l *Logger) emit(level LogLevel, prefix, msg string) {
	l.logger.Println(prefix, msg)

	if l.sink != nil {
		l.sink(fmt.Sprintf("[%s] %s", strings.TrimSpace(levelPrefixes[level]), msg))
	}

	// If FATAL, exit the program
	if level == FATAL {
		if l.file != nil {
			l.file.Close()
		}
		os.Exit(1)
	}
}

// log logs a message with the specified level
func (l *Logger) log(level LogLevel, v ...interface{}) {
	if level < l.level {
		return
	}
	l.emit(level, l.prefix(level), fmt.Sprint(v...))
}

// logf logs a formatted message with the specified level
func (l *Logger) logf(level LogLevel, format string, v ...interface{}) {
	if level < l.level {
		return
	}
	l.emit(level, l.prefix(level), fmt.Sprintf(format, v...))
}

// Debug logs a debug message
func (l *Logger) Debug(v ...interface{}) {
	l.log(DEBUG, v...)
}

// Debugf logs a formatted debug message
func (l *Logger) Debugf(format string, v ...interface{}) {
	l.logf(DEBUG, format, v...)
}

// Info logs an info message
func (l *Logger) Info(v ...interface{}) {
	l.log(INFO, v...)
}

// Infof logs a formatted info message
func (l *Logger) Infof(format string, v ...interface{}) {
	l.logf(INFO, format, v...)
}

// Warn logs a warning message
func (l *Logger) Warn(v ...interface{}) {
	l.log(WARN, v...)
}

// Warnf logs a formatted warning message
func (l *Logger) Warnf(format string, v ...interface{}) {
	l.logf(WARN, format, v...)
}

// Error logs an error message
func (l *Logger) Error(v ...interface{}) {
	l.log(ERROR, v...)
}

// Errorf logs a formatted error message
func (l *Logger) Errorf(format string, v ...interface{}) {
	l.logf(ERROR, format, v...)
}

// Fatal logs a fatal message and exits the program
func (l *Logger) Fatal(v ...interface{}) {
	l.log(FATAL, v...)
}

// Fatalf logs a formatted fatal message and exits the program
func (l *Logger) Fatalf(format string, v ...interface{}) {
	l.logf(FATAL, format, v...)
}

// SetLevel sets the log level
func (l *Logger) SetLevel(levelStr string) {
	l.level = parseLevel(levelStr)
}

// SetSink installs (or replaces) the host sink; pass nil to detach it
func (l *Logger) SetSink(sink Sink) {
	l.sink = sink
}

// SetOutput sets the output writer for the logger
func (l *Logger) SetOutput(w io.Writer) {
	l.logger.SetOutput(w)
}

// EnableColors enables or disables colored output
func (l *Logger) EnableColors(enable bool) {
	l.useColors = enable
}

// Close closes the logger's file if it exists
func (l *Logger) Close() {
	if l.file != nil {
		l.file.Close()
		l.file = nil
	}
}
