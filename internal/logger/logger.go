package logger

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	// Log is the global structured logger
	Log *slog.Logger
	// logWriter is the rotating log writer
	logWriter io.WriteCloser
	// LogPath is the path to the current log file
	LogPath string
)

// LogLevel represents the logging level
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l LogLevel) slogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// DefaultPath returns ~/.config/postgressor/postgressor.log, falling back to
// the temp directory when there is no home directory.
func DefaultPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = os.TempDir()
	}
	return filepath.Join(homeDir, ".config", "postgressor", "postgressor.log")
}

// InitLogger initializes the global logger with the specified level and optional path.
// If logPath is empty, DefaultPath is used.
func InitLogger(level LogLevel, logPath string) {
	if logPath == "" {
		logPath = DefaultPath()
	}
	_ = os.MkdirAll(filepath.Dir(logPath), 0755)
	Close()

	LogPath = logPath

	// Use lumberjack for log rotation
	logWriter = &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    5, // MB
		MaxBackups: 3,
		MaxAge:     30, // days
		Compress:   true,
	}

	Log = slog.New(slog.NewJSONHandler(logWriter, &slog.HandlerOptions{Level: level.slogLevel()}))
}

// Close closes the log file
func Close() {
	if logWriter != nil {
		_ = logWriter.Close()
		logWriter = nil
	}
}

// getLogger returns the global logger, or a discarding logger if not initialized.
func getLogger() *slog.Logger {
	if Log != nil {
		return Log
	}
	return discard
}

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// Debug logs a debug message
func Debug(msg string, args ...any) {
	getLogger().Debug(msg, args...)
}

// Info logs an info message
func Info(msg string, args ...any) {
	getLogger().Info(msg, args...)
}

// Warn logs a warning message
func Warn(msg string, args ...any) {
	getLogger().Warn(msg, args...)
}

// Error logs an error message
func Error(msg string, args ...any) {
	getLogger().Error(msg, args...)
}

// With creates a new logger with additional attributes
func With(args ...any) *slog.Logger {
	return getLogger().With(args...)
}
