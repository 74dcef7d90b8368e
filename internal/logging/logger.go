// Package logging provides config-driven categorized logging for FutureProof.
// Each category gets a named zap logger. In debug mode every enabled
// category also writes to its own file under .futureproof/logs/.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"futureproof/internal/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category represents a log category/system
type Category string

const (
	CategoryBoot       Category = "boot"       // Startup and config
	CategoryAuth       Category = "auth"       // Login, registration, sign-out
	CategoryOnboarding Category = "onboarding" // Questionnaire and submission
	CategoryAPI        Category = "api"        // HTTP calls to the backend
	CategorySession    Category = "session"    // Session persistence
	CategoryUI         Category = "ui"         // Terminal UI
	CategoryMockAPI    Category = "mockapi"    // Local development backend
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryBoot, CategoryAuth, CategoryOnboarding, CategoryAPI,
	CategorySession, CategoryUI, CategoryMockAPI,
}

// DefaultDir is where log files go when the config names none.
const DefaultDir = ".futureproof/logs"

var (
	mu      sync.RWMutex
	cfg     config.LoggingConfig
	level   = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	stderr  zapcore.Core
	logsDir string
	loggers = make(map[Category]*zap.Logger)
	files   []*os.File
)

// Initialize applies the logging config. With toStderr set, every category
// also logs to stderr; the TUI passes false so nothing is drawn over it.
// It may be called again to reconfigure; open files are closed first.
func Initialize(c config.LoggingConfig, toStderr bool) error {
	lvl := zapcore.InfoLevel
	if c.Level != "" {
		parsed, err := zapcore.ParseLevel(c.Level)
		if err != nil {
			return fmt.Errorf("invalid log level %q: %w", c.Level, err)
		}
		lvl = parsed
	}

	CloseAll()

	mu.Lock()
	cfg = c
	level.SetLevel(lvl)
	logsDir = c.Dir
	if logsDir == "" {
		logsDir = DefaultDir
	}
	stderr = nil
	if toStderr {
		stderr = zapcore.NewCore(encoder(c.Format), zapcore.Lock(os.Stderr), level)
	}
	mu.Unlock()

	if c.DebugMode {
		if err := os.MkdirAll(logsDir, 0755); err != nil {
			return fmt.Errorf("failed to create logs directory: %w", err)
		}
	}

	boot := Get(CategoryBoot)
	boot.Debug("logging initialized",
		zap.Bool("debug_mode", c.DebugMode),
		zap.String("level", lvl.String()),
		zap.String("dir", logsDir))
	return nil
}

func encoder(format string) zapcore.Encoder {
	if format == "json" {
		return zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	}
	ec := zap.NewDevelopmentEncoderConfig()
	ec.EncodeTime = zapcore.TimeEncoderOfLayout(time.TimeOnly)
	return zapcore.NewConsoleEncoder(ec)
}

// IsDebugMode returns whether file logging is on.
func IsDebugMode() bool {
	mu.RLock()
	defer mu.RUnlock()
	return cfg.DebugMode
}

// IsCategoryEnabled returns whether a category writes to its log file.
func IsCategoryEnabled(category Category) bool {
	mu.RLock()
	defer mu.RUnlock()
	return cfg.IsCategoryEnabled(string(category))
}

// Dir returns the directory log files are written to.
func Dir() string {
	mu.RLock()
	defer mu.RUnlock()
	return logsDir
}

// SetLevel changes the level of every category at runtime.
func SetLevel(l zapcore.Level) {
	level.SetLevel(l)
}

// Get returns (or creates) the logger for a category. It is a no-op logger
// when neither stderr nor the category's file is enabled.
func Get(category Category) *zap.Logger {
	mu.RLock()
	if l, ok := loggers[category]; ok {
		mu.RUnlock()
		return l
	}
	mu.RUnlock()

	mu.Lock()
	defer mu.Unlock()
	if l, ok := loggers[category]; ok {
		return l
	}

	var cores []zapcore.Core
	if stderr != nil {
		cores = append(cores, stderr)
	}
	if cfg.IsCategoryEnabled(string(category)) {
		if core, err := fileCore(category); err != nil {
			fmt.Fprintf(os.Stderr, "[logging] Warning: %v\n", err)
		} else {
			cores = append(cores, core)
		}
	}

	l := zap.NewNop()
	if len(cores) > 0 {
		l = zap.New(zapcore.NewTee(cores...)).Named(string(category))
	}
	loggers[category] = l
	return l
}

// fileCore opens the day's file for a category. Callers hold mu.
func fileCore(category Category) (zapcore.Core, error) {
	name := fmt.Sprintf("%s_%s.log", time.Now().Format("2006-01-02"), category)
	path := filepath.Join(logsDir, name)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("could not open log file %s: %w", path, err)
	}
	files = append(files, f)
	return zapcore.NewCore(zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()), zapcore.AddSync(f), level), nil
}

// Sync flushes every category logger.
func Sync() {
	mu.RLock()
	defer mu.RUnlock()
	for _, l := range loggers {
		_ = l.Sync()
	}
}

// CloseAll flushes and closes the log files and forgets the cached loggers.
func CloseAll() {
	mu.Lock()
	defer mu.Unlock()
	for _, l := range loggers {
		_ = l.Sync()
	}
	for _, f := range files {
		_ = f.Close()
	}
	files = nil
	loggers = make(map[Category]*zap.Logger)
}
