package logger

import (
	"context"
	"log"
	"os"
	"strings"
)

type implLogger struct {
	logger *log.Logger
	level  string
}

// New creates a new Logger instance writing to stderr, so that command
// output on stdout stays clean.
func New(level string) Logger {
	return &implLogger{
		logger: log.New(os.Stderr, "", log.LstdFlags),
		level:  strings.ToLower(level),
	}
}

func (l *implLogger) shouldLog(level string) bool {
	levels := map[string]int{
		"debug": 0,
		"info":  1,
		"warn":  2,
		"error": 3,
	}

	currentLevel, ok := levels[l.level]
	if !ok {
		currentLevel = 1 // default to info
	}

	targetLevel, ok := levels[level]
	if !ok {
		return true
	}

	return targetLevel >= currentLevel
}

func (l *implLogger) Debug(ctx context.Context, msg string, args ...interface{}) {
	if l.shouldLog("debug") {
		l.logger.Printf("[DEBUG] "+msg, args...)
	}
}

func (l *implLogger) Info(ctx context.Context, msg string, args ...interface{}) {
	if l.shouldLog("info") {
		l.logger.Printf("[INFO] "+msg, args...)
	}
}

func (l *implLogger) Warn(ctx context.Context, msg string, args ...interface{}) {
	if l.shouldLog("warn") {
		l.logger.Printf("[WARN] "+msg, args...)
	}
}

func (l *implLogger) Error(ctx context.Context, msg string, args ...interface{}) {
	if l.shouldLog("error") {
		l.logger.Printf("[ERROR] "+msg, args...)
	}
}

type namedLogger struct {
	base Logger
	name string
}

// Named wraps a Logger so every message carries a component name.
func Named(base Logger, name string) Logger {
	return &namedLogger{base: base, name: name}
}

func (l *namedLogger) Debug(ctx context.Context, msg string, args ...interface{}) {
	l.base.Debug(ctx, "("+l.name+") "+msg, args...)
}

func (l *namedLogger) Info(ctx context.Context, msg string, args ...interface{}) {
	l.base.Info(ctx, "("+l.name+") "+msg, args...)
}

func (l *namedLogger) Warn(ctx context.Context, msg string, args ...interface{}) {
	l.base.Warn(ctx, "("+l.name+") "+msg, args...)
}

func (l *namedLogger) Error(ctx context.Context, msg string, args ...interface{}) {
	l.base.Error(ctx, "("+l.name+") "+msg, args...)
}

// Nop returns a Logger that discards everything. Useful in tests.
func Nop() Logger {
	return nopLogger{}
}

type nopLogger struct{}

func (nopLogger) Debug(ctx context.Context, msg string, args ...interface{}) {}
func (nopLogger) Info(ctx context.Context, msg string, args ...interface{})  {}
func (nopLogger) Warn(ctx context.Context, msg string, args ...interface{})  {}
func (nopLogger) Error(ctx context.Context, msg string, args ...interface{}) {}
