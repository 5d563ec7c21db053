// Package log provides the process-wide zap logger for glacierpost.
package log

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

var (
	mu         sync.RWMutex
	sugared    *zap.SugaredLogger
	baseLogger *zap.Logger
	nopOnce    sync.Once
)

// Init builds the package-level logger. Debug mode uses zap's development
// config (console encoder, debug level); otherwise production JSON output.
func Init(debug bool) error {
	var (
		zapLogger *zap.Logger
		err       error
	)

	if debug {
		zapLogger, err = zap.NewDevelopment(zap.AddCallerSkip(1))
	} else {
		zapLogger, err = zap.NewProduction(zap.AddCallerSkip(1))
	}
	if err != nil {
		return fmt.Errorf("can't initialize zap logger: %w", err)
	}

	mu.Lock()
	baseLogger = zapLogger
	sugared = zapLogger.Sugar()
	mu.Unlock()
	return nil
}

// loggers returns the current pair, installing a no-op logger on first use before Init
func loggers() (*zap.Logger, *zap.SugaredLogger) {
	nopOnce.Do(func() {
		mu.Lock()
		defer mu.Unlock()
		if baseLogger == nil {
			baseLogger = zap.NewNop()
			sugared = baseLogger.Sugar()
		}
	})

	mu.RLock()
	defer mu.RUnlock()
	return baseLogger, sugared
}

// GetZapLogger returns the base zap logger, for libraries that want a *zap.Logger (gorm).
// Before Init it returns a no-op logger so library code and tests stay quiet.
func GetZapLogger() *zap.Logger {
	base, _ := loggers()
	return base
}

// GetSugaredLogger returns the sugared logger instance
func GetSugaredLogger() *zap.SugaredLogger {
	_, s := loggers()
	return s
}

// Named returns a sugared logger tagged with a component name
func Named(component string) *zap.SugaredLogger {
	base, _ := loggers()
	return base.WithOptions(zap.AddCallerSkip(-1)).Sugar().Named(component)
}

// Sync flushes any buffered log entries
func Sync() {
	mu.RLock()
	s := sugared
	mu.RUnlock()
	if s != nil {
		_ = s.Sync()
	}
}

func Debugf(template string, args ...interface{}) {
	GetSugaredLogger().Debugf(template, args...)
}

func Debugw(msg string, keysAndValues ...interface{}) {
	GetSugaredLogger().Debugw(msg, keysAndValues...)
}

func Info(args ...interface{}) {
	GetSugaredLogger().Info(args...)
}

func Infof(template string, args ...interface{}) {
	GetSugaredLogger().Infof(template, args...)
}

func Infow(msg string, keysAndValues ...interface{}) {
	GetSugaredLogger().Infow(msg, keysAndValues...)
}

func Warn(args ...interface{}) {
	GetSugaredLogger().Warn(args...)
}

func Warnf(template string, args ...interface{}) {
	GetSugaredLogger().Warnf(template, args...)
}

func Warnw(msg string, keysAndValues ...interface{}) {
	GetSugaredLogger().Warnw(msg, keysAndValues...)
}

func Errorf(template string, args ...interface{}) {
	GetSugaredLogger().Errorf(template, args...)
}

func Errorw(msg string, keysAndValues ...interface{}) {
	GetSugaredLogger().Errorw(msg, keysAndValues...)
}
