// Copyright (c) 2025 cocowh. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package logger

import (
	"io"
	"log"
	"os"
	"sync"
)

var (
	mu       sync.RWMutex
	loggers  []Logger
	fallback = NewStdLogger(os.Stderr, "", log.LstdFlags, InfoLevel)
)

type Logger interface {
	Debugf(format string, args ...any)
	Debug(args ...any)
	Infof(format string, args ...any)
	Info(args ...any)
	Warnf(format string, args ...any)
	Warn(args ...any)
	Errorf(format string, args ...any)
	Error(args ...any)
	Fatalf(format string, args ...any)
	Fatal(args ...any)
}

// InitDefaultLogger replaces the registered loggers with a zap logger built
// from config. A nil config uses DefaultConfig.
func InitDefaultLogger(config *Config) error {
	if config == nil {
		config = DefaultConfig()
	}
	l, err := NewZapLoggerWithConfig(config)
	if err != nil {
		return err
	}
	SetLogger(l)
	return nil
}

// SetLogger replaces every registered logger.
func SetLogger(logger ...Logger) {
	mu.Lock()
	old := loggers
	loggers = append([]Logger(nil), logger...)
	mu.Unlock()
	closeAll(old)
}

// Close flushes and closes the registered loggers that hold resources.
func Close() {
	mu.Lock()
	old := loggers
	loggers = nil
	mu.Unlock()
	closeAll(old)
}

func closeAll(ls []Logger) {
	for _, l := range ls {
		if c, ok := l.(io.Closer); ok {
			_ = c.Close()
		}
	}
}

func each(f func(Logger)) {
	mu.RLock()
	ls := loggers
	mu.RUnlock()
	if len(ls) == 0 {
		f(fallback)
		return
	}
	for _, l := range ls {
		f(l)
	}
}

func Debugf(msg string, fields ...any) {
	each(func(l Logger) { l.Debugf(msg, fields...) })
}

func Debug(fields ...any) {
	each(func(l Logger) { l.Debug(fields...) })
}

func Infof(msg string, fields ...any) {
	each(func(l Logger) { l.Infof(msg, fields...) })
}

func Info(fields ...any) {
	each(func(l Logger) { l.Info(fields...) })
}

func Warnf(msg string, fields ...any) {
	each(func(l Logger) { l.Warnf(msg, fields...) })
}

func Warn(fields ...any) {
	each(func(l Logger) { l.Warn(fields...) })
}

func Errorf(msg string, fields ...any) {
	each(func(l Logger) { l.Errorf(msg, fields...) })
}

func Error(fields ...any) {
	each(func(l Logger) { l.Error(fields...) })
}

func Fatalf(msg string, fields ...any) {
	each(func(l Logger) { l.Fatalf(msg, fields...) })
	os.Exit(1)
}

func Fatal(fields ...any) {
	each(func(l Logger) { l.Fatal(fields...) })
	os.Exit(1)
}
