// Copyright (c) 2025 cocowh. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package logger

import (
	"errors"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

func NewZapLoggerWithConfig(cfg *Config) (Logger, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	if cfg.Format == "json" {
		encoder = zapcore.NewJSONEncoder(encoderCfg)
	} else {
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
	}

	cores := []zapcore.Core{}
	level := zap.NewAtomicLevelAt(cfg.Level.toZapLevel())

	var closers []io.Closer
	if cfg.LogDir != "" {
		mainWriter := newRotatingWriter(cfg)
		closers = append(closers, mainWriter)
		cores = append(cores, zapcore.NewCore(encoder, zapcore.AddSync(mainWriter), level))

		if cfg.EnableWarnFile {
			warnCfg := cfg.Clone()
			warnCfg.BaseName += "-warn"
			warnWriter := newRotatingWriter(warnCfg)
			closers = append(closers, warnWriter)
			cores = append(cores, zapcore.NewCore(encoder, zapcore.AddSync(warnWriter), zap.LevelEnablerFunc(func(l zapcore.Level) bool {
				return l >= zapcore.WarnLevel && level.Enabled(l)
			})))
		}

		if cfg.EnableErrorFile {
			errorCfg := cfg.Clone()
			errorCfg.BaseName += "-error"
			errorWriter := newRotatingWriter(errorCfg)
			closers = append(closers, errorWriter)
			cores = append(cores, zapcore.NewCore(encoder, zapcore.AddSync(errorWriter), zap.LevelEnablerFunc(func(l zapcore.Level) bool {
				return l >= zapcore.ErrorLevel
			})))
		}
	}

	if cfg.EnableStdout || len(cores) == 0 {
		cores = append(cores, zapcore.NewCore(encoder, zapcore.Lock(os.Stdout), level))
	}

	zapLogger := zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddCallerSkip(4)).Sugar()

	return &zapLoggerWrapper{logger: zapLogger, closers: closers}, nil
}

// newRotatingWriter returns a size based rotating file writer for cfg.
func newRotatingWriter(cfg *Config) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   filepath.Join(cfg.LogDir, cfg.BaseName+".log"),
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
		LocalTime:  true,
	}
}

type zapLoggerWrapper struct {
	logger  *zap.SugaredLogger
	closers []io.Closer
}

func (z *zapLoggerWrapper) Debugf(format string, args ...any) {
	z.logger.Debugf(format, args...)
}

func (z *zapLoggerWrapper) Debug(args ...any) {
	z.logger.Debug(args...)
}

func (z *zapLoggerWrapper) Infof(format string, args ...any) {
	z.logger.Infof(format, args...)
}

func (z *zapLoggerWrapper) Info(args ...any) {
	z.logger.Info(args...)
}

func (z *zapLoggerWrapper) Warnf(format string, args ...any) {
	z.logger.Warnf(format, args...)
}

func (z *zapLoggerWrapper) Warn(args ...any) {
	z.logger.Warn(args...)
}

func (z *zapLoggerWrapper) Errorf(format string, args ...any) {
	z.logger.Errorf(format, args...)
}

func (z *zapLoggerWrapper) Error(args ...any) {
	z.logger.Error(args...)
}

func (z *zapLoggerWrapper) Fatalf(format string, args ...any) {
	z.logger.Fatalf(format, args...)
}

func (z *zapLoggerWrapper) Fatal(args ...any) {
	z.logger.Fatal(args...)
}

// Close flushes buffered entries and releases the rotated files.
func (z *zapLoggerWrapper) Close() error {
	_ = z.logger.Sync()
	var err error
	for _, c := range z.closers {
		if cerr := c.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}
