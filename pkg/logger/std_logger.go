// Copyright (c) 2025 cocowh. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package logger

import (
	"fmt"
	"io"
	"log"
)

type stdLogger struct {
	logger *log.Logger
	level  Level
}

func NewStdLogger(output io.Writer, prefix string, flag int, level Level) Logger {
	return &stdLogger{
		logger: log.New(output, prefix, flag),
		level:  level,
	}
}

func (l *stdLogger) output(level Level, tag, msg string) {
	if level < l.level {
		return
	}
	_ = l.logger.Output(4, tag+" "+msg)
}

func (l *stdLogger) Debugf(format string, args ...any) {
	l.output(DebugLevel, "[DEBUG]", fmt.Sprintf(format, args...))
}

func (l *stdLogger) Debug(args ...any) {
	l.output(DebugLevel, "[DEBUG]", fmt.Sprint(args...))
}

func (l *stdLogger) Infof(format string, args ...any) {
	l.output(InfoLevel, "[INFO]", fmt.Sprintf(format, args...))
}

func (l *stdLogger) Info(args ...any) {
	l.output(InfoLevel, "[INFO]", fmt.Sprint(args...))
}

func (l *stdLogger) Warnf(format string, args ...any) {
	l.output(WarnLevel, "[WARN]", fmt.Sprintf(format, args...))
}

func (l *stdLogger) Warn(args ...any) {
	l.output(WarnLevel, "[WARN]", fmt.Sprint(args...))
}

func (l *stdLogger) Errorf(format string, args ...any) {
	l.output(ErrorLevel, "[ERROR]", fmt.Sprintf(format, args...))
}

func (l *stdLogger) Error(args ...any) {
	l.output(ErrorLevel, "[ERROR]", fmt.Sprint(args...))
}

func (l *stdLogger) Fatalf(format string, args ...any) {
	l.logger.Fatalf("[FATAL] "+format, args...)
}

func (l *stdLogger) Fatal(args ...any) {
	l.logger.Fatal(append([]any{"[FATAL]"}, args...)...)
}
