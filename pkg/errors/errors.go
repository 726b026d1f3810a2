// Copyright (c) 2025 cocowh. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package errors

import (
	"errors"
	"fmt"
	"time"
)

// ErrorCode error code
type ErrorCode int

// ErrorCategory error category
type ErrorCategory string

const (
	CategorySystem  ErrorCategory = "system"
	CategoryNetwork ErrorCategory = "network"
	CategoryConfig  ErrorCategory = "config"
	CategoryState   ErrorCategory = "state"
	CategoryTarget  ErrorCategory = "target"
)

// system error code (1000-1999)
const (
	ErrCodeSystemUnknown ErrorCode = 1000
	ErrCodeSystemPanic   ErrorCode = 1005
)

// network error code (2000-2999)
const (
	ErrCodeNetworkUnknown        ErrorCode = 2000
	ErrCodeNetworkTimeout        ErrorCode = 2001
	ErrCodeNetworkConnectionLost ErrorCode = 2002
	ErrCodeNetworkRefused        ErrorCode = 2003
	ErrCodeNetworkClosed         ErrorCode = 2006
	ErrCodeNetworkListen         ErrorCode = 2007
)

// config error code (5000-5999)
const (
	ErrCodeConfigNotFound   ErrorCode = 5001
	ErrCodeConfigInvalid    ErrorCode = 5002
	ErrCodeConfigParseError ErrorCode = 5003
)

// state error code (8000-8999)
const (
	ErrCodeStateAlreadyStarted ErrorCode = 8001
	ErrCodeStateNotOpen        ErrorCode = 8002
)

// target error code (9000-9999)
const (
	ErrCodeTargetUnknown ErrorCode = 9001
	ErrCodeTargetInvalid ErrorCode = 9002
)

// Error is the structured error returned by every package of the module.
type Error struct {
	Code      ErrorCode      `json:"code"`
	Message   string         `json:"message"`
	Category  ErrorCategory  `json:"category"`
	Timestamp time.Time      `json:"timestamp"`
	Cause     error          `json:"cause,omitempty"`
	Context   map[string]any `json:"context,omitempty"`
}

// Error implements error interface
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s:%d] %s: %v", e.Category, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s:%d] %s", e.Category, e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches any *Error carrying the same code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

func (e *Error) clone() *Error {
	cp := *e
	if e.Context != nil {
		cp.Context = make(map[string]any, len(e.Context))
		for k, v := range e.Context {
			cp.Context[k] = v
		}
	}
	return &cp
}

func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

func New(code ErrorCode, category ErrorCategory, message string) *Error {
	return &Error{
		Code:      code,
		Message:   message,
		Category:  category,
		Timestamp: time.Now(),
	}
}

func Newf(code ErrorCode, category ErrorCategory, format string, args ...any) *Error {
	return New(code, category, fmt.Sprintf(format, args...))
}

func Wrap(err error, code ErrorCode, category ErrorCategory, message string) *Error {
	return New(code, category, message).WithCause(err)
}

func NetworkError(code ErrorCode, message string) *Error {
	return New(code, CategoryNetwork, message)
}

func ConfigError(code ErrorCode, message string) *Error {
	return New(code, CategoryConfig, message)
}

func StateError(code ErrorCode, message string) *Error {
	return New(code, CategoryState, message)
}

func TargetErrorf(code ErrorCode, format string, args ...any) *Error {
	return Newf(code, CategoryTarget, format, args...)
}

// Sentinels for errors.Is checks. Only the code is compared.
var (
	ErrAlreadyStarted = StateError(ErrCodeStateAlreadyStarted, "endpoint already started")
	ErrNotOpen        = StateError(ErrCodeStateNotOpen, "connection is not open")
	ErrUnknownTarget  = New(ErrCodeTargetUnknown, CategoryTarget, "unknown target")
	ErrConnClosed     = NetworkError(ErrCodeNetworkClosed, "connection closed")
)

// Is and As re-export the standard helpers.
func Is(err, target error) bool { return errors.Is(err, target) }

func As(err error, target any) bool { return errors.As(err, target) }
