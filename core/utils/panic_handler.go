// Copyright (c) 2025 cocowh. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package utils

import (
	"fmt"
	"runtime/debug"

	"github.com/cocowh/simpletcp/pkg/errors"
	"github.com/cocowh/simpletcp/pkg/logger"
)

var PanicHandler PanicHandlerFunc

func init() {
	PanicHandler = func(f func()) {
		if err := recover(); err != nil {
			logger.Errorf("recover panic. error:%v, stack: %s", err, debug.Stack())
			if f != nil {
				f()
			}
		}
	}
}

// PanicHandlerFunc must be invoked directly by a deferred call.
type PanicHandlerFunc func(f func())

// SafeCall runs f and converts a panic into an error carrying
// ErrCodeSystemPanic.
func SafeCall(f func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("recover panic. error:%v, stack: %s", r, debug.Stack())
			err = errors.New(errors.ErrCodeSystemPanic, errors.CategorySystem, fmt.Sprintf("panic: %v", r))
		}
	}()
	f()
	return nil
}
