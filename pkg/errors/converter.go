// Copyright (c) 2025 cocowh. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package errors

import (
	"errors"
	"io"
	"net"
	"syscall"
)

// Convert lifts an arbitrary error into *Error, keeping it as the cause.
// An *Error already in the chain is returned as a copy so that callers may
// add context without touching shared values.
func Convert(err error) *Error {
	if err == nil {
		return nil
	}

	var e *Error
	if errors.As(err, &e) {
		return e.clone()
	}

	switch {
	case IsClosed(err):
		return Wrap(err, ErrCodeNetworkClosed, CategoryNetwork, "connection closed")
	case errors.Is(err, syscall.ECONNREFUSED):
		return Wrap(err, ErrCodeNetworkRefused, CategoryNetwork, "connection refused")
	case errors.Is(err, syscall.ECONNRESET), errors.Is(err, syscall.EPIPE):
		return Wrap(err, ErrCodeNetworkConnectionLost, CategoryNetwork, "connection lost")
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return Wrap(err, ErrCodeNetworkTimeout, CategoryNetwork, "network timeout")
		}
		return Wrap(err, ErrCodeNetworkUnknown, CategoryNetwork, "network error")
	}

	return Wrap(err, ErrCodeSystemUnknown, CategorySystem, "unknown error")
}

// IsClosed reports whether err is an orderly end of stream: the peer closed
// the connection or it was closed locally.
func IsClosed(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed)
}
