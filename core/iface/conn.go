// Copyright (c) 2025 cocowh. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package iface

import (
	"context"
	"net"
)

// Connection is the transport handle handed to event handlers.
type Connection interface {
	// ID is a random identifier used for log correlation.
	ID() string
	// Key is the remote "address:port", the connection's registry key.
	Key() string
	RemoteAddr() net.Addr
	LocalAddr() net.Addr
	// Write sends b as is. Framing is the endpoint's job.
	Write(b []byte) (int, error)
	Close() error
	// Context is cancelled once the connection is closed.
	Context() context.Context
}
