// Copyright (c) 2025 cocowh. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package tcp

// State is the lifecycle of an endpoint: Idle → Connecting → Open → Closed.
type State int32

const (
	// Idle indicates the endpoint has not been started.
	Idle State = iota
	// Connecting indicates a dial or bind is in flight.
	Connecting
	// Open indicates the endpoint is ready to send.
	Open
	// Closed indicates the endpoint has shut down. It cannot be restarted.
	Closed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "IDLE"
	case Connecting:
		return "CONNECTING"
	case Open:
		return "OPEN"
	case Closed:
		return "CLOSED"
	default:
		return "Invalid-State"
	}
}
