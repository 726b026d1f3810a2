// Copyright (c) 2025 cocowh. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package event

import (
	"github.com/cocowh/simpletcp/core/iface"
)

// Kind enumerates the notifications an endpoint emits.
type Kind int

const (
	// Listen fires once when a server socket is bound. Host and Port are set.
	Listen Kind = iota
	// Connection fires when a connection opens. On a server Conn is the
	// accepted handle; on a client Host and Port name the remote end.
	Connection
	// Message carries one complete, delimiter-stripped message in Data.
	Message
	// Data carries the raw chunk as read from the socket, after the Message
	// events it completed.
	Data
	// Close fires exactly once per connection. HadError reports whether an
	// Error event preceded it.
	Close
	// Error carries a transport error in Err.
	Error
	// InputBufferFlush fires each time a connection's frame buffer is
	// flushed, once per extracted message.
	InputBufferFlush
)

var kindNames = [...]string{
	Listen:           "listen",
	Connection:       "connection",
	Message:          "message",
	Data:             "data",
	Close:            "close",
	Error:            "error",
	InputBufferFlush: "inputBufferFlush",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// ParseKind maps an event name such as "message" to its Kind.
func ParseKind(name string) (Kind, bool) {
	for k, n := range kindNames {
		if n == name {
			return Kind(k), true
		}
	}
	return 0, false
}

// Event is the payload handed to every handler. Which fields are set
// depends on Kind.
type Event struct {
	Kind     Kind
	Conn     iface.Connection
	Data     []byte
	Err      error
	HadError bool
	Host     string
	Port     int
}

// Text returns Data as a string.
func (e Event) Text() string {
	return string(e.Data)
}

// Handler receives events. Handlers run synchronously on the endpoint's
// event loop and must not block on it.
type Handler func(Event)
