// Copyright (c) 2025 cocowh. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package frame implements delimiter framing over a byte stream.
//
// The wire format is message bytes followed by the delimiter, repeated.
// Both peers must agree on the delimiter out of band; a mismatch cannot be
// detected and shows up as messages that never complete.
package frame

import "bytes"

// DefaultDelimiter terminates every message unless configured otherwise.
const DefaultDelimiter = "<|EOL|>"

// Buffer accumulates the raw chunks of one connection and cuts complete
// messages out of them. The concatenation of the pending chunks is always
// every byte received since the last flush minus the bytes already returned
// as messages.
//
// A Buffer is not safe for concurrent use; it belongs to the goroutine that
// processes its connection's events.
type Buffer struct {
	delim   []byte
	pending [][]byte
	// scanned is the offset below which no delimiter can start in the
	// joined pending data.
	scanned int
	onFlush func()
}

// NewBuffer returns a Buffer splitting on delim. An empty delim selects
// DefaultDelimiter. onFlush, if set, runs on every Flush.
func NewBuffer(delim []byte, onFlush func()) *Buffer {
	if len(delim) == 0 {
		delim = []byte(DefaultDelimiter)
	}
	return &Buffer{
		delim:   append([]byte(nil), delim...),
		onFlush: onFlush,
	}
}

// Delimiter returns a copy of the delimiter.
func (b *Buffer) Delimiter() []byte {
	return append([]byte(nil), b.delim...)
}

// Append queues a copy of chunk. It does not parse.
func (b *Buffer) Append(chunk []byte) {
	if len(chunk) == 0 {
		return
	}
	b.pending = append(b.pending, append([]byte(nil), chunk...))
}

// Next cuts the first complete message out of the buffer. The buffer is
// flushed and re-seeded with the unconsumed remainder, so every returned
// message is preceded by exactly one flush notification.
func (b *Buffer) Next() ([]byte, bool) {
	data := b.join()
	idx := bytes.Index(data[b.scanned:], b.delim)
	if idx < 0 {
		if n := len(data) - len(b.delim) + 1; n > b.scanned {
			b.scanned = n
		}
		return nil, false
	}
	idx += b.scanned

	msg := make([]byte, idx)
	copy(msg, data[:idx])
	rest := data[idx+len(b.delim):]

	b.Flush()
	if len(rest) > 0 {
		b.pending = append(b.pending, rest)
	}
	return msg, true
}

// Extract returns every complete message currently buffered, in order.
// It returns nil when no delimiter is present.
func (b *Buffer) Extract() [][]byte {
	var msgs [][]byte
	for {
		msg, ok := b.Next()
		if !ok {
			return msgs
		}
		msgs = append(msgs, msg)
	}
}

// Flush discards everything pending, including an unterminated tail.
func (b *Buffer) Flush() {
	b.pending = nil
	b.scanned = 0
	if b.onFlush != nil {
		b.onFlush()
	}
}

// Len returns the number of pending bytes.
func (b *Buffer) Len() int {
	n := 0
	for _, c := range b.pending {
		n += len(c)
	}
	return n
}

// Pending returns a copy of the pending bytes.
func (b *Buffer) Pending() []byte {
	return bytes.Join(b.pending, nil)
}

func (b *Buffer) join() []byte {
	switch len(b.pending) {
	case 0:
		return nil
	case 1:
		return b.pending[0]
	}
	joined := bytes.Join(b.pending, nil)
	b.pending = [][]byte{joined}
	return joined
}

// Encode frames payload for the wire.
func Encode(payload, delim []byte) []byte {
	if len(delim) == 0 {
		delim = []byte(DefaultDelimiter)
	}
	out := make([]byte, 0, len(payload)+len(delim))
	out = append(out, payload...)
	return append(out, delim...)
}
