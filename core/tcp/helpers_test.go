// Copyright (c) 2025 cocowh. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package tcp

import (
	"context"
	"io"
	"net"
	"testing"
	"time"

	"github.com/cocowh/simpletcp/core/event"
	"github.com/stretchr/testify/require"
)

const waitTimeout = 3 * time.Second

type subscriber interface {
	On(kind event.Kind, h event.Handler)
}

// watch returns a channel receiving every event of kind.
func watch(s subscriber, kind event.Kind) chan event.Event {
	ch := make(chan event.Event, 256)
	s.On(kind, func(ev event.Event) { ch <- ev })
	return ch
}

func waitEvent(t *testing.T, ch <-chan event.Event) event.Event {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(waitTimeout):
		t.Fatal("timed out waiting for event")
		return event.Event{}
	}
}

func waitDone(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(waitTimeout):
		t.Fatal("timed out waiting for shutdown")
	}
}

func listen(t *testing.T, s *Server) string {
	t.Helper()
	require.NoError(t, s.Listen(context.Background(), "127.0.0.1:0"))
	t.Cleanup(func() {
		s.Close()
		waitDone(t, s.Done())
	})
	return s.Addr().String()
}

func dialRaw(t *testing.T, addr string) net.Conn {
	t.Helper()
	c, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func readN(t *testing.T, c net.Conn, n int) string {
	t.Helper()
	require.NoError(t, c.SetReadDeadline(time.Now().Add(waitTimeout)))
	buf := make([]byte, n)
	_, err := io.ReadFull(c, buf)
	require.NoError(t, err)
	return string(buf)
}

// freeAddr returns an address nothing listens on.
func freeAddr(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())
	return addr
}
