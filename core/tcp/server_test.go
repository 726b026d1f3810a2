// Copyright (c) 2025 cocowh. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package tcp

import (
	"context"
	"io"
	"net"
	"sort"
	"syscall"
	"testing"
	"time"

	"github.com/cocowh/simpletcp/core/event"
	"github.com/cocowh/simpletcp/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkEventOrder(t *testing.T) {
	s := NewServer(nil)
	var trace []string
	record := func(ev event.Event) {
		label := ev.Kind.String()
		if ev.Kind == event.Message || ev.Kind == event.Data {
			label += ":" + ev.Text()
		}
		trace = append(trace, label)
	}
	for _, k := range []event.Kind{event.Connection, event.Message, event.Data, event.InputBufferFlush, event.Close} {
		s.On(k, record)
	}

	local, remote := net.Pipe()
	defer remote.Close()
	c := newConnection(local, 64, 0)
	defer c.Close()

	s.loop.Start()
	s.loop.Post(func() { s.register(c) })
	s.onData(c, []byte("a<|EOL|>b<|EOL|>c"))
	s.onData(c, []byte("d<|EO"))
	s.onData(c, []byte("L|>"))
	s.onClose(c, false)
	s.loop.Stop()
	waitDone(t, s.loop.Done())

	assert.Equal(t, []string{
		"connection",
		"inputBufferFlush", "message:a",
		"inputBufferFlush", "message:b",
		"data:a<|EOL|>b<|EOL|>c",
		"data:d<|EO",
		"inputBufferFlush", "message:cd",
		"data:L|>",
		"close",
	}, trace)
	assert.Equal(t, 0, s.registry.Len())
}

func TestListenDispatchesBeforeReturn(t *testing.T) {
	s := NewServer(nil)
	var got event.Event
	s.On(event.Listen, func(ev event.Event) { got = ev })

	listen(t, s)
	tcpAddr := s.Addr().(*net.TCPAddr)
	assert.Equal(t, event.Listen, got.Kind)
	assert.Equal(t, "127.0.0.1", got.Host)
	assert.Equal(t, tcpAddr.Port, got.Port)
	assert.Equal(t, Open, s.State())

	err := s.Listen(context.Background(), "127.0.0.1:0")
	assert.ErrorIs(t, err, errors.ErrAlreadyStarted)
}

func TestListenFailure(t *testing.T) {
	s := NewServer(nil)
	listen(t, s)

	other := NewServer(nil)
	errs := watch(other, event.Error)
	err := other.Listen(context.Background(), s.Addr().String())
	require.Error(t, err)
	ev := waitEvent(t, errs)
	assert.Error(t, ev.Err)
	assert.Equal(t, Idle, other.State())
	require.NoError(t, other.Close())
	waitDone(t, other.Done())
}

func TestServerReassemblesFragmentedStream(t *testing.T) {
	s := NewServer(nil)
	msgs := watch(s, event.Message)
	addr := listen(t, s)

	c := dialRaw(t, addr)
	for _, part := range []string{"hel", "lo<|E", "OL|>wor", "ld<", "|EOL|><|EOL|>"} {
		_, err := c.Write([]byte(part))
		require.NoError(t, err)
		time.Sleep(5 * time.Millisecond)
	}

	assert.Equal(t, "hello", waitEvent(t, msgs).Text())
	assert.Equal(t, "world", waitEvent(t, msgs).Text())
	assert.Equal(t, "", waitEvent(t, msgs).Text())
}

func TestCloseRemovesOnlyMatchingConnection(t *testing.T) {
	s := NewServer(nil)
	conns := watch(s, event.Connection)
	closes := watch(s, event.Close)
	addr := listen(t, s)

	c1 := dialRaw(t, addr)
	waitEvent(t, conns)
	c2 := dialRaw(t, addr)
	waitEvent(t, conns)
	require.Len(t, s.Connections(), 2)

	key1 := c1.LocalAddr().String()
	key2 := c2.LocalAddr().String()
	require.NoError(t, c1.Close())

	ev := waitEvent(t, closes)
	assert.Equal(t, key1, ev.Conn.Key())
	assert.False(t, ev.HadError)
	assert.Equal(t, []string{key2}, s.Connections())
	select {
	case extra := <-closes:
		t.Fatalf("unexpected close event for %s", extra.Conn.Key())
	case <-time.After(50 * time.Millisecond):
	}

	require.NoError(t, s.WriteString("still here", ByKey(key2)))
	assert.Equal(t, "still here<|EOL|>", readN(t, c2, len("still here<|EOL|>")))
}

func TestBroadcastWrite(t *testing.T) {
	s := NewServer(nil)
	conns := watch(s, event.Connection)
	closes := watch(s, event.Close)
	addr := listen(t, s)

	var clients []net.Conn
	for i := 0; i < 3; i++ {
		clients = append(clients, dialRaw(t, addr))
		waitEvent(t, conns)
	}
	gone := dialRaw(t, addr)
	waitEvent(t, conns)
	require.NoError(t, gone.Close())
	waitEvent(t, closes)

	require.NoError(t, s.WriteString("news"))
	for _, c := range clients {
		assert.Equal(t, "news<|EOL|>", readN(t, c, len("news<|EOL|>")))
	}
}

func TestWriteMixedTargets(t *testing.T) {
	s := NewServer(nil)
	conns := watch(s, event.Connection)
	addr := listen(t, s)

	c1 := dialRaw(t, addr)
	ev1 := waitEvent(t, conns)
	c2 := dialRaw(t, addr)
	ev2 := waitEvent(t, conns)

	err := s.WriteString("hi", ByKey(ev1.Conn.Key()), ByConn(ev2.Conn), ByKey("10.0.0.1:1"), ByConn(nil))
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrUnknownTarget)

	assert.Equal(t, "hi<|EOL|>", readN(t, c1, len("hi<|EOL|>")))
	assert.Equal(t, "hi<|EOL|>", readN(t, c2, len("hi<|EOL|>")))
}

func TestCustomDelimiterServer(t *testing.T) {
	s := NewServer(&ServerOptions{Delimiter: []byte("\n")})
	msgs := watch(s, event.Message)
	data := watch(s, event.Data)
	addr := listen(t, s)

	c := dialRaw(t, addr)
	_, err := c.Write([]byte("x<|EOL|>y\n"))
	require.NoError(t, err)

	assert.Equal(t, "x<|EOL|>y", waitEvent(t, msgs).Text())
	assert.NotEmpty(t, waitEvent(t, data).Data)
}

func TestServerCloseClosesEveryConnection(t *testing.T) {
	s := NewServer(nil)
	conns := watch(s, event.Connection)
	closes := watch(s, event.Close)
	require.NoError(t, s.Listen(context.Background(), "127.0.0.1:0"))
	addr := s.Addr().String()

	c1 := dialRaw(t, addr)
	waitEvent(t, conns)
	c2 := dialRaw(t, addr)
	waitEvent(t, conns)

	require.NoError(t, s.Close())
	waitDone(t, s.Done())

	keys := []string{waitEvent(t, closes).Conn.Key(), waitEvent(t, closes).Conn.Key()}
	sort.Strings(keys)
	want := []string{c1.LocalAddr().String(), c2.LocalAddr().String()}
	sort.Strings(want)
	assert.Equal(t, want, keys)
	assert.Equal(t, Closed, s.State())
	assert.Empty(t, s.Connections())
}

func TestMaxConnections(t *testing.T) {
	s := NewServer(&ServerOptions{MaxConnections: 1})
	conns := watch(s, event.Connection)
	addr := listen(t, s)

	dialRaw(t, addr)
	waitEvent(t, conns)

	rejected := dialRaw(t, addr)
	require.NoError(t, rejected.SetReadDeadline(time.Now().Add(waitTimeout)))
	_, err := rejected.Read(make([]byte, 1))
	assert.Error(t, err)
	assert.Len(t, s.Connections(), 1)
}

func TestHandlerPanicDoesNotStopServer(t *testing.T) {
	s := NewServer(nil)
	s.On(event.Message, func(event.Event) { panic("handler bug") })
	msgs := watch(s, event.Message)
	addr := listen(t, s)

	c := dialRaw(t, addr)
	_, err := c.Write([]byte("one<|EOL|>two<|EOL|>"))
	require.NoError(t, err)

	assert.Equal(t, "one", waitEvent(t, msgs).Text())
	assert.Equal(t, "two", waitEvent(t, msgs).Text())
}

func TestNonReadingPeerDoesNotBlockOthers(t *testing.T) {
	opts := NewServerOptions()
	opts.WriteTimeout = 300 * time.Millisecond
	s := NewServer(opts)
	chunk := make([]byte, 1<<20)
	s.On(event.Message, func(ev event.Event) {
		if ev.Text() != "flood" {
			return
		}
		for i := 0; i < 32; i++ {
			_ = s.Write(chunk, ByConn(ev.Conn))
		}
	})
	msgs := watch(s, event.Message)
	errs := watch(s, event.Error)
	closes := watch(s, event.Close)
	addr := listen(t, s)

	stalled := dialRaw(t, addr)
	_, err := stalled.Write([]byte("flood<|EOL|>"))
	require.NoError(t, err)
	assert.Equal(t, "flood", waitEvent(t, msgs).Text())

	other := dialRaw(t, addr)
	_, err = other.Write([]byte("hello<|EOL|>"))
	require.NoError(t, err)
	select {
	case ev := <-msgs:
		assert.Equal(t, "hello", ev.Text())
		assert.Equal(t, other.LocalAddr().String(), ev.Conn.Key())
	case <-time.After(2 * time.Second):
		t.Fatal("message from another peer was not delivered while a write was pending")
	}

	ev := waitEvent(t, errs)
	assert.Equal(t, stalled.LocalAddr().String(), ev.Conn.Key())
	assert.Equal(t, errors.ErrCodeNetworkTimeout, errors.Convert(ev.Err).Code)
	closed := waitEvent(t, closes)
	assert.Equal(t, stalled.LocalAddr().String(), closed.Conn.Key())
	assert.True(t, closed.HadError)
	assert.Equal(t, []string{other.LocalAddr().String()}, s.Connections())
}

func TestPeerResetReportsErrorThenClose(t *testing.T) {
	s := NewServer(nil)
	conns := watch(s, event.Connection)
	trace := make(chan event.Event, 8)
	s.On(event.Error, func(ev event.Event) { trace <- ev })
	s.On(event.Close, func(ev event.Event) { trace <- ev })
	addr := listen(t, s)

	c := dialRaw(t, addr)
	waitEvent(t, conns)
	key := c.LocalAddr().String()
	require.NoError(t, c.(*net.TCPConn).SetLinger(0))
	require.NoError(t, c.Close())

	first := waitEvent(t, trace)
	require.Equal(t, event.Error, first.Kind)
	assert.Equal(t, key, first.Conn.Key())
	assert.ErrorIs(t, first.Err, syscall.ECONNRESET)

	second := waitEvent(t, trace)
	require.Equal(t, event.Close, second.Kind)
	assert.Equal(t, key, second.Conn.Key())
	assert.True(t, second.HadError)

	select {
	case extra := <-trace:
		t.Fatalf("unexpected %s event after close", extra.Kind)
	case <-time.After(50 * time.Millisecond):
	}
	assert.Empty(t, s.Connections())
}

func TestConnCloseSendsQueuedWrites(t *testing.T) {
	s := NewServer(nil)
	s.On(event.Connection, func(ev event.Event) {
		_ = s.WriteString("bye", ByConn(ev.Conn))
		ev.Conn.Close()
	})
	addr := listen(t, s)

	c := dialRaw(t, addr)
	assert.Equal(t, "bye<|EOL|>", readN(t, c, len("bye<|EOL|>")))
	_, err := c.Read(make([]byte, 1))
	assert.ErrorIs(t, err, io.EOF)
}
