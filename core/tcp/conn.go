// Copyright (c) 2025 cocowh. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package tcp

import (
	"context"
	"net"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cocowh/simpletcp/core/utils"
	"github.com/cocowh/simpletcp/pkg/buffer"
	"github.com/cocowh/simpletcp/pkg/errors"
	"github.com/cocowh/simpletcp/pkg/logger"
	"github.com/eapache/queue"
	"github.com/google/uuid"
)

// sink receives the notifications of a connection's receive goroutine.
// onClose is always the last call and is made exactly once.
type sink interface {
	onData(c *conn, chunk []byte)
	onError(c *conn, err error)
	onClose(c *conn, hadError bool)
}

type conn struct {
	id           string
	key          string
	rawConn      net.Conn
	ctx          context.Context
	cancel       context.CancelFunc
	wmu          sync.Mutex
	wcond        *sync.Cond
	outbound     *queue.Queue
	writeErr     error
	closed       atomic.Bool
	readSize     int
	writeTimeout time.Duration
}

func newConnection(rawConn net.Conn, readSize int, writeTimeout time.Duration) *conn {
	ctx, cancel := context.WithCancel(context.Background())
	c := &conn{
		id:           uuid.NewString(),
		key:          rawConn.RemoteAddr().String(),
		rawConn:      rawConn,
		ctx:          ctx,
		cancel:       cancel,
		outbound:     queue.New(),
		readSize:     readSize,
		writeTimeout: writeTimeout,
	}
	c.wcond = sync.NewCond(&c.wmu)
	go c.writeLoop()
	return c
}

func (c *conn) ID() string {
	return c.id
}

func (c *conn) Key() string {
	return c.key
}

func (c *conn) RemoteAddr() net.Addr {
	return c.rawConn.RemoteAddr()
}

func (c *conn) LocalAddr() net.Addr {
	return c.rawConn.LocalAddr()
}

func (c *conn) Context() context.Context {
	return c.ctx
}

// Write queues a copy of b for the connection's writer goroutine and never
// blocks on the socket. A write that later fails or exceeds the write
// timeout closes the connection and is reported as its error.
func (c *conn) Write(b []byte) (int, error) {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	if c.closed.Load() {
		return 0, errors.ErrConnClosed
	}
	if len(b) > 0 {
		c.outbound.Add(append([]byte(nil), b...))
		c.wcond.Signal()
	}
	return len(b), nil
}

// Close refuses further writes. Already queued data is still sent, then
// the socket is shut down and the receive goroutine reports the close
// through its sink.
func (c *conn) Close() error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	c.wcond.Broadcast()
	return nil
}

// pendingWrites returns the number of queued, unsent writes.
func (c *conn) pendingWrites() int {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	return c.outbound.Length()
}

func (c *conn) failure() error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	return c.writeErr
}

func (c *conn) String() string {
	return c.key + "#" + c.id
}

func (c *conn) writeLoop() {
	defer func() {
		c.cancel()
		c.rawConn.Close()
	}()
	defer utils.PanicHandler(func() {
		logger.Errorf("Connection write loop panic, id: %s, stack: %s", c.id, string(debug.Stack()))
	})

	for {
		c.wmu.Lock()
		for c.outbound.Length() == 0 && !c.closed.Load() {
			c.wcond.Wait()
		}
		if c.outbound.Length() == 0 {
			c.wmu.Unlock()
			return
		}
		b := c.outbound.Remove().([]byte)
		c.wmu.Unlock()

		if err := c.send(b); err != nil {
			logger.Warnf("Write to %s failed: %v", c.key, err)
			c.wmu.Lock()
			c.writeErr = err
			c.closed.Store(true)
			for c.outbound.Length() > 0 {
				c.outbound.Remove()
			}
			c.wmu.Unlock()
			return
		}
	}
}

func (c *conn) send(b []byte) error {
	if c.writeTimeout > 0 {
		if err := c.rawConn.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil {
			return err
		}
	}
	_, err := c.rawConn.Write(b)
	return err
}

// recvLoop reads until the stream ends and forwards every chunk to s.
func (c *conn) recvLoop(s sink) {
	hadError := false
	defer func() {
		c.Close()
		s.onClose(c, hadError)
	}()
	defer utils.PanicHandler(func() {
		logger.Errorf("Connection recv loop panic, id: %s, stack: %s", c.id, string(debug.Stack()))
		hadError = true
	})

	buf := buffer.Acquire(c.readSize)
	defer buffer.Release(buf)

	for {
		n, err := c.rawConn.Read(*buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, (*buf)[:n])
			s.onData(c, chunk)
		}
		if err != nil {
			if werr := c.failure(); werr != nil {
				hadError = true
				s.onError(c, werr)
			} else if !errors.IsClosed(err) && !c.closed.Load() {
				hadError = true
				s.onError(c, err)
			}
			return
		}
	}
}
