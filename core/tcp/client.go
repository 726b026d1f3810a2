// Copyright (c) 2025 cocowh. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package tcp

import (
	"context"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/cocowh/simpletcp/core/event"
	"github.com/cocowh/simpletcp/core/frame"
	"github.com/cocowh/simpletcp/core/loop"
	"github.com/cocowh/simpletcp/pkg/buffer"
	"github.com/cocowh/simpletcp/pkg/errors"
	"github.com/cocowh/simpletcp/pkg/logger"
)

// Client maintains one outbound connection exchanging delimiter framed
// messages. A Client connects once; it does not reconnect.
type Client struct {
	mu        sync.Mutex
	state     State
	conn      *conn
	buf       *frame.Buffer
	opts      *ClientOptions
	delim     []byte
	events    *event.Dispatcher
	loop      *loop.Loop
	closeOnce sync.Once
	done      chan struct{}
}

type ClientOptions struct {
	// Delimiter terminates every message. Empty selects frame.DefaultDelimiter.
	Delimiter      []byte
	ReadBufferSize int
	// WriteTimeout bounds each socket write. Zero means no deadline.
	WriteTimeout time.Duration
}

func NewClientOptions() *ClientOptions {
	return &ClientOptions{
		Delimiter:      []byte(frame.DefaultDelimiter),
		ReadBufferSize: buffer.DefaultReadSize,
		WriteTimeout:   DefaultWriteTimeout,
	}
}

func NewClient(opts *ClientOptions) *Client {
	if opts == nil {
		opts = NewClientOptions()
	}
	delim := opts.Delimiter
	if len(delim) == 0 {
		delim = []byte(frame.DefaultDelimiter)
	}
	return &Client{
		opts:   opts,
		delim:  append([]byte(nil), delim...),
		events: event.NewDispatcher(),
		loop:   loop.New("client"),
		done:   make(chan struct{}),
	}
}

// On subscribes h to kind. Handlers subscribed before Connect are
// guaranteed to see the connection event.
func (c *Client) On(kind event.Kind, h event.Handler) {
	c.events.On(kind, h)
}

// Connect dials addr ("host:port"). The connection event is dispatched
// before Connect returns. On failure an error event and a close event are
// dispatched and the client is closed.
func (c *Client) Connect(ctx context.Context, addr string) error {
	c.mu.Lock()
	if c.state != Idle {
		c.mu.Unlock()
		return errors.ErrAlreadyStarted
	}
	c.state = Connecting
	c.mu.Unlock()

	var d net.Dialer
	rawConn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		e := errors.Convert(err).WithContext("address", addr)
		logger.Errorf("Failed to connect to %s: %v", addr, err)
		c.dispatch(event.Event{Kind: event.Error, Err: e})
		c.dispatch(event.Event{Kind: event.Close, HadError: true})
		c.shutdown()
		return e
	}

	cn := newConnection(rawConn, c.opts.ReadBufferSize, c.opts.WriteTimeout)
	buf := frame.NewBuffer(c.delim, func() {
		c.dispatch(event.Event{Kind: event.InputBufferFlush, Conn: cn})
	})

	c.mu.Lock()
	if c.state == Closed {
		c.mu.Unlock()
		cn.Close()
		return errors.ErrConnClosed
	}
	c.conn = cn
	c.buf = buf
	c.state = Open
	c.mu.Unlock()

	c.loop.Start()
	host, port := splitAddr(rawConn.RemoteAddr())
	c.dispatch(event.Event{Kind: event.Connection, Conn: cn, Host: host, Port: port})
	logger.Infof("Connected to %s successfully, id: %s", addr, cn.ID())

	go cn.recvLoop(c)
	return nil
}

// Write frames payload and queues it for the server without blocking.
func (c *Client) Write(payload []byte) error {
	c.mu.Lock()
	cn, state := c.conn, c.state
	c.mu.Unlock()
	if state != Open || cn == nil {
		return errors.ErrNotOpen
	}
	if _, err := cn.Write(frame.Encode(payload, c.delim)); err != nil {
		return errors.Convert(err).WithContext("target", cn.Key())
	}
	return nil
}

func (c *Client) WriteString(payload string) error {
	return c.Write([]byte(payload))
}

// Close closes the connection. The close event is delivered
// asynchronously; Done is closed after it. Close may be called from a
// handler.
func (c *Client) Close() error {
	c.mu.Lock()
	cn := c.conn
	if cn == nil {
		c.state = Closed
		c.mu.Unlock()
		c.shutdown()
		return nil
	}
	c.mu.Unlock()
	return cn.Close()
}

// Done is closed once the client is closed and every event is delivered.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// RemoteAddr returns the server address, or nil before Connect succeeds.
func (c *Client) RemoteAddr() net.Addr {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	return c.conn.RemoteAddr()
}

func (c *Client) onData(cn *conn, chunk []byte) {
	c.loop.Post(func() {
		c.buf.Append(chunk)
		for {
			msg, ok := c.buf.Next()
			if !ok {
				break
			}
			c.dispatch(event.Event{Kind: event.Message, Conn: cn, Data: msg})
		}
		c.dispatch(event.Event{Kind: event.Data, Conn: cn, Data: chunk})
	})
}

func (c *Client) onError(cn *conn, err error) {
	logger.Warnf("Connection %s error: %v", cn.Key(), err)
	c.loop.Post(func() {
		c.dispatch(event.Event{Kind: event.Error, Conn: cn, Err: err})
	})
}

func (c *Client) onClose(cn *conn, hadError bool) {
	c.mu.Lock()
	c.state = Closed
	c.mu.Unlock()

	c.loop.Post(func() {
		logger.Infof("Connection closed, key: %s, id: %s", cn.Key(), cn.ID())
		c.dispatch(event.Event{Kind: event.Close, Conn: cn, HadError: hadError})
	})
	c.shutdown()
}

// shutdown stops the loop once and closes done after it drained.
func (c *Client) shutdown() {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.state = Closed
		c.mu.Unlock()
		c.loop.Stop()
		go func() {
			<-c.loop.Done()
			close(c.done)
		}()
	})
}

func (c *Client) dispatch(ev event.Event) {
	if err := c.events.Dispatch(ev); err != nil {
		logger.Debugf("Dispatch %s: %v", ev.Kind, err)
	}
}

func splitHostPort(addr string) (string, int) {
	host, p, err := net.SplitHostPort(addr)
	if err != nil {
		return addr, 0
	}
	port, _ := strconv.Atoi(p)
	return host, port
}

func splitAddr(addr net.Addr) (string, int) {
	if tcpAddr, ok := addr.(*net.TCPAddr); ok {
		return tcpAddr.IP.String(), tcpAddr.Port
	}
	return splitHostPort(addr.String())
}
