// Copyright (c) 2025 cocowh. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package tcp

import (
	"context"
	"net"
	"runtime/debug"
	"sync"
	"time"

	"github.com/cocowh/simpletcp/core/event"
	"github.com/cocowh/simpletcp/core/frame"
	"github.com/cocowh/simpletcp/core/loop"
	"github.com/cocowh/simpletcp/core/registry"
	"github.com/cocowh/simpletcp/core/utils"
	"github.com/cocowh/simpletcp/pkg/buffer"
	"github.com/cocowh/simpletcp/pkg/errors"
	"github.com/cocowh/simpletcp/pkg/logger"
	"go.uber.org/multierr"
)

// Server accepts many peers and exchanges delimiter framed messages with
// them.
type Server struct {
	mu        sync.Mutex
	state     State
	listener  net.Listener
	opts      *ServerOptions
	delim     []byte
	events    *event.Dispatcher
	registry  *registry.Registry
	loop      *loop.Loop
	conns     map[*conn]struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
	done      chan struct{}
}

// DefaultWriteTimeout bounds a single socket write of a connection unless
// configured otherwise.
const DefaultWriteTimeout = 5 * time.Second

type ServerOptions struct {
	// Delimiter terminates every message. Empty selects frame.DefaultDelimiter.
	Delimiter []byte
	// MaxConnections caps concurrent peers. Zero means no limit.
	MaxConnections int
	ReadBufferSize int
	// WriteTimeout bounds each socket write; a peer that stops reading for
	// longer is disconnected with an error. Zero means no deadline.
	WriteTimeout time.Duration
}

func NewServerOptions() *ServerOptions {
	return &ServerOptions{
		Delimiter:      []byte(frame.DefaultDelimiter),
		ReadBufferSize: buffer.DefaultReadSize,
		WriteTimeout:   DefaultWriteTimeout,
	}
}

func NewServer(opts *ServerOptions) *Server {
	if opts == nil {
		opts = NewServerOptions()
	}
	delim := opts.Delimiter
	if len(delim) == 0 {
		delim = []byte(frame.DefaultDelimiter)
	}
	return &Server{
		opts:     opts,
		delim:    append([]byte(nil), delim...),
		events:   event.NewDispatcher(),
		registry: registry.New(),
		loop:     loop.New("server"),
		conns:    make(map[*conn]struct{}),
		done:     make(chan struct{}),
	}
}

// On subscribes h to kind. Subscribe before Listen to observe the listen
// event and every connection.
func (s *Server) On(kind event.Kind, h event.Handler) {
	s.events.On(kind, h)
}

// Listen binds addr and starts accepting. The listen event is dispatched
// before Listen returns.
func (s *Server) Listen(ctx context.Context, addr string) error {
	s.mu.Lock()
	if s.state != Idle {
		s.mu.Unlock()
		return errors.ErrAlreadyStarted
	}
	s.state = Connecting
	s.mu.Unlock()

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		s.mu.Lock()
		s.state = Idle
		s.mu.Unlock()
		e := errors.NetworkError(errors.ErrCodeNetworkListen, "failed to start listener").WithCause(err).WithContext("address", addr)
		s.dispatch(event.Event{Kind: event.Error, Err: e})
		return e
	}

	s.mu.Lock()
	if s.state == Closed {
		s.mu.Unlock()
		ln.Close()
		return errors.ErrConnClosed
	}
	s.listener = ln
	s.state = Open
	s.mu.Unlock()

	s.loop.Start()
	host, port := splitAddr(ln.Addr())
	s.dispatch(event.Event{Kind: event.Listen, Host: host, Port: port})
	logger.Infof("TCP server started on %s", ln.Addr().String())

	s.wg.Add(1)
	go s.acceptLoop(ln)
	return nil
}

// Addr returns the bound address, or nil before Listen.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

func (s *Server) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Connections returns the keys of the registered connections.
func (s *Server) Connections() []string {
	return s.registry.Keys()
}

// Write frames payload and sends it to targets, or to every registered
// connection when no target is given. A failing target does not stop the
// others; all failures are returned combined. Write only queues the bytes
// and is safe to call from a handler.
func (s *Server) Write(payload []byte, targets ...Target) error {
	data := frame.Encode(payload, s.delim)

	if len(targets) == 0 {
		var errs error
		for _, e := range s.registry.Snapshot() {
			errs = multierr.Append(errs, s.writeTo(e.Conn.Key(), e.Conn.Write, data))
		}
		return errs
	}

	var errs error
	for _, t := range targets {
		c, err := t.resolve(s.registry)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		errs = multierr.Append(errs, s.writeTo(c.Key(), c.Write, data))
	}
	return errs
}

func (s *Server) WriteString(payload string, targets ...Target) error {
	return s.Write([]byte(payload), targets...)
}

func (s *Server) writeTo(key string, write func([]byte) (int, error), data []byte) error {
	if _, err := write(data); err != nil {
		logger.Warnf("Write to %s failed: %v", key, err)
		return errors.Convert(err).WithContext("target", key)
	}
	return nil
}

// Close stops accepting and closes every connection. Close events are
// delivered asynchronously; Done is closed after the last one. Close does
// not block on the event loop and may be called from a handler.
func (s *Server) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.mu.Lock()
		started := s.state != Idle
		s.state = Closed
		ln := s.listener
		conns := make([]*conn, 0, len(s.conns))
		for c := range s.conns {
			conns = append(conns, c)
		}
		s.mu.Unlock()

		if ln != nil {
			if cerr := ln.Close(); cerr != nil && !errors.IsClosed(cerr) {
				err = cerr
			}
		}
		for _, c := range conns {
			c.Close()
		}

		if !started {
			s.loop.Stop()
			close(s.done)
			return
		}
		go func() {
			s.wg.Wait()
			s.loop.Stop()
			<-s.loop.Done()
			logger.Infof("TCP server stopped")
			close(s.done)
		}()
	})
	return err
}

// Done is closed once the server is closed and every event is delivered.
func (s *Server) Done() <-chan struct{} {
	return s.done
}

func (s *Server) acceptLoop(ln net.Listener) {
	defer s.wg.Done()
	defer utils.PanicHandler(func() {
		logger.Errorf("TCP server accept loop panic, stack: %s", string(debug.Stack()))
		go s.Close()
	})

	for {
		rawConn, err := ln.Accept()
		if err != nil {
			if s.State() == Closed || errors.IsClosed(err) {
				return
			}
			if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
				logger.Warnf("Accept timeout error: %v", err)
				time.Sleep(100 * time.Millisecond)
				continue
			}
			logger.Errorf("Failed to accept connection: %v", err)
			s.dispatch(event.Event{Kind: event.Error, Err: errors.Convert(err).WithContext("operation", "accept_connection")})
			return
		}

		if limit := s.opts.MaxConnections; limit > 0 && s.liveConns() >= limit {
			rawConn.Close()
			logger.Warnf("Too many connections, rejecting %s", rawConn.RemoteAddr().String())
			continue
		}

		c := newConnection(rawConn, s.opts.ReadBufferSize, s.opts.WriteTimeout)

		s.mu.Lock()
		if s.state == Closed {
			s.mu.Unlock()
			c.Close()
			return
		}
		s.conns[c] = struct{}{}
		s.mu.Unlock()

		s.loop.Post(func() { s.register(c) })

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			c.recvLoop(s)
		}()

		logger.Infof("New connection established from %s, id: %s", c.Key(), c.ID())
	}
}

func (s *Server) liveConns() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}

// register runs on the loop.
func (s *Server) register(c *conn) {
	buf := frame.NewBuffer(s.delim, func() {
		s.dispatch(event.Event{Kind: event.InputBufferFlush, Conn: c})
	})
	s.registry.Register(c, buf)
	s.dispatch(event.Event{Kind: event.Connection, Conn: c})
}

func (s *Server) onData(c *conn, chunk []byte) {
	s.loop.Post(func() {
		e, ok := s.registry.Lookup(c.Key())
		if !ok || e.Conn != c {
			return
		}
		e.Buffer.Append(chunk)
		for {
			msg, ok := e.Buffer.Next()
			if !ok {
				break
			}
			s.dispatch(event.Event{Kind: event.Message, Conn: c, Data: msg})
		}
		s.dispatch(event.Event{Kind: event.Data, Conn: c, Data: chunk})
	})
}

func (s *Server) onError(c *conn, err error) {
	logger.Warnf("Connection %s error: %v", c.Key(), err)
	s.loop.Post(func() {
		s.dispatch(event.Event{Kind: event.Error, Conn: c, Err: err})
	})
}

func (s *Server) onClose(c *conn, hadError bool) {
	s.mu.Lock()
	delete(s.conns, c)
	s.mu.Unlock()

	s.loop.Post(func() {
		if _, ok := s.registry.Unregister(c); !ok {
			logger.Warnf("Closed connection was not registered, key: %s, id: %s", c.Key(), c.ID())
		}
		logger.Infof("Connection closed, key: %s, id: %s", c.Key(), c.ID())
		s.dispatch(event.Event{Kind: event.Close, Conn: c, HadError: hadError})
	})
}

func (s *Server) dispatch(ev event.Event) {
	if err := s.events.Dispatch(ev); err != nil {
		logger.Debugf("Dispatch %s: %v", ev.Kind, err)
	}
}
