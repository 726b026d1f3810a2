// Copyright (c) 2025 cocowh. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package loop provides the single execution context of an endpoint.
//
// Every transport notification of an endpoint is posted to its Loop and run
// there one at a time, in posting order, so frame buffers and the
// connection registry are only ever mutated from one goroutine.
package loop

import (
	"sync"

	"github.com/cocowh/simpletcp/core/utils"
	"github.com/cocowh/simpletcp/pkg/logger"
	"github.com/eapache/queue"
)

type Loop struct {
	name    string
	mu      sync.Mutex
	cond    *sync.Cond
	tasks   *queue.Queue
	started bool
	stopped bool
	done    chan struct{}
}

func New(name string) *Loop {
	l := &Loop{
		name:  name,
		tasks: queue.New(),
		done:  make(chan struct{}),
	}
	l.cond = sync.NewCond(&l.mu)
	return l
}

// Start launches the loop goroutine. Calling it again, or after Stop, is a
// no-op.
func (l *Loop) Start() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.started || l.stopped {
		return
	}
	l.started = true
	go l.run()
}

// Post queues task. It reports false once the loop has been stopped.
// Post never blocks.
func (l *Loop) Post(task func()) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.stopped {
		return false
	}
	l.tasks.Add(task)
	l.cond.Signal()
	return true
}

// Stop refuses further tasks. Tasks already queued still run; Done is
// closed after the last one. Stop never blocks and is safe to call from a
// task.
func (l *Loop) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.stopped {
		return
	}
	l.stopped = true
	if !l.started {
		close(l.done)
		return
	}
	l.cond.Signal()
}

// Done is closed when the loop has stopped and drained its queue.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// Pending returns the number of queued tasks.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.tasks.Length()
}

func (l *Loop) run() {
	defer close(l.done)
	logger.Debugf("Event loop %s started", l.name)
	for {
		l.mu.Lock()
		for l.tasks.Length() == 0 && !l.stopped {
			l.cond.Wait()
		}
		if l.tasks.Length() == 0 {
			l.mu.Unlock()
			logger.Debugf("Event loop %s stopped", l.name)
			return
		}
		task := l.tasks.Remove().(func())
		l.mu.Unlock()

		l.exec(task)
	}
}

func (l *Loop) exec(task func()) {
	defer utils.PanicHandler(nil)
	task()
}
