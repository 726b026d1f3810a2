// Copyright (c) 2025 cocowh. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package event

import (
	"sync"

	"github.com/cocowh/simpletcp/core/utils"
	"go.uber.org/multierr"
)

// Dispatcher fans events out to ordered subscriber lists, one per Kind.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[Kind][]Handler
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		handlers: make(map[Kind][]Handler),
	}
}

// On appends h to the subscribers of kind. The same handler may be added
// more than once and then runs once per subscription.
func (d *Dispatcher) On(kind Kind, h Handler) {
	if h == nil {
		return
	}
	d.mu.Lock()
	d.handlers[kind] = append(d.handlers[kind], h)
	d.mu.Unlock()
}

// Dispatch invokes every subscriber of ev.Kind in subscription order with
// the same payload. A panicking handler does not stop the others; the
// recovered panics are returned combined.
func (d *Dispatcher) Dispatch(ev Event) error {
	d.mu.RLock()
	hs := d.handlers[ev.Kind]
	d.mu.RUnlock()

	var errs error
	for _, h := range hs {
		if err := utils.SafeCall(func() { h(ev) }); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}

// Count returns the number of subscribers for kind.
func (d *Dispatcher) Count(kind Kind) int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.handlers[kind])
}
