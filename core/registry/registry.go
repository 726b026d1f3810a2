// Copyright (c) 2025 cocowh. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package registry

import (
	"sort"
	"sync"

	"github.com/cocowh/simpletcp/core/frame"
	"github.com/cocowh/simpletcp/core/iface"
	"github.com/cocowh/simpletcp/pkg/logger"
)

// Entry is one live connection and its frame buffer.
type Entry struct {
	Conn   iface.Connection
	Buffer *frame.Buffer
}

// Registry tracks the live connections of a server keyed by remote
// "address:port". The same key is used to insert and to remove.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*Entry
}

func New() *Registry {
	return &Registry{
		entries: make(map[string]*Entry),
	}
}

// Register stores conn with buf under conn.Key(). A stale entry with the
// same key is replaced.
func (r *Registry) Register(conn iface.Connection, buf *frame.Buffer) *Entry {
	e := &Entry{Conn: conn, Buffer: buf}
	r.mu.Lock()
	if old, ok := r.entries[conn.Key()]; ok && old.Conn.ID() != conn.ID() {
		logger.Warnf("Replacing stale connection, key: %s, id: %s", conn.Key(), old.Conn.ID())
	}
	r.entries[conn.Key()] = e
	r.mu.Unlock()
	return e
}

// Unregister removes the entry stored under conn.Key(). An entry that
// belongs to a different connection reusing the key is left in place.
func (r *Registry) Unregister(conn iface.Connection) (*Entry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[conn.Key()]
	if !ok || e.Conn.ID() != conn.ID() {
		return nil, false
	}
	delete(r.entries, conn.Key())
	return e, true
}

func (r *Registry) Lookup(key string) (*Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[key]
	return e, ok
}

// Snapshot returns the current entries ordered by key.
func (r *Registry) Snapshot() []*Entry {
	r.mu.RLock()
	out := make([]*Entry, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e)
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		return out[i].Conn.Key() < out[j].Conn.Key()
	})
	return out
}

// Keys returns the registered keys in order.
func (r *Registry) Keys() []string {
	entries := r.Snapshot()
	keys := make([]string, len(entries))
	for i, e := range entries {
		keys[i] = e.Conn.Key()
	}
	return keys
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
