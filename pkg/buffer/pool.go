// Copyright (c) 2025 cocowh. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package buffer

import "sync"

const DefaultReadSize = 4096

var pools sync.Map // size -> *sync.Pool

func poolFor(size int) *sync.Pool {
	if p, ok := pools.Load(size); ok {
		return p.(*sync.Pool)
	}
	p, _ := pools.LoadOrStore(size, &sync.Pool{New: func() any {
		b := make([]byte, size)
		return &b
	}})
	return p.(*sync.Pool)
}

// Acquire returns a read buffer of exactly size bytes.
func Acquire(size int) *[]byte {
	if size <= 0 {
		size = DefaultReadSize
	}
	return poolFor(size).Get().(*[]byte)
}

// Release returns b to the pool for its size.
func Release(b *[]byte) {
	if b == nil || len(*b) == 0 {
		return
	}
	poolFor(len(*b)).Put(b)
}
