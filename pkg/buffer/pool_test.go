// Copyright (c) 2025 cocowh. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package buffer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAcquireSizes(t *testing.T) {
	b := Acquire(0)
	assert.Len(t, *b, DefaultReadSize)
	Release(b)

	small := Acquire(16)
	assert.Len(t, *small, 16)
	Release(small)
	Release(nil)

	again := Acquire(16)
	assert.Len(t, *again, 16)
}
