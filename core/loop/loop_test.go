// Copyright (c) 2025 cocowh. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package loop

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTasksRunInPostingOrder(t *testing.T) {
	l := New("order")
	l.Start()

	var got []int
	for i := 0; i < 1000; i++ {
		i := i
		require.True(t, l.Post(func() { got = append(got, i) }))
	}
	l.Stop()
	<-l.Done()

	require.Len(t, got, 1000)
	for i, v := range got {
		assert.Equal(t, i, v)
	}
}

func TestConcurrentPostersAreSerialized(t *testing.T) {
	l := New("serial")
	l.Start()

	var (
		wg      sync.WaitGroup
		running int
		maxSeen int
		count   int
	)
	for p := 0; p < 8; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				l.Post(func() {
					running++
					if running > maxSeen {
						maxSeen = running
					}
					count++
					running--
				})
			}
		}()
	}
	wg.Wait()
	l.Stop()
	<-l.Done()

	assert.Equal(t, 800, count)
	assert.Equal(t, 1, maxSeen)
}

func TestPostAfterStopIsRejected(t *testing.T) {
	l := New("stopped")
	l.Start()
	l.Stop()
	l.Stop()
	assert.False(t, l.Post(func() {}))

	select {
	case <-l.Done():
	case <-time.After(time.Second):
		t.Fatal("loop did not stop")
	}
}

func TestStopFromTask(t *testing.T) {
	l := New("self")
	l.Start()
	ran := make(chan struct{})
	l.Post(func() { l.Stop() })
	l.Post(func() { close(ran) })

	select {
	case <-l.Done():
	case <-time.After(time.Second):
		t.Fatal("loop did not stop")
	}
	select {
	case <-ran:
	default:
		t.Fatal("task queued before Stop did not run")
	}
}

func TestPanickingTaskDoesNotStopLoop(t *testing.T) {
	l := New("panic")
	l.Start()
	ran := make(chan struct{})
	l.Post(func() { panic("boom") })
	l.Post(func() { close(ran) })

	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("loop died after panic")
	}
	l.Stop()
	<-l.Done()
}

func TestStopBeforeStart(t *testing.T) {
	l := New("idle")
	l.Stop()
	<-l.Done()
	assert.Equal(t, 0, l.Pending())
}
