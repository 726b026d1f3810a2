// Copyright (c) 2025 cocowh. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"testing"
	"time"

	"github.com/cocowh/simpletcp/core/tcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectWithoutDialTimeout(t *testing.T) {
	s := tcp.NewServer(nil)
	require.NoError(t, s.Listen(context.Background(), "127.0.0.1:0"))
	defer func() {
		s.Close()
		<-s.Done()
	}()

	for _, timeout := range []time.Duration{0, time.Second} {
		c := tcp.NewClient(nil)
		require.NoError(t, connect(context.Background(), c, s.Addr().String(), timeout), timeout)
		assert.Equal(t, tcp.Open, c.State())
		c.Close()
		<-c.Done()
	}
}

func TestEscapedDelimiter(t *testing.T) {
	assert.Equal(t, "\r\n", escapes.Replace(`\r\n`))
	assert.Equal(t, "<|EOL|>", escapes.Replace("<|EOL|>"))
}
