// Copyright (c) 2025 cocowh. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package errors

import (
	"errors"
	"fmt"
	"io"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestIsMatchesCode(t *testing.T) {
	err := fmt.Errorf("write: %w", NetworkError(ErrCodeNetworkClosed, "gone"))
	assert.True(t, Is(err, ErrConnClosed))
	assert.False(t, Is(err, ErrNotOpen))
}

func TestConvertClassifies(t *testing.T) {
	cases := []struct {
		err  error
		code ErrorCode
	}{
		{io.EOF, ErrCodeNetworkClosed},
		{fmt.Errorf("read: %w", net.ErrClosed), ErrCodeNetworkClosed},
		{&net.OpError{Op: "read", Err: timeoutErr{}}, ErrCodeNetworkTimeout},
		{errors.New("boom"), ErrCodeSystemUnknown},
	}
	for _, c := range cases {
		got := Convert(c.err)
		require.NotNil(t, got)
		assert.Equal(t, c.code, got.Code, c.err.Error())
		assert.ErrorIs(t, got, c.err)
	}
	assert.Nil(t, Convert(nil))
}

func TestConvertDoesNotMutateSentinel(t *testing.T) {
	e := Convert(ErrConnClosed).WithContext("target", "127.0.0.1:1")
	assert.Equal(t, "127.0.0.1:1", e.Context["target"])
	assert.Nil(t, ErrConnClosed.Context)
	assert.ErrorIs(t, e, ErrConnClosed)
}

func TestErrorString(t *testing.T) {
	e := ConfigError(ErrCodeConfigInvalid, "invalid config value").WithCause(errors.New("negative"))
	assert.Equal(t, "[config:5002] invalid config value: negative", e.Error())
}
