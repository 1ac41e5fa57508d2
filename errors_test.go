package gvnc

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConnErrorClassification(t *testing.T) {
	var panicked any
	func() {
		defer func() { panicked = recover() }()
		failf(ErrKindProtocol, "bad message type %d", 42)
	}()
	require := panicked
	ce, ok := require.(*connError)
	assert.True(t, ok)
	assert.Equal(t, ErrKindProtocol, ce.ErrorKind())
	assert.Contains(t, ce.Error(), "bad message type 42")
}

func TestFailIONoopOnNilError(t *testing.T) {
	assert.NotPanics(t, func() { failIO(nil, "read") })
}

func TestFailIOPanicsOnError(t *testing.T) {
	underlying := errors.New("boom")
	defer func() {
		r := recover()
		ce, ok := r.(*connError)
		assert.True(t, ok)
		assert.Equal(t, ErrKindIO, ce.ErrorKind())
		assert.True(t, errors.Is(ce, underlying))
	}()
	failIO(underlying, "read")
}

func TestErrorKindStrings(t *testing.T) {
	assert.Equal(t, "io", ErrKindIO.String())
	assert.Equal(t, "protocol", ErrKindProtocol.String())
	assert.Equal(t, "auth", ErrKindAuth.String())
	assert.Equal(t, "resource", ErrKindResource.String())
	assert.Equal(t, "none", ErrKindNone.String())
}
