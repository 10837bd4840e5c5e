package optimization

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorString(t *testing.T) {
	err := NewError("boom").WithComponent("colony").WithOperation("deposit")
	assert.Equal(t, "colony: deposit: boom", err.Error())

	assert.Equal(t, "boom", NewError("boom").Error())
	assert.Equal(t, "colony: boom", NewError("boom").WithComponent("colony").Error())
}

func TestWrapError(t *testing.T) {
	cause := NewError("unknown objective").WithComponent("objectives")

	err := WrapError(cause, "invalid request").WithComponent("server")
	require.NotNil(t, err)
	assert.Contains(t, err.Error(), "unknown objective")
	assert.True(t, errors.Is(err, cause))

	var inner *Error
	require.True(t, errors.As(err.Unwrap(), &inner))
	assert.Equal(t, "objectives", inner.Component)
}

func TestWrapErrorNil(t *testing.T) {
	assert.Nil(t, WrapError(nil, "ignored"))
}

func TestIsOptimizationError(t *testing.T) {
	optErr, ok := IsOptimizationError(NewError("x"))
	require.True(t, ok)
	assert.Equal(t, "x", optErr.Message)

	_, ok = IsOptimizationError(errors.New("plain"))
	assert.False(t, ok)

	_, ok = IsOptimizationError(nil)
	assert.False(t, ok)
}
