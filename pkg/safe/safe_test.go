package safe_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tangerg/pyflow/pkg/safe"
)

func TestWithRecoverPassesThrough(t *testing.T) {
	ran := false
	safe.WithRecover(func() { ran = true })()
	assert.True(t, ran)
}

func TestWithRecoverCapturesPanic(t *testing.T) {
	var captured error
	safe.WithRecover(func() {
		panic("boom")
	}, func(err error) {
		captured = err
	})()

	require.Error(t, captured)
	var pe *safe.PanicError
	require.True(t, errors.As(captured, &pe))
	assert.Equal(t, "boom", pe.Value)
	assert.NotEmpty(t, pe.Stack)
	assert.Contains(t, captured.Error(), "boom")
}

func TestWithRecoverWithoutHandlerSwallowsPanic(t *testing.T) {
	assert.NotPanics(t, func() {
		safe.WithRecover(func() { panic("ignored") })()
	})
}

func TestWithRecoverNilFunc(t *testing.T) {
	assert.Nil(t, safe.WithRecover(nil))
}

func TestGoRecoversOnItsGoroutine(t *testing.T) {
	errs := make(chan error, 1)

	safe.Go(func() {
		panic(42)
	}, func(err error) {
		errs <- err
	})

	captured := <-errs
	require.Error(t, captured)
	var pe *safe.PanicError
	require.True(t, errors.As(captured, &pe))
	assert.Equal(t, 42, pe.Value)
}

func TestGoNilFuncIsNoOp(t *testing.T) {
	assert.NotPanics(t, func() { safe.Go(nil) })
}

func TestMultipleHandlersAllRun(t *testing.T) {
	calls := 0
	handler := func(error) { calls++ }
	safe.WithRecover(func() { panic("x") }, handler, handler, handler)()
	assert.Equal(t, 3, calls)
}
