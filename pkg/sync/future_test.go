package sync_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	psync "github.com/Tangerg/pyflow/pkg/sync"
)

func TestRunAndGet(t *testing.T) {
	f := psync.Run(func(<-chan struct{}) (int, error) {
		return 7, nil
	})
	v, err := f.Get()
	require.NoError(t, err)
	assert.Equal(t, 7, v)
	assert.True(t, f.Done())
	assert.False(t, f.Cancelled())
}

func TestRunPropagatesTaskError(t *testing.T) {
	boom := errors.New("boom")
	f := psync.Run(func(<-chan struct{}) (string, error) {
		return "", boom
	})
	_, err := f.Get()
	assert.ErrorIs(t, err, boom)
}

func TestCancelSettlesImmediately(t *testing.T) {
	release := make(chan struct{})
	f := psync.Run(func(cancel <-chan struct{}) (int, error) {
		<-release
		return 1, nil
	})

	assert.True(t, f.Cancel(), "the first cancel settles the future")
	assert.False(t, f.Cancel(), "a second cancel is a no-op")

	_, err := f.Get()
	assert.ErrorIs(t, err, psync.ErrCancelled)
	assert.True(t, f.Cancelled())

	// The task may still be running; releasing it must not overwrite
	// the cancelled outcome.
	close(release)
	time.Sleep(10 * time.Millisecond)
	_, err = f.Get()
	assert.ErrorIs(t, err, psync.ErrCancelled)
}

func TestCancelAfterCompletionIsNoOp(t *testing.T) {
	f := psync.Run(func(<-chan struct{}) (int, error) {
		return 3, nil
	})
	v, err := f.Get()
	require.NoError(t, err)
	assert.Equal(t, 3, v)
	assert.False(t, f.Cancel())
	assert.False(t, f.Cancelled())
}

func TestTaskSeesCancelChannel(t *testing.T) {
	observed := make(chan struct{})
	f := psync.Run(func(cancel <-chan struct{}) (int, error) {
		<-cancel
		close(observed)
		return 0, psync.ErrCancelled
	})
	f.Cancel()

	select {
	case <-observed:
	case <-time.After(time.Second):
		t.Fatal("task never observed cancellation")
	}
	_, err := f.Get()
	assert.ErrorIs(t, err, psync.ErrCancelled)
}

func TestGetContextTimesOutWithoutSettling(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	f := psync.Run(func(<-chan struct{}) (int, error) {
		<-release
		return 9, nil
	})

	ctx, stop := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer stop()
	_, err := f.GetContext(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, f.Done(), "a context timeout does not settle the future")
}

func TestRunOnUsesThePool(t *testing.T) {
	f, err := psync.RunOn(psync.Goroutines(), func(<-chan struct{}) (string, error) {
		return "pooled", nil
	})
	require.NoError(t, err)
	v, err := f.Get()
	require.NoError(t, err)
	assert.Equal(t, "pooled", v)
}

func TestRunOnRejectedSubmit(t *testing.T) {
	refuse := errors.New("full")
	rejecting := rejectingPool{err: refuse}
	_, err := psync.RunOn(rejecting, func(<-chan struct{}) (int, error) {
		return 0, nil
	})
	assert.ErrorIs(t, err, refuse)
}

type rejectingPool struct{ err error }

func (p rejectingPool) Submit(func()) error { return p.err }
