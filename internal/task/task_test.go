package task

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignalBroadcastWakesWaiter(t *testing.T) {
	sig := NewSignal()
	ready := false

	done := make(chan error, 1)
	go func() {
		done <- WaitFor(context.Background(), sig, nil, func() bool { return ready })
	}()

	select {
	case <-done:
		t.Fatal("WaitFor returned before predicate was satisfied")
	case <-time.After(20 * time.Millisecond):
	}

	ready = true
	sig.Broadcast()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("WaitFor never woke up after Broadcast")
	}
}

func TestWaitForReturnsImmediatelyWhenAlreadyTrue(t *testing.T) {
	sig := NewSignal()
	err := WaitFor(context.Background(), sig, nil, func() bool { return true })
	assert.NoError(t, err)
}

func TestWaitForObservesContextCancel(t *testing.T) {
	sig := NewSignal()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- WaitFor(ctx, sig, nil, func() bool { return false })
	}()
	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("WaitFor did not observe context cancellation")
	}
}

func TestWaitForObservesShutdown(t *testing.T) {
	sig := NewSignal()
	shutdown := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- WaitFor(context.Background(), sig, shutdown, func() bool { return false })
	}()
	close(shutdown)
	select {
	case err := <-done:
		assert.Error(t, err)
	case <-time.After(time.Second):
		t.Fatal("WaitFor did not observe shutdown")
	}
}

func TestEngineRunsAndReportsErr(t *testing.T) {
	e := NewEngine(context.Background(), func(ctx context.Context) error {
		return nil
	})
	select {
	case <-e.Done():
	case <-time.After(time.Second):
		t.Fatal("engine never finished")
	}
	assert.NoError(t, e.Err())
}
