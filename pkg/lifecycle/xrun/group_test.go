package xrun

import (
	"context"
	"errors"
	"os"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withTestSignals(ctx context.Context, ch <-chan os.Signal) context.Context {
	return context.WithValue(ctx, testSignalsKey{}, ch)
}

// =============================================================================
// Group 测试
// =============================================================================

func TestGroup_ServiceErrorCancelsOthers(t *testing.T) {
	// Given
	boom := errors.New("boom")
	g, _ := NewGroup(context.Background())
	var stopped atomic.Bool

	// When
	g.Go("blocking", func(ctx context.Context) error {
		<-ctx.Done()
		stopped.Store(true)
		return ctx.Err()
	})
	g.Go("failing", func(context.Context) error { return boom })

	// Then
	err := g.Wait()
	require.ErrorIs(t, err, boom)
	assert.True(t, stopped.Load())
}

func TestGroup_CancelReturnsCause(t *testing.T) {
	cause := errors.New("shutdown requested")
	g, ctx := NewGroup(context.Background())
	g.Go("blocking", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	g.Cancel(cause)

	assert.ErrorIs(t, g.Wait(), cause)
	assert.Error(t, ctx.Err())
}

func TestGroup_ParentCanceledReturnsNil(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	g, _ := NewGroup(parent)
	g.Go("blocking", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	cancel()

	assert.NoError(t, g.Wait())
}

func TestGroup_NilFunc(t *testing.T) {
	g, _ := NewGroup(context.Background())
	g.Go("nil", nil)
	assert.ErrorIs(t, g.Wait(), ErrNilFunc)
}

func TestGroup_AllSucceed(t *testing.T) {
	g, _ := NewGroup(context.Background(), WithName("jobs"), WithLogger(nil))
	var n atomic.Int32
	for i := 0; i < 5; i++ {
		g.Go("job", func(context.Context) error {
			n.Add(1)
			return nil
		})
	}
	require.NoError(t, g.Wait())
	assert.Equal(t, int32(5), n.Load())
}

// =============================================================================
// Run 测试
// =============================================================================

func TestRun_SignalStopsServices(t *testing.T) {
	// Given
	sigs := make(chan os.Signal, 1)
	ctx := withTestSignals(context.Background(), sigs)

	// When
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, nil, func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		})
	}()
	sigs <- syscall.SIGTERM

	// Then
	select {
	case err := <-done:
		require.ErrorIs(t, err, ErrSignal)
		var sigErr *SignalError
		require.ErrorAs(t, err, &sigErr)
		assert.Equal(t, syscall.SIGTERM, sigErr.Signal)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after signal")
	}
}

func TestRun_WithoutSignalHandler(t *testing.T) {
	boom := errors.New("boom")
	err := Run(context.Background(), []Option{WithoutSignalHandler()},
		func(context.Context) error { return boom },
	)
	assert.ErrorIs(t, err, boom)
}

func TestRun_CustomSignals(t *testing.T) {
	sigs := make(chan os.Signal, 1)
	ctx := withTestSignals(context.Background(), sigs)
	sigs <- syscall.SIGHUP

	err := Run(ctx, []Option{WithSignals(syscall.SIGHUP)}, func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	assert.ErrorIs(t, err, ErrSignal)
}

// =============================================================================
// Ticker 测试
// =============================================================================

func TestTicker_RunsUntilCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var n atomic.Int32

	svc := Ticker(time.Millisecond, true, func(context.Context) error {
		if n.Add(1) == 3 {
			cancel()
		}
		return nil
	})

	err := svc(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.GreaterOrEqual(t, n.Load(), int32(3))
}

func TestTicker_ErrorStops(t *testing.T) {
	boom := errors.New("boom")
	svc := Ticker(time.Hour, true, func(context.Context) error { return boom })
	assert.ErrorIs(t, svc(context.Background()), boom)
}

func TestTicker_NotImmediate(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	var n atomic.Int32

	err := Ticker(time.Hour, false, func(context.Context) error {
		n.Add(1)
		return nil
	})(ctx)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Zero(t, n.Load())
}

func TestTicker_Invalid(t *testing.T) {
	ctx := context.Background()
	assert.ErrorIs(t, Ticker(0, true, func(context.Context) error { return nil })(ctx), ErrInvalidInterval)
	assert.ErrorIs(t, Ticker(time.Second, true, nil)(ctx), ErrNilFunc)
}

func TestSignalError(t *testing.T) {
	err := &SignalError{Signal: syscall.SIGINT}
	assert.Contains(t, err.Error(), "interrupt")
	assert.ErrorIs(t, err, ErrSignal)
}

func TestItoa(t *testing.T) {
	assert.Equal(t, "0", itoa(0))
	assert.Equal(t, "7", itoa(7))
	assert.Equal(t, "42", itoa(42))
	assert.Equal(t, "105", itoa(105))
}
