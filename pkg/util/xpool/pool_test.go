package xpool

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestNew_Validation(t *testing.T) {
	_, err := New[int](1, 1, nil)
	assert.ErrorIs(t, err, ErrNilHandler)

	_, err = New(0, 1, func(int) {})
	assert.ErrorIs(t, err, ErrInvalidWorkers)

	_, err = New(1, 0, func(int) {})
	assert.ErrorIs(t, err, ErrInvalidQueueSize)
}

func TestPool_ProcessesAllTasks(t *testing.T) {
	var sum atomic.Int64
	p, err := New(4, 100, func(n int) { sum.Add(int64(n)) }, WithName("sum"))
	require.NoError(t, err)
	assert.Equal(t, Stats{Name: "sum", Workers: 4, Capacity: 100}, p.Stats())

	for i := 1; i <= 100; i++ {
		require.NoError(t, p.Submit(i))
	}
	require.NoError(t, p.Close())

	assert.Equal(t, int64(5050), sum.Load())
	assert.True(t, p.Stats().Stopped)
}

func TestPool_Submit_QueueFull(t *testing.T) {
	// Given: 唯一的 worker 被阻塞，队列容量 1
	release := make(chan struct{})
	started := make(chan struct{})
	var once sync.Once
	p, err := New(1, 1, func(int) {
		once.Do(func() { close(started) })
		<-release
	})
	require.NoError(t, err)

	require.NoError(t, p.Submit(1))
	<-started
	require.NoError(t, p.Submit(2))

	// When
	err = p.Submit(3)

	// Then
	assert.ErrorIs(t, err, ErrQueueFull)
	assert.Equal(t, 1, p.Stats().Pending)

	close(release)
	require.NoError(t, p.Close())
}

func TestPool_Submit_AfterClose(t *testing.T) {
	p, err := New(1, 1, func(int) {})
	require.NoError(t, err)
	require.NoError(t, p.Close())
	require.NoError(t, p.Close())

	assert.ErrorIs(t, p.Submit(1), ErrPoolStopped)
}

func TestPool_PanicRecovered(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	var ran atomic.Int32
	p, err := New(1, 4, func(n int) {
		if n == 0 {
			panic("boom")
		}
		ran.Add(1)
	}, WithLogger(logger), WithName("rebuild"))
	require.NoError(t, err)

	require.NoError(t, p.Submit(0))
	require.NoError(t, p.Submit(1))
	require.NoError(t, p.Close())

	assert.Equal(t, int32(1), ran.Load())
	assert.Contains(t, buf.String(), "panic recovered")
	assert.Contains(t, buf.String(), "pool=rebuild")
}

func TestPool_Shutdown_Timeout(t *testing.T) {
	release := make(chan struct{})
	p, err := New(1, 1, func(int) { <-release })
	require.NoError(t, err)
	require.NoError(t, p.Submit(1))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err = p.Shutdown(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(release)
	select {
	case <-p.Done():
	case <-time.After(time.Second):
		t.Fatal("workers did not exit")
	}
}

func TestPool_Shutdown_NilContext(t *testing.T) {
	p, err := New(1, 1, func(int) {})
	require.NoError(t, err)
	//nolint:staticcheck // 验证 nil context 处理
	assert.ErrorIs(t, p.Shutdown(nil), ErrNilContext)
	require.NoError(t, p.Close())
}

func TestPool_ConcurrentSubmitAndClose(t *testing.T) {
	p, err := New(2, 8, func(int) {})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := range 16 {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				err := p.Submit(n*100 + j)
				if err != nil {
					assert.True(t, err == ErrQueueFull || err == ErrPoolStopped)
				}
			}
		}(i)
	}
	require.NoError(t, p.Close())
	wg.Wait()
}
