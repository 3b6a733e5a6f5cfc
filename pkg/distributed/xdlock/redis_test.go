package xdlock

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRedisFactory_Validation(t *testing.T) {
	_, err := NewRedisFactory()
	assert.ErrorIs(t, err, ErrNilClient)

	_, client := setupMiniredis(t)
	_, err = NewRedisFactory(client, nil)
	assert.ErrorIs(t, err, ErrNilClient)
}

func TestRedisFactory_TryLock_BusyThenRelease(t *testing.T) {
	mr, client := setupMiniredis(t)
	f, err := NewRedisFactory(client)
	require.NoError(t, err)
	assert.NotNil(t, f.Redsync())
	ctx := context.Background()

	a, err := f.TryLock(ctx, "order:7")
	require.NoError(t, err)
	require.NotNil(t, a)
	assert.Equal(t, "lock:order:7", a.Key())
	assert.True(t, mr.Exists("lock:order:7"))

	b, err := f.TryLock(ctx, "order:7")
	require.NoError(t, err)
	assert.Nil(t, b)

	require.NoError(t, a.Unlock(ctx))
	b, err = f.TryLock(ctx, "order:7")
	require.NoError(t, err)
	require.NotNil(t, b)
	require.NoError(t, b.Unlock(ctx))
}

func TestRedisFactory_Unlock_AfterExpiry(t *testing.T) {
	mr, client := setupMiniredis(t)
	f, err := NewRedisFactory(client)
	require.NoError(t, err)
	ctx := context.Background()

	a, err := f.TryLock(ctx, "exp", WithExpiry(time.Second))
	require.NoError(t, err)
	require.NotNil(t, a)

	mr.FastForward(2 * time.Second)
	b, err := f.TryLock(ctx, "exp", WithExpiry(10*time.Second))
	require.NoError(t, err)
	require.NotNil(t, b)

	assert.ErrorIs(t, a.Unlock(ctx), ErrNotLocked)
	assert.True(t, mr.Exists("lock:exp"))
	require.NoError(t, b.Unlock(ctx))
}

func TestRedisFactory_HealthAndClose(t *testing.T) {
	_, client := setupMiniredis(t)
	f, err := NewRedisFactory(client)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, f.Health(ctx))
	require.NoError(t, f.Close())
	assert.ErrorIs(t, f.Health(ctx), ErrFactoryClosed)
	_, err = f.TryLock(ctx, "x")
	assert.ErrorIs(t, err, ErrFactoryClosed)

	unreachable := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1, DialTimeout: 50 * time.Millisecond})
	defer unreachable.Close()
	g, err := NewRedisFactory(unreachable)
	require.NoError(t, err)
	assert.Error(t, g.Health(ctx))
}

func TestWrapRedisError(t *testing.T) {
	assert.NoError(t, wrapRedisError(nil))
	assert.ErrorIs(t, wrapRedisError(context.Canceled), context.Canceled)
	assert.ErrorIs(t, wrapRedisError(errTaken()), ErrLockHeld)
}
