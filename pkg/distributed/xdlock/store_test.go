package xdlock

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omeyang/xshop/pkg/storage/xkv"
)

// =============================================================================
// 测试辅助函数
// =============================================================================

func setupMiniredis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
		mr.Close()
	})
	return mr, client
}

func newTestStoreFactory(t *testing.T) (Factory, *miniredis.Miniredis) {
	t.Helper()
	mr, client := setupMiniredis(t)
	store, err := xkv.NewRedis(client)
	require.NoError(t, err)
	f, err := NewStoreFactory(store)
	require.NoError(t, err)
	return f, mr
}

// =============================================================================
// Store 工厂测试
// =============================================================================

func TestNewStoreFactory_NilStore(t *testing.T) {
	_, err := NewStoreFactory(nil)
	assert.ErrorIs(t, err, ErrNilClient)
}

func TestStoreFactory_TryLock_BusyThenRelease(t *testing.T) {
	f, mr := newTestStoreFactory(t)
	ctx := context.Background()

	// Given: A 持有锁
	a, err := f.TryLock(ctx, "order:42")
	require.NoError(t, err)
	require.NotNil(t, a)
	assert.Equal(t, "lock:order:42", a.Key())
	assert.True(t, mr.Exists("lock:order:42"))
	assert.Equal(t, DefaultExpiry, mr.TTL("lock:order:42"))

	// When: B 尝试获取
	b, err := f.TryLock(ctx, "order:42")

	// Then: 占用时返回 (nil, nil)
	require.NoError(t, err)
	assert.Nil(t, b)

	// When: A 释放后 B 再次获取
	require.NoError(t, a.Unlock(ctx))
	b, err = f.TryLock(ctx, "order:42")

	// Then
	require.NoError(t, err)
	require.NotNil(t, b)
	require.NoError(t, b.Unlock(ctx))
	assert.False(t, mr.Exists("lock:order:42"))
}

func TestStoreFactory_Unlock_NonOwnerKeepsOtherLock(t *testing.T) {
	f, mr := newTestStoreFactory(t)
	ctx := context.Background()

	// Given: A 的锁过期后被 B 获取
	a, err := f.TryLock(ctx, "cache:shop:1", WithExpiry(time.Second))
	require.NoError(t, err)
	require.NotNil(t, a)
	mr.FastForward(2 * time.Second)

	b, err := f.TryLock(ctx, "cache:shop:1", WithExpiry(10*time.Second))
	require.NoError(t, err)
	require.NotNil(t, b)
	bToken, err := mr.Get("lock:cache:shop:1")
	require.NoError(t, err)

	// When: A 迟到的解锁
	err = a.Unlock(ctx)

	// Then: A 得到 ErrNotLocked，B 的锁保持不变
	assert.ErrorIs(t, err, ErrNotLocked)
	got, err := mr.Get("lock:cache:shop:1")
	require.NoError(t, err)
	assert.Equal(t, bToken, got)

	require.NoError(t, b.Unlock(ctx))
}

func TestStoreFactory_TokensAreUnique(t *testing.T) {
	f, mr := newTestStoreFactory(t)
	ctx := context.Background()

	seen := make(map[string]struct{})
	for i := 0; i < 20; i++ {
		h, err := f.TryLock(ctx, "token")
		require.NoError(t, err)
		require.NotNil(t, h)
		v, err := mr.Get("lock:token")
		require.NoError(t, err)
		_, dup := seen[v]
		require.False(t, dup)
		seen[v] = struct{}{}
		require.NoError(t, h.Unlock(ctx))
	}
}

func TestStoreFactory_Extend(t *testing.T) {
	f, mr := newTestStoreFactory(t)
	ctx := context.Background()

	h, err := f.TryLock(ctx, "long", WithExpiry(3*time.Second))
	require.NoError(t, err)
	require.NotNil(t, h)

	mr.FastForward(2 * time.Second)
	require.NoError(t, h.Extend(ctx))
	assert.Equal(t, 3*time.Second, mr.TTL("lock:long"))

	mr.FastForward(4 * time.Second)
	assert.ErrorIs(t, h.Extend(ctx), ErrNotLocked)
}

func TestStoreFactory_Options(t *testing.T) {
	f, mr := newTestStoreFactory(t)
	ctx := context.Background()

	h, err := f.TryLock(ctx, "res",
		WithKeyPrefix("app:"),
		WithGenValueFunc(func() (string, error) { return "fixed-owner", nil }))
	require.NoError(t, err)
	require.NotNil(t, h)

	assert.Equal(t, "app:res", h.Key())
	v, err := mr.Get("app:res")
	require.NoError(t, err)
	assert.Equal(t, "fixed-owner", v)
}

func TestStoreFactory_TryLock_Errors(t *testing.T) {
	f, mr := newTestStoreFactory(t)
	ctx := context.Background()

	t.Run("空锁名", func(t *testing.T) {
		_, err := f.TryLock(ctx, "  ")
		assert.ErrorIs(t, err, ErrEmptyKey)
	})

	t.Run("锁名过长", func(t *testing.T) {
		long := make([]byte, maxKeyLength)
		for i := range long {
			long[i] = 'k'
		}
		_, err := f.TryLock(ctx, string(long))
		assert.ErrorIs(t, err, ErrKeyTooLong)
	})

	t.Run("nil context", func(t *testing.T) {
		//nolint:staticcheck // 验证 nil context 处理
		_, err := f.TryLock(nil, "x")
		assert.ErrorIs(t, err, ErrNilContext)
	})

	t.Run("标识生成失败", func(t *testing.T) {
		boom := errors.New("no entropy")
		_, err := f.TryLock(ctx, "x", WithGenValueFunc(func() (string, error) { return "", boom }))
		assert.ErrorIs(t, err, boom)
	})

	t.Run("存储故障", func(t *testing.T) {
		mr.SetError("LOADING")
		defer mr.SetError("")
		_, err := f.TryLock(ctx, "x")
		assert.ErrorIs(t, err, ErrLockFailed)
	})
}

func TestStoreFactory_Unlock_CanceledContext(t *testing.T) {
	f, mr := newTestStoreFactory(t)

	h, err := f.TryLock(context.Background(), "bg")
	require.NoError(t, err)
	require.NotNil(t, h)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, h.Unlock(ctx))
	assert.False(t, mr.Exists("lock:bg"))
}

func TestStoreFactory_Close(t *testing.T) {
	f, _ := newTestStoreFactory(t)
	ctx := context.Background()

	h, err := f.TryLock(ctx, "held")
	require.NoError(t, err)
	require.NoError(t, f.Health(ctx))

	require.NoError(t, f.Close())
	_, err = f.TryLock(ctx, "other")
	assert.ErrorIs(t, err, ErrFactoryClosed)
	assert.ErrorIs(t, f.Health(ctx), ErrFactoryClosed)

	// 关闭后已持有的锁仍可释放
	require.NoError(t, h.Unlock(ctx))
}
