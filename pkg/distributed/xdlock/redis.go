package xdlock

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"

	"github.com/go-redsync/redsync/v4"
	rsredis "github.com/go-redsync/redsync/v4/redis"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
)

// =============================================================================
// Redis (redsync) 工厂实现
// =============================================================================

// RedisFactory 基于 redsync 的锁工厂。
type RedisFactory interface {
	Factory

	// Redsync 返回底层 redsync 实例。
	Redsync() Redsync
}

// Redsync 是 redsync.Redsync 的类型别名。
type Redsync = *redsync.Redsync

type redisFactory struct {
	clients []redis.UniversalClient
	rs      *redsync.Redsync
	tokens  *tokenSource
	closed  atomic.Bool
}

var _ RedisFactory = (*redisFactory)(nil)

// NewRedisFactory 创建 Redis 锁工厂。
// 单节点为标准 Redis 锁；多节点使用 Redlock 算法（需过半成功）。
func NewRedisFactory(clients ...redis.UniversalClient) (RedisFactory, error) {
	if len(clients) == 0 {
		return nil, ErrNilClient
	}
	pools := make([]rsredis.Pool, len(clients))
	for i, client := range clients {
		if client == nil {
			return nil, errors.Join(ErrNilClient, errors.New("client at index "+strconv.Itoa(i)+" is nil"))
		}
		pools[i] = goredis.NewPool(client)
	}

	tokens, err := newTokenSource()
	if err != nil {
		return nil, err
	}

	return &redisFactory{
		clients: clients,
		rs:      redsync.New(pools...),
		tokens:  tokens,
	}, nil
}

func (f *redisFactory) TryLock(ctx context.Context, name string, opts ...MutexOption) (LockHandle, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	if f.closed.Load() {
		return nil, ErrFactoryClosed
	}

	o := applyMutexOptions(opts)
	key := o.KeyPrefix + name
	if err := validateKey(name, key); err != nil {
		return nil, err
	}

	genValue := f.tokens.next
	if o.GenValueFunc != nil {
		genValue = o.GenValueFunc
	}
	mutex := f.rs.NewMutex(key,
		redsync.WithExpiry(o.Expiry),
		redsync.WithTries(1),
		redsync.WithGenValueFunc(genValue),
	)

	if err := mutex.TryLockContext(ctx); err != nil {
		err = wrapRedisError(err)
		if errors.Is(err, ErrLockHeld) {
			return nil, nil
		}
		return nil, err
	}

	return &redisLockHandle{mutex: mutex, key: key}, nil
}

// Close 关闭工厂，不关闭传入的 Redis 客户端。
func (f *redisFactory) Close() error {
	f.closed.Store(true)
	return nil
}

// Health 对所有 Redis 节点执行 PING。
func (f *redisFactory) Health(ctx context.Context) error {
	if f.closed.Load() {
		return ErrFactoryClosed
	}
	for _, client := range f.clients {
		if err := client.Ping(ctx).Err(); err != nil {
			return err
		}
	}
	return nil
}

func (f *redisFactory) Redsync() Redsync {
	return f.rs
}

// =============================================================================
// Redis LockHandle 实现
// =============================================================================

type redisLockHandle struct {
	mutex *redsync.Mutex
	key   string
}

var _ LockHandle = (*redisLockHandle)(nil)

func (h *redisLockHandle) Unlock(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	ctx, cancel := unlockContext(ctx)
	defer cancel()

	ok, err := h.mutex.UnlockContext(ctx)
	if err != nil {
		return lostOwnership(wrapRedisError(err))
	}
	if !ok {
		return ErrNotLocked
	}
	return nil
}

func (h *redisLockHandle) Extend(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	ok, err := h.mutex.ExtendContext(ctx)
	if err != nil {
		return lostOwnership(wrapRedisError(err))
	}
	if !ok {
		return ErrNotLocked
	}
	return nil
}

func (h *redisLockHandle) Key() string {
	return h.key
}

// lostOwnership 将"已过期/被他人持有"统一为 ErrNotLocked。
func lostOwnership(err error) error {
	if errors.Is(err, ErrLockExpired) || errors.Is(err, ErrLockHeld) {
		return fmt.Errorf("%w: %w", ErrNotLocked, err)
	}
	return err
}

// wrapRedisError 将 redsync 错误转换为 xdlock 错误，保留原始错误链。
func wrapRedisError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var errTaken *redsync.ErrTaken
	if errors.As(err, &errTaken) {
		return fmt.Errorf("%w: %w", ErrLockHeld, err)
	}
	// 单次尝试时 redsync 以 ErrFailed 表示未达到法定节点数
	switch {
	case errors.Is(err, redsync.ErrFailed):
		return fmt.Errorf("%w: %w", ErrLockHeld, err)
	case errors.Is(err, redsync.ErrExtendFailed):
		return fmt.Errorf("%w: %w", ErrExtendFailed, err)
	case errors.Is(err, redsync.ErrLockAlreadyExpired):
		return fmt.Errorf("%w: %w", ErrLockExpired, err)
	}
	return err
}
