package xdlock

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/omeyang/xshop/pkg/storage/xkv"
)

// =============================================================================
// Store 工厂实现
// =============================================================================

type storeFactory struct {
	store  xkv.Store
	tokens *tokenSource
	closed atomic.Bool
}

var _ Factory = (*storeFactory)(nil)

// NewStoreFactory 创建基于 xkv.Store 的锁工厂。
//
// 获取：SET key token NX PX expiry；释放：服务端比较删除；续期：服务端比较 PEXPIRE。
func NewStoreFactory(store xkv.Store) (Factory, error) {
	if store == nil {
		return nil, ErrNilClient
	}
	tokens, err := newTokenSource()
	if err != nil {
		return nil, err
	}
	return &storeFactory{store: store, tokens: tokens}, nil
}

func (f *storeFactory) TryLock(ctx context.Context, name string, opts ...MutexOption) (LockHandle, error) {
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
	token, err := genValue()
	if err != nil {
		return nil, err
	}

	ok, err := f.store.SetNX(ctx, key, token, o.Expiry)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLockFailed, err)
	}
	if !ok {
		return nil, nil
	}

	return &storeLockHandle{
		store:  f.store,
		key:    key,
		token:  token,
		expiry: o.Expiry,
	}, nil
}

func (f *storeFactory) Close() error {
	f.closed.Store(true)
	return nil
}

func (f *storeFactory) Health(ctx context.Context) error {
	if f.closed.Load() {
		return ErrFactoryClosed
	}
	if h, ok := f.store.(interface{ Health(context.Context) error }); ok {
		return h.Health(ctx)
	}
	return nil
}

// =============================================================================
// Store LockHandle 实现
// =============================================================================

type storeLockHandle struct {
	store  xkv.Store
	key    string
	token  string
	expiry time.Duration
}

var _ LockHandle = (*storeLockHandle)(nil)

func (h *storeLockHandle) Unlock(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	ctx, cancel := unlockContext(ctx)
	defer cancel()

	ok, err := h.store.CompareAndDelete(ctx, h.key, h.token)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotLocked
	}
	return nil
}

func (h *storeLockHandle) Extend(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	ok, err := h.store.CompareAndExpire(ctx, h.key, h.token, h.expiry)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExtendFailed, err)
	}
	if !ok {
		return ErrNotLocked
	}
	return nil
}

func (h *storeLockHandle) Key() string {
	return h.key
}
