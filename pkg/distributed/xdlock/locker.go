package xdlock

import (
	"context"
	"time"
)

// cleanupTimeout Unlock 在调用方 ctx 已结束时使用的独立超时。
const cleanupTimeout = 5 * time.Second

// LockHandle 表示一次成功的锁获取。
//
// 持有 handle 即持有锁；不同获取之间互不干扰。
type LockHandle interface {
	// Unlock 释放本次获取的锁。
	//
	// 锁已过期或被他人重新获取时返回 [ErrNotLocked]，他人的锁保持不变。
	// ctx 已取消时使用独立的清理上下文尽力完成解锁。
	Unlock(ctx context.Context) error

	// Extend 将锁的剩余时间重置为获取时配置的过期时间。
	//
	// 返回 [ErrNotLocked] 表示所有权已丢失；[ErrExtendFailed] 表示续期失败，可重试。
	Extend(ctx context.Context) error

	// Key 返回锁的完整 key。
	Key() string
}

// Factory 锁工厂。
type Factory interface {
	// TryLock 非阻塞获取锁，只尝试一次。
	//
	// 成功返回 (handle, nil)；被占用返回 (nil, nil)；存储异常返回 (nil, err)。
	TryLock(ctx context.Context, name string, opts ...MutexOption) (LockHandle, error)

	// Close 关闭工厂。已获取的 handle 仍可解锁；底层客户端由调用方管理。
	Close() error

	// Health 检查底层存储连通性。
	Health(ctx context.Context) error
}

// unlockContext 在 ctx 已结束时返回独立的清理上下文。
func unlockContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx.Err() == nil {
		return ctx, func() {}
	}
	return context.WithTimeout(context.WithoutCancel(ctx), cleanupTimeout)
}
