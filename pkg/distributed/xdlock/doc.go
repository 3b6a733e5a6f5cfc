// Package xdlock 提供基于共享存储的分布式锁。
//
// 每次成功获取锁都会返回一个新的 [LockHandle]，内部持有本次获取独有的
// 所有者标识（进程前缀 + 单次获取 ID）。Unlock 与 Extend 只作用于该标识，
// 锁过期后被他人重新获取时，旧 handle 的 Unlock 返回 [ErrNotLocked]，
// 不会误删他人的锁。
//
// 两种后端：
//   - [NewStoreFactory]：基于 xkv.Store 的 SET NX PX + 服务端比较删除
//   - [NewRedisFactory]：基于 redsync 的 Redlock，多节点时需过半成功
//
// TryLock 只尝试一次，从不内部重试：
//
//	handle, err := factory.TryLock(ctx, "order:42", xdlock.WithExpiry(10*time.Second))
//	if err != nil {
//	    return err // 存储异常
//	}
//	if handle == nil {
//	    return ErrDuplicateRequest // 被其他持有者占用
//	}
//	defer handle.Unlock(context.WithoutCancel(ctx))
//
// 锁 key 为 "lock:" + name，前缀可通过 [WithKeyPrefix] 修改。
package xdlock
