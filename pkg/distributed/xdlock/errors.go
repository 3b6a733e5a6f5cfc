package xdlock

import "errors"

// 预定义错误，使用 errors.Is 匹配。
var (
	// ErrLockHeld 锁被其他持有者占用。
	// TryLock 不返回此错误（占用时返回 nil, nil），仅用于错误转换与测试。
	ErrLockHeld = errors.New("xdlock: lock is held by another owner")

	// ErrLockFailed 获取锁失败。
	ErrLockFailed = errors.New("xdlock: failed to acquire lock")

	// ErrLockExpired 锁已过期或被其他持有者抢走。
	ErrLockExpired = errors.New("xdlock: lock expired or stolen")

	// ErrExtendFailed 续期操作失败，锁可能仍在。
	ErrExtendFailed = errors.New("xdlock: failed to extend lock")

	// ErrNilClient 客户端或存储为空。
	ErrNilClient = errors.New("xdlock: client is nil")

	// ErrNilContext context 为空。
	ErrNilContext = errors.New("xdlock: nil context")

	// ErrFactoryClosed 工厂已关闭。
	ErrFactoryClosed = errors.New("xdlock: factory is closed")

	// ErrNotLocked 锁未被当前 handle 持有。
	ErrNotLocked = errors.New("xdlock: not locked")

	// ErrEmptyKey 锁名为空或仅含空白。
	ErrEmptyKey = errors.New("xdlock: key must not be empty")

	// ErrKeyTooLong 锁 key 超过 512 字节。
	ErrKeyTooLong = errors.New("xdlock: key exceeds maximum length of 512 bytes")
)
