package xcache

import "errors"

var (
	// ErrNotFound 记录不存在（缓存墓碑、回源未找到或逻辑过期模式下的冷 key）。
	ErrNotFound = errors.New("xcache: not found")

	// ErrBusy 互斥模式下重试耗尽仍未获取到重建锁。
	ErrBusy = errors.New("xcache: rebuild lock busy")

	// ErrMalformed 缓存数据无法解码。
	ErrMalformed = errors.New("xcache: malformed cached data")

	// ErrNilStore 存储为 nil。
	ErrNilStore = errors.New("xcache: nil store")

	// ErrNilLocker 锁工厂为 nil。
	ErrNilLocker = errors.New("xcache: nil locker")

	// ErrNilFallback 回源函数为 nil。
	ErrNilFallback = errors.New("xcache: nil fallback")

	// ErrEmptyKey key 为空。
	ErrEmptyKey = errors.New("xcache: empty key")

	// ErrInvalidConfig 配置参数无效。
	ErrInvalidConfig = errors.New("xcache: invalid configuration")

	// ErrLoadPanic 回源函数发生 panic。
	ErrLoadPanic = errors.New("xcache: fallback panicked")

	// ErrClosed 客户端已关闭。
	ErrClosed = errors.New("xcache: client closed")
)
