// Package xkv 定义键值存储（Store）抽象及其 Redis 实现。
//
// Store 是缓存、分布式锁与 ID 生成器共同依赖的唯一外部协作者，
// 只暴露这些组件需要的原子原语：
//   - Get / Set（可选 TTL）/ SetNX / Del
//   - Incr（不存在时从 0 开始）
//   - CompareAndDelete / CompareAndExpire（服务端脚本，读比较与写入为单个原子操作）
//
// 值统一为不透明字符串；序列化由上层（xcache.Codec）负责。
package xkv

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNilClient 表示传入的客户端为 nil。
	ErrNilClient = errors.New("xkv: nil client")

	// ErrEmptyKey 表示 key 为空字符串。
	ErrEmptyKey = errors.New("xkv: empty key")

	// ErrInvalidTTL 表示要求 TTL 的操作收到了非正 TTL。
	ErrInvalidTTL = errors.New("xkv: ttl must be positive")
)

// Store 键值存储接口。
//
// 所有方法并发安全；失败时返回底层错误，调用方按瞬时故障处理。
type Store interface {
	// Get 读取 key。第二个返回值表示 key 是否存在；
	// 存在但为空字符串时返回 ("", true, nil)。
	Get(ctx context.Context, key string) (string, bool, error)

	// Set 写入 key。ttl <= 0 表示不过期。
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// SetNX 仅在 key 不存在时写入，返回是否写入成功。ttl 必须为正。
	SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error)

	// Del 删除 key，不存在的 key 被忽略。
	Del(ctx context.Context, keys ...string) error

	// Incr 原子自增并返回自增后的值，key 不存在时从 0 开始。
	Incr(ctx context.Context, key string) (int64, error)

	// CompareAndDelete 当 key 的当前值等于 expected 时删除，返回是否删除。
	CompareAndDelete(ctx context.Context, key, expected string) (bool, error)

	// CompareAndExpire 当 key 的当前值等于 expected 时重置 TTL，返回是否成功。
	CompareAndExpire(ctx context.Context, key, expected string, ttl time.Duration) (bool, error)
}
