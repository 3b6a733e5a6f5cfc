package xdlock

import (
	"strings"
	"time"
)

const (
	// DefaultKeyPrefix 锁 key 默认前缀。
	DefaultKeyPrefix = "lock:"

	// DefaultExpiry 锁默认过期时间。
	DefaultExpiry = 8 * time.Second

	maxKeyLength = 512
)

// MutexOption 定义单次获取锁的配置选项。
type MutexOption func(*mutexOptions)

type mutexOptions struct {
	KeyPrefix    string
	Expiry       time.Duration
	GenValueFunc func() (string, error)
}

func defaultMutexOptions() *mutexOptions {
	return &mutexOptions{
		KeyPrefix: DefaultKeyPrefix,
		Expiry:    DefaultExpiry,
	}
}

func applyMutexOptions(opts []MutexOption) *mutexOptions {
	o := defaultMutexOptions()
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithKeyPrefix 设置锁 key 的前缀，最终 key = prefix + name。
func WithKeyPrefix(prefix string) MutexOption {
	return func(o *mutexOptions) {
		o.KeyPrefix = prefix
	}
}

// WithExpiry 设置锁的过期时间，非正值被忽略。
//
// 过期时间应大于临界区执行时间，否则需调用 Extend 续期。
func WithExpiry(d time.Duration) MutexOption {
	return func(o *mutexOptions) {
		if d > 0 {
			o.Expiry = d
		}
	}
}

// WithGenValueFunc 设置所有者标识生成函数。生成的值必须全局唯一。
func WithGenValueFunc(fn func() (string, error)) MutexOption {
	return func(o *mutexOptions) {
		if fn != nil {
			o.GenValueFunc = fn
		}
	}
}

// validateKey 校验锁名与完整 key。
func validateKey(name, fullKey string) error {
	if strings.TrimSpace(name) == "" {
		return ErrEmptyKey
	}
	if len(fullKey) > maxKeyLength {
		return ErrKeyTooLong
	}
	return nil
}
