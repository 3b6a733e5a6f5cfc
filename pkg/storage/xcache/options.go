package xcache

import (
	"log/slog"
	"time"

	"github.com/omeyang/xshop/pkg/observability/xmetrics"
	"github.com/omeyang/xshop/pkg/resilience/xbreaker"
	"github.com/omeyang/xshop/pkg/util/xpool"
)

const (
	// DefaultTombstoneTTL 空值墓碑 TTL。
	DefaultTombstoneTTL = 2 * time.Minute

	// DefaultLockExpiry 重建锁 TTL。
	DefaultLockExpiry = 10 * time.Second

	// minKeepAliveInterval 重建锁续期的最小周期。
	minKeepAliveInterval = 10 * time.Millisecond

	// DefaultMutexAttempts 互斥模式最大尝试次数。
	DefaultMutexAttempts = 10

	// DefaultMutexDelay 互斥模式锁忙时的固定退避。
	DefaultMutexDelay = 50 * time.Millisecond

	// DefaultLoadTimeout 脱离调用方取消链后回源的独立超时。
	DefaultLoadTimeout = 30 * time.Second

	// DefaultRebuildWorkers 内置重建 pool 的 worker 数。
	DefaultRebuildWorkers = 10

	// DefaultRebuildQueue 内置重建 pool 的队列容量。
	DefaultRebuildQueue = 100
)

// Option 客户端配置选项。
type Option func(*options)

type options struct {
	codec         Codec
	logger        *slog.Logger
	observer      xmetrics.Observer
	breaker       *xbreaker.Breaker
	pool          *xpool.Pool[func()]
	coldLoad      bool
	tombstoneTTL  time.Duration
	lockExpiry    time.Duration
	mutexAttempts uint
	mutexDelay    time.Duration
	loadTimeout   time.Duration
	now           func() time.Time
}

func defaultOptions() *options {
	return &options{
		codec:         JSONCodec{},
		logger:        slog.Default(),
		observer:      xmetrics.NoopObserver{},
		tombstoneTTL:  DefaultTombstoneTTL,
		lockExpiry:    DefaultLockExpiry,
		mutexAttempts: DefaultMutexAttempts,
		mutexDelay:    DefaultMutexDelay,
		loadTimeout:   DefaultLoadTimeout,
		now:           time.Now,
	}
}

// WithCodec 设置编解码器，默认 JSONCodec。
func WithCodec(c Codec) Option {
	return func(o *options) {
		if c != nil {
			o.codec = c
		}
	}
}

// WithLogger 设置日志记录器。
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithObserver 设置观测器。
func WithObserver(observer xmetrics.Observer) Option {
	return func(o *options) {
		if observer != nil {
			o.observer = observer
		}
	}
}

// WithBreaker 用熔断器保护所有回源调用。熔断拒绝不会被缓存。
func WithBreaker(b *xbreaker.Breaker) Option {
	return func(o *options) {
		o.breaker = b
	}
}

// WithRebuildPool 使用外部的重建 pool（多个 Client 共享）。
// 未设置时 Client 自建 pool，并在 Close 时关闭。
func WithRebuildPool(p *xpool.Pool[func()]) Option {
	return func(o *options) {
		o.pool = p
	}
}

// WithColdLoad 逻辑过期模式下，缓存中不存在的 key 走互斥回源并写入信封，
// 而不是直接返回 ErrNotFound。默认关闭（要求预热）。
func WithColdLoad(enable bool) Option {
	return func(o *options) {
		o.coldLoad = enable
	}
}

// WithTombstoneTTL 设置空值墓碑 TTL，默认 2 分钟。
func WithTombstoneTTL(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.tombstoneTTL = d
		}
	}
}

// WithLockExpiry 设置重建锁 TTL，默认 10 秒。
// 异步重建期间每隔 TTL/3 续期一次，回源可以长于 TTL。
func WithLockExpiry(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.lockExpiry = d
		}
	}
}

// WithMutexRetry 设置互斥模式的最大尝试次数与固定退避。
func WithMutexRetry(attempts uint, delay time.Duration) Option {
	return func(o *options) {
		if attempts > 0 {
			o.mutexAttempts = attempts
		}
		if delay >= 0 {
			o.mutexDelay = delay
		}
	}
}

// WithLoadTimeout 设置回源独立超时，默认 30 秒。
func WithLoadTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.loadTimeout = d
		}
	}
}

// WithClock 设置时钟，默认 time.Now。
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}
