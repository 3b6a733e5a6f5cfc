package xvoucher

import (
	"context"
	"log/slog"
	"time"

	"github.com/omeyang/xshop/pkg/observability/xmetrics"
	"github.com/omeyang/xshop/pkg/resilience/xlimit"
)

const (
	// DefaultLockExpiry 用户下单锁 TTL，覆盖一次事务的最长耗时。
	DefaultLockExpiry = 10 * time.Second

	// OrderNamespace 订单 ID 命名空间。
	OrderNamespace = "order"
)

// Limiter 按 key 限流，*xlimit.Limiter 满足此接口。
type Limiter interface {
	Allow(ctx context.Context, key string) (xlimit.Result, error)
}

// Option Coordinator 配置选项。
type Option func(*options)

type options struct {
	limiter    Limiter
	logger     *slog.Logger
	observer   xmetrics.Observer
	now        func() time.Time
	lockExpiry time.Duration
}

func defaultOptions() *options {
	return &options{
		logger:     slog.Default(),
		observer:   xmetrics.NoopObserver{},
		now:        time.Now,
		lockExpiry: DefaultLockExpiry,
	}
}

// WithLimiter 在加锁前按用户限流。
func WithLimiter(l Limiter) Option {
	return func(o *options) {
		o.limiter = l
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

// WithClock 设置时钟，默认 time.Now。
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithLockExpiry 设置用户下单锁 TTL。
func WithLockExpiry(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.lockExpiry = d
		}
	}
}
