package xbreaker

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker/v2"
)

type (
	// State 熔断器状态。
	State = gobreaker.State

	// Counts 当前统计窗口内的请求计数。
	Counts = gobreaker.Counts
)

const (
	StateClosed   = gobreaker.StateClosed
	StateHalfOpen = gobreaker.StateHalfOpen
	StateOpen     = gobreaker.StateOpen
)

// Breaker 熔断器。
type Breaker struct {
	name          string
	threshold     uint32
	timeout       time.Duration
	interval      time.Duration
	maxRequests   uint32
	ignored       []error
	onStateChange func(name string, from, to State)

	cb *gobreaker.CircuitBreaker[any]
}

// Option 熔断器配置选项。
type Option func(*Breaker)

// WithConsecutiveFailures 连续失败 n 次触发熔断，默认 5。
func WithConsecutiveFailures(n uint32) Option {
	return func(b *Breaker) {
		if n > 0 {
			b.threshold = n
		}
	}
}

// WithTimeout 设置 Open 恢复到 HalfOpen 的等待时间，默认 60 秒。
func WithTimeout(d time.Duration) Option {
	return func(b *Breaker) {
		if d > 0 {
			b.timeout = d
		}
	}
}

// WithInterval 设置 Closed 状态下清零统计的周期，默认 0（不清零）。
func WithInterval(d time.Duration) Option {
	return func(b *Breaker) {
		if d >= 0 {
			b.interval = d
		}
	}
}

// WithMaxRequests 设置 HalfOpen 状态下允许的探测请求数，默认 1。
func WithMaxRequests(n uint32) Option {
	return func(b *Breaker) {
		if n > 0 {
			b.maxRequests = n
		}
	}
}

// WithIgnoredErrors 匹配这些错误（errors.Is）的结果计为成功。
func WithIgnoredErrors(errs ...error) Option {
	return func(b *Breaker) {
		b.ignored = append(b.ignored, errs...)
	}
}

// WithOnStateChange 设置状态变化回调。
func WithOnStateChange(fn func(name string, from, to State)) Option {
	return func(b *Breaker) {
		b.onStateChange = fn
	}
}

// New 创建熔断器。
func New(name string, opts ...Option) *Breaker {
	b := &Breaker{
		name:        name,
		threshold:   5,
		timeout:     60 * time.Second,
		maxRequests: 1,
	}
	for _, opt := range opts {
		opt(b)
	}

	st := gobreaker.Settings{
		Name:        b.name,
		MaxRequests: b.maxRequests,
		Interval:    b.interval,
		Timeout:     b.timeout,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= b.threshold
		},
		IsSuccessful: b.isSuccessful,
	}
	if b.onStateChange != nil {
		st.OnStateChange = b.onStateChange
	}
	b.cb = gobreaker.NewCircuitBreaker[any](st)
	return b
}

func (b *Breaker) isSuccessful(err error) bool {
	if err == nil {
		return true
	}
	// 调用方取消不代表下游故障
	if errors.Is(err, context.Canceled) {
		return true
	}
	for _, target := range b.ignored {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// Do 执行受熔断器保护的操作。ctx 已结束时直接返回 ctx 错误。
func (b *Breaker) Do(ctx context.Context, fn func() error) error {
	_, err := Execute(ctx, b, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}

// Execute 执行受熔断器保护的操作（泛型版本）。
func Execute[T any](ctx context.Context, b *Breaker, fn func() (T, error)) (T, error) {
	var zero T
	if b == nil {
		return zero, ErrNilBreaker
	}
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	result, err := b.cb.Execute(func() (any, error) {
		return fn()
	})
	if err != nil {
		return zero, wrapBreakerError(err, b.name, b.cb.State())
	}
	typed, _ := result.(T)
	return typed, nil
}

// Name 返回熔断器名称。
func (b *Breaker) Name() string { return b.name }

// State 返回当前状态。
func (b *Breaker) State() State { return b.cb.State() }

// Counts 返回当前统计计数。
func (b *Breaker) Counts() Counts { return b.cb.Counts() }
