package xretry

import (
	"context"
	"time"

	retry "github.com/avast/retry-go/v5"
)

type (
	// Option 是 retry-go 的配置选项类型。
	Option = retry.Option

	// Error 表示重试过程中累积的错误列表。
	Error = retry.Error
)

var (
	// Attempts 设置总尝试次数（包含首次尝试），0 表示无限重试。
	Attempts = retry.Attempts

	// Delay 设置重试间隔。
	Delay = retry.Delay

	// MaxJitter 设置最大抖动时间。
	MaxJitter = retry.MaxJitter

	// DelayType 设置延迟类型。
	DelayType = retry.DelayType

	// OnRetry 设置重试回调。
	OnRetry = retry.OnRetry

	// RetryIf 设置重试条件，会覆盖默认判断。
	RetryIf = retry.RetryIf

	// LastErrorOnly 只返回最后一个错误。
	LastErrorOnly = retry.LastErrorOnly

	// FixedDelay 固定延迟。
	FixedDelay = retry.FixedDelay

	// Unrecoverable 将错误标记为不可恢复。
	Unrecoverable = retry.Unrecoverable

	// IsRecoverable 检查错误是否可恢复。
	IsRecoverable = retry.IsRecoverable
)

// Fixed 返回固定间隔、无抖动的有界重试选项，失败时只返回最后一个错误。
func Fixed(attempts uint, delay time.Duration) []Option {
	return []Option{
		Attempts(attempts),
		Delay(delay),
		MaxJitter(0),
		DelayType(FixedDelay),
		LastErrorOnly(true),
	}
}

// Do 执行带重试的操作。
//
// fn 不接收 context，通过闭包捕获即可；ctx 取消时停止重试。
func Do(ctx context.Context, fn func() error, opts ...Option) error {
	return retry.New(defaultOpts(ctx, opts)...).Do(fn)
}

// DoWithData 执行带重试的操作（有返回值）。
func DoWithData[T any](ctx context.Context, fn func() (T, error), opts ...Option) (T, error) {
	return retry.NewWithData[T](defaultOpts(ctx, opts)...).Do(fn)
}

// defaultOpts 在调用方选项前追加 Context 与默认 RetryIf。
func defaultOpts(ctx context.Context, opts []Option) []Option {
	all := make([]Option, 0, len(opts)+2)
	all = append(all, retry.Context(ctx))
	all = append(all, RetryIf(func(err error) bool {
		if !IsRecoverable(err) {
			return false
		}
		return IsRetryable(err)
	}))
	return append(all, opts...)
}
