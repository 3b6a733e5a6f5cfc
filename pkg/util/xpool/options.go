package xpool

import (
	"errors"
	"log/slog"
)

var (
	// ErrNilHandler handler 为 nil。
	ErrNilHandler = errors.New("xpool: nil handler")

	// ErrInvalidWorkers worker 数必须为正数。
	ErrInvalidWorkers = errors.New("xpool: workers must be positive")

	// ErrInvalidQueueSize 队列容量必须为正数。
	ErrInvalidQueueSize = errors.New("xpool: queue size must be positive")

	// ErrQueueFull 队列已满，任务未入队。
	ErrQueueFull = errors.New("xpool: queue full")

	// ErrPoolStopped pool 已关闭，任务未入队。
	ErrPoolStopped = errors.New("xpool: stopped")

	// ErrNilContext Shutdown 的 ctx 为 nil。
	ErrNilContext = errors.New("xpool: nil context")
)

// Option Pool 配置选项。
type Option func(*options)

type options struct {
	logger *slog.Logger
	name   string
}

// WithLogger 设置 panic 日志的记录器，默认 slog.Default()。
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithName 设置 pool 名称，出现在日志与 Stats 中。
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}
