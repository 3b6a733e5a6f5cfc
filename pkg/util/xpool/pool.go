package xpool

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Pool 有界泛型 worker pool。
type Pool[T any] struct {
	handler func(T)
	queue   chan T
	logger  *slog.Logger
	name    string
	workers int

	// mu 保护 closed 与 queue 的关闭，避免向已关闭 channel 发送
	mu     sync.RWMutex
	closed bool

	wg   sync.WaitGroup
	done chan struct{}
}

// New 创建并启动 Pool。
//
// workers 与 queueSize 必须为正数，handler 不能为 nil。
func New[T any](workers, queueSize int, handler func(T), opts ...Option) (*Pool[T], error) {
	if handler == nil {
		return nil, ErrNilHandler
	}
	if workers < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidWorkers, workers)
	}
	if queueSize < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidQueueSize, queueSize)
	}

	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	p := &Pool[T]{
		handler: handler,
		queue:   make(chan T, queueSize),
		logger:  o.logger,
		name:    o.name,
		workers: workers,
		done:    make(chan struct{}),
	}

	p.wg.Add(workers)
	for range workers {
		go p.worker()
	}
	go func() {
		p.wg.Wait()
		close(p.done)
	}()
	return p, nil
}

func (p *Pool[T]) worker() {
	defer p.wg.Done()
	for task := range p.queue {
		p.run(task)
	}
}

func (p *Pool[T]) run(task T) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("xpool: worker panic recovered",
				slog.String("pool", p.name),
				slog.Any("panic", r))
		}
	}()
	p.handler(task)
}

// Submit 非阻塞提交任务。
func (p *Pool[T]) Submit(task T) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrPoolStopped
	}
	select {
	case p.queue <- task:
		return nil
	default:
		return ErrQueueFull
	}
}

// Close 停止接收任务，并等待剩余任务执行完毕。重复调用安全。
func (p *Pool[T]) Close() error {
	p.stop()
	<-p.done
	return nil
}

// Shutdown 停止接收任务，并在 ctx 到期前等待剩余任务执行完毕。
//
// ctx 到期时返回 ctx.Err()，worker 仍会在后台处理完队列，可通过 Done 等待。
func (p *Pool[T]) Shutdown(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	p.stop()
	select {
	case <-p.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done 返回在所有 worker 退出后关闭的 channel。
func (p *Pool[T]) Done() <-chan struct{} {
	return p.done
}

// Stats pool 快照。
type Stats struct {
	Name     string
	Workers  int
	Pending  int
	Capacity int
	Stopped  bool
}

// Stats 返回当前快照，Pending 为排队中尚未被 worker 取走的任务数。
func (p *Pool[T]) Stats() Stats {
	p.mu.RLock()
	stopped := p.closed
	p.mu.RUnlock()
	return Stats{
		Name:     p.name,
		Workers:  p.workers,
		Pending:  len(p.queue),
		Capacity: cap(p.queue),
		Stopped:  stopped,
	}
}

func (p *Pool[T]) stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	close(p.queue)
}
