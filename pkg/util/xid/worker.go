package xid

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// =============================================================================
// ID 位布局
// =============================================================================

const (
	// DefaultEpoch 自定义纪元：2023-01-01T00:00:00Z（Unix 秒 1672531200）。
	DefaultEpoch int64 = 1672531200

	// DefaultCounterPrefix 序列号计数器 key 前缀。
	DefaultCounterPrefix = "icr"

	// SequenceBits 序列号位数。
	SequenceBits = 31

	sequenceMask = (int64(1) << SequenceBits) - 1
	dateLayout   = "2006:01:02"
)

// Counter 是 Worker 依赖的原子自增原语，xkv.Store 满足此接口。
type Counter interface {
	Incr(ctx context.Context, key string) (int64, error)
}

// =============================================================================
// Worker
// =============================================================================

// Worker 基于 Store 原子自增的全局 ID 生成器。
//
// Worker 无内部状态，所有方法并发安全。
type Worker struct {
	counter Counter
	epoch   int64
	prefix  string
	now     func() time.Time
}

// WorkerOption 配置 Worker。
type WorkerOption func(*Worker)

// WithEpoch 设置自定义纪元（Unix 秒）。
func WithEpoch(epoch int64) WorkerOption {
	return func(w *Worker) {
		w.epoch = epoch
	}
}

// WithCounterPrefix 设置计数器 key 前缀，默认 "icr"。
func WithCounterPrefix(prefix string) WorkerOption {
	return func(w *Worker) {
		if prefix != "" {
			w.prefix = prefix
		}
	}
}

// WithClock 设置时钟函数，默认 time.Now。
func WithClock(now func() time.Time) WorkerOption {
	return func(w *Worker) {
		if now != nil {
			w.now = now
		}
	}
}

// NewWorker 创建 Worker。
func NewWorker(counter Counter, opts ...WorkerOption) (*Worker, error) {
	if counter == nil {
		return nil, ErrNilCounter
	}
	w := &Worker{
		counter: counter,
		epoch:   DefaultEpoch,
		prefix:  DefaultCounterPrefix,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.epoch < 0 {
		return nil, fmt.Errorf("%w: epoch must be non-negative, got %d", ErrInvalidConfig, w.epoch)
	}
	return w, nil
}

// NextID 为 namespace 生成下一个 ID。
//
// 计数器 key 为 "<prefix>:<namespace>:<yyyy:MM:dd>"，日期按 UTC 计算。
func (w *Worker) NextID(ctx context.Context, namespace string) (int64, error) {
	if strings.TrimSpace(namespace) == "" {
		return 0, ErrEmptyNamespace
	}

	now := w.now().UTC()
	timestamp := now.Unix() - w.epoch
	if timestamp < 0 {
		return 0, fmt.Errorf("%w: now=%s", ErrClockBeforeEpoch, now.Format(time.RFC3339))
	}

	seq, err := w.counter.Incr(ctx, w.CounterKey(namespace, now))
	if err != nil {
		return 0, fmt.Errorf("xid: increment sequence for %q: %w", namespace, err)
	}
	if seq > sequenceMask {
		return 0, fmt.Errorf("%w: namespace=%s seq=%d", ErrSequenceOverflow, namespace, seq)
	}

	return timestamp<<SequenceBits | seq, nil
}

// CounterKey 返回 namespace 在 t 所在日期（UTC）的计数器 key。
func (w *Worker) CounterKey(namespace string, t time.Time) string {
	return w.prefix + ":" + namespace + ":" + t.UTC().Format(dateLayout)
}

// =============================================================================
// 分解
// =============================================================================

// Components 表示 Worker ID 分解后的各组成部分。
type Components struct {
	ID int64
	// Seconds 自纪元以来的秒数
	Seconds int64
	// Sequence 当日序列号
	Sequence int64
}

// Time 返回 ID 的生成时间（UTC），epoch 须与生成时一致。
func (c Components) Time(epoch int64) time.Time {
	return time.Unix(epoch+c.Seconds, 0).UTC()
}

// Decompose 分解 Worker 生成的 ID。
func Decompose(id int64) (Components, error) {
	if id <= 0 {
		return Components{}, fmt.Errorf("%w: value must be positive, got %d", ErrInvalidID, id)
	}
	return Components{
		ID:       id,
		Seconds:  id >> SequenceBits,
		Sequence: id & sequenceMask,
	}, nil
}
