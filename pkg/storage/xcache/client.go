package xcache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/omeyang/xshop/pkg/distributed/xdlock"
	"github.com/omeyang/xshop/pkg/observability/xlog"
	"github.com/omeyang/xshop/pkg/observability/xmetrics"
	"github.com/omeyang/xshop/pkg/resilience/xbreaker"
	"github.com/omeyang/xshop/pkg/resilience/xretry"
	"github.com/omeyang/xshop/pkg/storage/xkv"
	"github.com/omeyang/xshop/pkg/util/xpool"
)

// 观测结果取值（span 属性 "result"）。
const (
	ResultHit       = "hit"
	ResultTombstone = "tombstone"
	ResultMiss      = "miss"
	ResultStale     = "stale"
	ResultRebuild   = "rebuild"
	ResultCold      = "cold"
)

const componentName = "xcache"

// errLockBusy 互斥循环内部使用，耗尽重试后转换为 ErrBusy。
var errLockBusy = errors.New("xcache: lock busy")

// Fallback 回源函数。记录不存在时返回包装了 ErrNotFound 的错误。
type Fallback[K any, T any] func(ctx context.Context, id K) (T, error)

// Client 泛型 cache-aside 客户端，K 为记录 ID 类型，T 为值类型。
//
// Client 并发安全。
type Client[K comparable, T any] struct {
	store   xkv.Store
	locker  xdlock.Factory
	opts    *options
	pool    *xpool.Pool[func()]
	ownPool bool
	group   singleflight.Group
	closed  atomic.Bool
}

// New 创建 Client。
func New[K comparable, T any](store xkv.Store, locker xdlock.Factory, opts ...Option) (*Client[K, T], error) {
	if store == nil {
		return nil, ErrNilStore
	}
	if locker == nil {
		return nil, ErrNilLocker
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	c := &Client[K, T]{store: store, locker: locker, opts: o, pool: o.pool}
	if c.pool == nil {
		p, err := NewRebuildPool(DefaultRebuildWorkers, DefaultRebuildQueue, o.logger)
		if err != nil {
			return nil, err
		}
		c.pool = p
		c.ownPool = true
	}
	return c, nil
}

// NewRebuildPool 创建可在多个 Client 间共享的重建 pool。
func NewRebuildPool(workers, queue int, logger *slog.Logger) (*xpool.Pool[func()], error) {
	p, err := xpool.New(workers, queue, func(task func()) { task() },
		xpool.WithName("xcache-rebuild"),
		xpool.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return p, nil
}

// Close 停止接收重建任务；自建的 pool 会等待在途重建完成或 ctx 到期。
func (c *Client[K, T]) Close(ctx context.Context) error {
	if c.closed.Swap(true) || !c.ownPool {
		return nil
	}
	return c.pool.Shutdown(ctx)
}

// =============================================================================
// 读取
// =============================================================================

// Get 透传模式读取 keyPrefix+id。
//
// 命中返回缓存值；命中墓碑返回 ErrNotFound 且不回源；
// 未命中时回源，结果以 ttl 写入（ttl <= 0 表示不过期），
// 回源返回 ErrNotFound 时写入墓碑。其他回源错误原样返回，不写缓存。
func (c *Client[K, T]) Get(ctx context.Context, keyPrefix string, id K, fallback Fallback[K, T], ttl time.Duration) (value T, err error) {
	key, err := prepare(keyPrefix, id, fallback)
	if err != nil {
		return value, err
	}
	ctx, span := xmetrics.Start(ctx, c.opts.observer, spanOptions("get", key))
	result := ResultMiss
	defer func() { endSpan(span, &result, err) }()

	value, found, err := c.readValue(ctx, key)
	if errors.Is(err, ErrNotFound) {
		result = ResultTombstone
	}
	if err != nil {
		return value, err
	}
	if found {
		result = ResultHit
		return value, nil
	}
	return c.loadAndSet(ctx, key, id, fallback, ttl)
}

// GetWithLogicalExpiry 逻辑过期模式读取 keyPrefix+id。
//
// 未缓存时返回 ErrNotFound（开启 WithColdLoad 时改为互斥回源）；
// 未过期直接返回；已过期时单次尝试锁 "lock:<key>"，
// 获取成功且二次检查仍过期则投递异步重建，所有调用方立即返回旧值。
func (c *Client[K, T]) GetWithLogicalExpiry(ctx context.Context, keyPrefix string, id K, fallback Fallback[K, T], logicalTTL time.Duration) (value T, err error) {
	key, err := prepare(keyPrefix, id, fallback)
	if err != nil {
		return value, err
	}
	if logicalTTL <= 0 {
		return value, fmt.Errorf("%w: logical ttl must be positive", ErrInvalidConfig)
	}
	ctx, span := xmetrics.Start(ctx, c.opts.observer, spanOptions("get_logical", key))
	result := ResultMiss
	defer func() { endSpan(span, &result, err) }()

	entry, found, err := c.readEntry(ctx, key)
	if err != nil {
		return value, err
	}
	if !found {
		if !c.opts.coldLoad {
			return value, ErrNotFound
		}
		result = ResultCold
		return c.coldLoad(ctx, key, id, fallback, logicalTTL)
	}
	if !entry.Expired(c.opts.now()) {
		result = ResultHit
		return entry.Data, nil
	}

	result = ResultStale
	stale := entry.Data
	if c.closed.Load() {
		return stale, nil
	}

	handle, err := c.locker.TryLock(ctx, key, xdlock.WithExpiry(c.opts.lockExpiry))
	if err != nil {
		return value, fmt.Errorf("xcache: acquire rebuild lock %q: %w", key, err)
	}
	if handle == nil {
		return stale, nil
	}

	// 二次检查：加锁前可能已被他人重建
	fresh, found, err := c.readEntry(ctx, key)
	if err != nil {
		c.unlock(ctx, handle)
		return value, err
	}
	if found && !fresh.Expired(c.opts.now()) {
		c.unlock(ctx, handle)
		result = ResultHit
		return fresh.Data, nil
	}

	if err := c.pool.Submit(c.rebuildTask(ctx, handle, key, id, fallback, logicalTTL)); err != nil {
		c.unlock(ctx, handle)
		c.opts.logger.LogAttrs(ctx, slog.LevelWarn, "xcache: rebuild rejected, serving stale",
			xlog.Key(key), xlog.Err(err))
		return stale, nil
	}
	result = ResultRebuild
	return stale, nil
}

// GetWithMutex 互斥模式读取 keyPrefix+id。
//
// 未命中时同进程调用方先经 singleflight 合并，再以分布式锁串行回源；
// 锁忙时固定退避后重读缓存，尝试次数耗尽返回 ErrBusy。
func (c *Client[K, T]) GetWithMutex(ctx context.Context, keyPrefix string, id K, fallback Fallback[K, T], ttl time.Duration) (value T, err error) {
	key, err := prepare(keyPrefix, id, fallback)
	if err != nil {
		return value, err
	}
	ctx, span := xmetrics.Start(ctx, c.opts.observer, spanOptions("get_mutex", key))
	result := ResultMiss
	defer func() { endSpan(span, &result, err) }()

	value, found, err := c.readValue(ctx, key)
	if errors.Is(err, ErrNotFound) {
		result = ResultTombstone
	}
	if err != nil {
		return value, err
	}
	if found {
		result = ResultHit
		return value, nil
	}

	return c.sharedLoad(ctx, "mutex:"+key, func(ctx context.Context) (T, error) {
		return c.mutexLoad(ctx, key, c.readValue, func(ctx context.Context) (T, error) {
			return c.loadAndSet(ctx, key, id, fallback, ttl)
		})
	})
}

// =============================================================================
// 写入
// =============================================================================

// Set 以 ttl 写入 value（ttl <= 0 表示不过期）。
func (c *Client[K, T]) Set(ctx context.Context, key string, value T, ttl time.Duration) error {
	if key == "" {
		return ErrEmptyKey
	}
	return c.writeValue(ctx, key, value, ttl)
}

// SetWithLogicalExpiry 写入逻辑过期信封，物理上不过期。
func (c *Client[K, T]) SetWithLogicalExpiry(ctx context.Context, key string, value T, logicalTTL time.Duration) error {
	if key == "" {
		return ErrEmptyKey
	}
	if logicalTTL <= 0 {
		return fmt.Errorf("%w: logical ttl must be positive", ErrInvalidConfig)
	}
	return c.writeEntry(ctx, key, value, logicalTTL)
}

// Delete 删除缓存条目。
func (c *Client[K, T]) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := c.store.Del(ctx, keys...); err != nil {
		return fmt.Errorf("xcache: delete: %w", err)
	}
	return nil
}

// =============================================================================
// 内部实现
// =============================================================================

func prepare[K any, T any](keyPrefix string, id K, fallback Fallback[K, T]) (string, error) {
	if fallback == nil {
		return "", ErrNilFallback
	}
	key := keyPrefix + fmt.Sprint(id)
	if key == "" {
		return "", ErrEmptyKey
	}
	return key, nil
}

// readValue 读取透传模式条目。墓碑返回 ErrNotFound。
func (c *Client[K, T]) readValue(ctx context.Context, key string) (T, bool, error) {
	var v T
	raw, ok, err := c.store.Get(ctx, key)
	if err != nil {
		return v, false, fmt.Errorf("xcache: read %q: %w", key, err)
	}
	if !ok {
		return v, false, nil
	}
	if raw == "" {
		return v, false, ErrNotFound
	}
	if err := c.opts.codec.Unmarshal([]byte(raw), &v); err != nil {
		return v, false, fmt.Errorf("%w: key=%s: %w", ErrMalformed, key, err)
	}
	return v, true, nil
}

// readEntry 读取逻辑过期信封。空值视为不存在。
func (c *Client[K, T]) readEntry(ctx context.Context, key string) (Entry[T], bool, error) {
	var e Entry[T]
	raw, ok, err := c.store.Get(ctx, key)
	if err != nil {
		return e, false, fmt.Errorf("xcache: read %q: %w", key, err)
	}
	if !ok || raw == "" {
		return e, false, nil
	}
	if err := c.opts.codec.Unmarshal([]byte(raw), &e); err != nil {
		return e, false, fmt.Errorf("%w: key=%s: %w", ErrMalformed, key, err)
	}
	if e.ExpireAt.IsZero() {
		return e, false, fmt.Errorf("%w: key=%s: missing expireTime", ErrMalformed, key)
	}
	return e, true, nil
}

func (c *Client[K, T]) readEntryData(ctx context.Context, key string) (T, bool, error) {
	e, found, err := c.readEntry(ctx, key)
	return e.Data, found, err
}

func (c *Client[K, T]) writeValue(ctx context.Context, key string, v T, ttl time.Duration) error {
	data, err := c.opts.codec.Marshal(v)
	if err != nil {
		return fmt.Errorf("xcache: encode %q: %w", key, err)
	}
	if err := c.store.Set(ctx, key, string(data), ttl); err != nil {
		return fmt.Errorf("xcache: write %q: %w", key, err)
	}
	return nil
}

func (c *Client[K, T]) writeEntry(ctx context.Context, key string, v T, logicalTTL time.Duration) error {
	data, err := c.opts.codec.Marshal(Entry[T]{Data: v, ExpireAt: c.opts.now().Add(logicalTTL)})
	if err != nil {
		return fmt.Errorf("xcache: encode %q: %w", key, err)
	}
	if err := c.store.Set(ctx, key, string(data), 0); err != nil {
		return fmt.Errorf("xcache: write %q: %w", key, err)
	}
	return nil
}

// loadAndSet 回源并写入透传模式条目；回源未找到时写墓碑。
// 缓存写入失败只记录日志，不影响返回值。
func (c *Client[K, T]) loadAndSet(ctx context.Context, key string, id K, fallback Fallback[K, T], ttl time.Duration) (T, error) {
	v, err := c.callFallback(ctx, id, fallback)
	if errors.Is(err, ErrNotFound) {
		if werr := c.store.Set(ctx, key, "", c.opts.tombstoneTTL); werr != nil {
			c.opts.logger.LogAttrs(ctx, slog.LevelWarn, "xcache: write tombstone failed",
				xlog.Key(key), xlog.Err(werr))
		}
		return v, err
	}
	if err != nil {
		return v, err
	}
	if werr := c.writeValue(ctx, key, v, ttl); werr != nil {
		c.opts.logger.LogAttrs(ctx, slog.LevelWarn, "xcache: write value failed",
			xlog.Key(key), xlog.Err(werr))
	}
	return v, nil
}

// callFallback 调用回源函数：可选熔断保护，panic 转为 ErrLoadPanic。
func (c *Client[K, T]) callFallback(ctx context.Context, id K, fallback Fallback[K, T]) (v T, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero T
			v, err = zero, fmt.Errorf("%w: %v", ErrLoadPanic, r)
		}
	}()
	if c.opts.breaker != nil {
		return xbreaker.Execute(ctx, c.opts.breaker, func() (T, error) {
			return fallback(ctx, id)
		})
	}
	return fallback(ctx, id)
}

// sharedLoad 合并同进程内同一 key 的并发回源。
//
// 回源在脱离调用方取消链的独立超时 context 中执行，
// 首个调用方取消不影响其他等待者。
func (c *Client[K, T]) sharedLoad(ctx context.Context, sfKey string, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	ch := c.group.DoChan(sfKey, func() (any, error) {
		lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.opts.loadTimeout)
		defer cancel()
		return fn(lctx)
	})
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return zero, r.Err
		}
		v, _ := r.Val.(T)
		return v, nil
	}
}

// mutexLoad 有界互斥回源循环：每轮先读缓存，未命中则尝试加锁；
// 锁忙时固定退避后重试，加锁成功后二次检查再回源。
func (c *Client[K, T]) mutexLoad(
	ctx context.Context,
	key string,
	read func(context.Context, string) (T, bool, error),
	load func(context.Context) (T, error),
) (T, error) {
	var zero T
	v, err := xretry.DoWithData(ctx, func() (T, error) {
		v, found, err := read(ctx, key)
		if err != nil {
			return zero, xretry.Unrecoverable(err)
		}
		if found {
			return v, nil
		}

		handle, err := c.locker.TryLock(ctx, key, xdlock.WithExpiry(c.opts.lockExpiry))
		if err != nil {
			return zero, xretry.Unrecoverable(fmt.Errorf("xcache: acquire lock %q: %w", key, err))
		}
		if handle == nil {
			return zero, errLockBusy
		}
		defer c.unlock(ctx, handle)

		if v, found, err = read(ctx, key); err != nil {
			return zero, xretry.Unrecoverable(err)
		} else if found {
			return v, nil
		}
		v, err = load(ctx)
		if err != nil {
			return zero, xretry.Unrecoverable(err)
		}
		return v, nil
	}, xretry.Fixed(c.opts.mutexAttempts, c.opts.mutexDelay)...)

	if err == nil {
		return v, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return zero, ctxErr
	}
	if errors.Is(err, errLockBusy) {
		return zero, fmt.Errorf("%w: key=%s attempts=%d", ErrBusy, key, c.opts.mutexAttempts)
	}
	return zero, err
}

// coldLoad 逻辑过期模式下的冷 key 同步加载，写入信封。
func (c *Client[K, T]) coldLoad(ctx context.Context, key string, id K, fallback Fallback[K, T], logicalTTL time.Duration) (T, error) {
	return c.sharedLoad(ctx, "cold:"+key, func(ctx context.Context) (T, error) {
		return c.mutexLoad(ctx, key, c.readEntryData, func(ctx context.Context) (T, error) {
			v, err := c.callFallback(ctx, id, fallback)
			if err != nil {
				return v, err
			}
			if werr := c.writeEntry(ctx, key, v, logicalTTL); werr != nil {
				c.opts.logger.LogAttrs(ctx, slog.LevelWarn, "xcache: write entry failed",
					xlog.Key(key), xlog.Err(werr))
			}
			return v, nil
		})
	})
}

// rebuildTask 构造异步重建任务。任务结束时总是释放重建锁，失败只记录不重试。
func (c *Client[K, T]) rebuildTask(parent context.Context, handle xdlock.LockHandle, key string, id K, fallback Fallback[K, T], logicalTTL time.Duration) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), c.opts.loadTimeout)
		defer cancel()
		defer c.unlock(ctx, handle)
		stop := c.keepAlive(ctx, handle)
		defer stop()

		ctx, span := xmetrics.Start(ctx, c.opts.observer, spanOptions("rebuild", key))
		start := time.Now()

		v, err := c.callFallback(ctx, id, fallback)
		switch {
		case errors.Is(err, ErrNotFound):
			// 记录已删除，移除信封
			err = c.Delete(ctx, key)
		case err == nil:
			err = c.writeEntry(ctx, key, v, logicalTTL)
		}

		if err != nil {
			c.opts.logger.LogAttrs(ctx, slog.LevelError, "xcache: rebuild failed",
				xlog.Key(key), xlog.Err(err), xlog.Duration(time.Since(start)))
		}
		span.End(xmetrics.Result{Err: err})
	}
}

// keepAlive 按锁 TTL 的三分之一周期续期重建锁，直到返回的 stop 被调用。
func (c *Client[K, T]) keepAlive(ctx context.Context, handle xdlock.LockHandle) (stop func()) {
	interval := max(c.opts.lockExpiry/3, minKeepAliveInterval)
	done := make(chan struct{})
	exited := make(chan struct{})

	go func() {
		defer close(exited)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := handle.Extend(ctx); err != nil {
					c.opts.logger.LogAttrs(ctx, slog.LevelWarn, "xcache: extend lock failed",
						xlog.Key(handle.Key()), xlog.Err(err))
					if errors.Is(err, xdlock.ErrNotLocked) {
						return
					}
				}
			}
		}
	}()

	return func() {
		close(done)
		<-exited
	}
}

func (c *Client[K, T]) unlock(ctx context.Context, handle xdlock.LockHandle) {
	if err := handle.Unlock(context.WithoutCancel(ctx)); err != nil {
		c.opts.logger.LogAttrs(ctx, slog.LevelWarn, "xcache: release lock failed",
			xlog.Key(handle.Key()), xlog.Err(err))
	}
}

func spanOptions(operation, key string) xmetrics.SpanOptions {
	return xmetrics.SpanOptions{
		Component: componentName,
		Operation: operation,
		Kind:      xmetrics.KindInternal,
		Attrs:     []xmetrics.Attr{xmetrics.String("key", key)},
	}
}

// endSpan 结束读取 span。ErrNotFound 是正常结果，不计为失败。
func endSpan(span xmetrics.Span, result *string, err error) {
	if errors.Is(err, ErrNotFound) {
		err = nil
	}
	span.End(xmetrics.Result{
		Err:   err,
		Attrs: []xmetrics.Attr{xmetrics.String("result", *result)},
	})
}
