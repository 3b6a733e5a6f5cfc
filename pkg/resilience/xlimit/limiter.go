package xlimit

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-redis/redis_rate/v10"
	"github.com/redis/go-redis/v9"
)

// Rule 限流规则：每 Period 补充 Rate 个令牌，桶容量 Burst。
type Rule struct {
	Name   string
	Rate   int
	Burst  int
	Period time.Duration
}

// PerSecond 每秒 rate 次、突发 rate 的规则。
func PerSecond(name string, rate int) Rule {
	return Rule{Name: name, Rate: rate, Burst: rate, Period: time.Second}
}

func (r Rule) validate() error {
	if r.Rate <= 0 || r.Burst <= 0 || r.Period <= 0 {
		return fmt.Errorf("%w: rate=%d burst=%d period=%s", ErrInvalidRule, r.Rate, r.Burst, r.Period)
	}
	return nil
}

// Result 单次检查结果。
type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
	ResetAt    time.Time
	Rule       string
	Key        string
}

// Err 未通过时返回 *LimitError，通过时返回 nil。
func (r Result) Err() error {
	if r.Allowed {
		return nil
	}
	return &LimitError{Key: r.Key, Rule: r.Rule, Limit: r.Limit, RetryAfter: r.RetryAfter}
}

// Option 限流器配置选项。
type Option func(*Limiter)

// WithKeyPrefix 设置限流键前缀，默认 "xlimit:"。
func WithKeyPrefix(prefix string) Option {
	return func(l *Limiter) {
		l.prefix = prefix
	}
}

// Limiter 分布式限流器，并发安全。
type Limiter struct {
	rl     *redis_rate.Limiter
	rule   Rule
	limit  redis_rate.Limit
	prefix string
	now    func() time.Time
	closed atomic.Bool
}

// New 创建限流器。
func New(client redis.UniversalClient, rule Rule, opts ...Option) (*Limiter, error) {
	if client == nil {
		return nil, ErrNilClient
	}
	if err := rule.validate(); err != nil {
		return nil, err
	}
	l := &Limiter{
		rl:     redis_rate.NewLimiter(client),
		rule:   rule,
		limit:  redis_rate.Limit{Rate: rule.Rate, Burst: rule.Burst, Period: rule.Period},
		prefix: "xlimit:",
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Allow 为 key 消耗一个令牌。
func (l *Limiter) Allow(ctx context.Context, key string) (Result, error) {
	return l.AllowN(ctx, key, 1)
}

// AllowN 为 key 消耗 n 个令牌；n=0 只查询不消耗。
func (l *Limiter) AllowN(ctx context.Context, key string, n int) (Result, error) {
	if l.closed.Load() {
		return Result{}, ErrLimiterClosed
	}
	if strings.TrimSpace(key) == "" {
		return Result{}, ErrInvalidKey
	}

	res, err := l.rl.AllowN(ctx, l.prefix+key, l.limit, n)
	if err != nil {
		return Result{}, fmt.Errorf("xlimit: check %q: %w", key, err)
	}

	return Result{
		Allowed:    n == 0 || res.Allowed >= n,
		Limit:      l.rule.Burst,
		Remaining:  res.Remaining,
		RetryAfter: max(res.RetryAfter, 0),
		ResetAt:    l.now().Add(res.ResetAfter),
		Rule:       l.rule.Name,
		Key:        key,
	}, nil
}

// Reset 清除 key 的限流状态。
func (l *Limiter) Reset(ctx context.Context, key string) error {
	if l.closed.Load() {
		return ErrLimiterClosed
	}
	return l.rl.Reset(ctx, l.prefix+key)
}

// Rule 返回限流规则。
func (l *Limiter) Rule() Rule {
	return l.rule
}

// Close 关闭限流器，不关闭 Redis 客户端。
func (l *Limiter) Close() error {
	l.closed.Store(true)
	return nil
}
