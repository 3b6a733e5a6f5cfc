package xlimit

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrRateLimited 请求被限流。
	ErrRateLimited = errors.New("xlimit: rate limited")

	// ErrNilClient Redis 客户端为 nil。
	ErrNilClient = errors.New("xlimit: nil client")

	// ErrInvalidRule 限流规则无效。
	ErrInvalidRule = errors.New("xlimit: invalid rule")

	// ErrInvalidKey 限流键为空。
	ErrInvalidKey = errors.New("xlimit: invalid key")

	// ErrLimiterClosed 限流器已关闭。
	ErrLimiterClosed = errors.New("xlimit: limiter closed")
)

// LimitError 限流错误，errors.Is(err, ErrRateLimited) 为真。
type LimitError struct {
	Key        string
	Rule       string
	Limit      int
	RetryAfter time.Duration
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("xlimit: rate limited by rule %q, key=%s, limit=%d, retry_after=%s",
		e.Rule, e.Key, e.Limit, e.RetryAfter)
}

func (e *LimitError) Unwrap() error { return ErrRateLimited }

// Retryable 限流错误不应立即重试。
func (e *LimitError) Retryable() bool { return false }

// IsDenied 检查错误是否为限流拒绝。
func IsDenied(err error) bool {
	return errors.Is(err, ErrRateLimited)
}
