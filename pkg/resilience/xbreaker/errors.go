package xbreaker

import (
	"errors"
	"fmt"

	"github.com/sony/gobreaker/v2"
)

var (
	// ErrOpen 熔断器处于 Open 状态，操作被拒绝。
	ErrOpen = errors.New("xbreaker: circuit breaker is open")

	// ErrTooManyRequests HalfOpen 状态下探测请求已满。
	ErrTooManyRequests = errors.New("xbreaker: too many requests in half-open state")

	// ErrNilBreaker 熔断器为 nil。
	ErrNilBreaker = errors.New("xbreaker: breaker cannot be nil")
)

// BreakerError 熔断器拒绝执行时返回的错误。
type BreakerError struct {
	Name  string
	State State
	Err   error // ErrOpen 或 ErrTooManyRequests
}

func (e *BreakerError) Error() string {
	return fmt.Sprintf("%v (breaker=%s state=%s)", e.Err, e.Name, e.State)
}

func (e *BreakerError) Unwrap() error { return e.Err }

// Retryable 熔断拒绝不应重试。
func (e *BreakerError) Retryable() bool { return false }

// wrapBreakerError 将 gobreaker 的拒绝错误转换为 BreakerError，其他错误原样返回。
func wrapBreakerError(err error, name string, state State) error {
	switch {
	case errors.Is(err, gobreaker.ErrOpenState):
		return &BreakerError{Name: name, State: state, Err: ErrOpen}
	case errors.Is(err, gobreaker.ErrTooManyRequests):
		return &BreakerError{Name: name, State: state, Err: ErrTooManyRequests}
	}
	return err
}

// IsOpen 检查错误是否为熔断器拒绝（Open 或 HalfOpen 限流）。
func IsOpen(err error) bool {
	return errors.Is(err, ErrOpen) || errors.Is(err, ErrTooManyRequests)
}
