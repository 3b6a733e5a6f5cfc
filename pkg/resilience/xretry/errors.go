package xretry

import "errors"

// RetryableError 自带重试语义的错误，xbreaker/xlimit 的错误类型实现此接口。
type RetryableError interface {
	error
	Retryable() bool
}

// classified 为任意错误附加重试语义。
type classified struct {
	err       error
	retryable bool
}

// Permanent 标记 err 不可重试，err 为 nil 时返回 nil。
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &classified{err: err}
}

// Temporary 标记 err 可重试，err 为 nil 时返回 nil。
func Temporary(err error) error {
	if err == nil {
		return nil
	}
	return &classified{err: err, retryable: true}
}

func (e *classified) Error() string   { return e.err.Error() }
func (e *classified) Unwrap() error   { return e.err }
func (e *classified) Retryable() bool { return e.retryable }

// IsRetryable 沿错误链查找 RetryableError，未声明的错误视为可重试。
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var re RetryableError
	if errors.As(err, &re) {
		return re.Retryable()
	}
	return true
}

// IsPermanent 报告 err 是否被声明为不可重试。
func IsPermanent(err error) bool {
	return err != nil && !IsRetryable(err)
}
