package xrun

import (
	"errors"
	"fmt"
	"os"
)

var (
	// ErrSignal 因收到系统信号而退出。
	ErrSignal = errors.New("xrun: received signal")

	// ErrInvalidInterval Ticker 间隔必须为正数。
	ErrInvalidInterval = errors.New("xrun: interval must be positive")

	// ErrInvalidSchedule cron 表达式无效。
	ErrInvalidSchedule = errors.New("xrun: invalid schedule")

	// ErrNilFunc 服务函数为 nil。
	ErrNilFunc = errors.New("xrun: nil func")
)

// SignalError 记录触发退出的信号，满足 errors.Is(err, ErrSignal)。
type SignalError struct {
	Signal os.Signal
}

func (e *SignalError) Error() string {
	return fmt.Sprintf("xrun: received signal %v", e.Signal)
}

// Unwrap 返回 ErrSignal。
func (e *SignalError) Unwrap() error { return ErrSignal }
