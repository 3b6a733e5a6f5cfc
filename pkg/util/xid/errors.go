package xid

import "errors"

var (
	// ErrNilCounter Worker 的计数器为 nil。
	ErrNilCounter = errors.New("xid: nil counter")

	// ErrEmptyNamespace 命名空间为空。
	ErrEmptyNamespace = errors.New("xid: empty namespace")

	// ErrClockBeforeEpoch 当前时间早于自定义纪元。
	ErrClockBeforeEpoch = errors.New("xid: clock is before custom epoch")

	// ErrSequenceOverflow 当日序列号超出 31 位。
	ErrSequenceOverflow = errors.New("xid: daily sequence overflow")

	// ErrInvalidID ID 值无效（零或负数）。
	ErrInvalidID = errors.New("xid: invalid id")

	// ErrInvalidConfig 配置参数无效。
	ErrInvalidConfig = errors.New("xid: invalid config")
)
