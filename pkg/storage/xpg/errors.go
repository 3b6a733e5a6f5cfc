package xpg

import "errors"

var (
	// ErrEmptyDSN 连接串为空。
	ErrEmptyDSN = errors.New("xpg: empty dsn")

	// ErrInvalidConfig 连接池配置无效。
	ErrInvalidConfig = errors.New("xpg: invalid config")

	// ErrClosed 连接池已关闭。
	ErrClosed = errors.New("xpg: closed")
)
