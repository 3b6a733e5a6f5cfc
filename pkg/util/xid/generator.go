package xid

import (
	"fmt"
	"hash/fnv"
	"os"
	"strconv"

	"github.com/sony/sonyflake/v2"
)

// Generator 进程本地唯一 ID 生成器，基于 Sonyflake。
//
// Generator 的所有方法都是并发安全的。
type Generator struct {
	sf *sonyflake.Sonyflake
}

// GeneratorOption 配置 Generator。
type GeneratorOption func(*sonyflake.Settings)

// WithMachineID 设置机器 ID 函数，返回值必须在 0-65535 范围内。
func WithMachineID(fn func() (int, error)) GeneratorOption {
	return func(s *sonyflake.Settings) {
		if fn != nil {
			s.MachineID = fn
		}
	}
}

// NewGenerator 创建 Generator。
//
// 默认机器 ID 取主机名与进程号的 16 位哈希，不依赖私有 IP，
// 容器和本地测试环境都能创建成功。
func NewGenerator(opts ...GeneratorOption) (*Generator, error) {
	settings := sonyflake.Settings{
		MachineID: hostMachineID,
	}
	for _, opt := range opts {
		opt(&settings)
	}

	sf, err := sonyflake.New(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return &Generator{sf: sf}, nil
}

// Next 生成下一个 ID。
func (g *Generator) Next() (int64, error) {
	return g.sf.NextID()
}

// NextString 生成下一个 ID 的 base36 字符串形式。
func (g *Generator) NextString() (string, error) {
	id, err := g.Next()
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(id, 36), nil
}

// hostMachineID 主机名 + PID 的 FNV 哈希低 16 位。
func hostMachineID() (int, error) {
	hostname, err := os.Hostname()
	if err != nil || hostname == "" {
		hostname = "unknown"
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(hostname))
	_, _ = h.Write([]byte(strconv.Itoa(os.Getpid())))
	return int(h.Sum32() & 0xFFFF), nil
}
