package xdlock

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/omeyang/xshop/pkg/util/xid"
)

// tokenSource 生成锁所有者标识："<进程 UUID>-<单次获取 ID>"。
//
// 进程前缀区分实例，sonyflake ID 区分同一进程内的每次获取。
type tokenSource struct {
	prefix string
	gen    *xid.Generator
}

func newTokenSource() (*tokenSource, error) {
	gen, err := xid.NewGenerator()
	if err != nil {
		return nil, fmt.Errorf("xdlock: create token generator: %w", err)
	}
	return &tokenSource{
		prefix: uuid.NewString(),
		gen:    gen,
	}, nil
}

func (s *tokenSource) next() (string, error) {
	id, err := s.gen.NextString()
	if err != nil {
		return "", fmt.Errorf("xdlock: generate token: %w", err)
	}
	return s.prefix + "-" + id, nil
}
