package xshop

import (
	"log/slog"
	"time"

	"github.com/omeyang/xshop/pkg/storage/xcache"
	"github.com/omeyang/xshop/pkg/util/xpool"
)

// Mode 商铺读取策略。
type Mode int

const (
	// ModePassThrough TTL 缓存 + 空值墓碑。
	ModePassThrough Mode = iota
	// ModeLogical 逻辑过期 + 异步重建。
	ModeLogical
	// ModeMutex TTL 缓存 + 互斥回源。
	ModeMutex
)

// String 返回模式名称。
func (m Mode) String() string {
	switch m {
	case ModePassThrough:
		return "passthrough"
	case ModeLogical:
		return "logical"
	case ModeMutex:
		return "mutex"
	default:
		return "unknown"
	}
}

// ParseMode 解析模式名称，空字符串视为 passthrough。
func ParseMode(s string) (Mode, bool) {
	switch s {
	case "", "passthrough":
		return ModePassThrough, true
	case "logical":
		return ModeLogical, true
	case "mutex":
		return ModeMutex, true
	default:
		return 0, false
	}
}

const (
	// DefaultShopTTL 商铺 TTL 缓存时长。
	DefaultShopTTL = 30 * time.Minute

	// DefaultLogicalTTL 商铺逻辑过期时长。
	DefaultLogicalTTL = 20 * time.Second
)

// Option Service 配置选项。
type Option func(*options)

type options struct {
	mode         Mode
	shopTTL      time.Duration
	logicalTTL   time.Duration
	logger       *slog.Logger
	pool         *xpool.Pool[func()]
	cacheOptions []xcache.Option
}

func defaultOptions() *options {
	return &options{
		mode:       ModePassThrough,
		shopTTL:    DefaultShopTTL,
		logicalTTL: DefaultLogicalTTL,
		logger:     slog.Default(),
	}
}

// WithMode 设置读取策略，默认 ModePassThrough。
func WithMode(m Mode) Option {
	return func(o *options) {
		o.mode = m
	}
}

// WithShopTTL 设置 TTL 模式下的缓存时长。
func WithShopTTL(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.shopTTL = d
		}
	}
}

// WithLogicalTTL 设置逻辑过期时长（重建与预热共用）。
func WithLogicalTTL(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.logicalTTL = d
		}
	}
}

// WithLogger 设置日志记录器，同时传给内部缓存客户端。
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithRebuildPool 使用外部重建 pool。未设置时 Service 自建并在 Close 时关闭。
func WithRebuildPool(p *xpool.Pool[func()]) Option {
	return func(o *options) {
		o.pool = p
	}
}

// WithCacheOptions 追加内部缓存客户端的选项（编解码、熔断、观测等）。
func WithCacheOptions(opts ...xcache.Option) Option {
	return func(o *options) {
		o.cacheOptions = append(o.cacheOptions, opts...)
	}
}
