package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/omeyang/xshop/pkg/business/xshop"
	"github.com/omeyang/xshop/pkg/config/xconf"
	"github.com/omeyang/xshop/pkg/lifecycle/xrun"
	"github.com/omeyang/xshop/pkg/observability/xlog"
	"github.com/omeyang/xshop/pkg/storage/xcache"
)

// ErrInvalidConfig 配置校验失败。
var ErrInvalidConfig = errors.New("app: invalid config")

// 锁后端名称。
const (
	LockBackendStore   = "store"
	LockBackendRedsync = "redsync"
)

// Config 进程配置。
type Config struct {
	Redis    RedisConfig    `koanf:"redis"`
	Postgres PostgresConfig `koanf:"postgres"`
	Cache    CacheConfig    `koanf:"cache"`
	Lock     LockConfig     `koanf:"lock"`
	Order    OrderConfig    `koanf:"order"`
	Breaker  BreakerConfig  `koanf:"breaker"`
	Warm     WarmConfig     `koanf:"warm"`
	Log      LogConfig      `koanf:"log"`
}

// RedisConfig Redis 连接配置。
type RedisConfig struct {
	Addr         string        `koanf:"addr"`
	Password     string        `koanf:"password"`
	DB           int           `koanf:"db"`
	PoolSize     int           `koanf:"pool_size"`
	DialTimeout  time.Duration `koanf:"dial_timeout"`
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
}

// PostgresConfig 数据库连接配置。
type PostgresConfig struct {
	DSN            string        `koanf:"dsn"`
	MaxConns       int32         `koanf:"max_conns"`
	MinConns       int32         `koanf:"min_conns"`
	ConnectTimeout time.Duration `koanf:"connect_timeout"`
	SlowQuery      time.Duration `koanf:"slow_query"`
}

// CacheConfig 商铺缓存配置。
type CacheConfig struct {
	Mode           string        `koanf:"mode"`
	Codec          string        `koanf:"codec"`
	ShopTTL        time.Duration `koanf:"shop_ttl"`
	LogicalTTL     time.Duration `koanf:"logical_ttl"`
	TombstoneTTL   time.Duration `koanf:"tombstone_ttl"`
	RebuildWorkers int           `koanf:"rebuild_workers"`
	RebuildQueue   int           `koanf:"rebuild_queue"`
	ColdLoad       bool          `koanf:"cold_load"`
	MutexAttempts  uint          `koanf:"mutex_attempts"`
	MutexDelay     time.Duration `koanf:"mutex_delay"`
}

// LockConfig 分布式锁配置。
type LockConfig struct {
	Backend string        `koanf:"backend"`
	Expiry  time.Duration `koanf:"expiry"`
}

// OrderConfig 下单配置。Rate 为 0 时不限流。
type OrderConfig struct {
	Rate   int           `koanf:"rate"`
	Burst  int           `koanf:"burst"`
	Period time.Duration `koanf:"period"`
}

// BreakerConfig 回源熔断配置。
type BreakerConfig struct {
	ConsecutiveFailures uint32        `koanf:"consecutive_failures"`
	Timeout             time.Duration `koanf:"timeout"`
}

// WarmConfig 预热配置。Schedule 非空时按 cron 表达式执行，否则按 Interval 周期执行。
type WarmConfig struct {
	ShopIDs  []int64       `koanf:"shop_ids"`
	Interval time.Duration `koanf:"interval"`
	Schedule string        `koanf:"schedule"`
}

// LogConfig 日志配置。File 为空时输出到 stderr。
type LogConfig struct {
	Level      string `koanf:"level"`
	Format     string `koanf:"format"`
	File       string `koanf:"file"`
	MaxSizeMB  int    `koanf:"max_size_mb"`
	MaxBackups int    `koanf:"max_backups"`
	MaxAgeDays int    `koanf:"max_age_days"`
	Compress   bool   `koanf:"compress"`
}

// Default 返回默认配置。
func Default() Config {
	return Config{
		Redis: RedisConfig{
			Addr:         "127.0.0.1:6379",
			PoolSize:     32,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Postgres: PostgresConfig{
			MaxConns:       16,
			MinConns:       2,
			ConnectTimeout: 5 * time.Second,
			SlowQuery:      200 * time.Millisecond,
		},
		Cache: CacheConfig{
			Mode:           xshop.ModePassThrough.String(),
			Codec:          "json",
			ShopTTL:        xshop.DefaultShopTTL,
			LogicalTTL:     xshop.DefaultLogicalTTL,
			TombstoneTTL:   xcache.DefaultTombstoneTTL,
			RebuildWorkers: xcache.DefaultRebuildWorkers,
			RebuildQueue:   xcache.DefaultRebuildQueue,
			MutexAttempts:  xcache.DefaultMutexAttempts,
			MutexDelay:     xcache.DefaultMutexDelay,
		},
		Lock: LockConfig{
			Backend: LockBackendStore,
			Expiry:  10 * time.Second,
		},
		Breaker: BreakerConfig{
			ConsecutiveFailures: 5,
			Timeout:             30 * time.Second,
		},
		Warm: WarmConfig{
			Interval: 10 * time.Second,
		},
		Log: LogConfig{
			Level:      "info",
			Format:     "json",
			MaxSizeMB:  100,
			MaxBackups: 7,
			MaxAgeDays: 30,
		},
	}
}

// Load 读取配置文件并与默认值合并。path 为空时返回默认配置。
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, cfg.Validate()
	}
	src, err := xconf.New(path)
	if err != nil {
		return Config{}, err
	}
	return Decode(src)
}

// Decode 从已加载的配置源解码，缺省字段取默认值。
func Decode(src xconf.Config) (Config, error) {
	cfg := Default()
	if err := src.Unmarshal("", &cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate 校验配置。
func (c Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(c.Redis.Addr != "", "redis.addr is required")
	check(c.Redis.PoolSize > 0, "redis.pool_size must be positive, got %d", c.Redis.PoolSize)
	check(c.Postgres.MaxConns > 0, "postgres.max_conns must be positive, got %d", c.Postgres.MaxConns)
	check(c.Postgres.MinConns >= 0 && c.Postgres.MinConns <= c.Postgres.MaxConns,
		"postgres.min_conns must be within [0, max_conns], got %d", c.Postgres.MinConns)

	_, ok := xshop.ParseMode(c.Cache.Mode)
	check(ok, "cache.mode %q is unknown", c.Cache.Mode)
	_, ok = xcache.CodecByName(c.Cache.Codec)
	check(ok, "cache.codec %q is unknown", c.Cache.Codec)
	check(c.Cache.ShopTTL > 0, "cache.shop_ttl must be positive")
	check(c.Cache.LogicalTTL > 0, "cache.logical_ttl must be positive")
	check(c.Cache.TombstoneTTL > 0, "cache.tombstone_ttl must be positive")
	check(c.Cache.RebuildWorkers > 0, "cache.rebuild_workers must be positive")
	check(c.Cache.RebuildQueue > 0, "cache.rebuild_queue must be positive")
	check(c.Cache.MutexAttempts > 0, "cache.mutex_attempts must be positive")
	check(c.Cache.MutexDelay > 0, "cache.mutex_delay must be positive")

	check(c.Lock.Backend == LockBackendStore || c.Lock.Backend == LockBackendRedsync,
		"lock.backend must be %q or %q, got %q", LockBackendStore, LockBackendRedsync, c.Lock.Backend)
	check(c.Lock.Expiry > 0, "lock.expiry must be positive")

	check(c.Order.Rate >= 0, "order.rate must be non-negative")
	if c.Order.Rate > 0 {
		check(c.Order.Burst > 0, "order.burst must be positive when order.rate is set")
		check(c.Order.Period > 0, "order.period must be positive when order.rate is set")
	}

	check(c.Breaker.Timeout > 0, "breaker.timeout must be positive")
	check(c.Warm.Interval > 0, "warm.interval must be positive")
	if c.Warm.Schedule != "" {
		_, err := xrun.ParseSchedule(c.Warm.Schedule)
		check(err == nil, "warm.schedule: %v", err)
	}
	for _, id := range c.Warm.ShopIDs {
		check(id > 0, "warm.shop_ids must be positive, got %d", id)
	}

	_, err := xlog.ParseLevel(c.Log.Level)
	check(err == nil, "log.level %q is unknown", c.Log.Level)
	format := strings.ToLower(c.Log.Format)
	check(format == "json" || format == "text", "log.format must be json or text, got %q", c.Log.Format)

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// ShopMode 返回解析后的缓存模式，Validate 通过后恒为有效值。
func (c CacheConfig) ShopMode() xshop.Mode {
	m, _ := xshop.ParseMode(c.Mode)
	return m
}
