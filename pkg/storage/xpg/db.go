package xpg

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Option 连接池配置选项。
type Option func(*pgxpool.Config)

// WithMaxConns 设置最大连接数。
func WithMaxConns(n int32) Option {
	return func(c *pgxpool.Config) {
		if n > 0 {
			c.MaxConns = n
		}
	}
}

// WithMinConns 设置最小空闲连接数。
func WithMinConns(n int32) Option {
	return func(c *pgxpool.Config) {
		if n >= 0 {
			c.MinConns = n
		}
	}
}

// WithMaxConnLifetime 设置连接最长存活时间。
func WithMaxConnLifetime(d time.Duration) Option {
	return func(c *pgxpool.Config) {
		if d > 0 {
			c.MaxConnLifetime = d
		}
	}
}

// WithConnectTimeout 设置建连超时。
func WithConnectTimeout(d time.Duration) Option {
	return func(c *pgxpool.Config) {
		if d > 0 {
			c.ConnConfig.ConnectTimeout = d
		}
	}
}

// DB PostgreSQL 连接池封装。
type DB struct {
	pool   *pgxpool.Pool
	closed atomic.Bool
}

// Open 解析 dsn、创建连接池并执行一次 Ping。
func Open(ctx context.Context, dsn string, opts ...Option) (*DB, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, ErrEmptyDSN
	}
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.MinConns > cfg.MaxConns {
		return nil, fmt.Errorf("%w: min conns %d > max conns %d", ErrInvalidConfig, cfg.MinConns, cfg.MaxConns)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("xpg: create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("xpg: ping: %w", err)
	}
	return &DB{pool: pool}, nil
}

// Pool 返回底层连接池。
func (db *DB) Pool() *pgxpool.Pool { return db.pool }

// Ping 检查连接可用性。
func (db *DB) Ping(ctx context.Context) error {
	if db.closed.Load() {
		return ErrClosed
	}
	return db.pool.Ping(ctx)
}

// Migrate 执行 Schema。
func (db *DB) Migrate(ctx context.Context) error {
	if db.closed.Load() {
		return ErrClosed
	}
	if _, err := db.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("xpg: migrate: %w", err)
	}
	return nil
}

// Close 关闭连接池，可重复调用。
func (db *DB) Close() {
	if db.closed.CompareAndSwap(false, true) {
		db.pool.Close()
	}
}

// VoucherRepository 返回秒杀券仓储。
func (db *DB) VoucherRepository() *VoucherRepository {
	return &VoucherRepository{pool: db.pool}
}

// ShopRepository 返回商铺仓储。
func (db *DB) ShopRepository() *ShopRepository {
	return &ShopRepository{pool: db.pool}
}
