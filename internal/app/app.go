package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/redis/go-redis/v9"

	"github.com/omeyang/xshop/pkg/business/xshop"
	"github.com/omeyang/xshop/pkg/business/xvoucher"
	"github.com/omeyang/xshop/pkg/distributed/xdlock"
	"github.com/omeyang/xshop/pkg/observability/xlog"
	"github.com/omeyang/xshop/pkg/observability/xmetrics"
	"github.com/omeyang/xshop/pkg/resilience/xbreaker"
	"github.com/omeyang/xshop/pkg/resilience/xlimit"
	"github.com/omeyang/xshop/pkg/storage/xcache"
	"github.com/omeyang/xshop/pkg/storage/xkv"
	"github.com/omeyang/xshop/pkg/storage/xpg"
	"github.com/omeyang/xshop/pkg/util/xid"
	"github.com/omeyang/xshop/pkg/util/xpool"
)

// App 装配完成的进程依赖。
type App struct {
	Config Config
	Logger xlog.Logger
	Redis  redis.UniversalClient
	Store  *xkv.RedisStore
	Locker xdlock.Factory
	IDs    *xid.Worker
	DB     *xpg.DB
	Shops  *xshop.Service
	Orders *xvoucher.Coordinator

	pool    *xpool.Pool[func()]
	limiter *xlimit.Limiter
	closers []func(context.Context) error
}

// Option App 装配选项，主要用于测试注入。
type Option func(*deps)

type deps struct {
	logger      xlog.Logger
	redis       redis.UniversalClient
	observer    xmetrics.Observer
	shopRepo    xshop.Repository
	voucherRepo xvoucher.Repository
}

// WithLogger 使用外部 Logger，不再按配置构建。
func WithLogger(logger xlog.Logger) Option {
	return func(d *deps) { d.logger = logger }
}

// WithRedis 使用外部 Redis 客户端，App 关闭时不关闭它。
func WithRedis(client redis.UniversalClient) Option {
	return func(d *deps) { d.redis = client }
}

// WithObserver 设置观测器，默认使用全局 OTel provider。
func WithObserver(observer xmetrics.Observer) Option {
	return func(d *deps) { d.observer = observer }
}

// WithRepositories 使用外部仓储，同时提供两者时不连接 Postgres。
func WithRepositories(shops xshop.Repository, vouchers xvoucher.Repository) Option {
	return func(d *deps) {
		d.shopRepo = shops
		d.voucherRepo = vouchers
	}
}

// NewLogger 按配置构建 Logger。
func NewLogger(cfg LogConfig) (xlog.Logger, func() error, error) {
	b := xlog.New().
		SetOutput(os.Stderr).
		SetLevelString(cfg.Level).
		SetFormat(cfg.Format).
		SetAttrs(slog.String("service", "xshop"))
	if cfg.File != "" {
		b = b.SetRotation(cfg.File,
			xlog.WithMaxSize(cfg.MaxSizeMB),
			xlog.WithMaxBackups(cfg.MaxBackups),
			xlog.WithMaxAge(cfg.MaxAgeDays),
			xlog.WithCompress(cfg.Compress))
	}
	return b.Build()
}

// NewRedisClient 按配置创建 Redis 客户端并检查连通性。
func NewRedisClient(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("app: ping redis %s: %w", cfg.Addr, err)
	}
	return client, nil
}

// New 按配置装配 App。失败时已创建的资源会被释放。
func New(ctx context.Context, cfg Config, opts ...Option) (_ *App, err error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	d := &deps{}
	for _, opt := range opts {
		opt(d)
	}

	a := &App{Config: cfg}
	defer func() {
		if err != nil {
			_ = a.Close(context.WithoutCancel(ctx))
		}
	}()

	if err := a.initLogger(d); err != nil {
		return nil, err
	}
	if err := a.initRedis(ctx, d); err != nil {
		return nil, err
	}
	if err := a.initPrimitives(); err != nil {
		return nil, err
	}

	observer := d.observer
	if observer == nil {
		if observer, err = xmetrics.NewOTelObserver(); err != nil {
			return nil, err
		}
	}

	shopRepo, voucherRepo := d.shopRepo, d.voucherRepo
	if shopRepo == nil || voucherRepo == nil {
		if err := a.initDatabase(ctx); err != nil {
			return nil, err
		}
		if shopRepo == nil {
			shopRepo = a.DB.ShopRepository()
		}
		if voucherRepo == nil {
			voucherRepo = a.DB.VoucherRepository()
		}
	}

	if err := a.initShops(shopRepo, observer); err != nil {
		return nil, err
	}
	if err := a.initOrders(voucherRepo, observer); err != nil {
		return nil, err
	}

	a.Logger.Info(ctx, "app: initialized",
		slog.String("cache_mode", cfg.Cache.Mode),
		slog.String("lock_backend", cfg.Lock.Backend),
		slog.Bool("rate_limit", a.limiter != nil))
	return a, nil
}

// RebuildStats 返回共享重建 pool 的快照。
func (a *App) RebuildStats() xpool.Stats {
	return a.pool.Stats()
}

// Close 按创建的逆序释放资源。
func (a *App) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i](ctx))
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *App) onClose(fn func(context.Context) error) {
	a.closers = append(a.closers, fn)
}

// =============================================================================
// 装配步骤
// =============================================================================

func (a *App) initLogger(d *deps) error {
	if d.logger != nil {
		a.Logger = d.logger
		return nil
	}
	logger, cleanup, err := NewLogger(a.Config.Log)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	a.Logger = logger
	a.onClose(func(context.Context) error { return cleanup() })
	return nil
}

func (a *App) initRedis(ctx context.Context, d *deps) error {
	if d.redis != nil {
		a.Redis = d.redis
	} else {
		client, err := NewRedisClient(ctx, a.Config.Redis)
		if err != nil {
			return err
		}
		a.Redis = client
		a.onClose(func(context.Context) error { return client.Close() })
	}

	store, err := xkv.NewRedis(a.Redis)
	if err != nil {
		return err
	}
	a.Store = store
	return nil
}

func (a *App) initPrimitives() error {
	locker, err := NewLocker(a.Config.Lock, a.Store, a.Redis)
	if err != nil {
		return err
	}
	a.Locker = locker
	a.onClose(func(context.Context) error { return locker.Close() })

	if a.IDs, err = xid.NewWorker(a.Store); err != nil {
		return err
	}
	return nil
}

// NewLocker 按配置选择锁后端。
func NewLocker(cfg LockConfig, store xkv.Store, client redis.UniversalClient) (xdlock.Factory, error) {
	switch cfg.Backend {
	case LockBackendRedsync:
		return xdlock.NewRedisFactory(client)
	case LockBackendStore, "":
		return xdlock.NewStoreFactory(store)
	default:
		return nil, fmt.Errorf("%w: lock backend %q", ErrInvalidConfig, cfg.Backend)
	}
}

func (a *App) initDatabase(ctx context.Context) error {
	pg := a.Config.Postgres
	db, err := xpg.Open(ctx, pg.DSN,
		xpg.WithMaxConns(pg.MaxConns),
		xpg.WithMinConns(pg.MinConns),
		xpg.WithConnectTimeout(pg.ConnectTimeout),
		xpg.WithSlowQuery(pg.SlowQuery, xpg.LogSlowQuery(a.Logger.Slog())))
	if err != nil {
		return err
	}
	a.DB = db
	a.onClose(func(context.Context) error {
		db.Close()
		return nil
	})
	return nil
}

func (a *App) initShops(repo xshop.Repository, observer xmetrics.Observer) error {
	cc := a.Config.Cache
	logger := a.Logger.Slog()

	pool, err := xcache.NewRebuildPool(cc.RebuildWorkers, cc.RebuildQueue, logger)
	if err != nil {
		return err
	}
	a.pool = pool
	a.onClose(pool.Shutdown)

	codec, _ := xcache.CodecByName(cc.Codec)
	breaker := xbreaker.New("shop-db",
		xbreaker.WithConsecutiveFailures(a.Config.Breaker.ConsecutiveFailures),
		xbreaker.WithTimeout(a.Config.Breaker.Timeout),
		xbreaker.WithIgnoredErrors(xcache.ErrNotFound),
		xbreaker.WithOnStateChange(func(name string, from, to xbreaker.State) {
			logger.Warn("breaker state changed",
				slog.String("breaker", name), slog.String("from", from.String()), slog.String("to", to.String()))
		}))

	shops, err := xshop.NewService(repo, a.Store, a.Locker,
		xshop.WithMode(cc.ShopMode()),
		xshop.WithShopTTL(cc.ShopTTL),
		xshop.WithLogicalTTL(cc.LogicalTTL),
		xshop.WithLogger(logger),
		xshop.WithRebuildPool(pool),
		xshop.WithCacheOptions(
			xcache.WithCodec(codec),
			xcache.WithObserver(observer),
			xcache.WithBreaker(breaker),
			xcache.WithTombstoneTTL(cc.TombstoneTTL),
			xcache.WithColdLoad(cc.ColdLoad),
			xcache.WithMutexRetry(cc.MutexAttempts, cc.MutexDelay),
			xcache.WithLockExpiry(a.Config.Lock.Expiry),
		))
	if err != nil {
		return err
	}
	a.Shops = shops
	a.onClose(shops.Close)
	return nil
}

func (a *App) initOrders(repo xvoucher.Repository, observer xmetrics.Observer) error {
	opts := []xvoucher.Option{
		xvoucher.WithLogger(a.Logger.Slog()),
		xvoucher.WithObserver(observer),
		xvoucher.WithLockExpiry(a.Config.Lock.Expiry),
	}
	if oc := a.Config.Order; oc.Rate > 0 {
		limiter, err := xlimit.New(a.Redis, xlimit.Rule{
			Name:   "order",
			Rate:   oc.Rate,
			Burst:  oc.Burst,
			Period: oc.Period,
		})
		if err != nil {
			return err
		}
		a.limiter = limiter
		a.onClose(func(context.Context) error { return limiter.Close() })
		opts = append(opts, xvoucher.WithLimiter(limiter))
	}

	orders, err := xvoucher.New(repo, a.Locker, a.IDs, opts...)
	if err != nil {
		return err
	}
	a.Orders = orders
	return nil
}
