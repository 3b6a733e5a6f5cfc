package xshop

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/omeyang/xshop/pkg/distributed/xdlock"
	"github.com/omeyang/xshop/pkg/observability/xlog"
	"github.com/omeyang/xshop/pkg/storage/xcache"
	"github.com/omeyang/xshop/pkg/storage/xkv"
	"github.com/omeyang/xshop/pkg/util/xpool"
)

// Service 商铺查询服务，并发安全。
type Service struct {
	repo    Repository
	shops   *xcache.Client[int64, Shop]
	types   *xcache.Client[string, []ShopType]
	pool    *xpool.Pool[func()]
	ownPool bool
	opts    *options
}

// NewService 创建 Service。
func NewService(repo Repository, store xkv.Store, locker xdlock.Factory, opts ...Option) (*Service, error) {
	if repo == nil {
		return nil, ErrNilRepository
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	s := &Service{repo: repo, opts: o, pool: o.pool}
	if s.pool == nil {
		p, err := xcache.NewRebuildPool(xcache.DefaultRebuildWorkers, xcache.DefaultRebuildQueue, o.logger)
		if err != nil {
			return nil, err
		}
		s.pool, s.ownPool = p, true
	}

	cacheOpts := append([]xcache.Option{
		xcache.WithLogger(o.logger),
		xcache.WithRebuildPool(s.pool),
	}, o.cacheOptions...)

	var err error
	if s.shops, err = xcache.New[int64, Shop](store, locker, cacheOpts...); err != nil {
		s.closePool()
		return nil, err
	}
	// 类型列表始终使用 JSON，与历史缓存格式一致
	typeOpts := append(append([]xcache.Option(nil), cacheOpts...), xcache.WithCodec(xcache.JSONCodec{}))
	if s.types, err = xcache.New[string, []ShopType](store, locker, typeOpts...); err != nil {
		s.closePool()
		return nil, err
	}
	return s, nil
}

// Mode 返回当前读取策略。
func (s *Service) Mode() Mode { return s.opts.mode }

// QueryByID 按当前策略读取商铺。不存在时返回 ErrShopNotFound。
func (s *Service) QueryByID(ctx context.Context, id int64) (Shop, error) {
	if id <= 0 {
		return Shop{}, fmt.Errorf("%w: %d", ErrInvalidID, id)
	}

	var (
		shop Shop
		err  error
	)
	switch s.opts.mode {
	case ModeLogical:
		shop, err = s.shops.GetWithLogicalExpiry(ctx, ShopKeyPrefix, id, s.loadShop, s.opts.logicalTTL)
	case ModeMutex:
		shop, err = s.shops.GetWithMutex(ctx, ShopKeyPrefix, id, s.loadShop, s.opts.shopTTL)
	default:
		shop, err = s.shops.Get(ctx, ShopKeyPrefix, id, s.loadShop, s.opts.shopTTL)
	}
	if errors.Is(err, xcache.ErrNotFound) && !errors.Is(err, ErrShopNotFound) {
		return Shop{}, fmt.Errorf("%w: id=%d", ErrShopNotFound, id)
	}
	return shop, err
}

// Update 更新商铺并删除其缓存。
func (s *Service) Update(ctx context.Context, shop Shop) error {
	if shop.ID <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidID, shop.ID)
	}
	if err := s.repo.UpdateShop(ctx, shop); err != nil {
		return err
	}
	if err := s.shops.Delete(ctx, ShopKey(shop.ID)); err != nil {
		return fmt.Errorf("xshop: invalidate shop %d: %w", shop.ID, err)
	}
	return nil
}

// ListTypes 读取商铺类型列表，缓存不过期。
func (s *Service) ListTypes(ctx context.Context) ([]ShopType, error) {
	types, err := s.types.Get(ctx, ShopTypeKey, "", s.loadTypes, 0)
	if errors.Is(err, xcache.ErrNotFound) && !errors.Is(err, ErrShopTypesNotFound) {
		return nil, ErrShopTypesNotFound
	}
	return types, err
}

// Warm 为 ids 写入逻辑过期条目。logicalTTL <= 0 时使用 WithLogicalTTL 的值。
//
// 数据库中已不存在的商铺会删除其缓存条目；其他失败汇总返回，不影响其余 id。
func (s *Service) Warm(ctx context.Context, ids []int64, logicalTTL time.Duration) error {
	if logicalTTL <= 0 {
		logicalTTL = s.opts.logicalTTL
	}
	var errs []error
	warmed := 0
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		shop, err := s.repo.GetShop(ctx, id)
		if errors.Is(err, ErrShopNotFound) {
			if derr := s.shops.Delete(ctx, ShopKey(id)); derr != nil {
				errs = append(errs, derr)
			}
			s.opts.logger.LogAttrs(ctx, slog.LevelWarn, "xshop: warm skipped missing shop",
				slog.Int64("shop_id", id))
			continue
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("xshop: warm shop %d: %w", id, err))
			continue
		}
		if err := s.shops.SetWithLogicalExpiry(ctx, ShopKey(id), shop, logicalTTL); err != nil {
			errs = append(errs, fmt.Errorf("xshop: warm shop %d: %w", id, err))
			continue
		}
		warmed++
	}

	s.opts.logger.LogAttrs(ctx, slog.LevelInfo, "xshop: warm finished",
		slog.Int("requested", len(ids)), slog.Int("warmed", warmed), xlog.Err(errors.Join(errs...)))
	return errors.Join(errs...)
}

// Close 关闭缓存客户端；自建的重建 pool 会等待在途重建完成。
func (s *Service) Close(ctx context.Context) error {
	err := errors.Join(s.shops.Close(ctx), s.types.Close(ctx))
	if s.ownPool {
		err = errors.Join(err, s.pool.Shutdown(ctx))
	}
	return err
}

// ShopKey 返回商铺缓存 key。
func ShopKey(id int64) string {
	return ShopKeyPrefix + strconv.FormatInt(id, 10)
}

func (s *Service) loadShop(ctx context.Context, id int64) (Shop, error) {
	return s.repo.GetShop(ctx, id)
}

func (s *Service) loadTypes(ctx context.Context, _ string) ([]ShopType, error) {
	types, err := s.repo.ListShopTypes(ctx)
	if err != nil {
		return nil, err
	}
	if len(types) == 0 {
		return nil, ErrShopTypesNotFound
	}
	return types, nil
}

func (s *Service) closePool() {
	if s.ownPool {
		_ = s.pool.Close()
	}
}
