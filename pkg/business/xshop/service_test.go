package xshop

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omeyang/xshop/pkg/distributed/xdlock"
	"github.com/omeyang/xshop/pkg/storage/xcache"
	"github.com/omeyang/xshop/pkg/storage/xkv"
)

// =============================================================================
// 测试辅助函数
// =============================================================================

var errDB = errors.New("db unavailable")

type memRepo struct {
	mu        sync.Mutex
	shops     map[int64]Shop
	types     []ShopType
	getErr    error
	updateErr error
	getCalls  atomic.Int32
	typeCalls atomic.Int32
}

func newMemRepo(shops ...Shop) *memRepo {
	r := &memRepo{shops: make(map[int64]Shop)}
	for _, s := range shops {
		r.shops[s.ID] = s
	}
	return r
}

func (r *memRepo) GetShop(_ context.Context, id int64) (Shop, error) {
	r.getCalls.Add(1)
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return Shop{}, r.getErr
	}
	s, ok := r.shops[id]
	if !ok {
		return Shop{}, fmt.Errorf("%w: id=%d", ErrShopNotFound, id)
	}
	return s, nil
}

func (r *memRepo) UpdateShop(_ context.Context, shop Shop) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return r.updateErr
	}
	if _, ok := r.shops[shop.ID]; !ok {
		return fmt.Errorf("%w: id=%d", ErrShopNotFound, shop.ID)
	}
	r.shops[shop.ID] = shop
	return nil
}

func (r *memRepo) ListShopTypes(context.Context) ([]ShopType, error) {
	r.typeCalls.Add(1)
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]ShopType(nil), r.types...), nil
}

func (r *memRepo) setGetErr(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.getErr = err
}

func newTestService(t *testing.T, repo Repository, opts ...Option) (*Service, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), PoolSize: 16})
	store, err := xkv.NewRedis(rdb)
	require.NoError(t, err)
	locker, err := xdlock.NewStoreFactory(store)
	require.NoError(t, err)

	s, err := NewService(repo, store, locker, opts...)
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.Close(ctx)
		_ = rdb.Close()
		mr.Close()
	})
	return s, mr
}

func sampleShop(id int64) Shop {
	return Shop{ID: id, Name: fmt.Sprintf("shop-%d", id), TypeID: 1, Area: "大关", AvgPrice: 80}
}

// =============================================================================
// QueryByID 测试
// =============================================================================

func TestQueryByID_PassThrough(t *testing.T) {
	// Given
	repo := newMemRepo(sampleShop(1))
	s, mr := newTestService(t, repo)
	ctx := context.Background()

	// When
	first, err1 := s.QueryByID(ctx, 1)
	second, err2 := s.QueryByID(ctx, 1)

	// Then
	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), repo.getCalls.Load())
	assert.Equal(t, DefaultShopTTL, mr.TTL("cache:shop:1"))
}

func TestQueryByID_NotFoundIsTombstoned(t *testing.T) {
	repo := newMemRepo()
	s, _ := newTestService(t, repo)
	ctx := context.Background()

	_, err1 := s.QueryByID(ctx, 404)
	_, err2 := s.QueryByID(ctx, 404)

	assert.ErrorIs(t, err1, ErrShopNotFound)
	assert.ErrorIs(t, err2, ErrShopNotFound)
	assert.ErrorIs(t, err2, xcache.ErrNotFound)
	assert.Equal(t, int32(1), repo.getCalls.Load())
}

func TestQueryByID_InvalidID(t *testing.T) {
	s, _ := newTestService(t, newMemRepo())

	_, err := s.QueryByID(context.Background(), 0)
	assert.ErrorIs(t, err, ErrInvalidID)
}

func TestQueryByID_Mutex(t *testing.T) {
	repo := newMemRepo(sampleShop(2))
	s, _ := newTestService(t, repo, WithMode(ModeMutex))
	ctx := context.Background()

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := s.QueryByID(ctx, 2)
			assert.NoError(t, err)
			assert.Equal(t, "shop-2", got.Name)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), repo.getCalls.Load())
}

func TestQueryByID_Logical(t *testing.T) {
	// Given: 可调时钟
	var nowNanos atomic.Int64
	nowNanos.Store(time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC).UnixNano())
	clock := func() time.Time { return time.Unix(0, nowNanos.Load()) }

	repo := newMemRepo(sampleShop(3))
	s, mr := newTestService(t, repo,
		WithMode(ModeLogical),
		WithLogicalTTL(20*time.Second),
		WithCacheOptions(xcache.WithClock(clock)))
	ctx := context.Background()

	// 未预热
	_, err := s.QueryByID(ctx, 3)
	assert.ErrorIs(t, err, ErrShopNotFound)
	assert.Equal(t, int32(0), repo.getCalls.Load())

	// When: 预热后读取
	require.NoError(t, s.Warm(ctx, []int64{3}, 0))
	got, err := s.QueryByID(ctx, 3)

	// Then
	require.NoError(t, err)
	assert.Equal(t, "shop-3", got.Name)
	assert.Equal(t, time.Duration(0), mr.TTL("cache:shop:3"))

	// When: 过期后更新数据库，读取返回旧值并异步重建
	repo.mu.Lock()
	updated := sampleShop(3)
	updated.Name = "renamed"
	repo.shops[3] = updated
	repo.mu.Unlock()
	nowNanos.Add(int64(time.Minute))

	got, err = s.QueryByID(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, "shop-3", got.Name)

	require.Eventually(t, func() bool {
		got, err := s.QueryByID(ctx, 3)
		return err == nil && got.Name == "renamed"
	}, 2*time.Second, 10*time.Millisecond)
}

// =============================================================================
// Update 测试
// =============================================================================

func TestUpdate_InvalidatesCache(t *testing.T) {
	// Given: 商铺已缓存
	repo := newMemRepo(sampleShop(5))
	s, mr := newTestService(t, repo)
	ctx := context.Background()
	_, err := s.QueryByID(ctx, 5)
	require.NoError(t, err)
	require.True(t, mr.Exists("cache:shop:5"))

	// When
	updated := sampleShop(5)
	updated.Name = "new-name"
	require.NoError(t, s.Update(ctx, updated))

	// Then
	assert.False(t, mr.Exists("cache:shop:5"))
	got, err := s.QueryByID(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, "new-name", got.Name)
}

func TestUpdate_Errors(t *testing.T) {
	repo := newMemRepo(sampleShop(6))
	s, mr := newTestService(t, repo)
	ctx := context.Background()

	assert.ErrorIs(t, s.Update(ctx, Shop{}), ErrInvalidID)
	assert.ErrorIs(t, s.Update(ctx, sampleShop(7)), ErrShopNotFound)

	// 数据库失败时保留缓存
	_, err := s.QueryByID(ctx, 6)
	require.NoError(t, err)
	repo.mu.Lock()
	repo.updateErr = errDB
	repo.mu.Unlock()
	assert.ErrorIs(t, s.Update(ctx, sampleShop(6)), errDB)
	assert.True(t, mr.Exists("cache:shop:6"))
}

// =============================================================================
// ListTypes 测试
// =============================================================================

func TestListTypes_CachedWithoutTTL(t *testing.T) {
	repo := newMemRepo()
	repo.types = []ShopType{{ID: 1, Name: "美食", Icon: "/types/ms.png", Sort: 1}, {ID: 2, Name: "KTV", Sort: 2}}
	s, mr := newTestService(t, repo, WithCacheOptions(xcache.WithCodec(xcache.MsgpackCodec{})))
	ctx := context.Background()

	first, err := s.ListTypes(ctx)
	require.NoError(t, err)
	second, err := s.ListTypes(ctx)
	require.NoError(t, err)

	assert.Equal(t, repo.types, first)
	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), repo.typeCalls.Load())
	assert.Equal(t, time.Duration(0), mr.TTL("cache:shop-type"))

	raw, err := mr.Get("cache:shop-type")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":1,"name":"美食","icon":"/types/ms.png","sort":1},{"id":2,"name":"KTV","icon":"","sort":2}]`, raw)
}

func TestListTypes_Empty(t *testing.T) {
	repo := newMemRepo()
	s, _ := newTestService(t, repo)

	_, err := s.ListTypes(context.Background())
	assert.ErrorIs(t, err, ErrShopTypesNotFound)
	_, err = s.ListTypes(context.Background())
	assert.ErrorIs(t, err, ErrShopTypesNotFound)
	assert.Equal(t, int32(1), repo.typeCalls.Load())
}

// =============================================================================
// Warm 测试
// =============================================================================

func TestWarm(t *testing.T) {
	// Given: 8 已从数据库删除但缓存中还有旧条目
	repo := newMemRepo(sampleShop(1), sampleShop(2))
	s, mr := newTestService(t, repo, WithMode(ModeLogical))
	ctx := context.Background()
	require.NoError(t, mr.Set("cache:shop:8", `{"data":{"id":8},"expireTime":"2026-01-01T00:00:00Z"}`))

	// When
	err := s.Warm(ctx, []int64{1, 2, 8}, time.Hour)

	// Then
	require.NoError(t, err)
	assert.True(t, mr.Exists("cache:shop:1"))
	assert.True(t, mr.Exists("cache:shop:2"))
	assert.False(t, mr.Exists("cache:shop:8"))
}

func TestWarm_AggregatesErrors(t *testing.T) {
	repo := newMemRepo(sampleShop(1))
	repo.setGetErr(errDB)
	s, _ := newTestService(t, repo)

	err := s.Warm(context.Background(), []int64{1, 2}, time.Hour)

	assert.ErrorIs(t, err, errDB)
	assert.Equal(t, int32(2), repo.getCalls.Load())
}

func TestWarm_CanceledContext(t *testing.T) {
	repo := newMemRepo(sampleShop(1))
	s, _ := newTestService(t, repo)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.Warm(ctx, []int64{1}, time.Hour)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int32(0), repo.getCalls.Load())
}

// =============================================================================
// 其他
// =============================================================================

func TestParseMode(t *testing.T) {
	for _, m := range []Mode{ModePassThrough, ModeLogical, ModeMutex} {
		got, ok := ParseMode(m.String())
		assert.True(t, ok)
		assert.Equal(t, m, got)
	}
	_, ok := ParseMode("bogus")
	assert.False(t, ok)
	assert.Equal(t, "unknown", Mode(42).String())
}

func TestNewService_NilRepository(t *testing.T) {
	_, err := NewService(nil, nil, nil)
	assert.ErrorIs(t, err, ErrNilRepository)
}
