package xshop

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/omeyang/xshop/pkg/storage/xcache"
)

// 缓存 key。
const (
	// ShopKeyPrefix 商铺缓存 key 前缀，完整 key 为 "cache:shop:<id>"。
	ShopKeyPrefix = "cache:shop:"

	// ShopTypeKey 商铺类型列表缓存 key。
	ShopTypeKey = "cache:shop-type"
)

var (
	// ErrShopNotFound 商铺不存在，满足 errors.Is(err, xcache.ErrNotFound)。
	ErrShopNotFound = fmt.Errorf("xshop: shop not found: %w", xcache.ErrNotFound)

	// ErrShopTypesNotFound 商铺类型列表为空。
	ErrShopTypesNotFound = fmt.Errorf("xshop: shop types not found: %w", xcache.ErrNotFound)

	// ErrInvalidID 商铺 ID 无效。
	ErrInvalidID = errors.New("xshop: invalid shop id")

	// ErrNilRepository Repository 为 nil。
	ErrNilRepository = errors.New("xshop: nil repository")
)

// Shop 商铺。
type Shop struct {
	ID         int64     `json:"id" msgpack:"id"`
	Name       string    `json:"name" msgpack:"name"`
	TypeID     int64     `json:"typeId" msgpack:"typeId"`
	Images     string    `json:"images" msgpack:"images"`
	Area       string    `json:"area" msgpack:"area"`
	Address    string    `json:"address" msgpack:"address"`
	X          float64   `json:"x" msgpack:"x"`
	Y          float64   `json:"y" msgpack:"y"`
	AvgPrice   int64     `json:"avgPrice" msgpack:"avgPrice"`
	Sold       int       `json:"sold" msgpack:"sold"`
	Comments   int       `json:"comments" msgpack:"comments"`
	Score      int       `json:"score" msgpack:"score"`
	OpenHours  string    `json:"openHours" msgpack:"openHours"`
	CreateTime time.Time `json:"createTime" msgpack:"createTime"`
	UpdateTime time.Time `json:"updateTime" msgpack:"updateTime"`
}

// ShopType 商铺类型。
type ShopType struct {
	ID   int64  `json:"id" msgpack:"id"`
	Name string `json:"name" msgpack:"name"`
	Icon string `json:"icon" msgpack:"icon"`
	Sort int    `json:"sort" msgpack:"sort"`
}

// Repository 商铺数据访问。
type Repository interface {
	// GetShop 读取商铺，不存在时返回包装了 ErrShopNotFound 的错误。
	GetShop(ctx context.Context, id int64) (Shop, error)

	// UpdateShop 更新商铺，不存在时返回包装了 ErrShopNotFound 的错误。
	UpdateShop(ctx context.Context, shop Shop) error

	// ListShopTypes 按 sort 升序列出全部商铺类型。
	ListShopTypes(ctx context.Context) ([]ShopType, error)
}
