package xpg

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/omeyang/xshop/pkg/business/xshop"
)

var _ xshop.Repository = (*ShopRepository)(nil)

const shopColumns = `id, name, type_id, images, area, address, x, y, avg_price, sold, comments, score, open_hours, create_time, update_time`

// ShopRepository 基于 PostgreSQL 的 xshop.Repository。
type ShopRepository struct {
	pool *pgxpool.Pool
}

// GetShop 读取商铺。
func (r *ShopRepository) GetShop(ctx context.Context, id int64) (xshop.Shop, error) {
	var s xshop.Shop
	err := r.pool.QueryRow(ctx, `SELECT `+shopColumns+` FROM tb_shop WHERE id = $1`, id).Scan(
		&s.ID, &s.Name, &s.TypeID, &s.Images, &s.Area, &s.Address, &s.X, &s.Y,
		&s.AvgPrice, &s.Sold, &s.Comments, &s.Score, &s.OpenHours, &s.CreateTime, &s.UpdateTime,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return s, fmt.Errorf("%w: id=%d", xshop.ErrShopNotFound, id)
	}
	if err != nil {
		return s, fmt.Errorf("xpg: get shop %d: %w", id, err)
	}
	return s, nil
}

// InsertShop 写入商铺，返回数据库分配的 ID。
func (r *ShopRepository) InsertShop(ctx context.Context, s xshop.Shop) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO tb_shop (name, type_id, images, area, address, x, y, avg_price, sold, comments, score, open_hours)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id`,
		s.Name, s.TypeID, s.Images, s.Area, s.Address, s.X, s.Y,
		s.AvgPrice, s.Sold, s.Comments, s.Score, s.OpenHours,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("xpg: insert shop: %w", err)
	}
	return id, nil
}

// UpdateShop 按 ID 更新商铺。
func (r *ShopRepository) UpdateShop(ctx context.Context, s xshop.Shop) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE tb_shop SET
		  name = $2, type_id = $3, images = $4, area = $5, address = $6, x = $7, y = $8,
		  avg_price = $9, sold = $10, comments = $11, score = $12, open_hours = $13,
		  update_time = now()
		WHERE id = $1`,
		s.ID, s.Name, s.TypeID, s.Images, s.Area, s.Address, s.X, s.Y,
		s.AvgPrice, s.Sold, s.Comments, s.Score, s.OpenHours)
	if err != nil {
		return fmt.Errorf("xpg: update shop %d: %w", s.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: id=%d", xshop.ErrShopNotFound, s.ID)
	}
	return nil
}

// ListShopTypes 按 sort 升序列出商铺类型。
func (r *ShopRepository) ListShopTypes(ctx context.Context) ([]xshop.ShopType, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, icon, sort FROM tb_shop_type ORDER BY sort ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("xpg: list shop types: %w", err)
	}
	types, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (xshop.ShopType, error) {
		var t xshop.ShopType
		err := row.Scan(&t.ID, &t.Name, &t.Icon, &t.Sort)
		return t, err
	})
	if err != nil {
		return nil, fmt.Errorf("xpg: list shop types: %w", err)
	}
	return types, nil
}

// InsertShopType 写入商铺类型，返回数据库分配的 ID。
func (r *ShopRepository) InsertShopType(ctx context.Context, t xshop.ShopType) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO tb_shop_type (name, icon, sort) VALUES ($1, $2, $3) RETURNING id`,
		t.Name, t.Icon, t.Sort,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("xpg: insert shop type: %w", err)
	}
	return id, nil
}
