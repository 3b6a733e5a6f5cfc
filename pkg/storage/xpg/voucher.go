package xpg

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/omeyang/xshop/pkg/business/xvoucher"
)

var (
	_ xvoucher.Repository = (*VoucherRepository)(nil)
	_ xvoucher.OrderTx    = (*orderTx)(nil)
)

// VoucherRepository 基于 PostgreSQL 的 xvoucher.Repository。
type VoucherRepository struct {
	pool *pgxpool.Pool
}

// GetSeckillVoucher 读取秒杀券。
func (r *VoucherRepository) GetSeckillVoucher(ctx context.Context, voucherID int64) (xvoucher.SeckillVoucher, error) {
	var v xvoucher.SeckillVoucher
	err := r.pool.QueryRow(ctx,
		`SELECT voucher_id, stock, begin_time, end_time FROM tb_seckill_voucher WHERE voucher_id = $1`,
		voucherID,
	).Scan(&v.VoucherID, &v.Stock, &v.BeginTime, &v.EndTime)
	if errors.Is(err, pgx.ErrNoRows) {
		return v, fmt.Errorf("%w: id=%d", xvoucher.ErrVoucherNotFound, voucherID)
	}
	if err != nil {
		return v, fmt.Errorf("xpg: get seckill voucher %d: %w", voucherID, err)
	}
	return v, nil
}

// SaveSeckillVoucher 写入或覆盖秒杀券。
func (r *VoucherRepository) SaveSeckillVoucher(ctx context.Context, v xvoucher.SeckillVoucher) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO tb_seckill_voucher (voucher_id, stock, begin_time, end_time)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (voucher_id) DO UPDATE SET
		  stock = EXCLUDED.stock,
		  begin_time = EXCLUDED.begin_time,
		  end_time = EXCLUDED.end_time,
		  update_time = now()`,
		v.VoucherID, v.Stock, v.BeginTime, v.EndTime)
	if err != nil {
		return fmt.Errorf("xpg: save seckill voucher %d: %w", v.VoucherID, err)
	}
	return nil
}

// InTx 在事务中执行 fn，fn 返回错误时回滚。
func (r *VoucherRepository) InTx(ctx context.Context, fn func(tx xvoucher.OrderTx) error) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(&orderTx{tx: tx})
	})
}

type orderTx struct {
	tx pgx.Tx
}

func (t *orderTx) CountOrders(ctx context.Context, userID, voucherID int64) (int64, error) {
	var n int64
	err := t.tx.QueryRow(ctx,
		`SELECT count(*) FROM tb_voucher_order WHERE user_id = $1 AND voucher_id = $2`,
		userID, voucherID,
	).Scan(&n)
	return n, err
}

func (t *orderTx) DecrementStock(ctx context.Context, voucherID int64) (int64, error) {
	tag, err := t.tx.Exec(ctx,
		`UPDATE tb_seckill_voucher SET stock = stock - 1, update_time = now() WHERE voucher_id = $1 AND stock > 0`,
		voucherID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (t *orderTx) InsertOrder(ctx context.Context, o xvoucher.VoucherOrder) error {
	_, err := t.tx.Exec(ctx,
		`INSERT INTO tb_voucher_order (id, user_id, voucher_id, create_time) VALUES ($1, $2, $3, $4)`,
		o.ID, o.UserID, o.VoucherID, o.CreateTime)
	return err
}
