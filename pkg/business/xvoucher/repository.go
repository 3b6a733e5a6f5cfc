package xvoucher

import (
	"context"
	"time"
)

//go:generate mockgen -source=repository.go -destination=mock_repository_test.go -package=xvoucher

// SeckillVoucher 秒杀券库存与时间窗口。
type SeckillVoucher struct {
	VoucherID int64
	Stock     int
	BeginTime time.Time
	EndTime   time.Time
}

// VoucherOrder 秒杀订单。每个 (UserID, VoucherID) 至多一条。
type VoucherOrder struct {
	ID         int64
	UserID     int64
	VoucherID  int64
	CreateTime time.Time
}

// Repository 秒杀券数据访问。
type Repository interface {
	// GetSeckillVoucher 读取秒杀券，不存在时返回包装了 ErrVoucherNotFound 的错误。
	GetSeckillVoucher(ctx context.Context, voucherID int64) (SeckillVoucher, error)

	// InTx 在单个事务中执行 fn。fn 返回 nil 时提交，否则回滚并返回该错误。
	InTx(ctx context.Context, fn func(tx OrderTx) error) error
}

// OrderTx 事务内的订单操作。
type OrderTx interface {
	// CountOrders 统计用户对该券的订单数。
	CountOrders(ctx context.Context, userID, voucherID int64) (int64, error)

	// DecrementStock 条件扣减库存（stock > 0），返回受影响行数。
	DecrementStock(ctx context.Context, voucherID int64) (int64, error)

	// InsertOrder 写入订单。
	InsertOrder(ctx context.Context, order VoucherOrder) error
}

// IDGenerator 订单 ID 生成器，xid.Worker 满足此接口。
type IDGenerator interface {
	NextID(ctx context.Context, namespace string) (int64, error)
}
