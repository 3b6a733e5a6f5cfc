package xvoucher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/omeyang/xshop/pkg/context/xctx"
	"github.com/omeyang/xshop/pkg/distributed/xdlock"
	"github.com/omeyang/xshop/pkg/observability/xlog"
	"github.com/omeyang/xshop/pkg/observability/xmetrics"
)

// 观测结果取值（span 属性 "result"）。
const (
	ResultOrdered  = "ordered"
	ResultRejected = "rejected"
	ResultFailed   = "failed"
)

const componentName = "xvoucher"

// Coordinator 秒杀下单协调器，并发安全。
type Coordinator struct {
	repo   Repository
	locker xdlock.Factory
	ids    IDGenerator
	opts   *options
}

// New 创建 Coordinator。
func New(repo Repository, locker xdlock.Factory, ids IDGenerator, opts ...Option) (*Coordinator, error) {
	if repo == nil {
		return nil, ErrNilRepository
	}
	if locker == nil {
		return nil, ErrNilLocker
	}
	if ids == nil {
		return nil, ErrNilIDGenerator
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return &Coordinator{repo: repo, locker: locker, ids: ids, opts: o}, nil
}

// Seckill 为 ctx 中的用户抢购 voucherID，成功返回订单 ID。
//
// 业务拒绝返回包装了 ErrRejected 的错误；存储或锁服务故障原样包装返回。
func (c *Coordinator) Seckill(ctx context.Context, voucherID int64) (orderID int64, err error) {
	if ctx == nil {
		return 0, ErrNilContext
	}
	if voucherID <= 0 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidVoucherID, voucherID)
	}
	userID, err := xctx.RequireUserID(ctx)
	if err != nil {
		return 0, err
	}

	ctx, span := xmetrics.Start(ctx, c.opts.observer, xmetrics.SpanOptions{
		Component: componentName,
		Operation: "seckill",
		Kind:      xmetrics.KindInternal,
		Attrs: []xmetrics.Attr{
			xmetrics.Int64("voucher_id", voucherID),
			xmetrics.Int64("user_id", userID),
		},
	})
	defer func() { c.finish(ctx, span, voucherID, orderID, err) }()

	if err := c.validate(ctx, voucherID); err != nil {
		return 0, err
	}
	if err := c.admit(ctx, userID); err != nil {
		return 0, err
	}

	handle, err := c.locker.TryLock(ctx, "order:"+strconv.FormatInt(userID, 10), xdlock.WithExpiry(c.opts.lockExpiry))
	if err != nil {
		return 0, fmt.Errorf("xvoucher: acquire order lock: %w", err)
	}
	if handle == nil {
		return 0, ErrDuplicateRequest
	}
	defer c.unlock(ctx, handle)

	return c.createOrder(ctx, userID, voucherID)
}

// validate 检查券状态与时间窗口。此处的库存检查只是快速失败，
// 真正的防超卖由事务内的条件扣减保证。
func (c *Coordinator) validate(ctx context.Context, voucherID int64) error {
	v, err := c.repo.GetSeckillVoucher(ctx, voucherID)
	if errors.Is(err, ErrVoucherNotFound) {
		return err
	}
	if err != nil {
		return fmt.Errorf("xvoucher: load voucher %d: %w", voucherID, err)
	}

	now := c.opts.now()
	switch {
	case now.Before(v.BeginTime):
		return ErrNotStarted
	case now.After(v.EndTime):
		return ErrEnded
	case v.Stock < 1:
		return ErrOutOfStock
	}
	return nil
}

func (c *Coordinator) admit(ctx context.Context, userID int64) error {
	if c.opts.limiter == nil {
		return nil
	}
	res, err := c.opts.limiter.Allow(ctx, "order:"+strconv.FormatInt(userID, 10))
	if err != nil {
		return fmt.Errorf("xvoucher: rate limit: %w", err)
	}
	if !res.Allowed {
		return fmt.Errorf("%w: %w", ErrRateLimited, res.Err())
	}
	return nil
}

// createOrder 事务内完成一人一单检查、扣减库存与写入订单。
func (c *Coordinator) createOrder(ctx context.Context, userID, voucherID int64) (int64, error) {
	var orderID int64
	err := c.repo.InTx(ctx, func(tx OrderTx) error {
		count, err := tx.CountOrders(ctx, userID, voucherID)
		if err != nil {
			return fmt.Errorf("xvoucher: count orders: %w", err)
		}
		if count > 0 {
			return ErrAlreadyPurchased
		}

		affected, err := tx.DecrementStock(ctx, voucherID)
		if err != nil {
			return fmt.Errorf("xvoucher: decrement stock: %w", err)
		}
		if affected == 0 {
			return ErrOutOfStock
		}

		id, err := c.ids.NextID(ctx, OrderNamespace)
		if err != nil {
			return fmt.Errorf("xvoucher: generate order id: %w", err)
		}
		order := VoucherOrder{
			ID:         id,
			UserID:     userID,
			VoucherID:  voucherID,
			CreateTime: c.opts.now(),
		}
		if err := tx.InsertOrder(ctx, order); err != nil {
			return fmt.Errorf("xvoucher: insert order: %w", err)
		}
		orderID = id
		return nil
	})
	if err != nil {
		return 0, err
	}
	return orderID, nil
}

func (c *Coordinator) unlock(ctx context.Context, handle xdlock.LockHandle) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := handle.Unlock(ctx); err != nil {
		c.opts.logger.LogAttrs(ctx, slog.LevelWarn, "xvoucher: release order lock failed",
			xlog.Key(handle.Key()), xlog.Err(err))
	}
}

func (c *Coordinator) finish(ctx context.Context, span xmetrics.Span, voucherID, orderID int64, err error) {
	result := ResultOrdered
	spanErr := err
	switch {
	case err == nil:
		c.opts.logger.LogAttrs(ctx, slog.LevelInfo, "xvoucher: order created",
			slog.Int64("voucher_id", voucherID), slog.Int64("order_id", orderID))
	case errors.Is(err, ErrRejected):
		result = ResultRejected
		spanErr = nil
		c.opts.logger.LogAttrs(ctx, slog.LevelDebug, "xvoucher: order rejected",
			slog.Int64("voucher_id", voucherID), xlog.Err(err))
	default:
		result = ResultFailed
		c.opts.logger.LogAttrs(ctx, slog.LevelError, "xvoucher: order failed",
			slog.Int64("voucher_id", voucherID), xlog.Err(err))
	}
	span.End(xmetrics.Result{
		Err:   spanErr,
		Attrs: []xmetrics.Attr{xmetrics.String("result", result)},
	})
}
