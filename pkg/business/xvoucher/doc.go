// Package xvoucher 实现秒杀券下单准入协议。
//
// 一次 [Coordinator.Seckill] 依次经过：
//
//  1. 校验：券存在、已开始、未结束、库存 >= 1；
//  2. 限流（可选）：按用户的令牌桶，拒绝返回 [ErrRateLimited]；
//  3. 用户锁：单次尝试分布式锁 "order:<userID>"，锁忙返回 [ErrDuplicateRequest]，不等待；
//  4. 事务：一人一单检查、条件扣减库存（stock > 0）、生成订单 ID、写入订单，任一步失败回滚。
//
// 用户锁在任何路径上都会释放。所有业务拒绝都包装了 [ErrRejected]，
// 调用方可以用 errors.Is(err, ErrRejected) 区分"业务拒绝"与"系统故障"：
//
//	orderID, err := c.Seckill(ctx, voucherID)
//	switch {
//	case err == nil:
//	case errors.Is(err, xvoucher.ErrRejected):
//		// 提示用户
//	default:
//		// 记录并告警
//	}
//
// 用户 ID 通过 xctx.WithUserID 随 context 传递。
package xvoucher
