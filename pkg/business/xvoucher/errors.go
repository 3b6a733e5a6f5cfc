package xvoucher

import (
	"errors"
	"fmt"
)

// ErrRejected 所有业务拒绝的根错误。
var ErrRejected = errors.New("xvoucher: rejected")

// 业务拒绝，均满足 errors.Is(err, ErrRejected)。
var (
	// ErrVoucherNotFound 秒杀券不存在。
	ErrVoucherNotFound = fmt.Errorf("%w: voucher not found", ErrRejected)

	// ErrNotStarted 秒杀尚未开始。
	ErrNotStarted = fmt.Errorf("%w: seckill not started", ErrRejected)

	// ErrEnded 秒杀已经结束。
	ErrEnded = fmt.Errorf("%w: seckill ended", ErrRejected)

	// ErrOutOfStock 库存不足。
	ErrOutOfStock = fmt.Errorf("%w: out of stock", ErrRejected)

	// ErrAlreadyPurchased 用户已购买过该券。
	ErrAlreadyPurchased = fmt.Errorf("%w: already purchased", ErrRejected)

	// ErrDuplicateRequest 同一用户已有下单请求在处理中。
	ErrDuplicateRequest = fmt.Errorf("%w: duplicate request", ErrRejected)

	// ErrRateLimited 用户请求过于频繁。
	ErrRateLimited = fmt.Errorf("%w: rate limited", ErrRejected)
)

var (
	// ErrNilRepository Repository 为 nil。
	ErrNilRepository = errors.New("xvoucher: nil repository")

	// ErrNilLocker 锁工厂为 nil。
	ErrNilLocker = errors.New("xvoucher: nil locker")

	// ErrNilIDGenerator ID 生成器为 nil。
	ErrNilIDGenerator = errors.New("xvoucher: nil id generator")

	// ErrNilContext context 为 nil。
	ErrNilContext = errors.New("xvoucher: nil context")

	// ErrInvalidVoucherID 券 ID 无效（<= 0）。
	ErrInvalidVoucherID = errors.New("xvoucher: invalid voucher id")
)
