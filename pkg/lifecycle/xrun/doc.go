// Package xrun 进程级服务编排：并发运行多个阻塞服务，任一失败或收到信号时统一取消。
//
// 基于 errgroup + context.WithCancelCause。信号退出时 [Run] 返回 *[SignalError]，
// 可用 errors.Is(err, ErrSignal) 判断：
//
//	err := xrun.Run(ctx, nil,
//		xrun.Ticker(time.Minute, true, warm),
//		watchConfig,
//	)
//	if errors.Is(err, xrun.ErrSignal) {
//		err = nil
//	}
package xrun
