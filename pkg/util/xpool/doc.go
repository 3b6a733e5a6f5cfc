// Package xpool 提供有界的泛型 worker pool。
//
// Pool 在创建时启动固定数量的 worker，任务经有界队列分发：
//
//	pool, err := xpool.New(4, 64, func(key string) { rebuild(key) },
//	    xpool.WithName("cache-rebuild"))
//	if err != nil {
//	    return err
//	}
//	if err := pool.Submit("shop:1"); err != nil {
//	    // ErrQueueFull 或 ErrPoolStopped
//	}
//	defer pool.Shutdown(ctx)
//
// Submit 永不阻塞：队列满返回 ErrQueueFull，已关闭返回 ErrPoolStopped。
// handler 的 panic 会被恢复并记录日志，worker 继续运行。
//
// Close 等待队列中剩余任务全部执行完毕；Shutdown 在 ctx 到期时提前返回，
// 之后可通过 Done 等待 worker 实际退出。
package xpool
