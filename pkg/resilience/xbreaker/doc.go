// Package xbreaker 是 sony/gobreaker/v2 的熔断器包装。
//
// 熔断器打开时操作不会被执行，直接返回包装了 [ErrOpen] 的 [BreakerError]；
// BreakerError 实现 Retryable() == false，与 xretry 组合时不会被重试。
//
// 业务层面的"预期失败"（如记录不存在）不应计入熔断统计，
// 通过 [WithIgnoredErrors] 将其视为成功：
//
//	b := xbreaker.New("shop-db",
//	    xbreaker.WithConsecutiveFailures(5),
//	    xbreaker.WithIgnoredErrors(xcache.ErrNotFound))
//	shop, err := xbreaker.Execute(ctx, b, func() (Shop, error) { return repo.GetShop(ctx, id) })
package xbreaker
