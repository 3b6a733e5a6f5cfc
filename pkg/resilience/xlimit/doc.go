// Package xlimit 提供基于 Redis 的分布式限流（GCRA，go-redis/redis_rate）。
//
// 每个 Limiter 绑定一条规则，按调用方传入的 key（如用户 ID）独立计数：
//
//	limiter, err := xlimit.New(rdb, xlimit.Rule{Name: "order-per-user", Rate: 5, Burst: 5, Period: time.Second})
//	res, err := limiter.Allow(ctx, strconv.FormatInt(userID, 10))
//	if err != nil {
//	    return err // Redis 故障
//	}
//	if !res.Allowed {
//	    return res.Err() // 包装 ErrRateLimited
//	}
package xlimit
