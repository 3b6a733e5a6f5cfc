// Package xid 提供两类唯一 ID 生成器。
//
// # Worker：集群全局递增 ID
//
// Worker 基于 Store 的原子自增，为业务命名空间（如 "order"）生成 63 位 ID：
//
//	 1 bit  - 符号位（恒为 0）
//	31 bits - 自定义纪元（2023-01-01T00:00:00Z）以来的秒数，可用约 68 年
//	31 bits - 序列号，来自 Store 计数器 icr:<namespace>:<yyyy:MM:dd>
//
// 计数器按天分 key，每天自然归零，无需显式回绕逻辑；单日单命名空间
// 可容纳超过 21 亿个 ID。
//
// 同一命名空间内，只要墙上时钟不回拨，ID 严格递增。时钟回拨可能产生
// 重复或递减的 ID，这是已知限制，Worker 不做掩盖。
//
// # Generator：进程本地 ID
//
// Generator 是 sony/sonyflake 的薄封装，无需网络往返，用于分布式锁的
// 持有者令牌等只需进程内唯一的场景，不用于订单等业务主键。
package xid
