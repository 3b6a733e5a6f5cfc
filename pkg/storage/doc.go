// Package storage 提供数据存储相关的子包。
//
// 子包列表：
//   - xkv: 键值存储抽象与 Redis 实现
//   - xcache: 旁路缓存客户端，空值墓碑、逻辑过期与互斥回源
//   - xpg: PostgreSQL 仓储实现（pgx）
//
// 设计原则：
//   - 上层依赖接口，Redis 与 Postgres 只出现在实现包中
//   - 存储错误原样包装上抛，不吞错
package storage
