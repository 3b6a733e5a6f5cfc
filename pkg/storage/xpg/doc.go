// Package xpg 基于 pgx/v5 连接池的 PostgreSQL 仓储实现。
//
// [DB.VoucherRepository] 实现 xvoucher.Repository，事务通过 pgx.BeginFunc 执行，
// 回调返回错误时回滚，否则提交。[DB.ShopRepository] 实现 xshop.Repository。
//
// 表结构见 [Schema]，可通过 [DB.Migrate] 幂等创建。
package xpg
