// Package xshop 商铺查询服务，演示 xcache 三种读取策略在业务侧的用法。
//
// 读取按 [Mode] 选择策略：
//
//   - [ModePassThrough]：TTL 缓存 + 空值墓碑；
//   - [ModeLogical]：逻辑过期 + 异步重建，要求先用 [Service.Warm] 预热热点商铺；
//   - [ModeMutex]：TTL 缓存 + 分布式互斥回源。
//
// 写路径遵循"先更新数据库，再删除缓存"。
package xshop
