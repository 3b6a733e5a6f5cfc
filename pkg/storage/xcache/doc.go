// Package xcache 提供泛型 cache-aside 客户端。
//
// 三种读取策略：
//
//   - [Client.Get]：透传模式。未命中时回源，回源结果带 TTL 写入；
//     回源返回 [ErrNotFound] 时写入空字符串墓碑，短期内同一 key 不再回源（防缓存穿透）。
//   - [Client.GetWithLogicalExpiry]：逻辑过期模式。缓存条目为 {data, expireTime} 信封，
//     物理上不过期。过期时单次尝试分布式锁，成功者把重建任务投递到有界 worker pool，
//     所有调用方立即拿到旧值，不等待重建（防缓存击穿，读不阻塞）。
//   - [Client.GetWithMutex]：互斥模式。未命中时加分布式锁回源，锁忙时固定间隔重读，
//     重试有上限，耗尽返回 [ErrBusy]。
//
// 缓存中的数据无法解码时返回 [ErrMalformed]，不会被当作未命中而回源。
//
// 回源函数通过返回包装了 [ErrNotFound] 的错误表示"记录不存在"：
//
//	var ErrShopNotFound = fmt.Errorf("xshop: shop not found: %w", xcache.ErrNotFound)
package xcache
