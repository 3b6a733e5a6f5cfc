// Package xretry 是 avast/retry-go/v5 的薄包装。
//
// 默认重试条件：
//   - retry.Unrecoverable 标记的错误不重试
//   - [Permanent] 标记的错误不重试，[Temporary] 标记的错误重试
//   - 其他错误视为可重试
//
// 固定间隔的有界重试（缓存互斥重建的等待循环即使用此形式）：
//
//	err := xretry.Do(ctx, fn, xretry.Fixed(10, 50*time.Millisecond)...)
package xretry
