// Package distributed 提供分布式协调相关的子包。
//
// 子包列表：
//   - xdlock: 分布式锁，支持 xkv.Store 与 redsync 两种后端
//
// 设计原则：
//   - TryLock 只尝试一次，被占用时立即返回
//   - 释放与续期都校验所有者令牌，不会误删他人的锁
package distributed
