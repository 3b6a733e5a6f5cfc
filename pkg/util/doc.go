// Package util 提供通用工具相关的子包。
//
// 子包列表：
//   - xid: 全局 ID 生成（时间戳 + 按日序列号）与进程内 Sonyflake 生成器
//   - xpool: 泛型 Worker Pool，有界队列、非阻塞提交、优雅关闭
package util
