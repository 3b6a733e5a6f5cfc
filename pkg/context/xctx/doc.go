// Package xctx 提供请求级上下文字段的注入与提取。
//
// 所有请求级身份（当前用户）和追踪信息（request_id、trace_id、span_id）
// 都通过 context.Context 显式传递，业务代码不依赖任何协程本地状态。
//
// # 字段分组
//
//   - 身份：user_id，秒杀下单等需要当前用户的操作通过 RequireUserID 获取
//   - 追踪：request_id、trace_id、span_id，供日志与观测组件关联
//
// # 校验策略
//
// xctx 是纯存取层：WithXxx 仅在 ctx 为 nil 时返回 ErrNilContext，
// 不校验值的业务有效性；需要确认字段存在时使用 RequireXxx。
package xctx
