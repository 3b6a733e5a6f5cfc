// Package xlog 提供基于 log/slog 的结构化日志构建器。
//
// # 设计理念
//
//   - 强制 context 传递：Logger 的所有方法都接收 ctx，EnrichHandler 从中提取
//     user_id、request_id、trace_id、span_id 自动注入
//   - 动态级别：Build 返回的 Logger 支持 SetLevel 运行时调整
//   - 文件轮转：SetRotation 使用 lumberjack 按大小/保留天数轮转
//   - 下游兼容：Slog() 返回标准 *slog.Logger，供 xcache/xpool 等包的 WithLogger 选项使用
//
// # 快速开始
//
//	logger, cleanup, err := xlog.New().
//		SetLevelString("info").
//		SetFormat("json").
//		SetRotation("/var/log/xshop/app.log", xlog.WithMaxSize(100)).
//		Build()
//	if err != nil {
//		return err
//	}
//	defer cleanup()
//
//	logger.Info(ctx, "order admitted", xlog.Component("xvoucher"))
package xlog
