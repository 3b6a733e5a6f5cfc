// Package xmetrics 提供统一的观测接口。
//
// 业务组件（xcache、xvoucher）只依赖 Observer/Span 抽象：
//
//	ctx, span := xmetrics.Start(ctx, observer, xmetrics.SpanOptions{
//		Component: "xcache",
//		Operation: "get",
//	})
//	defer func() { span.End(xmetrics.Result{Err: err}) }()
//
// NewOTelObserver 基于 OpenTelemetry 实现，每个跨度同时记录：
//   - trace span（component/operation 属性，错误时 RecordError）
//   - xshop.operation.total 计数器与 xshop.operation.duration 直方图
//
// 未配置 Observer 时 Start 返回 NoopSpan，调用方无需判空。
package xmetrics
