package xctx

import "context"

// 追踪字段日志属性名
const (
	KeyRequestID = "request_id"
	KeyTraceID   = "trace_id"
	KeySpanID    = "span_id"
)

const (
	keyRequestID = contextKey("xctx:request_id")
	keyTraceID   = contextKey("xctx:trace_id")
	keySpanID    = contextKey("xctx:span_id")
)

// WithRequestID 注入 request ID。
func WithRequestID(ctx context.Context, requestID string) (context.Context, error) {
	return withString(ctx, keyRequestID, requestID)
}

// RequestID 提取 request ID，不存在返回空字符串。
func RequestID(ctx context.Context) string {
	return stringValue(ctx, keyRequestID)
}

// RequireRequestID 提取 request ID，不存在返回 ErrMissingRequestID。
func RequireRequestID(ctx context.Context) (string, error) {
	if ctx == nil {
		return "", ErrNilContext
	}
	v := RequestID(ctx)
	if v == "" {
		return "", ErrMissingRequestID
	}
	return v, nil
}

// WithTraceID 注入 trace ID（W3C 32 位十六进制）。
func WithTraceID(ctx context.Context, traceID string) (context.Context, error) {
	return withString(ctx, keyTraceID, traceID)
}

// TraceID 提取 trace ID。
func TraceID(ctx context.Context) string {
	return stringValue(ctx, keyTraceID)
}

// WithSpanID 注入 span ID（W3C 16 位十六进制）。
func WithSpanID(ctx context.Context, spanID string) (context.Context, error) {
	return withString(ctx, keySpanID, spanID)
}

// SpanID 提取 span ID。
func SpanID(ctx context.Context) string {
	return stringValue(ctx, keySpanID)
}
