package xctx

import (
	"context"
	"log/slog"
)

// maxAttrs 身份 1 + 追踪 3
const maxAttrs = 4

// AppendAttrs 将 context 中的非空字段追加到 attrs。
// 调用方可传入预分配切片以避免热路径分配。
func AppendAttrs(attrs []slog.Attr, ctx context.Context) []slog.Attr {
	if ctx == nil {
		return attrs
	}
	if v := RequestID(ctx); v != "" {
		attrs = append(attrs, slog.String(KeyRequestID, v))
	}
	if v := TraceID(ctx); v != "" {
		attrs = append(attrs, slog.String(KeyTraceID, v))
	}
	if v := SpanID(ctx); v != "" {
		attrs = append(attrs, slog.String(KeySpanID, v))
	}
	if v := userIDString(ctx); v != "" {
		attrs = append(attrs, slog.String(KeyUserID, v))
	}
	return attrs
}

// Attrs 返回 context 中全部非空字段，均为空时返回 nil。
func Attrs(ctx context.Context) []slog.Attr {
	attrs := AppendAttrs(make([]slog.Attr, 0, maxAttrs), ctx)
	if len(attrs) == 0 {
		return nil
	}
	return attrs
}
