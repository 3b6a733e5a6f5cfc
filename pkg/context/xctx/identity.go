package xctx

import (
	"context"
	"strconv"
)

// KeyUserID 用户 ID 的日志属性名。
const KeyUserID = "user_id"

const keyUserID = contextKey("xctx:user_id")

// WithUserID 将当前用户 ID 注入 context。
//
// 如果 ctx 为 nil，返回 ErrNilContext。
func WithUserID(ctx context.Context, userID int64) (context.Context, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	return context.WithValue(ctx, keyUserID, userID), nil
}

// UserID 从 context 提取用户 ID。
// 第二个返回值表示字段是否存在。
func UserID(ctx context.Context) (int64, bool) {
	if ctx == nil {
		return 0, false
	}
	v, ok := ctx.Value(keyUserID).(int64)
	return v, ok
}

// RequireUserID 提取用户 ID，不存在或非正数时返回 ErrMissingUserID。
func RequireUserID(ctx context.Context) (int64, error) {
	if ctx == nil {
		return 0, ErrNilContext
	}
	id, ok := UserID(ctx)
	if !ok || id <= 0 {
		return 0, ErrMissingUserID
	}
	return id, nil
}

// userIDString 用于日志输出。
func userIDString(ctx context.Context) string {
	id, ok := UserID(ctx)
	if !ok {
		return ""
	}
	return strconv.FormatInt(id, 10)
}
