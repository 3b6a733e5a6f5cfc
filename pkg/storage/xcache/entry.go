package xcache

import "time"

// Entry 逻辑过期模式下的缓存信封。
//
// ExpireAt 以带时区的 RFC 3339 编码（JSONCodec），与不带时区的本地时间格式不兼容。
type Entry[T any] struct {
	Data     T         `json:"data" msgpack:"data"`
	ExpireAt time.Time `json:"expireTime" msgpack:"expireTime"`
}

// Expired 判断 now 时条目是否已逻辑过期。
func (e Entry[T]) Expired(now time.Time) bool {
	return !now.Before(e.ExpireAt)
}
