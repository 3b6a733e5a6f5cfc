package xpg

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/omeyang/xshop/pkg/observability/xlog"
)

// SlowQuery 一次超过阈值的查询。
type SlowQuery struct {
	SQL      string
	Args     int
	Rows     int64
	Duration time.Duration
	Err      error
}

// SlowQueryHook 慢查询回调，在查询 goroutine 上同步执行，应保持轻量。
type SlowQueryHook func(ctx context.Context, q SlowQuery)

// WithSlowQuery 为每个连接安装慢查询追踪，threshold <= 0 或 hook 为 nil 时不生效。
func WithSlowQuery(threshold time.Duration, hook SlowQueryHook) Option {
	return func(c *pgxpool.Config) {
		if threshold > 0 && hook != nil {
			c.ConnConfig.Tracer = &slowQueryTracer{threshold: threshold, hook: hook, now: time.Now}
		}
	}
}

// LogSlowQuery 返回以 Warn 级别记录慢查询的回调。
func LogSlowQuery(logger *slog.Logger) SlowQueryHook {
	if logger == nil {
		logger = slog.Default()
	}
	return func(ctx context.Context, q SlowQuery) {
		logger.LogAttrs(ctx, slog.LevelWarn, "xpg: slow query",
			slog.String("sql", q.SQL),
			slog.Int("args", q.Args),
			slog.Int64("rows", q.Rows),
			xlog.Duration(q.Duration),
			xlog.Err(q.Err))
	}
}

var _ pgx.QueryTracer = (*slowQueryTracer)(nil)

type slowQueryTracer struct {
	threshold time.Duration
	hook      SlowQueryHook
	now       func() time.Time
}

type queryStartKey struct{}

type queryStart struct {
	sql  string
	args int
	at   time.Time
}

func (t *slowQueryTracer) TraceQueryStart(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	return context.WithValue(ctx, queryStartKey{}, queryStart{sql: data.SQL, args: len(data.Args), at: t.now()})
}

func (t *slowQueryTracer) TraceQueryEnd(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryEndData) {
	start, ok := ctx.Value(queryStartKey{}).(queryStart)
	if !ok {
		return
	}
	elapsed := t.now().Sub(start.at)
	if elapsed < t.threshold {
		return
	}
	t.hook(ctx, SlowQuery{
		SQL:      start.sql,
		Args:     start.args,
		Rows:     data.CommandTag.RowsAffected(),
		Duration: elapsed,
		Err:      data.Err,
	})
}
