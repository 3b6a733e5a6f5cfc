package xrun

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// cronParser 支持可选秒字段与 @every、@hourly 等描述符。
var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// ParseSchedule 解析 cron 表达式。
func ParseSchedule(expr string) (cron.Schedule, error) {
	s, err := cronParser.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrInvalidSchedule, expr, err)
	}
	return s, nil
}

// Schedule 返回按 cron 表达式执行 fn 的服务。fn 返回错误时服务退出。
//
// 上一轮执行超过下一个触发点时，从执行结束时刻重新计算，不补跑。
func Schedule(expr string, fn func(ctx context.Context) error) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		sched, err := ParseSchedule(expr)
		if err != nil {
			return err
		}
		if fn == nil {
			return ErrNilFunc
		}

		timer := time.NewTimer(time.Until(sched.Next(time.Now())))
		defer timer.Stop()
		for {
			select {
			case <-timer.C:
				if err := fn(ctx); err != nil {
					return err
				}
				timer.Reset(time.Until(sched.Next(time.Now())))
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}
