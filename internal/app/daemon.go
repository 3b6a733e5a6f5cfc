package app

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync/atomic"

	"github.com/omeyang/xshop/pkg/config/xconf"
	"github.com/omeyang/xshop/pkg/lifecycle/xrun"
	"github.com/omeyang/xshop/pkg/observability/xlog"
)

// Daemon 周期预热热点商铺，配置文件变更时热更新预热列表。
type Daemon struct {
	app *App
	src xconf.Config
	ids atomic.Pointer[[]int64]
}

// NewDaemon 创建 Daemon。src 为 nil 或非文件来源时不监视配置。
func (a *App) NewDaemon(src xconf.Config) *Daemon {
	d := &Daemon{app: a, src: src}
	ids := slices.Clone(a.Config.Warm.ShopIDs)
	d.ids.Store(&ids)
	return d
}

// ShopIDs 返回当前预热列表。
func (d *Daemon) ShopIDs() []int64 {
	return *d.ids.Load()
}

// Run 阻塞运行直到 ctx 取消或收到信号。
func (d *Daemon) Run(ctx context.Context, opts ...xrun.Option) error {
	opts = append([]xrun.Option{xrun.WithLogger(d.app.Logger.Slog()), xrun.WithName("xshop-daemon")}, opts...)
	wc := d.app.Config.Warm
	trigger := slog.Duration("interval", wc.Interval)
	services := []func(context.Context) error{xrun.Ticker(wc.Interval, true, d.warm)}
	if wc.Schedule != "" {
		trigger = slog.String("schedule", wc.Schedule)
		services[0] = xrun.Schedule(wc.Schedule, d.warm)
	}
	if d.src != nil && d.src.Path() != "" {
		w, err := xconf.NewWatcher(d.src, d.reload)
		if err != nil {
			return err
		}
		services = append(services, w.Run)
	}

	d.app.Logger.Info(ctx, "daemon started",
		slog.Int("shops", len(d.ShopIDs())), trigger)
	return xrun.Run(ctx, opts, services...)
}

// warm 单轮预热。失败只记录日志，下一轮重试。
func (d *Daemon) warm(ctx context.Context) error {
	ids := d.ShopIDs()
	if len(ids) == 0 {
		return nil
	}
	err := d.app.Shops.Warm(ctx, ids, d.app.Config.Cache.LogicalTTL)
	if err != nil && !errors.Is(err, context.Canceled) {
		d.app.Logger.Warn(ctx, "warm round failed", xlog.Err(err))
	}
	st := d.app.RebuildStats()
	d.app.Logger.Debug(ctx, "warm round done",
		slog.Int("shops", len(ids)),
		slog.Int("rebuild_pending", st.Pending),
		slog.Int("rebuild_capacity", st.Capacity))
	return nil
}

func (d *Daemon) reload(src xconf.Config, err error) {
	ctx := context.Background()
	if err != nil {
		d.app.Logger.Warn(ctx, "config reload failed", xlog.Err(err))
		return
	}
	var warm WarmConfig
	if err := src.Unmarshal("warm", &warm); err != nil {
		d.app.Logger.Warn(ctx, "config reload failed", xlog.Err(err))
		return
	}
	ids := slices.DeleteFunc(slices.Clone(warm.ShopIDs), func(id int64) bool { return id <= 0 })
	d.ids.Store(&ids)
	d.app.Logger.Info(ctx, "warm list reloaded", slog.Int("shops", len(ids)))
}
