package xrun

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/omeyang/xshop/pkg/observability/xlog"
)

// Group 管理一组协同退出的服务。任一服务返回错误时取消其余服务。
//
// Go 与 Cancel 可并发调用，Wait 只应调用一次。
type Group struct {
	eg       *errgroup.Group
	ctx      context.Context
	causeCtx context.Context
	cancel   context.CancelCauseFunc
	opts     *options
}

// NewGroup 创建 Group，返回的 context 在任一服务失败或 Cancel 时取消。
func NewGroup(ctx context.Context, opts ...Option) (*Group, context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}

	causeCtx, cancel := context.WithCancelCause(ctx)
	eg, egCtx := errgroup.WithContext(causeCtx)
	return &Group{eg: eg, ctx: egCtx, causeCtx: causeCtx, cancel: cancel, opts: o}, egCtx
}

// Go 以 name 启动服务 fn。
func (g *Group) Go(name string, fn func(ctx context.Context) error) {
	g.eg.Go(func() error {
		if fn == nil {
			return ErrNilFunc
		}
		g.opts.logger.LogAttrs(g.ctx, slog.LevelDebug, "service starting",
			slog.String("group", g.opts.name), slog.String("service", name))

		err := fn(g.ctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			g.opts.logger.LogAttrs(g.ctx, slog.LevelWarn, "service exited with error",
				slog.String("group", g.opts.name), slog.String("service", name), xlog.Err(err))
		}
		return err
	})
}

// Wait 等待全部服务退出。
//
// 由 Cancel(cause) 或信号触发的退出返回 cause；普通的 context 取消返回 nil；
// 服务自身的错误原样返回。
func (g *Group) Wait() error {
	defer g.cancel(nil)

	err := g.eg.Wait()
	if g.causeCtx.Err() != nil && (err == nil || errors.Is(err, context.Canceled)) {
		if cause := context.Cause(g.causeCtx); cause != nil && !errors.Is(cause, context.Canceled) {
			return cause
		}
		return nil
	}
	return err
}

// Cancel 以 cause 取消全部服务。
func (g *Group) Cancel(cause error) { g.cancel(cause) }

// Run 运行 services 并监听信号，直到全部退出。
func Run(ctx context.Context, opts []Option, services ...func(ctx context.Context) error) error {
	g, _ := NewGroup(ctx, opts...)

	if !g.opts.noSignalHandler {
		signals := g.opts.signals
		if len(signals) == 0 {
			signals = DefaultSignals()
		}
		g.Go("signal", func(ctx context.Context) error {
			ch := make(chan os.Signal, 1)
			signal.Notify(ch, signals...)
			defer signal.Stop(ch)

			var sig os.Signal
			select {
			case sig = <-ch:
			case sig = <-testSignals(ctx):
			case <-ctx.Done():
				return ctx.Err()
			}
			g.opts.logger.LogAttrs(ctx, slog.LevelInfo, "received signal",
				slog.String("group", g.opts.name), slog.String("signal", sig.String()))
			g.Cancel(&SignalError{Signal: sig})
			return nil
		})
	}

	for i, svc := range services {
		g.Go("service-"+itoa(i), svc)
	}
	return g.Wait()
}

// Ticker 返回周期执行 fn 的服务。fn 返回错误时服务退出；
// immediate 为 true 时启动后先执行一次。
func Ticker(interval time.Duration, immediate bool, fn func(ctx context.Context) error) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		if interval <= 0 {
			return ErrInvalidInterval
		}
		if fn == nil {
			return ErrNilFunc
		}
		if immediate {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := fn(ctx); err != nil {
				return err
			}
		}

		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-t.C:
				if err := fn(ctx); err != nil {
					return err
				}
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}

// testSignalsKey 测试通过 context 注入信号，避免向进程发送真实信号。
type testSignalsKey struct{}

func testSignals(ctx context.Context) <-chan os.Signal {
	c, _ := ctx.Value(testSignalsKey{}).(<-chan os.Signal)
	return c
}

func itoa(i int) string {
	if i < 10 {
		return string(rune('0' + i))
	}
	return itoa(i/10) + string(rune('0'+i%10))
}
