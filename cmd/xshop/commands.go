package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/urfave/cli/v3"

	"github.com/omeyang/xshop/internal/app"
	"github.com/omeyang/xshop/pkg/business/xvoucher"
	"github.com/omeyang/xshop/pkg/config/xconf"
	"github.com/omeyang/xshop/pkg/context/xctx"
	"github.com/omeyang/xshop/pkg/lifecycle/xrun"
	"github.com/omeyang/xshop/pkg/storage/xkv"
	"github.com/omeyang/xshop/pkg/storage/xpg"
	"github.com/omeyang/xshop/pkg/util/xid"
)

// newApp 装配 App，测试中替换以注入内存仓储。
var newApp = func(ctx context.Context, cfg app.Config) (*app.App, error) {
	return app.New(ctx, cfg)
}

// 创建所有子命令。
func createCommands() []*cli.Command {
	return []*cli.Command{
		createMigrateCommand(),
		createWarmCommand(),
		createDaemonCommand(),
		createShopCommand(),
		createOrderCommand(),
		createIDCommand(),
	}
}

// =============================================================================
// 公共辅助
// =============================================================================

// loadConfig 读取 --config 指定的配置；未指定时使用默认配置，src 为 nil。
func loadConfig(cmd *cli.Command) (app.Config, xconf.Config, error) {
	path := cmd.String("config")
	if path == "" {
		cfg, err := app.Load("")
		return cfg, nil, err
	}
	src, err := xconf.New(path)
	if err != nil {
		return app.Config{}, nil, err
	}
	cfg, err := app.Decode(src)
	return cfg, src, err
}

// withTimeout 按 --timeout 限制命令耗时。
func withTimeout(ctx context.Context, cmd *cli.Command) (context.Context, context.CancelFunc) {
	if d := cmd.Duration("timeout"); d > 0 {
		return context.WithTimeout(ctx, d)
	}
	return context.WithCancel(ctx)
}

// withApp 装配 App 执行 fn，结束后关闭。
func withApp(ctx context.Context, cmd *cli.Command, fn func(ctx context.Context, a *app.App) error) error {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctx, cancel := withTimeout(ctx, cmd)
	defer cancel()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeApp(a)
	return fn(ctx, a)
}

func closeApp(a *app.App) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = a.Close(ctx)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func parseID(cmd *cli.Command, what string) (int64, error) {
	if cmd.Args().Len() != 1 {
		return 0, usagef("%s: expected exactly one <id> argument", what)
	}
	id, err := strconv.ParseInt(cmd.Args().First(), 10, 64)
	if err != nil || id <= 0 {
		return 0, usagef("%s: invalid id %q", what, cmd.Args().First())
	}
	return id, nil
}

// =============================================================================
// migrate / warm / daemon
// =============================================================================

func createMigrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "在 Postgres 中建表（幂等）",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, _, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := withTimeout(ctx, cmd)
			defer cancel()

			db, err := xpg.Open(ctx, cfg.Postgres.DSN, xpg.WithConnectTimeout(cfg.Postgres.ConnectTimeout))
			if err != nil {
				return err
			}
			defer db.Close()
			if err := db.Migrate(ctx); err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.Root().Writer, "schema applied")
			return err
		},
	}
}

func createWarmCommand() *cli.Command {
	return &cli.Command{
		Name:  "warm",
		Usage: "按逻辑过期写入热点商铺",
		Flags: []cli.Flag{
			&cli.Int64SliceFlag{
				Name:  "id",
				Usage: "商铺 id，可重复；缺省使用配置 warm.shop_ids",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return withApp(ctx, cmd, func(ctx context.Context, a *app.App) error {
				ids := cmd.Int64Slice("id")
				if len(ids) == 0 {
					ids = a.Config.Warm.ShopIDs
				}
				if len(ids) == 0 {
					return usagef("warm: no shop ids given")
				}
				for _, id := range ids {
					if id <= 0 {
						return usagef("warm: invalid id %d", id)
					}
				}
				if err := a.Shops.Warm(ctx, ids, a.Config.Cache.LogicalTTL); err != nil {
					return err
				}
				_, err := fmt.Fprintf(cmd.Root().Writer, "warmed %d shops\n", len(ids))
				return err
			})
		},
	}
}

func createDaemonCommand() *cli.Command {
	return &cli.Command{
		Name:  "daemon",
		Usage: "周期预热，直到收到退出信号",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, src, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			setupCtx, cancel := withTimeout(ctx, cmd)
			a, err := newApp(setupCtx, cfg)
			cancel()
			if err != nil {
				return err
			}
			defer closeApp(a)

			err = a.NewDaemon(src).Run(ctx)
			if errors.Is(err, xrun.ErrSignal) {
				return nil
			}
			return err
		},
	}
}

// =============================================================================
// shop
// =============================================================================

func createShopCommand() *cli.Command {
	return &cli.Command{
		Name:  "shop",
		Usage: "商铺查询",
		Commands: []*cli.Command{
			{
				Name:      "get",
				Usage:     "按 id 查询商铺",
				ArgsUsage: "<id>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					id, err := parseID(cmd, "shop get")
					if err != nil {
						return err
					}
					return withApp(ctx, cmd, func(ctx context.Context, a *app.App) error {
						shop, err := a.Shops.QueryByID(ctx, id)
						if err != nil {
							return err
						}
						return writeJSON(cmd.Root().Writer, shop)
					})
				},
			},
			{
				Name:  "types",
				Usage: "查询商铺类型列表",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return withApp(ctx, cmd, func(ctx context.Context, a *app.App) error {
						types, err := a.Shops.ListTypes(ctx)
						if err != nil {
							return err
						}
						return writeJSON(cmd.Root().Writer, types)
					})
				},
			},
		},
	}
}

// =============================================================================
// order
// =============================================================================

func createOrderCommand() *cli.Command {
	return &cli.Command{
		Name:  "order",
		Usage: "以指定用户秒杀下单",
		Flags: []cli.Flag{
			&cli.Int64Flag{Name: "user", Aliases: []string{"u"}, Usage: "用户 id", Required: true},
			&cli.Int64Flag{Name: "voucher", Aliases: []string{"v"}, Usage: "秒杀券 id", Required: true},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			userID, voucherID := cmd.Int64("user"), cmd.Int64("voucher")
			if userID <= 0 || voucherID <= 0 {
				return usagef("order: --user and --voucher must be positive")
			}
			return withApp(ctx, cmd, func(ctx context.Context, a *app.App) error {
				ctx, err := xctx.WithUserID(ctx, userID)
				if err != nil {
					return err
				}
				if ctx, err = xctx.WithRequestID(ctx, uuid.NewString()); err != nil {
					return err
				}

				orderID, err := a.Orders.Seckill(ctx, voucherID)
				if errors.Is(err, xvoucher.ErrRejected) {
					return &exitError{code: exitRejected, msg: "rejected: " + err.Error()}
				}
				if err != nil {
					return err
				}
				return writeJSON(cmd.Root().Writer, map[string]any{
					"orderId":   orderID,
					"userId":    userID,
					"voucherId": voucherID,
					"requestId": xctx.RequestID(ctx),
				})
			})
		},
	}
}

// =============================================================================
// id
// =============================================================================

// idInfo id parse 的输出。
type idInfo struct {
	ID       int64     `json:"id"`
	Time     time.Time `json:"time"`
	Seconds  int64     `json:"seconds"`
	Sequence int64     `json:"sequence"`
}

func describeID(id int64) (idInfo, error) {
	c, err := xid.Decompose(id)
	if err != nil {
		return idInfo{}, err
	}
	return idInfo{ID: c.ID, Time: c.Time(xid.DefaultEpoch), Seconds: c.Seconds, Sequence: c.Sequence}, nil
}

func createIDCommand() *cli.Command {
	return &cli.Command{
		Name:  "id",
		Usage: "全局 ID 工具",
		Commands: []*cli.Command{
			{
				Name:      "next",
				Usage:     "为命名空间生成下一个 ID（只连接 Redis）",
				ArgsUsage: "<namespace>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					if cmd.Args().Len() != 1 {
						return usagef("id next: expected exactly one <namespace> argument")
					}
					cfg, _, err := loadConfig(cmd)
					if err != nil {
						return err
					}
					ctx, cancel := withTimeout(ctx, cmd)
					defer cancel()

					client, err := app.NewRedisClient(ctx, cfg.Redis)
					if err != nil {
						return err
					}
					defer func() { _ = client.Close() }()
					store, err := xkv.NewRedis(client)
					if err != nil {
						return err
					}
					w, err := xid.NewWorker(store)
					if err != nil {
						return err
					}

					id, err := w.NextID(ctx, cmd.Args().First())
					if err != nil {
						if errors.Is(err, xid.ErrEmptyNamespace) {
							return usagef("id next: %v", err)
						}
						return err
					}
					info, err := describeID(id)
					if err != nil {
						return err
					}
					return writeJSON(cmd.Root().Writer, info)
				},
			},
			{
				Name:      "parse",
				Usage:     "分解 ID 的时间戳与序列号",
				ArgsUsage: "<id>",
				Action: func(_ context.Context, cmd *cli.Command) error {
					id, err := parseID(cmd, "id parse")
					if err != nil {
						return err
					}
					info, err := describeID(id)
					if err != nil {
						return err
					}
					return writeJSON(cmd.Root().Writer, info)
				},
			},
		},
	}
}
