// Package xconf 基于 koanf 的配置加载器。
//
// 只负责加载、反序列化与热重载；默认值与校验由使用方（internal/app）完成。
//
// 支持 YAML（.yaml/.yml）与 JSON（.json）。[New] 按扩展名识别格式，
// [NewFromBytes] 需要显式指定格式。
//
// [Config.Reload] 解析成功后原子替换内部 koanf 实例，解析失败时保留旧配置。
// [Watcher] 监视配置文件所在目录（兼容编辑器先写临时文件再 rename 的保存方式），
// 带防抖，变更后自动 Reload 并回调：
//
//	w, err := xconf.NewWatcher(cfg, func(c xconf.Config, err error) { ... })
//	if err != nil {
//		return err
//	}
//	go w.Run(ctx) // ctx 取消后返回
package xconf
