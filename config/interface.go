// Package config 为 dbbridge 提供统一的配置加载能力，基于 Viper 实现。
//
// 特性：
//   - 多源配置加载：YAML/JSON 文件、环境变量、.env 文件
//   - 配置优先级：环境变量 > .env > 环境特定配置 > 基础配置
//   - 热更新通知：监听配置文件变化，通过 Watch 通知调用方
//
// 基本使用：
//
//	loader := config.MustLoad(ctx,
//		config.WithConfigName("dbbridge"),
//		config.WithConfigPaths("./config"),
//		config.WithEnvPrefix("DBBRIDGE"),
//	)
//
//	var cfg registry.Config
//	if err := loader.Unmarshal(&cfg); err != nil {
//		panic(err)
//	}
//
// 注册表在启动时只构建一次，Watch 仅用于提示运维重启，而不会重建注册表。
package config

import (
	"context"
	"time"
)

// Loader 定义配置加载器的核心行为
type Loader interface {
	// Load 加载配置并初始化内部状态
	Load(ctx context.Context) error

	// Get 获取原始配置值
	Get(key string) any

	// GetString 获取字符串配置值，环境变量覆盖同样生效
	GetString(key string) string

	// Unmarshal 将整个配置反序列化到结构体
	Unmarshal(v any) error

	// UnmarshalKey 将指定 Key 的配置反序列化到结构体
	UnmarshalKey(key string, v any) error

	// Watch 监听配置变化，通过 context 取消监听
	Watch(ctx context.Context, key string) (<-chan Event, error)

	// Validate 验证当前配置的有效性
	Validate() error

	// ConfigFileUsed 返回实际加载的配置文件路径
	ConfigFileUsed() string
}

// Event 配置变更事件
type Event struct {
	Key       string // 配置 key
	Value     any    // 新值
	OldValue  any    // 旧值
	Source    string // "file"
	Timestamp time.Time
}
