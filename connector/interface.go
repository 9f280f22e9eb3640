// Package connector 描述关系型数据库的连接目标，并按需创建连接。
//
// 核心概念：
//   - Descriptor：不可变的连接描述（驱动、主机、端口、库名、账号、选项）
//   - BuildDSN：按固定格式把 Descriptor 拼接为连接串
//   - Factory：持有一个 Descriptor，每次 Connect 都通过 Driver 创建一个新连接
//
// 连接串格式：
//
//	{driver}:host={host}[;dbname={database}][;port={port}][;{key}={value}...]
//
// 端口或库名为空时对应片段整体省略；选项按配置顺序追加，值不做任何变换。
//
// 两种 Factory：
//   - NewFactory：字段原样使用
//   - NewDecryptingFactory：host、database、port、username、password 在使用前
//     经过 secret.Decryptor，密文解密，明文原样通过
//
// 基本使用：
//
//	d, err := connector.NewDescriptor(&connector.DescriptorConfig{
//		Host:     "127.0.0.1",
//		Port:     "3306",
//		Database: "testDb",
//		Username: "root",
//	})
//	f, err := connector.NewFactory("testDb", d, driver.NewGorm(), connector.WithLogger(logger))
//	db, err := f.Connect(ctx)
//
// 资源所有权：
//
//	Factory 不缓存连接，Connect 返回的句柄归调用方所有，由调用方负责关闭。
package connector

import (
	"context"
)

// =============================================================================
// Factory
// =============================================================================

// Factory 把一个 Descriptor 变成可用连接。
//
// 实现是并发安全的，Connect 可被多个协程同时调用，每次调用都产生独立的连接。
type Factory[C any] interface {
	// Connect 构造连接串并调用 Driver 建立连接
	// 失败时返回 *ConnectionError
	Connect(ctx context.Context) (C, error)

	// Name 返回逻辑服务名
	Name() string

	// Descriptor 返回连接描述
	Descriptor() Descriptor

	// Encrypted 报告该 Factory 是否会解密字段
	Encrypted() bool
}

// =============================================================================
// Driver
// =============================================================================

// Driver 是真正建立连接的外部协作者。
//
// dsn 为 BuildDSN 的结果，username 与 password 已经过变换，
// options 与 dsn 中的选项片段一致，便于驱动直接读取。
type Driver[C any] interface {
	Open(ctx context.Context, dsn, username, password string, options Options) (C, error)
}

// DriverFunc 函数适配器
type DriverFunc[C any] func(ctx context.Context, dsn, username, password string, options Options) (C, error)

// Open 实现 Driver 接口
func (f DriverFunc[C]) Open(ctx context.Context, dsn, username, password string, options Options) (C, error) {
	return f(ctx, dsn, username, password, options)
}
