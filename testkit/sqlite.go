package testkit

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ceyewan/dbbridge/connector"
	"github.com/ceyewan/dbbridge/driver"
)

// NewSQLiteConfig 返回持久化 SQLite 测试配置
// 数据库文件存储在 t.TempDir() 中，测试结束后自动清理
func NewSQLiteConfig(t *testing.T) *connector.DescriptorConfig {
	return &connector.DescriptorConfig{
		Driver:   "sqlite",
		Host:     "localhost",
		Database: filepath.Join(t.TempDir(), "test-"+NewID()+".db"),
		Options:  []connector.OptionEntry{},
	}
}

// NewSQLiteFactory 获取基于 SQLite 文件的 GORM 连接工厂
func NewSQLiteFactory(t *testing.T, name string) connector.Factory[*gorm.DB] {
	d, err := connector.NewDescriptor(NewSQLiteConfig(t))
	require.NoError(t, err, "failed to build sqlite descriptor")

	f, err := connector.NewFactory(name, d, driver.NewGorm(driver.WithSilent()),
		connector.WithLogger(NewLogger()))
	require.NoError(t, err, "failed to create sqlite factory")
	return f
}

// NewSQLiteDB 获取 GORM DB 实例
// 生命周期由 t.Cleanup 管理
func NewSQLiteDB(t *testing.T) *gorm.DB {
	return ConnectGorm(t, NewSQLiteFactory(t, "sqlite-"+NewID()))
}

// ConnectGorm 通过工厂建立连接，并在测试结束时关闭
func ConnectGorm(t *testing.T, f connector.Factory[*gorm.DB]) *gorm.DB {
	db, err := f.Connect(context.Background())
	require.NoError(t, err, "failed to connect %s", f.Name())

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}
