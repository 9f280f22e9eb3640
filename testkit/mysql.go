package testkit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/mysql"
	"gorm.io/gorm"

	"github.com/ceyewan/dbbridge/connector"
	"github.com/ceyewan/dbbridge/driver"
)

// NewMySQLContainerConfig 使用 testcontainers 创建 MySQL 容器并返回配置
// 生命周期由 t.Cleanup 管理
func NewMySQLContainerConfig(t *testing.T) *connector.DescriptorConfig {
	ctx := context.Background()

	container, err := mysql.Run(ctx,
		"mysql:8.0",
		mysql.WithDatabase("dbbridge_db"),
		mysql.WithUsername("dbbridge_user"),
		mysql.WithPassword("dbbridge_password"),
	)
	require.NoError(t, err, "failed to start MySQL container")

	// 注册 cleanup
	t.Cleanup(func() {
		_ = container.Terminate(ctx)
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)

	mappedPort, err := container.MappedPort(ctx, "3306")
	require.NoError(t, err)

	return &connector.DescriptorConfig{
		Driver:   "mysql",
		Host:     host,
		Port:     mappedPort.Port(),
		Database: "dbbridge_db",
		Username: "dbbridge_user",
		Password: "dbbridge_password",
	}
}

// NewMySQLDB 获取 GORM DB 实例（基于 testcontainers）
// 生命周期由 t.Cleanup 管理
func NewMySQLDB(t *testing.T) *gorm.DB {
	d, err := connector.NewDescriptor(NewMySQLContainerConfig(t))
	require.NoError(t, err)

	f, err := connector.NewFactory("testcontainer-mysql", d, driver.NewGorm(driver.WithLogger(NewLogger())))
	require.NoError(t, err)

	// MySQL 容器需要时间启动，使用带超时的上下文进行重试
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	for {
		db, err := f.Connect(ctx)
		if err == nil {
			t.Cleanup(func() {
				if sqlDB, err := db.DB(); err == nil {
					_ = sqlDB.Close()
				}
			})
			return db
		}
		select {
		case <-ctx.Done():
			require.NoError(t, err, "timeout waiting for mysql to be ready")
		case <-time.After(2 * time.Second):
			// 继续重试
		}
	}
}
