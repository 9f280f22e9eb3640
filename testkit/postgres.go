package testkit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"gorm.io/gorm"

	"github.com/ceyewan/dbbridge/connector"
	"github.com/ceyewan/dbbridge/driver"
)

// NewPostgreSQLContainerConfig 使用 testcontainers 创建 PostgreSQL 容器并返回配置
// 生命周期由 t.Cleanup 管理
func NewPostgreSQLContainerConfig(t *testing.T) *connector.DescriptorConfig {
	ctx := context.Background()

	container, err := postgres.Run(ctx, "postgres:17-alpine",
		postgres.WithDatabase("dbbridge_db"),
		postgres.WithUsername("dbbridge_user"),
		postgres.WithPassword("dbbridge_password"),
		postgres.BasicWaitStrategies(), // 等待 PostgreSQL 完全启动
	)
	require.NoError(t, err, "failed to start PostgreSQL container")

	// 注册 cleanup
	t.Cleanup(func() {
		_ = container.Terminate(ctx)
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)

	mappedPort, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	return &connector.DescriptorConfig{
		Driver:   "pgsql",
		Host:     host,
		Port:     mappedPort.Port(),
		Database: "dbbridge_db",
		Username: "dbbridge_user",
		Password: "dbbridge_password",
		Options:  []connector.OptionEntry{{Key: "sslmode", Value: "disable"}},
	}
}

// NewPostgreSQLDB 获取 GORM DB 实例（基于 testcontainers）
// 容器已经通过 BasicWaitStrategies() 确保就绪，直接连接即可
func NewPostgreSQLDB(t *testing.T) *gorm.DB {
	d, err := connector.NewDescriptor(NewPostgreSQLContainerConfig(t))
	require.NoError(t, err)

	f, err := connector.NewFactory("testcontainer-postgresql", d, driver.NewGorm(driver.WithLogger(NewLogger())))
	require.NoError(t, err)
	return ConnectGorm(t, f)
}
