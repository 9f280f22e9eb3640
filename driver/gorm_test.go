package driver

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"gorm.io/gorm"

	"github.com/ceyewan/dbbridge/clog"
	"github.com/ceyewan/dbbridge/connector"
	"github.com/ceyewan/dbbridge/registry"
	"github.com/ceyewan/dbbridge/secret"
	"github.com/ceyewan/dbbridge/xerrors"
)

type term struct {
	ID   uint `gorm:"primaryKey"`
	Code string
}

func sqliteService(t *testing.T, name string) registry.ServiceConfig {
	t.Helper()
	return registry.ServiceConfig{
		Name: name,
		DescriptorConfig: connector.DescriptorConfig{
			Driver:   "sqlite",
			Host:     "localhost",
			Database: filepath.Join(t.TempDir(), name+".db"),
		},
	}
}

func closeGorm(t *testing.T, db *gorm.DB) {
	t.Helper()
	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())
}

func TestGormDriverSQLite(t *testing.T) {
	ctx := context.Background()
	svc := sqliteService(t, "testDb")
	d := connector.MustDescriptor(&svc.DescriptorConfig)

	f, err := connector.NewFactory(svc.Name, d, NewGorm(WithSilent()))
	require.NoError(t, err)

	db, err := f.Connect(ctx)
	require.NoError(t, err)
	defer closeGorm(t, db)

	require.NoError(t, db.AutoMigrate(&term{}))
	require.NoError(t, db.Create(&term{Code: "T-1"}).Error)

	var got term
	require.NoError(t, db.First(&got, "code = ?", "T-1").Error)
	assert.Equal(t, "T-1", got.Code)
}

func TestGormRegistryEndToEnd(t *testing.T) {
	ctx := context.Background()

	key, err := secret.GenerateKey()
	require.NoError(t, err)
	c, err := secret.NewCipher(key)
	require.NoError(t, err)

	terms := sqliteService(t, "terms")
	terms.Encrypted = true
	terms.Database = xerrors.Must(c.Encrypt(terms.Database))

	cfg := &registry.Config{Services: []registry.ServiceConfig{sqliteService(t, "testDb"), terms}}
	reg, err := registry.Build(cfg, NewGorm(WithSilent()), registry.WithDecryptor(c))
	require.NoError(t, err)

	a, err := reg.Resolve(ctx, "testDb")
	require.NoError(t, err)
	defer closeGorm(t, a)

	b, err := reg.Resolve(ctx, "terms")
	require.NoError(t, err)
	defer closeGorm(t, b)

	again, err := reg.Resolve(ctx, "testDb")
	require.NoError(t, err)
	defer closeGorm(t, again)

	assert.NotSame(t, a, b)
	assert.NotSame(t, a, again)

	require.NoError(t, a.AutoMigrate(&term{}))
	require.NoError(t, a.Create(&term{Code: "A"}).Error)

	var count int64
	require.NoError(t, again.Model(&term{}).Count(&count).Error, "same file, separate handle")
	assert.Equal(t, int64(1), count)

	assert.False(t, b.Migrator().HasTable(&term{}), "terms is a different database file")

	_, err = reg.Resolve(ctx, "missing")
	assert.ErrorIs(t, err, registry.ErrUnknownService)
}

func TestGormDriverConnectionError(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "missing-dir")
	d := connector.MustDescriptor(&connector.DescriptorConfig{
		Driver:   "sqlite",
		Database: filepath.Join(dir, "nested", "app.db"),
		Options:  []connector.OptionEntry{{Key: "mode", Value: "ro"}},
	})

	f, err := connector.NewFactory("broken", d, NewGorm(WithSilent()))
	require.NoError(t, err)

	_, err = f.Connect(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, connector.ErrConnection)

	var connErr *connector.ConnectionError
	require.ErrorAs(t, err, &connErr)
	assert.Equal(t, d.Database(), connErr.Target)
}

func TestGormDriverUnsupported(t *testing.T) {
	d := connector.MustDescriptor(&connector.DescriptorConfig{Driver: "oracle"})
	f, err := connector.NewFactory("legacy", d, NewGorm())
	require.NoError(t, err)

	_, err = f.Connect(context.Background())
	assert.ErrorIs(t, err, connector.ErrConnection)
	assert.ErrorIs(t, err, ErrUnsupportedDriver)
}

func TestGormDriverLogsSQL(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "sql.log")
	logger, err := clog.New(&clog.Config{Level: "debug", Format: "json", Output: logPath})
	require.NoError(t, err)

	svc := sqliteService(t, "testDb")
	db, err := NewGorm(WithLogger(logger)).Open(context.Background(),
		connector.MustDescriptor(&svc.DescriptorConfig).String(), "", "", connector.Options{})
	require.NoError(t, err)
	defer closeGorm(t, db)

	require.NoError(t, db.AutoMigrate(&term{}))
	err = db.Exec("SELECT * FROM no_such_table").Error
	require.Error(t, err)
	logger.Flush()

	out, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"msg":"sql"`)
	assert.Contains(t, string(out), `"msg":"sql error"`)
	assert.Contains(t, string(out), "no_such_table")
}

func TestGormDriverSilent(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "sql.log")
	logger, err := clog.New(&clog.Config{Level: "debug", Format: "json", Output: logPath})
	require.NoError(t, err)

	svc := sqliteService(t, "testDb")
	db, err := NewGorm(WithLogger(logger), WithSilent()).Open(context.Background(),
		connector.MustDescriptor(&svc.DescriptorConfig).String(), "", "", connector.Options{})
	require.NoError(t, err)
	defer closeGorm(t, db)

	require.NoError(t, db.AutoMigrate(&term{}))
	logger.Flush()

	out, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.NotContains(t, string(out), `"msg":"sql"`)
}

func TestGormDriverTracing(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	defer tp.Shutdown(context.Background())

	svc := sqliteService(t, "testDb")
	db, err := NewGorm(WithSilent(), WithTracing(tp)).Open(context.Background(),
		connector.MustDescriptor(&svc.DescriptorConfig).String(), "", "", connector.Options{})
	require.NoError(t, err)
	defer closeGorm(t, db)

	require.NoError(t, db.AutoMigrate(&term{}))
	require.NoError(t, db.Create(&term{Code: "traced"}).Error)

	assert.NotEmpty(t, sr.Ended())
}

func TestOpenHonoursContext(t *testing.T) {
	// 不可路由地址，连接只能靠 ctx 结束
	const dsn = "mysql:host=10.255.255.1;port=3306"

	drivers := []struct {
		name string
		open func(ctx context.Context) error
	}{
		{name: "gorm", open: func(ctx context.Context) error {
			_, err := NewGorm(WithSilent()).Open(ctx, dsn, "root", "secret", connector.Options{})
			return err
		}},
		{name: "sql", open: func(ctx context.Context) error {
			_, err := NewSQL().Open(ctx, dsn, "root", "secret", connector.Options{})
			return err
		}},
	}

	for _, tt := range drivers {
		t.Run(tt.name+"/cancelled", func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			start := time.Now()
			err := tt.open(ctx)
			require.Error(t, err)
			assert.ErrorIs(t, err, context.Canceled)
			assert.Less(t, time.Since(start), time.Second)
		})

		t.Run(tt.name+"/deadline", func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
			defer cancel()

			start := time.Now()
			err := tt.open(ctx)
			require.Error(t, err)
			assert.Less(t, time.Since(start), 5*time.Second)
		})
	}
}

func TestMySQLLoggerWritesToClog(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "driver.log")
	logger, err := clog.New(&clog.Config{Level: "debug", Format: "json", Output: logPath})
	require.NoError(t, err)

	mysqlLogger{log: logger}.Print("packets.go:58: unexpected EOF")
	logger.Flush()

	out, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(out), "unexpected EOF")
	assert.Contains(t, string(out), `"component":"go-sql-driver"`)
}
