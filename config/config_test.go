package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const baseYAML = `
secret:
  key: ""
databases:
  - name: testDb
    driver: mysql
    host: 127.0.0.1
    port: "3306"
    database: testDb
  - name: terms
    database: terms
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestConfigDefaults(t *testing.T) {
	cfg := &Config{EnvPrefix: "custom"}
	require.NoError(t, cfg.validate())

	assert.Equal(t, "dbbridge", cfg.Name)
	assert.Equal(t, []string{".", "./config"}, cfg.Paths)
	assert.Equal(t, "yaml", cfg.FileType)
	assert.Equal(t, "CUSTOM", cfg.EnvPrefix)
}

func TestLoaderLoad(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "dbbridge.yaml", baseYAML)

	loader, err := New(WithConfigPaths(dir), WithEnvPrefix("DBB_LOAD"))
	require.NoError(t, err)
	require.NoError(t, loader.Load(context.Background()))

	assert.Equal(t, filepath.Join(dir, "dbbridge.yaml"), loader.ConfigFileUsed())

	var services []map[string]any
	require.NoError(t, loader.UnmarshalKey("databases", &services))
	require.Len(t, services, 2)
	assert.Equal(t, "testDb", services[0]["name"])
	assert.Equal(t, "terms", services[1]["name"])
}

func TestLoaderEnvOverride(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "dbbridge.yaml", baseYAML)
	t.Setenv("DBB_ENV_SECRET_KEY", "from-env")

	loader, err := New(WithConfigPaths(dir), WithEnvPrefix("DBB_ENV"))
	require.NoError(t, err)
	require.NoError(t, loader.Load(context.Background()))

	assert.Equal(t, "from-env", loader.GetString("secret.key"))
}

func TestLoaderEnvironmentOverlay(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "dbbridge.yaml", baseYAML)
	writeFile(t, dir, "dbbridge.prod.yaml", "log:\n  level: warn\n")
	t.Setenv("DBB_OVL_ENV", "prod")

	loader, err := New(WithConfigPaths(dir), WithEnvPrefix("DBB_OVL"))
	require.NoError(t, err)
	require.NoError(t, loader.Load(context.Background()))

	assert.Equal(t, "warn", loader.GetString("log.level"))
	assert.NotNil(t, loader.Get("databases"))
}

func TestLoaderValidateEmpty(t *testing.T) {
	loader, err := New(WithConfigPaths(t.TempDir()), WithEnvPrefix("DBB_EMPTY"))
	require.NoError(t, err)

	err = loader.Load(context.Background())
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
}

func TestLoaderBrokenFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "dbbridge.yaml", "databases: [\n")

	loader, err := New(WithConfigPaths(dir), WithEnvPrefix("DBB_BROKEN"))
	require.NoError(t, err)
	assert.Error(t, loader.Load(context.Background()))
}

func TestMustLoadPanics(t *testing.T) {
	assert.Panics(t, func() {
		MustLoad(context.Background(), WithConfigPaths(t.TempDir()), WithEnvPrefix("DBB_PANIC"))
	})
}

func TestLoaderWatch(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "dbbridge.yaml", "log:\n  level: info\n")

	loader, err := New(WithConfigPaths(dir), WithEnvPrefix("DBB_WATCH"))
	require.NoError(t, err)
	require.NoError(t, loader.Load(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch, err := loader.Watch(ctx, "log.level")
	require.NoError(t, err)

	// 先写临时文件再原子替换，避免监听到半写入的内容
	time.Sleep(100 * time.Millisecond)
	tmp := writeFile(t, t.TempDir(), "next.yaml", "log:\n  level: debug\n")
	require.NoError(t, os.Rename(tmp, path))

	select {
	case event := <-ch:
		assert.Equal(t, "log.level", event.Key)
		assert.Equal(t, "debug", event.Value)
		assert.Equal(t, "info", event.OldValue)
		assert.Equal(t, "file", event.Source)
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for config change event")
	}
}

func TestLoaderWatchCancel(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "dbbridge.yaml", baseYAML)

	loader, err := New(WithConfigPaths(dir), WithEnvPrefix("DBB_CANCEL"))
	require.NoError(t, err)
	require.NoError(t, loader.Load(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	ch, err := loader.Watch(ctx, "secret.key")
	require.NoError(t, err)
	cancel()

	select {
	case _, ok := <-ch:
		assert.False(t, ok, "channel should be closed after cancel")
	case <-time.After(time.Second):
		t.Fatal("watch channel was not closed")
	}
}
