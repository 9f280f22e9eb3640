//go:build integration
// +build integration

package driver_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ceyewan/dbbridge/connector"
	"github.com/ceyewan/dbbridge/driver"
	"github.com/ceyewan/dbbridge/registry"
	"github.com/ceyewan/dbbridge/secret"
	"github.com/ceyewan/dbbridge/testkit"
	"github.com/ceyewan/dbbridge/xerrors"
)

func TestMySQLGorm(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := testkit.NewMySQLDB(t)

	var version string
	require.NoError(t, db.Raw("SELECT VERSION()").Scan(&version).Error)
	assert.NotEmpty(t, version)

	var charset string
	require.NoError(t, db.Raw("SELECT @@character_set_client").Scan(&charset).Error)
	assert.Equal(t, "utf8mb4", charset)
}

func TestPostgreSQLGorm(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := testkit.NewPostgreSQLDB(t)

	var encoding string
	require.NoError(t, db.Raw("SHOW client_encoding").Scan(&encoding).Error)
	assert.Equal(t, "UTF8", encoding)
}

func TestPostgreSQLEncryptedRegistry(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	kit := testkit.NewKit(t)
	cfg := testkit.NewPostgreSQLContainerConfig(t)

	key, err := secret.GenerateKey()
	require.NoError(t, err)
	c, err := secret.NewCipher(key)
	require.NoError(t, err)
	cfg.Username = xerrors.Must(c.Encrypt(cfg.Username))
	cfg.Password = xerrors.Must(c.Encrypt(cfg.Password))

	reg, err := registry.Build(&registry.Config{Services: []registry.ServiceConfig{
		{Name: "terms", Encrypted: true, DescriptorConfig: *cfg},
	}}, driver.NewSQL(driver.WithLogger(kit.Logger)),
		registry.WithDecryptor(c),
		registry.WithLogger(kit.Logger),
		registry.WithMeter(kit.Meter))
	require.NoError(t, err)

	db, err := reg.Resolve(kit.Ctx, "terms")
	require.NoError(t, err)
	defer db.Close()

	var one int
	require.NoError(t, db.GetContext(context.Background(), &one, "SELECT 1"))
	assert.Equal(t, 1, one)

	plain, err := registry.Build(&registry.Config{Services: []registry.ServiceConfig{
		{Name: "terms", DescriptorConfig: *cfg},
	}}, driver.NewSQL())
	require.NoError(t, err)

	_, err = plain.Resolve(kit.Ctx, "terms")
	assert.ErrorIs(t, err, connector.ErrConnection, "ciphertext credentials are rejected by the server")
}
