package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ceyewan/dbbridge/registry"
	"github.com/ceyewan/dbbridge/secret"
	"github.com/ceyewan/dbbridge/xerrors"
)

const testEnvPrefix = "DBBCLI"

type fixture struct {
	dir    string
	key    string
	cipher *secret.Cipher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	key, err := secret.GenerateKey()
	require.NoError(t, err)
	c, err := secret.NewCipher(key)
	require.NoError(t, err)
	return &fixture{dir: t.TempDir(), key: key, cipher: c}
}

// writeConfig 写入两个 SQLite 服务：testDb 明文，terms 加密；broken 指向不存在的目录
func (f *fixture) writeConfig(t *testing.T) {
	t.Helper()
	termsPath := xerrors.Must(f.cipher.Encrypt(filepath.Join(f.dir, "terms.db")))

	content := fmt.Sprintf(`log:
  level: error
  format: json
  output: stderr
databases:
  services:
    - name: testDb
      driver: sqlite
      host: localhost
      database: %s
      options: []
    - name: terms
      driver: sqlite
      encrypted: true
      host: localhost
      database: %s
      options: []
    - name: broken
      driver: sqlite
      host: localhost
      database: %s
      options: []
`, filepath.Join(f.dir, "test.db"), termsPath, filepath.Join(f.dir, "missing", "nested", "x.db"))

	require.NoError(t, os.WriteFile(filepath.Join(f.dir, "dbbridge.yaml"), []byte(content), 0o644))
}

func (f *fixture) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := NewRootCommand(&out, &errOut)
	root.SetArgs(append([]string{"--config-path", f.dir, "--env-prefix", testEnvPrefix}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestListCommand(t *testing.T) {
	f := newFixture(t)
	f.writeConfig(t)

	out, err := f.run(t, "list")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "testDb"))
	assert.True(t, strings.HasPrefix(lines[1], "terms"))
	assert.Contains(t, lines[1], "encrypted")
	assert.NotContains(t, lines[0], "encrypted")
	assert.True(t, strings.HasPrefix(lines[2], "broken"))
}

func TestDSNCommand(t *testing.T) {
	f := newFixture(t)
	f.writeConfig(t)

	out, err := f.run(t, "dsn", "testDb")
	require.NoError(t, err)
	assert.Equal(t, "sqlite:host=localhost;dbname="+filepath.Join(f.dir, "test.db")+"\n", out)

	out, err = f.run(t, "dsn", "terms")
	require.NoError(t, err)
	assert.Contains(t, out, "dbname=ENC(", "dsn never decrypts")

	_, err = f.run(t, "dsn", "missing")
	assert.ErrorIs(t, err, registry.ErrUnknownService)
}

func TestCheckCommand(t *testing.T) {
	f := newFixture(t)
	f.writeConfig(t)

	out, err := f.run(t, "--secret-key", f.key, "check", "testDb", "terms")
	require.NoError(t, err)
	assert.Contains(t, out, "ok\ttestDb")
	assert.Contains(t, out, "ok\tterms")
	assert.FileExists(t, filepath.Join(f.dir, "terms.db"))
}

func TestCheckCommandSecretKeyFromEnv(t *testing.T) {
	f := newFixture(t)
	f.writeConfig(t)
	t.Setenv(testEnvPrefix+"_SECRET_KEY", f.key)

	out, err := f.run(t, "check", "terms")
	require.NoError(t, err)
	assert.Contains(t, out, "ok\tterms")
}

func TestCheckCommandFailures(t *testing.T) {
	f := newFixture(t)
	f.writeConfig(t)

	out, err := f.run(t, "check")
	require.Error(t, err)
	assert.Equal(t, codeCheckFailed, xerrors.GetCode(err))
	assert.Contains(t, out, "ok\ttestDb")
	assert.Contains(t, out, "FAIL\tterms")
	assert.Contains(t, out, "FAIL\tbroken")
	assert.ErrorIs(t, err, secret.ErrDecrypt, "terms cannot be decrypted without a key")

	out, err = f.run(t, "check", "missing")
	require.Error(t, err)
	assert.Contains(t, out, "FAIL\tmissing")
	assert.ErrorIs(t, err, registry.ErrUnknownService)
}

func TestEncryptCommand(t *testing.T) {
	f := newFixture(t)

	out, err := f.run(t, "--secret-key", f.key, "encrypt", "root")
	require.NoError(t, err)

	enc := strings.TrimSpace(out)
	assert.True(t, secret.IsEnvelope(enc))
	plain, err := f.cipher.Decrypt(enc)
	require.NoError(t, err)
	assert.Equal(t, "root", plain)

	_, err = f.run(t, "encrypt", "root")
	assert.ErrorIs(t, err, secret.ErrInvalidKey)

	_, err = f.run(t, "--secret-key", "zz", "encrypt", "root")
	assert.ErrorIs(t, err, secret.ErrInvalidKey)
}

func TestKeygenCommand(t *testing.T) {
	f := newFixture(t)

	out, err := f.run(t, "keygen")
	require.NoError(t, err)

	_, err = secret.NewCipher(strings.TrimSpace(out))
	assert.NoError(t, err)
}

func TestMissingConfig(t *testing.T) {
	f := newFixture(t)

	_, err := f.run(t, "list")
	assert.Error(t, err)
}
