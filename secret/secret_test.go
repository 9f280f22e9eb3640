package secret

import (
	"encoding/hex"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey(t *testing.T) string {
	t.Helper()
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}
	return hex.EncodeToString(key)
}

func TestCipherRoundTrip(t *testing.T) {
	c, err := NewCipher(testKey(t))
	require.NoError(t, err)

	enc, err := c.Encrypt("root")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(enc, "ENC("))
	assert.True(t, c.IsEncrypted(enc))

	plain, err := c.Decrypt(enc)
	require.NoError(t, err)
	assert.Equal(t, "root", plain)
}

func TestEncryptUsesFreshNonce(t *testing.T) {
	c, err := NewCipher(testKey(t))
	require.NoError(t, err)

	a, err := c.Encrypt("same")
	require.NoError(t, err)
	b, err := c.Encrypt("same")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestNewCipherInvalidKey(t *testing.T) {
	tests := []struct {
		name string
		key  string
	}{
		{name: "not hex", key: "not-valid-hex"},
		{name: "too short", key: "aabbcc"},
		{name: "empty", key: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCipher(tt.key)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidKey)
		})
	}
}

func TestIsEnvelope(t *testing.T) {
	assert.True(t, IsEnvelope("ENC(abc)"))
	assert.False(t, IsEnvelope("ENC()"))
	assert.False(t, IsEnvelope("root"))
	assert.False(t, IsEnvelope("ENC(abc"))
	assert.False(t, IsEnvelope("127.0.0.1"))
}

func TestDecryptFailures(t *testing.T) {
	c, err := NewCipher(testKey(t))
	require.NoError(t, err)

	other, err := GenerateKey()
	require.NoError(t, err)
	c2, err := NewCipher(other)
	require.NoError(t, err)
	foreign, err := c2.Encrypt("root")
	require.NoError(t, err)

	for _, value := range []string{"root", "ENC(!!!)", "ENC(YWJj)", foreign} {
		_, err := c.Decrypt(value)
		assert.ErrorIs(t, err, ErrDecrypt, value)
	}
}

func TestCipherConcurrentUse(t *testing.T) {
	c, err := NewCipher(testKey(t))
	require.NoError(t, err)
	enc, err := c.Encrypt("secret-password")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			plain, err := c.Decrypt(enc)
			assert.NoError(t, err)
			assert.Equal(t, "secret-password", plain)
		}()
	}
	wg.Wait()
}

func TestDecryptorFunc(t *testing.T) {
	d := DecryptorFunc{
		Match: func(v string) bool { return v == "ENC(abc)" },
		Open:  func(v string) (string, error) { return "root", nil },
	}
	var _ Decryptor = d

	assert.True(t, d.IsEncrypted("ENC(abc)"))
	plain, err := d.Decrypt("ENC(abc)")
	require.NoError(t, err)
	assert.Equal(t, "root", plain)
}
