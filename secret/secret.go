// Package secret 提供配置字段的加解密能力。
//
// 加密值以信封格式保存在配置中：ENC(<base64(nonce || ciphertext)>)，
// 使用 AES-256-GCM，密钥为 64 位十六进制字符串（32 字节）。
// 未包裹在信封中的值视为明文，解密方原样返回，
// 因此配置可以逐步迁移到密文，明文与密文可以混用。
//
// 基本使用：
//
//	c, err := secret.NewCipher(os.Getenv("DBBRIDGE_SECRET_KEY"))
//	enc, _ := c.Encrypt("root")      // ENC(...)
//	c.IsEncrypted(enc)               // true
//	plain, _ := c.Decrypt(enc)       // "root"
package secret

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"io"
	"strings"

	"github.com/ceyewan/dbbridge/xerrors"
)

const (
	envelopePrefix = "ENC("
	envelopeSuffix = ")"
	keySize        = 32
)

// Decryptor 识别并解密配置中的加密值。
//
// 实现必须无状态或可重入，同一实例会被多个连接工厂并发共享。
type Decryptor interface {
	// IsEncrypted 报告 value 是否为可识别的密文
	IsEncrypted(value string) bool

	// Decrypt 返回明文，value 不是有效密文时返回 ErrDecrypt
	Decrypt(value string) (string, error)
}

// DecryptorFunc 由两个函数组成的 Decryptor，便于测试和适配外部服务
type DecryptorFunc struct {
	Match func(value string) bool
	Open  func(value string) (string, error)
}

func (f DecryptorFunc) IsEncrypted(value string) bool {
	return f.Match(value)
}

func (f DecryptorFunc) Decrypt(value string) (string, error) {
	return f.Open(value)
}

// Cipher 是基于 AES-256-GCM 的 Decryptor，同时提供加密能力供 CLI 生成密文。
type Cipher struct {
	aead cipher.AEAD
}

// NewCipher 使用十六进制编码的 32 字节密钥创建 Cipher
func NewCipher(hexKey string) (*Cipher, error) {
	key, err := hex.DecodeString(strings.TrimSpace(hexKey))
	if err != nil {
		return nil, xerrors.Wrapf(ErrInvalidKey, "decoding key: %v", err)
	}
	if len(key) != keySize {
		return nil, xerrors.Wrapf(ErrInvalidKey, "key must be %d bytes, got %d", keySize, len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, xerrors.Wrapf(ErrInvalidKey, "creating cipher: %v", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, xerrors.Wrapf(ErrInvalidKey, "creating GCM: %v", err)
	}
	return &Cipher{aead: aead}, nil
}

// Encrypt 加密明文并包装为 ENC(...) 信封，每次调用使用随机 nonce
func (c *Cipher) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", xerrors.Wrap(err, "secret: generating nonce")
	}
	sealed := c.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return envelopePrefix + base64.StdEncoding.EncodeToString(sealed) + envelopeSuffix, nil
}

// IsEncrypted 只检查信封格式，不验证内容
func (c *Cipher) IsEncrypted(value string) bool {
	return IsEnvelope(value)
}

// Decrypt 解开信封并校验、解密
func (c *Cipher) Decrypt(value string) (string, error) {
	if !IsEnvelope(value) {
		return "", xerrors.Wrap(ErrDecrypt, "value is not an ENC(...) envelope")
	}
	payload := value[len(envelopePrefix) : len(value)-len(envelopeSuffix)]

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", xerrors.Wrapf(ErrDecrypt, "decoding payload: %v", err)
	}
	nonceSize := c.aead.NonceSize()
	if len(raw) < nonceSize {
		return "", xerrors.Wrap(ErrDecrypt, "ciphertext too short")
	}
	nonce, ct := raw[:nonceSize], raw[nonceSize:]
	plain, err := c.aead.Open(nil, nonce, ct, nil)
	if err != nil {
		return "", xerrors.Wrapf(ErrDecrypt, "opening ciphertext: %v", err)
	}
	return string(plain), nil
}

// IsEnvelope 报告 value 是否为 ENC(...) 格式
func IsEnvelope(value string) bool {
	return len(value) > len(envelopePrefix)+len(envelopeSuffix) &&
		strings.HasPrefix(value, envelopePrefix) &&
		strings.HasSuffix(value, envelopeSuffix)
}

// GenerateKey 生成一个新的十六进制密钥
func GenerateKey() (string, error) {
	key := make([]byte, keySize)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return "", xerrors.Wrap(err, "secret: generating key")
	}
	return hex.EncodeToString(key), nil
}
