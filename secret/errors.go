package secret

import "github.com/ceyewan/dbbridge/xerrors"

var (
	// ErrInvalidKey 密钥格式或长度不正确
	ErrInvalidKey = xerrors.New("secret: invalid key")

	// ErrDecrypt 被识别为密文的值无法解密
	ErrDecrypt = xerrors.New("secret: decryption failed")
)
