package config

import "github.com/ceyewan/dbbridge/xerrors"

// ErrValidationFailed 配置验证失败
var ErrValidationFailed = xerrors.New("config: validation failed")

// IsValidationError 检查错误是否为配置验证失败
func IsValidationError(err error) bool {
	return xerrors.Is(err, ErrValidationFailed)
}
