package connector

import (
	"fmt"

	"github.com/ceyewan/dbbridge/xerrors"
)

// Sentinel Errors - 连接器专用的哨兵错误
var (
	ErrConfig     = xerrors.New("connector: invalid config")
	ErrConnection = xerrors.New("connector: connection failed")
	ErrInvalidDSN = xerrors.New("connector: invalid dsn")
)

// ConnectionError 表示 Factory 未能建立连接。
//
// Target 为库名，库名为空时为服务名。Cause 保留原始错误，
// 解密失败时可通过 errors.Is(err, secret.ErrDecrypt) 识别。
type ConnectionError struct {
	Target string
	Cause  error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connector: failed to connect to %s: %v", e.Target, e.Cause)
}

func (e *ConnectionError) Unwrap() error {
	return e.Cause
}

// Is 使 errors.Is(err, ErrConnection) 成立
func (e *ConnectionError) Is(target error) bool {
	return target == ErrConnection
}
