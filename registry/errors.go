package registry

import (
	"fmt"

	"github.com/ceyewan/dbbridge/xerrors"
)

var (
	// ErrConfig 注册表配置无效，例如服务名为空或重复
	ErrConfig = xerrors.New("registry: invalid config")

	// ErrUnknownService 请求的服务名未注册
	ErrUnknownService = xerrors.New("registry: unknown service")
)

// UnknownServiceError 表示 Resolve 的服务名不在注册表中
type UnknownServiceError struct {
	Name string
}

func (e *UnknownServiceError) Error() string {
	return fmt.Sprintf("registry: unknown service %q", e.Name)
}

// Is 使 errors.Is(err, ErrUnknownService) 成立
func (e *UnknownServiceError) Is(target error) bool {
	return target == ErrUnknownService
}
