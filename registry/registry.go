// Package registry 把逻辑服务名映射到连接工厂。
//
// 注册表在启动阶段一次性构建，之后只读：
//
//	reg, err := registry.New([]registry.Entry[*gorm.DB]{
//		{Name: "testDb", Factory: testDbFactory},
//		{Name: "terms", Factory: termsFactory},
//	}, registry.WithLogger(logger))
//
//	db, err := reg.Resolve(ctx, "testDb")
//	if errors.Is(err, registry.ErrUnknownService) { ... }
//	if errors.Is(err, connector.ErrConnection) { ... }
//
// 也可以通过 Build 从配置构建，见 Config。
//
// Registry 不缓存连接，每次 Resolve 都会创建新连接，句柄归调用方所有。
// 构建完成后的 Registry 可被多个协程并发读取，无需加锁。
package registry

import (
	"context"

	"github.com/ceyewan/dbbridge/clog"
	"github.com/ceyewan/dbbridge/connector"
	"github.com/ceyewan/dbbridge/xerrors"
)

// Entry 注册表中的一项
type Entry[C any] struct {
	Name    string
	Factory connector.Factory[C]
}

// Registry 服务名到连接工厂的只读映射
type Registry[C any] struct {
	factories map[string]connector.Factory[C]
	names     []string
	logger    clog.Logger
}

// New 创建注册表，服务名为空、重复或 Factory 为 nil 时返回 ErrConfig
func New[C any](entries []Entry[C], opts ...Option) (*Registry[C], error) {
	o := applyOptions(opts)

	r := &Registry[C]{
		factories: make(map[string]connector.Factory[C], len(entries)),
		names:     make([]string, 0, len(entries)),
		logger:    o.logger.WithNamespace("registry"),
	}

	for i, e := range entries {
		if e.Name == "" {
			return nil, xerrors.Wrapf(ErrConfig, "entry %d: name is empty", i)
		}
		if e.Factory == nil {
			return nil, xerrors.Wrapf(ErrConfig, "entry %q: factory is nil", e.Name)
		}
		if _, dup := r.factories[e.Name]; dup {
			return nil, xerrors.Wrapf(ErrConfig, "entry %q: duplicate name", e.Name)
		}
		r.factories[e.Name] = e.Factory
		r.names = append(r.names, e.Name)
	}

	r.logger.Info("registry ready", clog.Int("services", len(r.names)))
	return r, nil
}

// Resolve 为 name 创建一个新连接。
//
// name 未注册时返回 *UnknownServiceError，不会调用任何驱动；
// 连接失败时原样返回 Factory 的 *connector.ConnectionError。
func (r *Registry[C]) Resolve(ctx context.Context, name string) (C, error) {
	f, ok := r.factories[name]
	if !ok {
		var zero C
		r.logger.WarnContext(ctx, "unknown service requested", clog.String("service", name))
		return zero, &UnknownServiceError{Name: name}
	}
	return f.Connect(ctx)
}

// Names 按注册顺序返回所有服务名的副本
func (r *Registry[C]) Names() []string {
	names := make([]string, len(r.names))
	copy(names, r.names)
	return names
}

// Has 报告 name 是否已注册
func (r *Registry[C]) Has(name string) bool {
	_, ok := r.factories[name]
	return ok
}

// Len 返回已注册的服务数量
func (r *Registry[C]) Len() int {
	return len(r.names)
}

// Factory 返回 name 对应的工厂，用于查看配置而不建立连接
func (r *Registry[C]) Factory(name string) (connector.Factory[C], bool) {
	f, ok := r.factories[name]
	return f, ok
}
