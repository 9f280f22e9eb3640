package registry

import (
	"github.com/ceyewan/dbbridge/connector"
	"github.com/ceyewan/dbbridge/xerrors"
)

// Config 注册表配置
//
// 典型配置示例（YAML）：
//
//	databases:
//	  services:
//	    - name: testDb
//	      host: 127.0.0.1
//	      port: "3306"
//	      database: testDb
//	      username: root
//	    - name: terms
//	      encrypted: true
//	      host: ENC(...)
//	      database: terms
//	      username: ENC(...)
//	      password: ENC(...)
type Config struct {
	Services []ServiceConfig `mapstructure:"services"`
}

// ConfigKey 注册表配置在配置文件中的键
const ConfigKey = "databases"

// ServiceConfig 一个服务的配置
type ServiceConfig struct {
	// Name 逻辑服务名 [必填]
	Name string `mapstructure:"name"`

	// Encrypted 为 true 时字段在使用前经过解密，需要 WithDecryptor
	Encrypted bool `mapstructure:"encrypted"`

	connector.DescriptorConfig `mapstructure:",squash"`
}

// Build 根据配置为每个服务创建 Factory 并组装为 Registry。
//
// 任一服务配置无效时整体失败，不会返回部分构建的注册表。
func Build[C any](cfg *Config, driver connector.Driver[C], opts ...Option) (*Registry[C], error) {
	if cfg == nil {
		return nil, xerrors.Wrap(ErrConfig, "config is nil")
	}
	if driver == nil {
		return nil, xerrors.Wrap(ErrConfig, "driver is nil")
	}

	o := applyOptions(opts)
	factoryOpts := o.connectorOptions()

	entries := make([]Entry[C], 0, len(cfg.Services))
	for i := range cfg.Services {
		svc := &cfg.Services[i]

		d, err := connector.NewDescriptor(&svc.DescriptorConfig)
		if err != nil {
			return nil, serviceError(svc.Name, err)
		}

		var f connector.Factory[C]
		if svc.Encrypted {
			if o.decryptor == nil {
				return nil, xerrors.Wrapf(ErrConfig, "service %q: encrypted but no decryptor configured", svc.Name)
			}
			f, err = connector.NewDecryptingFactory(svc.Name, d, driver, o.decryptor, factoryOpts...)
		} else {
			f, err = connector.NewFactory(svc.Name, d, driver, factoryOpts...)
		}
		if err != nil {
			return nil, serviceError(svc.Name, err)
		}

		entries = append(entries, Entry[C]{Name: svc.Name, Factory: f})
	}

	return New(entries, opts...)
}

// serviceError 标记为注册表配置错误，同时保留底层错误链
func serviceError(name string, err error) error {
	return xerrors.Join(ErrConfig, xerrors.Wrapf(err, "service %q", name))
}
