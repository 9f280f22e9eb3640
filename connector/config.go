package connector

import (
	"strings"

	"github.com/ceyewan/dbbridge/xerrors"
)

const (
	defaultDriver  = "mysql"
	defaultHost    = "127.0.0.1"
	defaultCharset = "utf8mb4"
)

// OptionEntry 一个连接选项，使用列表形式以保留配置中的顺序
type OptionEntry struct {
	Key   string `mapstructure:"key"`
	Value string `mapstructure:"value"`
}

// DescriptorConfig 数据库连接配置
//
// 典型配置示例（YAML）：
//
//	driver: mysql
//	host: 127.0.0.1
//	port: "3306"
//	database: testDb
//	username: ENC(...)
//	password: ENC(...)
//	options:
//	  - key: charset
//	    value: utf8mb4
type DescriptorConfig struct {
	Driver   string `mapstructure:"driver"`   // 驱动类型 (默认: "mysql")
	Host     string `mapstructure:"host"`     // 主机地址 (默认: "127.0.0.1")
	Port     string `mapstructure:"port"`     // 端口 (可选，空则不写入连接串，不默认 3306，由驱动决定默认端口)
	Database string `mapstructure:"database"` // 库名 (可选，空则不写入连接串)
	Username string `mapstructure:"username"` // 用户名
	Password string `mapstructure:"password"` // 密码

	// Options 连接选项 (默认: charset=utf8mb4)
	// 显式配置为空列表表示不追加任何选项
	Options []OptionEntry `mapstructure:"options"`
}

// setDefaults 设置默认值
func (c *DescriptorConfig) setDefaults() {
	if c.Driver == "" {
		c.Driver = defaultDriver
	}
	if c.Host == "" {
		c.Host = defaultHost
	}
	if c.Options == nil {
		c.Options = []OptionEntry{{Key: "charset", Value: defaultCharset}}
	}
}

// validate 检查配置能否拼接为可解析的连接串
func (c *DescriptorConfig) validate() error {
	if strings.ContainsAny(c.Driver, ":;=") {
		return xerrors.Wrapf(ErrConfig, "驱动类型 %q 不能包含 ':' ';' '='", c.Driver)
	}
	for _, opt := range c.Options {
		if opt.Key == "" {
			return xerrors.Wrapf(ErrConfig, "选项键不能为空")
		}
		if strings.ContainsAny(opt.Key, ";=") {
			return xerrors.Wrapf(ErrConfig, "选项键 %q 不能包含 ';' 或 '='", opt.Key)
		}
		if strings.Contains(opt.Value, ";") {
			return xerrors.Wrapf(ErrConfig, "选项 %q 的值不能包含 ';'", opt.Key)
		}
	}
	return nil
}

// NewDescriptor 根据配置构造 Descriptor，不修改传入的配置
func NewDescriptor(cfg *DescriptorConfig) (Descriptor, error) {
	if cfg == nil {
		return Descriptor{}, xerrors.Wrap(ErrConfig, "config is nil")
	}

	c := *cfg
	c.setDefaults()
	if err := c.validate(); err != nil {
		return Descriptor{}, err
	}

	var opts Options
	for _, opt := range c.Options {
		opts.set(opt.Key, opt.Value)
	}

	return Descriptor{
		driver:   c.Driver,
		host:     c.Host,
		port:     c.Port,
		database: c.Database,
		username: c.Username,
		password: c.Password,
		options:  opts,
	}, nil
}

// MustDescriptor 类似 NewDescriptor，但出错时 panic，仅用于初始化和测试
func MustDescriptor(cfg *DescriptorConfig) Descriptor {
	return xerrors.Must(NewDescriptor(cfg))
}
