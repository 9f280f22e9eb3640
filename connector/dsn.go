package connector

import (
	"strings"

	"github.com/ceyewan/dbbridge/xerrors"
)

// 连接串中的固定参数名
const (
	ParamHost     = "host"
	ParamDatabase = "dbname"
	ParamPort     = "port"
)

// Transform 在字段进入连接串或驱动之前对其取值做变换
type Transform func(value string) (string, error)

// Identity 原样返回
func Identity(value string) (string, error) {
	return value, nil
}

// BuildDSN 按以下顺序拼接连接串：
//
//  1. "{driver}:host={transform(host)}"
//  2. 库名非空时追加 ";dbname={transform(database)}"
//  3. 端口非空时追加 ";port={transform(port)}"
//  4. 按插入顺序追加每个选项 ";{key}={value}"，选项不经过 transform
//
// 不做任何转义。transform 为 nil 时等同于 Identity。
func BuildDSN(d Descriptor, transform Transform) (string, error) {
	if transform == nil {
		transform = Identity
	}

	host, err := transform(d.host)
	if err != nil {
		return "", xerrors.Wrap(err, "transform host")
	}

	var b strings.Builder
	b.WriteString(d.driver)
	b.WriteString(":" + ParamHost + "=")
	b.WriteString(host)

	if d.database != "" {
		database, err := transform(d.database)
		if err != nil {
			return "", xerrors.Wrap(err, "transform dbname")
		}
		b.WriteString(";" + ParamDatabase + "=")
		b.WriteString(database)
	}

	if d.port != "" {
		port, err := transform(d.port)
		if err != nil {
			return "", xerrors.Wrap(err, "transform port")
		}
		b.WriteString(";" + ParamPort + "=")
		b.WriteString(port)
	}

	d.options.Each(func(key, value string) bool {
		b.WriteString(";")
		b.WriteString(key)
		b.WriteString("=")
		b.WriteString(value)
		return true
	})

	return b.String(), nil
}

// DSN 解析后的连接串
type DSN struct {
	// Driver 冒号之前的驱动类型
	Driver string

	// Params 按出现顺序保存的全部参数，包括 host、dbname、port
	Params Options
}

// Host 返回 host 参数
func (d *DSN) Host() string {
	v, _ := d.Params.Get(ParamHost)
	return v
}

// Database 返回 dbname 参数
func (d *DSN) Database() string {
	v, _ := d.Params.Get(ParamDatabase)
	return v
}

// Port 返回 port 参数
func (d *DSN) Port() string {
	v, _ := d.Params.Get(ParamPort)
	return v
}

// Extra 返回除 host、dbname、port 之外的参数，顺序不变
func (d *DSN) Extra() Options {
	var extra Options
	d.Params.Each(func(key, value string) bool {
		switch key {
		case ParamHost, ParamDatabase, ParamPort:
		default:
			extra.set(key, value)
		}
		return true
	})
	return extra
}

// ParseDSN 解析 BuildDSN 生成的连接串，供驱动实现使用。
//
// 参数值中第一个 '=' 之后的内容原样保留；重复的参数以最后一次为准。
func ParseDSN(dsn string) (*DSN, error) {
	driver, rest, ok := strings.Cut(dsn, ":")
	if !ok || driver == "" {
		return nil, xerrors.Wrapf(ErrInvalidDSN, "missing driver in %q", dsn)
	}
	if rest == "" {
		return nil, xerrors.Wrapf(ErrInvalidDSN, "no parameters in %q", dsn)
	}

	parsed := &DSN{Driver: driver}
	for _, segment := range strings.Split(rest, ";") {
		key, value, ok := strings.Cut(segment, "=")
		if !ok {
			return nil, xerrors.Wrapf(ErrInvalidDSN, "segment %q has no '='", segment)
		}
		if key == "" {
			return nil, xerrors.Wrapf(ErrInvalidDSN, "segment %q has empty key", segment)
		}
		parsed.Params.set(key, value)
	}
	return parsed, nil
}
