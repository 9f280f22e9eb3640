// Package driver 提供 connector.Driver 的具体实现。
//
// 驱动读取 connector.BuildDSN 生成的连接串，转换为各数据库的原生连接串后建立连接：
//
//	mysql:host=127.0.0.1;dbname=testDb;port=3306;charset=utf8mb4
//	  -> root:pw@tcp(127.0.0.1:3306)/testDb?parseTime=true&charset=utf8mb4
//
//	pgsql:host=db;dbname=terms;sslmode=disable
//	  -> host=db port=5432 user=app dbname=terms sslmode=disable client_encoding=UTF8
//
//	sqlite:host=localhost;dbname=/data/app.db
//	  -> /data/app.db
//
// 支持的驱动类型：mysql、pgsql（别名 postgres、postgresql）、sqlite（别名 sqlite3）。
//
// 两种句柄：
//   - NewGorm 返回 *gorm.DB，可选 otelgorm 链路追踪和 clog 日志
//   - NewSQL 返回 *sqlx.DB
//
// 驱动每次 Open 都创建新的连接池并 Ping 一次，连接池参数保持驱动默认值。
// 句柄归调用方所有，用完后需要关闭底层 *sql.DB。
package driver

import (
	"strings"

	"github.com/ceyewan/dbbridge/connector"
	"github.com/ceyewan/dbbridge/xerrors"
)

// 规范化后的驱动类型
const (
	KindMySQL    = "mysql"
	KindPostgres = "pgsql"
	KindSQLite   = "sqlite"
)

// ErrUnsupportedDriver 连接串中的驱动类型不受支持
var ErrUnsupportedDriver = xerrors.New("driver: unsupported driver")

// NormalizeKind 把驱动类型别名规范化，不支持时返回 ErrUnsupportedDriver
func NormalizeKind(kind string) (string, error) {
	switch strings.ToLower(kind) {
	case "mysql":
		return KindMySQL, nil
	case "pgsql", "postgres", "postgresql":
		return KindPostgres, nil
	case "sqlite", "sqlite3":
		return KindSQLite, nil
	default:
		return "", xerrors.Wrapf(ErrUnsupportedDriver, "%q", kind)
	}
}

// target 一次连接所需的全部信息
type target struct {
	kind     string
	host     string
	port     string
	database string
	username string
	password string
	options  connector.Options
}

func parseTarget(dsn, username, password string, options connector.Options) (*target, error) {
	parsed, err := connector.ParseDSN(dsn)
	if err != nil {
		return nil, err
	}
	kind, err := NormalizeKind(parsed.Driver)
	if err != nil {
		return nil, err
	}

	// 连接串中的选项与 options 一致，options 为空时以连接串为准
	if options.Len() == 0 {
		options = parsed.Extra()
	}

	return &target{
		kind:     kind,
		host:     parsed.Host(),
		port:     parsed.Port(),
		database: parsed.Database(),
		username: username,
		password: password,
		options:  options,
	}, nil
}

func (t *target) name() string {
	if t.database != "" {
		return t.database
	}
	return t.host
}
