package driver

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	mysqldrv "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"

	"github.com/ceyewan/dbbridge/clog"
	"github.com/ceyewan/dbbridge/xerrors"
)

// database/sql 中注册的驱动名
const (
	sqlDriverMySQL    = "mysql"
	sqlDriverPostgres = "pgx"
	sqlDriverSQLite   = "sqlite3"
)

// openPool 创建 *sql.DB 并用 ctx 完成唯一一次 Ping，失败时关闭连接池
func openPool(ctx context.Context, t *target, log clog.Logger) (*sql.DB, string, error) {
	var (
		db         *sql.DB
		driverName string
		err        error
	)
	switch t.kind {
	case KindMySQL:
		driverName = sqlDriverMySQL
		cfg := t.mysqlConfig()
		cfg.Logger = mysqlLogger{log: log}
		c, cerr := mysqldrv.NewConnector(cfg)
		if cerr != nil {
			return nil, "", xerrors.Wrapf(cerr, "driver[%s]: open failed", t.kind)
		}
		db = sql.OpenDB(c)
	case KindPostgres:
		driverName = sqlDriverPostgres
		db, err = sql.Open(driverName, t.postgresDSN())
	case KindSQLite:
		driverName = sqlDriverSQLite
		db, err = sql.Open(driverName, t.sqliteDSN())
	default:
		return nil, "", xerrors.Wrapf(ErrUnsupportedDriver, "%q", t.kind)
	}
	if err != nil {
		return nil, "", xerrors.Wrapf(err, "driver[%s]: open failed", t.kind)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, "", xerrors.Wrapf(err, "driver[%s]: ping failed", t.kind)
	}
	return db, driverName, nil
}

// mysqlLogger 将 go-sql-driver 的内部日志写入 clog
type mysqlLogger struct {
	log clog.Logger
}

func (l mysqlLogger) Print(v ...any) {
	l.log.Warn(strings.TrimSpace(fmt.Sprint(v...)), clog.String("component", "go-sql-driver"))
}
