package driver

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/ceyewan/dbbridge/clog"
	"github.com/ceyewan/dbbridge/connector"
)

type sqlDriver struct {
	opts *options
}

// NewSQL 返回创建 *sqlx.DB 的驱动
func NewSQL(opts ...Option) connector.Driver[*sqlx.DB] {
	return &sqlDriver{opts: applyOptions(opts)}
}

func (d *sqlDriver) Open(ctx context.Context, dsn, username, password string, options connector.Options) (*sqlx.DB, error) {
	t, err := parseTarget(dsn, username, password, options)
	if err != nil {
		return nil, err
	}

	log := d.opts.logger.With(clog.String("kind", t.kind), clog.String("target", t.name()))

	pool, driverName, err := openPool(ctx, t, log)
	if err != nil {
		return nil, err
	}

	log.Debug("sql handle opened")
	return sqlx.NewDb(pool, driverName), nil
}
