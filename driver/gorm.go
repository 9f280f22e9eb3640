package driver

import (
	"context"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/ceyewan/dbbridge/clog"
	"github.com/ceyewan/dbbridge/connector"
	"github.com/ceyewan/dbbridge/xerrors"
)

type gormDriver struct {
	opts *options
}

// NewGorm 返回创建 *gorm.DB 的驱动
func NewGorm(opts ...Option) connector.Driver[*gorm.DB] {
	return &gormDriver{opts: applyOptions(opts)}
}

func (d *gormDriver) Open(ctx context.Context, dsn, username, password string, options connector.Options) (*gorm.DB, error) {
	t, err := parseTarget(dsn, username, password, options)
	if err != nil {
		return nil, err
	}

	log := d.opts.logger.With(clog.String("kind", t.kind), clog.String("target", t.name()))

	// 连接池由驱动自行创建并用 ctx 探活，GORM 只接管已验证的连接池
	pool, _, err := openPool(ctx, t, log)
	if err != nil {
		return nil, err
	}

	var dialector gorm.Dialector
	switch t.kind {
	case KindMySQL:
		dialector = gormmysql.New(gormmysql.Config{Conn: pool, DSNConfig: t.mysqlConfig()})
	case KindPostgres:
		dialector = postgres.New(postgres.Config{Conn: pool})
	case KindSQLite:
		dialector = sqlite.New(sqlite.Config{Conn: pool})
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:               newGormLogger(log, d.opts.silent, d.opts.slowThreshold),
		DisableAutomaticPing: true,
	})
	if err != nil {
		_ = pool.Close()
		return nil, xerrors.Wrapf(err, "gorm driver[%s]: open failed", t.kind)
	}

	if d.opts.tracerProvider != nil {
		plugin := otelgorm.NewPlugin(
			otelgorm.WithTracerProvider(d.opts.tracerProvider),
			otelgorm.WithDBName(t.name()),
		)
		if err := db.Use(plugin); err != nil {
			_ = pool.Close()
			return nil, xerrors.Wrapf(err, "gorm driver[%s]: failed to register tracing plugin", t.kind)
		}
	}

	log.Debug("gorm handle opened")
	return db, nil
}
