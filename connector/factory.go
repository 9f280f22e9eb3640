package connector

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ceyewan/dbbridge/clog"
	"github.com/ceyewan/dbbridge/metrics"
	"github.com/ceyewan/dbbridge/secret"
	"github.com/ceyewan/dbbridge/xerrors"
)

const tracerName = "github.com/ceyewan/dbbridge/connector"

type factory[C any] struct {
	name       string
	descriptor Descriptor
	driver     Driver[C]
	transform  Transform
	encrypted  bool

	logger   clog.Logger
	tracer   trace.Tracer
	attempts metrics.Counter
	duration metrics.Histogram
}

// NewFactory 创建不做任何解密的 Factory
func NewFactory[C any](name string, d Descriptor, driver Driver[C], opts ...Option) (Factory[C], error) {
	return newFactory(name, d, driver, Identity, false, opts)
}

// NewDecryptingFactory 创建在使用字段前先经过 decryptor 的 Factory。
//
// host、database、port、username、password 中被识别为密文的值会被解密，
// 其余值原样使用。选项不参与解密。
func NewDecryptingFactory[C any](name string, d Descriptor, driver Driver[C], decryptor secret.Decryptor, opts ...Option) (Factory[C], error) {
	if decryptor == nil {
		return nil, xerrors.Wrapf(ErrConfig, "decrypting factory[%s]: decryptor is nil", name)
	}
	return newFactory(name, d, driver, DecryptTransform(decryptor), true, opts)
}

// DecryptTransform 返回"识别为密文才解密"的 Transform
func DecryptTransform(decryptor secret.Decryptor) Transform {
	return func(value string) (string, error) {
		if !decryptor.IsEncrypted(value) {
			return value, nil
		}
		return decryptor.Decrypt(value)
	}
}

func newFactory[C any](name string, d Descriptor, driver Driver[C], transform Transform, encrypted bool, opts []Option) (Factory[C], error) {
	if name == "" {
		return nil, xerrors.Wrap(ErrConfig, "factory name is empty")
	}
	if driver == nil {
		return nil, xerrors.Wrapf(ErrConfig, "factory[%s]: driver is nil", name)
	}
	if d.driver == "" {
		return nil, xerrors.Wrapf(ErrConfig, "factory[%s]: descriptor is not initialized", name)
	}

	o := applyOptions(opts)

	attempts, err := o.meter.Counter(MetricConnectTotal, "Number of connection attempts")
	if err != nil {
		return nil, xerrors.Wrapf(err, "factory[%s]: create counter", name)
	}
	duration, err := o.meter.Histogram(MetricConnectDuration, "Time spent establishing a connection")
	if err != nil {
		return nil, xerrors.Wrapf(err, "factory[%s]: create histogram", name)
	}

	return &factory[C]{
		name:       name,
		descriptor: d,
		driver:     driver,
		transform:  transform,
		encrypted:  encrypted,
		logger: o.logger.With(
			clog.String("service", name),
			clog.String("driver", d.driver),
		),
		tracer:   o.tracerProvider.Tracer(tracerName),
		attempts: attempts,
		duration: duration,
	}, nil
}

func (f *factory[C]) Name() string {
	return f.name
}

func (f *factory[C]) Descriptor() Descriptor {
	return f.descriptor
}

func (f *factory[C]) Encrypted() bool {
	return f.encrypted
}

// Connect 每次调用都会请求 Driver 创建新连接，不做缓存和重试
func (f *factory[C]) Connect(ctx context.Context) (C, error) {
	ctx, span := f.tracer.Start(ctx, "connector.Connect", trace.WithAttributes(
		attribute.String("db.system", f.descriptor.driver),
		attribute.String("dbbridge.service", f.name),
		attribute.Bool("dbbridge.encrypted", f.encrypted),
	))
	defer span.End()

	start := time.Now()
	f.logger.DebugContext(ctx, "connecting", clog.String("dsn", f.descriptor.String()))

	conn, err := f.connect(ctx)

	outcome := metrics.OutcomeSuccess
	if err != nil {
		outcome = metrics.OutcomeError
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		f.logger.ErrorContext(ctx, "connect failed",
			clog.Error(err),
			clog.Duration("elapsed", time.Since(start)))
	} else {
		f.logger.InfoContext(ctx, "connected", clog.Duration("elapsed", time.Since(start)))
	}

	labels := []metrics.Label{
		metrics.L(LabelService, f.name),
		metrics.L(LabelOutcome, outcome),
	}
	f.attempts.Inc(ctx, labels...)
	f.duration.Record(ctx, time.Since(start).Seconds(), labels...)

	return conn, err
}

func (f *factory[C]) connect(ctx context.Context) (C, error) {
	var zero C

	dsn, err := BuildDSN(f.descriptor, f.transform)
	if err != nil {
		return zero, f.fail(err)
	}
	username, err := f.transform(f.descriptor.username)
	if err != nil {
		return zero, f.fail(xerrors.Wrap(err, "transform username"))
	}
	password, err := f.transform(f.descriptor.password)
	if err != nil {
		return zero, f.fail(xerrors.Wrap(err, "transform password"))
	}

	conn, err := f.driver.Open(ctx, dsn, username, password, f.descriptor.options)
	if err != nil {
		return zero, f.fail(err)
	}
	return conn, nil
}

func (f *factory[C]) fail(cause error) error {
	target := f.descriptor.database
	if target == "" {
		target = f.name
	}
	return &ConnectionError{Target: target, Cause: cause}
}
