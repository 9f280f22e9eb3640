package registry

import (
	"go.opentelemetry.io/otel/trace"

	"github.com/ceyewan/dbbridge/clog"
	"github.com/ceyewan/dbbridge/connector"
	"github.com/ceyewan/dbbridge/metrics"
	"github.com/ceyewan/dbbridge/secret"
)

// Option 组件初始化选项函数
type Option func(*options)

// options 选项结构
type options struct {
	logger         clog.Logger
	meter          metrics.Meter
	tracerProvider trace.TracerProvider
	decryptor      secret.Decryptor
}

// WithLogger 注入日志记录器
// 组件内部会自动追加 "registry" namespace，Build 创建的 Factory 使用 "connector" namespace
func WithLogger(l clog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMeter 注入指标收集器，传递给 Build 创建的 Factory
func WithMeter(m metrics.Meter) Option {
	return func(o *options) {
		o.meter = m
	}
}

// WithTracer 注入 TracerProvider，传递给 Build 创建的 Factory
func WithTracer(tp trace.TracerProvider) Option {
	return func(o *options) {
		o.tracerProvider = tp
	}
}

// WithDecryptor 设置 Build 中 encrypted 服务使用的解密器
func WithDecryptor(d secret.Decryptor) Option {
	return func(o *options) {
		o.decryptor = d
	}
}

func applyOptions(opts []Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = clog.Discard()
	}
	return o
}

// connectorOptions 把注册表的选项转换为 Factory 选项
func (o *options) connectorOptions() []connector.Option {
	opts := []connector.Option{connector.WithLogger(o.logger)}
	if o.meter != nil {
		opts = append(opts, connector.WithMeter(o.meter))
	}
	if o.tracerProvider != nil {
		opts = append(opts, connector.WithTracer(o.tracerProvider))
	}
	return opts
}
