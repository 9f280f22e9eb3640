package driver

import (
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/ceyewan/dbbridge/clog"
)

// Option 配置驱动的选项
type Option func(*options)

type options struct {
	logger         clog.Logger
	tracerProvider trace.TracerProvider
	silent         bool
	slowThreshold  time.Duration
}

// WithLogger 注入日志记录器，GORM 的 SQL 日志也会写入该 Logger
func WithLogger(l clog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l.WithNamespace("driver")
		}
	}
}

// WithTracing 为 GORM 句柄注册 otelgorm 插件，SQL 执行会产生 span
func WithTracing(tp trace.TracerProvider) Option {
	return func(o *options) {
		o.tracerProvider = tp
	}
}

// WithSilent 禁用 GORM 的 SQL 日志输出
// 适用于测试环境或不需要 SQL 日志的场景
func WithSilent() Option {
	return func(o *options) {
		o.silent = true
	}
}

// WithSlowThreshold 设置慢 SQL 阈值 (默认: 200ms)
func WithSlowThreshold(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.slowThreshold = d
		}
	}
}

func applyOptions(opts []Option) *options {
	o := &options{slowThreshold: 200 * time.Millisecond}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = clog.Discard()
	}
	return o
}
