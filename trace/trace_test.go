package trace

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/ceyewan/dbbridge/xerrors"
)

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "default", mutate: func(*Config) {}},
		{name: "simple batcher", mutate: func(c *Config) { c.Batcher = "simple" }},
		{name: "empty batcher", mutate: func(c *Config) { c.Batcher = "" }},
		{name: "missing service name", mutate: func(c *Config) { c.ServiceName = "" }, wantErr: true},
		{name: "missing endpoint", mutate: func(c *Config) { c.Endpoint = "" }, wantErr: true},
		{name: "sampler too large", mutate: func(c *Config) { c.Sampler = 1.5 }, wantErr: true},
		{name: "negative sampler", mutate: func(c *Config) { c.Sampler = -0.1 }, wantErr: true},
		{name: "unknown batcher", mutate: func(c *Config) { c.Batcher = "async" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig("dbbridge-test")
			tt.mutate(cfg)
			err := validateConfig(cfg)
			if tt.wantErr {
				assert.True(t, xerrors.Is(err, xerrors.ErrInvalidInput))
				return
			}
			assert.NoError(t, err)
		})
	}

	assert.Error(t, validateConfig(nil))
}

func TestInitInstallsGlobalProvider(t *testing.T) {
	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	cfg := DefaultConfig("dbbridge-test")
	cfg.Endpoint = "127.0.0.1:4317"

	shutdown, err := Init(cfg)
	require.NoError(t, err)
	_, ok := otel.GetTracerProvider().(*sdktrace.TracerProvider)
	assert.True(t, ok)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_ = shutdown(ctx)
}

func TestInitRejectsInvalidConfig(t *testing.T) {
	_, err := Init(&Config{ServiceName: "x"})
	assert.Error(t, err)
}
