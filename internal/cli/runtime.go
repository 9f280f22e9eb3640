package cli

import (
	"context"

	"gorm.io/gorm"

	"github.com/ceyewan/dbbridge/clog"
	"github.com/ceyewan/dbbridge/config"
	"github.com/ceyewan/dbbridge/driver"
	"github.com/ceyewan/dbbridge/registry"
	"github.com/ceyewan/dbbridge/secret"
	"github.com/ceyewan/dbbridge/trace"
	"github.com/ceyewan/dbbridge/xerrors"
)

// 配置键
const (
	keyLog       = "log"
	keyTrace     = "trace"
	keySecretKey = "secret.key"
)

// runtime 一次命令执行所需的全部依赖
type runtime struct {
	logger   clog.Logger
	registry *registry.Registry[*gorm.DB]
	shutdown func(context.Context) error
}

func (r *runtime) Close(ctx context.Context) {
	if r.shutdown != nil {
		_ = r.shutdown(ctx)
	}
	r.logger.Flush()
}

func (f *rootFlags) newLoader() (config.Loader, error) {
	return config.New(
		config.WithConfigName(f.configName),
		config.WithConfigPaths(f.configPaths...),
		config.WithEnvPrefix(f.envPrefix),
	)
}

// resolveSecretKey 按 --secret-key、环境变量、配置文件的顺序读取密钥，不要求存在配置文件
func (f *rootFlags) resolveSecretKey(ctx context.Context) (string, error) {
	if f.secretKey != "" {
		return f.secretKey, nil
	}
	loader, err := f.newLoader()
	if err != nil {
		return "", err
	}
	if err := loader.Load(ctx); err != nil && !config.IsValidationError(err) {
		return "", err
	}
	return loader.GetString(keySecretKey), nil
}

// load 加载配置并构建注册表
func (f *rootFlags) load(ctx context.Context) (*runtime, error) {
	loader, err := f.newLoader()
	if err != nil {
		return nil, err
	}
	if err := loader.Load(ctx); err != nil {
		return nil, err
	}

	logCfg := clog.NewProdDefaultConfig()
	logCfg.Output = "stderr"
	if loader.Get(keyLog) != nil {
		if err := loader.UnmarshalKey(keyLog, logCfg); err != nil {
			return nil, xerrors.Wrap(err, "invalid log config")
		}
	}
	logger, err := clog.New(logCfg, clog.WithNamespace("dbbridge"))
	if err != nil {
		return nil, err
	}

	rt := &runtime{logger: logger}

	if loader.Get(keyTrace) != nil {
		traceCfg := trace.DefaultConfig("dbbridge")
		if err := loader.UnmarshalKey(keyTrace, traceCfg); err != nil {
			return nil, xerrors.Wrap(err, "invalid trace config")
		}
		if traceCfg.Endpoint != "" {
			shutdown, err := trace.Init(traceCfg)
			if err != nil {
				return nil, err
			}
			rt.shutdown = shutdown
		}
	}

	decryptor, err := f.decryptor(loader.GetString(keySecretKey))
	if err != nil {
		return nil, err
	}

	var regCfg registry.Config
	if err := loader.UnmarshalKey(registry.ConfigKey, &regCfg); err != nil {
		return nil, xerrors.Wrap(err, "invalid databases config")
	}

	rt.registry, err = registry.Build(&regCfg,
		driver.NewGorm(driver.WithLogger(logger), driver.WithSilent()),
		registry.WithLogger(logger),
		registry.WithDecryptor(decryptor),
	)
	if err != nil {
		return nil, err
	}

	logger.Debug("config loaded",
		clog.String("file", loader.ConfigFileUsed()),
		clog.Int("services", rt.registry.Len()))
	return rt, nil
}

// decryptor 有密钥时返回 Cipher；没有密钥时 list、dsn 仍可使用，
// 只有真正连接加密服务时才会失败
func (f *rootFlags) decryptor(configured string) (secret.Decryptor, error) {
	key := f.secretKey
	if key == "" {
		key = configured
	}
	if key != "" {
		return secret.NewCipher(key)
	}
	return secret.DecryptorFunc{
		Match: secret.IsEnvelope,
		Open: func(string) (string, error) {
			return "", xerrors.Wrap(secret.ErrDecrypt, "no secret key configured")
		},
	}, nil
}
