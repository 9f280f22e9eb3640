// Package cli 实现 dbbridge 命令行工具。
//
// 配置文件示例（dbbridge.yaml）：
//
//	log:
//	  level: info
//	  format: console
//	  output: stderr
//	secret:
//	  key: ""            # 建议通过 DBBRIDGE_SECRET_KEY 提供
//	trace:
//	  endpoint: ""       # 为空时不启用链路追踪
//	databases:
//	  services:
//	    - name: testDb
//	      host: 127.0.0.1
//	      port: "3306"
//	      database: testDb
//	      username: root
//	    - name: terms
//	      encrypted: true
//	      host: 127.0.0.1
//	      database: terms
//	      username: ENC(...)
//	      password: ENC(...)
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ceyewan/dbbridge/xerrors"
)

// 退出码
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 2
)

// 错误码，用于区分退出码
const (
	codeCheckFailed = "CHECK_FAILED"
)

// rootFlags 全局参数
type rootFlags struct {
	configName  string
	configPaths []string
	envPrefix   string
	secretKey   string
}

// NewRootCommand 创建根命令，out 和 errOut 分别接收命令输出和错误信息
func NewRootCommand(out, errOut io.Writer) *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:           "dbbridge",
		Short:         "Inspect and verify named database connections",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.SetErr(errOut)

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configName, "config-name", "dbbridge", "config file name without extension")
	pf.StringSliceVar(&flags.configPaths, "config-path", []string{".", "./config"}, "config search paths")
	pf.StringVar(&flags.envPrefix, "env-prefix", "DBBRIDGE", "environment variable prefix")
	pf.StringVar(&flags.secretKey, "secret-key", "", "hex encoded AES-256 key (default $DBBRIDGE_SECRET_KEY)")

	root.AddCommand(
		newListCommand(flags),
		newDSNCommand(flags),
		newCheckCommand(flags),
		newEncryptCommand(flags),
		newKeygenCommand(),
	)
	return root
}

// Execute 运行命令行并返回退出码
func Execute(args []string) int {
	root := NewRootCommand(os.Stdout, os.Stderr)
	root.SetArgs(args)

	err := root.Execute()
	if err == nil {
		return ExitOK
	}

	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	if xerrors.GetCode(err) == codeCheckFailed {
		return ExitFailure
	}
	return ExitUsage
}
