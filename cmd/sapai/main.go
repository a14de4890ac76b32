// =============================================================================
// sapai 命令行入口
// =============================================================================
// 解析 SAP AI Core 凭据与端点，并发起一次 orchestration 聊天请求
//
// 使用方法:
//
//	sapai token                        # 解析凭据并显示来源与过期时间
//	sapai endpoint                     # 显示 completion 地址
//	sapai chat --model gpt-4o "hello"  # 发起一次聊天
//	sapai version                      # 显示版本信息
// =============================================================================

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/BaSui01/sapaicore/llm/providers/sapai"
	"github.com/BaSui01/sapaicore/types"
)

// =============================================================================
// 📦 版本信息（构建时注入）
// =============================================================================

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := execute(ctx, newCLI(os.Stdout, os.Stderr), os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if hint := errorHint(err); hint != "" {
			fmt.Fprintf(os.Stderr, "Hint: %s\n", hint)
		}
		stop()
		os.Exit(1)
	}
}

// errorHint 按错误类别给出排查提示
func errorHint(err error) string {
	switch {
	case types.IsConfigurationError(err):
		return "set AICORE_SERVICE_KEY, SAPAI_TOKEN or " + sapai.TokenEnvVar + ", or pass --config"
	case types.IsAuthenticationError(err):
		if e, ok := types.AsError(err); ok && e.Retryable {
			return "the token endpoint was unreachable, retry later"
		}
		return "check clientid, clientsecret and url in the service key"
	case types.IsInvalidUsageError(err):
		return "create the provider with sapai.New"
	}
	return ""
}
