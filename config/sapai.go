package config

import (
	"fmt"
	"maps"
	"os"
	"strings"

	"github.com/BaSui01/sapaicore/llm"
	"github.com/BaSui01/sapaicore/llm/providers/sapai"
	"github.com/BaSui01/sapaicore/types"
)

// Options 将配置转换为 sapai.Options；设置了 service_key_file 时读取文件内容。
// Logger、Metrics、HTTPClient 等运行时依赖由调用方补充。
func (c SAPAIConfig) Options() (sapai.Options, error) {
	serviceKey := c.ServiceKey
	if c.ServiceKeyFile != "" {
		data, err := os.ReadFile(c.ServiceKeyFile)
		if err != nil {
			return sapai.Options{}, types.NewConfigurationError(
				fmt.Sprintf("failed to read service key file %s", c.ServiceKeyFile)).WithCause(err)
		}
		serviceKey = strings.TrimSpace(string(data))
	}

	opts := sapai.Options{
		ServiceKey:     serviceKey,
		Token:          c.Token,
		DeploymentID:   c.DeploymentID,
		ResourceGroup:  c.ResourceGroup,
		BaseURL:        c.BaseURL,
		CompletionPath: c.CompletionPath,
		Headers:        maps.Clone(c.Headers),
		TokenTimeout:   c.TokenTimeout,
		DefaultSettings: llm.CallSettings{
			ModelVersion: c.ModelVersion,
			Timeout:      c.Timeout,
		},
	}
	if len(c.ModelParams) > 0 {
		opts.DefaultSettings.ModelParams = llm.ModelParams(maps.Clone(c.ModelParams))
	}
	return opts, nil
}
