// =============================================================================
// 📦 默认配置
// =============================================================================
// 提供所有配置项的合理默认值
// =============================================================================
package config

import (
	"time"

	"github.com/BaSui01/sapaicore/llm/providers/sapai"
)

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		SAPAI:     DefaultSAPAIConfig(),
		Log:       DefaultLogConfig(),
		Metrics:   DefaultMetricsConfig(),
		Telemetry: DefaultTelemetryConfig(),
	}
}

// DefaultSAPAIConfig 返回默认 SAP AI 配置；凭据与 base URL 留空，由解析链决定
func DefaultSAPAIConfig() SAPAIConfig {
	return SAPAIConfig{
		DeploymentID:  sapai.DefaultDeploymentID,
		ResourceGroup: sapai.DefaultResourceGroup,
		TokenTimeout:  30 * time.Second,
		Timeout:       2 * time.Minute,
	}
}

// DefaultLogConfig 返回默认日志配置
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:            "info",
		Format:           "console",
		OutputPaths:      []string{"stderr"},
		EnableCaller:     false,
		EnableStacktrace: false,
	}
}

// DefaultMetricsConfig 返回默认指标配置
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Enabled:   false,
		Namespace: "sapai",
	}
}

// DefaultTelemetryConfig 返回默认遥测配置
func DefaultTelemetryConfig() TelemetryConfig {
	return TelemetryConfig{
		Enabled:      false,
		OTLPEndpoint: "localhost:4317",
		Insecure:     true,
		ServiceName:  "sapai",
		SampleRate:   0.1,
	}
}
