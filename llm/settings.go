package llm

import (
	"maps"
	"time"
)

// ModelParams 是透传给模型的参数集合，键使用 orchestration 线上格式，
// 例如 temperature、max_tokens、top_p、frequency_penalty、presence_penalty、n。
type ModelParams map[string]any

// CallSettings 是 Provider 默认设置与单次调用设置共用的结构。
// 零值字段表示"未设置"，合并时不会覆盖对方。
type CallSettings struct {
	// ModelVersion 指定模型版本，空值由 ChatModel 决定（通常为 latest）。
	ModelVersion string `json:"model_version,omitempty" yaml:"model_version,omitempty"`
	// Timeout 单次请求超时。
	Timeout time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
	// InputParams 是模板占位符取值，整体替换而非逐键合并。
	InputParams map[string]string `json:"input_params,omitempty" yaml:"input_params,omitempty"`
	// ModelParams 独立做浅合并，覆盖方的键优先。
	ModelParams ModelParams `json:"model_params,omitempty" yaml:"model_params,omitempty"`
}

// MergeSettings 合并两份设置并返回新值，不修改入参。
//
// 顶层字段：override 中已设置的字段替换 base 的值。
// ModelParams：两边做键级并集，同名键 override 优先。
func MergeSettings(base, override CallSettings) CallSettings {
	out := base
	if override.ModelVersion != "" {
		out.ModelVersion = override.ModelVersion
	}
	if override.Timeout != 0 {
		out.Timeout = override.Timeout
	}
	if override.InputParams != nil {
		out.InputParams = override.InputParams
	}
	out.InputParams = maps.Clone(out.InputParams)
	out.ModelParams = mergeModelParams(base.ModelParams, override.ModelParams)
	return out
}

func mergeModelParams(base, override ModelParams) ModelParams {
	if len(base) == 0 && len(override) == 0 {
		return nil
	}
	out := make(ModelParams, len(base)+len(override))
	maps.Copy(out, base)
	maps.Copy(out, override)
	return out
}
