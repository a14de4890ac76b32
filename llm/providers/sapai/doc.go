// Copyright (c) AgentFlow Authors.
// Licensed under the MIT License.

/*
Package sapai 提供 SAP AI Core 的凭据解析与模型工厂。

# 凭据

凭据按以下优先级解析：

 1. Options.Token：原样作为 Bearer token；
 2. Options.ServiceKey / ServiceKeyBundle：通过 OAuth2 client-credentials
    向 {url}/oauth/token 换取 access token；
 3. Options.TokenSource：默认读取环境变量 SAP_AI_TOKEN。

# 端点

base URL 依次取显式 BaseURL、service key 的 {AI_API_URL}/v2、
DefaultBaseURL；completion 地址为
{baseURL}/inference/deployments/{deploymentID}/v2/completion，
或 baseURL + CompletionPath。

# 使用

	p, err := sapai.New(ctx, sapai.Options{ServiceKey: os.Getenv("AICORE_SERVICE_KEY")})
	if err != nil {
		return err
	}
	model, err := p.Model("gpt-4o", llm.CallSettings{
		ModelParams: llm.ModelParams{"temperature": 0.2},
	})

Default 返回一个延迟解析的进程级 Provider，引用它不会失败，
首次 Model/Chat 调用时才读取 SAP_AI_TOKEN。
*/
package sapai
