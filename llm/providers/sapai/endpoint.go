package sapai

import "strings"

// Endpoint 是解析后的请求地址与资源组
type Endpoint struct {
	BaseURL       string
	CompletionURL string
	DeploymentID  string
	ResourceGroup string
}

// ResolveBaseURL 选择 API base URL。显式值优先（去掉结尾斜杠），
// 其次是 service key 的 {AI_API_URL}/v2，最后是 DefaultBaseURL。
func ResolveBaseURL(explicit string, key *ServiceKey) string {
	if explicit != "" {
		return strings.TrimRight(explicit, "/")
	}
	if api := key.APIURL(); api != "" {
		return api + "/v2"
	}
	return DefaultBaseURL
}

// ResolveCompletionURL 拼接 completion 地址。completionPath 非空时原样追加，
// 否则使用部署路径。
func ResolveCompletionURL(baseURL, deploymentID, completionPath string) string {
	if completionPath != "" {
		return baseURL + completionPath
	}
	if deploymentID == "" {
		deploymentID = DefaultDeploymentID
	}
	return baseURL + "/inference/deployments/" + deploymentID + "/v2/completion"
}

// ResolveEndpoint 根据选项与（可选的）service key 解析完整端点。
func ResolveEndpoint(opts Options, key *ServiceKey) Endpoint {
	deploymentID := opts.DeploymentID
	if deploymentID == "" {
		deploymentID = DefaultDeploymentID
	}
	resourceGroup := opts.ResourceGroup
	if resourceGroup == "" {
		resourceGroup = DefaultResourceGroup
	}
	base := ResolveBaseURL(opts.BaseURL, key)
	return Endpoint{
		BaseURL:       base,
		CompletionURL: ResolveCompletionURL(base, deploymentID, opts.CompletionPath),
		DeploymentID:  deploymentID,
		ResourceGroup: resourceGroup,
	}
}
