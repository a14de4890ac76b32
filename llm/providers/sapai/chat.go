package sapai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/BaSui01/sapaicore/internal/tlsutil"
	"github.com/BaSui01/sapaicore/llm"
	"github.com/BaSui01/sapaicore/llm/providers"
	"github.com/google/uuid"
)

const (
	defaultModelVersion = "latest"
	defaultChatTimeout  = 120 * time.Second
	headerRequestID     = "X-Request-ID"
)

// orchestration 请求体
type orchestrationRequest struct {
	OrchestrationConfig orchestrationConfig `json:"orchestration_config"`
	InputParams         map[string]string   `json:"input_params"`
}

type orchestrationConfig struct {
	ModuleConfigurations moduleConfigurations `json:"module_configurations"`
	Stream               bool                 `json:"stream,omitempty"`
}

type moduleConfigurations struct {
	TemplatingModuleConfig templatingModuleConfig `json:"templating_module_config"`
	LLMModuleConfig        llmModuleConfig        `json:"llm_module_config"`
}

type templatingModuleConfig struct {
	Template []providers.OpenAICompatMessage `json:"template"`
}

type llmModuleConfig struct {
	ModelName    string          `json:"model_name"`
	ModelParams  llm.ModelParams `json:"model_params"`
	ModelVersion string          `json:"model_version"`
}

// orchestration 响应体，orchestration_result 沿用 OpenAI 兼容格式
type orchestrationResponse struct {
	RequestID           string                         `json:"request_id"`
	OrchestrationResult providers.OpenAICompatResponse `json:"orchestration_result"`
}

// ChatModel 是默认的 orchestration 聊天模型句柄
type ChatModel struct {
	modelID  string
	settings llm.CallSettings
	rc       llm.RequestContext
	client   llm.Doer
}

// NewChatModel 是默认的 ChatModelConstructor。
func NewChatModel(modelID string, settings llm.CallSettings, rc llm.RequestContext) llm.ChatModel {
	client := rc.HTTPClient
	if client == nil {
		client = tlsutil.SecureHTTPClient(defaultChatTimeout)
	}
	if rc.Provider == "" {
		rc.Provider = ProviderName
	}
	return &ChatModel{
		modelID:  modelID,
		settings: settings,
		rc:       rc,
		client:   client,
	}
}

// Name returns the provider name.
func (m *ChatModel) Name() string { return m.rc.Provider }

// ModelID returns the bound model ID.
func (m *ChatModel) ModelID() string { return m.modelID }

// Settings returns the merged settings of the handle.
func (m *ChatModel) Settings() llm.CallSettings { return m.settings }

// URL returns the completion URL requests are posted to.
func (m *ChatModel) URL() string { return m.rc.BaseURL }

// Completion performs a non-streaming orchestration completion.
func (m *ChatModel) Completion(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	httpReq, requestID, err := m.newRequest(ctx, req, false)
	if err != nil {
		return nil, err
	}

	resp, err := m.client.Do(httpReq)
	if err != nil {
		return nil, m.transportError(err)
	}
	defer providers.SafeCloseBody(resp.Body)

	if resp.StatusCode >= 400 {
		msg := providers.ReadErrorMessage(resp.Body)
		return nil, providers.MapHTTPError(resp.StatusCode, msg, m.Name())
	}

	var orchResp orchestrationResponse
	if err := json.NewDecoder(resp.Body).Decode(&orchResp); err != nil {
		return nil, &llm.Error{
			Code: llm.ErrUpstreamError, Message: err.Error(),
			HTTPStatus: http.StatusBadGateway, Retryable: true, Provider: m.Name(),
		}
	}

	result := providers.ToLLMChatResponse(orchResp.OrchestrationResult, m.Name())
	result.RequestID = orchResp.RequestID
	if result.RequestID == "" {
		result.RequestID = requestID
	}
	if result.Model == "" {
		result.Model = m.modelID
	}
	if orchResp.OrchestrationResult.Created != 0 {
		result.CreatedAt = time.Unix(orchResp.OrchestrationResult.Created, 0)
	}
	return result, nil
}

// Stream performs a streaming orchestration completion via SSE.
func (m *ChatModel) Stream(ctx context.Context, req *llm.ChatRequest) (<-chan llm.StreamChunk, error) {
	ctx, cancel := m.withTimeout(ctx)

	httpReq, _, err := m.newRequest(ctx, req, true)
	if err != nil {
		cancel()
		return nil, err
	}

	resp, err := m.client.Do(httpReq)
	if err != nil {
		cancel()
		return nil, m.transportError(err)
	}
	if resp.StatusCode >= 400 {
		defer cancel()
		defer providers.SafeCloseBody(resp.Body)
		msg := providers.ReadErrorMessage(resp.Body)
		return nil, providers.MapHTTPError(resp.StatusCode, msg, m.Name())
	}

	return streamSSE(ctx, cancel, resp.Body, m.Name(), m.modelID), nil
}

func (m *ChatModel) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if m.settings.Timeout > 0 {
		return context.WithTimeout(ctx, m.settings.Timeout)
	}
	return context.WithCancel(ctx)
}

func (m *ChatModel) newRequest(ctx context.Context, req *llm.ChatRequest, stream bool) (*http.Request, string, error) {
	if req == nil {
		return nil, "", &llm.Error{
			Code: llm.ErrInvalidRequest, Message: "chat request is nil",
			HTTPStatus: http.StatusBadRequest, Provider: m.Name(),
		}
	}
	payload, err := json.Marshal(m.buildBody(req, stream))
	if err != nil {
		return nil, "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, m.rc.BaseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %w", err)
	}
	if m.rc.Headers != nil {
		providers.ApplyHeaders(httpReq, m.rc.Headers())
	}
	if httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if stream {
		httpReq.Header.Set("Accept", "text/event-stream")
	}

	requestID := req.TraceID
	if requestID == "" {
		requestID = uuid.NewString()
	}
	httpReq.Header.Set(headerRequestID, requestID)
	return httpReq, requestID, nil
}

func (m *ChatModel) buildBody(req *llm.ChatRequest, stream bool) orchestrationRequest {
	settings := llm.MergeSettings(m.settings, llm.CallSettings{ModelParams: req.ModelParams})

	modelParams := settings.ModelParams
	if modelParams == nil {
		modelParams = llm.ModelParams{}
	}
	version := settings.ModelVersion
	if version == "" {
		version = defaultModelVersion
	}
	inputParams := settings.InputParams
	if inputParams == nil {
		inputParams = map[string]string{}
	}

	return orchestrationRequest{
		OrchestrationConfig: orchestrationConfig{
			ModuleConfigurations: moduleConfigurations{
				TemplatingModuleConfig: templatingModuleConfig{
					Template: providers.ConvertMessagesToOpenAI(req.Messages),
				},
				LLMModuleConfig: llmModuleConfig{
					ModelName:    m.modelID,
					ModelParams:  modelParams,
					ModelVersion: version,
				},
			},
			Stream: stream,
		},
		InputParams: inputParams,
	}
}

func (m *ChatModel) transportError(err error) *llm.Error {
	code := llm.ErrUpstreamError
	status := http.StatusBadGateway
	if isTimeout(err) {
		code = llm.ErrUpstreamTimeout
		status = http.StatusGatewayTimeout
	}
	return &llm.Error{
		Code: code, Message: err.Error(),
		HTTPStatus: status, Retryable: true, Provider: m.Name(),
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
