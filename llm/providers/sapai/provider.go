package sapai

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/BaSui01/sapaicore/llm"
	"github.com/BaSui01/sapaicore/types"
	"go.uber.org/zap"
)

// Provider 是 SAP AI Core 的模型工厂。一个 Provider 持有一次解析得到的
// 凭据与端点，它产生的所有模型句柄只读共享同一个 RequestContext。
//
// Provider 只能由 New、NewWithToken、NewLazy 或 Default 构造；
// 零值或 nil 调用 Model/Chat 会返回 InvalidUsageError。
type Provider struct {
	resolve  func() (llm.RequestContext, error)
	defaults llm.CallSettings
	newModel llm.ChatModelConstructor
	metrics  MetricsRecorder
	logger   *zap.Logger
}

// New 解析凭据并构造 Provider。使用 service key 时会发起一次 OAuth 请求，
// 受 ctx 约束。
func New(ctx context.Context, opts Options) (*Provider, error) {
	opts = opts.withDefaults()
	creds, err := ResolveCredentials(ctx, opts)
	if err != nil {
		return nil, err
	}
	return newResolved(opts, creds), nil
}

// NewWithToken 是不做网络调用的同步构造：需要显式 token 或 TokenSource，
// 只给 service key 时返回 ConfigurationError。
func NewWithToken(opts Options) (*Provider, error) {
	opts = opts.withDefaults()
	creds, err := resolveCredentialsSync(opts)
	if err != nil {
		return nil, err
	}
	return newResolved(opts, creds), nil
}

// NewLazy 构造一个延迟解析凭据的 Provider：构造本身不会失败，
// 每次 Model/Chat 调用时才同步解析 token（不做网络调用）。
func NewLazy(opts Options) *Provider {
	opts = opts.withDefaults()
	logger := opts.Logger.With(zap.String("component", "sapai"))
	return &Provider{
		resolve: func() (llm.RequestContext, error) {
			creds, err := resolveCredentialsSync(opts)
			if err != nil {
				return llm.RequestContext{}, err
			}
			return buildRequestContext(opts, creds), nil
		},
		defaults: opts.DefaultSettings,
		newModel: opts.NewChatModel,
		metrics:  opts.Metrics,
		logger:   logger,
	}
}

var defaultProvider = sync.OnceValue(func() *Provider {
	return NewLazy(Options{})
})

// Default 返回进程级默认 Provider，token 取自 SAP_AI_TOKEN，
// 在第一次 Model/Chat 调用时才读取。
func Default() *Provider {
	return defaultProvider()
}

func newResolved(opts Options, creds *Credentials) *Provider {
	rc := buildRequestContext(opts, creds)
	logger := opts.Logger.With(zap.String("component", "sapai"))
	logger.Info("sap ai provider created",
		zap.String("auth_mode", string(creds.Mode)),
		zap.String("completion_url", rc.BaseURL),
		zap.String("resource_group", opts.ResourceGroup))
	return &Provider{
		resolve:  func() (llm.RequestContext, error) { return rc, nil },
		defaults: opts.DefaultSettings,
		newModel: opts.NewChatModel,
		metrics:  opts.Metrics,
		logger:   logger,
	}
}

func buildRequestContext(opts Options, creds *Credentials) llm.RequestContext {
	ep := ResolveEndpoint(opts, creds.ServiceKey)
	return llm.RequestContext{
		Provider:   ProviderName,
		BaseURL:    ep.CompletionURL,
		Headers:    headerFunc(creds.Token, ep.ResourceGroup, opts.Headers),
		HTTPClient: opts.HTTPClient,
	}
}

// headerFunc 每次调用返回一份新的 map。custom 的键保持原样写入，
// 与其大小写无关相等的内置键先被移除，因此 custom 总是覆盖内置值。
func headerFunc(token, resourceGroup string, custom map[string]string) func() map[string]string {
	return func() map[string]string {
		h := make(map[string]string, 3+len(custom))
		h["Authorization"] = "Bearer " + token
		h["Content-Type"] = "application/json"
		h[HeaderResourceGroup] = resourceGroup
		for k, v := range custom {
			for _, builtin := range [...]string{"Authorization", "Content-Type", HeaderResourceGroup} {
				if builtin != k && strings.EqualFold(builtin, k) {
					delete(h, builtin)
				}
			}
			h[k] = v
		}
		return h
	}
}

// Model 创建绑定 modelID 的模型句柄，settings 合并在 Provider 默认设置之上。
func (p *Provider) Model(modelID string, settings llm.CallSettings) (llm.ChatModel, error) {
	if p == nil || p.resolve == nil {
		return nil, types.NewInvalidUsageError("sapai: Provider must be created with sapai.New, NewWithToken, NewLazy or Default")
	}
	rc, err := p.resolve()
	if err != nil {
		return nil, err
	}
	merged := llm.MergeSettings(p.defaults, settings)
	model := p.newModel(modelID, merged, rc)
	if p.metrics != nil {
		p.metrics.RecordModelCreated(modelID)
		model = &instrumentedModel{ChatModel: model, metrics: p.metrics}
	}
	p.logger.Debug("model handle created", zap.String("model", modelID))
	return model, nil
}

// Chat 与 Model 等价。
func (p *Provider) Chat(modelID string, settings llm.CallSettings) (llm.ChatModel, error) {
	return p.Model(modelID, settings)
}

// RequestContext 返回 Provider 解析出的请求上下文。
func (p *Provider) RequestContext() (llm.RequestContext, error) {
	if p == nil || p.resolve == nil {
		return llm.RequestContext{}, types.NewInvalidUsageError("sapai: Provider must be created with sapai.New, NewWithToken, NewLazy or Default")
	}
	return p.resolve()
}

// instrumentedModel 为每次请求记录状态码与耗时
type instrumentedModel struct {
	llm.ChatModel
	metrics MetricsRecorder
}

func (m *instrumentedModel) Completion(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	start := time.Now()
	resp, err := m.ChatModel.Completion(ctx, req)
	m.metrics.RecordChatRequest(m.ModelID(), statusOf(err), time.Since(start))
	return resp, err
}

// Stream 在流结束时记录：最后一个错误 chunk 的状态码，调用方取消时为 0
func (m *instrumentedModel) Stream(ctx context.Context, req *llm.ChatRequest) (<-chan llm.StreamChunk, error) {
	start := time.Now()
	ch, err := m.ChatModel.Stream(ctx, req)
	if err != nil {
		m.metrics.RecordChatRequest(m.ModelID(), statusOf(err), time.Since(start))
		return nil, err
	}

	out := make(chan llm.StreamChunk)
	go func() {
		defer close(out)
		status := http.StatusOK
		defer func() {
			m.metrics.RecordChatRequest(m.ModelID(), status, time.Since(start))
		}()
		for chunk := range ch {
			if chunk.Err != nil {
				status = chunk.Err.HTTPStatus
			}
			select {
			case out <- chunk:
			case <-ctx.Done():
				status = statusOf(ctx.Err())
				go func() {
					for range ch {
					}
				}()
				return
			}
		}
	}()
	return out, nil
}

func statusOf(err error) int {
	if err == nil {
		return http.StatusOK
	}
	var e *llm.Error
	if errors.As(err, &e) {
		return e.HTTPStatus
	}
	return 0
}
