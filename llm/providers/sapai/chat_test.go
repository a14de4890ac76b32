package sapai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/BaSui01/sapaicore/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOrchestrationServer(t *testing.T, handler func(w http.ResponseWriter, body map[string]any)) (*httptest.Server, *http.Header) {
	t.Helper()
	var seen http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v2/inference/deployments/dep-1/v2/completion", r.URL.Path)
		seen = r.Header.Clone()

		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		handler(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, &seen
}

func newTestProvider(t *testing.T, srv *httptest.Server, defaults llm.CallSettings) *Provider {
	t.Helper()
	p, err := NewWithToken(Options{
		Token:           "tok",
		BaseURL:         srv.URL + "/v2",
		DeploymentID:    "dep-1",
		ResourceGroup:   "rg-1",
		Headers:         map[string]string{"X-Tenant": "acme"},
		HTTPClient:      srv.Client(),
		DefaultSettings: defaults,
	})
	require.NoError(t, err)
	return p
}

func TestChatModel_Completion(t *testing.T) {
	srv, seen := newOrchestrationServer(t, func(w http.ResponseWriter, body map[string]any) {
		cfg := body["orchestration_config"].(map[string]any)
		modules := cfg["module_configurations"].(map[string]any)

		tmpl := modules["templating_module_config"].(map[string]any)["template"].([]any)
		if assert.Len(t, tmpl, 2) {
			assert.Equal(t, "system", tmpl[0].(map[string]any)["role"])
			assert.Equal(t, "hello", tmpl[1].(map[string]any)["content"])
		}

		llmCfg := modules["llm_module_config"].(map[string]any)
		assert.Equal(t, "gpt-4o", llmCfg["model_name"])
		assert.Equal(t, "latest", llmCfg["model_version"])
		params := llmCfg["model_params"].(map[string]any)
		assert.Equal(t, 0.9, params["temperature"])
		assert.Equal(t, float64(256), params["max_tokens"])
		assert.NotContains(t, cfg, "stream")
		assert.Equal(t, map[string]any{}, body["input_params"])

		_, _ = fmt.Fprint(w, `{
			"request_id": "req-1",
			"orchestration_result": {
				"id": "chatcmpl-1",
				"model": "gpt-4o-2024-05-13",
				"created": 1700000000,
				"choices": [{"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": "hi there"}}],
				"usage": {"prompt_tokens": 5, "completion_tokens": 2, "total_tokens": 7}
			}
		}`)
	})

	p := newTestProvider(t, srv, llm.CallSettings{ModelParams: llm.ModelParams{"max_tokens": 256}})
	model, err := p.Model("gpt-4o", llm.CallSettings{ModelParams: llm.ModelParams{"temperature": 0.2}})
	require.NoError(t, err)

	resp, err := model.Completion(context.Background(), &llm.ChatRequest{
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: "be brief"},
			{Role: llm.RoleUser, Content: "hello"},
		},
		ModelParams: llm.ModelParams{"temperature": 0.9},
	})
	require.NoError(t, err)

	assert.Equal(t, "req-1", resp.RequestID)
	assert.Equal(t, "chatcmpl-1", resp.ID)
	assert.Equal(t, ProviderName, resp.Provider)
	assert.Equal(t, "gpt-4o-2024-05-13", resp.Model)
	require.Len(t, resp.Choices, 1)
	assert.Equal(t, "hi there", resp.Choices[0].Message.Content)
	assert.Equal(t, 7, resp.Usage.TotalTokens)
	assert.Equal(t, time.Unix(1700000000, 0), resp.CreatedAt)

	assert.Equal(t, "Bearer tok", seen.Get("Authorization"))
	assert.Equal(t, "rg-1", seen.Get(HeaderResourceGroup))
	assert.Equal(t, "acme", seen.Get("X-Tenant"))
	assert.NotEmpty(t, seen.Get(headerRequestID))
}

func TestChatModel_CompletionTraceIDAsRequestID(t *testing.T) {
	srv, seen := newOrchestrationServer(t, func(w http.ResponseWriter, _ map[string]any) {
		_, _ = fmt.Fprint(w, `{"orchestration_result": {"choices": []}}`)
	})

	model, err := newTestProvider(t, srv, llm.CallSettings{}).Model("gpt-4o", llm.CallSettings{})
	require.NoError(t, err)

	resp, err := model.Completion(context.Background(), &llm.ChatRequest{TraceID: "trace-42"})
	require.NoError(t, err)
	assert.Equal(t, "trace-42", seen.Get(headerRequestID))
	assert.Equal(t, "trace-42", resp.RequestID)
	assert.Equal(t, "gpt-4o", resp.Model)
}

func TestChatModel_CompletionHTTPErrors(t *testing.T) {
	tests := []struct {
		status    int
		wantCode  llm.ErrorCode
		retryable bool
	}{
		{status: http.StatusUnauthorized, wantCode: llm.ErrUnauthorized},
		{status: http.StatusTooManyRequests, wantCode: llm.ErrRateLimited, retryable: true},
		{status: http.StatusServiceUnavailable, wantCode: llm.ErrUpstreamError, retryable: true},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			srv, _ := newOrchestrationServer(t, func(w http.ResponseWriter, _ map[string]any) {
				w.WriteHeader(tt.status)
				_, _ = fmt.Fprint(w, `{"error": {"message": "upstream says no", "code": 1}}`)
			})

			model, err := newTestProvider(t, srv, llm.CallSettings{}).Model("gpt-4o", llm.CallSettings{})
			require.NoError(t, err)

			_, err = model.Completion(context.Background(), &llm.ChatRequest{})
			require.Error(t, err)

			var llmErr *llm.Error
			require.ErrorAs(t, err, &llmErr)
			assert.Equal(t, tt.wantCode, llmErr.Code)
			assert.Equal(t, tt.status, llmErr.HTTPStatus)
			assert.Equal(t, tt.retryable, llmErr.Retryable)
			assert.Contains(t, llmErr.Message, "upstream says no")
		})
	}
}

func TestChatModel_NilRequest(t *testing.T) {
	model := NewChatModel("gpt-4o", llm.CallSettings{}, llm.RequestContext{BaseURL: "http://unused"})
	_, err := model.Completion(context.Background(), nil)

	var llmErr *llm.Error
	require.ErrorAs(t, err, &llmErr)
	assert.Equal(t, llm.ErrInvalidRequest, llmErr.Code)
}

func TestChatModel_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	t.Cleanup(srv.Close)

	model := NewChatModel("gpt-4o", llm.CallSettings{Timeout: 50 * time.Millisecond}, llm.RequestContext{
		BaseURL:    srv.URL,
		HTTPClient: srv.Client(),
	})
	_, err := model.Completion(context.Background(), &llm.ChatRequest{})

	var llmErr *llm.Error
	require.ErrorAs(t, err, &llmErr)
	assert.Equal(t, llm.ErrUpstreamTimeout, llmErr.Code)
	assert.True(t, llmErr.Retryable)
}

func TestChatModel_Stream(t *testing.T) {
	srv, seen := newOrchestrationServer(t, func(w http.ResponseWriter, body map[string]any) {
		cfg := body["orchestration_config"].(map[string]any)
		assert.Equal(t, true, cfg["stream"])

		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = fmt.Fprint(w, "data: {\"request_id\":\"r\",\"orchestration_result\":{\"id\":\"c1\",\"choices\":[{\"index\":0,\"delta\":{\"role\":\"assistant\",\"content\":\"Hel\"}}]}}\n\n")
		_, _ = fmt.Fprint(w, ": keep-alive\n\n")
		_, _ = fmt.Fprint(w, "data: {\"orchestration_result\":{\"id\":\"c1\",\"choices\":[{\"index\":0,\"finish_reason\":\"stop\",\"delta\":{\"content\":\"lo\"}}],\"usage\":{\"total_tokens\":3}}}\n\n")
		_, _ = fmt.Fprint(w, "data: [DONE]\n\n")
	})

	model, err := newTestProvider(t, srv, llm.CallSettings{}).Model("gpt-4o", llm.CallSettings{})
	require.NoError(t, err)

	ch, err := model.Stream(context.Background(), &llm.ChatRequest{Messages: []llm.Message{{Role: llm.RoleUser, Content: "hi"}}})
	require.NoError(t, err)

	var chunks []llm.StreamChunk
	for c := range ch {
		require.Nil(t, c.Err)
		chunks = append(chunks, c)
	}

	require.Len(t, chunks, 2)
	assert.Equal(t, "Hel", chunks[0].Delta.Content)
	assert.Equal(t, "gpt-4o", chunks[0].Model)
	assert.Equal(t, "lo", chunks[1].Delta.Content)
	assert.Equal(t, "stop", chunks[1].FinishReason)
	require.NotNil(t, chunks[1].Usage)
	assert.Equal(t, 3, chunks[1].Usage.TotalTokens)
	assert.Equal(t, "text/event-stream", seen.Get("Accept"))
}

func TestChatModel_StreamUsageOnlyEvent(t *testing.T) {
	srv, _ := newOrchestrationServer(t, func(w http.ResponseWriter, _ map[string]any) {
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = fmt.Fprint(w, "data: {\"orchestration_result\":{\"id\":\"c2\",\"choices\":[{\"index\":0,\"finish_reason\":\"stop\",\"delta\":{\"content\":\"done\"}}]}}\n\n")
		_, _ = fmt.Fprint(w, "data: {\"orchestration_result\":{\"id\":\"c2\",\"choices\":[],\"usage\":{\"prompt_tokens\":5,\"completion_tokens\":2,\"total_tokens\":7}}}\n\n")
		_, _ = fmt.Fprint(w, "data: [DONE]\n\n")
	})

	model, err := newTestProvider(t, srv, llm.CallSettings{}).Model("gpt-4o", llm.CallSettings{})
	require.NoError(t, err)

	ch, err := model.Stream(context.Background(), &llm.ChatRequest{})
	require.NoError(t, err)

	var chunks []llm.StreamChunk
	for c := range ch {
		require.Nil(t, c.Err)
		chunks = append(chunks, c)
	}

	require.Len(t, chunks, 2)
	assert.Nil(t, chunks[0].Usage)
	last := chunks[1]
	assert.Equal(t, "c2", last.ID)
	assert.Equal(t, "gpt-4o", last.Model)
	assert.Equal(t, ProviderName, last.Provider)
	assert.Empty(t, last.Delta.Content)
	require.NotNil(t, last.Usage)
	assert.Equal(t, 7, last.Usage.TotalTokens)
	assert.Equal(t, 5, last.Usage.PromptTokens)
}

func TestChatModel_StreamEmptyEventWithoutUsage(t *testing.T) {
	srv, _ := newOrchestrationServer(t, func(w http.ResponseWriter, _ map[string]any) {
		_, _ = fmt.Fprint(w, "data: {\"orchestration_result\":{\"choices\":[]}}\n\n")
		_, _ = fmt.Fprint(w, "data: [DONE]\n\n")
	})

	model, err := newTestProvider(t, srv, llm.CallSettings{}).Model("gpt-4o", llm.CallSettings{})
	require.NoError(t, err)

	ch, err := model.Stream(context.Background(), &llm.ChatRequest{})
	require.NoError(t, err)

	count := 0
	for range ch {
		count++
	}
	assert.Zero(t, count)
}

func TestChatModel_StreamMalformedEvent(t *testing.T) {
	srv, _ := newOrchestrationServer(t, func(w http.ResponseWriter, _ map[string]any) {
		_, _ = fmt.Fprint(w, "data: {broken\n\n")
	})

	model, err := newTestProvider(t, srv, llm.CallSettings{}).Model("gpt-4o", llm.CallSettings{})
	require.NoError(t, err)

	ch, err := model.Stream(context.Background(), &llm.ChatRequest{})
	require.NoError(t, err)

	var last llm.StreamChunk
	for c := range ch {
		last = c
	}
	require.NotNil(t, last.Err)
	assert.Equal(t, llm.ErrUpstreamError, last.Err.Code)
}

func TestChatModel_StreamHTTPError(t *testing.T) {
	srv, _ := newOrchestrationServer(t, func(w http.ResponseWriter, _ map[string]any) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = fmt.Fprint(w, `{"message": "forbidden"}`)
	})

	model, err := newTestProvider(t, srv, llm.CallSettings{}).Model("gpt-4o", llm.CallSettings{})
	require.NoError(t, err)

	_, err = model.Stream(context.Background(), &llm.ChatRequest{})
	var llmErr *llm.Error
	require.ErrorAs(t, err, &llmErr)
	assert.Equal(t, llm.ErrForbidden, llmErr.Code)
}

func TestChatModel_Accessors(t *testing.T) {
	settings := llm.CallSettings{ModelVersion: "1"}
	m := NewChatModel("claude", settings, llm.RequestContext{BaseURL: "https://x"}).(*ChatModel)

	assert.Equal(t, ProviderName, m.Name())
	assert.Equal(t, "claude", m.ModelID())
	assert.Equal(t, settings, m.Settings())
	assert.Equal(t, "https://x", m.URL())
}
