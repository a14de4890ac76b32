package sapai

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/BaSui01/sapaicore/llm"
)

// testServiceKey 返回指向 authURL 的 service key JSON
func testServiceKey(authURL, apiURL string) string {
	b, _ := json.Marshal(ServiceKey{
		ServiceURLs:  ServiceURLs{AIAPIURL: apiURL},
		ClientID:     "sb-client!b123|aicore!b540",
		ClientSecret: "s3cr3t",
		URL:          authURL,
	})
	return string(b)
}

// countingDoer 记录调用次数；fn 为空时直接失败
type countingDoer struct {
	calls atomic.Int32
	fn    func(*http.Request) (*http.Response, error)
}

func (d *countingDoer) Do(req *http.Request) (*http.Response, error) {
	d.calls.Add(1)
	if d.fn == nil {
		return nil, context.Canceled
	}
	return d.fn(req)
}

// capturedModel 记录构造参数的模型桩
type capturedModel struct {
	id       string
	settings llm.CallSettings
	rc       llm.RequestContext
	status   int
	chunks   []llm.StreamChunk
}

func (c *capturedModel) Completion(context.Context, *llm.ChatRequest) (*llm.ChatResponse, error) {
	if c.status >= 400 {
		return nil, &llm.Error{Code: llm.ErrRateLimited, HTTPStatus: c.status, Provider: c.rc.Provider}
	}
	return &llm.ChatResponse{Model: c.id}, nil
}

func (c *capturedModel) Stream(context.Context, *llm.ChatRequest) (<-chan llm.StreamChunk, error) {
	if c.status >= 400 {
		return nil, &llm.Error{Code: llm.ErrRateLimited, HTTPStatus: c.status, Provider: c.rc.Provider}
	}
	ch := make(chan llm.StreamChunk, len(c.chunks))
	for _, chunk := range c.chunks {
		ch <- chunk
	}
	close(ch)
	return ch, nil
}

func (c *capturedModel) Name() string    { return c.rc.Provider }
func (c *capturedModel) ModelID() string { return c.id }

type captureRecorder struct {
	mu     sync.Mutex
	models []*capturedModel
}

func (r *captureRecorder) constructor() llm.ChatModelConstructor {
	return func(modelID string, settings llm.CallSettings, rc llm.RequestContext) llm.ChatModel {
		m := &capturedModel{id: modelID, settings: settings, rc: rc}
		r.mu.Lock()
		r.models = append(r.models, m)
		r.mu.Unlock()
		return m
	}
}

func (r *captureRecorder) last() *capturedModel {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.models) == 0 {
		return nil
	}
	return r.models[len(r.models)-1]
}

// fakeMetrics 实现 MetricsRecorder
type fakeMetrics struct {
	mu        sync.Mutex
	exchanges map[string]int
	models    map[string]int
	chats     map[int]int
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{
		exchanges: map[string]int{},
		models:    map[string]int{},
		chats:     map[int]int{},
	}
}

func (f *fakeMetrics) RecordTokenExchange(outcome string, _ time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.exchanges[outcome]++
}

func (f *fakeMetrics) RecordModelCreated(model string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.models[model]++
}

func (f *fakeMetrics) RecordChatRequest(_ string, status int, _ time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.chats[status]++
}

func noToken() (string, bool) { return "", false }
